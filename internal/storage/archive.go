package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ArchiveClient stores raw scrape artifacts in an S3-compatible bucket
// so extraction runs can be replayed and debugged later.
type ArchiveClient struct {
	client *s3.Client
	bucket string
}

// NewArchiveClient builds a client from SCRAPE_ARCHIVE_* env vars.
// Returns (nil, nil) when no bucket is configured: archival is optional.
func NewArchiveClient(ctx context.Context) (*ArchiveClient, error) {
	bucket := os.Getenv("SCRAPE_ARCHIVE_BUCKET")
	if bucket == "" {
		return nil, nil
	}

	endpoint := os.Getenv("SCRAPE_ARCHIVE_ENDPOINT")
	accessKey := os.Getenv("SCRAPE_ARCHIVE_ACCESS_KEY")
	secretKey := os.Getenv("SCRAPE_ARCHIVE_SECRET_KEY")
	region := os.Getenv("SCRAPE_ARCHIVE_REGION")
	if region == "" {
		region = "auto"
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if accessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	if endpoint != "" {
		opts = append(opts, config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, reg string, options ...interface{}) (aws.Endpoint, error) {
					if service == s3.ServiceID {
						return aws.Endpoint{
							URL:           endpoint,
							SigningRegion: region,
						}, nil
					}
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				},
			),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &ArchiveClient{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// ArchiveScrape writes the page text and raw extractor output under a
// timestamped key for the restaurant.
func (a *ArchiveClient) ArchiveScrape(ctx context.Context, restaurantID, pageText, rawExtract string) error {
	stamp := time.Now().UTC().Format("20060102T150405Z")

	entries := map[string]string{
		fmt.Sprintf("scrapes/%s/%s/page.txt", restaurantID, stamp):    pageText,
		fmt.Sprintf("scrapes/%s/%s/extract.json", restaurantID, stamp): rawExtract,
	}

	for key, body := range entries {
		if body == "" {
			continue
		}
		_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: &a.bucket,
			Key:    &key,
			Body:   strings.NewReader(body),
		})
		if err != nil {
			return fmt.Errorf("archiving %s: %w", key, err)
		}
	}
	return nil
}
