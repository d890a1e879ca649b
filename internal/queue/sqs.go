package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQS backs the scrape queue with an AWS SQS queue. Visibility timeout and
// dead-letter redrive are configured on the queue itself; this client only
// has to skip the Ack to trigger redelivery.
type SQS struct {
	client   *sqs.Client
	queueURL string
}

func NewSQS(ctx context.Context) (*SQS, error) {
	queueURL := os.Getenv("DEAL_SCRAPING_QUEUE_URL")
	if queueURL == "" {
		return nil, fmt.Errorf("DEAL_SCRAPING_QUEUE_URL not set")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SQS{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}, nil
}

func (q *SQS) Enqueue(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"restaurant_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(job.RestaurantID),
			},
			"job_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String("deal_scraping"),
			},
		},
	})
	return err
}

func (q *SQS) Receive(ctx context.Context) (*Delivery, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: 1,
		WaitTimeSeconds:     20,
		AttributeNames: []types.QueueAttributeName{
			types.QueueAttributeName("ApproximateReceiveCount"),
		},
	})
	if err != nil {
		return nil, err
	}
	if len(out.Messages) == 0 {
		return nil, nil
	}

	msg := out.Messages[0]

	var job Job
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &job); err != nil {
		// Poison message: drop it so it doesn't cycle forever
		log.Printf("⚠️  Dropping unparseable queue message: %v", err)
		q.delete(ctx, msg.ReceiptHandle)
		return nil, nil
	}

	receiveCount := 1
	if raw, ok := msg.Attributes["ApproximateReceiveCount"]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			receiveCount = n
		}
	}

	handle := msg.ReceiptHandle
	return &Delivery{
		Job:          job,
		ReceiveCount: receiveCount,
		ack: func(ctx context.Context) error {
			return q.delete(ctx, handle)
		},
	}, nil
}

func (q *SQS) delete(ctx context.Context, receiptHandle *string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: receiptHandle,
	})
	return err
}
