package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// TimezoneLookup resolves coordinates to an IANA timezone identifier.
// The upsert pipeline calls this exactly once per restaurant, at creation,
// and fails open: a lookup error leaves the timezone null.
type TimezoneLookup interface {
	TimezoneAt(ctx context.Context, latitude, longitude float64) (string, error)
}

const timezoneEndpoint = "https://maps.googleapis.com/maps/api/timezone/json"

// GoogleTimezoneClient resolves timezones through the Google Time Zone API.
type GoogleTimezoneClient struct {
	apiKey string
	client *http.Client
}

func NewGoogleTimezoneClient() *GoogleTimezoneClient {
	return &GoogleTimezoneClient{
		apiKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GoogleTimezoneClient) TimezoneAt(ctx context.Context, latitude, longitude float64) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("missing GOOGLE_MAPS_API_KEY")
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", latitude, longitude))
	params.Set("timestamp", fmt.Sprintf("%d", time.Now().Unix()))
	params.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, timezoneEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timezone api http %d", resp.StatusCode)
	}

	var result struct {
		Status     string `json:"status"`
		TimeZoneID string `json:"timeZoneId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Status != "OK" || result.TimeZoneID == "" {
		return "", fmt.Errorf("timezone api status %s", result.Status)
	}

	return result.TimeZoneID, nil
}
