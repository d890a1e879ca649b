package finder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rolzy/mealsteals/internal/apperr"
)

const (
	geocodeEndpoint      = "https://maps.googleapis.com/maps/api/geocode/json"
	textSearchEndpoint   = "https://maps.googleapis.com/maps/api/place/textsearch/json"
	placeDetailsEndpoint = "https://maps.googleapis.com/maps/api/place/details/json"

	searchKeyword = "pub restaurants"

	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
)

var (
	typeKeywords  = []string{"bar"}
	typeBlacklist = []string{"night_club"}
)

// GmapsFinder discovers restaurants through the Google Maps Places API:
// geocode the query, text-search around the coordinates, then fetch place
// details for each candidate that passes the venue-type filter.
type GmapsFinder struct {
	apiKey string
	client *http.Client
}

func NewGmapsFinder() *GmapsFinder {
	return &GmapsFinder{
		apiKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *GmapsFinder) FindRestaurants(ctx context.Context, address string, radiusMeters int) ([]RawRestaurant, error) {
	if f.apiKey == "" {
		return nil, errors.New("missing GOOGLE_MAPS_API_KEY")
	}
	if radiusMeters <= 0 {
		radiusMeters = 5000
	}

	lat, lng, err := f.geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	candidates, err := f.textSearch(ctx, lat, lng, radiusMeters)
	if err != nil {
		return nil, err
	}

	var restaurants []RawRestaurant
	for _, candidate := range candidates {
		if !hasAllTypes(candidate.Types, typeKeywords) || hasAnyType(candidate.Types, typeBlacklist) {
			continue
		}

		details, err := f.placeDetails(ctx, candidate.PlaceID)
		if err != nil {
			log.Printf("⚠️  Skipping place %s: %v", candidate.PlaceID, err)
			continue
		}
		// A venue without a website cannot be scraped for deals
		if details.Website == "" {
			continue
		}

		restaurants = append(restaurants, RawRestaurant{
			GmapsID:       candidate.PlaceID,
			URL:           details.Website,
			Name:          details.Name,
			VenueType:     details.Types,
			OpenHours:     details.OpeningHours.WeekdayText,
			StreetAddress: details.FormattedAddress,
			Latitude:      details.Geometry.Location.Lat,
			Longitude:     details.Geometry.Location.Lng,
		})
	}

	return restaurants, nil
}

func (f *GmapsFinder) geocode(ctx context.Context, address string) (float64, float64, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", f.apiKey)

	var result struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}

	if err := f.getJSON(ctx, geocodeEndpoint, params, &result); err != nil {
		return 0, 0, err
	}
	if result.Status != "OK" || len(result.Results) == 0 {
		return 0, 0, apperr.Validation("unable to geocode address %q", address)
	}

	loc := result.Results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

type placeCandidate struct {
	PlaceID string   `json:"place_id"`
	Types   []string `json:"types"`
}

func (f *GmapsFinder) textSearch(ctx context.Context, lat, lng float64, radiusMeters int) ([]placeCandidate, error) {
	params := url.Values{}
	params.Set("query", searchKeyword)
	params.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	params.Set("radius", fmt.Sprintf("%d", radiusMeters))
	params.Set("key", f.apiKey)

	var result struct {
		Status  string           `json:"status"`
		Results []placeCandidate `json:"results"`
	}

	if err := f.getJSON(ctx, textSearchEndpoint, params, &result); err != nil {
		return nil, err
	}
	if result.Status != "OK" && result.Status != "ZERO_RESULTS" {
		return nil, apperr.Transient("places search failed", fmt.Errorf("status %s", result.Status))
	}

	return result.Results, nil
}

type placeDetails struct {
	Name             string   `json:"name"`
	Website          string   `json:"website"`
	Types            []string `json:"types"`
	FormattedAddress string   `json:"formatted_address"`
	OpeningHours     struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (f *GmapsFinder) placeDetails(ctx context.Context, placeID string) (*placeDetails, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,website,types,formatted_address,opening_hours,geometry")
	params.Set("key", f.apiKey)

	var result struct {
		Status string       `json:"status"`
		Result placeDetails `json:"result"`
	}

	if err := f.getJSON(ctx, placeDetailsEndpoint, params, &result); err != nil {
		return nil, err
	}
	if result.Status != "OK" {
		return nil, fmt.Errorf("place details status %s", result.Status)
	}

	return &result.Result, nil
}

// getJSON performs a GET with bounded retries and exponential backoff on
// transient failures (network errors, 5xx, rate limiting).
func (f *GmapsFinder) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	backoff := initialBackoff

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		lastErr = f.getJSONOnce(ctx, endpoint, params, out)
		if lastErr == nil {
			return nil
		}
		if !apperr.IsTransient(lastErr) {
			return lastErr
		}
		log.Printf("⚠️  Maps API attempt %d/%d failed: %v", attempt, maxAttempts, lastErr)
	}

	return apperr.Permanent("maps api retries exhausted", lastErr)
}

func (f *GmapsFinder) getJSONOnce(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return apperr.Transient("maps api request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return apperr.Transient("maps api unavailable", fmt.Errorf("http %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps api http %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func hasAllTypes(types, keywords []string) bool {
	for _, keyword := range keywords {
		found := false
		for _, t := range types {
			if t == keyword {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func hasAnyType(types, keywords []string) bool {
	for _, keyword := range keywords {
		for _, t := range types {
			if t == keyword {
				return true
			}
		}
	}
	return false
}
