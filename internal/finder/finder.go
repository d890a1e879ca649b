package finder

import "context"

// RawRestaurant is a candidate venue as returned by the discovery source,
// before any persistence or dedupe.
type RawRestaurant struct {
	GmapsID       string   `json:"gmaps_id"`
	URL           string   `json:"url"`
	Name          string   `json:"name"`
	VenueType     []string `json:"venue_type"`
	OpenHours     []string `json:"open_hours"`
	StreetAddress string   `json:"street_address"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
}

// Finder is the restaurant-discovery capability. Implementations are
// unreliable, rate-limited dependencies; callers retry with backoff.
type Finder interface {
	FindRestaurants(ctx context.Context, address string, radiusMeters int) ([]RawRestaurant, error)
}
