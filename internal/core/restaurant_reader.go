package core

import (
	"context"
	"time"
)

// RestaurantReader is the narrow view of restaurant storage other features
// are allowed to touch. Keeps deal reconciliation from depending on the
// whole restaurant package.
type RestaurantReader interface {
	// Exists reports whether a non-deleted restaurant with this UUID is stored.
	Exists(ctx context.Context, restaurantUUID string) (bool, error)

	// MarkDealsScraped stamps the "deals last scraped at" timestamp used by
	// the status-polling endpoint and the UI staleness display.
	MarkDealsScraped(ctx context.Context, restaurantUUID string, at time.Time) error
}
