package restaurant

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts a new restaurant. A duplicate gmaps_id among live
	// rows returns a conflict error (apperr.IsConflict).
	Create(ctx context.Context, restaurant *Restaurant) error
	GetByUUID(ctx context.Context, uuid string) (*Restaurant, error)

	// GetByGmapsID is the external-id dedupe lookup (secondary index).
	GetByGmapsID(ctx context.Context, gmapsID string) (*Restaurant, error)

	// Update writes the fields discovery may legitimately change. Timezone
	// and parsed address components are never touched here.
	Update(ctx context.Context, restaurant *Restaurant) error

	List(ctx context.Context, filter ListFilter) ([]*Restaurant, error)
	SoftDelete(ctx context.Context, uuid string) (bool, error)

	MarkScrapeQueued(ctx context.Context, uuid string, at time.Time) error

	// core.RestaurantReader
	Exists(ctx context.Context, uuid string) (bool, error)
	MarkDealsScraped(ctx context.Context, uuid string, at time.Time) error
}
