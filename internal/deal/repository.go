package deal

import "context"

type Repository interface {
	Create(ctx context.Context, deal *Deal) error
	GetByUUID(ctx context.Context, uuid string) (*Deal, error)

	// ListByRestaurant returns the current non-deleted deal set via the
	// restaurant-id index; no full-table scan.
	ListByRestaurant(ctx context.Context, restaurantID string) ([]*Deal, error)
	ListByDay(ctx context.Context, day DayOfWeek, limit int) ([]*Deal, error)
	Search(ctx context.Context, filter SearchFilter) ([]*Deal, error)

	// UpdateMutable rewrites the fields a rescrape may legitimately change;
	// uuid and created_at are preserved.
	UpdateMutable(ctx context.Context, deal *Deal) error
	SoftDelete(ctx context.Context, uuid string) (bool, error)
}
