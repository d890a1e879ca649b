package restaurant

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rolzy/mealsteals/internal/apperr"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const restaurantColumns = `
	uuid,
	gmaps_id,
	name,
	url,
	venue_type,
	open_hours,
	street_address,
	latitude,
	longitude,
	suburb,
	state,
	postcode,
	country,
	timezone,
	scrape_queued_at,
	deals_scraped_at,
	created_at,
	updated_at,
	is_deleted,
	deleted_at
`

// --------------------------------------------------
// Create restaurant
// --------------------------------------------------
func (r *PostgresRepository) Create(ctx context.Context, restaurant *Restaurant) error {
	if restaurant.UUID == "" {
		restaurant.UUID = uuid.NewString()
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO restaurants (
			uuid,
			gmaps_id,
			name,
			url,
			venue_type,
			open_hours,
			street_address,
			latitude,
			longitude,
			suburb,
			state,
			postcode,
			country,
			timezone
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at
	`,
		restaurant.UUID,
		restaurant.GmapsID,
		restaurant.Name,
		restaurant.URL,
		restaurant.VenueType,
		restaurant.OpenHours,
		restaurant.StreetAddress,
		restaurant.Latitude,
		restaurant.Longitude,
		restaurant.Suburb,
		restaurant.State,
		restaurant.Postcode,
		restaurant.Country,
		restaurant.Timezone,
	).Scan(&restaurant.CreatedAt)

	// A racing insert for the same place trips the partial unique index
	// on gmaps_id; callers resolve that by re-reading.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("restaurant already exists", err)
	}
	return err
}

// --------------------------------------------------
// Get restaurant by UUID
// --------------------------------------------------
func (r *PostgresRepository) GetByUUID(ctx context.Context, restaurantUUID string) (*Restaurant, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+restaurantColumns+`
		FROM restaurants
		WHERE uuid = $1 AND NOT is_deleted
	`, restaurantUUID)

	restaurant, err := scanRestaurant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return restaurant, err
}

// --------------------------------------------------
// Get restaurant by external place id (dedupe lookup)
// --------------------------------------------------
func (r *PostgresRepository) GetByGmapsID(ctx context.Context, gmapsID string) (*Restaurant, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+restaurantColumns+`
		FROM restaurants
		WHERE gmaps_id = $1 AND NOT is_deleted
	`, gmapsID)

	restaurant, err := scanRestaurant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return restaurant, err
}

// --------------------------------------------------
// Update discovery-owned fields (timezone + address components untouched)
// --------------------------------------------------
func (r *PostgresRepository) Update(ctx context.Context, restaurant *Restaurant) error {
	now := time.Now().UTC()

	_, err := r.db.Exec(ctx, `
		UPDATE restaurants
		SET name = $1,
		    url = $2,
		    venue_type = $3,
		    open_hours = $4,
		    street_address = $5,
		    latitude = $6,
		    longitude = $7,
		    updated_at = $8
		WHERE uuid = $9 AND NOT is_deleted
	`,
		restaurant.Name,
		restaurant.URL,
		restaurant.VenueType,
		restaurant.OpenHours,
		restaurant.StreetAddress,
		restaurant.Latitude,
		restaurant.Longitude,
		now,
		restaurant.UUID,
	)
	if err == nil {
		restaurant.UpdatedAt = &now
	}
	return err
}

// --------------------------------------------------
// List with optional suburb/postcode filters
// --------------------------------------------------
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Restaurant, error) {
	query := `
		SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE NOT is_deleted
	`
	args := []any{}

	if filter.Suburb != "" {
		args = append(args, "%"+filter.Suburb+"%")
		query += ` AND suburb ILIKE $1`
	}
	if filter.Postcode != "" {
		args = append(args, filter.Postcode)
		query += ` AND postcode = $` + itoa(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []*Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, rows.Err()
}

// --------------------------------------------------
// Soft delete
// --------------------------------------------------
func (r *PostgresRepository) SoftDelete(ctx context.Context, restaurantUUID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE restaurants
		SET is_deleted = TRUE,
		    deleted_at = now(),
		    updated_at = now()
		WHERE uuid = $1 AND NOT is_deleted
	`, restaurantUUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --------------------------------------------------
// Scrape bookkeeping
// --------------------------------------------------
func (r *PostgresRepository) MarkScrapeQueued(ctx context.Context, restaurantUUID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE restaurants
		SET scrape_queued_at = $1
		WHERE uuid = $2 AND NOT is_deleted
	`, at, restaurantUUID)
	return err
}

func (r *PostgresRepository) MarkDealsScraped(ctx context.Context, restaurantUUID string, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE restaurants
		SET deals_scraped_at = $1
		WHERE uuid = $2 AND NOT is_deleted
	`, at, restaurantUUID)
	return err
}

func (r *PostgresRepository) Exists(ctx context.Context, restaurantUUID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM restaurants
			WHERE uuid = $1 AND NOT is_deleted
		)
	`, restaurantUUID).Scan(&exists)
	return exists, err
}

// --------------------------------------------------
// Scan helper
// --------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRestaurant(row rowScanner) (*Restaurant, error) {
	var restaurant Restaurant
	if err := row.Scan(
		&restaurant.UUID,
		&restaurant.GmapsID,
		&restaurant.Name,
		&restaurant.URL,
		&restaurant.VenueType,
		&restaurant.OpenHours,
		&restaurant.StreetAddress,
		&restaurant.Latitude,
		&restaurant.Longitude,
		&restaurant.Suburb,
		&restaurant.State,
		&restaurant.Postcode,
		&restaurant.Country,
		&restaurant.Timezone,
		&restaurant.ScrapeQueuedAt,
		&restaurant.DealsScrapedAt,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
		&restaurant.IsDeleted,
		&restaurant.DeletedAt,
	); err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
