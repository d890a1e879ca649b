package deal

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const dealColumns = `
	uuid,
	restaurant_id,
	dish,
	price::text,
	day_of_week,
	start_time,
	end_time,
	notes,
	source_text,
	created_at,
	updated_at,
	is_deleted,
	deleted_at
`

// --------------------------------------------------
// Create deal
// --------------------------------------------------
func (r *PostgresRepository) Create(ctx context.Context, deal *Deal) error {
	if deal.UUID == "" {
		deal.UUID = uuid.NewString()
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO deals (
			uuid,
			restaurant_id,
			dish,
			price,
			day_of_week,
			start_time,
			end_time,
			notes,
			source_text
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`,
		deal.UUID,
		deal.RestaurantID,
		deal.Dish,
		priceParam(deal.Price),
		string(deal.DayOfWeek),
		deal.StartTime,
		deal.EndTime,
		deal.Notes,
		deal.SourceText,
	).Scan(&deal.CreatedAt)
}

// --------------------------------------------------
// Get deal by UUID
// --------------------------------------------------
func (r *PostgresRepository) GetByUUID(ctx context.Context, dealUUID string) (*Deal, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+dealColumns+`
		FROM deals
		WHERE uuid = $1 AND NOT is_deleted
	`, dealUUID)

	deal, err := scanDeal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return deal, err
}

// --------------------------------------------------
// List deals by restaurant (index lookup, live rows only)
// --------------------------------------------------
func (r *PostgresRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*Deal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+dealColumns+`
		FROM deals
		WHERE restaurant_id = $1 AND NOT is_deleted
		ORDER BY created_at
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeals(rows)
}

// --------------------------------------------------
// List deals by day of week
// --------------------------------------------------
func (r *PostgresRepository) ListByDay(ctx context.Context, day DayOfWeek, limit int) ([]*Deal, error) {
	if limit <= 0 {
		limit = 1000
	}

	// "everyday" deals apply to every specific day as well
	rows, err := r.db.Query(ctx, `
		SELECT `+dealColumns+`
		FROM deals
		WHERE (day_of_week = $1 OR day_of_week = $2) AND NOT is_deleted
		ORDER BY created_at
		LIMIT $3
	`, string(day), string(Everyday), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeals(rows)
}

// --------------------------------------------------
// Search with filters
// --------------------------------------------------
func (r *PostgresRepository) Search(ctx context.Context, filter SearchFilter) ([]*Deal, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE NOT is_deleted
	`
	args := []any{}

	if filter.RestaurantID != "" {
		args = append(args, filter.RestaurantID)
		query += ` AND restaurant_id = ` + placeholder(len(args))
	}
	if filter.DayOfWeek != "" {
		args = append(args, filter.DayOfWeek, string(Everyday))
		query += ` AND (day_of_week = ` + placeholder(len(args)-1) +
			` OR day_of_week = ` + placeholder(len(args)) + `)`
	}
	if filter.MaxPrice != nil {
		args = append(args, filter.MaxPrice.StringFixed(2))
		query += ` AND price IS NOT NULL AND price <= ` + placeholder(len(args)) + `::numeric`
	}
	if filter.DishSearch != "" {
		args = append(args, "%"+filter.DishSearch+"%")
		query += ` AND dish ILIKE ` + placeholder(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit)
	query += ` ORDER BY created_at LIMIT ` + placeholder(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDeals(rows)
}

// --------------------------------------------------
// Update mutable fields in place
// --------------------------------------------------
func (r *PostgresRepository) UpdateMutable(ctx context.Context, deal *Deal) error {
	now := time.Now().UTC()

	_, err := r.db.Exec(ctx, `
		UPDATE deals
		SET price = $1,
		    start_time = $2,
		    end_time = $3,
		    notes = $4,
		    source_text = $5,
		    updated_at = $6
		WHERE uuid = $7 AND NOT is_deleted
	`,
		priceParam(deal.Price),
		deal.StartTime,
		deal.EndTime,
		deal.Notes,
		deal.SourceText,
		now,
		deal.UUID,
	)
	if err == nil {
		deal.UpdatedAt = &now
	}
	return err
}

// --------------------------------------------------
// Soft delete
// --------------------------------------------------
func (r *PostgresRepository) SoftDelete(ctx context.Context, dealUUID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE deals
		SET is_deleted = TRUE,
		    deleted_at = now(),
		    updated_at = now()
		WHERE uuid = $1 AND NOT is_deleted
	`, dealUUID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --------------------------------------------------
// Scan helpers
// --------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*Deal, error) {
	var d Deal
	var priceText *string
	var day string

	if err := row.Scan(
		&d.UUID,
		&d.RestaurantID,
		&d.Dish,
		&priceText,
		&day,
		&d.StartTime,
		&d.EndTime,
		&d.Notes,
		&d.SourceText,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.IsDeleted,
		&d.DeletedAt,
	); err != nil {
		return nil, err
	}

	d.DayOfWeek = DayOfWeek(day)

	if priceText != nil {
		price, err := decimal.NewFromString(*priceText)
		if err != nil {
			return nil, err
		}
		d.Price = &price
	}

	return &d, nil
}

func scanDeals(rows pgx.Rows) ([]*Deal, error) {
	var deals []*Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func priceParam(price *decimal.Decimal) *string {
	if price == nil {
		return nil
	}
	s := price.StringFixed(2)
	return &s
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
