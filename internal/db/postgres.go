package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres() *pgxpool.Pool {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal(err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Ping(context.Background()); err != nil {
		log.Fatal("Postgres connection failed:", err)
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize schema
	if err := initSchema(db); err != nil {
		log.Fatal("Failed to initialize schema:", err)
	}

	return db
}

// initSchema creates or updates the database schema
func initSchema(db *pgxpool.Pool) error {
	ctx := context.Background()

	// -------------------------------
	// RESTAURANTS
	// -------------------------------
	restaurantTableSQL := `
		CREATE TABLE IF NOT EXISTS restaurants (
			uuid UUID PRIMARY KEY,
			gmaps_id TEXT NOT NULL,
			name TEXT NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			venue_type TEXT[] NOT NULL DEFAULT '{}',
			open_hours TEXT[] NOT NULL DEFAULT '{}',
			street_address TEXT NOT NULL DEFAULT '',
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			suburb TEXT NULL,
			state TEXT NULL,
			postcode TEXT NULL,
			country TEXT NULL,
			timezone TEXT NULL,
			scrape_queued_at TIMESTAMPTZ NULL,
			deals_scraped_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at TIMESTAMPTZ NULL
		)
	`
	if _, err := db.Exec(ctx, restaurantTableSQL); err != nil {
		return err
	}

	// gmaps_id is the dedupe key among live rows
	gmapsIndexSQL := `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_restaurants_gmaps_id
		ON restaurants (gmaps_id)
		WHERE NOT is_deleted
	`
	if _, err := db.Exec(ctx, gmapsIndexSQL); err != nil {
		return err
	}

	// -------------------------------
	// DEALS
	// -------------------------------
	dealTableSQL := `
		CREATE TABLE IF NOT EXISTS deals (
			uuid UUID PRIMARY KEY,
			restaurant_id UUID NOT NULL,
			dish TEXT NOT NULL,
			price NUMERIC(10,2) NULL,
			day_of_week TEXT NOT NULL,
			start_time TEXT NULL,
			end_time TEXT NULL,
			notes TEXT NULL,
			source_text TEXT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NULL,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			deleted_at TIMESTAMPTZ NULL
		)
	`
	if _, err := db.Exec(ctx, dealTableSQL); err != nil {
		return err
	}

	restaurantIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_deals_restaurant_id
		ON deals (restaurant_id)
		WHERE NOT is_deleted
	`
	if _, err := db.Exec(ctx, restaurantIndexSQL); err != nil {
		return err
	}

	dayIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_deals_day_of_week
		ON deals (day_of_week)
		WHERE NOT is_deleted
	`
	if _, err := db.Exec(ctx, dayIndexSQL); err != nil {
		return err
	}

	log.Println("✅ Schema initialized successfully")
	return nil
}
