package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/rolzy/mealsteals/internal/auth"
	"github.com/rolzy/mealsteals/internal/db"
	"github.com/rolzy/mealsteals/internal/deal"
	"github.com/rolzy/mealsteals/internal/finder"
	"github.com/rolzy/mealsteals/internal/geo"
	"github.com/rolzy/mealsteals/internal/queue"
	"github.com/rolzy/mealsteals/internal/restaurant"
	"github.com/rolzy/mealsteals/internal/router"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	required := []string{
		"DATABASE_URL",
		"JWT_SECRET",
		"GOOGLE_MAPS_API_KEY",
		"DEAL_SCRAPING_QUEUE_URL",
	}

	for _, k := range required {
		if os.Getenv(k) == "" {
			log.Fatalf("❌ Missing env var: %s", k)
		}
	}

	// ───────────────────────── DB ─────────────────────────
	pgDB := db.ConnectPostgres()
	defer pgDB.Close()

	// ───────────────────────── QUEUE ─────────────────────────
	scrapeQueue, err := queue.NewSQS(context.Background())
	if err != nil {
		log.Fatal("❌ SQS init failed:", err)
	}

	// ───────────────────────── SERVICES ─────────────────────────
	restaurantRepo := restaurant.NewPostgresRepository(pgDB)
	dealRepo := deal.NewPostgresRepository(pgDB)

	restaurantService := restaurant.NewService(
		restaurantRepo,
		finder.NewGmapsFinder(),
		geo.NewGoogleTimezoneClient(),
		restaurant.NewAustralianAddressParser(),
		scrapeQueue,
	)
	dealService := deal.NewService(dealRepo, restaurantRepo)
	authService := auth.NewService()

	// ───────────────────────── ROUTER ─────────────────────────
	r := router.NewRouter(
		auth.NewHandler(authService),
		restaurant.NewHandler(restaurantService),
		deal.NewHandler(dealService),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("🚀 API running at http://localhost:%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("❌ Server failed:", err)
	}
}
