package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rolzy/mealsteals/internal/db"
	"github.com/rolzy/mealsteals/internal/deal"
	"github.com/rolzy/mealsteals/internal/llm"
	"github.com/rolzy/mealsteals/internal/queue"
	"github.com/rolzy/mealsteals/internal/restaurant"
	"github.com/rolzy/mealsteals/internal/scrape"
	"github.com/rolzy/mealsteals/internal/storage"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	required := []string{
		"DATABASE_URL",
		"DEAL_SCRAPING_QUEUE_URL",
		"ANTHROPIC_API_KEY",
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

	// ───────────────────────── STORAGE ─────────────────────────
	archiveClient, err := storage.NewArchiveClient(context.Background())
	if err != nil {
		log.Fatal("❌ Archive init failed:", err)
	}

	// ───────────────────────── SERVICES ─────────────────────────
	restaurantRepo := restaurant.NewPostgresRepository(pgDB)
	dealService := deal.NewService(deal.NewPostgresRepository(pgDB), restaurantRepo)

	var archiver scrape.Archiver
	if archiveClient != nil {
		archiver = archiveClient
	}

	scrapeService := scrape.NewService(
		scrape.NewPageFetcher(),
		llm.NewClaudeClient(),
		dealService,
		restaurantRepo,
		archiver,
	)

	concurrency := 2
	if v := os.Getenv("SCRAPE_WORKER_CONCURRENCY"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			log.Fatalf("❌ Invalid SCRAPE_WORKER_CONCURRENCY: %s", v)
		}
		concurrency = parsed
	}

	// ───────────────────────── RUN ─────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker := scrape.NewWorker(scrapeQueue, scrapeService, concurrency)

	log.Printf("🚀 Scrape worker running with concurrency %d", concurrency)
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("❌ Worker failed:", err)
	}
	log.Println("✅ Scrape worker stopped")
}
