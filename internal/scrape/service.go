package scrape

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/rolzy/mealsteals/internal/apperr"
	"github.com/rolzy/mealsteals/internal/core"
	"github.com/rolzy/mealsteals/internal/deal"
	"github.com/rolzy/mealsteals/internal/llm"
	"github.com/rolzy/mealsteals/internal/queue"
)

// --------------------------------------------------
// Scrape service: consumes queued jobs, turns restaurant
// websites into reconciled deal records.
// --------------------------------------------------

// PageSource abstracts page retrieval so tests can feed canned text.
type PageSource interface {
	FetchText(ctx context.Context, pageURL string) (string, error)
	FindDealPages(ctx context.Context, siteURL string) ([]string, error)
}

// Archiver persists raw scrape artifacts. Optional: nil disables archival.
type Archiver interface {
	ArchiveScrape(ctx context.Context, restaurantID, pageText, rawExtract string) error
}

type Service struct {
	pages       PageSource
	extractor   llm.Client
	deals       *deal.Service
	restaurants core.RestaurantReader
	archiver    Archiver
}

func NewService(pages PageSource, extractor llm.Client, deals *deal.Service, restaurants core.RestaurantReader, archiver Archiver) *Service {
	return &Service{
		pages:       pages,
		extractor:   extractor,
		deals:       deals,
		restaurants: restaurants,
		archiver:    archiver,
	}
}

const extractTimeout = 2 * time.Minute

// Process handles a single scrape job end to end. A transient error
// return leaves the job unacked so the queue redelivers it; a
// validation error means the job itself is unusable and should be
// dropped by the caller.
func (s *Service) Process(ctx context.Context, job queue.Job) error {
	if job.RestaurantID == "" {
		return apperr.Validation("scrape job missing restaurant_id")
	}
	if job.URL == "" {
		return apperr.Validation("scrape job missing url")
	}

	exists, err := s.restaurants.Exists(ctx, job.RestaurantID)
	if err != nil {
		return apperr.Transient("checking restaurant", err)
	}
	if !exists {
		return apperr.Validation("restaurant %s no longer exists", job.RestaurantID)
	}

	pages, err := s.pages.FindDealPages(ctx, job.URL)
	if err != nil {
		return err
	}

	var incoming []deal.Incoming
	var archiveText, archiveRaw string

	for _, pageURL := range pages {
		text, err := s.pages.FetchText(ctx, pageURL)
		if err != nil {
			if apperr.IsTransient(err) {
				return err
			}
			log.Printf("⚠️ Skipping page %s: %v", pageURL, err)
			continue
		}
		if text == "" {
			continue
		}

		extractCtx, cancel := context.WithTimeout(ctx, extractTimeout)
		raw, err := s.extractor.ExtractDeals(extractCtx, text)
		cancel()
		if err != nil {
			return err
		}

		raws, err := llm.ParseDeals(raw)
		if err != nil {
			return apperr.Transient("parsing extractor output", err)
		}

		cleaned, skipped := llm.NormalizeDeals(raws, text)
		if skipped > 0 {
			log.Printf("⚠️ Skipped %d malformed deal records from %s", skipped, pageURL)
		}
		incoming = append(incoming, cleaned...)

		archiveText += fmt.Sprintf("=== %s ===\n%s\n", pageURL, text)
		archiveRaw += raw + "\n"
	}

	if s.archiver != nil {
		if err := s.archiver.ArchiveScrape(ctx, job.RestaurantID, archiveText, archiveRaw); err != nil {
			log.Printf("⚠️ Failed to archive scrape for restaurant %s: %v", job.RestaurantID, err)
		}
	}

	if len(incoming) == 0 {
		// A site with no advertised specials is a valid terminal
		// outcome. Existing deals are left untouched.
		if err := s.restaurants.MarkDealsScraped(ctx, job.RestaurantID, time.Now().UTC()); err != nil {
			log.Printf("⚠️ Failed to stamp scrape completion for restaurant %s: %v", job.RestaurantID, err)
		}
		log.Printf("✅ Scrape for restaurant %s found no deals", job.RestaurantID)
		return nil
	}

	result, err := s.deals.Reconcile(ctx, job.RestaurantID, incoming)
	if err != nil {
		return err
	}

	log.Printf("✅ Scrape for restaurant %s reconciled deals (created=%d updated=%d unchanged=%d removed=%d)",
		job.RestaurantID, result.Created, result.Updated, result.Unchanged, result.Removed)
	return nil
}
