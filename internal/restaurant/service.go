package restaurant

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/rolzy/mealsteals/internal/apperr"
	"github.com/rolzy/mealsteals/internal/finder"
	"github.com/rolzy/mealsteals/internal/geo"
	"github.com/rolzy/mealsteals/internal/queue"
)

const timezoneLookupTimeout = 10 * time.Second

type Service struct {
	repo          Repository
	finder        finder.Finder
	timezones     geo.TimezoneLookup
	addressParser AddressParser
	scrapeQueue   queue.Queue
}

func NewService(
	repo Repository,
	restaurantFinder finder.Finder,
	timezones geo.TimezoneLookup,
	addressParser AddressParser,
	scrapeQueue queue.Queue,
) *Service {
	return &Service{
		repo:          repo,
		finder:        restaurantFinder,
		timezones:     timezones,
		addressParser: addressParser,
		scrapeQueue:   scrapeQueue,
	}
}

// --------------------------------------------------
// Upsert from discovery data
// --------------------------------------------------
//
// Create-or-merge keyed on the external place id. Timezone is computed
// exactly once, at creation; updates preserve it and the parsed address
// components even when a fresh parse would disagree. A scrape job is
// enqueued only for newly discovered restaurants.
func (s *Service) Upsert(ctx context.Context, raw finder.RawRestaurant) (*Restaurant, bool, error) {
	if raw.GmapsID == "" {
		return nil, false, apperr.Validation("gmaps_id is required")
	}

	existing, err := s.repo.GetByGmapsID(ctx, raw.GmapsID)
	if err != nil {
		return nil, false, apperr.Transient("looking up restaurant", err)
	}

	if existing != nil {
		return s.merge(ctx, existing, raw)
	}

	restaurant := &Restaurant{
		GmapsID:       raw.GmapsID,
		Name:          raw.Name,
		URL:           raw.URL,
		VenueType:     raw.VenueType,
		OpenHours:     raw.OpenHours,
		StreetAddress: raw.StreetAddress,
		Latitude:      raw.Latitude,
		Longitude:     raw.Longitude,
	}

	// Failing open: a timezone lookup failure stores a null timezone
	// rather than aborting the pipeline.
	tzCtx, cancel := context.WithTimeout(ctx, timezoneLookupTimeout)
	if tz, err := s.timezones.TimezoneAt(tzCtx, raw.Latitude, raw.Longitude); err != nil {
		log.Printf("⚠️  Timezone lookup failed for %s: %v", raw.Name, err)
	} else {
		restaurant.Timezone = &tz
	}
	cancel()

	// Guarded side-computation: unrecognized address formats leave every
	// component nil.
	components := s.addressParser.Parse(raw.StreetAddress)
	restaurant.Suburb = components.Suburb
	restaurant.State = components.State
	restaurant.Postcode = components.Postcode
	restaurant.Country = components.Country

	if err := s.repo.Create(ctx, restaurant); err != nil {
		if apperr.IsConflict(err) {
			// Another writer inserted the same place between our lookup
			// and insert. Re-read the winner and merge into it; the race
			// never reaches the caller.
			winner, readErr := s.repo.GetByGmapsID(ctx, raw.GmapsID)
			if readErr != nil {
				return nil, false, apperr.Transient("looking up restaurant", readErr)
			}
			if winner != nil {
				return s.merge(ctx, winner, raw)
			}
		}
		return nil, false, apperr.Transient("creating restaurant", err)
	}

	s.enqueueScrape(ctx, restaurant)

	return restaurant, true, nil
}

// merge applies the fields discovery may legitimately change onto an
// already-stored restaurant. Timezone and parsed address components are
// preserved, and no scrape is triggered.
func (s *Service) merge(ctx context.Context, existing *Restaurant, raw finder.RawRestaurant) (*Restaurant, bool, error) {
	existing.Name = raw.Name
	existing.URL = raw.URL
	existing.VenueType = raw.VenueType
	existing.OpenHours = raw.OpenHours
	existing.StreetAddress = raw.StreetAddress
	existing.Latitude = raw.Latitude
	existing.Longitude = raw.Longitude

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, false, apperr.Transient("updating restaurant", err)
	}
	return existing, false, nil
}

// enqueueScrape publishes the scrape-request message for a newly created
// restaurant. A queue failure is logged and swallowed: scraping is
// best-effort and must never fail the upsert.
func (s *Service) enqueueScrape(ctx context.Context, restaurant *Restaurant) {
	if restaurant.URL == "" {
		return
	}

	now := time.Now().UTC()
	job := queue.Job{
		RestaurantID: restaurant.UUID,
		URL:          restaurant.URL,
		EnqueuedAt:   now,
	}

	if err := s.scrapeQueue.Enqueue(ctx, job); err != nil {
		log.Printf("⚠️  Failed to queue scrape for %s: %v", restaurant.UUID, err)
		return
	}

	if err := s.repo.MarkScrapeQueued(ctx, restaurant.UUID, now); err != nil {
		log.Printf("⚠️  Failed to stamp scrape_queued_at for %s: %v", restaurant.UUID, err)
	}
	restaurant.ScrapeQueuedAt = &now
}

// --------------------------------------------------
// Search flow: discover, upsert, filter
// --------------------------------------------------

type SearchResult struct {
	Restaurants []*Restaurant `json:"restaurants"`
	Created     int           `json:"restaurants_created"`
	Updated     int           `json:"restaurants_updated"`
}

func (s *Service) Search(ctx context.Context, address string, radiusMeters int, filter ListFilter) (*SearchResult, error) {
	if address == "" {
		return nil, apperr.Validation("address is required")
	}

	discovered, err := s.finder.FindRestaurants(ctx, address, radiusMeters)
	if err != nil {
		return nil, err
	}
	log.Printf("Found %d restaurants near %q", len(discovered), address)

	result := &SearchResult{}
	for _, raw := range discovered {
		restaurant, created, err := s.Upsert(ctx, raw)
		if err != nil {
			// One bad record must not sink the whole search
			log.Printf("⚠️  Failed to upsert %q: %v", raw.Name, err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}

		if s.matchesFilter(restaurant, filter) {
			result.Restaurants = append(result.Restaurants, restaurant)
			if filter.Limit > 0 && len(result.Restaurants) >= filter.Limit {
				break
			}
		}
	}

	return result, nil
}

func (s *Service) matchesFilter(restaurant *Restaurant, filter ListFilter) bool {
	if filter.Suburb != "" {
		if restaurant.Suburb == nil || !containsFold(*restaurant.Suburb, filter.Suburb) {
			return false
		}
	}
	if filter.Postcode != "" {
		if restaurant.Postcode == nil || *restaurant.Postcode != filter.Postcode {
			return false
		}
	}
	if filter.OpenNow != nil {
		open := OpenNow(restaurant.OpenHours, restaurant.Timezone, time.Now())
		if *filter.OpenNow != (open == OpenStateOpen) {
			return false
		}
	}
	return true
}

// --------------------------------------------------
// Listing and lookups
// --------------------------------------------------

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Restaurant, error) {
	// Pull extra rows when the open-now filter is on, since it is applied
	// after the database query.
	dbFilter := filter
	if filter.OpenNow != nil && filter.Limit > 0 {
		dbFilter.Limit = filter.Limit * 2
	}

	restaurants, err := s.repo.List(ctx, dbFilter)
	if err != nil {
		return nil, err
	}
	if filter.OpenNow == nil {
		return restaurants, nil
	}

	now := time.Now()
	filtered := make([]*Restaurant, 0, len(restaurants))
	for _, restaurant := range restaurants {
		open := OpenNow(restaurant.OpenHours, restaurant.Timezone, now)
		if *filter.OpenNow == (open == OpenStateOpen) {
			filtered = append(filtered, restaurant)
			if filter.Limit > 0 && len(filtered) >= filter.Limit {
				break
			}
		}
	}
	return filtered, nil
}

func (s *Service) Get(ctx context.Context, restaurantUUID string) (*Restaurant, error) {
	restaurant, err := s.repo.GetByUUID(ctx, restaurantUUID)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, apperr.Validation("restaurant %s not found", restaurantUUID)
	}
	return restaurant, nil
}

// UpdateDetails writes operator-editable fields. Timezone and parsed
// address components stay untouched, same as discovery updates.
func (s *Service) UpdateDetails(ctx context.Context, restaurant *Restaurant) (*Restaurant, error) {
	if err := s.repo.Update(ctx, restaurant); err != nil {
		return nil, apperr.Transient("updating restaurant", err)
	}
	return restaurant, nil
}

func (s *Service) Delete(ctx context.Context, restaurantUUID string) error {
	removed, err := s.repo.SoftDelete(ctx, restaurantUUID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.Validation("restaurant %s not found", restaurantUUID)
	}
	return nil
}

// --------------------------------------------------
// Scrape status (tri-state)
// --------------------------------------------------
func (s *Service) GetScrapeStatus(ctx context.Context, restaurantUUID string) (ScrapeStatus, error) {
	restaurant, err := s.Get(ctx, restaurantUUID)
	if err != nil {
		return "", err
	}

	switch {
	case restaurant.ScrapeQueuedAt == nil && restaurant.DealsScrapedAt == nil:
		return ScrapeNotStarted, nil
	case restaurant.DealsScrapedAt == nil:
		return ScrapePending, nil
	case restaurant.ScrapeQueuedAt != nil && restaurant.ScrapeQueuedAt.After(*restaurant.DealsScrapedAt):
		// Re-queued after the last completed scrape
		return ScrapePending, nil
	default:
		return ScrapeCompleted, nil
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
