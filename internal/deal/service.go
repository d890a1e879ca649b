package deal

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rolzy/mealsteals/internal/apperr"
	"github.com/rolzy/mealsteals/internal/core"
)

type Service struct {
	repo             Repository
	restaurantReader core.RestaurantReader
}

func NewService(repo Repository, restaurantReader core.RestaurantReader) *Service {
	return &Service{
		repo:             repo,
		restaurantReader: restaurantReader,
	}
}

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Created   int     `json:"created"`
	Updated   int     `json:"updated"`
	Unchanged int     `json:"unchanged"`
	Removed   int     `json:"removed"`
	Deals     []*Deal `json:"deals"`
}

// --------------------------------------------------
// Reconcile a scrape batch against stored deals
// --------------------------------------------------
//
// Three-way diff on the natural key (normalized dish + day):
//   - key in both:       update mutable fields in place, keep uuid/created_at
//   - key only incoming: insert as a new deal
//   - key only existing: soft-delete (retained for history)
//
// Re-running with an identical batch is a no-op, which is what makes
// at-least-once queue delivery safe without any locking.
func (s *Service) Reconcile(ctx context.Context, restaurantID string, batch []Incoming) (*ReconcileResult, error) {
	if restaurantID == "" {
		return nil, apperr.Validation("restaurant id is required")
	}

	exists, err := s.restaurantReader.Exists(ctx, restaurantID)
	if err != nil {
		return nil, apperr.Transient("checking restaurant", err)
	}
	if !exists {
		return nil, apperr.Validation("restaurant %s not found", restaurantID)
	}

	existing, err := s.repo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		// Nothing to diff against; abort the whole batch so the queue
		// redelivers it.
		return nil, apperr.Transient("loading existing deals", err)
	}

	// Storage should never hold two live deals with the same key, but if
	// it does (e.g. rows written before the key was enforced), keep the
	// first and sweep the rest below so duplicates don't survive forever.
	existingByKey := make(map[NaturalKey]*Deal, len(existing))
	var duplicates []*Deal
	for _, d := range existing {
		if _, dup := existingByKey[d.NaturalKey()]; dup {
			duplicates = append(duplicates, d)
			continue
		}
		existingByKey[d.NaturalKey()] = d
	}

	result := &ReconcileResult{}
	matched := make(map[NaturalKey]bool)

	for _, incoming := range batch {
		if incoming.Dish == "" {
			continue
		}

		key := incoming.naturalKey()
		if matched[key] {
			// Duplicate within the batch itself
			continue
		}
		matched[key] = true

		current, ok := existingByKey[key]
		if !ok {
			created := &Deal{
				RestaurantID: restaurantID,
				Dish:         incoming.Dish,
				Price:        incoming.Price,
				DayOfWeek:    incoming.DayOfWeek,
				StartTime:    incoming.StartTime,
				EndTime:      incoming.EndTime,
				Notes:        incoming.Notes,
				SourceText:   incoming.SourceText,
			}
			if err := s.repo.Create(ctx, created); err != nil {
				return nil, apperr.Transient("creating deal", err)
			}
			result.Created++
			result.Deals = append(result.Deals, created)
			continue
		}

		if !mutableFieldsChanged(current, incoming) {
			result.Unchanged++
			result.Deals = append(result.Deals, current)
			continue
		}

		current.Price = incoming.Price
		current.StartTime = incoming.StartTime
		current.EndTime = incoming.EndTime
		current.Notes = incoming.Notes
		current.SourceText = incoming.SourceText
		if err := s.repo.UpdateMutable(ctx, current); err != nil {
			return nil, apperr.Transient("updating deal", err)
		}
		result.Updated++
		result.Deals = append(result.Deals, current)
	}

	// Previously scraped deals no longer reported: soft-delete
	for key, d := range existingByKey {
		if matched[key] {
			continue
		}
		removed, err := s.repo.SoftDelete(ctx, d.UUID)
		if err != nil {
			return nil, apperr.Transient("removing stale deal", err)
		}
		if removed {
			result.Removed++
		}
	}

	// Duplicate-keyed rows lost the diff above, so they are always stale.
	for _, d := range duplicates {
		removed, err := s.repo.SoftDelete(ctx, d.UUID)
		if err != nil {
			return nil, apperr.Transient("removing duplicate deal", err)
		}
		if removed {
			result.Removed++
		}
	}

	now := time.Now().UTC()
	if err := s.restaurantReader.MarkDealsScraped(ctx, restaurantID, now); err != nil {
		log.Printf("⚠️  Failed to stamp deals_scraped_at for %s: %v", restaurantID, err)
	}

	log.Printf("Reconciled deals for %s: %d new, %d updated, %d unchanged, %d removed",
		restaurantID, result.Created, result.Updated, result.Unchanged, result.Removed)

	return result, nil
}

func mutableFieldsChanged(current *Deal, incoming Incoming) bool {
	if !priceEqual(current.Price, incoming.Price) {
		return true
	}
	if !strPtrEqual(current.StartTime, incoming.StartTime) ||
		!strPtrEqual(current.EndTime, incoming.EndTime) ||
		!strPtrEqual(current.Notes, incoming.Notes) {
		return true
	}
	return false
}

func priceEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// --------------------------------------------------
// CRUD surface
// --------------------------------------------------

func (s *Service) GetDeal(ctx context.Context, dealUUID string) (*Deal, error) {
	deal, err := s.repo.GetByUUID(ctx, dealUUID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, apperr.Validation("deal %s not found", dealUUID)
	}
	return deal, nil
}

func (s *Service) ListByRestaurant(ctx context.Context, restaurantID string) ([]*Deal, error) {
	exists, err := s.restaurantReader.Exists(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.Validation("restaurant %s not found", restaurantID)
	}
	return s.repo.ListByRestaurant(ctx, restaurantID)
}

func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]*Deal, error) {
	if filter.DayOfWeek != "" {
		day, ok := ParseDayOfWeek(filter.DayOfWeek)
		if !ok {
			return nil, apperr.Validation("invalid day of week %q", filter.DayOfWeek)
		}
		filter.DayOfWeek = string(day)
	}
	if filter.RestaurantID != "" {
		exists, err := s.restaurantReader.Exists(ctx, filter.RestaurantID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.Validation("restaurant %s not found", filter.RestaurantID)
		}
	}
	return s.repo.Search(ctx, filter)
}

func (s *Service) ListByDay(ctx context.Context, day string, limit int) ([]*Deal, error) {
	parsed, ok := ParseDayOfWeek(day)
	if !ok {
		return nil, apperr.Validation("invalid day of week %q", day)
	}
	return s.repo.ListByDay(ctx, parsed, limit)
}

func (s *Service) UpdateDeal(ctx context.Context, deal *Deal) (*Deal, error) {
	current, err := s.repo.GetByUUID(ctx, deal.UUID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperr.Validation("deal %s not found", deal.UUID)
	}

	current.Price = deal.Price
	current.StartTime = deal.StartTime
	current.EndTime = deal.EndTime
	current.Notes = deal.Notes
	if err := s.repo.UpdateMutable(ctx, current); err != nil {
		return nil, fmt.Errorf("updating deal: %w", err)
	}
	return current, nil
}

func (s *Service) DeleteDeal(ctx context.Context, dealUUID string) error {
	removed, err := s.repo.SoftDelete(ctx, dealUUID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.Validation("deal %s not found", dealUUID)
	}
	return nil
}
