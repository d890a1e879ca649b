package restaurant

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rolzy/mealsteals/internal/apperr"
	"github.com/rolzy/mealsteals/internal/finder"
	"github.com/rolzy/mealsteals/internal/queue"
)

// --------------------------------------------------
// Mock Repository
// --------------------------------------------------

type MockRepository struct {
	byUUID    map[string]*Restaurant
	byGmapsID map[string]*Restaurant
	nextID    int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		byUUID:    make(map[string]*Restaurant),
		byGmapsID: make(map[string]*Restaurant),
		nextID:    1,
	}
}

func (m *MockRepository) Create(ctx context.Context, restaurant *Restaurant) error {
	restaurant.UUID = "uuid-" + strconv.Itoa(m.nextID)
	m.nextID++
	restaurant.CreatedAt = time.Now().UTC()

	m.byUUID[restaurant.UUID] = restaurant
	m.byGmapsID[restaurant.GmapsID] = restaurant
	return nil
}

func (m *MockRepository) GetByUUID(ctx context.Context, uuid string) (*Restaurant, error) {
	return m.byUUID[uuid], nil
}

func (m *MockRepository) GetByGmapsID(ctx context.Context, gmapsID string) (*Restaurant, error) {
	return m.byGmapsID[gmapsID], nil
}

func (m *MockRepository) Update(ctx context.Context, restaurant *Restaurant) error {
	now := time.Now().UTC()
	restaurant.UpdatedAt = &now
	return nil
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]*Restaurant, error) {
	var out []*Restaurant
	for _, r := range m.byUUID {
		out = append(out, r)
	}
	return out, nil
}

func (m *MockRepository) SoftDelete(ctx context.Context, uuid string) (bool, error) {
	r, ok := m.byUUID[uuid]
	if !ok || r.IsDeleted {
		return false, nil
	}
	r.IsDeleted = true
	return true, nil
}

func (m *MockRepository) MarkScrapeQueued(ctx context.Context, uuid string, at time.Time) error {
	if r, ok := m.byUUID[uuid]; ok {
		r.ScrapeQueuedAt = &at
	}
	return nil
}

func (m *MockRepository) Exists(ctx context.Context, uuid string) (bool, error) {
	r, ok := m.byUUID[uuid]
	return ok && !r.IsDeleted, nil
}

func (m *MockRepository) MarkDealsScraped(ctx context.Context, uuid string, at time.Time) error {
	if r, ok := m.byUUID[uuid]; ok {
		r.DealsScrapedAt = &at
	}
	return nil
}

// --------------------------------------------------
// Mock discovery + timezone lookups
// --------------------------------------------------

type MockFinder struct {
	results []finder.RawRestaurant
	err     error
}

func (m *MockFinder) FindRestaurants(ctx context.Context, address string, radiusMeters int) ([]finder.RawRestaurant, error) {
	return m.results, m.err
}

type MockTimezones struct {
	timezone string
	err      error
	calls    int
}

func (m *MockTimezones) TimezoneAt(ctx context.Context, latitude, longitude float64) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.timezone, nil
}

func newTestService(repo Repository, f finder.Finder, tz *MockTimezones, q queue.Queue) *Service {
	return NewService(repo, f, tz, NewAustralianAddressParser(), q)
}

func rawPub() finder.RawRestaurant {
	return finder.RawRestaurant{
		GmapsID:       "gmaps-123",
		Name:          "The Boundary Hotel",
		URL:           "https://theboundary.example.com",
		VenueType:     []string{"bar", "restaurant"},
		OpenHours:     []string{"Mon-Fri: 11:00 AM - 10:00 PM"},
		StreetAddress: "1 Boundary St, West End QLD 4101, Australia",
		Latitude:      -27.48,
		Longitude:     153.01,
	}
}

// --------------------------------------------------
// Upsert
// --------------------------------------------------

func TestUpsertCreatesRestaurant(t *testing.T) {
	repo := NewMockRepository()
	tz := &MockTimezones{timezone: "Australia/Brisbane"}
	q := queue.NewMemory(time.Second, 3)
	service := newTestService(repo, &MockFinder{}, tz, q)

	created, isNew, err := service.Upsert(context.Background(), rawPub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isNew {
		t.Fatalf("expected a newly created restaurant")
	}
	if created.Timezone == nil || *created.Timezone != "Australia/Brisbane" {
		t.Fatalf("expected timezone to be stored, got %v", created.Timezone)
	}
	if created.Suburb == nil || *created.Suburb != "West End" {
		t.Fatalf("expected suburb parsed from address, got %v", created.Suburb)
	}
	if created.ScrapeQueuedAt == nil {
		t.Fatalf("expected scrape to be queued for a new restaurant")
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 queued scrape job, got %d", q.Len())
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := NewMockRepository()
	tz := &MockTimezones{timezone: "Australia/Brisbane"}
	q := queue.NewMemory(time.Second, 3)
	service := newTestService(repo, &MockFinder{}, tz, q)

	first, _, err := service.Upsert(context.Background(), rawPub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, isNew, err := service.Upsert(context.Background(), rawPub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isNew {
		t.Fatalf("expected the second upsert to merge, not create")
	}
	if second.UUID != first.UUID {
		t.Fatalf("expected the same restaurant, got %s and %s", first.UUID, second.UUID)
	}
	if q.Len() != 1 {
		t.Fatalf("expected no second scrape job, queue has %d", q.Len())
	}
}

func TestUpsertPreservesTimezoneOnUpdate(t *testing.T) {
	repo := NewMockRepository()
	tz := &MockTimezones{timezone: "Australia/Brisbane"}
	q := queue.NewMemory(time.Second, 3)
	service := newTestService(repo, &MockFinder{}, tz, q)

	if _, _, err := service.Upsert(context.Background(), rawPub()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Discovery data changed; the cached timezone must not be recomputed
	refreshed := rawPub()
	refreshed.Name = "The Boundary Hotel (Renovated)"

	updated, _, err := service.Upsert(context.Background(), refreshed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "The Boundary Hotel (Renovated)" {
		t.Fatalf("expected name to refresh, got %q", updated.Name)
	}
	if updated.Timezone == nil || *updated.Timezone != "Australia/Brisbane" {
		t.Fatalf("expected timezone preserved, got %v", updated.Timezone)
	}
	if tz.calls != 1 {
		t.Fatalf("expected exactly one timezone lookup, got %d", tz.calls)
	}
}

func TestUpsertFailsOpenOnTimezoneError(t *testing.T) {
	repo := NewMockRepository()
	tz := &MockTimezones{err: errors.New("api quota exceeded")}
	q := queue.NewMemory(time.Second, 3)
	service := newTestService(repo, &MockFinder{}, tz, q)

	created, _, err := service.Upsert(context.Background(), rawPub())
	if err != nil {
		t.Fatalf("expected upsert to succeed without a timezone, got %v", err)
	}
	if created.Timezone != nil {
		t.Fatalf("expected nil timezone, got %v", *created.Timezone)
	}
}

// racingRepository simulates a concurrent writer: the dedupe lookup sees
// nothing, then the insert collides with the racer's committed row.
type racingRepository struct {
	*MockRepository
	winner *Restaurant
	raced  bool
}

func (r *racingRepository) GetByGmapsID(ctx context.Context, gmapsID string) (*Restaurant, error) {
	if !r.raced {
		return nil, nil
	}
	return r.MockRepository.GetByGmapsID(ctx, gmapsID)
}

func (r *racingRepository) Create(ctx context.Context, restaurant *Restaurant) error {
	if !r.raced {
		r.raced = true
		if err := r.MockRepository.Create(ctx, r.winner); err != nil {
			return err
		}
		return apperr.Conflict("restaurant already exists",
			errors.New(`duplicate key value violates unique constraint "idx_restaurants_gmaps_id"`))
	}
	return r.MockRepository.Create(ctx, restaurant)
}

func TestUpsertResolvesCreateRaceByMerging(t *testing.T) {
	winner := &Restaurant{GmapsID: "gmaps-123", Name: "The Boundary Hotel"}
	repo := &racingRepository{MockRepository: NewMockRepository(), winner: winner}
	tz := &MockTimezones{timezone: "Australia/Brisbane"}
	q := queue.NewMemory(time.Second, 3)
	service := newTestService(repo, &MockFinder{}, tz, q)

	raw := rawPub()
	raw.Name = "The Boundary Hotel (Renamed)"

	merged, isNew, err := service.Upsert(context.Background(), raw)
	if err != nil {
		t.Fatalf("expected the race resolved, got %v", err)
	}
	if isNew {
		t.Fatalf("expected a merge into the racer's row, not a create")
	}
	if merged.UUID != winner.UUID {
		t.Fatalf("expected the racer's restaurant, got %s", merged.UUID)
	}
	if merged.Name != "The Boundary Hotel (Renamed)" {
		t.Fatalf("expected discovery fields merged, got %q", merged.Name)
	}
	if q.Len() != 0 {
		t.Fatalf("expected no scrape job from the losing writer, queue has %d", q.Len())
	}
}

func TestUpsertRequiresGmapsID(t *testing.T) {
	repo := NewMockRepository()
	service := newTestService(repo, &MockFinder{}, &MockTimezones{}, queue.NewMemory(time.Second, 3))

	raw := rawPub()
	raw.GmapsID = ""

	_, _, err := service.Upsert(context.Background(), raw)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpsertSkipsScrapeWithoutURL(t *testing.T) {
	repo := NewMockRepository()
	tz := &MockTimezones{timezone: "Australia/Brisbane"}
	q := queue.NewMemory(time.Second, 3)
	service := newTestService(repo, &MockFinder{}, tz, q)

	raw := rawPub()
	raw.URL = ""

	created, _, err := service.Upsert(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ScrapeQueuedAt != nil {
		t.Fatalf("expected no scrape without a website")
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}

// --------------------------------------------------
// Search
// --------------------------------------------------

func TestSearchUpsertsDiscoveredRestaurants(t *testing.T) {
	repo := NewMockRepository()
	other := rawPub()
	other.GmapsID = "gmaps-456"
	other.Name = "The Fox Hotel"

	f := &MockFinder{results: []finder.RawRestaurant{rawPub(), other}}
	tz := &MockTimezones{timezone: "Australia/Brisbane"}
	service := newTestService(repo, f, tz, queue.NewMemory(time.Second, 3))

	result, err := service.Search(context.Background(), "West End QLD", 1000, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 2 || result.Updated != 0 {
		t.Fatalf("expected 2 created, got created=%d updated=%d", result.Created, result.Updated)
	}

	// Re-running the same search merges instead of duplicating
	result, err = service.Search(context.Background(), "West End QLD", 1000, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 0 || result.Updated != 2 {
		t.Fatalf("expected 2 updated, got created=%d updated=%d", result.Created, result.Updated)
	}
}

func TestSearchRequiresAddress(t *testing.T) {
	service := newTestService(NewMockRepository(), &MockFinder{}, &MockTimezones{}, queue.NewMemory(time.Second, 3))

	_, err := service.Search(context.Background(), "", 1000, ListFilter{})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSearchToleratesBadRecords(t *testing.T) {
	bad := rawPub()
	bad.GmapsID = ""

	f := &MockFinder{results: []finder.RawRestaurant{bad, rawPub()}}
	tz := &MockTimezones{timezone: "Australia/Brisbane"}
	service := newTestService(NewMockRepository(), f, tz, queue.NewMemory(time.Second, 3))

	result, err := service.Search(context.Background(), "West End QLD", 1000, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("expected the good record to land, got created=%d", result.Created)
	}
}

// --------------------------------------------------
// Scrape status
// --------------------------------------------------

func TestGetScrapeStatus(t *testing.T) {
	repo := NewMockRepository()
	service := newTestService(repo, &MockFinder{}, &MockTimezones{}, queue.NewMemory(time.Second, 3))

	r := &Restaurant{GmapsID: "gmaps-789", Name: "Quiet Pub"}
	if err := repo.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := service.GetScrapeStatus(context.Background(), r.UUID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != ScrapeNotStarted {
		t.Fatalf("expected not_started, got %s", status)
	}

	queuedAt := time.Now().UTC()
	r.ScrapeQueuedAt = &queuedAt

	status, _ = service.GetScrapeStatus(context.Background(), r.UUID)
	if status != ScrapePending {
		t.Fatalf("expected pending, got %s", status)
	}

	scrapedAt := queuedAt.Add(time.Minute)
	r.DealsScrapedAt = &scrapedAt

	status, _ = service.GetScrapeStatus(context.Background(), r.UUID)
	if status != ScrapeCompleted {
		t.Fatalf("expected completed, got %s", status)
	}

	// Re-queued after completion goes back to pending
	requeuedAt := scrapedAt.Add(time.Minute)
	r.ScrapeQueuedAt = &requeuedAt

	status, _ = service.GetScrapeStatus(context.Background(), r.UUID)
	if status != ScrapePending {
		t.Fatalf("expected pending after requeue, got %s", status)
	}
}
