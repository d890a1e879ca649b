package scrape

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/rolzy/mealsteals/internal/apperr"
	"github.com/rolzy/mealsteals/internal/deal"
	"github.com/rolzy/mealsteals/internal/queue"
)

// --------------------------------------------------
// Mocks
// --------------------------------------------------

type MockPages struct {
	textByURL map[string]string
	fetchErr  error
}

func (m *MockPages) FetchText(ctx context.Context, pageURL string) (string, error) {
	if m.fetchErr != nil {
		return "", m.fetchErr
	}
	return m.textByURL[pageURL], nil
}

func (m *MockPages) FindDealPages(ctx context.Context, siteURL string) ([]string, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	pages := []string{siteURL}
	for page := range m.textByURL {
		if page != siteURL {
			pages = append(pages, page)
		}
	}
	return pages, nil
}

type MockExtractor struct {
	output string
	err    error
	calls  int
}

func (m *MockExtractor) ExtractDeals(ctx context.Context, pageText string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

type MockDealRepo struct {
	deals  map[string]*deal.Deal
	nextID int
}

func NewMockDealRepo() *MockDealRepo {
	return &MockDealRepo{deals: make(map[string]*deal.Deal), nextID: 1}
}

func (m *MockDealRepo) Create(ctx context.Context, d *deal.Deal) error {
	d.UUID = "deal-" + strconv.Itoa(m.nextID)
	m.nextID++
	d.CreatedAt = time.Now().UTC()
	m.deals[d.UUID] = d
	return nil
}

func (m *MockDealRepo) GetByUUID(ctx context.Context, uuid string) (*deal.Deal, error) {
	return m.deals[uuid], nil
}

func (m *MockDealRepo) ListByRestaurant(ctx context.Context, restaurantID string) ([]*deal.Deal, error) {
	var out []*deal.Deal
	for _, d := range m.deals {
		if d.RestaurantID == restaurantID && !d.IsDeleted {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockDealRepo) ListByDay(ctx context.Context, day deal.DayOfWeek, limit int) ([]*deal.Deal, error) {
	return nil, nil
}

func (m *MockDealRepo) Search(ctx context.Context, filter deal.SearchFilter) ([]*deal.Deal, error) {
	return nil, nil
}

func (m *MockDealRepo) UpdateMutable(ctx context.Context, d *deal.Deal) error {
	return nil
}

func (m *MockDealRepo) SoftDelete(ctx context.Context, uuid string) (bool, error) {
	d, ok := m.deals[uuid]
	if !ok || d.IsDeleted {
		return false, nil
	}
	d.IsDeleted = true
	return true, nil
}

type MockReader struct {
	known   map[string]bool
	stamped int
}

func (m *MockReader) Exists(ctx context.Context, uuid string) (bool, error) {
	return m.known[uuid], nil
}

func (m *MockReader) MarkDealsScraped(ctx context.Context, uuid string, at time.Time) error {
	m.stamped++
	return nil
}

func newTestScrapeService(pages PageSource, extractor *MockExtractor) (*Service, *MockDealRepo, *MockReader) {
	repo := NewMockDealRepo()
	reader := &MockReader{known: map[string]bool{"rest-1": true}}
	dealService := deal.NewService(repo, reader)
	return NewService(pages, extractor, dealService, reader, nil), repo, reader
}

func scrapeJob() queue.Job {
	return queue.Job{
		RestaurantID: "rest-1",
		URL:          "https://pub.example.com",
		EnqueuedAt:   time.Now().UTC(),
	}
}

// --------------------------------------------------
// Process
// --------------------------------------------------

func TestProcessStoresExtractedDeals(t *testing.T) {
	pages := &MockPages{textByURL: map[string]string{
		"https://pub.example.com": "Monday parmy night fifteen bucks",
	}}
	extractor := &MockExtractor{
		output: `[{"dish": "Parmy Night", "price": 15.0, "day_of_week": "monday"}]`,
	}
	service, repo, reader := newTestScrapeService(pages, extractor)

	if err := service.Process(context.Background(), scrapeJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := repo.ListByRestaurant(context.Background(), "rest-1")
	if len(stored) != 1 || stored[0].Dish != "Parmy Night" {
		t.Fatalf("expected the deal stored, got %+v", stored)
	}
	if reader.stamped != 1 {
		t.Fatalf("expected scrape completion stamped, got %d", reader.stamped)
	}
}

func TestProcessZeroDealsIsTerminal(t *testing.T) {
	pages := &MockPages{textByURL: map[string]string{
		"https://pub.example.com": "Just a plain pub website",
	}}
	extractor := &MockExtractor{output: `[]`}
	service, repo, reader := newTestScrapeService(pages, extractor)

	if err := service.Process(context.Background(), scrapeJob()); err != nil {
		t.Fatalf("expected zero deals to succeed, got %v", err)
	}
	if reader.stamped != 1 {
		t.Fatalf("expected completion stamped even with no deals, got %d", reader.stamped)
	}
	if len(repo.deals) != 0 {
		t.Fatalf("expected no deals stored, got %d", len(repo.deals))
	}
}

func TestProcessZeroDealsLeavesExistingDealsAlone(t *testing.T) {
	pages := &MockPages{textByURL: map[string]string{
		"https://pub.example.com": "Menu temporarily unavailable",
	}}
	extractor := &MockExtractor{output: `[]`}
	service, repo, _ := newTestScrapeService(pages, extractor)

	existing := &deal.Deal{RestaurantID: "rest-1", Dish: "Parmy Night", DayOfWeek: deal.Monday}
	if err := repo.Create(context.Background(), existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.Process(context.Background(), scrapeJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := repo.ListByRestaurant(context.Background(), "rest-1")
	if len(stored) != 1 {
		t.Fatalf("expected the existing deal untouched, got %d", len(stored))
	}
}

func TestProcessTransientFetchFailurePropagates(t *testing.T) {
	pages := &MockPages{fetchErr: apperr.Transient("page unavailable", errors.New("http 503"))}
	extractor := &MockExtractor{}
	service, _, reader := newTestScrapeService(pages, extractor)

	err := service.Process(context.Background(), scrapeJob())
	if !apperr.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if reader.stamped != 0 {
		t.Fatalf("expected no completion stamp on failure")
	}
	if extractor.calls != 0 {
		t.Fatalf("expected extractor untouched on fetch failure")
	}
}

func TestProcessExtractorFailurePropagates(t *testing.T) {
	pages := &MockPages{textByURL: map[string]string{
		"https://pub.example.com": "some page text",
	}}
	extractor := &MockExtractor{err: apperr.Transient("anthropic api unavailable", errors.New("http 529"))}
	service, _, reader := newTestScrapeService(pages, extractor)

	err := service.Process(context.Background(), scrapeJob())
	if !apperr.IsTransient(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if reader.stamped != 0 {
		t.Fatalf("expected no completion stamp on failure")
	}
}

func TestProcessRejectsMalformedJob(t *testing.T) {
	service, _, _ := newTestScrapeService(&MockPages{}, &MockExtractor{})

	err := service.Process(context.Background(), queue.Job{RestaurantID: "rest-1"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for missing url, got %v", err)
	}

	err = service.Process(context.Background(), queue.Job{URL: "https://pub.example.com"})
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error for missing restaurant id, got %v", err)
	}
}

func TestProcessUnknownRestaurantIsValidationError(t *testing.T) {
	service, _, _ := newTestScrapeService(&MockPages{}, &MockExtractor{})

	job := scrapeJob()
	job.RestaurantID = "rest-gone"

	err := service.Process(context.Background(), job)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
