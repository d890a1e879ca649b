package restaurant

import "time"

// Restaurant is the persisted entity. gmaps_id is the external place id
// used as the dedupe key; timezone is computed once at creation and never
// recomputed on update.
type Restaurant struct {
	UUID          string   `json:"uuid"`
	GmapsID       string   `json:"gmaps_id"`
	Name          string   `json:"name"`
	URL           string   `json:"url"`
	VenueType     []string `json:"venue_type"`
	OpenHours     []string `json:"open_hours"`
	StreetAddress string   `json:"street_address"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`

	// Parsed address components, only populated for recognized formats
	Suburb   *string `json:"suburb,omitempty"`
	State    *string `json:"state,omitempty"`
	Postcode *string `json:"postcode,omitempty"`
	Country  *string `json:"country,omitempty"`

	// IANA timezone string (e.g. "Australia/Brisbane"), nullable
	Timezone *string `json:"timezone,omitempty"`

	ScrapeQueuedAt *time.Time `json:"scrape_queued_at,omitempty"`
	DealsScrapedAt *time.Time `json:"deals_scraped_at,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// ScrapeStatus is the tri-state answer for the status-polling endpoint.
type ScrapeStatus string

const (
	ScrapeNotStarted ScrapeStatus = "not_started"
	ScrapePending    ScrapeStatus = "pending"
	ScrapeCompleted  ScrapeStatus = "completed"
)

// ListFilter narrows restaurant listings.
type ListFilter struct {
	Limit    int
	Suburb   string
	Postcode string
	OpenNow  *bool
}
