package deal

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayOfWeek is a single day, or the "everyday" recurring marker.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
	Everyday  DayOfWeek = "everyday"
)

var Weekdays = []DayOfWeek{
	Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday,
}

var dayAliases = map[string]DayOfWeek{
	"monday": Monday, "mon": Monday,
	"tuesday": Tuesday, "tue": Tuesday, "tues": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday,
	"thursday": Thursday, "thu": Thursday, "thur": Thursday, "thurs": Thursday,
	"friday": Friday, "fri": Friday,
	"saturday": Saturday, "sat": Saturday,
	"sunday": Sunday, "sun": Sunday,
}

var everydayAliases = map[string]bool{
	"everyday": true, "every day": true, "daily": true, "all": true,
	"all week": true, "all days": true, "7 days": true,
	"whole week": true, "entire week": true,
}

// ParseDayOfWeek maps extractor output ("Mon", "friday", "daily", ...) onto
// the enum. Returns false for anything unrecognized.
func ParseDayOfWeek(s string) (DayOfWeek, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if everydayAliases[normalized] {
		return Everyday, true
	}
	if day, ok := dayAliases[normalized]; ok {
		return day, true
	}
	return "", false
}

func ValidDayOfWeek(s string) bool {
	_, ok := ParseDayOfWeek(s)
	return ok
}

// Deal is the persisted entity.
type Deal struct {
	UUID         string           `json:"uuid"`
	RestaurantID string           `json:"restaurant_id"`
	Dish         string           `json:"dish"`
	Price        *decimal.Decimal `json:"price"`
	DayOfWeek    DayOfWeek        `json:"day_of_week"`
	StartTime    *string          `json:"start_time,omitempty"`
	EndTime      *string          `json:"end_time,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	SourceText   *string          `json:"source_text,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// NaturalKey identifies "the same deal" across rescrapes. Price and the
// time window are mutable and deliberately excluded.
type NaturalKey struct {
	Dish string
	Day  DayOfWeek
}

func (d *Deal) NaturalKey() NaturalKey {
	return NaturalKey{
		Dish: NormalizeDish(d.Dish),
		Day:  d.DayOfWeek,
	}
}

func NormalizeDish(dish string) string {
	return strings.ToLower(strings.TrimSpace(dish))
}

// Incoming is one cleaned record from a scrape batch, ready to reconcile.
type Incoming struct {
	Dish       string
	Price      *decimal.Decimal
	DayOfWeek  DayOfWeek
	StartTime  *string
	EndTime    *string
	Notes      *string
	SourceText *string
}

func (in *Incoming) naturalKey() NaturalKey {
	return NaturalKey{
		Dish: NormalizeDish(in.Dish),
		Day:  in.DayOfWeek,
	}
}

// SearchFilter narrows deal listings.
type SearchFilter struct {
	RestaurantID string
	DayOfWeek    string
	MaxPrice     *decimal.Decimal
	DishSearch   string
	Limit        int
}
