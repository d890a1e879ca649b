package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rolzy/mealsteals/internal/deal"
)

// RawDeal is one record as the model returns it: loosely typed, possibly
// malformed. price may be a number, a string with currency noise, or null;
// day_of_week may be a single string or a list.
type RawDeal struct {
	Dish      string          `json:"dish"`
	Price     json.RawMessage `json:"price"`
	DayOfWeek json.RawMessage `json:"day_of_week"`
	StartTime *string         `json:"start_time"`
	EndTime   *string         `json:"end_time"`
	Notes     *string         `json:"notes"`
}

// ParseDeals decodes the model's JSON output. A single object and an array
// of objects are both accepted.
func ParseDeals(rawJSON string) ([]RawDeal, error) {
	trimmed := strings.TrimSpace(rawJSON)
	if trimmed == "" {
		return nil, errors.New("empty extractor output")
	}

	if strings.HasPrefix(trimmed, "[") {
		var deals []RawDeal
		if err := json.Unmarshal([]byte(trimmed), &deals); err != nil {
			return nil, fmt.Errorf("invalid extractor JSON: %w", err)
		}
		return deals, nil
	}

	var single RawDeal
	if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
		return nil, fmt.Errorf("invalid extractor JSON: %w", err)
	}
	return []RawDeal{single}, nil
}

// NormalizeDeals converts raw records into clean reconciliation input.
// Malformed individual records are dropped and counted; partial success is
// preferred over whole-batch failure. Records listing several days expand
// into one entry per day.
func NormalizeDeals(raws []RawDeal, sourceText string) (cleaned []deal.Incoming, skipped int) {
	var source *string
	if sourceText != "" {
		source = &sourceText
	}

	for _, raw := range raws {
		dish := strings.TrimSpace(raw.Dish)
		if dish == "" {
			skipped++
			continue
		}

		price, err := normalizePrice(raw.Price)
		if err != nil {
			log.Printf("⚠️  Skipping deal %q: %v", dish, err)
			skipped++
			continue
		}

		days := normalizeDays(raw.DayOfWeek)

		for _, day := range days {
			cleaned = append(cleaned, deal.Incoming{
				Dish:       dish,
				Price:      price,
				DayOfWeek:  day,
				StartTime:  normalizeClock(raw.StartTime),
				EndTime:    normalizeClock(raw.EndTime),
				Notes:      trimPtr(raw.Notes),
				SourceText: source,
			})
		}
	}

	return cleaned, skipped
}

// normalizePrice handles numbers, currency-noise strings ("$12.50"), and
// null. A present but unparseable price fails the record.
func normalizePrice(raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		price := decimal.NewFromFloat(number).Round(2)
		return &price, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, fmt.Errorf("unparseable price %s", string(raw))
	}

	text = strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(text))
	if text == "" || strings.EqualFold(text, "null") ||
		strings.EqualFold(text, "none") || strings.EqualFold(text, "n/a") {
		return nil, nil
	}

	price, err := decimal.NewFromString(text)
	if err != nil {
		return nil, fmt.Errorf("unparseable price %q", text)
	}
	price = price.Round(2)
	return &price, nil
}

// normalizeDays accepts a single day string or a list. Unrecognized or
// missing values mean "everyday" (original scraper behavior: an unknown
// day is assumed recurring rather than dropped).
func normalizeDays(raw json.RawMessage) []deal.DayOfWeek {
	everyday := []deal.DayOfWeek{deal.Everyday}

	if len(raw) == 0 || string(raw) == "null" {
		return everyday
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if day, ok := deal.ParseDayOfWeek(single); ok {
			return []deal.DayOfWeek{day}
		}
		return everyday
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return everyday
	}

	seen := make(map[deal.DayOfWeek]bool)
	var days []deal.DayOfWeek
	for _, entry := range list {
		day, ok := deal.ParseDayOfWeek(entry)
		if !ok {
			continue
		}
		if day == deal.Everyday {
			return everyday
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}

	if len(days) == 0 {
		return everyday
	}
	if len(days) == len(deal.Weekdays) {
		return everyday
	}
	return days
}

var clockPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

func normalizeClock(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if !clockPattern.MatchString(trimmed) {
		return nil
	}
	return &trimmed
}

func trimPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
