package restaurant

import (
	"testing"
	"time"
)

func brisbane() *string {
	tz := "Australia/Brisbane"
	return &tz
}

// at builds an instant that is the given local Brisbane wall-clock time.
func at(t *testing.T, weekday time.Weekday, hour, minute int) time.Time {
	t.Helper()

	loc, err := time.LoadLocation("Australia/Brisbane")
	if err != nil {
		t.Fatalf("loading location: %v", err)
	}

	// 2026-08-03 is a Monday
	base := time.Date(2026, 8, 3, hour, minute, 0, 0, loc)
	offset := (int(weekday) + 6) % 7
	return base.AddDate(0, 0, offset)
}

func TestOpenNowWithinHours(t *testing.T) {
	hours := []string{"Monday: 11:30 AM - 9:00 PM"}

	if got := OpenNow(hours, brisbane(), at(t, time.Monday, 12, 0)); got != OpenStateOpen {
		t.Fatalf("expected open at lunch, got %s", got)
	}
	if got := OpenNow(hours, brisbane(), at(t, time.Monday, 22, 0)); got != OpenStateClosed {
		t.Fatalf("expected closed after hours, got %s", got)
	}
	if got := OpenNow(hours, brisbane(), at(t, time.Tuesday, 12, 0)); got != OpenStateClosed {
		t.Fatalf("expected closed on another day, got %s", got)
	}
}

func TestOpenNowOvernightInterval(t *testing.T) {
	// A 10PM-2AM window spills into the next calendar day
	hours := []string{"Friday: 10:00 PM - 2:00 AM"}

	if got := OpenNow(hours, brisbane(), at(t, time.Friday, 23, 30)); got != OpenStateOpen {
		t.Fatalf("expected open before midnight, got %s", got)
	}
	if got := OpenNow(hours, brisbane(), at(t, time.Friday, 0, 30)); got != OpenStateOpen {
		t.Fatalf("expected open after midnight, got %s", got)
	}
	if got := OpenNow(hours, brisbane(), at(t, time.Friday, 15, 0)); got != OpenStateClosed {
		t.Fatalf("expected closed mid-afternoon, got %s", got)
	}
}

func TestOpenNowDayRange(t *testing.T) {
	hours := []string{"Mon-Fri: 9:00 AM - 5:00 PM"}

	if got := OpenNow(hours, brisbane(), at(t, time.Wednesday, 10, 0)); got != OpenStateOpen {
		t.Fatalf("expected open midweek, got %s", got)
	}
	if got := OpenNow(hours, brisbane(), at(t, time.Saturday, 10, 0)); got != OpenStateClosed {
		t.Fatalf("expected closed on Saturday, got %s", got)
	}
}

func TestOpenNowDayRangeWrapsWeek(t *testing.T) {
	hours := []string{"Fri-Mon: 9:00 AM - 5:00 PM"}

	if got := OpenNow(hours, brisbane(), at(t, time.Sunday, 10, 0)); got != OpenStateOpen {
		t.Fatalf("expected open on Sunday inside wrapped range, got %s", got)
	}
	if got := OpenNow(hours, brisbane(), at(t, time.Wednesday, 10, 0)); got != OpenStateClosed {
		t.Fatalf("expected closed on Wednesday outside wrapped range, got %s", got)
	}
}

func TestOpenNowAlwaysOpen(t *testing.T) {
	hours := []string{"Open 24 hours"}

	if got := OpenNow(hours, brisbane(), at(t, time.Sunday, 3, 0)); got != OpenStateOpen {
		t.Fatalf("expected always open, got %s", got)
	}
}

func TestOpenNowClosedDay(t *testing.T) {
	hours := []string{"Monday: Closed", "Tuesday: 9:00 AM - 5:00 PM"}

	if got := OpenNow(hours, brisbane(), at(t, time.Monday, 10, 0)); got != OpenStateClosed {
		t.Fatalf("expected closed on a marked closed day, got %s", got)
	}
}

func TestOpenNowUnknownWithoutTimezone(t *testing.T) {
	hours := []string{"Monday: 9:00 AM - 5:00 PM"}

	if got := OpenNow(hours, nil, at(t, time.Monday, 10, 0)); got != OpenStateUnknown {
		t.Fatalf("expected unknown without a timezone, got %s", got)
	}
}

func TestOpenNowUnknownWhenNothingParses(t *testing.T) {
	hours := []string{"ring the venue for hours"}

	if got := OpenNow(hours, brisbane(), at(t, time.Monday, 10, 0)); got != OpenStateUnknown {
		t.Fatalf("expected unknown for unparseable hours, got %s", got)
	}
}
