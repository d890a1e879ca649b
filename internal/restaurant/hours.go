package restaurant

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OpenState is the tri-state answer to "is this restaurant open right now".
// Unknown means either no timezone is cached or no hours rule parsed; we
// never guess UTC.
type OpenState string

const (
	OpenStateOpen    OpenState = "open"
	OpenStateClosed  OpenState = "closed"
	OpenStateUnknown OpenState = "unknown"
)

var (
	dayTimePattern = regexp.MustCompile(`^(\w+(?:\s*-\s*\w+)?)\s*:\s*(.+)$`)
	timePattern    = regexp.MustCompile(`(\d{1,2}):?(\d{0,2})\s*([APap][Mm])?\s*[-\x{2013}\x{2014}]\s*(\d{1,2}):?(\d{0,2})\s*([APap][Mm])?`)
)

var dayNumbers = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tues": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thur": 3, "thurs": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// OpenNow evaluates free-text hours rules against the current instant in the
// restaurant's cached timezone. Stateless; safe to call per request.
func OpenNow(openHours []string, timezone *string, now time.Time) OpenState {
	if timezone == nil || *timezone == "" {
		return OpenStateUnknown
	}

	loc, err := time.LoadLocation(*timezone)
	if err != nil {
		return OpenStateUnknown
	}

	local := now.In(loc)
	currentDay := mondayIndexed(local.Weekday())
	currentMinute := local.Hour()*60 + local.Minute()

	parsedAny := false

	for _, rule := range openHours {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}

		lower := strings.ToLower(rule)
		if strings.Contains(lower, "24 hours") || strings.Contains(lower, "24/7") {
			return OpenStateOpen
		}
		if strings.Contains(lower, "closed") {
			parsedAny = true
			continue
		}

		match := dayTimePattern.FindStringSubmatch(rule)
		if match == nil {
			continue
		}

		dayPart := match[1]
		timePart := match[2]

		interval, ok := parseTimeInterval(timePart)
		if !ok {
			continue
		}
		parsedAny = true

		if !dayMatches(currentDay, dayPart) {
			continue
		}
		if interval.contains(currentMinute) {
			return OpenStateOpen
		}
	}

	if !parsedAny {
		return OpenStateUnknown
	}
	return OpenStateClosed
}

// mondayIndexed maps time.Weekday (Sunday=0) onto Monday=0..Sunday=6.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func dayMatches(currentDay int, dayPart string) bool {
	dayPart = strings.ToLower(strings.TrimSpace(dayPart))

	// Day range, e.g. "mon-fri" or "fri-mon" (wraps the week)
	if strings.Contains(dayPart, "-") {
		bounds := strings.SplitN(dayPart, "-", 2)
		start, okStart := dayNumbers[strings.TrimSpace(bounds[0])]
		end, okEnd := dayNumbers[strings.TrimSpace(bounds[1])]
		if okStart && okEnd {
			if start <= end {
				return currentDay >= start && currentDay <= end
			}
			return currentDay >= start || currentDay <= end
		}
		return false
	}

	num, ok := dayNumbers[dayPart]
	return ok && num == currentDay
}

// timeInterval is minutes since local midnight. End < start means the
// interval crosses midnight into the next day.
type timeInterval struct {
	start int
	end   int
}

func (t timeInterval) contains(minute int) bool {
	if t.start <= t.end {
		return minute >= t.start && minute <= t.end
	}
	return minute >= t.start || minute <= t.end
}

func parseTimeInterval(timePart string) (timeInterval, bool) {
	match := timePattern.FindStringSubmatch(timePart)
	if match == nil {
		return timeInterval{}, false
	}

	start, ok := toMinutes(match[1], match[2], match[3])
	if !ok {
		return timeInterval{}, false
	}
	end, ok := toMinutes(match[4], match[5], match[6])
	if !ok {
		return timeInterval{}, false
	}

	return timeInterval{start: start, end: end}, true
}

func toMinutes(hourStr, minStr, period string) (int, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour > 23 {
		return 0, false
	}

	minute := 0
	if minStr != "" {
		minute, err = strconv.Atoi(minStr)
		if err != nil || minute > 59 {
			return 0, false
		}
	}

	switch strings.ToUpper(period) {
	case "PM":
		if hour != 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	if hour > 23 {
		return 0, false
	}

	return hour*60 + minute, true
}
