package discovery

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var titleDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})`)

// ParseMeetingDate extracts a meeting date from a clip title of the form
// "M/D/YY ...". Two-digit years below 50 are read as 20xx, at-or-above 50
// as 19xx — so "1/1/00" is 2000, "1/1/49" is 2049, and "1/1/50" is 1950.
// Returns the zero time and false if the title has no leading date or the
// date doesn't correspond to a real calendar day.
func ParseMeetingDate(title string) (time.Time, bool) {
	m := titleDatePattern.FindStringSubmatch(title)
	if m == nil {
		return time.Time{}, false
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	yy, _ := strconv.Atoi(m[3])

	year := 1900 + yy
	if yy < 50 {
		year = 2000 + yy
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components instead of erroring, so
	// an invalid calendar date (e.g. 2/30) must be caught by checking the
	// round-trip rather than relying on an error return.
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// ParseMeetingType classifies a clip title into one of the configured
// meeting types. Checked in priority order: special meeting, planning
// commission, city council, budget meeting, defaulting to "City Council"
// when nothing matches.
func ParseMeetingType(title string) string {
	lower := strings.ToLower(title)

	switch {
	case strings.Contains(lower, "special meeting") || strings.Contains(lower, "special"):
		return "Special Meeting"
	case strings.Contains(lower, "planning commission"):
		return "Planning Commission"
	case strings.Contains(lower, "city council"):
		return "City Council"
	case strings.Contains(lower, "budget"):
		return "Budget Meeting"
	default:
		return "City Council"
	}
}
