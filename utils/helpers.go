package utils

import (
	"fmt"
	"strconv"
	"time"
)

const dayLayout = "2006-01-02"

// DefaultRangeDays is used when a query names neither days nor from/to.
const DefaultRangeDays = 30

// DateRange is an inclusive UTC time range.
type DateRange struct {
	Since time.Time
	Until time.Time
}

// RollingRange covers the last n UTC calendar days, ending at now.
func RollingRange(days int, now time.Time, maxDays int) (DateRange, error) {
	if days < 1 || days > maxDays {
		return DateRange{}, fmt.Errorf("days must be between 1 and %d", maxDays)
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return DateRange{Since: today.AddDate(0, 0, -(days - 1)), Until: now}, nil
}

// ExplicitRange covers the UTC days from..to, both inclusive.
func ExplicitRange(from, to string, maxDays int) (DateRange, error) {
	start, err := time.Parse(dayLayout, from)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid 'from' date %q, use YYYY-MM-DD", from)
	}
	end, err := time.Parse(dayLayout, to)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid 'to' date %q, use YYYY-MM-DD", to)
	}
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("'from' must not be after 'to'")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > maxDays {
		return DateRange{}, fmt.Errorf("range of %d days exceeds the maximum of %d", days, maxDays)
	}
	return DateRange{Since: start, Until: end.AddDate(0, 0, 1).Add(-time.Millisecond)}, nil
}

// ParseRange resolves the summary query parameters. Either days or from/to may
// be given, not both.
func ParseRange(days, from, to string, now time.Time, maxDays int) (DateRange, error) {
	explicit := from != "" || to != ""
	switch {
	case days != "" && explicit:
		return DateRange{}, fmt.Errorf("use either 'days' or 'from'/'to', not both")
	case explicit:
		if from == "" || to == "" {
			return DateRange{}, fmt.Errorf("'from' and 'to' must be given together")
		}
		return ExplicitRange(from, to, maxDays)
	case days != "":
		n, err := strconv.Atoi(days)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid 'days' parameter %q", days)
		}
		return RollingRange(n, now, maxDays)
	default:
		return RollingRange(DefaultRangeDays, now, maxDays)
	}
}
