package timelapse

import (
	"fmt"
	"strings"
	"time"
)

// dayFormat is the calendar-day layout accepted by the start request.
const dayFormat = "2006-01-02"

// DateRange is an inclusive calendar-day range. A range whose start lies
// after its end is empty, not invalid: it iterates zero days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange validates and parses the two request dates.
func ParseDateRange(start, end string) (DateRange, error) {
	startDay, err := parseDay("start_date", start)
	if err != nil {
		return DateRange{}, err
	}
	endDay, err := parseDay("end_date", end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: startDay, End: endDay}, nil
}

func parseDay(field, value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	day, err := time.ParseInLocation(dayFormat, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be formatted YYYY-MM-DD, got %q", field, trimmed)
	}
	return day, nil
}

// Days returns every calendar day in the range, ascending.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

func (r DateRange) String() string {
	return r.Start.Format(dayFormat) + ".." + r.End.Format(dayFormat)
}
