package timelapse

import (
	"strings"
	"testing"
)

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("2021-06-01", "2021-06-03")
	if err != nil {
		t.Fatal(err)
	}
	days := r.Days()
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].Format(dayFormat) != "2021-06-01" || days[2].Format(dayFormat) != "2021-06-03" {
		t.Fatalf("unexpected day sequence %v", days)
	}
}

func TestParseDateRangeSingleDay(t *testing.T) {
	r, err := ParseDateRange("2021-06-01", "2021-06-01")
	if err != nil {
		t.Fatal(err)
	}
	if days := r.Days(); len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
}

func TestReversedRangeIsEmpty(t *testing.T) {
	r, err := ParseDateRange("2021-06-05", "2021-06-01")
	if err != nil {
		t.Fatalf("a reversed range is empty, not invalid: %v", err)
	}
	if days := r.Days(); len(days) != 0 {
		t.Fatalf("expected zero days, got %d", len(days))
	}
}

func TestParseDateRangeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		want       string
	}{
		{"missing start", "", "2021-06-01", "start_date is required"},
		{"missing end", "2021-06-01", "  ", "end_date is required"},
		{"malformed start", "06/01/2021", "2021-06-02", "start_date must be formatted"},
		{"malformed end", "2021-06-01", "yesterday", "end_date must be formatted"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDateRange(tc.start, tc.end)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestDaysCrossMonthBoundary(t *testing.T) {
	r, err := ParseDateRange("2021-05-30", "2021-06-02")
	if err != nil {
		t.Fatal(err)
	}
	days := r.Days()
	if len(days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(days))
	}
	if days[2].Format(dayFormat) != "2021-06-01" {
		t.Fatalf("month boundary mishandled: %v", days)
	}
}
