package schedule

import "testing"

func TestDescribeHolidayServiceDates_FlagsOnlyHolidays(t *testing.T) {
	serviceDates := map[string]map[string]bool{
		"20260101": {"WKD": true},          // New Year's Day
		"20260702": {"WKD": true, "SAT": true}, // not a holiday
	}

	lines := DescribeHolidayServiceDates(serviceDates)
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1: %v", len(lines), lines)
	}
	if lines[0] != "20260101: 1 service ids active" {
		t.Errorf("lines[0] = %q", lines[0])
	}
}

func TestDescribeHolidayServiceDates_NoneActive(t *testing.T) {
	lines := DescribeHolidayServiceDates(map[string]map[string]bool{"20260304": {"WKD": true}})
	if len(lines) != 0 {
		t.Errorf("lines = %v, want none", lines)
	}
}
