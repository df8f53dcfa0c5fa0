package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// holidayCalendar reports whether a date is one of the US federal holidays
// registered below (Presidents' Day, Columbus Day and Veterans Day are not
// among them), for the startup diagnostic in DescribeHolidayServiceDates. It never affects
// matching: service-id activation depends solely on GTFS
// calendar/calendar_dates, as spec.md §4.3 requires.
var holidayCalendar = func() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(
		us.NewYear,
		us.MlkDay,
		us.MemorialDay,
		us.IndependenceDay,
		us.LaborDay,
		us.ThanksgivingDay,
		us.ChristmasDay,
		us.Juneteenth,
	)
	return c
}()

// DescribeHolidayServiceDates returns one line per YYYYMMDD key in
// serviceDates that holidayCalendar observes as a holiday, naming the date and
// how many service ids are active on it. Intended for a one-time startup
// log line, not for any matching decision.
func DescribeHolidayServiceDates(serviceDates map[string]map[string]bool) []string {
	var out []string
	for key, ids := range serviceDates {
		d, err := time.Parse("20060102", key)
		if err != nil {
			continue
		}
		if _, observed, _ := holidayCalendar.IsHoliday(d); observed {
			out = append(out, fmt.Sprintf("%s: %d service ids active", key, len(ids)))
		}
	}
	sort.Strings(out)
	return out
}
