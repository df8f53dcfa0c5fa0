package schedule

import "time"

// ServiceCalendar is the per-service-id GTFS calendar.txt +
// calendar_dates.txt data: a weekly pattern plus added/removed date
// exceptions.
type ServiceCalendar struct {
	ServiceID string
	// Weekday is indexed by time.Weekday (Sunday=0 .. Saturday=6).
	Weekday   [7]bool
	StartDate time.Time
	EndDate   time.Time
	Added     []time.Time
	Removed   []time.Time
}

// ExpandCalendar turns a set of ServiceCalendars into a YYYYMMDD -> active
// service-id-set lookup, applying the weekly pattern across each service's
// date range and then the added/removed exceptions, per standard GTFS
// calendar semantics.
func ExpandCalendar(services []ServiceCalendar) map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	add := func(date time.Time, serviceID string) {
		key := date.Format("20060102")
		if out[key] == nil {
			out[key] = make(map[string]bool)
		}
		out[key][serviceID] = true
	}
	remove := func(date time.Time, serviceID string) {
		key := date.Format("20060102")
		if out[key] != nil {
			delete(out[key], serviceID)
		}
	}

	for _, svc := range services {
		if !svc.StartDate.IsZero() && !svc.EndDate.IsZero() {
			for d := svc.StartDate; !d.After(svc.EndDate); d = d.AddDate(0, 0, 1) {
				if svc.Weekday[int(d.Weekday())] {
					add(d, svc.ServiceID)
				}
			}
		}
		for _, d := range svc.Added {
			add(d, svc.ServiceID)
		}
		for _, d := range svc.Removed {
			remove(d, svc.ServiceID)
		}
	}
	return out
}
