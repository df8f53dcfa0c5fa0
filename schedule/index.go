package schedule

import (
	"sort"

	"github.com/transitdata/nyct-rtproxy/servicedate"
)

// ActivatedTripIndex answers, for a service date and route, which
// scheduled trips are active. It is built once from the
// static schedule via Build and never mutated afterward, so it is safe to
// share across feed cycles without synchronization.
type ActivatedTripIndex struct {
	tripsByRoute map[string][]*ScheduledTrip
	serviceDates map[string]map[string]bool // YYYYMMDD -> active service ids

	// sortedByStart backs the optional interval index: a
	// one-dimensional range index over [StartSec, EndSec] across all
	// trips, sorted by StartSec for binary search. This is a slice, not
	// an R-tree, because the only queries needed are 1-D range scans by
	// seconds-since-service-day-midnight (see SPEC_FULL.md §6).
	sortedByStart []*ScheduledTrip
}

// Build constructs an ActivatedTripIndex from the parsed scheduled trips
// and a calendar date->service-id lookup (typically produced by
// ExpandCalendar from calendar.txt/calendar_dates.txt).
func Build(trips []*ScheduledTrip, serviceDates map[string]map[string]bool) *ActivatedTripIndex {
	idx := &ActivatedTripIndex{
		tripsByRoute: make(map[string][]*ScheduledTrip),
		serviceDates: serviceDates,
	}
	idx.sortedByStart = make([]*ScheduledTrip, len(trips))
	copy(idx.sortedByStart, trips)
	sort.Slice(idx.sortedByStart, func(i, j int) bool {
		return idx.sortedByStart[i].StartSec < idx.sortedByStart[j].StartSec
	})
	for _, trip := range trips {
		idx.tripsByRoute[trip.RouteID] = append(idx.tripsByRoute[trip.RouteID], trip)
	}
	return idx
}

// TripsOnRoute returns every scheduled trip whose route equals routeID,
// regardless of service date (callers filter by ServiceIDsForDate).
func (idx *ActivatedTripIndex) TripsOnRoute(routeID string) []*ScheduledTrip {
	return idx.tripsByRoute[routeID]
}

// ServiceIDsForDate returns the set of service ids active on sd. A trip is
// active on sd iff its ServiceID is in this set.
func (idx *ActivatedTripIndex) ServiceIDsForDate(sd servicedate.ServiceDate) map[string]bool {
	return idx.serviceDates[sd.YYYYMMDD()]
}

// IsActiveOn reports whether trip is active on sd.
func (idx *ActivatedTripIndex) IsActiveOn(trip *ScheduledTrip, sd servicedate.ServiceDate) bool {
	ids := idx.ServiceIDsForDate(sd)
	if ids == nil {
		return false
	}
	return ids[trip.ServiceID]
}

// TripsInRange returns every scheduled trip whose [StartSec, EndSec]
// interval overlaps [startSec, endSec], via binary search over the
// start-sorted slice. The core TripMatcher does not use this directly, but
// it backs auxiliary range-scan callers (e.g. diagnostics, or a future
// aggregator).
func (idx *ActivatedTripIndex) TripsInRange(startSec, endSec int) []*ScheduledTrip {
	// Trips starting after endSec cannot overlap; find the first trip
	// whose StartSec could still overlap by scanning from the
	// lower_bound of (startSec - maxDuration) — since we don't track a
	// max duration, scan forward from index 0 up to the first trip whose
	// StartSec > endSec, then filter by EndSec >= startSec. A real
	// interval tree would do better; see SPEC_FULL.md §6 for why this
	// simplification is sufficient here.
	upper := sort.Search(len(idx.sortedByStart), func(i int) bool {
		return idx.sortedByStart[i].StartSec > endSec
	})
	var out []*ScheduledTrip
	for _, trip := range idx.sortedByStart[:upper] {
		if trip.EndSec >= startSec {
			out = append(out, trip)
		}
	}
	return out
}

// AllTrips returns every scheduled trip in the index, for callers that
// need to persist the whole bundle (see scheduledb.Store.Save).
func (idx *ActivatedTripIndex) AllTrips() []*ScheduledTrip {
	return idx.sortedByStart
}

// ServiceDates returns the date->active-service-ids lookup backing the
// index, for callers that need to persist the whole bundle (see
// scheduledb.Store.Save).
func (idx *ActivatedTripIndex) ServiceDates() map[string]map[string]bool {
	return idx.serviceDates
}

// Routes returns the set of route ids present in the index.
func (idx *ActivatedTripIndex) Routes() []string {
	routes := make([]string, 0, len(idx.tripsByRoute))
	for r := range idx.tripsByRoute {
		routes = append(routes, r)
	}
	return routes
}
