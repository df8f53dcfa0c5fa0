package match

import (
	"time"

	gtfsrt "github.com/jamespfennell/gtfs/proto"

	"github.com/transitdata/nyct-rtproxy/nyctid"
	"github.com/transitdata/nyct-rtproxy/schedule"
	"github.com/transitdata/nyct-rtproxy/servicedate"
)

// earlyMorningCutoffSec is the originDepartureTime threshold (in
// hundredths of a minute, i.e. 3:00 AM) below which the previous service
// day is also searched for candidates: the static schedule's 26-hour
// service day runs trips as late as 26:02, so a real-time trip timestamped
// just after midnight may really belong to the previous service date.
const earlyMorningCutoffSec = 3 * 60 * 100

// Matcher matches real-time trips against a static schedule.
type Matcher struct {
	Index              *schedule.ActivatedTripIndex
	LateTripLimitSec   int
	LooseMatchDisabled bool
}

// NewMatcher builds a Matcher with the default 3600-second late-trip
// limit.
func NewMatcher(index *schedule.ActivatedTripIndex) *Matcher {
	return &Matcher{Index: index, LateTripLimitSec: 3600}
}

// Match reconciles one real-time trip update's parsed identifier against
// the schedule as of the given wall-clock timestamp, computing the
// service date in the static schedule's timezone.
func (m *Matcher) Match(tu *gtfsrt.TripUpdate, id *nyctid.TripID, timestamp int64, loc *time.Location) Result {
	if id == nil {
		return Result{TripUpdate: tu, Status: BadTripID}
	}

	sd := servicedate.FromUnix(timestamp, loc)
	candidates, found := m.addCandidates(tu, *id, sd)

	if id.OriginDepartureTime < earlyMorningCutoffSec {
		prevCandidates, prevFound := m.addCandidates(tu, id.RelativeToPreviousDay(), sd.Previous())
		candidates = append(candidates, prevCandidates...)
		found = found || prevFound
	}

	if len(candidates) == 0 {
		if found {
			return Result{TripUpdate: tu, Status: NoMatch}
		}
		return Result{TripUpdate: tu, Status: NoTripWithStartDate}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if isBetter(c, best) {
			best = c
		}
	}
	return best
}

// addCandidates iterates every scheduled trip on id's route, looking for
// strict and loose matches on service date sd. It returns the candidate
// list and whether any scheduled trip shared id's route+direction on sd,
// regardless of whether it ultimately matched (so the caller can tell
// NO_MATCH from NO_TRIP_WITH_START_DATE).
func (m *Matcher) addCandidates(tu *gtfsrt.TripUpdate, id nyctid.TripID, sd servicedate.ServiceDate) ([]Result, bool) {
	found := false
	serviceIDs := m.Index.ServiceIDsForDate(sd)

	var candidates []Result
	for _, trip := range m.Index.TripsOnRoute(id.RouteID) {
		// The scheduled trip's own identifier is derived from its already
		// -parsed fields rather than re-parsed from a string: origin
		// -departure time comes from the first stop's departure, scaled
		// from seconds to hundredths-of-a-minute units.
		atid := nyctid.TripID{
			OriginDepartureTime: (trip.StartSec * 100) / 60,
			RouteID:             trip.RouteID,
			Direction:           trip.DirectionID,
			NetworkID:           trip.NetworkID,
			PathID:              trip.PathID,
		}
		if !atid.RouteDirMatch(id) {
			continue
		}

		onServiceDay := serviceIDs != nil && serviceIDs[trip.ServiceID]
		found = true

		if atid.StrictMatch(id) && onServiceDay {
			candidates = append(candidates, Result{
				TripUpdate:   tu,
				Status:       StrictMatch,
				Trip:         trip,
				OnServiceDay: true,
				ServiceDate:  sd,
			})
			continue
		}

		if m.LooseMatchDisabled {
			continue
		}
		delta := deltaSeconds(id.OriginDepartureTime, trip.StartSec)
		limit := m.LateTripLimitSec
		if limit == 0 {
			limit = 3600
		}
		if delta < 0 || delta >= limit {
			continue
		}
		if !onServiceDay && delta != 0 {
			continue
		}
		candidates = append(candidates, Result{
			TripUpdate:   tu,
			Status:       LooseMatch,
			Trip:         trip,
			Delta:        delta,
			OnServiceDay: onServiceDay,
			ServiceDate:  sd,
		})
	}
	return candidates, found
}

// deltaSeconds computes how many seconds later than the scheduled trip's
// first-stop departure the real-time trip's origin-departure time is,
// using integer arithmetic (originDepartureTime*3)/5 to apply the exact
// 0.6 seconds-per-unit conversion factor without floating-point rounding.
func deltaSeconds(originDepartureTime, startSec int) int {
	return (originDepartureTime*3)/5 - startSec
}

// isBetter reports whether candidate is a better match than current,
// per the ranking: strict beats loose; among loose matches, smaller
// delta wins, ties broken by onServiceDay, then by scheduled trip id.
func isBetter(candidate, current Result) bool {
	if candidate.Status != current.Status {
		return candidate.Status == StrictMatch
	}
	if candidate.Status == LooseMatch {
		if candidate.Delta != current.Delta {
			return candidate.Delta < current.Delta
		}
		if candidate.OnServiceDay != current.OnServiceDay {
			return candidate.OnServiceDay
		}
	}
	return tripIDLess(candidate.Trip, current.Trip)
}

func tripIDLess(a, b *schedule.ScheduledTrip) bool {
	if a == nil || b == nil {
		return false
	}
	return a.TripID < b.TripID
}
