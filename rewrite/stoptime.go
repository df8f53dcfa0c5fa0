package rewrite

import (
	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"

	"github.com/transitdata/nyct-rtproxy/schedule"
)

// Rewriter rewrites a real-time trip update against its matched
// scheduled trip.
type Rewriter struct {
	// LatencyLimit, when >= 0, drops stop-time updates whose departure
	// is more than this many seconds in the past relative to the feed
	// timestamp. -1 disables the filter.
	LatencyLimit int
	// CancelUnmatchedTrips, when true, turns a would-be MERGED outcome
	// (zero stop-time updates survive rewriting) into an emitted
	// CANCELED trip update instead of silently dropping it.
	CancelUnmatchedTrips bool
}

// Rewrite produces a trip update whose trip descriptor and stop-time
// updates are retargeted at trip, on service date startDate (in GTFS
// YYYYMMDD form), as of feedTimestamp (epoch seconds). The second return
// value is false when the outcome is MERGED/absorbed: the caller must
// not emit the returned update. The third return value is true when zero
// stop-time updates survived and CancelUnmatchedTrips turned that MERGED
// outcome into an emitted CANCELED update instead: the caller should
// count this as a cancellation, not a plain rewrite.
func (r *Rewriter) Rewrite(tu *gtfsrt.TripUpdate, trip *schedule.ScheduledTrip, startDate string, feedTimestamp int64) (*gtfsrt.TripUpdate, bool, bool) {
	stopOrder := make(map[string]int, len(trip.StopTimes))
	for i, st := range trip.StopTimes {
		stopOrder[st.StopID] = i
	}

	var kept []*gtfsrt.TripUpdate_StopTimeUpdate
	lastIndex := -1
	for _, stu := range tu.GetStopTimeUpdate() {
		idx, ok := stopOrder[stu.GetStopId()]
		if !ok || idx <= lastIndex {
			continue
		}
		if r.LatencyLimit >= 0 && isStale(stu, feedTimestamp, r.LatencyLimit) {
			continue
		}
		kept = append(kept, stu)
		lastIndex = idx
	}

	scheduleRelationship := gtfsrt.TripDescriptor_SCHEDULED
	rewritten := &gtfsrt.TripUpdate{
		Trip: &gtfsrt.TripDescriptor{
			TripId:               proto.String(trip.TripID),
			RouteId:              proto.String(trip.RouteID),
			StartDate:            proto.String(startDate),
			ScheduleRelationship: &scheduleRelationship,
		},
		Vehicle:        tu.GetVehicle(),
		StopTimeUpdate: kept,
		Timestamp:      tu.Timestamp,
	}

	if len(kept) == 0 {
		if !r.CancelUnmatchedTrips {
			return nil, false, false
		}
		canceled := gtfsrt.TripDescriptor_CANCELED
		rewritten.Trip.ScheduleRelationship = &canceled
		rewritten.StopTimeUpdate = nil
		return rewritten, true, true
	}
	return rewritten, true, false
}

// isStale reports whether a stop-time update's departure (or, absent
// that, arrival) falls more than limitSec seconds before feedTimestamp.
func isStale(stu *gtfsrt.TripUpdate_StopTimeUpdate, feedTimestamp int64, limitSec int) bool {
	var eventTime int64
	switch {
	case stu.GetDeparture() != nil && stu.GetDeparture().Time != nil:
		eventTime = stu.GetDeparture().GetTime()
	case stu.GetArrival() != nil && stu.GetArrival().Time != nil:
		eventTime = stu.GetArrival().GetTime()
	default:
		return false
	}
	return feedTimestamp-eventTime > int64(limitSec)
}
