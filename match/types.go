package match

import (
	gtfsrt "github.com/jamespfennell/gtfs/proto"

	"github.com/transitdata/nyct-rtproxy/schedule"
	"github.com/transitdata/nyct-rtproxy/servicedate"
)

// Status classifies the outcome of matching one real-time trip update
// against the static schedule.
type Status int

const (
	// StrictMatch means the real-time trip's network id, route,
	// direction and origin-departure time all agree with a scheduled
	// trip active on the service day in question.
	StrictMatch Status = iota
	// LooseMatch means only route, direction and a tolerant departure
	// time comparison agree.
	LooseMatch
	// NoMatch means at least one scheduled trip shared the real-time
	// trip's route and direction on the service day, but none matched
	// its departure time.
	NoMatch
	// NoTripWithStartDate means no scheduled trip on the real-time
	// trip's route and direction existed at all for the service day.
	NoTripWithStartDate
	// BadTripID means the real-time trip identifier did not parse.
	BadTripID
)

func (s Status) String() string {
	switch s {
	case StrictMatch:
		return "STRICT_MATCH"
	case LooseMatch:
		return "LOOSE_MATCH"
	case NoMatch:
		return "NO_MATCH"
	case NoTripWithStartDate:
		return "NO_TRIP_WITH_START_DATE"
	case BadTripID:
		return "BAD_TRIP_ID"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of matching one real-time trip update against
// the schedule.
type Result struct {
	TripUpdate   *gtfsrt.TripUpdate
	Status       Status
	Trip         *schedule.ScheduledTrip
	Delta        int
	OnServiceDay bool
	// ServiceDate is the service date the matched trip was found active on
	// (the real-time trip's own service date, or the previous one when the
	// early-morning lookback fired). Zero value when Status carries no
	// match (NoMatch, NoTripWithStartDate, BadTripID).
	ServiceDate servicedate.ServiceDate
}
