package feed

import (
	"time"

	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"

	"github.com/transitdata/nyct-rtproxy/match"
	"github.com/transitdata/nyct-rtproxy/nyctid"
	"github.com/transitdata/nyct-rtproxy/rewrite"
)

// Processor drives one upstream feed message through matching and
// rewriting.
type Processor struct {
	Matcher            *match.Matcher
	Rewriter           *rewrite.Rewriter
	Location           *time.Location
	ReversedDirections map[string]bool
}

// NewProcessor builds a Processor over the given matcher and rewriter.
func NewProcessor(matcher *match.Matcher, rewriter *rewrite.Rewriter, loc *time.Location) *Processor {
	return &Processor{Matcher: matcher, Rewriter: rewriter, Location: loc}
}

// ProcessFeed parses, matches and rewrites every trip update in
// feedMessage, tallying outcomes into metrics. Emitted updates preserve
// the input order of their source entities; a later update whose
// (tripId, startDate) duplicates an earlier one is dropped and counted
// as a duplicate rather than emitted twice.
func (p *Processor) ProcessFeed(feedID int, feedMessage *gtfsrt.FeedMessage, metrics *match.Aggregator) []*gtfsrt.TripUpdate {
	if feedMessage == nil {
		return nil
	}
	timestamp := int64(feedMessage.GetHeader().GetTimestamp())

	seen := make(map[string]bool)
	var out []*gtfsrt.TripUpdate

	for _, entity := range feedMessage.GetEntity() {
		tu := entity.GetTripUpdate()
		if tu == nil {
			continue
		}

		id := p.parseIdentifier(tu)
		res := p.Matcher.Match(tu, id, timestamp, p.Location)
		metrics.Record(res.Status)

		rewritten, emitted, canceled := p.resolve(tu, res, timestamp)
		if !emitted {
			continue
		}
		if canceled {
			metrics.RecordCancellation()
		}

		key := rewritten.GetTrip().GetTripId() + "\x00" + rewritten.GetTrip().GetStartDate()
		if seen[key] {
			metrics.RecordDuplicate()
			continue
		}
		seen[key] = true
		out = append(out, rewritten)
	}
	return out
}

// resolve turns a match result into an (update, emitted, canceled)
// triple: a matched trip is rewritten against its scheduled trip, which
// may itself collapse to a CANCELED update if every stop-time update was
// filtered out; an unmatched trip is either dropped or, if configured,
// emitted as a synthetic CANCELED update keyed by the best identifier
// the real-time trip carried. canceled is true whenever the emitted
// update (if any) carries ScheduleRelationship CANCELED, so the caller
// can count it.
func (p *Processor) resolve(tu *gtfsrt.TripUpdate, res match.Result, timestamp int64) (*gtfsrt.TripUpdate, bool, bool) {
	switch res.Status {
	case match.StrictMatch, match.LooseMatch:
		return p.Rewriter.Rewrite(tu, res.Trip, res.ServiceDate.YYYYMMDD(), timestamp)
	default:
		if !p.Rewriter.CancelUnmatchedTrips {
			return nil, false, false
		}
		return cancelUnmatched(tu), true, true
	}
}

// cancelUnmatched builds a synthetic CANCELED trip update carrying a copy
// of the real-time trip's own descriptor, unchanged except for its
// ScheduleRelationship, with no stop-time updates.
func cancelUnmatched(tu *gtfsrt.TripUpdate) *gtfsrt.TripUpdate {
	canceled := gtfsrt.TripDescriptor_CANCELED
	trip := proto.Clone(tu.GetTrip()).(*gtfsrt.TripDescriptor)
	trip.ScheduleRelationship = &canceled
	return &gtfsrt.TripUpdate{
		Trip:      trip,
		Vehicle:   tu.GetVehicle(),
		Timestamp: tu.Timestamp,
	}
}

// parseIdentifier extracts the NYCT train id extension (if present) and
// parses the trip descriptor's own trip id, returning nil on a grammar
// mismatch so the caller reports BAD_TRIP_ID.
func (p *Processor) parseIdentifier(tu *gtfsrt.TripUpdate) *nyctid.TripID {
	tripDesc := tu.GetTrip()
	if tripDesc == nil {
		return nil
	}
	var trainID string
	if proto.HasExtension(tripDesc, gtfsrt.E_NyctTripDescriptor) {
		if ext, ok := proto.GetExtension(tripDesc, gtfsrt.E_NyctTripDescriptor).(*gtfsrt.NyctTripDescriptor); ok {
			trainID = ext.GetTrainId()
		}
	}
	id, err := nyctid.FromTripDescriptor(tripDesc.GetTripId(), tripDesc.GetRouteId(), trainID, p.ReversedDirections)
	if err != nil {
		return nil
	}
	return &id
}
