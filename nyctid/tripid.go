package nyctid

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrBadTripID is returned when a trip id string does not match either the
// realtime or static grammar.
var ErrBadTripID = errors.New("nyctid: trip id does not match the expected grammar")

// realtimeTripPattern is anchored at the end of the string
// optional leading alphanumeric prefix, six digits (or a sign and five
// digits) of origin-departure time, the route, one-or-more dots as
// separator (tolerating variable-width right padding), an optional
// direction letter, and whatever network suffix (letters, digits, spaces
// or dashes) remains.
var realtimeTripPattern = regexp.MustCompile(
	`([A-Z0-9]+_)?(?P<originDepartureTime>[0-9-]{6})_?(?P<route>[A-Z0-9]+)\.+(?P<direction>[NS]?)(?P<network>[A-Z0-9 -]*)$`)

// staticTripPattern is used on the static schedule's own agency trip id
// (e.g. the mta_trip_id column), which carries no origin-departure time.
var staticTripPattern = regexp.MustCompile(
	`(?P<route>[A-Z0-9]+)\.+(?P<direction>[NS])(?P<network>[A-Z0-9]*)$`)

// TripID is the parsed form of an agency trip identifier: origin-departure
// time, route, direction, network and path id. Direction and NetworkID
// use "" to mean null/absent, matching Go's zero value for string rather
// than carrying a separate presence flag.
type TripID struct {
	OriginDepartureTime int
	RouteID             string
	Direction           string
	NetworkID           string
	PathID              string
}

func padRoute(route string) string {
	if len(route) >= 3 {
		return route
	}
	return route + strings.Repeat(".", 3-len(route))
}

func namedGroups(re *regexp.Regexp, m []string) map[string]string {
	groups := make(map[string]string, len(m))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}
	return groups
}

// ParseRealtime parses a trip id using the realtime grammar.
func ParseRealtime(tripID string) (TripID, error) {
	m := realtimeTripPattern.FindStringSubmatch(tripID)
	if m == nil {
		return TripID{}, fmt.Errorf("%w: %q", ErrBadTripID, tripID)
	}
	groups := namedGroups(realtimeTripPattern, m)
	odt, err := strconv.Atoi(groups["originDepartureTime"])
	if err != nil {
		return TripID{}, fmt.Errorf("%w: %q: %v", ErrBadTripID, tripID, err)
	}
	route := groups["route"]
	direction := groups["direction"]
	network := groups["network"]
	return TripID{
		OriginDepartureTime: odt,
		RouteID:             route,
		Direction:           direction,
		NetworkID:           network,
		PathID:              padRoute(route) + direction,
	}, nil
}

// parseStatic applies the static grammar, used when re-deriving a
// scheduled trip's own path/network id.
func parseStatic(tripID string) (routeID, direction, networkID string, ok bool) {
	m := staticTripPattern.FindStringSubmatch(tripID)
	if m == nil {
		return "", "", "", false
	}
	groups := namedGroups(staticTripPattern, m)
	return groups["route"], groups["direction"], groups["network"], true
}

// StaticPathAndNetwork re-derives path id and network id from a static
// schedule-side agency trip id (e.g. mta_trip_id), using the static
// identifier grammar. Returns ErrBadTripID (surfaced by callers as
// BadPathIDError, which is fatal at schedule-load time) if the id does
// not match the static grammar.
func StaticPathAndNetwork(agencyTripID string) (pathID, networkID string, err error) {
	route, direction, network, ok := parseStatic(agencyTripID)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrBadTripID, agencyTripID)
	}
	return padRoute(route) + direction, network, nil
}

// FromScheduledTripID builds a TripID from a static trip's own agency id,
// parsed via the realtime grammar, then overrides RouteID with the trip's
// actual route reference. This corrects routes whose static ids carry a
// different letter in the route position than the logical route (route W
// trip ids carry "N"). The matcher does not call this: it builds the
// scheduled side of a comparison from the ScheduledTrip's already-parsed
// fields instead.
func FromScheduledTripID(agencyTripID, routeID string) (TripID, error) {
	id, err := ParseRealtime(agencyTripID)
	if err != nil {
		return TripID{}, err
	}
	id.RouteID = routeID
	return id, nil
}

// FromTripDescriptor builds a TripID from a realtime trip descriptor: the
// descriptor's own trip id, overridden by its explicit route id if
// present, with Flushing direction inference for routes 7/7X when the
// direction field came back empty, and a final N/S flip for any route in
// reversedDirections.
func FromTripDescriptor(tripID, descriptorRouteID, trainID string, reversedDirections map[string]bool) (TripID, error) {
	id, err := ParseRealtime(tripID)
	if err != nil {
		return TripID{}, err
	}
	if descriptorRouteID != "" {
		id.RouteID = descriptorRouteID
	}
	if id.Direction == "" && (id.RouteID == "7" || id.RouteID == "7X") {
		if dir, ok := InferFlushingDirection(trainID); ok {
			id.Direction = dir
		}
	}
	if reversedDirections[id.RouteID] {
		id.Direction = flipDirection(id.Direction)
	}
	return id, nil
}

func flipDirection(d string) string {
	switch d {
	case "N":
		return "S"
	case "S":
		return "N"
	default:
		return d
	}
}

// RouteDirMatch reports whether route and direction are equal.
func (t TripID) RouteDirMatch(o TripID) bool {
	return t.RouteID == o.RouteID && t.Direction == o.Direction
}

// LooseMatch reports whether route, direction and origin-departure time
// are all equal.
func (t TripID) LooseMatch(o TripID) bool {
	return t.RouteDirMatch(o) && t.OriginDepartureTime == o.OriginDepartureTime
}

// StrictMatch reports whether this TripID loose-matches o and both carry
// the same non-null network id. A null NetworkID on the receiver always
// fails strict matching, even if o's NetworkID happens to also be null —
// only one upstream feed carries network ids, so strict matching is only
// meaningful when one is present.
func (t TripID) StrictMatch(o TripID) bool {
	return t.LooseMatch(o) && t.NetworkID != "" && t.NetworkID == o.NetworkID
}

// RelativeToPreviousDay returns a copy shifted by 24 service-hours worth
// of hundredths-of-a-minute units (24*60*100), for matching against the
// previous service date's 26-hour schedule.
func (t TripID) RelativeToPreviousDay() TripID {
	t.OriginDepartureTime += 24 * 60 * 100
	return t
}

// String renders the canonical "%06d_%s" trip id form (origin-departure
// time, then path id), followed by the network id when one is present, so
// that ParseRealtime(t.String()) gives back t.
func (t TripID) String() string {
	return fmt.Sprintf("%06d_%s%s", t.OriginDepartureTime, t.PathID, t.NetworkID)
}
