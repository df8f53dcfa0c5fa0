package nyctid

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrBadTrainID is returned when a train id string does not match the
// expected origin/destination grammar.
var ErrBadTrainID = errors.New("nyctid: train id does not match the expected grammar")

// trainIDPattern expects the NYCT convention of separating the scheduled
// origin and destination stop abbreviations with a slash, e.g.
// "0123 1200+ MST/34H". Only the trailing origin/destination pair matters
// here; the rest of the train id (run number, schedule time) is not used
// by direction inference.
var trainIDPattern = regexp.MustCompile(`(?P<origin>[A-Z0-9-]{2,4})/(?P<destination>[A-Z0-9-]{2,4})$`)

// TrainID is the parsed form of the separate NYCT train identifier,
// carrying at least an origin and destination stop abbreviation. Used only
// by Flushing direction inference.
type TrainID struct {
	Origin      string
	Destination string
}

// ParseTrainID parses a train id string into its origin/destination stop
// abbreviations.
func ParseTrainID(trainID string) (TrainID, error) {
	m := trainIDPattern.FindStringSubmatch(trainID)
	if m == nil {
		return TrainID{}, fmt.Errorf("%w: %q", ErrBadTrainID, trainID)
	}
	groups := namedGroups(trainIDPattern, m)
	return TrainID{Origin: groups["origin"], Destination: groups["destination"]}, nil
}

// flushingStopAbbreviations lists the Flushing line (7/7X) stop
// abbreviations from north to south; see DESIGN.md Open Question 3 for
// why this stays in-package rather than becoming configuration.
var flushingStopAbbreviations = []string{
	"MST", "WPT", "111", "103", "JCT", "90S", "82S", "74S", "69S", "61S",
	"52S", "46B", "40S", "RAW", "QBP", "CHS", "HTR", "VER", "G-C", "5AV",
	"TSQ", "34H",
}

// InferFlushingDirection infers direction of travel for a route 7/7X trip
// from its train id, since that route's realtime trip id direction field
// is truncated away by the path id's width. Returns ok=false
// when the train id doesn't parse, either stop is unrecognized, or origin
// equals destination.
func InferFlushingDirection(trainID string) (direction string, ok bool) {
	parsed, err := ParseTrainID(trainID)
	if err != nil {
		return "", false
	}
	originIdx := indexOfStop(parsed.Origin)
	destIdx := indexOfStop(parsed.Destination)
	if originIdx == -1 || destIdx == -1 || originIdx == destIdx {
		return "", false
	}
	if originIdx > destIdx {
		return "N", true
	}
	return "S", true
}

func indexOfStop(abbr string) int {
	for i, v := range flushingStopAbbreviations {
		if v == abbr {
			return i
		}
	}
	return -1
}
