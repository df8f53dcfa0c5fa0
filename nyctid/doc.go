// Package nyctid parses and formats the New York City Transit trip and
// train identifier grammars used by the agency's real-time and static GTFS
// feeds.
//
// Trip identifiers are lossy: the route position can collide with other
// fields (route W's static ids carry "N" where the route normally sits,
// route 6X's realtime ids carry "6"), and the direction field is sometimes
// truncated away entirely, requiring a fallback to a separate train
// identifier carried as a feed extension. See TripID and TrainID.
package nyctid
