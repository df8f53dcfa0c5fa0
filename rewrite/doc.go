// Package rewrite filters and rewrites a real-time trip update's
// stop-time-update sequence so that it references only stops present in
// the matched scheduled trip, in schedule order, and retargets the trip
// descriptor's identifiers at the scheduled trip.
package rewrite
