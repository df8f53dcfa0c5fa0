// Package match reconciles a real-time trip against the static schedule
// held in an ActivatedTripIndex, producing a Result classifying the
// outcome (strict match, loose match, or one of the non-match statuses).
//
// # Algorithm
//
// Matcher.Match collects every candidate scheduled trip on the same
// route as the real-time trip, first on the trip's own service date and
// then — for early-morning departures — on the previous service date, to
// accommodate the 26-hour service day. Candidates are ranked by
// isBetter and the best one wins.
package match
