// Package feed drives one upstream feed message through identifier
// parsing, matching and rewriting, producing the aggregated output trip
// updates for one feed-processing cycle.
package feed
