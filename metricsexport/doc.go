// Package metricsexport exports a match.Aggregator's per-cycle outcome
// counts as Prometheus counters.
package metricsexport
