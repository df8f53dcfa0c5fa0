package metricsexport

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/transitdata/nyct-rtproxy/match"
)

// Collector exposes the running totals of every match.Aggregator outcome
// across cycles as Prometheus counters.
type Collector struct {
	reg *prometheus.Registry

	StrictMatched       prometheus.Counter
	LooseMatched        prometheus.Counter
	NoMatch             prometheus.Counter
	NoTripWithStartDate prometheus.Counter
	BadTripID           prometheus.Counter
	Duplicates          prometheus.Counter
	Cancellations       prometheus.Counter

	CycleDuration prometheus.Histogram
}

// NewCollector builds and registers the counters.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		StrictMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nyct_rtproxy_strict_matched_total",
			Help: "Trip updates matched strictly (network id, route, direction, time all agree).",
		}),
		LooseMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nyct_rtproxy_loose_matched_total",
			Help: "Trip updates matched loosely (route, direction and tolerant time comparison).",
		}),
		NoMatch: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nyct_rtproxy_no_match_total",
			Help: "Trip updates with candidate scheduled trips but no acceptable match.",
		}),
		NoTripWithStartDate: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nyct_rtproxy_no_trip_with_start_date_total",
			Help: "Trip updates with no scheduled trip at all on the route/direction/service day.",
		}),
		BadTripID: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nyct_rtproxy_bad_trip_id_total",
			Help: "Trip updates whose identifier failed to parse.",
		}),
		Duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nyct_rtproxy_duplicates_total",
			Help: "Trip updates dropped as duplicates of an already-emitted (tripId, startDate).",
		}),
		Cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nyct_rtproxy_cancellations_total",
			Help: "CANCELED updates emitted for unmatched real-time trips or for matched trips left with no stop-time updates.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nyct_rtproxy_cycle_duration_seconds",
			Help:    "Wall-clock duration of one fetch-match-rewrite cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		c.StrictMatched, c.LooseMatched, c.NoMatch, c.NoTripWithStartDate,
		c.BadTripID, c.Duplicates, c.Cancellations, c.CycleDuration,
	)
	return c
}

// Add folds one cycle's Aggregator totals into the running counters. The
// Aggregator itself is reset every cycle (see match.Aggregator doc); the
// Collector is what accumulates across cycles.
func (c *Collector) Add(a *match.Aggregator) {
	c.StrictMatched.Add(float64(a.StrictMatched))
	c.LooseMatched.Add(float64(a.LooseMatched))
	c.NoMatch.Add(float64(a.NoMatch))
	c.NoTripWithStartDate.Add(float64(a.NoTripWithStartDate))
	c.BadTripID.Add(float64(a.BadTripID))
	c.Duplicates.Add(float64(a.Duplicates))
	c.Cancellations.Add(float64(a.Cancellations))
}

// Handler returns the /metrics HTTP handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
