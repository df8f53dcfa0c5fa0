package metricsexport

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/transitdata/nyct-rtproxy/match"
)

func TestCollector_AddExposesCounters(t *testing.T) {
	c := NewCollector()
	a := &match.Aggregator{StrictMatched: 3, LooseMatched: 1, Duplicates: 2}
	c.Add(a)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "nyct_rtproxy_strict_matched_total 3") {
		t.Errorf("missing strict-matched counter in output:\n%s", body)
	}
	if !strings.Contains(body, "nyct_rtproxy_duplicates_total 2") {
		t.Errorf("missing duplicates counter in output:\n%s", body)
	}
}

func TestCollector_AddAccumulatesAcrossCycles(t *testing.T) {
	c := NewCollector()
	c.Add(&match.Aggregator{NoMatch: 1})
	c.Add(&match.Aggregator{NoMatch: 2})

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "nyct_rtproxy_no_match_total 3") {
		t.Errorf("expected accumulated no-match total of 3, got:\n%s", rec.Body.String())
	}
}
