package schedule

import (
	"testing"
	"time"

	"github.com/transitdata/nyct-rtproxy/servicedate"
)

func testTrip(routeID, serviceID string, startSec, endSec int) *ScheduledTrip {
	return &ScheduledTrip{
		TripID:    routeID + "-" + serviceID,
		RouteID:   routeID,
		ServiceID: serviceID,
		StartSec:  startSec,
		EndSec:    endSec,
	}
}

func TestActivatedTripIndex_TripsOnRoute(t *testing.T) {
	trips := []*ScheduledTrip{
		testTrip("1", "WEEKDAY", 100, 200),
		testTrip("1", "WEEKDAY", 300, 400),
		testTrip("2", "WEEKDAY", 100, 200),
	}
	idx := Build(trips, nil)

	if got := idx.TripsOnRoute("1"); len(got) != 2 {
		t.Fatalf("TripsOnRoute(1) = %d, want 2", len(got))
	}
	if got := idx.TripsOnRoute("3"); got != nil {
		t.Fatalf("TripsOnRoute(3) = %v, want nil", got)
	}
}

func TestActivatedTripIndex_ServiceIDsForDate(t *testing.T) {
	dates := map[string]map[string]bool{
		"20260803": {"WEEKDAY": true},
	}
	idx := Build(nil, dates)
	sd := servicedate.FromTime(time.Date(2026, 8, 3, 6, 0, 0, 0, time.UTC), time.UTC)

	ids := idx.ServiceIDsForDate(sd)
	if !ids["WEEKDAY"] {
		t.Fatal("expected WEEKDAY active on 20260803")
	}

	other := servicedate.FromTime(time.Date(2026, 8, 4, 6, 0, 0, 0, time.UTC), time.UTC)
	if idx.ServiceIDsForDate(other) != nil {
		t.Fatal("expected no active services on 20260804")
	}
}

func TestActivatedTripIndex_IsActiveOn(t *testing.T) {
	dates := map[string]map[string]bool{
		"20260803": {"WEEKDAY": true},
	}
	trip := testTrip("1", "WEEKDAY", 100, 200)
	idx := Build([]*ScheduledTrip{trip}, dates)

	active := servicedate.FromTime(time.Date(2026, 8, 3, 6, 0, 0, 0, time.UTC), time.UTC)
	inactive := servicedate.FromTime(time.Date(2026, 8, 4, 6, 0, 0, 0, time.UTC), time.UTC)

	if !idx.IsActiveOn(trip, active) {
		t.Error("expected trip active on 20260803")
	}
	if idx.IsActiveOn(trip, inactive) {
		t.Error("expected trip inactive on 20260804")
	}
}

func TestActivatedTripIndex_TripsInRange(t *testing.T) {
	trips := []*ScheduledTrip{
		testTrip("1", "WEEKDAY", 100, 200),
		testTrip("1", "WEEKDAY", 500, 600),
		testTrip("1", "WEEKDAY", 150, 700), // long-running trip spanning both windows
	}
	idx := Build(trips, nil)

	inRange := idx.TripsInRange(140, 160)
	if len(inRange) != 2 {
		t.Fatalf("TripsInRange(140,160) = %d, want 2", len(inRange))
	}

	none := idx.TripsInRange(800, 900)
	if len(none) != 0 {
		t.Fatalf("TripsInRange(800,900) = %d, want 0", len(none))
	}
}

func TestActivatedTripIndex_Routes(t *testing.T) {
	trips := []*ScheduledTrip{
		testTrip("1", "WEEKDAY", 100, 200),
		testTrip("2", "WEEKDAY", 100, 200),
	}
	idx := Build(trips, nil)
	routes := idx.Routes()
	if len(routes) != 2 {
		t.Fatalf("Routes() = %d, want 2", len(routes))
	}
}
