package rewrite

import (
	"testing"

	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"

	"github.com/transitdata/nyct-rtproxy/schedule"
)

func testSchedTrip() *schedule.ScheduledTrip {
	return &schedule.ScheduledTrip{
		TripID:  "SCHED1",
		RouteID: "1",
		StopTimes: []schedule.StopTime{
			{StopID: "101N", ArrivalSec: 100, DepartureSec: 100},
			{StopID: "103N", ArrivalSec: 200, DepartureSec: 200},
			{StopID: "107N", ArrivalSec: 300, DepartureSec: 300},
		},
	}
}

func stopUpdate(stopID string, departureTime int64) *gtfsrt.TripUpdate_StopTimeUpdate {
	return &gtfsrt.TripUpdate_StopTimeUpdate{
		StopId: proto.String(stopID),
		Departure: &gtfsrt.TripUpdate_StopTimeEvent{
			Time: proto.Int64(departureTime),
		},
	}
}

func TestRewrite_FiltersUnknownAndOutOfOrderStops(t *testing.T) {
	tu := &gtfsrt.TripUpdate{
		Trip: &gtfsrt.TripDescriptor{TripId: proto.String("RT1")},
		StopTimeUpdate: []*gtfsrt.TripUpdate_StopTimeUpdate{
			stopUpdate("101N", 1000),
			stopUpdate("UNKNOWN", 1100),
			stopUpdate("103N", 1200),
			stopUpdate("101N", 1300), // out of order: already passed 103N
			stopUpdate("107N", 1400),
		},
	}
	r := &Rewriter{LatencyLimit: -1}
	out, emitted, canceled := r.Rewrite(tu, testSchedTrip(), "20260803", 0)
	if !emitted {
		t.Fatal("expected rewrite to be emitted")
	}
	if canceled {
		t.Fatal("expected canceled = false")
	}
	if len(out.StopTimeUpdate) != 3 {
		t.Fatalf("StopTimeUpdate count = %d, want 3", len(out.StopTimeUpdate))
	}
	var stopIDs []string
	for _, stu := range out.StopTimeUpdate {
		stopIDs = append(stopIDs, stu.GetStopId())
	}
	want := []string{"101N", "103N", "107N"}
	for i, id := range want {
		if stopIDs[i] != id {
			t.Errorf("stop[%d] = %s, want %s", i, stopIDs[i], id)
		}
	}
	if out.GetTrip().GetTripId() != "SCHED1" {
		t.Errorf("TripId = %s, want SCHED1", out.GetTrip().GetTripId())
	}
	if out.GetTrip().GetRouteId() != "1" {
		t.Errorf("RouteId = %s, want 1", out.GetTrip().GetRouteId())
	}
	if out.GetTrip().GetStartDate() != "20260803" {
		t.Errorf("StartDate = %s, want 20260803", out.GetTrip().GetStartDate())
	}
	if out.GetTrip().GetScheduleRelationship() != gtfsrt.TripDescriptor_SCHEDULED {
		t.Errorf("ScheduleRelationship = %v, want SCHEDULED", out.GetTrip().GetScheduleRelationship())
	}
}

func TestRewrite_LatencyFilter(t *testing.T) {
	tu := &gtfsrt.TripUpdate{
		Trip: &gtfsrt.TripDescriptor{TripId: proto.String("RT1")},
		StopTimeUpdate: []*gtfsrt.TripUpdate_StopTimeUpdate{
			stopUpdate("101N", 1000), // 9000s in the past relative to feedTimestamp 10000
			stopUpdate("103N", 9800), // 200s in the past, within the limit
		},
	}
	r := &Rewriter{LatencyLimit: 3600}
	out, emitted, canceled := r.Rewrite(tu, testSchedTrip(), "20260803", 10000)
	if !emitted {
		t.Fatal("expected rewrite to be emitted")
	}
	if canceled {
		t.Fatal("expected canceled = false")
	}
	if len(out.StopTimeUpdate) != 1 {
		t.Fatalf("StopTimeUpdate count = %d, want 1", len(out.StopTimeUpdate))
	}
	if out.StopTimeUpdate[0].GetStopId() != "103N" {
		t.Errorf("surviving stop = %s, want 103N", out.StopTimeUpdate[0].GetStopId())
	}
}

func TestRewrite_MergedWhenEmpty(t *testing.T) {
	tu := &gtfsrt.TripUpdate{
		Trip: &gtfsrt.TripDescriptor{TripId: proto.String("RT1")},
		StopTimeUpdate: []*gtfsrt.TripUpdate_StopTimeUpdate{
			stopUpdate("UNKNOWN", 1000),
		},
	}
	r := &Rewriter{LatencyLimit: -1}
	out, emitted, canceled := r.Rewrite(tu, testSchedTrip(), "20260803", 0)
	if emitted {
		t.Fatal("expected MERGED outcome (not emitted)")
	}
	if canceled {
		t.Fatal("expected canceled = false for a dropped MERGED outcome")
	}
	if out != nil {
		t.Fatal("expected nil trip update for MERGED outcome")
	}
}

func TestRewrite_CanceledWhenConfigured(t *testing.T) {
	tu := &gtfsrt.TripUpdate{
		Trip: &gtfsrt.TripDescriptor{TripId: proto.String("RT1")},
		StopTimeUpdate: []*gtfsrt.TripUpdate_StopTimeUpdate{
			stopUpdate("UNKNOWN", 1000),
		},
	}
	r := &Rewriter{LatencyLimit: -1, CancelUnmatchedTrips: true}
	out, emitted, canceled := r.Rewrite(tu, testSchedTrip(), "20260803", 0)
	if !emitted {
		t.Fatal("expected emitted CANCELED update")
	}
	if !canceled {
		t.Fatal("expected canceled = true")
	}
	if out.GetTrip().GetScheduleRelationship() != gtfsrt.TripDescriptor_CANCELED {
		t.Errorf("ScheduleRelationship = %v, want CANCELED", out.GetTrip().GetScheduleRelationship())
	}
	if len(out.StopTimeUpdate) != 0 {
		t.Errorf("StopTimeUpdate count = %d, want 0", len(out.StopTimeUpdate))
	}
}
