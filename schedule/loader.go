package schedule

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	gtfsstatic "github.com/jamespfennell/gtfs"

	"github.com/transitdata/nyct-rtproxy/nyctid"
)

// BadPathIDError is returned when a scheduled trip's agency trip id (the
// mta_trip_id column) does not parse against the static path/network
// grammar. Index construction treats this as fatal: a
// corrupt static feed must not silently produce a half-built index.
type BadPathIDError struct {
	TripID string
	Err    error
}

func (e *BadPathIDError) Error() string {
	return fmt.Sprintf("schedule: bad path id for trip %q: %v", e.TripID, e.Err)
}

func (e *BadPathIDError) Unwrap() error { return e.Err }

// LoadStaticBundle parses a GTFS static zip and builds an ActivatedTripIndex
// from it, along with the feed's reference timezone (taken from the first
// agency, per GTFS convention that a feed has a single operating timezone).
func LoadStaticBundle(zipContent []byte) (*ActivatedTripIndex, *time.Location, error) {
	static, err := gtfsstatic.ParseStatic(zipContent, gtfsstatic.ParseStaticOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("schedule: parsing static feed: %w", err)
	}

	loc := time.UTC
	if len(static.Agencies) > 0 {
		if l, err := time.LoadLocation(static.Agencies[0].Timezone); err == nil {
			loc = l
		}
	}

	mtaTripIDs, err := LoadMTATripIDs(zipContent)
	if err != nil {
		return nil, nil, err
	}

	trips := make([]*ScheduledTrip, 0, len(static.Trips))
	for i := range static.Trips {
		st := &static.Trips[i]
		built, err := buildScheduledTrip(st, mtaTripIDs[st.ID])
		if err != nil {
			return nil, nil, err
		}
		if built != nil {
			trips = append(trips, built)
		}
	}

	calendars := make([]ServiceCalendar, 0, len(static.Services))
	for _, svc := range static.Services {
		calendars = append(calendars, ServiceCalendar{
			ServiceID: svc.Id,
			Weekday: [7]bool{
				svc.Sunday, svc.Monday, svc.Tuesday, svc.Wednesday,
				svc.Thursday, svc.Friday, svc.Saturday,
			},
			StartDate: svc.StartDate,
			EndDate:   svc.EndDate,
			Added:     svc.AddedDates,
			Removed:   svc.RemovedDates,
		})
	}

	return Build(trips, ExpandCalendar(calendars)), loc, nil
}

// buildScheduledTrip converts a parsed gtfs.ScheduledTrip into our own
// ScheduledTrip, recovering PathID/NetworkID from the agency-specific
// mta_trip_id when one was found, falling back to the realtime grammar
// applied to the GTFS trip id otherwise (non-ATIS static feeds sometimes
// carry the NYCT-style id directly as trip_id). Trips missing a direction,
// route, service, or any stop times are skipped rather than rejected,
// since a handful of malformed rows should not abort the whole load.
func buildScheduledTrip(trip *gtfsstatic.ScheduledTrip, mtaTripID string) (*ScheduledTrip, error) {
	if trip.DirectionId == nil || trip.Route == nil || trip.Service == nil || len(trip.StopTimes) == 0 {
		return nil, nil
	}

	stopTimes := make([]gtfsstatic.ScheduledStopTime, len(trip.StopTimes))
	copy(stopTimes, trip.StopTimes)
	gtfsstatic.SortScheduledStopTimes(stopTimes)

	var pathID, networkID string
	if mtaTripID != "" {
		var err error
		pathID, networkID, err = nyctid.StaticPathAndNetwork(mtaTripID)
		if err != nil {
			return nil, &BadPathIDError{TripID: trip.ID, Err: err}
		}
	} else if fallback, err := nyctid.ParseRealtime(trip.ID); err == nil {
		pathID = fallback.PathID
		networkID = fallback.NetworkID
	}

	stops := make([]StopTime, len(stopTimes))
	for i, st := range stopTimes {
		stopID := ""
		if st.Stop != nil {
			stopID = st.Stop.Id
		}
		stops[i] = StopTime{
			StopID:       stopID,
			ArrivalSec:   int(st.ArrivalTime.Seconds()),
			DepartureSec: int(st.DepartureTime.Seconds()),
		}
	}

	return &ScheduledTrip{
		TripID:      trip.ID,
		RouteID:     trip.Route.Id,
		DirectionID: directionFromGTFS(*trip.DirectionId),
		ServiceID:   trip.Service.Id,
		PathID:      pathID,
		NetworkID:   networkID,
		StartSec:    stops[0].DepartureSec,
		EndSec:      stops[len(stops)-1].ArrivalSec,
		StopTimes:   stops,
	}, nil
}

// LoadMTATripIDs recovers the mta_trip_id column of trips.txt, an
// agency-specific extension field the static parser does not surface
// (it is not part of the core GTFS trips.txt schema). Returns a nil map,
// not an error, when trips.txt or the column is absent.
func LoadMTATripIDs(zipContent []byte) (map[string]string, error) {
	r, err := zip.NewReader(bytes.NewReader(zipContent), int64(len(zipContent)))
	if err != nil {
		return nil, fmt.Errorf("schedule: opening static zip: %w", err)
	}

	var tripsFile *zip.File
	for _, f := range r.File {
		if f.Name == "trips.txt" {
			tripsFile = f
			break
		}
	}
	if tripsFile == nil {
		return nil, nil
	}

	rc, err := tripsFile.Open()
	if err != nil {
		return nil, fmt.Errorf("schedule: opening trips.txt: %w", err)
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("schedule: reading trips.txt header: %w", err)
	}

	tripIDCol, mtaCol := -1, -1
	for i, name := range header {
		switch name {
		case "trip_id":
			tripIDCol = i
		case "mta_trip_id":
			mtaCol = i
		}
	}
	if tripIDCol == -1 || mtaCol == -1 {
		return nil, nil
	}

	out := make(map[string]string)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("schedule: reading trips.txt: %w", err)
		}
		if mtaCol < len(record) && record[mtaCol] != "" {
			out[record[tripIDCol]] = record[mtaCol]
		}
	}
	return out, nil
}
