package scheduledb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/transitdata/nyct-rtproxy/schedule"
)

// Store is a warm cache of one parsed static schedule bundle, backed by
// Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and ensures the cache tables exist.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("scheduledb: ping: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS scheduled_trips (
	trip_id      TEXT PRIMARY KEY,
	route_id     TEXT NOT NULL,
	direction_id TEXT NOT NULL,
	service_id   TEXT NOT NULL,
	path_id      TEXT NOT NULL,
	network_id   TEXT NOT NULL,
	start_sec    INTEGER NOT NULL,
	end_sec      INTEGER NOT NULL,
	stop_times   JSONB NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("scheduledb: create scheduled_trips: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS service_dates (
	service_date TEXT NOT NULL,
	service_id   TEXT NOT NULL,
	PRIMARY KEY (service_date, service_id)
)`)
	if err != nil {
		return fmt.Errorf("scheduledb: create service_dates: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schedule_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("scheduledb: create schedule_meta: %w", err)
	}
	return nil
}

// Save replaces the cached bundle with trips, the date->service-id lookup
// and the feed's timezone, inside one transaction.
func (s *Store) Save(ctx context.Context, trips []*schedule.ScheduledTrip, serviceDates map[string]map[string]bool, loc *time.Location) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `TRUNCATE scheduled_trips`); err != nil {
		return fmt.Errorf("scheduledb: truncate scheduled_trips: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `TRUNCATE service_dates`); err != nil {
		return fmt.Errorf("scheduledb: truncate service_dates: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO schedule_meta (key, value) VALUES ('timezone', $1)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, loc.String()); err != nil {
		return fmt.Errorf("scheduledb: upsert timezone: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO scheduled_trips
	(trip_id, route_id, direction_id, service_id, path_id, network_id, start_sec, end_sec, stop_times)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, trip := range trips {
		stopTimesJSON, err := json.Marshal(trip.StopTimes)
		if err != nil {
			return fmt.Errorf("scheduledb: marshal stop times for %q: %w", trip.TripID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			trip.TripID, trip.RouteID, trip.DirectionID, trip.ServiceID,
			trip.PathID, trip.NetworkID, trip.StartSec, trip.EndSec, stopTimesJSON,
		); err != nil {
			return fmt.Errorf("scheduledb: insert trip %q: %w", trip.TripID, err)
		}
	}

	dateStmt, err := tx.PrepareContext(ctx, `INSERT INTO service_dates (service_date, service_id) VALUES ($1, $2)`)
	if err != nil {
		return err
	}
	defer dateStmt.Close()

	for date, serviceIDs := range serviceDates {
		for serviceID, active := range serviceIDs {
			if !active {
				continue
			}
			if _, err := dateStmt.ExecContext(ctx, date, serviceID); err != nil {
				return fmt.Errorf("scheduledb: insert service date %s/%s: %w", date, serviceID, err)
			}
		}
	}

	return tx.Commit()
}

// Load rebuilds an ActivatedTripIndex and the feed's timezone from the
// cached bundle. Callers should fall back to re-parsing the static GTFS
// zip if Load returns an error or zero trips (i.e. the cache was never
// populated).
func (s *Store) Load(ctx context.Context) (*schedule.ActivatedTripIndex, *time.Location, error) {
	trips, err := s.loadTrips(ctx)
	if err != nil {
		return nil, nil, err
	}
	serviceDates, err := s.loadServiceDates(ctx)
	if err != nil {
		return nil, nil, err
	}
	loc, err := s.loadTimezone(ctx)
	if err != nil {
		return nil, nil, err
	}
	return schedule.Build(trips, serviceDates), loc, nil
}

func (s *Store) loadTimezone(ctx context.Context) (*time.Location, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM schedule_meta WHERE key = 'timezone'`).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scheduledb: no cached timezone")
	}
	if err != nil {
		return nil, fmt.Errorf("scheduledb: query timezone: %w", err)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("scheduledb: load location %q: %w", name, err)
	}
	return loc, nil
}

func (s *Store) loadTrips(ctx context.Context) ([]*schedule.ScheduledTrip, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT trip_id, route_id, direction_id, service_id, path_id, network_id, start_sec, end_sec, stop_times
FROM scheduled_trips`)
	if err != nil {
		return nil, fmt.Errorf("scheduledb: query scheduled_trips: %w", err)
	}
	defer rows.Close()

	var trips []*schedule.ScheduledTrip
	for rows.Next() {
		trip := &schedule.ScheduledTrip{}
		var stopTimesJSON []byte
		if err := rows.Scan(
			&trip.TripID, &trip.RouteID, &trip.DirectionID, &trip.ServiceID,
			&trip.PathID, &trip.NetworkID, &trip.StartSec, &trip.EndSec, &stopTimesJSON,
		); err != nil {
			return nil, fmt.Errorf("scheduledb: scan trip: %w", err)
		}
		if err := json.Unmarshal(stopTimesJSON, &trip.StopTimes); err != nil {
			return nil, fmt.Errorf("scheduledb: unmarshal stop times for %q: %w", trip.TripID, err)
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func (s *Store) loadServiceDates(ctx context.Context) (map[string]map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT service_date, service_id FROM service_dates`)
	if err != nil {
		return nil, fmt.Errorf("scheduledb: query service_dates: %w", err)
	}
	defer rows.Close()

	dates := make(map[string]map[string]bool)
	for rows.Next() {
		var date, serviceID string
		if err := rows.Scan(&date, &serviceID); err != nil {
			return nil, fmt.Errorf("scheduledb: scan service date: %w", err)
		}
		if dates[date] == nil {
			dates[date] = make(map[string]bool)
		}
		dates[date][serviceID] = true
	}
	return dates, rows.Err()
}
