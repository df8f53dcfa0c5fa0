// Package scheduledb persists a parsed static schedule to Postgres and
// reloads it, so a restart does not have to re-parse a large GTFS zip
// before the first feed cycle.
package scheduledb
