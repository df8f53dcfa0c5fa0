// Package servicedate models a GTFS "service date": a calendar day in the
// agency's local timezone whose service period extends up to 26 hours past
// its nominal midnight, to accommodate trips that run past midnight.
package servicedate
