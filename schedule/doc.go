// Package schedule holds the static-schedule data model (ScheduledTrip)
// and the ActivatedTripIndex built from it once at startup: "which
// scheduled trips are active on service-date D for route R". The index
// is immutable after Build and safe to share across feed cycles without
// synchronization.
package schedule
