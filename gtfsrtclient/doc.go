// Package gtfsrtclient fetches upstream GTFS-realtime feed messages over
// HTTP, retrying transient failures before giving up on one feed for the
// current cycle.
package gtfsrtclient
