// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// It carries upstream feed endpoints, the static schedule source, and the
// matching/rewriting tunables (lateTripLimitSec, looseMatchDisabled,
// cancelUnmatchedTrips, latencyLimit, reversedDirectionsRoutes).
package config
