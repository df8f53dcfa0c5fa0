package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/transitdata/nyct-rtproxy/config"
	"github.com/transitdata/nyct-rtproxy/feed"
	"github.com/transitdata/nyct-rtproxy/gtfsrtclient"
	"github.com/transitdata/nyct-rtproxy/internal"
	"github.com/transitdata/nyct-rtproxy/match"
	"github.com/transitdata/nyct-rtproxy/metricsexport"
	"github.com/transitdata/nyct-rtproxy/rewrite"
	"github.com/transitdata/nyct-rtproxy/schedule"
	"github.com/transitdata/nyct-rtproxy/scheduledb"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to config.yml")
	flag.Parse()

	internal.InitLogging()
	if err := config.LoadAppConfig(*configPath); err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg := config.Config

	index, loc, err := loadSchedule(cfg)
	if err != nil {
		log.Fatalf("loading static schedule: %v", err)
	}
	log.Printf("static schedule loaded: %d routes, timezone %s", len(index.Routes()), loc)
	for _, line := range schedule.DescribeHolidayServiceDates(index.ServiceDates()) {
		log.Printf("holiday service date: %s", line)
	}

	matcher := &match.Matcher{
		Index:              index,
		LateTripLimitSec:   cfg.Match.LateTripLimitSec,
		LooseMatchDisabled: cfg.Match.LooseMatchDisabled,
	}
	rewriter := &rewrite.Rewriter{
		LatencyLimit:         *cfg.Match.LatencyLimit,
		CancelUnmatchedTrips: cfg.Match.CancelUnmatchedTrips,
	}
	processor := feed.NewProcessor(matcher, rewriter, loc)
	processor.ReversedDirections = cfg.Match.ReversedSet()

	client := gtfsrtclient.NewClient(cfg.FetchRetries, time.Duration(cfg.FetchRetryDelayMS)*time.Millisecond, log.Default())
	collector := metricsexport.NewCollector()
	output := &aggregatedFeed{}

	srv := startServer(cfg.Server.Port, collector, output)

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		runScheduler(log.Default(), &cfg, client, processor, collector, output, shutdownSignal)
		close(done)
	}()

	<-done
	shutdownServer(srv)
}

// loadSchedule builds the ActivatedTripIndex, preferring a Postgres warm
// cache when configured and populated, and falling back to (and seeding)
// a fresh parse of the static GTFS zip otherwise. The static zip is only
// read and parsed when the cache is unavailable, empty, or disabled, so a
// restart with a warm cache never pays the zip-parsing cost.
func loadSchedule(cfg config.AppConfig) (*schedule.ActivatedTripIndex, *time.Location, error) {
	if cfg.Schedule.PostgresDSN == "" {
		return parseStaticBundle(cfg)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := scheduledb.Open(ctx, cfg.Schedule.PostgresDSN)
	if err != nil {
		log.Printf("scheduledb unavailable, parsing static zip directly: %v", err)
		return parseStaticBundle(cfg)
	}
	defer store.Close()

	cached, loc, err := store.Load(ctx)
	if err == nil && len(cached.Routes()) > 0 {
		log.Printf("loaded schedule from warm cache")
		return cached, loc, nil
	}
	log.Printf("warm cache empty or unreadable, seeding from static zip: %v", err)

	index, loc, err := parseStaticBundle(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Save(ctx, index.AllTrips(), index.ServiceDates(), loc); err != nil {
		log.Printf("failed to seed warm cache: %v", err)
	}
	return index, loc, nil
}

func parseStaticBundle(cfg config.AppConfig) (*schedule.ActivatedTripIndex, *time.Location, error) {
	zipContent, err := os.ReadFile(cfg.Schedule.StaticZipPath)
	if err != nil {
		return nil, nil, err
	}
	return schedule.LoadStaticBundle(zipContent)
}
