package main

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"

	"github.com/transitdata/nyct-rtproxy/config"
	"github.com/transitdata/nyct-rtproxy/feed"
	"github.com/transitdata/nyct-rtproxy/gtfsrtclient"
	"github.com/transitdata/nyct-rtproxy/match"
	"github.com/transitdata/nyct-rtproxy/metricsexport"
)

// aggregatedFeed holds the most recently published output message so the
// health/metrics server can serve it without blocking a running cycle.
type aggregatedFeed struct {
	mu  sync.RWMutex
	msg *gtfsrt.FeedMessage
}

func (a *aggregatedFeed) set(msg *gtfsrt.FeedMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.msg = msg
}

func (a *aggregatedFeed) get() *gtfsrt.FeedMessage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.msg
}

// runScheduler drives one fetch-match-rewrite-publish cycle on a fixed
// delay until shutdownSignal fires.
func runScheduler(
	log *log.Logger,
	cfg *config.AppConfig,
	client *gtfsrtclient.Client,
	processor *feed.Processor,
	collector *metricsexport.Collector,
	output *aggregatedFeed,
	shutdownSignal chan os.Signal,
) {
	ticker := time.NewTicker(time.Duration(cfg.CycleIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	runCycle(log, cfg, client, processor, collector, output)
	for {
		select {
		case <-shutdownSignal:
			log.Printf("shutdown signal received, exiting scheduler")
			return
		case <-ticker.C:
			runCycle(log, cfg, client, processor, collector, output)
		}
	}
}

// runCycle fetches every configured feed concurrently, processes each
// through the matcher/rewriter, and publishes the concatenation of all
// emitted trip updates. A slow or down feed's retry loop no longer
// stalls the fetch of every other feed in the same cycle.
func runCycle(
	log *log.Logger,
	cfg *config.AppConfig,
	client *gtfsrtclient.Client,
	processor *feed.Processor,
	collector *metricsexport.Collector,
	output *aggregatedFeed,
) {
	start := time.Now()
	metrics := &match.Aggregator{}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var allUpdates []*gtfsrt.TripUpdate

	for _, f := range cfg.Feeds {
		f := f
		wg.Add(1)
		go func() {
			defer wg.Done()
			fm, err := client.FetchWithRetry(f.ID, f.URL)
			if err != nil {
				log.Printf("feed=%d: skipping cycle: %v", f.ID, err)
				return
			}
			feedMetrics := &match.Aggregator{}
			updates := processor.ProcessFeed(f.ID, fm, feedMetrics)

			mu.Lock()
			defer mu.Unlock()
			allUpdates = append(allUpdates, updates...)
			metrics.Merge(feedMetrics)
		}()
	}
	wg.Wait()

	timestamp := uint64(time.Now().Unix())
	incrementality := gtfsrt.FeedHeader_FULL_DATASET
	version := "2.0"
	msg := &gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{
			GtfsRealtimeVersion: proto.String(version),
			Incrementality:      &incrementality,
			Timestamp:           proto.Uint64(timestamp),
		},
	}
	for i, tu := range allUpdates {
		msg.Entity = append(msg.Entity, &gtfsrt.FeedEntity{
			Id:         proto.String(tu.GetTrip().GetTripId() + "-" + strconv.Itoa(i)),
			TripUpdate: tu,
		})
	}
	duration := time.Since(start)
	output.set(msg)
	collector.Add(metrics)
	collector.CycleDuration.Observe(duration.Seconds())

	log.Printf(
		"cycle complete in %s: strict=%d loose=%d no_match=%d no_trip=%d bad_id=%d dup=%d cancel=%d emitted=%d",
		duration, metrics.StrictMatched, metrics.LooseMatched, metrics.NoMatch,
		metrics.NoTripWithStartDate, metrics.BadTripID, metrics.Duplicates, metrics.Cancellations, len(allUpdates),
	)
}
