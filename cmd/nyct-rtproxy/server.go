package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"google.golang.org/protobuf/proto"

	"github.com/transitdata/nyct-rtproxy/metricsexport"
)

// healthResponse reports whether the scheduler has published at least one
// aggregated feed and, if so, its feed-header timestamp.
type healthResponse struct {
	Status            string `json:"status"`
	LatestFeedEpoch   int64  `json:"latest_feed_epoch"`
	HasPublishedCycle bool   `json:"has_published_cycle"`
}

// startServer serves the aggregated GTFS-realtime feed, a JSON health
// check, and the Prometheus metrics endpoint, returning the *http.Server
// so the caller can shut it down.
func startServer(port int, collector *metricsexport.Collector, output *aggregatedFeed) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth(output))
	mux.HandleFunc("/gtfs-rt/trip-updates", handleAggregatedFeed(output))
	mux.Handle("/metrics", collector.Handler())

	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", addr)
	return srv
}

// shutdownServer stops srv with a bounded grace period.
func shutdownServer(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	} else {
		log.Printf("server shut down successfully")
	}
}

func handleHealth(output *aggregatedFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		msg := output.get()
		resp := healthResponse{Status: "ok"}
		if msg != nil {
			resp.HasPublishedCycle = true
			resp.LatestFeedEpoch = int64(msg.GetHeader().GetTimestamp())
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func handleAggregatedFeed(output *aggregatedFeed) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg := output.get()
		if msg == nil {
			http.Error(w, "no feed published yet", http.StatusServiceUnavailable)
			return
		}
		body, err := proto.Marshal(msg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-protobuf")
		_, _ = w.Write(body)
	}
}
