package gtfsrtclient

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	gtfsrt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"
)

// Client fetches and parses GTFS-realtime feed messages over HTTP.
type Client struct {
	httpClient *http.Client
	Retries    int
	RetryDelay time.Duration
	Logger     *log.Logger
}

// NewClient builds a Client with the given retry budget. A Logger of nil
// means retries are not logged.
func NewClient(retries int, retryDelay time.Duration, logger *log.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		Retries:    retries,
		RetryDelay: retryDelay,
		Logger:     logger,
	}
}

// FetchWithRetry fetches and unmarshals one feed message, retrying on any
// transport or parse error up to Retries times with a fixed delay between
// attempts. feedID is used only for log context.
func (c *Client) FetchWithRetry(feedID int, url string) (*gtfsrt.FeedMessage, error) {
	var lastErr error
	for tries := 0; tries <= c.Retries; tries++ {
		body, err := c.fetch(url)
		if err == nil {
			fm := &gtfsrt.FeedMessage{}
			if err = proto.Unmarshal(body, fm); err == nil {
				return fm, nil
			}
		}
		lastErr = err
		c.logf("feed=%d: fetch attempt %d/%d failed: %v", feedID, tries+1, c.Retries+1, err)
		if tries < c.Retries {
			time.Sleep(c.RetryDelay)
		}
	}
	return nil, fmt.Errorf("gtfsrtclient: feed=%d: all %d attempts failed: %w", feedID, c.Retries+1, lastErr)
}

func (c *Client) fetch(url string) ([]byte, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
