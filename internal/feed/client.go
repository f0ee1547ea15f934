package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Client fetches aircraft.json from a dump1090 receiver.
type Client struct {
	url       string
	userAgent string
	http      *http.Client
}

// NewClient returns a client for url. The receiver is always reached
// directly, ignoring proxy settings from the environment.
func NewClient(url string, timeout time.Duration, userAgent string) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	return &Client{
		url:       url,
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout, Transport: transport},
	}
}

// Fetch returns the receiver's current snapshot.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return snap, eris.Wrap(err, "feed: build request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return snap, eris.Wrap(err, "feed: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return snap, eris.Errorf("feed: receiver returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return snap, eris.Wrap(err, "feed: read body")
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return snap, eris.Wrap(err, "feed: parse snapshot")
	}
	snap.raw = body
	return snap, nil
}
