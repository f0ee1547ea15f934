package route

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every route-service request.
const DefaultTimeout = 10 * time.Second

// service is the HTTP plumbing shared by the route clients: one client with
// a bounded timeout and one limiter per remote host.
type service struct {
	name    string
	http    *http.Client
	limiter *rate.Limiter
}

func newService(name string, hc *http.Client, timeout time.Duration, perSecond float64) service {
	if hc == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	burst := 1
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		if perSecond > 1 {
			burst = int(perSecond)
		}
	}
	return service{name: name, http: hc, limiter: rate.NewLimiter(limit, burst)}
}

func (s service) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrapf(err, "route: %s build request", s.name)
	}
	return s.do(req, out)
}

func (s service) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return eris.Wrapf(err, "route: %s encode request", s.name)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrapf(err, "route: %s build request", s.name)
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, out)
}

func (s service) do(req *http.Request, out any) error {
	if err := s.limiter.Wait(req.Context()); err != nil {
		return eris.Wrapf(err, "route: %s rate limit", s.name)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "route: %s request", s.name)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("route: %s returned status %d", s.name, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "route: %s read body", s.name)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "route: %s parse response", s.name)
	}
	return nil
}
