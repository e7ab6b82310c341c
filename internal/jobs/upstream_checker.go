package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"ukbol/internal/metrics"
	"ukbol/internal/upstream"
)

// defaultRetryInterval paces checks while a required target is down.
const defaultRetryInterval = 500 * time.Millisecond

// Target is one upstream service polled by the checker.
type Target struct {
	Service  string
	URL      string
	Required bool // readiness depends on this target
}

// ServiceStatus is the result of the most recent check of a target.
type ServiceStatus struct {
	Service   string    `json:"service"`
	Up        bool      `json:"up"`
	Required  bool      `json:"required"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

// UpstreamChecker periodically checks that the upstream services the
// explorer depends on are reachable.
type UpstreamChecker struct {
	targets       []Target
	clients       map[string]*upstream.Client
	interval      time.Duration
	retryInterval time.Duration

	mu       sync.RWMutex
	statuses map[string]ServiceStatus
}

// NewUpstreamChecker creates a new checker. A nil httpClient uses a client
// with a 10 second timeout.
func NewUpstreamChecker(targets []Target, interval time.Duration, httpClient *http.Client) *UpstreamChecker {
	if httpClient == nil {
		httpClient = upstream.NewHTTPClient(10 * time.Second)
	}
	clients := make(map[string]*upstream.Client, len(targets))
	for _, t := range targets {
		client := upstream.New(t.Service, httpClient, metrics.ObserveUpstream)
		client.SetUserAgent("UKBoL-UpstreamChecker/1.0")
		clients[t.Service] = client
	}
	return &UpstreamChecker{
		targets:       targets,
		clients:       clients,
		interval:      interval,
		retryInterval: min(defaultRetryInterval, interval),
		statuses:      make(map[string]ServiceStatus, len(targets)),
	}
}

// SetRetryInterval sets how soon a check is repeated while a required
// target is down. It must be called before Start.
func (u *UpstreamChecker) SetRetryInterval(d time.Duration) {
	if d > 0 {
		u.retryInterval = min(d, u.interval)
	}
}

// Start begins the background check loop. Until every required target is
// up, checks repeat at the retry interval rather than the full interval, so
// a target that starts after the checker (such as this server's own API) is
// picked up promptly.
func (u *UpstreamChecker) Start(ctx context.Context) {
	log.Printf("Upstream checker started (interval: %v, targets: %d)", u.interval, len(u.targets))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Upstream checker stopped")
			return
		case <-timer.C:
			u.CheckAll(ctx)
			timer.Reset(u.nextDelay())
		}
	}
}

func (u *UpstreamChecker) nextDelay() time.Duration {
	if u.Ready() {
		return u.interval
	}
	return u.retryInterval
}

// CheckAll checks every target once.
func (u *UpstreamChecker) CheckAll(ctx context.Context) {
	for _, t := range u.targets {
		select {
		case <-ctx.Done():
			return
		default:
		}

		status := u.check(ctx, t)
		if !status.Up {
			slog.Warn("upstream unavailable", "service", t.Service, "url", t.URL, "error", status.Error)
		}
		metrics.SetUpstreamUp(t.Service, status.Up)

		u.mu.Lock()
		u.statuses[t.Service] = status
		u.mu.Unlock()
	}
}

// check issues one GET. Any response other than a network failure or a
// server error counts as reachable.
func (u *UpstreamChecker) check(ctx context.Context, t Target) ServiceStatus {
	status := ServiceStatus{Service: t.Service, Required: t.Required, CheckedAt: time.Now()}

	var body json.RawMessage
	err := u.clients[t.Service].GetJSON(ctx, "check", t.URL, &body)

	var te *upstream.TransportError
	switch {
	case err == nil, errors.Is(err, upstream.ErrNotFound):
		status.Up = true
	case errors.As(err, &te) && te.StatusCode >= 400 && te.StatusCode < 500:
		status.Up = true
	default:
		status.Error = err.Error()
	}
	return status
}

// Statuses returns the latest result for each checked target, ordered by
// service name.
func (u *UpstreamChecker) Statuses() []ServiceStatus {
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make([]ServiceStatus, 0, len(u.statuses))
	for _, s := range u.statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out
}

// Ready reports whether every required target has been checked and was up.
func (u *UpstreamChecker) Ready() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()

	for _, t := range u.targets {
		if !t.Required {
			continue
		}
		s, ok := u.statuses[t.Service]
		if !ok || !s.Up {
			return false
		}
	}
	return true
}
