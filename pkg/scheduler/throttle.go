package scheduler

import (
	"context"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

// Throttle keeps the politeness delay between feed requests
type Throttle struct {
	delay time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewThrottle makes a throttle with the given delay, zero delay disables throttling
func NewThrottle(delay time.Duration) *Throttle {
	return &Throttle{delay: delay, limiters: map[string]*rate.Limiter{}}
}

// Pause waits for the delay or until ctx is done
func (t *Throttle) Pause(ctx context.Context) error {
	if t.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(t.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// WaitHost blocks until a request to feedURL is allowed. Requests to the same registrable
// domain are spaced by the delay, requests to different domains are not throttled.
func (t *Throttle) WaitHost(ctx context.Context, feedURL string) error {
	if t.delay <= 0 {
		return ctx.Err()
	}
	return t.limiter(hostKey(feedURL)).Wait(ctx)
}

func (t *Throttle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(t.delay), 1)
		t.limiters[key] = l
	}
	return l
}

// hostKey returns eTLD+1 of the feed host, the bare host for IPs and hosts without one
func hostKey(feedURL string) string {
	u, err := url.Parse(strings.TrimSpace(feedURL))
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())
	if net.ParseIP(host) != nil {
		return host
	}
	if key, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return key
	}
	return host
}
