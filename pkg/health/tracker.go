package health

import (
	"time"

	"github.com/umputun/podpulse/pkg/domain"
)

// Tracker applies check outcomes to domain.FeedHealth. It holds no state of its own,
// callers are responsible for atomic read-modify-write of the record.
type Tracker struct {
	policy Policy
}

// NewTracker makes a tracker for the given policy
func NewTracker(policy Policy) *Tracker {
	return &Tracker{policy: policy}
}

// Policy returns thresholds the tracker was created with
func (t *Tracker) Policy() Policy {
	return t.policy
}

// RecordSuccess applies a successful check. AutoDisabled is left as is, only an explicit
// reactivation clears it.
func (t *Tracker) RecordSuccess(h *domain.FeedHealth, responseTime time.Duration, now time.Time) {
	h.TotalChecks++
	h.ConsecutiveFailures = 0
	h.LastCheckDate = timePtr(now)
	h.LastSuccessDate = timePtr(now)
	h.AvgResponseTime = runningAvg(h.AvgResponseTime, responseTime, h.TotalChecks)
	h.SuccessRate = SuccessRate(*h)
	h.Status = t.Status(*h)
}

// RecordFailure applies a failed check and returns true if the feed got auto-disabled by this call.
// responseTime is zero for failures that never got a response.
func (t *Tracker) RecordFailure(h *domain.FeedHealth, msg string, category domain.ErrorCategory,
	responseTime time.Duration, now time.Time) (disabled bool) {
	h.TotalChecks++
	h.TotalFailures++
	h.ConsecutiveFailures++
	h.LastError = msg
	h.LastErrorCategory = category
	h.LastErrorDate = timePtr(now)
	h.LastCheckDate = timePtr(now)
	h.AvgResponseTime = runningAvg(h.AvgResponseTime, responseTime, h.TotalChecks)
	h.SuccessRate = SuccessRate(*h)

	if !h.AutoDisabled && t.policy.AutoDisableAfter > 0 && h.ConsecutiveFailures >= t.policy.AutoDisableAfter {
		h.AutoDisabled = true
		h.AutoDisabledDate = timePtr(now)
		disabled = true
	}
	h.Status = t.Status(*h)
	return disabled
}

// Reactivate clears auto-disable, failure counters are kept for diagnostics
func (t *Tracker) Reactivate(h *domain.FeedHealth) {
	h.AutoDisabled = false
	h.AutoDisabledDate = nil
	h.Status = t.Status(*h)
}

// ResetErrors zeroes the counters, auto-disable state is not touched
func (t *Tracker) ResetErrors(h *domain.FeedHealth) {
	h.ConsecutiveFailures = 0
	h.TotalFailures = 0
	h.TotalChecks = 0
	h.SuccessRate = SuccessRate(*h)
	h.Status = t.Status(*h)
}

// Status derives the health bucket. Auto-disable wins, then bands are checked from healthy down.
func (t *Tracker) Status(h domain.FeedHealth) domain.HealthStatus {
	p := t.policy
	rate := SuccessRate(h)
	cf := h.ConsecutiveFailures
	switch {
	case h.AutoDisabled:
		return domain.HealthInactive
	case rate >= p.HealthyMinRate && cf < p.HealthyMaxFailures:
		return domain.HealthHealthy
	case rate >= p.WarningMinRate || cf < p.WarningMaxFailures:
		return domain.HealthWarning
	case rate >= p.DegradedMinRate || cf < p.DegradedMaxFailures:
		return domain.HealthDegraded
	default:
		return domain.HealthCritical
	}
}

// SuccessRate computes percent of successful checks, 100 for a never checked feed
func SuccessRate(h domain.FeedHealth) float64 {
	if h.TotalChecks <= 0 {
		return 100
	}
	return 100 * float64(h.Successes()) / float64(h.TotalChecks)
}

// runningAvg folds the n-th sample into a cumulative average, in seconds
func runningAvg(avg float64, sample time.Duration, n int) float64 {
	if n <= 1 {
		return sample.Seconds()
	}
	return (avg*float64(n-1) + sample.Seconds()) / float64(n)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
