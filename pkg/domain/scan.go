package domain

import "time"

// OutcomeStatus is the result of a single feed within a scan pass
type OutcomeStatus string

// per-feed outcomes
const (
	OutcomeUpdated OutcomeStatus = "updated"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"

	// OutcomeInterrupted marks a check cut by cancellation, it is not recorded into health
	OutcomeInterrupted OutcomeStatus = "interrupted"
)

// FeedOutcome records what happened to one feed during a pass or a forced check
type FeedOutcome struct {
	FeedID       int64
	FeedURL      string
	Status       OutcomeStatus
	Category     ErrorCategory
	StatusCode   int
	Error        string
	ResponseTime time.Duration
	HealthStatus HealthStatus
	Feed         *NormalizedFeed `json:"-"`
}

// FeedFailure is a {feedId, error} pair reported by a pass summary
type FeedFailure struct {
	FeedID   int64         `json:"feed_id"`
	Category ErrorCategory `json:"category"`
	Error    string        `json:"error"`
}

// ScanRun is the ephemeral summary of one orchestrator pass
type ScanRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []FeedOutcome
	Total      int
	Updated    int
	Skipped    int
	Failed     int
}

// Add appends an outcome and updates the counters
func (r *ScanRun) Add(o FeedOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	r.Total++
	switch o.Status {
	case OutcomeUpdated:
		r.Updated++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Elapsed returns wall time of the pass
func (r *ScanRun) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failures lists failed feeds with their errors
func (r *ScanRun) Failures() []FeedFailure {
	res := []FeedFailure{}
	for _, o := range r.Outcomes {
		if o.Status != OutcomeFailed {
			continue
		}
		res = append(res, FeedFailure{FeedID: o.FeedID, Category: o.Category, Error: o.Error})
	}
	return res
}
