package domain

import "time"

// HealthStatus is the derived health bucket of a feed
type HealthStatus string

// health buckets, ordered from best to worst
const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthDegraded HealthStatus = "degraded"
	HealthCritical HealthStatus = "critical"
	HealthInactive HealthStatus = "inactive"
)

// AllHealthStatuses lists every health bucket in reporting order
var AllHealthStatuses = []HealthStatus{HealthHealthy, HealthWarning, HealthDegraded, HealthCritical, HealthInactive}

// FeedType is the detected dialect of a feed document
type FeedType string

// supported feed dialects
const (
	FeedTypeRSS2   FeedType = "rss2"
	FeedTypeAtom   FeedType = "atom"
	FeedTypeITunes FeedType = "itunes"
)

// FeedRecord represents a tracked podcast feed with its last-known metadata and health
type FeedRecord struct {
	ID                int64
	FeedURL           string
	Title             string
	Description       string
	Author            string
	CoverImageURL     string
	FeedType          FeedType
	LatestEpisodeDate *time.Time
	EpisodeCount      int
	Health            FeedHealth
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FeedHealth holds the health counters persisted with a feed.
// Status is derived by the health tracker and stored for querying only.
type FeedHealth struct {
	Status              HealthStatus
	LastCheckDate       *time.Time
	LastSuccessDate     *time.Time
	ConsecutiveFailures int
	TotalFailures       int
	TotalChecks         int
	SuccessRate         float64 // 0-100
	AvgResponseTime     float64 // seconds
	LastError           string
	LastErrorCategory   ErrorCategory
	LastErrorDate       *time.Time
	AutoDisabled        bool
	AutoDisabledDate    *time.Time
}

// Successes returns the number of successful checks
func (h FeedHealth) Successes() int {
	return h.TotalChecks - h.TotalFailures
}

// MetadataUpdate carries freshly fetched metadata for a feed.
// Only LatestEpisodeDate and EpisodeCount decide whether a write happens.
type MetadataUpdate struct {
	LatestEpisodeDate *time.Time
	EpisodeCount      int
	Title             string
	Description       string
	Author            string
	CoverImageURL     string
	FeedType          FeedType
}

// ErrorEntry is a single record of the bounded per-feed error history
type ErrorEntry struct {
	FeedID     int64
	Category   ErrorCategory
	StatusCode int
	Message    string
	OccurredAt time.Time
}

// HealthDetail is the single-feed health view exposed to API callers
type HealthDetail struct {
	Feed         FeedRecord
	RecentErrors []ErrorEntry
}

// HealthSummary aggregates health over all tracked feeds
type HealthSummary struct {
	TotalFeeds        int
	ByStatus          map[HealthStatus]int
	AutoDisabled      int
	AvgSuccessRate    float64
	AvgResponseTime   float64
	FeedsWithErrors   int
	NeverCheckedFeeds int
}
