package health

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/podpulse/pkg/domain"
)

//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store

// Store persists feed health. UpdateHealth must run fn inside a per-record atomic
// read-modify-write and return domain.ErrFeedNotFound for unknown ids.
type Store interface {
	GetFeed(ctx context.Context, id int64) (*domain.FeedRecord, error)
	ListFeeds(ctx context.Context) ([]domain.FeedRecord, error)
	UpdateHealth(ctx context.Context, id int64, fn func(h *domain.FeedHealth) error) (*domain.FeedRecord, error)
	AppendError(ctx context.Context, entry domain.ErrorEntry, keep int) error
	RecentErrors(ctx context.Context, feedID int64, limit int) ([]domain.ErrorEntry, error)
}

// Service records check outcomes and serves health queries on top of a Store
type Service struct {
	store   Store
	tracker *Tracker
	now     func() time.Time
}

// NewService makes a health service
func NewService(store Store, tracker *Tracker) *Service {
	return &Service{store: store, tracker: tracker, now: time.Now}
}

// RecordSuccess applies a successful check to the feed
func (s *Service) RecordSuccess(ctx context.Context, feedID int64, responseTime time.Duration) (*domain.FeedRecord, error) {
	now := s.now().UTC()
	rec, err := s.store.UpdateHealth(ctx, feedID, func(h *domain.FeedHealth) error {
		s.tracker.RecordSuccess(h, responseTime, now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record success for feed %d: %w", feedID, err)
	}
	return rec, nil
}

// RecordFailure applies a failed check to the feed and appends it to the bounded error history.
// Category and status code are taken from checkErr.
func (s *Service) RecordFailure(ctx context.Context, feedID int64, checkErr error, responseTime time.Duration) (*domain.FeedRecord, error) {
	now := s.now().UTC()
	category := domain.CategoryOf(checkErr)
	msg := checkErr.Error()

	var disabled bool
	rec, err := s.store.UpdateHealth(ctx, feedID, func(h *domain.FeedHealth) error {
		disabled = s.tracker.RecordFailure(h, msg, category, responseTime, now)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record failure for feed %d: %w", feedID, err)
	}
	if disabled {
		lgr.Printf("[WARN] feed %d (%s) auto-disabled after %d consecutive failures",
			feedID, rec.FeedURL, rec.Health.ConsecutiveFailures)
	}

	if keep := s.tracker.Policy().ErrorHistory; keep > 0 {
		entry := domain.ErrorEntry{FeedID: feedID, Category: category, StatusCode: domain.StatusCodeOf(checkErr),
			Message: msg, OccurredAt: now}
		if err := s.store.AppendError(ctx, entry, keep); err != nil {
			// history is diagnostic only, counters are already stored
			lgr.Printf("[WARN] failed to append error history for feed %d: %v", feedID, err)
		}
	}
	return rec, nil
}

// ReactivateFeed clears auto-disable of the feed
func (s *Service) ReactivateFeed(ctx context.Context, feedID int64) (*domain.FeedRecord, error) {
	rec, err := s.store.UpdateHealth(ctx, feedID, func(h *domain.FeedHealth) error {
		s.tracker.Reactivate(h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reactivate feed %d: %w", feedID, err)
	}
	lgr.Printf("[INFO] feed %d reactivated, consecutive failures %d", feedID, rec.Health.ConsecutiveFailures)
	return rec, nil
}

// ResetErrors zeroes failure counters of the feed
func (s *Service) ResetErrors(ctx context.Context, feedID int64) (*domain.FeedRecord, error) {
	rec, err := s.store.UpdateHealth(ctx, feedID, func(h *domain.FeedHealth) error {
		s.tracker.ResetErrors(h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reset errors of feed %d: %w", feedID, err)
	}
	lgr.Printf("[INFO] feed %d errors reset", feedID)
	return rec, nil
}

// Detail returns the feed with its recent errors, newest first
func (s *Service) Detail(ctx context.Context, feedID int64) (*domain.HealthDetail, error) {
	rec, err := s.store.GetFeed(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("get feed %d: %w", feedID, err)
	}
	rec.Health.SuccessRate = SuccessRate(rec.Health)
	rec.Health.Status = s.tracker.Status(rec.Health)

	errs, err := s.store.RecentErrors(ctx, feedID, s.tracker.Policy().ErrorHistory)
	if err != nil {
		return nil, fmt.Errorf("get recent errors of feed %d: %w", feedID, err)
	}
	return &domain.HealthDetail{Feed: *rec, RecentErrors: errs}, nil
}

// Summary aggregates health over all feeds. Average response time counts checked feeds only,
// a never checked feed has no response time to contribute.
func (s *Service) Summary(ctx context.Context) (*domain.HealthSummary, error) {
	feeds, err := s.store.ListFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	res := &domain.HealthSummary{TotalFeeds: len(feeds), ByStatus: make(map[domain.HealthStatus]int)}
	for _, st := range domain.AllHealthStatuses {
		res.ByStatus[st] = 0
	}

	var rateSum, rtSum float64
	checked := 0
	for _, f := range feeds {
		h := f.Health
		res.ByStatus[s.tracker.Status(h)]++
		rateSum += SuccessRate(h)
		if h.AutoDisabled {
			res.AutoDisabled++
		}
		if h.ConsecutiveFailures > 0 {
			res.FeedsWithErrors++
		}
		if h.TotalChecks == 0 {
			res.NeverCheckedFeeds++
			continue
		}
		checked++
		rtSum += h.AvgResponseTime
	}

	if len(feeds) > 0 {
		res.AvgSuccessRate = rateSum / float64(len(feeds))
	}
	if checked > 0 {
		res.AvgResponseTime = rtSum / float64(checked)
	}
	return res, nil
}
