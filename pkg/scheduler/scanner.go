package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/umputun/podpulse/pkg/domain"
)

//go:generate moq -out mocks/registry.go -pkg mocks -skip-ensure -fmt goimports . Registry
//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher
//go:generate moq -out mocks/normalizer.go -pkg mocks -skip-ensure -fmt goimports . Normalizer
//go:generate moq -out mocks/health_recorder.go -pkg mocks -skip-ensure -fmt goimports . HealthRecorder
//go:generate moq -out mocks/metrics.go -pkg mocks -skip-ensure -fmt goimports . Metrics

// Registry provides scan candidates and receives metadata updates
type Registry interface {
	ListScanCandidates(ctx context.Context) ([]domain.FeedRecord, error)
	GetFeed(ctx context.Context, id int64) (*domain.FeedRecord, error)
	ApplyMetadataUpdate(ctx context.Context, id int64, upd domain.MetadataUpdate) (bool, error)
}

// Fetcher downloads raw feed documents
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) (*domain.FetchResult, error)
}

// Normalizer parses raw feed documents
type Normalizer interface {
	Parse(raw []byte) (*domain.NormalizedFeed, error)
}

// HealthRecorder records check outcomes into feed health
type HealthRecorder interface {
	RecordSuccess(ctx context.Context, feedID int64, responseTime time.Duration) (*domain.FeedRecord, error)
	RecordFailure(ctx context.Context, feedID int64, checkErr error, responseTime time.Duration) (*domain.FeedRecord, error)
}

// Metrics receives check and pass outcomes
type Metrics interface {
	ObserveCheck(outcome domain.FeedOutcome)
	ObserveRun(run *domain.ScanRun)
}

// ScannerParams defines dependencies and pass settings of Scanner
type ScannerParams struct {
	Registry   Registry
	Fetcher    Fetcher
	Normalizer Normalizer
	Health     HealthRecorder
	Metrics    Metrics // optional

	Delay   time.Duration // politeness delay between requests
	Workers int           // 1 means strictly sequential pass
}

// Scanner runs scan passes and forced single-feed checks.
// A pass walks the registry candidates, fetches and parses each feed, records the outcome
// into feed health and writes changed metadata back to the registry.
type Scanner struct {
	registry   Registry
	fetcher    Fetcher
	normalizer Normalizer
	health     HealthRecorder
	metrics    Metrics
	throttle   *Throttle
	workers    int

	checks singleflight.Group
	now    func() time.Time
}

// checkResult holds a single feed check outcome with its typed error
type checkResult struct {
	outcome domain.FeedOutcome
	err     error
}

// NewScanner makes a scanner with the given params
func NewScanner(p ScannerParams) *Scanner {
	if p.Workers < 1 {
		p.Workers = 1
	}
	return &Scanner{
		registry:   p.Registry,
		fetcher:    p.Fetcher,
		normalizer: p.Normalizer,
		health:     p.Health,
		metrics:    p.Metrics,
		throttle:   NewThrottle(p.Delay),
		workers:    p.Workers,
		now:        time.Now,
	}
}

// RunPass performs one scan pass over all candidates. Failures of individual feeds are
// reported as failed outcomes, only a registry failure or canceled context fails the pass.
func (s *Scanner) RunPass(ctx context.Context) (*domain.ScanRun, error) {
	run := &domain.ScanRun{ID: uuid.NewString(), StartedAt: s.now(), Outcomes: []domain.FeedOutcome{}}

	candidates, err := s.registry.ListScanCandidates(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrRegistryUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrRegistryUnavailable, err)
		}
		lgr.Printf("[ERROR] scan pass %s aborted: %v", run.ID, err)
		return nil, fmt.Errorf("list scan candidates: %w", err)
	}
	lgr.Printf("[INFO] scan pass %s started, %d feeds", run.ID, len(candidates))

	var outcomes []domain.FeedOutcome
	if s.workers == 1 {
		outcomes, err = s.sequential(ctx, candidates)
	} else {
		outcomes, err = s.parallel(ctx, candidates)
	}
	for _, o := range outcomes {
		run.Add(o)
	}
	run.FinishedAt = s.now()

	if s.metrics != nil {
		s.metrics.ObserveRun(run)
	}
	if err != nil {
		lgr.Printf("[WARN] scan pass %s interrupted after %d of %d feeds: %v", run.ID, run.Total, len(candidates), err)
		return run, fmt.Errorf("scan pass interrupted: %w", err)
	}

	lgr.Printf("[INFO] scan pass %s completed in %v: total %d, updated %d, skipped %d, failed %d",
		run.ID, run.Elapsed(), run.Total, run.Updated, run.Skipped, run.Failed)
	return run, nil
}

// sequential checks candidates one by one in list order with the delay between them
func (s *Scanner) sequential(ctx context.Context, candidates []domain.FeedRecord) ([]domain.FeedOutcome, error) {
	res := make([]domain.FeedOutcome, 0, len(candidates))
	for i, rec := range candidates {
		if i > 0 {
			if err := s.throttle.Pause(ctx); err != nil {
				return res, err
			}
		}
		r := s.check(ctx, rec)
		if r.outcome.Status == domain.OutcomeInterrupted {
			return res, r.err
		}
		res = append(res, r.outcome)
	}
	return res, nil
}

// parallel checks candidates with a bounded pool, the delay is kept per registrable domain.
// Outcomes are returned in list order.
func (s *Scanner) parallel(ctx context.Context, candidates []domain.FeedRecord) ([]domain.FeedOutcome, error) {
	res := make([]domain.FeedOutcome, len(candidates))
	done := make([]bool, len(candidates))

	g := errgroup.Group{}
	g.SetLimit(s.workers)
	for i, rec := range candidates {
		g.Go(func() error {
			if err := s.throttle.WaitHost(ctx, rec.FeedURL); err != nil {
				return err
			}
			r := s.check(ctx, rec)
			if r.outcome.Status == domain.OutcomeInterrupted {
				return r.err
			}
			res[i] = r.outcome
			done[i] = true
			return nil
		})
	}
	err := g.Wait()

	ordered := make([]domain.FeedOutcome, 0, len(candidates))
	for i := range res {
		if done[i] {
			ordered = append(ordered, res[i])
		}
	}
	return ordered, err
}

// ForceCheck checks a single feed right away, regardless of auto-disable or self-hosting.
// Fetch and parse failures are returned as typed errors together with the outcome.
// Concurrent checks of the same feed share one request.
func (s *Scanner) ForceCheck(ctx context.Context, feedID int64) (*domain.FeedOutcome, error) {
	v, err, _ := s.checks.Do(strconv.FormatInt(feedID, 10), func() (any, error) {
		rec, err := s.registry.GetFeed(ctx, feedID)
		if err != nil {
			return nil, fmt.Errorf("get feed %d: %w", feedID, err)
		}
		lgr.Printf("[INFO] forced check of feed %d, %s", rec.ID, rec.FeedURL)
		res := s.check(ctx, *rec)
		return &res, nil
	})
	if err != nil {
		return nil, err
	}
	res := v.(*checkResult)
	outcome := res.outcome
	return &outcome, res.err
}

// check runs fetch, parse, health record and metadata update for one feed
func (s *Scanner) check(ctx context.Context, rec domain.FeedRecord) checkResult {
	start := s.now()
	outcome := domain.FeedOutcome{FeedID: rec.ID, FeedURL: rec.FeedURL}

	fetched, err := s.fetcher.Fetch(ctx, rec.FeedURL)
	outcome.ResponseTime = s.now().Sub(start)
	if fetched != nil {
		outcome.ResponseTime = fetched.Elapsed
	}

	var parsed *domain.NormalizedFeed
	if err == nil {
		parsed, err = s.normalizer.Parse(fetched.Body)
	}
	if err != nil && ctx.Err() != nil {
		// cut by shutdown, the feed itself is not at fault
		outcome.Status = domain.OutcomeInterrupted
		outcome.Error = err.Error()
		lgr.Printf("[INFO] check of feed %d interrupted: %v", rec.ID, ctx.Err())
		return checkResult{outcome: outcome, err: fmt.Errorf("check of feed %d interrupted: %w", rec.ID, ctx.Err())}
	}
	if err != nil {
		s.recordFailure(ctx, &outcome, err)
		return checkResult{outcome: outcome, err: err}
	}

	outcome.Feed = parsed
	if updated, herr := s.health.RecordSuccess(ctx, rec.ID, outcome.ResponseTime); herr != nil {
		lgr.Printf("[WARN] can't record success of feed %d: %v", rec.ID, herr)
	} else {
		outcome.HealthStatus = updated.Health.Status
	}

	upd := domain.MetadataUpdate{
		LatestEpisodeDate: parsed.LatestEpisodeDate,
		EpisodeCount:      parsed.EpisodeCount,
		Title:             parsed.Title,
		Description:       parsed.Description,
		Author:            parsed.Author,
		CoverImageURL:     parsed.CoverImageURL,
		FeedType:          parsed.FeedType,
	}
	changed, err := s.registry.ApplyMetadataUpdate(ctx, rec.ID, upd)
	switch {
	case err != nil:
		lgr.Printf("[WARN] can't update metadata of feed %d: %v", rec.ID, err)
		outcome.Status = domain.OutcomeFailed
		outcome.Category = domain.ErrRegistry
		outcome.Error = err.Error()
	case changed:
		lgr.Printf("[DEBUG] feed %d updated, %d episodes", rec.ID, parsed.EpisodeCount)
		outcome.Status = domain.OutcomeUpdated
	default:
		outcome.Status = domain.OutcomeSkipped
	}

	s.observe(outcome)
	return checkResult{outcome: outcome, err: err}
}

// recordFailure fills the failed outcome and records the failure into feed health
func (s *Scanner) recordFailure(ctx context.Context, outcome *domain.FeedOutcome, checkErr error) {
	outcome.Status = domain.OutcomeFailed
	outcome.Category = domain.CategoryOf(checkErr)
	outcome.StatusCode = domain.StatusCodeOf(checkErr)
	outcome.Error = checkErr.Error()
	lgr.Printf("[WARN] feed %d check failed, %s: %v", outcome.FeedID, outcome.FeedURL, checkErr)

	if updated, err := s.health.RecordFailure(ctx, outcome.FeedID, checkErr, outcome.ResponseTime); err != nil {
		lgr.Printf("[WARN] can't record failure of feed %d: %v", outcome.FeedID, err)
	} else {
		outcome.HealthStatus = updated.Health.Status
	}
	s.observe(*outcome)
}

func (s *Scanner) observe(outcome domain.FeedOutcome) {
	if s.metrics != nil {
		s.metrics.ObserveCheck(outcome)
	}
}
