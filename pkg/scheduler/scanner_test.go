package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/podpulse/pkg/domain"
	"github.com/umputun/podpulse/pkg/scheduler/mocks"
)

type scannerMocks struct {
	registry   *mocks.RegistryMock
	fetcher    *mocks.FetcherMock
	normalizer *mocks.NormalizerMock
	health     *mocks.HealthRecorderMock
	metrics    *mocks.MetricsMock
}

// newTestScanner makes a scanner over the given candidates where every fetch and parse succeeds
// and every metadata update reports a change
func newTestScanner(candidates []domain.FeedRecord, workers int) (*Scanner, *scannerMocks) {
	m := &scannerMocks{
		registry: &mocks.RegistryMock{
			ListScanCandidatesFunc: func(context.Context) ([]domain.FeedRecord, error) { return candidates, nil },
			GetFeedFunc: func(_ context.Context, id int64) (*domain.FeedRecord, error) {
				for _, c := range candidates {
					if c.ID == id {
						return &c, nil
					}
				}
				return nil, domain.ErrFeedNotFound
			},
			ApplyMetadataUpdateFunc: func(context.Context, int64, domain.MetadataUpdate) (bool, error) { return true, nil },
		},
		fetcher: &mocks.FetcherMock{
			FetchFunc: func(_ context.Context, feedURL string) (*domain.FetchResult, error) {
				return &domain.FetchResult{Body: []byte(feedURL), StatusCode: 200, Elapsed: 100 * time.Millisecond}, nil
			},
		},
		normalizer: &mocks.NormalizerMock{
			ParseFunc: func(raw []byte) (*domain.NormalizedFeed, error) {
				return &domain.NormalizedFeed{Title: string(raw), EpisodeCount: 3, FeedType: domain.FeedTypeRSS2}, nil
			},
		},
		health: &mocks.HealthRecorderMock{
			RecordSuccessFunc: func(_ context.Context, id int64, _ time.Duration) (*domain.FeedRecord, error) {
				return &domain.FeedRecord{ID: id, Health: domain.FeedHealth{Status: domain.HealthHealthy}}, nil
			},
			RecordFailureFunc: func(_ context.Context, id int64, _ error, _ time.Duration) (*domain.FeedRecord, error) {
				return &domain.FeedRecord{ID: id, Health: domain.FeedHealth{Status: domain.HealthWarning}}, nil
			},
		},
		metrics: &mocks.MetricsMock{
			ObserveCheckFunc: func(domain.FeedOutcome) {},
			ObserveRunFunc:   func(*domain.ScanRun) {},
		},
	}
	s := NewScanner(ScannerParams{Registry: m.registry, Fetcher: m.fetcher, Normalizer: m.normalizer,
		Health: m.health, Metrics: m.metrics, Workers: workers})
	return s, m
}

func testFeeds(n int) []domain.FeedRecord {
	res := make([]domain.FeedRecord, n)
	for i := range res {
		res[i] = domain.FeedRecord{ID: int64(i + 1), FeedURL: fmt.Sprintf("https://host%d.example.com/feed.xml", i+1)}
	}
	return res
}

func TestScanner_RunPass(t *testing.T) {
	s, m := newTestScanner(testFeeds(3), 1)
	m.registry.ApplyMetadataUpdateFunc = func(_ context.Context, id int64, upd domain.MetadataUpdate) (bool, error) {
		assert.Equal(t, 3, upd.EpisodeCount)
		return id == 1, nil
	}
	m.fetcher.FetchFunc = func(_ context.Context, feedURL string) (*domain.FetchResult, error) {
		if feedURL == "https://host3.example.com/feed.xml" {
			return &domain.FetchResult{StatusCode: 503, Elapsed: 50 * time.Millisecond},
				&domain.FeedError{Category: domain.ErrHTTP, StatusCode: 503, Err: errors.New("unexpected status code: 503")}
		}
		return &domain.FetchResult{Body: []byte(feedURL), StatusCode: 200, Elapsed: 100 * time.Millisecond}, nil
	}

	run, err := s.RunPass(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 3, run.Total)
	assert.Equal(t, 1, run.Updated)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 1, run.Failed)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))

	require.Len(t, run.Outcomes, 3)
	assert.Equal(t, domain.OutcomeUpdated, run.Outcomes[0].Status)
	assert.Equal(t, domain.OutcomeSkipped, run.Outcomes[1].Status)
	assert.Equal(t, domain.HealthHealthy, run.Outcomes[1].HealthStatus)
	failed := run.Outcomes[2]
	assert.Equal(t, domain.OutcomeFailed, failed.Status)
	assert.Equal(t, domain.ErrHTTP, failed.Category)
	assert.Equal(t, 503, failed.StatusCode)
	assert.Equal(t, "http_error: status 503", failed.Error)
	assert.Equal(t, 50*time.Millisecond, failed.ResponseTime)
	assert.Equal(t, domain.HealthWarning, failed.HealthStatus)

	assert.Equal(t, []domain.FeedFailure{{FeedID: 3, Category: domain.ErrHTTP, Error: "http_error: status 503"}}, run.Failures())

	require.Len(t, m.health.RecordSuccessCalls(), 2)
	assert.Equal(t, 100*time.Millisecond, m.health.RecordSuccessCalls()[0].ResponseTime)
	require.Len(t, m.health.RecordFailureCalls(), 1)
	assert.Equal(t, int64(3), m.health.RecordFailureCalls()[0].FeedID)
	assert.Len(t, m.registry.ApplyMetadataUpdateCalls(), 2, "no metadata write for failed fetch")

	assert.Len(t, m.metrics.ObserveCheckCalls(), 3)
	require.Len(t, m.metrics.ObserveRunCalls(), 1)
	assert.Equal(t, run, m.metrics.ObserveRunCalls()[0].Run)
}

func TestScanner_RunPassFailureKinds(t *testing.T) {
	t.Run("parse failure", func(t *testing.T) {
		s, m := newTestScanner(testFeeds(2), 1)
		m.normalizer.ParseFunc = func(raw []byte) (*domain.NormalizedFeed, error) {
			if string(raw) == "https://host1.example.com/feed.xml" {
				return nil, domain.NewFeedError(domain.ErrParse, errors.New("XML syntax error on line 1"))
			}
			return &domain.NormalizedFeed{EpisodeCount: 1}, nil
		}
		run, err := s.RunPass(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, run.Failed)
		assert.Equal(t, 1, run.Updated)
		assert.Equal(t, domain.ErrParse, run.Outcomes[0].Category)
		require.Len(t, m.health.RecordFailureCalls(), 1)
		assert.Equal(t, domain.ErrParse, domain.CategoryOf(m.health.RecordFailureCalls()[0].CheckErr))
	})

	t.Run("network failure without response", func(t *testing.T) {
		s, m := newTestScanner(testFeeds(1), 1)
		m.fetcher.FetchFunc = func(context.Context, string) (*domain.FetchResult, error) {
			return nil, domain.NewFeedError(domain.ErrNetwork, errors.New("connection refused"))
		}
		run, err := s.RunPass(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, run.Failed)
		assert.Equal(t, domain.ErrNetwork, run.Outcomes[0].Category)
		assert.Empty(t, m.normalizer.ParseCalls())
	})

	t.Run("health write failure keeps the outcome", func(t *testing.T) {
		s, m := newTestScanner(testFeeds(1), 1)
		m.health.RecordSuccessFunc = func(context.Context, int64, time.Duration) (*domain.FeedRecord, error) {
			return nil, errors.New("database is locked")
		}
		run, err := s.RunPass(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, run.Updated)
		assert.Empty(t, run.Outcomes[0].HealthStatus)
	})

	t.Run("metadata write failure", func(t *testing.T) {
		s, m := newTestScanner(testFeeds(2), 1)
		m.registry.ApplyMetadataUpdateFunc = func(_ context.Context, id int64, _ domain.MetadataUpdate) (bool, error) {
			if id == 1 {
				return false, errors.New("disk I/O error")
			}
			return false, nil
		}
		run, err := s.RunPass(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, run.Failed)
		assert.Equal(t, 1, run.Skipped)
		assert.Equal(t, domain.ErrRegistry, run.Outcomes[0].Category)
		assert.Empty(t, m.health.RecordFailureCalls(), "feed itself is fine")
	})
}

func TestScanner_RunPassRegistryUnavailable(t *testing.T) {
	s, m := newTestScanner(nil, 1)
	m.registry.ListScanCandidatesFunc = func(context.Context) ([]domain.FeedRecord, error) {
		return nil, errors.New("no such table: feeds")
	}
	run, err := s.RunPass(context.Background())
	require.Error(t, err)
	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrRegistryUnavailable)
	assert.Empty(t, m.fetcher.FetchCalls())
	assert.Empty(t, m.metrics.ObserveRunCalls())
}

func TestScanner_RunPassEmpty(t *testing.T) {
	s, _ := newTestScanner(nil, 1)
	run, err := s.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, run.Total)
	assert.Empty(t, run.Outcomes)
	assert.Empty(t, run.Failures())
}

func TestScanner_RunPassSequentialDelay(t *testing.T) {
	s, m := newTestScanner(testFeeds(3), 1)
	s.throttle = NewThrottle(50 * time.Millisecond)

	var mu sync.Mutex
	var starts []time.Time
	m.fetcher.FetchFunc = func(_ context.Context, feedURL string) (*domain.FetchResult, error) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		return &domain.FetchResult{Body: []byte(feedURL), StatusCode: 200}, nil
	}

	run, err := s.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, run.Total)
	require.Len(t, starts, 3)
	assert.GreaterOrEqual(t, starts[1].Sub(starts[0]), 50*time.Millisecond)
	assert.GreaterOrEqual(t, starts[2].Sub(starts[1]), 50*time.Millisecond)

	calls := m.fetcher.FetchCalls()
	for i, c := range calls {
		assert.Equal(t, fmt.Sprintf("https://host%d.example.com/feed.xml", i+1), c.FeedURL, "list order")
	}
}

func TestScanner_RunPassCanceled(t *testing.T) {
	s, m := newTestScanner(testFeeds(3), 1)
	s.throttle = NewThrottle(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	m.fetcher.FetchFunc = func(_ context.Context, feedURL string) (*domain.FetchResult, error) {
		cancel()
		return &domain.FetchResult{Body: []byte(feedURL), StatusCode: 200}, nil
	}

	run, err := s.RunPass(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, run)
	assert.Equal(t, 1, run.Total, "first feed done before the pause")
	assert.Len(t, m.fetcher.FetchCalls(), 1)
}

func TestScanner_RunPassInterruptedFetch(t *testing.T) {
	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers %d", workers), func(t *testing.T) {
			s, m := newTestScanner(testFeeds(1), workers)
			ctx, cancel := context.WithCancel(context.Background())
			m.fetcher.FetchFunc = func(fctx context.Context, _ string) (*domain.FetchResult, error) {
				cancel()
				return nil, domain.NewFeedError(domain.ErrNetwork, fctx.Err())
			}

			run, err := s.RunPass(ctx)
			require.Error(t, err)
			assert.ErrorIs(t, err, context.Canceled)
			require.NotNil(t, run)
			assert.Equal(t, 0, run.Total)
			assert.Equal(t, 0, run.Failed)
			assert.Empty(t, m.health.RecordFailureCalls(), "shutdown is not a feed failure")
			assert.Empty(t, m.metrics.ObserveCheckCalls())
		})
	}
}

func TestScanner_ForceCheckInterrupted(t *testing.T) {
	s, m := newTestScanner(testFeeds(1), 1)
	ctx, cancel := context.WithCancel(context.Background())
	m.fetcher.FetchFunc = func(fctx context.Context, _ string) (*domain.FetchResult, error) {
		cancel()
		return nil, domain.NewFeedError(domain.ErrNetwork, fctx.Err())
	}

	out, err := s.ForceCheck(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, out)
	assert.Equal(t, domain.OutcomeInterrupted, out.Status)
	assert.Empty(t, m.health.RecordFailureCalls())
}

func TestScanner_RunPassParallel(t *testing.T) {
	s, m := newTestScanner(testFeeds(6), 3)
	var inFlight, maxInFlight atomic.Int32
	m.fetcher.FetchFunc = func(_ context.Context, feedURL string) (*domain.FetchResult, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			cur := maxInFlight.Load()
			if n <= cur || maxInFlight.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		if feedURL == "https://host2.example.com/feed.xml" {
			return nil, domain.NewFeedError(domain.ErrNetwork, errors.New("timeout"))
		}
		return &domain.FetchResult{Body: []byte(feedURL), StatusCode: 200}, nil
	}

	run, err := s.RunPass(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, run.Total)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 5, run.Updated)
	for i, o := range run.Outcomes {
		assert.Equal(t, int64(i+1), o.FeedID, "outcomes in list order")
	}
	assert.LessOrEqual(t, maxInFlight.Load(), int32(3))
}

func TestScanner_ForceCheck(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, m := newTestScanner(testFeeds(2), 1)
		out, err := s.ForceCheck(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, int64(2), out.FeedID)
		assert.Equal(t, domain.OutcomeUpdated, out.Status)
		require.NotNil(t, out.Feed)
		assert.Equal(t, 3, out.Feed.EpisodeCount)
		assert.Empty(t, m.registry.ListScanCandidatesCalls())
		assert.Len(t, m.metrics.ObserveCheckCalls(), 1)
	})

	t.Run("auto-disabled feed is still checked", func(t *testing.T) {
		feeds := testFeeds(1)
		feeds[0].Health.AutoDisabled = true
		feeds[0].FeedURL = "http://localhost:8080/feed.xml"
		s, m := newTestScanner(feeds, 1)
		_, err := s.ForceCheck(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, m.fetcher.FetchCalls(), 1)
		assert.Equal(t, "http://localhost:8080/feed.xml", m.fetcher.FetchCalls()[0].FeedURL)
	})

	t.Run("typed error surfaces", func(t *testing.T) {
		s, m := newTestScanner(testFeeds(1), 1)
		m.fetcher.FetchFunc = func(context.Context, string) (*domain.FetchResult, error) {
			return &domain.FetchResult{StatusCode: 404}, &domain.FeedError{Category: domain.ErrHTTP, StatusCode: 404,
				Err: errors.New("unexpected status code: 404")}
		}
		out, err := s.ForceCheck(context.Background(), 1)
		require.Error(t, err)
		require.NotNil(t, out)
		assert.Equal(t, domain.OutcomeFailed, out.Status)
		assert.Equal(t, domain.ErrHTTP, domain.CategoryOf(err))
		assert.Equal(t, 404, domain.StatusCodeOf(err))
		assert.Len(t, m.health.RecordFailureCalls(), 1)
	})

	t.Run("unknown feed", func(t *testing.T) {
		s, m := newTestScanner(testFeeds(1), 1)
		out, err := s.ForceCheck(context.Background(), 42)
		require.Error(t, err)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, domain.ErrFeedNotFound)
		assert.Empty(t, m.fetcher.FetchCalls())
	})

	t.Run("concurrent checks of one feed share a fetch", func(t *testing.T) {
		s, m := newTestScanner(testFeeds(1), 1)
		started, release := make(chan struct{}), make(chan struct{})
		var once sync.Once
		m.fetcher.FetchFunc = func(_ context.Context, feedURL string) (*domain.FetchResult, error) {
			once.Do(func() { close(started) })
			<-release
			return &domain.FetchResult{Body: []byte(feedURL), StatusCode: 200}, nil
		}

		var wg sync.WaitGroup
		results := make([]*domain.FeedOutcome, 2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[0], _ = s.ForceCheck(context.Background(), 1)
		}()
		<-started
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[1], _ = s.ForceCheck(context.Background(), 1)
		}()
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Len(t, m.fetcher.FetchCalls(), 1)
		require.NotNil(t, results[0])
		require.NotNil(t, results[1])
		assert.Equal(t, *results[0], *results[1])
		assert.NotSame(t, results[0], results[1])
	})
}
