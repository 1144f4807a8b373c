package scheduler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/podpulse/pkg/domain"
	"github.com/umputun/podpulse/pkg/feed"
	"github.com/umputun/podpulse/pkg/health"
	"github.com/umputun/podpulse/pkg/repository"
	"github.com/umputun/podpulse/pkg/scheduler/mocks"
)

const showRSS = `<?xml version="1.0"?>
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
<channel>
  <title>Integration Show</title>
  <description>weekly</description>
  <itunes:image href="https://cdn.example.com/cover.jpg"/>
  %s
</channel>
</rss>`

func episodeItem(n int, date string) string {
	return fmt.Sprintf(`<item><title>Ep %d</title><pubDate>%s</pubDate>
		<enclosure url="https://cdn.example.com/ep%d.mp3" type="audio/mpeg" length="100"/></item>`, n, date, n)
}

// fakeSite serves feed bodies per url, a missing url answers 503
type fakeSite struct {
	mu     sync.Mutex
	bodies map[string]string
}

func (f *fakeSite) set(feedURL, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[feedURL] = body
}

func (f *fakeSite) fetcher() *mocks.FetcherMock {
	return &mocks.FetcherMock{FetchFunc: func(_ context.Context, feedURL string) (*domain.FetchResult, error) {
		f.mu.Lock()
		body, ok := f.bodies[feedURL]
		f.mu.Unlock()
		if !ok {
			return &domain.FetchResult{StatusCode: 503, Elapsed: 10 * time.Millisecond},
				&domain.FeedError{Category: domain.ErrHTTP, StatusCode: 503, Err: errors.New("unexpected status code: 503")}
		}
		return &domain.FetchResult{Body: []byte(body), StatusCode: 200, Elapsed: 20 * time.Millisecond}, nil
	}}
}

func setupPipeline(t *testing.T) (*Scanner, *repository.Repositories, *fakeSite) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		filepath.Join(t.TempDir(), "scan.db"))
	repos, err := repository.NewRepositories(context.Background(), repository.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	site := &fakeSite{bodies: map[string]string{}}
	scanner := NewScanner(ScannerParams{
		Registry:   repos.Feed,
		Fetcher:    site.fetcher(),
		Normalizer: feed.NewNormalizer(feed.NormalizerConfig{}),
		Health:     health.NewService(repos.Feed, health.NewTracker(health.DefaultPolicy())),
		Workers:    1,
	})
	return scanner, repos, site
}

func TestPipeline_UnchangedFeedIsSkipped(t *testing.T) {
	scanner, repos, site := setupPipeline(t)
	ctx := context.Background()

	rec := &domain.FeedRecord{FeedURL: "https://feeds.example.com/show.xml"}
	require.NoError(t, repos.Feed.CreateFeed(ctx, rec))
	site.set(rec.FeedURL, fmt.Sprintf(showRSS, episodeItem(1, "Mon, 01 Jan 2024 00:00:00 GMT")+
		episodeItem(3, "Wed, 03 Jan 2024 00:00:00 GMT")+episodeItem(2, "Tue, 02 Jan 2024 00:00:00 GMT")))

	run, err := scanner.RunPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, run.Updated)

	stored, err := repos.Feed.GetFeed(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.EpisodeCount)
	require.NotNil(t, stored.LatestEpisodeDate)
	assert.True(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC).Equal(*stored.LatestEpisodeDate))
	assert.Equal(t, "Integration Show", stored.Title)
	assert.Equal(t, domain.FeedTypeITunes, stored.FeedType)
	assert.Equal(t, "https://cdn.example.com/cover.jpg", stored.CoverImageURL)
	assert.Equal(t, 1, stored.Health.TotalChecks)

	run, err = scanner.RunPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Updated)
	assert.Equal(t, 1, run.Skipped)

	t.Run("new episode is an update", func(t *testing.T) {
		site.set(rec.FeedURL, fmt.Sprintf(showRSS, episodeItem(1, "Mon, 01 Jan 2024 00:00:00 GMT")+
			episodeItem(3, "Wed, 03 Jan 2024 00:00:00 GMT")+episodeItem(2, "Tue, 02 Jan 2024 00:00:00 GMT")+
			episodeItem(4, "Thu, 04 Jan 2024 00:00:00 GMT")))
		run, err := scanner.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, run.Updated)
	})
}

func TestPipeline_RepeatedServiceUnavailable(t *testing.T) {
	scanner, repos, site := setupPipeline(t)
	ctx := context.Background()

	rec := &domain.FeedRecord{FeedURL: "https://feeds.example.com/x.xml"}
	require.NoError(t, repos.Feed.CreateFeed(ctx, rec))
	site.set(rec.FeedURL, fmt.Sprintf(showRSS, episodeItem(1, "Mon, 01 Jan 2024 00:00:00 GMT")))
	_, err := scanner.RunPass(ctx)
	require.NoError(t, err)

	stored, err := repos.Feed.GetFeed(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, domain.HealthHealthy, stored.Health.Status)
	require.Equal(t, 0, stored.Health.ConsecutiveFailures)

	site.mu.Lock()
	delete(site.bodies, rec.FeedURL)
	site.mu.Unlock()
	for range 3 {
		run, err := scanner.RunPass(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, run.Failed)
	}

	stored, err = repos.Feed.GetFeed(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Health.ConsecutiveFailures)
	assert.Equal(t, domain.HealthWarning, stored.Health.Status)
	assert.False(t, stored.Health.AutoDisabled)
	assert.Equal(t, domain.ErrHTTP, stored.Health.LastErrorCategory)

	history, err := repos.Feed.RecentErrors(ctx, rec.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 503, history[0].StatusCode)
}

func TestPipeline_AutoDisabledAndSelfHostedNotScanned(t *testing.T) {
	scanner, repos, site := setupPipeline(t)
	ctx := context.Background()

	local := &domain.FeedRecord{FeedURL: "http://localhost:8080/podcast/1/feed.xml"}
	loop := &domain.FeedRecord{FeedURL: "http://127.0.0.1/feed.xml"}
	dead := &domain.FeedRecord{FeedURL: "https://dead.example.com/feed.xml"}
	for _, r := range []*domain.FeedRecord{local, loop, dead} {
		require.NoError(t, repos.Feed.CreateFeed(ctx, r))
	}

	// ten failing passes disable the dead feed
	for range 10 {
		_, err := scanner.RunPass(ctx)
		require.NoError(t, err)
	}
	stored, err := repos.Feed.GetFeed(ctx, dead.ID)
	require.NoError(t, err)
	assert.True(t, stored.Health.AutoDisabled)
	assert.Equal(t, domain.HealthInactive, stored.Health.Status)

	run, err := scanner.RunPass(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, run.Total)

	t.Run("forced check still reaches it", func(t *testing.T) {
		site.set(dead.FeedURL, fmt.Sprintf(showRSS, episodeItem(1, "Mon, 01 Jan 2024 00:00:00 GMT")))
		out, err := scanner.ForceCheck(ctx, dead.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeUpdated, out.Status)
		assert.Equal(t, domain.HealthInactive, out.HealthStatus, "success doesn't reactivate")
	})
}
