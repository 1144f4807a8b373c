package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/podpulse/pkg/domain"
	"github.com/umputun/podpulse/pkg/metrics"
	"github.com/umputun/podpulse/server/mocks"
)

func testConfig(listen string) *mocks.ConfigProviderMock {
	return &mocks.ConfigProviderMock{
		GetServerConfigFunc: func() (string, time.Duration, int) {
			return listen, 30 * time.Second, 10
		},
	}
}

// testServer creates a server with the given deps, missing ones are empty mocks
func testServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Feeds == nil {
		deps.Feeds = &mocks.FeedStoreMock{}
	}
	if deps.Health == nil {
		deps.Health = &mocks.HealthServiceMock{}
	}
	if deps.Scanner == nil {
		deps.Scanner = &mocks.ScannerMock{}
	}
	if deps.Trigger == nil {
		deps.Trigger = &mocks.TriggerMock{}
	}
	return New(testConfig(":8080"), deps, "test", false)
}

func serve(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader = http.NoBody
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), w.Body.String())
	return res
}

func sampleFeed(id int64) domain.FeedRecord {
	checked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return domain.FeedRecord{
		ID:           id,
		FeedURL:      fmt.Sprintf("https://feeds.example.com/%d.xml", id),
		Title:        fmt.Sprintf("Show %d", id),
		FeedType:     domain.FeedTypeITunes,
		EpisodeCount: 12,
		Health: domain.FeedHealth{
			Status:        domain.HealthHealthy,
			LastCheckDate: &checked,
			TotalChecks:   4,
			SuccessRate:   100,
		},
	}
}

func TestServer_New(t *testing.T) {
	srv := New(testConfig(":8080"), Deps{}, "1.0.0", false)
	assert.NotNil(t, srv)
	assert.Equal(t, "1.0.0", srv.version)
	assert.False(t, srv.debug)
	assert.Nil(t, srv.metrics)
}

func TestServer_Run(t *testing.T) {
	// find free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	srv := New(testConfig(fmt.Sprintf("127.0.0.1:%d", port)), Deps{}, "1.0.0", true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// wait for server to start
	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
	assert.Equal(t, "podpulse", resp.Header.Get("App-Name"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_Status(t *testing.T) {
	srv := testServer(t, Deps{})
	srv.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	w := serve(t, srv, "GET", "/api/v1/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	status := decode(t, w)
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
	assert.Equal(t, "2024-05-01T12:00:00Z", status["time"])
}

func TestServer_HealthSummary(t *testing.T) {
	health := &mocks.HealthServiceMock{SummaryFunc: func(context.Context) (*domain.HealthSummary, error) {
		return &domain.HealthSummary{
			TotalFeeds:        3,
			ByStatus:          map[domain.HealthStatus]int{domain.HealthHealthy: 2, domain.HealthInactive: 1},
			AutoDisabled:      1,
			AvgSuccessRate:    75.5,
			AvgResponseTime:   0.25,
			FeedsWithErrors:   1,
			NeverCheckedFeeds: 0,
		}, nil
	}}
	srv := testServer(t, Deps{Health: health})

	w := serve(t, srv, "GET", "/api/v1/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode(t, w)
	assert.InDelta(t, 3, res["total_feeds"], 0.001)
	assert.InDelta(t, 75.5, res["avg_success_rate"], 0.001)
	assert.Equal(t, map[string]any{"healthy": float64(2), "inactive": float64(1)}, res["by_status"])

	t.Run("store failure", func(t *testing.T) {
		health.SummaryFunc = func(context.Context) (*domain.HealthSummary, error) {
			return nil, errors.New("disk I/O error")
		}
		w := serve(t, srv, "GET", "/api/v1/health", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "disk I/O")
	})
}

func TestServer_ListFeeds(t *testing.T) {
	disabled := sampleFeed(2)
	disabled.Health.Status = domain.HealthInactive
	disabled.Health.AutoDisabled = true
	feeds := &mocks.FeedStoreMock{ListFeedsFunc: func(context.Context) ([]domain.FeedRecord, error) {
		return []domain.FeedRecord{sampleFeed(1), disabled}, nil
	}}
	srv := testServer(t, Deps{Feeds: feeds})

	w := serve(t, srv, "GET", "/api/v1/feeds", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res []feedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 2)
	assert.Equal(t, int64(1), res[0].ID)
	assert.Equal(t, domain.HealthHealthy, res[0].Status)
	assert.Equal(t, 12, res[0].EpisodeCount)
	assert.Equal(t, domain.HealthInactive, res[1].Status)
	assert.True(t, res[1].Health.AutoDisabled)

	t.Run("empty list is an array", func(t *testing.T) {
		feeds.ListFeedsFunc = func(context.Context) ([]domain.FeedRecord, error) { return nil, nil }
		w := serve(t, srv, "GET", "/api/v1/feeds", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())
	})

	t.Run("store failure", func(t *testing.T) {
		feeds.ListFeedsFunc = func(context.Context) ([]domain.FeedRecord, error) { return nil, errors.New("locked") }
		w := serve(t, srv, "GET", "/api/v1/feeds", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestServer_AddFeed(t *testing.T) {
	feeds := &mocks.FeedStoreMock{CreateFeedFunc: func(_ context.Context, rec *domain.FeedRecord) error {
		if rec.FeedURL == "https://feeds.example.com/dup.xml" {
			return fmt.Errorf("create feed: %w", domain.ErrFeedExists)
		}
		rec.ID = 42
		return nil
	}}
	srv := testServer(t, Deps{Feeds: feeds})

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"created", `{"url":" https://feeds.example.com/new.xml ","title":"New"}`, http.StatusCreated},
		{"duplicate", `{"url":"https://feeds.example.com/dup.xml"}`, http.StatusConflict},
		{"bad scheme", `{"url":"ftp://feeds.example.com/x.xml"}`, http.StatusBadRequest},
		{"missing host", `{"url":"https:///x.xml"}`, http.StatusBadRequest},
		{"bad json", `{"url":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, srv, "POST", "/api/v1/feeds", tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}

	calls := feeds.CreateFeedCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "https://feeds.example.com/new.xml", calls[0].Feed.FeedURL)
	assert.Equal(t, "New", calls[0].Feed.Title)
}

func TestServer_OPML(t *testing.T) {
	feeds := &mocks.FeedStoreMock{ListFeedsFunc: func(context.Context) ([]domain.FeedRecord, error) {
		return []domain.FeedRecord{sampleFeed(1)}, nil
	}}
	srv := testServer(t, Deps{Feeds: feeds})

	w := serve(t, srv, "GET", "/api/v1/feeds.opml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/x-opml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), `xmlUrl="https://feeds.example.com/1.xml"`)
	assert.Contains(t, w.Body.String(), `health="healthy"`)
}

func TestServer_FeedHealth(t *testing.T) {
	occurred := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)
	health := &mocks.HealthServiceMock{DetailFunc: func(_ context.Context, id int64) (*domain.HealthDetail, error) {
		if id != 7 {
			return nil, fmt.Errorf("get feed %d: %w", id, domain.ErrFeedNotFound)
		}
		return &domain.HealthDetail{
			Feed: sampleFeed(7),
			RecentErrors: []domain.ErrorEntry{
				{FeedID: 7, Category: domain.ErrHTTP, StatusCode: 503, Message: "unexpected status code: 503", OccurredAt: occurred},
			},
		}, nil
	}}
	srv := testServer(t, Deps{Health: health})

	w := serve(t, srv, "GET", "/api/v1/feeds/7/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Feed         feedResponse         `json:"feed"`
		RecentErrors []errorEntryResponse `json:"recent_errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int64(7), res.Feed.ID)
	require.Len(t, res.RecentErrors, 1)
	assert.Equal(t, 503, res.RecentErrors[0].StatusCode)
	assert.Equal(t, domain.ErrHTTP, res.RecentErrors[0].Category)

	w = serve(t, srv, "GET", "/api/v1/feeds/8/health", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, id := range []string{"abc", "0", "-3"} {
		w = serve(t, srv, "GET", "/api/v1/feeds/"+id+"/health", "")
		assert.Equal(t, http.StatusBadRequest, w.Code, id)
	}
	assert.Len(t, health.DetailCalls(), 2)
}

func TestServer_OperatorActions(t *testing.T) {
	reactivated := sampleFeed(5)
	reactivated.Health.Status = domain.HealthDegraded
	reactivated.Health.ConsecutiveFailures = 5
	reset := sampleFeed(5)

	health := &mocks.HealthServiceMock{
		ReactivateFeedFunc: func(_ context.Context, id int64) (*domain.FeedRecord, error) {
			if id != 5 {
				return nil, domain.ErrFeedNotFound
			}
			return &reactivated, nil
		},
		ResetErrorsFunc: func(_ context.Context, id int64) (*domain.FeedRecord, error) {
			if id != 5 {
				return nil, errors.New("database is locked")
			}
			return &reset, nil
		},
	}
	srv := testServer(t, Deps{Health: health})

	w := serve(t, srv, "POST", "/api/v1/feeds/5/reactivate", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rec feedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, domain.HealthDegraded, rec.Status)
	assert.Equal(t, 5, rec.Health.ConsecutiveFailures)
	assert.False(t, rec.Health.AutoDisabled)

	w = serve(t, srv, "POST", "/api/v1/feeds/6/reactivate", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, srv, "POST", "/api/v1/feeds/5/reset-errors", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, domain.HealthHealthy, rec.Status)

	w = serve(t, srv, "POST", "/api/v1/feeds/6/reset-errors", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")

	w = serve(t, srv, "GET", "/api/v1/feeds/5/reactivate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestServer_Check(t *testing.T) {
	scanner := &mocks.ScannerMock{ForceCheckFunc: func(_ context.Context, id int64) (*domain.FeedOutcome, error) {
		switch id {
		case 1:
			return &domain.FeedOutcome{FeedID: 1, Status: domain.OutcomeUpdated, HealthStatus: domain.HealthHealthy,
				ResponseTime: 250 * time.Millisecond}, nil
		case 2:
			ferr := &domain.FeedError{Category: domain.ErrHTTP, StatusCode: 404, Err: errors.New("unexpected status code: 404")}
			return &domain.FeedOutcome{FeedID: 2, Status: domain.OutcomeFailed, Category: domain.ErrHTTP, StatusCode: 404,
				Error: ferr.Error(), HealthStatus: domain.HealthWarning}, ferr
		default:
			return nil, fmt.Errorf("get feed %d: %w", id, domain.ErrFeedNotFound)
		}
	}}
	srv := testServer(t, Deps{Scanner: scanner})

	t.Run("success", func(t *testing.T) {
		w := serve(t, srv, "POST", "/api/v1/feeds/1/check", "")
		require.Equal(t, http.StatusOK, w.Code)
		var res checkResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.OK)
		assert.Equal(t, domain.OutcomeUpdated, res.Status)
		assert.InDelta(t, 0.25, res.ResponseTime, 0.001)
		assert.Empty(t, res.Category)
	})

	t.Run("feed failure is reported, not an http error", func(t *testing.T) {
		w := serve(t, srv, "POST", "/api/v1/feeds/2/check", "")
		require.Equal(t, http.StatusOK, w.Code)
		var res checkResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.False(t, res.OK)
		assert.Equal(t, domain.OutcomeFailed, res.Status)
		assert.Equal(t, domain.ErrHTTP, res.Category)
		assert.Equal(t, 404, res.StatusCode)
		assert.Contains(t, res.Error, "404")
		assert.Equal(t, domain.HealthWarning, res.HealthStatus)
	})

	t.Run("unknown feed", func(t *testing.T) {
		w := serve(t, srv, "POST", "/api/v1/feeds/3/check", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "feed 3 not found", decode(t, w)["error"])
	})
}

func TestServer_Scan(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("started", func(t *testing.T) {
		release := make(chan struct{})
		trigger := &mocks.TriggerMock{TryStartFunc: func(context.Context, time.Time) (bool, error) { return true, nil }}
		scanner := &mocks.ScannerMock{RunPassFunc: func(context.Context) (*domain.ScanRun, error) {
			<-release
			return &domain.ScanRun{ID: "run-1", StartedAt: now}, nil
		}}
		srv := testServer(t, Deps{Trigger: trigger, Scanner: scanner})
		srv.now = func() time.Time { return now }

		w := serve(t, srv, "POST", "/api/v1/scan", "")
		require.Equal(t, http.StatusAccepted, w.Code, "replies before the pass completes")
		var res scanResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Started)
		require.NotNil(t, res.StartedAt)
		assert.Equal(t, now, *res.StartedAt)
		require.Len(t, trigger.TryStartCalls(), 1)
		assert.Equal(t, now, trigger.TryStartCalls()[0].Now)

		close(release)
		srv.passes.Wait()
		assert.Len(t, scanner.RunPassCalls(), 1)
	})

	t.Run("not due", func(t *testing.T) {
		trigger := &mocks.TriggerMock{TryStartFunc: func(context.Context, time.Time) (bool, error) { return false, nil }}
		scanner := &mocks.ScannerMock{}
		srv := testServer(t, Deps{Trigger: trigger, Scanner: scanner})
		w := serve(t, srv, "POST", "/api/v1/scan", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decode(t, w)["started"])
		srv.passes.Wait()
		assert.Empty(t, scanner.RunPassCalls())
	})

	t.Run("pass failure is logged only", func(t *testing.T) {
		trigger := &mocks.TriggerMock{TryStartFunc: func(context.Context, time.Time) (bool, error) { return true, nil }}
		scanner := &mocks.ScannerMock{RunPassFunc: func(context.Context) (*domain.ScanRun, error) {
			return nil, fmt.Errorf("list scan candidates: %w", domain.ErrRegistryUnavailable)
		}}
		srv := testServer(t, Deps{Trigger: trigger, Scanner: scanner})
		w := serve(t, srv, "POST", "/api/v1/scan", "")
		assert.Equal(t, http.StatusAccepted, w.Code)
		srv.passes.Wait()
		assert.Len(t, scanner.RunPassCalls(), 1)
	})

	t.Run("marker store failure", func(t *testing.T) {
		trigger := &mocks.TriggerMock{TryStartFunc: func(context.Context, time.Time) (bool, error) { return false, errors.New("busy") }}
		srv := testServer(t, Deps{Trigger: trigger})
		w := serve(t, srv, "POST", "/api/v1/scan", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestServer_ScanLongPassWithWriteTimeout(t *testing.T) {
	trigger := &mocks.TriggerMock{TryStartFunc: func(context.Context, time.Time) (bool, error) { return true, nil }}
	scanner := &mocks.ScannerMock{RunPassFunc: func(context.Context) (*domain.ScanRun, error) {
		time.Sleep(400 * time.Millisecond)
		return &domain.ScanRun{ID: "run-1"}, nil
	}}
	srv := testServer(t, Deps{Trigger: trigger, Scanner: scanner})

	ts := httptest.NewUnstartedServer(srv.router)
	ts.Config.WriteTimeout = 200 * time.Millisecond
	ts.Start()
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/v1/scan", "application/json", http.NoBody)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	var res scanResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.True(t, res.Started)

	srv.passes.Wait()
	assert.Len(t, scanner.RunPassCalls(), 1)
}

func TestServer_RunCancelsLazyPass(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	passStarted := make(chan struct{})
	trigger := &mocks.TriggerMock{TryStartFunc: func(context.Context, time.Time) (bool, error) { return true, nil }}
	scanner := &mocks.ScannerMock{RunPassFunc: func(ctx context.Context) (*domain.ScanRun, error) {
		close(passStarted)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	srv := New(testConfig(fmt.Sprintf("127.0.0.1:%d", port)), Deps{Trigger: trigger, Scanner: scanner,
		Feeds: &mocks.FeedStoreMock{}, Health: &mocks.HealthServiceMock{}}, "1.0.0", false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Post(fmt.Sprintf("http://127.0.0.1:%d/api/v1/scan", port), "application/json", http.NoBody)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusAccepted
	}, 5*time.Second, 50*time.Millisecond)
	<-passStarted

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	require.Len(t, scanner.RunPassCalls(), 1)
	assert.ErrorIs(t, scanner.RunPassCalls()[0].Ctx.Err(), context.Canceled)
}

func TestServer_Metrics(t *testing.T) {
	t.Run("not served without collector", func(t *testing.T) {
		srv := testServer(t, Deps{})
		w := serve(t, srv, "GET", "/metrics", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("gauge refreshed on scrape", func(t *testing.T) {
		collector, err := metrics.NewCollector()
		require.NoError(t, err)
		health := &mocks.HealthServiceMock{SummaryFunc: func(context.Context) (*domain.HealthSummary, error) {
			return &domain.HealthSummary{TotalFeeds: 4, ByStatus: map[domain.HealthStatus]int{
				domain.HealthHealthy: 3, domain.HealthCritical: 1}}, nil
		}}
		srv := testServer(t, Deps{Health: health, Metrics: collector})

		w := serve(t, srv, "GET", "/metrics", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `podpulse_feeds_by_health{status="healthy"} 3`)
		assert.Contains(t, w.Body.String(), `podpulse_feeds_by_health{status="critical"} 1`)
		assert.Len(t, health.SummaryCalls(), 1)
	})

	t.Run("summary failure still serves", func(t *testing.T) {
		m := &mocks.MetricsMock{HandlerFunc: func() http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
		}}
		health := &mocks.HealthServiceMock{SummaryFunc: func(context.Context) (*domain.HealthSummary, error) {
			return nil, errors.New("locked")
		}}
		srv := testServer(t, Deps{Health: health, Metrics: m})
		w := serve(t, srv, "GET", "/metrics", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", w.Body.String())
		assert.Empty(t, m.SetHealthSummaryCalls())
	})
}
