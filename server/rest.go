package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/rest"

	"github.com/umputun/podpulse/pkg/domain"
	"github.com/umputun/podpulse/pkg/feed"
)

// feedResponse is a tracked feed with its health state
type feedResponse struct {
	ID                int64               `json:"id"`
	FeedURL           string              `json:"feed_url"`
	Title             string              `json:"title"`
	Author            string              `json:"author,omitempty"`
	CoverImageURL     string              `json:"cover_image_url,omitempty"`
	FeedType          domain.FeedType     `json:"feed_type,omitempty"`
	LatestEpisodeDate *time.Time          `json:"latest_episode_date,omitempty"`
	EpisodeCount      int                 `json:"episode_count"`
	Status            domain.HealthStatus `json:"status"`
	Health            healthResponse      `json:"health"`
}

type healthResponse struct {
	LastCheckDate       *time.Time           `json:"last_check_date,omitempty"`
	LastSuccessDate     *time.Time           `json:"last_success_date,omitempty"`
	ConsecutiveFailures int                  `json:"consecutive_failures"`
	TotalFailures       int                  `json:"total_failures"`
	TotalChecks         int                  `json:"total_checks"`
	SuccessRate         float64              `json:"success_rate"`
	AvgResponseTime     float64              `json:"avg_response_time"`
	LastError           string               `json:"last_error,omitempty"`
	LastErrorCategory   domain.ErrorCategory `json:"last_error_category,omitempty"`
	LastErrorDate       *time.Time           `json:"last_error_date,omitempty"`
	AutoDisabled        bool                 `json:"auto_disabled"`
	AutoDisabledDate    *time.Time           `json:"auto_disabled_date,omitempty"`
}

type errorEntryResponse struct {
	Category   domain.ErrorCategory `json:"category"`
	StatusCode int                  `json:"status_code,omitempty"`
	Message    string               `json:"message"`
	OccurredAt time.Time            `json:"occurred_at"`
}

type summaryResponse struct {
	TotalFeeds      int                         `json:"total_feeds"`
	ByStatus        map[domain.HealthStatus]int `json:"by_status"`
	AutoDisabled    int                         `json:"auto_disabled"`
	AvgSuccessRate  float64                     `json:"avg_success_rate"`
	AvgResponseTime float64                     `json:"avg_response_time"`
	FeedsWithErrors int                         `json:"feeds_with_errors"`
	NeverChecked    int                         `json:"never_checked"`
}

type checkResponse struct {
	OK           bool                 `json:"ok"`
	FeedID       int64                `json:"feed_id"`
	Status       domain.OutcomeStatus `json:"status"`
	HealthStatus domain.HealthStatus  `json:"health_status,omitempty"`
	ResponseTime float64              `json:"response_time"`
	Category     domain.ErrorCategory `json:"category,omitempty"`
	StatusCode   int                  `json:"status_code,omitempty"`
	Error        string               `json:"error,omitempty"`
}

type scanResponse struct {
	Started   bool       `json:"started"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

type addFeedRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// healthSummaryHandler returns aggregate health counts over all feeds
func (s *Server) healthSummaryHandler(w http.ResponseWriter, r *http.Request) {
	sum, err := s.health.Summary(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to get health summary: %v", err)
		RenderError(w, r, errors.New("failed to get health summary"), http.StatusInternalServerError)
		return
	}
	RenderJSON(w, r, http.StatusOK, summaryResponse{
		TotalFeeds:      sum.TotalFeeds,
		ByStatus:        sum.ByStatus,
		AutoDisabled:    sum.AutoDisabled,
		AvgSuccessRate:  sum.AvgSuccessRate,
		AvgResponseTime: sum.AvgResponseTime,
		FeedsWithErrors: sum.FeedsWithErrors,
		NeverChecked:    sum.NeverCheckedFeeds,
	})
}

// listFeedsHandler returns all tracked feeds, auto-disabled included
func (s *Server) listFeedsHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.ListFeeds(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to list feeds: %v", err)
		RenderError(w, r, errors.New("failed to list feeds"), http.StatusInternalServerError)
		return
	}
	resp := make([]feedResponse, 0, len(feeds))
	for i := range feeds {
		resp = append(resp, toFeedResponse(&feeds[i]))
	}
	RenderJSON(w, r, http.StatusOK, resp)
}

// addFeedHandler registers a new feed url
func (s *Server) addFeedHandler(w http.ResponseWriter, r *http.Request) {
	var req addFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RenderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if err := feed.ValidateURL(req.URL); err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	rec := &domain.FeedRecord{FeedURL: req.URL, Title: strings.TrimSpace(req.Title)}
	if err := s.feeds.CreateFeed(r.Context(), rec); err != nil {
		if errors.Is(err, domain.ErrFeedExists) {
			RenderError(w, r, domain.ErrFeedExists, http.StatusConflict)
			return
		}
		log.Printf("[ERROR] failed to add feed %s: %v", req.URL, err)
		RenderError(w, r, errors.New("failed to add feed"), http.StatusInternalServerError)
		return
	}
	log.Printf("[INFO] added feed %d: %s", rec.ID, rec.FeedURL)
	RenderJSON(w, r, http.StatusCreated, toFeedResponse(rec))
}

// opmlHandler exports tracked feeds as OPML
func (s *Server) opmlHandler(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.feeds.ListFeeds(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to list feeds: %v", err)
		RenderError(w, r, errors.New("failed to list feeds"), http.StatusInternalServerError)
		return
	}
	doc, err := feed.NewOPMLGenerator("").Generate(feeds)
	if err != nil {
		log.Printf("[ERROR] failed to generate opml: %v", err)
		RenderError(w, r, errors.New("failed to generate opml"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/x-opml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="podpulse.opml"`)
	_, _ = w.Write([]byte(doc))
}

// feedHealthHandler returns health state and recent errors of a feed
func (s *Server) feedHealthHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := feedID(w, r)
	if !ok {
		return
	}
	detail, err := s.health.Detail(r.Context(), id)
	if err != nil {
		s.renderFeedError(w, r, id, "get health of", err)
		return
	}
	errs := make([]errorEntryResponse, 0, len(detail.RecentErrors))
	for _, e := range detail.RecentErrors {
		errs = append(errs, errorEntryResponse{Category: e.Category, StatusCode: e.StatusCode,
			Message: e.Message, OccurredAt: e.OccurredAt})
	}
	RenderJSON(w, r, http.StatusOK, rest.JSON{"feed": toFeedResponse(&detail.Feed), "recent_errors": errs})
}

// reactivateHandler clears auto-disable, failure counters are kept
func (s *Server) reactivateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := feedID(w, r)
	if !ok {
		return
	}
	rec, err := s.health.ReactivateFeed(r.Context(), id)
	if err != nil {
		s.renderFeedError(w, r, id, "reactivate", err)
		return
	}
	RenderJSON(w, r, http.StatusOK, toFeedResponse(rec))
}

// resetErrorsHandler zeroes failure counters, the last error and auto-disable state are kept
func (s *Server) resetErrorsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := feedID(w, r)
	if !ok {
		return
	}
	rec, err := s.health.ResetErrors(r.Context(), id)
	if err != nil {
		s.renderFeedError(w, r, id, "reset errors of", err)
		return
	}
	RenderJSON(w, r, http.StatusOK, toFeedResponse(rec))
}

// checkHandler runs an on-demand check of a single feed, auto-disabled feeds included.
// A failed check is still a 200 with ok=false and the typed error.
func (s *Server) checkHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := feedID(w, r)
	if !ok {
		return
	}
	out, err := s.scanner.ForceCheck(r.Context(), id)
	if out == nil {
		if err == nil {
			err = errors.New("no check outcome")
		}
		s.renderFeedError(w, r, id, "check", err)
		return
	}

	resp := checkResponse{
		OK:           err == nil,
		FeedID:       id,
		Status:       out.Status,
		HealthStatus: out.HealthStatus,
		ResponseTime: out.ResponseTime.Seconds(),
	}
	if err != nil {
		resp.Category = domain.CategoryOf(err)
		resp.StatusCode = domain.StatusCodeOf(err)
		resp.Error = err.Error()
	}
	RenderJSON(w, r, http.StatusOK, resp)
}

// scanHandler is the lazy trigger: starts a pass in background when the lazy interval elapsed
// since the last one and replies 202 right away. The run summary goes to the log and metrics.
func (s *Server) scanHandler(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	started, err := s.trigger.TryStart(r.Context(), now)
	if err != nil {
		log.Printf("[ERROR] failed to claim scan slot: %v", err)
		RenderError(w, r, errors.New("failed to start scan"), http.StatusInternalServerError)
		return
	}
	if !started {
		RenderJSON(w, r, http.StatusOK, scanResponse{Started: false})
		return
	}

	s.passes.Add(1)
	go func() {
		defer s.passes.Done()
		if _, err := s.scanner.RunPass(s.passCtx); err != nil {
			log.Printf("[ERROR] lazy scan failed: %v", err)
		}
	}()
	startedAt := now.UTC()
	RenderJSON(w, r, http.StatusAccepted, scanResponse{Started: true, StartedAt: &startedAt})
}

// metricsHandler refreshes the per-status gauge and serves prometheus metrics
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	if sum, err := s.health.Summary(r.Context()); err != nil {
		log.Printf("[WARN] failed to refresh health gauge: %v", err)
	} else {
		s.metrics.SetHealthSummary(sum)
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

// renderFeedError maps feed lookups to 404 and everything else to 500
func (s *Server) renderFeedError(w http.ResponseWriter, r *http.Request, id int64, action string, err error) {
	if errors.Is(err, domain.ErrFeedNotFound) {
		RenderError(w, r, fmt.Errorf("feed %d not found", id), http.StatusNotFound)
		return
	}
	log.Printf("[ERROR] failed to %s feed %d: %v", action, id, err)
	RenderError(w, r, fmt.Errorf("failed to %s feed %d", action, id), http.StatusInternalServerError)
}

// feedID extracts {id} from the path, renders 400 when it is not a positive integer
func feedID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		RenderError(w, r, fmt.Errorf("invalid feed id %q", r.PathValue("id")), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func toFeedResponse(rec *domain.FeedRecord) feedResponse {
	h := rec.Health
	return feedResponse{
		ID:                rec.ID,
		FeedURL:           rec.FeedURL,
		Title:             rec.Title,
		Author:            rec.Author,
		CoverImageURL:     rec.CoverImageURL,
		FeedType:          rec.FeedType,
		LatestEpisodeDate: rec.LatestEpisodeDate,
		EpisodeCount:      rec.EpisodeCount,
		Status:            h.Status,
		Health: healthResponse{
			LastCheckDate:       h.LastCheckDate,
			LastSuccessDate:     h.LastSuccessDate,
			ConsecutiveFailures: h.ConsecutiveFailures,
			TotalFailures:       h.TotalFailures,
			TotalChecks:         h.TotalChecks,
			SuccessRate:         h.SuccessRate,
			AvgResponseTime:     h.AvgResponseTime,
			LastError:           h.LastError,
			LastErrorCategory:   h.LastErrorCategory,
			LastErrorDate:       h.LastErrorDate,
			AutoDisabled:        h.AutoDisabled,
			AutoDisabledDate:    h.AutoDisabledDate,
		},
	}
}
