package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/podpulse/pkg/domain"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/feed_store.go -pkg mocks -skip-ensure -fmt goimports . FeedStore
//go:generate moq -out mocks/health_service.go -pkg mocks -skip-ensure -fmt goimports . HealthService
//go:generate moq -out mocks/scanner.go -pkg mocks -skip-ensure -fmt goimports . Scanner
//go:generate moq -out mocks/trigger.go -pkg mocks -skip-ensure -fmt goimports . Trigger
//go:generate moq -out mocks/metrics.go -pkg mocks -skip-ensure -fmt goimports . Metrics

// Server represents HTTP server instance
type Server struct {
	config  ConfigProvider
	feeds   FeedStore
	health  HealthService
	scanner Scanner
	trigger Trigger
	metrics Metrics
	version string
	debug   bool
	now     func() time.Time

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle

	// lazy passes run in background, canceled and awaited when Run exits
	passCtx    context.Context
	stopPasses context.CancelFunc
	passes     sync.WaitGroup
}

// Deps lists the services the API works on. Metrics is optional, without it /metrics is not served.
type Deps struct {
	Feeds   FeedStore
	Health  HealthService
	Scanner Scanner
	Trigger Trigger
	Metrics Metrics
}

// FeedStore reads and adds tracked feeds
type FeedStore interface {
	ListFeeds(ctx context.Context) ([]domain.FeedRecord, error)
	CreateFeed(ctx context.Context, feed *domain.FeedRecord) error
}

// HealthService exposes feed health reports and operator actions
type HealthService interface {
	Detail(ctx context.Context, feedID int64) (*domain.HealthDetail, error)
	Summary(ctx context.Context) (*domain.HealthSummary, error)
	ReactivateFeed(ctx context.Context, feedID int64) (*domain.FeedRecord, error)
	ResetErrors(ctx context.Context, feedID int64) (*domain.FeedRecord, error)
}

// Scanner runs scan passes and on-demand checks
type Scanner interface {
	RunPass(ctx context.Context) (*domain.ScanRun, error)
	ForceCheck(ctx context.Context, feedID int64) (*domain.FeedOutcome, error)
}

// Trigger claims the lazy scan slot, true means the caller should run a pass
type Trigger interface {
	TryStart(ctx context.Context, now time.Time) (bool, error)
}

// Metrics is the prometheus collector served on /metrics
type Metrics interface {
	SetHealthSummary(sum *domain.HealthSummary)
	Handler() http.Handler
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration, throttle int)
}

// New initializes a new server instance
func New(cfg ConfigProvider, deps Deps, version string, debug bool) *Server {
	s := &Server{
		config:  cfg,
		feeds:   deps.Feeds,
		health:  deps.Health,
		scanner: deps.Scanner,
		trigger: deps.Trigger,
		metrics: deps.Metrics,
		version: version,
		debug:   debug,
		now:     time.Now,
		router:  routegroup.New(http.NewServeMux()),
	}
	s.passCtx, s.stopPasses = context.WithCancel(context.Background())

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout, _ := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	err := s.httpServer.ListenAndServe()
	s.stopPasses()
	s.passes.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	_, _, throttle := s.config.GetServerConfig()
	if throttle < 1 {
		throttle = 100
	}

	s.router.Use(rest.AppInfo("podpulse", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(int64(throttle)))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /health", s.healthSummaryHandler)
		r.HandleFunc("POST /scan", s.scanHandler)

		r.HandleFunc("GET /feeds", s.listFeedsHandler)
		r.HandleFunc("POST /feeds", s.addFeedHandler)
		r.HandleFunc("GET /feeds.opml", s.opmlHandler)
		r.HandleFunc("GET /feeds/{id}/health", s.feedHealthHandler)
		r.HandleFunc("POST /feeds/{id}/reactivate", s.reactivateHandler)
		r.HandleFunc("POST /feeds/{id}/reset-errors", s.resetErrorsHandler)
		r.HandleFunc("POST /feeds/{id}/check", s.checkHandler)
	})

	if s.metrics != nil {
		s.router.HandleFunc("GET /metrics", s.metricsHandler)
	}
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	RenderJSON(w, r, http.StatusOK, rest.JSON{
		"status":  "ok",
		"version": s.version,
		"time":    s.now().UTC(),
	})
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, rest.JSON{"error": errMsg})
}
