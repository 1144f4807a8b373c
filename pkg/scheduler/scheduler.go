package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/podpulse/pkg/domain"
)

//go:generate moq -out mocks/setting_store.go -pkg mocks -skip-ensure -fmt goimports . SettingStore
//go:generate moq -out mocks/runner.go -pkg mocks -skip-ensure -fmt goimports . Runner

// LastRunKey is the settings key of the durable last-run marker
const LastRunKey = "scan.last_run"

// SettingStore persists the last-run marker
type SettingStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	CompareAndSetSetting(ctx context.Context, key, old, value string) (bool, error)
}

// Runner runs a scan pass
type Runner interface {
	RunPass(ctx context.Context) (*domain.ScanRun, error)
}

// Scheduler decides whether a scan pass is due. The lazy and the cron triggers use
// separate instances with different intervals over the same marker.
type Scheduler struct {
	store    SettingStore
	name     string
	interval time.Duration
	now      func() time.Time
}

// NewScheduler makes a scheduler named for logging, with the minimal interval between passes
func NewScheduler(store SettingStore, name string, interval time.Duration) *Scheduler {
	return &Scheduler{store: store, name: name, interval: interval, now: time.Now}
}

// Interval returns the minimal interval between passes
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// ShouldRun reports whether a pass is due at now. A missing last run is always due.
// A last run in the future is clock skew and counts as due only if the skew exceeds the interval.
func (s *Scheduler) ShouldRun(lastRunAt *time.Time, now time.Time) bool {
	if lastRunAt == nil {
		return true
	}
	elapsed := now.Sub(*lastRunAt)
	if elapsed < 0 {
		return -elapsed > s.interval
	}
	return elapsed >= s.interval
}

// LastRun returns the start time of the last pass, nil if no pass was recorded
func (s *Scheduler) LastRun(ctx context.Context) (*time.Time, error) {
	raw, err := s.store.GetSetting(ctx, LastRunKey)
	if err != nil {
		return nil, fmt.Errorf("get last run: %w", err)
	}
	return s.parseMarker(raw), nil
}

// MarkRunStarted records now as the last run start unconditionally
func (s *Scheduler) MarkRunStarted(ctx context.Context, now time.Time) error {
	if err := s.store.SetSetting(ctx, LastRunKey, formatMarker(now)); err != nil {
		return fmt.Errorf("mark run started: %w", err)
	}
	return nil
}

// TryStart checks the marker and moves it to now if a pass is due. The marker is swapped
// with compare-and-set, so of two concurrent triggers only one gets true.
func (s *Scheduler) TryStart(ctx context.Context, now time.Time) (bool, error) {
	raw, err := s.store.GetSetting(ctx, LastRunKey)
	if err != nil {
		return false, fmt.Errorf("get last run: %w", err)
	}
	if !s.ShouldRun(s.parseMarker(raw), now) {
		return false, nil
	}
	ok, err := s.store.CompareAndSetSetting(ctx, LastRunKey, raw, formatMarker(now))
	if err != nil {
		return false, fmt.Errorf("swap last run: %w", err)
	}
	if !ok {
		lgr.Printf("[DEBUG] %s scan trigger lost the race for the run marker", s.name)
	}
	return ok, nil
}

// RunIfDue starts a pass with runner if it is due. Returns nil run and false if not due.
func (s *Scheduler) RunIfDue(ctx context.Context, runner Runner) (*domain.ScanRun, bool, error) {
	started, err := s.TryStart(ctx, s.now())
	if err != nil {
		return nil, false, err
	}
	if !started {
		return nil, false, nil
	}
	lgr.Printf("[INFO] %s scan trigger started a pass", s.name)
	run, err := runner.RunPass(ctx)
	return run, true, err
}

// Loop checks the schedule on start and then every tick until ctx is done
func (s *Scheduler) Loop(ctx context.Context, runner Runner, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	lgr.Printf("[INFO] %s scan loop started, interval %v, check every %v", s.name, s.interval, tick)
	s.runOnce(ctx, runner)
	for {
		select {
		case <-ctx.Done():
			lgr.Printf("[INFO] %s scan loop stopped", s.name)
			return
		case <-ticker.C:
			s.runOnce(ctx, runner)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, runner Runner) {
	if _, _, err := s.RunIfDue(ctx, runner); err != nil {
		lgr.Printf("[ERROR] %s scan failed: %v", s.name, err)
	}
}

func (s *Scheduler) parseMarker(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		lgr.Printf("[WARN] %s scan marker %q is not a timestamp, treated as never run", s.name, raw)
		return nil
	}
	return &ts
}

func formatMarker(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
