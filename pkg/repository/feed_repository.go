package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/umputun/podpulse/pkg/domain"
)

// FeedRepository is the registry of tracked feeds with their metadata, health and error history
type FeedRepository struct {
	db         *sqlx.DB
	extraHosts []string
	now        func() time.Time
}

// feedSQL represents a feed row
type feedSQL struct {
	ID                  int64      `db:"id"`
	FeedURL             string     `db:"feed_url"`
	Title               string     `db:"title"`
	Description         string     `db:"description"`
	Author              string     `db:"author"`
	CoverImageURL       string     `db:"cover_image_url"`
	FeedType            string     `db:"feed_type"`
	LatestEpisodeDate   *time.Time `db:"latest_episode_date"`
	EpisodeCount        int        `db:"episode_count"`
	HealthStatus        string     `db:"health_status"`
	LastCheckDate       *time.Time `db:"last_check_date"`
	LastSuccessDate     *time.Time `db:"last_success_date"`
	ConsecutiveFailures int        `db:"consecutive_failures"`
	TotalFailures       int        `db:"total_failures"`
	TotalChecks         int        `db:"total_checks"`
	SuccessRate         float64    `db:"success_rate"`
	AvgResponseTime     float64    `db:"avg_response_time"`
	LastError           string     `db:"last_error"`
	LastErrorCategory   string     `db:"last_error_category"`
	LastErrorDate       *time.Time `db:"last_error_date"`
	AutoDisabled        bool       `db:"auto_disabled"`
	AutoDisabledDate    *time.Time `db:"auto_disabled_date"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// feedErrorSQL represents a feed_errors row
type feedErrorSQL struct {
	ID         int64     `db:"id"`
	FeedID     int64     `db:"feed_id"`
	Category   string    `db:"category"`
	StatusCode int       `db:"status_code"`
	Message    string    `db:"message"`
	OccurredAt time.Time `db:"occurred_at"`
}

// NewFeedRepository creates a new feed repository. Feeds served from loopback hosts or
// from any of extraHosts are treated as self-hosted and never offered for scanning.
func NewFeedRepository(db *sqlx.DB, extraHosts ...string) *FeedRepository {
	hosts := make([]string, 0, len(extraHosts))
	for _, h := range extraHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	return &FeedRepository{db: db, extraHosts: hosts, now: time.Now}
}

// CreateFeed inserts a new feed, returns domain.ErrFeedExists for an already tracked url
func (r *FeedRepository) CreateFeed(ctx context.Context, feed *domain.FeedRecord) error {
	now := r.now().UTC()
	row := fromDomainFeed(feed)
	row.CreatedAt, row.UpdatedAt = now, now
	row.HealthStatus = string(domain.HealthHealthy)
	row.SuccessRate = 100

	query := `
		INSERT INTO feeds (feed_url, title, description, author, cover_image_url, feed_type,
			health_status, success_rate, created_at, updated_at)
		VALUES (:feed_url, :title, :description, :author, :cover_image_url, :feed_type,
			:health_status, :success_rate, :created_at, :updated_at)
	`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("create feed %s: %w", feed.FeedURL, domain.ErrFeedExists)
		}
		return fmt.Errorf("create feed: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get insert id: %w", err)
	}

	feed.ID = id
	feed.CreatedAt, feed.UpdatedAt = now, now
	feed.Health.Status = domain.HealthHealthy
	feed.Health.SuccessRate = 100
	return nil
}

// GetFeed retrieves a feed by ID
func (r *FeedRepository) GetFeed(ctx context.Context, id int64) (*domain.FeedRecord, error) {
	var row feedSQL
	err := r.db.GetContext(ctx, &row, "SELECT * FROM feeds WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrFeedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return row.toDomain(), nil
}

// ListFeeds retrieves all feeds ordered by id
func (r *FeedRepository) ListFeeds(ctx context.Context) ([]domain.FeedRecord, error) {
	var rows []feedSQL
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM feeds ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	res := make([]domain.FeedRecord, len(rows))
	for i := range rows {
		res[i] = *rows[i].toDomain()
	}
	return res, nil
}

// ListScanCandidates returns feeds eligible for a scan pass in id order. Self-hosted and
// auto-disabled feeds are excluded. Any failure wraps domain.ErrRegistryUnavailable.
func (r *FeedRepository) ListScanCandidates(ctx context.Context) ([]domain.FeedRecord, error) {
	var rows []feedSQL
	if err := r.db.SelectContext(ctx, &rows, "SELECT * FROM feeds WHERE auto_disabled = 0 ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list scan candidates: %w: %w", domain.ErrRegistryUnavailable, err)
	}
	res := make([]domain.FeedRecord, 0, len(rows))
	for i := range rows {
		if r.IsSelfHosted(rows[i].FeedURL) {
			continue
		}
		res = append(res, *rows[i].toDomain())
	}
	return res, nil
}

// DeleteFeed removes a feed with its error history
func (r *FeedRepository) DeleteFeed(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM feed_errors WHERE feed_id = ?", id); err != nil {
			return fmt.Errorf("delete feed errors: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM feeds WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete feed: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrFeedNotFound
		}
		return nil
	})
}

// ApplyMetadataUpdate stores fresh metadata only if latest episode date or episode count differ
// from the stored values. Display fields are refreshed together with such a write.
func (r *FeedRepository) ApplyMetadataUpdate(ctx context.Context, id int64, upd domain.MetadataUpdate) (changed bool, err error) {
	err = withRetry(ctx, func() error {
		changed = false
		return r.inTx(ctx, func(tx *sqlx.Tx) error {
			var cur struct {
				LatestEpisodeDate *time.Time `db:"latest_episode_date"`
				EpisodeCount      int        `db:"episode_count"`
			}
			err := tx.GetContext(ctx, &cur, "SELECT latest_episode_date, episode_count FROM feeds WHERE id = ?", id)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrFeedNotFound
			}
			if err != nil {
				return fmt.Errorf("read metadata: %w", err)
			}

			if sameTime(cur.LatestEpisodeDate, upd.LatestEpisodeDate) && cur.EpisodeCount == upd.EpisodeCount {
				return nil
			}

			query := `
				UPDATE feeds
				SET latest_episode_date = ?, episode_count = ?,
				    title = CASE WHEN ? != '' THEN ? ELSE title END,
				    description = CASE WHEN ? != '' THEN ? ELSE description END,
				    author = CASE WHEN ? != '' THEN ? ELSE author END,
				    cover_image_url = CASE WHEN ? != '' THEN ? ELSE cover_image_url END,
				    feed_type = CASE WHEN ? != '' THEN ? ELSE feed_type END,
				    updated_at = ?
				WHERE id = ?
			`
			_, err = tx.ExecContext(ctx, query, utcPtr(upd.LatestEpisodeDate), upd.EpisodeCount,
				upd.Title, upd.Title, upd.Description, upd.Description, upd.Author, upd.Author,
				upd.CoverImageURL, upd.CoverImageURL, string(upd.FeedType), string(upd.FeedType),
				r.now().UTC(), id)
			if err != nil {
				return fmt.Errorf("update metadata: %w", err)
			}
			changed = true
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("apply metadata update to feed %d: %w", id, err)
	}
	return changed, nil
}

// UpdateHealth reads the feed health, passes it to fn and stores the result, all in one
// immediate transaction so concurrent updates of the same feed are not lost.
func (r *FeedRepository) UpdateHealth(ctx context.Context, id int64, fn func(h *domain.FeedHealth) error) (*domain.FeedRecord, error) {
	var res *domain.FeedRecord
	err := withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx *sqlx.Tx) error {
			var row feedSQL
			err := tx.GetContext(ctx, &row, "SELECT * FROM feeds WHERE id = ?", id)
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrFeedNotFound
			}
			if err != nil {
				return fmt.Errorf("read health: %w", err)
			}

			rec := row.toDomain()
			if err := fn(&rec.Health); err != nil {
				return err
			}
			rec.UpdatedAt = r.now().UTC()

			h := fromDomainFeed(rec)
			h.UpdatedAt = rec.UpdatedAt
			query := `
				UPDATE feeds
				SET health_status = :health_status, last_check_date = :last_check_date,
				    last_success_date = :last_success_date, consecutive_failures = :consecutive_failures,
				    total_failures = :total_failures, total_checks = :total_checks,
				    success_rate = :success_rate, avg_response_time = :avg_response_time,
				    last_error = :last_error, last_error_category = :last_error_category,
				    last_error_date = :last_error_date, auto_disabled = :auto_disabled,
				    auto_disabled_date = :auto_disabled_date, updated_at = :updated_at
				WHERE id = :id
			`
			if _, err := tx.NamedExecContext(ctx, query, h); err != nil {
				return fmt.Errorf("write health: %w", err)
			}
			res = rec
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("update health of feed %d: %w", id, err)
	}
	return res, nil
}

// AppendError adds an entry to the feed error history and trims it to the keep newest entries
func (r *FeedRepository) AppendError(ctx context.Context, entry domain.ErrorEntry, keep int) error {
	return withRetry(ctx, func() error {
		return r.inTx(ctx, func(tx *sqlx.Tx) error {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO feed_errors (feed_id, category, status_code, message, occurred_at) VALUES (?, ?, ?, ?, ?)",
				entry.FeedID, string(entry.Category), entry.StatusCode, entry.Message, entry.OccurredAt.UTC())
			if err != nil {
				return fmt.Errorf("insert feed error: %w", err)
			}
			if keep <= 0 {
				return nil
			}
			_, err = tx.ExecContext(ctx, `
				DELETE FROM feed_errors WHERE feed_id = ? AND id NOT IN (
					SELECT id FROM feed_errors WHERE feed_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?
				)`, entry.FeedID, entry.FeedID, keep)
			if err != nil {
				return fmt.Errorf("trim feed errors: %w", err)
			}
			return nil
		})
	})
}

// RecentErrors returns up to limit newest error entries of the feed, limit <= 0 means all
func (r *FeedRepository) RecentErrors(ctx context.Context, feedID int64, limit int) ([]domain.ErrorEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []feedErrorSQL
	err := r.db.SelectContext(ctx, &rows,
		"SELECT * FROM feed_errors WHERE feed_id = ? ORDER BY occurred_at DESC, id DESC LIMIT ?", feedID, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent errors: %w", err)
	}
	res := make([]domain.ErrorEntry, len(rows))
	for i, row := range rows {
		res[i] = domain.ErrorEntry{FeedID: row.FeedID, Category: domain.ErrorCategory(row.Category),
			StatusCode: row.StatusCode, Message: row.Message, OccurredAt: row.OccurredAt.UTC()}
	}
	return res, nil
}

// IsSelfHosted reports whether feedURL points to a loopback host or one of configured self hosts
func (r *FeedRepository) IsSelfHosted(feedURL string) bool {
	if IsSelfHosted(feedURL) {
		return true
	}
	u, err := url.Parse(strings.TrimSpace(feedURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range r.extraHosts {
		if host == h {
			return true
		}
	}
	return false
}

// IsSelfHosted reports whether feedURL is served from localhost, 127.0.0.0/8 or ::1, any port
func IsSelfHosted(feedURL string) bool {
	u, err := url.Parse(strings.TrimSpace(feedURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// inTx runs fn in a transaction, committed when fn returns nil
func (r *FeedRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// toDomain converts feedSQL to domain.FeedRecord
func (f *feedSQL) toDomain() *domain.FeedRecord {
	return &domain.FeedRecord{
		ID:                f.ID,
		FeedURL:           f.FeedURL,
		Title:             f.Title,
		Description:       f.Description,
		Author:            f.Author,
		CoverImageURL:     f.CoverImageURL,
		FeedType:          domain.FeedType(f.FeedType),
		LatestEpisodeDate: utcPtr(f.LatestEpisodeDate),
		EpisodeCount:      f.EpisodeCount,
		Health: domain.FeedHealth{
			Status:              domain.HealthStatus(f.HealthStatus),
			LastCheckDate:       utcPtr(f.LastCheckDate),
			LastSuccessDate:     utcPtr(f.LastSuccessDate),
			ConsecutiveFailures: f.ConsecutiveFailures,
			TotalFailures:       f.TotalFailures,
			TotalChecks:         f.TotalChecks,
			SuccessRate:         f.SuccessRate,
			AvgResponseTime:     f.AvgResponseTime,
			LastError:           f.LastError,
			LastErrorCategory:   domain.ErrorCategory(f.LastErrorCategory),
			LastErrorDate:       utcPtr(f.LastErrorDate),
			AutoDisabled:        f.AutoDisabled,
			AutoDisabledDate:    utcPtr(f.AutoDisabledDate),
		},
		CreatedAt: f.CreatedAt.UTC(),
		UpdatedAt: f.UpdatedAt.UTC(),
	}
}

// fromDomainFeed converts domain.FeedRecord to feedSQL
func fromDomainFeed(rec *domain.FeedRecord) *feedSQL {
	h := rec.Health
	return &feedSQL{
		ID:                  rec.ID,
		FeedURL:             strings.TrimSpace(rec.FeedURL),
		Title:               rec.Title,
		Description:         rec.Description,
		Author:              rec.Author,
		CoverImageURL:       rec.CoverImageURL,
		FeedType:            string(rec.FeedType),
		LatestEpisodeDate:   utcPtr(rec.LatestEpisodeDate),
		EpisodeCount:        rec.EpisodeCount,
		HealthStatus:        string(h.Status),
		LastCheckDate:       utcPtr(h.LastCheckDate),
		LastSuccessDate:     utcPtr(h.LastSuccessDate),
		ConsecutiveFailures: h.ConsecutiveFailures,
		TotalFailures:       h.TotalFailures,
		TotalChecks:         h.TotalChecks,
		SuccessRate:         h.SuccessRate,
		AvgResponseTime:     h.AvgResponseTime,
		LastError:           h.LastError,
		LastErrorCategory:   string(h.LastErrorCategory),
		LastErrorDate:       utcPtr(h.LastErrorDate),
		AutoDisabled:        h.AutoDisabled,
		AutoDisabledDate:    utcPtr(h.AutoDisabledDate),
		CreatedAt:           rec.CreatedAt,
		UpdatedAt:           rec.UpdatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
