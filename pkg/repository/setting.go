package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SettingRepository handles setting-related database operations
type SettingRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db, now: time.Now}
}

// GetSetting retrieves a setting value, empty string for a missing key
func (r *SettingRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

// SetSetting stores a setting value
func (r *SettingRepository) SetSetting(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	err := withRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx, query, key, value, r.now().UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

// CompareAndSetSetting stores value only if the current value equals old, a missing key
// matches an empty old. Returns false if another writer changed the value first.
func (r *SettingRepository) CompareAndSetSetting(ctx context.Context, key, old, value string) (bool, error) {
	var res sql.Result
	err := withRetry(ctx, func() error {
		var err error
		if old == "" {
			res, err = r.db.ExecContext(ctx, `
				INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
				WHERE settings.value = ''`, key, value, r.now().UTC())
			return err
		}
		res, err = r.db.ExecContext(ctx, "UPDATE settings SET value = ?, updated_at = ? WHERE key = ? AND value = ?",
			value, r.now().UTC(), key, old)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("compare and set setting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}
