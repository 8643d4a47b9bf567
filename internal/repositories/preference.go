package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PrefLocale is the preference key of the UI locale.
const PrefLocale = "locale"

// PreferenceRepository stores string preferences in the preferences table.
type PreferenceRepository struct {
	db *sql.DB
}

// NewPreferenceRepository creates a new [PreferenceRepository] with the given database connection
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the value stored under key and whether it exists.
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query preference %s: %w", key, err)
	}
	return value, true, nil
}

// GetOr returns the stored value, or fallback when unset or unreadable.
func (r *PreferenceRepository) GetOr(ctx context.Context, key, fallback string) string {
	value, ok, err := r.Get(ctx, key)
	if err != nil || !ok {
		return fallback
	}
	return value
}

// Set stores value under key.
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("empty preference key")
	}

	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if err := upsert(ctx, r.db, query, key, value, now()); err != nil {
		return fmt.Errorf("failed to store preference %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (r *PreferenceRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}
