package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteSettingRepo is a small key/value table. The persisted API key lives
// here.
type SQLiteSettingRepo struct {
	db *sql.DB
}

func NewSQLiteSettingRepo(db *sql.DB) *SQLiteSettingRepo {
	return &SQLiteSettingRepo{db: db}
}

// Get returns ErrNotFound when key has never been set or was deleted.
func (r *SQLiteSettingRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("reading setting: %w", err)
	}
	return value, nil
}

func (r *SQLiteSettingRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, nowUTC())
	if err != nil {
		return fmt.Errorf("writing setting: %w", err)
	}
	return nil
}

func (r *SQLiteSettingRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting setting: %w", err)
	}
	return nil
}
