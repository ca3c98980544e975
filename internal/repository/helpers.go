package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// isUniqueViolation matches the modernc.org/sqlite constraint message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// requireAffected maps a zero-row UPDATE or DELETE to ErrNotFound.
func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return nil
}

// nowUTC returns the current UTC time formatted as RFC3339Nano.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
