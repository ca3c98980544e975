package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/budeshi/budeshi/internal/domain"
)

// SQLiteTurnRepo persists conversation turns. Order within a conversation is
// a per-conversation sequence assigned on insert.
type SQLiteTurnRepo struct {
	db *sql.DB
}

func NewSQLiteTurnRepo(db *sql.DB) *SQLiteTurnRepo {
	return &SQLiteTurnRepo{db: db}
}

func (r *SQLiteTurnRepo) Append(ctx context.Context, conversationID string, t domain.Turn) error {
	if !t.Role.Valid() {
		return fmt.Errorf("appending turn: invalid role %q", t.Role)
	}
	query := `INSERT INTO conversation_turns (id, conversation_id, seq, role, content, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM conversation_turns WHERE conversation_id = ?), ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		conversationID,
		conversationID,
		string(t.Role),
		t.Content,
		t.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("appending turn: %w", err)
	}
	return nil
}

func (r *SQLiteTurnRepo) List(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM conversation_turns
		WHERE conversation_id = ? ORDER BY seq`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		var role, createdAt string
		if err := rows.Scan(&t.ID, &role, &t.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Role = domain.Role(role)
		if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parsing turn time %q: %w", createdAt, err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}
	return turns, nil
}

func (r *SQLiteTurnRepo) DeleteConversation(ctx context.Context, conversationID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM conversation_turns WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}
