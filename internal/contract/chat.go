package contract

import (
	"fmt"
	"time"

	"github.com/budeshi/budeshi/internal/domain"
)

// Turn is the wire form of a conversation turn.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role" binding:"required,oneof=user bot system"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatRequest carries a new user message plus the prior conversation.
type ChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
	History []Turn `json:"history" binding:"omitempty,max=200,dive"`
}

// ChatResponse returns the turns the caller should append, in order.
type ChatResponse struct {
	UserTurn Turn   `json:"userTurn"`
	Reply    Turn   `json:"reply"`
	Path     string `json:"path"`
	Intent   string `json:"intent,omitempty"`
	Error    string `json:"error,omitempty"`
}

func FromTurn(t domain.Turn) Turn {
	return Turn{ID: t.ID, Role: string(t.Role), Content: t.Content, CreatedAt: t.CreatedAt}
}

func (t Turn) ToTurn() (domain.Turn, error) {
	role := domain.Role(t.Role)
	if !role.Valid() {
		return domain.Turn{}, fmt.Errorf("invalid role %q", t.Role)
	}
	return domain.Turn{ID: t.ID, Role: role, Content: t.Content, CreatedAt: t.CreatedAt}, nil
}

// ToTurns converts wire history to domain turns, preserving order.
func ToTurns(in []Turn) ([]domain.Turn, error) {
	out := make([]domain.Turn, 0, len(in))
	for _, t := range in {
		dt, err := t.ToTurn()
		if err != nil {
			return nil, err
		}
		out = append(out, dt)
	}
	return out, nil
}
