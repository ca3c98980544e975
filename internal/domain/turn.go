package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
	RoleSystem Role = "system"
)

// Valid reports whether r is one of the three conversation roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleBot, RoleSystem:
		return true
	}
	return false
}

// Turn is one message in a conversation. Turns are append-only.
type Turn struct {
	ID        string
	Content   string
	Role      Role
	CreatedAt time.Time
}

// NewTurn creates a turn with a fresh ID stamped with the current UTC time.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        uuid.New().String(),
		Content:   content,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
}
