package repository

import (
	"context"
	"errors"

	"github.com/budeshi/budeshi/internal/domain"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrDuplicateID = errors.New("duplicate project id")
	ErrReadOnly    = errors.New("store is read-only")
)

// ProjectStore is the read side the resolution engine depends on.
// Implementations must not mutate state on read.
type ProjectStore interface {
	All(ctx context.Context) ([]domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	Search(ctx context.Context, term string) ([]domain.Project, error)
}

// ProjectWriter mutates the project collection. IDs stay unique.
type ProjectWriter interface {
	Add(ctx context.Context, p *domain.Project) error
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

type ProjectRepo interface {
	ProjectStore
	ProjectWriter
}

// TurnRepo persists conversation turns under a conversation ID.
type TurnRepo interface {
	Append(ctx context.Context, conversationID string, t domain.Turn) error
	List(ctx context.Context, conversationID string) ([]domain.Turn, error)
	DeleteConversation(ctx context.Context, conversationID string) error
}

type SettingRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
