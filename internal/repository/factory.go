package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/budeshi/budeshi/internal/domain"
)

// Backend selects the ProjectRepo implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendSQLite Backend = "sqlite"
	BackendRemote Backend = "remote"
)

// StoreOptions configures NewProjectRepo. DB is required for BackendSQLite,
// RemoteURL for BackendRemote. Seed is loaded into memory, or into SQLite
// when its projects table is empty.
type StoreOptions struct {
	Backend   Backend
	DB        *sql.DB
	RemoteURL string
	Seed      []domain.Project
}

// NewProjectRepo builds the configured backend.
func NewProjectRepo(ctx context.Context, opts StoreOptions) (ProjectRepo, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryProjectRepo(opts.Seed)
	case BackendSQLite:
		if opts.DB == nil {
			return nil, errors.New("sqlite backend requires a database")
		}
		repo := NewSQLiteProjectRepo(opts.DB)
		if _, err := repo.SeedIfEmpty(ctx, opts.Seed); err != nil {
			return nil, err
		}
		return repo, nil
	case BackendRemote:
		if opts.RemoteURL == "" {
			return nil, errors.New("remote backend requires a url")
		}
		return NewRemoteProjectStore(opts.RemoteURL, nil), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
