package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/google/uuid"
)

// MemoryProjectRepo keeps projects in a slice guarded by a RWMutex.
// Callers always receive copies.
type MemoryProjectRepo struct {
	mu       sync.RWMutex
	projects []domain.Project
}

// NewMemoryProjectRepo seeds the repo with projects. Duplicate IDs in the seed
// are rejected.
func NewMemoryProjectRepo(seed []domain.Project) (*MemoryProjectRepo, error) {
	r := &MemoryProjectRepo{}
	for i := range seed {
		p := seed[i]
		if err := r.Add(context.Background(), &p); err != nil {
			return nil, fmt.Errorf("seeding project %q: %w", seed[i].ID, err)
		}
	}
	return r, nil
}

func (r *MemoryProjectRepo) All(_ context.Context) ([]domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Project(nil), r.projects...), nil
}

func (r *MemoryProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		p := r.projects[i]
		return &p, nil
	}
	return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
}

func (r *MemoryProjectRepo) Search(ctx context.Context, term string) ([]domain.Project, error) {
	all, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	return rankSearch(all, term), nil
}

// Add appends p. An empty ID is filled with a fresh UUID.
func (r *MemoryProjectRepo) Add(_ context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(p.ID) >= 0 {
		return fmt.Errorf("project %q: %w", p.ID, ErrDuplicateID)
	}
	r.projects = append(r.projects, *p)
	return nil
}

func (r *MemoryProjectRepo) Update(_ context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(p.ID)
	if i < 0 {
		return fmt.Errorf("project %q: %w", p.ID, ErrNotFound)
	}
	r.projects[i] = *p
	return nil
}

func (r *MemoryProjectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	r.projects = append(r.projects[:i], r.projects[i+1:]...)
	return nil
}

// indexOf must be called with mu held.
func (r *MemoryProjectRepo) indexOf(id string) int {
	for i := range r.projects {
		if r.projects[i].ID == id {
			return i
		}
	}
	return -1
}
