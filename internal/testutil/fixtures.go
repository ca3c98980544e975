package testutil

import (
	"context"
	"time"

	"github.com/budeshi/budeshi/internal/dataset"
	"github.com/budeshi/budeshi/internal/domain"
	"github.com/google/uuid"
)

// Project options
type ProjectOption func(*domain.Project)

func WithID(id string) ProjectOption {
	return func(p *domain.Project) { p.ID = id }
}

func WithStatus(s string) ProjectOption {
	return func(p *domain.Project) { p.Status = s }
}

func WithMoney(budget, spent int64) ProjectOption {
	return func(p *domain.Project) {
		p.Budget = budget
		p.Spent = spent
	}
}

func WithMinistry(m string) ProjectOption {
	return func(p *domain.Project) { p.Ministry = m }
}

func WithLocation(l string) ProjectOption {
	return func(p *domain.Project) { p.Location = l }
}

func WithContractor(c string) ProjectOption {
	return func(p *domain.Project) { p.Contractor = c }
}

func WithDescription(d string) ProjectOption {
	return func(p *domain.Project) { p.Description = d }
}

func WithDates(start, end time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.StartDate = start
		p.EndDate = end
	}
}

// NewTestProject returns a valid in-progress project with a fresh ID.
func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	p := &domain.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: name + " description",
		Status:      domain.StatusInProgress,
		Budget:      1_000_000,
		Spent:       250_000,
		Location:    "Lagos State",
		Ministry:    "Ministry of Works and Housing",
		Contractor:  "Test Contractor Ltd",
		StartDate:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SampleProjects returns the embedded seed dataset.
func SampleProjects() []domain.Project {
	return dataset.MustSeed()
}

// FailingStore satisfies the project read interface and fails every call.
type FailingStore struct {
	Err error
}

func (s FailingStore) All(context.Context) ([]domain.Project, error) { return nil, s.Err }

func (s FailingStore) FindByID(context.Context, string) (*domain.Project, error) {
	return nil, s.Err
}

func (s FailingStore) Search(context.Context, string) ([]domain.Project, error) {
	return nil, s.Err
}
