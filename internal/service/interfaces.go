package service

import (
	"context"
	"io"

	"github.com/budeshi/budeshi/internal/analytics"
	"github.com/budeshi/budeshi/internal/contract"
	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/intelligence"
)

// ProjectQuery narrows a listing. Search is a free-text term; the embedded
// criteria filter on status, ministry and budget range.
type ProjectQuery struct {
	Search string
	analytics.Criteria
}

type ProjectService interface {
	List(ctx context.Context, q ProjectQuery) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Search(ctx context.Context, term string) ([]domain.Project, error)
	Stats(ctx context.Context, q ProjectQuery) (*contract.Stats, error)
	Facets(ctx context.Context) (*contract.Facets, error)
	ExportCSV(ctx context.Context, w io.Writer, q ProjectQuery) (int, error)
	Import(ctx context.Context, r io.Reader, format ImportFormat) (int, error)
	Add(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
}

// Responder turns one user message into a reply. *intelligence.Orchestrator
// implements it.
type Responder interface {
	Respond(ctx context.Context, content string, history []domain.Turn) (*intelligence.Reply, error)
}
