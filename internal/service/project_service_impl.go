package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/budeshi/budeshi/internal/analytics"
	"github.com/budeshi/budeshi/internal/contract"
	"github.com/budeshi/budeshi/internal/dataset"
	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/export"
	"github.com/budeshi/budeshi/internal/money"
	"github.com/budeshi/budeshi/internal/repository"
)

// ImportFormat is the document format accepted by Import.
type ImportFormat string

const (
	FormatCSV  ImportFormat = "csv"
	FormatYAML ImportFormat = "yaml"
)

// DetectImportFormat picks the format from a file extension.
func DetectImportFormat(path string) (ImportFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported import file %q (want .csv, .yaml or .yml)", filepath.Base(path))
}

// bulkImporter is implemented by stores that can import atomically.
type bulkImporter interface {
	Import(ctx context.Context, projects []domain.Project) error
}

type projectService struct {
	projects repository.ProjectRepo
	money    *money.Formatter
	observer UseCaseObserver
}

func NewProjectService(projects repository.ProjectRepo, f *money.Formatter, observers ...UseCaseObserver) ProjectService {
	if f == nil {
		f = money.Default()
	}
	return &projectService{
		projects: projects,
		money:    f,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) List(ctx context.Context, q ProjectQuery) ([]domain.Project, error) {
	all, err := s.projects.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return analytics.Filter(all, q.Search, q.Criteria), nil
}

func (s *projectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.FindByID(ctx, id)
}

func (s *projectService) Search(ctx context.Context, term string) ([]domain.Project, error) {
	return s.projects.Search(ctx, term)
}

func (s *projectService) Stats(ctx context.Context, q ProjectQuery) (*contract.Stats, error) {
	projects, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}
	stats := BuildStats(projects, s.money)
	return &stats, nil
}

func (s *projectService) Facets(ctx context.Context) (*contract.Facets, error) {
	all, err := s.projects.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading facets: %w", err)
	}
	return &contract.Facets{
		Statuses:   analytics.UniqueValues(all, analytics.FieldStatus),
		Ministries: analytics.UniqueValues(all, analytics.FieldMinistry),
	}, nil
}

func (s *projectService) ExportCSV(ctx context.Context, w io.Writer, q ProjectQuery) (n int, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"search": q.Search}
	defer track(ctx, s.observer, "export-csv", startedAt, fields, &err)

	var projects []domain.Project
	projects, err = s.List(ctx, q)
	if err != nil {
		return 0, err
	}
	if err = export.WriteProjectsCSV(w, projects); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}
	fields["count"] = len(projects)
	return len(projects), nil
}

// Import reads a CSV or YAML project document and adds every record. Stores
// with a bulk path import atomically; otherwise records are added one at a
// time and the count reflects what landed before a failure.
func (s *projectService) Import(ctx context.Context, r io.Reader, format ImportFormat) (n int, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"format": string(format)}
	defer track(ctx, s.observer, "import-projects", startedAt, fields, &err)

	var projects []domain.Project
	projects, err = decodeProjects(r, format)
	if err != nil {
		return 0, err
	}
	fields["records"] = len(projects)

	if bulk, ok := s.projects.(bulkImporter); ok {
		if err = bulk.Import(ctx, projects); err != nil {
			return 0, err
		}
		return len(projects), nil
	}
	for i := range projects {
		p := projects[i]
		if err = s.projects.Add(ctx, &p); err != nil {
			return i, fmt.Errorf("importing project %d: %w", i, err)
		}
	}
	return len(projects), nil
}

func decodeProjects(r io.Reader, format ImportFormat) ([]domain.Project, error) {
	switch format {
	case FormatCSV:
		return export.ParseProjectsCSV(r)
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading import: %w", err)
		}
		return dataset.Parse(data)
	}
	return nil, fmt.Errorf("unsupported import format %q", format)
}

func (s *projectService) Add(ctx context.Context, p *domain.Project) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"name": p.Name}
	defer track(ctx, s.observer, "add-project", startedAt, fields, &err)

	if p.Status == "" {
		p.Status = domain.StatusPlanning
	}
	if err = s.projects.Add(ctx, p); err != nil {
		return err
	}
	fields["id"] = p.ID
	return nil
}

func (s *projectService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer track(ctx, s.observer, "delete-project", startedAt, map[string]any{"id": id}, &err)

	return s.projects.Delete(ctx, id)
}

// BuildStats summarises projects in the API's stats shape.
func BuildStats(projects []domain.Project, f *money.Formatter) contract.Stats {
	b := analytics.ComputeBudgetStats(projects)

	dist := analytics.StatusDistribution(projects)
	facets := make([]contract.Facet, 0, len(dist))
	for _, d := range dist {
		facets = append(facets, contract.Facet{Name: d.Status, Value: d.Count})
	}

	points := analytics.BudgetComparison(projects)
	comparison := make([]contract.Comparison, 0, len(points))
	for _, pt := range points {
		comparison = append(comparison, contract.Comparison{Name: pt.Name, Budget: pt.Budget, Spent: pt.Spent})
	}

	return contract.Stats{
		TotalBudget:          b.TotalBudget,
		TotalSpent:           b.TotalSpent,
		RemainingBudget:      b.RemainingBudget,
		CompletionPercentage: b.CompletionPercentage,
		Formatted: contract.FormattedStats{
			TotalBudget:     f.Format(b.TotalBudget),
			TotalSpent:      f.Format(b.TotalSpent),
			RemainingBudget: f.Format(b.RemainingBudget),
		},
		StatusDistribution: facets,
		BudgetComparison:   comparison,
	}
}
