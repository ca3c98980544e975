// Package dataset holds the embedded seed projects and the YAML document
// format used to load project collections from disk.
package dataset

import (
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/budeshi/budeshi/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed projects.yaml
var seedYAML []byte

// Document is the on-disk shape of a project collection.
type Document struct {
	Projects []ProjectEntry `yaml:"projects"`
}

// ProjectEntry is a single project as written in YAML.
type ProjectEntry struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Status      string `yaml:"status"`
	Budget      int64  `yaml:"budget"`
	Spent       int64  `yaml:"spent"`
	Location    string `yaml:"location"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`
	Ministry    string `yaml:"ministry"`
	Contractor  string `yaml:"contractor"`
}

// Seed returns the embedded sample projects in file order.
func Seed() ([]domain.Project, error) {
	return Parse(seedYAML)
}

// MustSeed is Seed for callers that treat a broken embedded file as a bug.
func MustSeed() []domain.Project {
	projects, err := Seed()
	if err != nil {
		panic(err)
	}
	return projects
}

// Load reads a YAML project collection from path.
func Load(path string) ([]domain.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML project collection. Duplicate IDs are
// rejected.
func Parse(data []byte) ([]domain.Project, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}

	seen := make(map[string]bool, len(doc.Projects))
	projects := make([]domain.Project, 0, len(doc.Projects))
	for i, e := range doc.Projects {
		p, err := e.toDomain()
		if err != nil {
			return nil, fmt.Errorf("project %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("project %d: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
		projects = append(projects, p)
	}
	return projects, nil
}

func (e ProjectEntry) toDomain() (domain.Project, error) {
	start, err := domain.ParseDate(e.StartDate)
	if err != nil {
		return domain.Project{}, err
	}
	end, err := domain.ParseDate(e.EndDate)
	if err != nil {
		return domain.Project{}, err
	}
	p := domain.Project{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Status:      e.Status,
		Budget:      e.Budget,
		Spent:       e.Spent,
		Location:    e.Location,
		Ministry:    e.Ministry,
		Contractor:  e.Contractor,
		StartDate:   start,
		EndDate:     end,
	}
	if err := p.Validate(); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}
