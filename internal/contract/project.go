// Package contract defines the JSON shapes exchanged over the budeshi HTTP
// API. The server produces them and the remote project store consumes them.
package contract

import (
	"fmt"

	"github.com/budeshi/budeshi/internal/domain"
)

// Project is the wire form of domain.Project. Dates travel as YYYY-MM-DD.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Budget      int64  `json:"budget"`
	Spent       int64  `json:"spent"`
	Location    string `json:"location"`
	Ministry    string `json:"ministry"`
	Contractor  string `json:"contractor"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// ProjectList wraps a project collection response.
type ProjectList struct {
	Projects []Project `json:"projects"`
	Count    int       `json:"count"`
}

func FromProject(p domain.Project) Project {
	return Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Budget:      p.Budget,
		Spent:       p.Spent,
		Location:    p.Location,
		Ministry:    p.Ministry,
		Contractor:  p.Contractor,
		StartDate:   p.StartDateString(),
		EndDate:     p.EndDateString(),
	}
}

func FromProjects(projects []domain.Project) ProjectList {
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, FromProject(p))
	}
	return ProjectList{Projects: out, Count: len(out)}
}

// ToProject converts the wire form back to a domain record.
func (p Project) ToProject() (domain.Project, error) {
	start, err := domain.ParseDate(p.StartDate)
	if err != nil {
		return domain.Project{}, fmt.Errorf("project %q start date: %w", p.ID, err)
	}
	end, err := domain.ParseDate(p.EndDate)
	if err != nil {
		return domain.Project{}, fmt.Errorf("project %q end date: %w", p.ID, err)
	}
	return domain.Project{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Budget:      p.Budget,
		Spent:       p.Spent,
		Location:    p.Location,
		Ministry:    p.Ministry,
		Contractor:  p.Contractor,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// ToProjects converts a list response to domain records, preserving order.
func (l ProjectList) ToProjects() ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(l.Projects))
	for _, p := range l.Projects {
		dp, err := p.ToProject()
		if err != nil {
			return nil, err
		}
		out = append(out, dp)
	}
	return out, nil
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error string `json:"error"`
}
