// Package analytics derives portfolio statistics and filter facets from a
// project collection. Every function is pure and preserves input order.
package analytics

import (
	"sort"
	"strings"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/money"
)

// Field names a textual project field that facets can be built from.
type Field string

const (
	FieldStatus     Field = "status"
	FieldMinistry   Field = "ministry"
	FieldLocation   Field = "location"
	FieldContractor Field = "contractor"
)

func (f Field) value(p *domain.Project) string {
	switch f {
	case FieldStatus:
		return p.Status
	case FieldMinistry:
		return p.Ministry
	case FieldLocation:
		return p.Location
	case FieldContractor:
		return p.Contractor
	}
	return ""
}

// UniqueValues returns the distinct non-empty values of field, sorted.
func UniqueValues(projects []domain.Project, field Field) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range projects {
		v := field.value(&projects[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// BudgetStats summarises spend against allocation.
type BudgetStats struct {
	TotalBudget          int64
	TotalSpent           int64
	RemainingBudget      int64
	CompletionPercentage float64
}

// ComputeBudgetStats sums budgets and spend. RemainingBudget may be negative;
// CompletionPercentage is clamped to [0, 100] and is 0 for a zero budget.
func ComputeBudgetStats(projects []domain.Project) BudgetStats {
	var s BudgetStats
	for _, p := range projects {
		s.TotalBudget += p.Budget
		s.TotalSpent += p.Spent
	}
	s.RemainingBudget = s.TotalBudget - s.TotalSpent
	if s.TotalBudget > 0 {
		s.CompletionPercentage = min(max(float64(s.TotalSpent)/float64(s.TotalBudget)*100, 0), 100)
	}
	return s
}

// Criteria narrows Filter. Zero values match everything.
type Criteria struct {
	Status    string
	Ministry  string
	MinBudget *int64
	MaxBudget *int64
}

// Filter returns the projects matching searchTerm and every set criterion.
// searchTerm is a case-insensitive substring over name, description,
// contractor and location. Status and ministry compare case-insensitively.
func Filter(projects []domain.Project, searchTerm string, c Criteria) []domain.Project {
	needle := strings.ToLower(strings.TrimSpace(searchTerm))
	status := strings.TrimSpace(c.Status)
	ministry := strings.TrimSpace(c.Ministry)

	out := []domain.Project{}
	for _, p := range projects {
		if needle != "" && !containsAny(needle, p.Name, p.Description, p.Contractor, p.Location) {
			continue
		}
		if status != "" && !strings.EqualFold(p.Status, status) {
			continue
		}
		if ministry != "" && !strings.EqualFold(p.Ministry, ministry) {
			continue
		}
		if c.MinBudget != nil && p.Budget < *c.MinBudget {
			continue
		}
		if c.MaxBudget != nil && p.Budget > *c.MaxBudget {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// StatusCount is one slice of the status distribution.
type StatusCount struct {
	Status string
	Count  int
}

// StatusDistribution counts projects per status in order of first appearance.
func StatusDistribution(projects []domain.Project) []StatusCount {
	idx := make(map[string]int)
	out := []StatusCount{}
	for _, p := range projects {
		i, ok := idx[p.Status]
		if !ok {
			i = len(out)
			idx[p.Status] = i
			out = append(out, StatusCount{Status: p.Status})
		}
		out[i].Count++
	}
	return out
}

// CountStatus returns how many projects carry exactly status.
func CountStatus(projects []domain.Project, status string) int {
	n := 0
	for _, p := range projects {
		if p.Status == status {
			n++
		}
	}
	return n
}

const comparisonNameLimit = 20

// BudgetPoint is a per-project budget/spent pair in billions.
type BudgetPoint struct {
	Name   string
	Budget float64
	Spent  float64
}

// BudgetComparison projects each record to billions for chart-style output.
// Names longer than 20 characters are cut and suffixed with "...".
func BudgetComparison(projects []domain.Project) []BudgetPoint {
	out := make([]BudgetPoint, 0, len(projects))
	for _, p := range projects {
		out = append(out, BudgetPoint{
			Name:   truncate(p.Name, comparisonNameLimit),
			Budget: money.Billions(p.Budget),
			Spent:  money.Billions(p.Spent),
		})
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
