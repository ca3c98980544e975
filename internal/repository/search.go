package repository

import (
	"strings"

	"github.com/budeshi/budeshi/internal/domain"
)

// rankSearch orders matches for term: an exact (case-insensitive) ID match
// first, then every other record with a substring hit, in input order.
// An empty term returns all records.
func rankSearch(projects []domain.Project, term string) []domain.Project {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return append([]domain.Project(nil), projects...)
	}

	var exact, rest []domain.Project
	for _, p := range projects {
		switch {
		case strings.ToLower(p.ID) == needle:
			exact = append(exact, p)
		case matchesTerm(p, needle):
			rest = append(rest, p)
		}
	}
	return append(exact, rest...)
}

// matchesTerm expects needle already lower-cased.
func matchesTerm(p domain.Project, needle string) bool {
	for _, field := range []string{p.ID, p.Name, p.Description, p.Contractor, p.Location} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
