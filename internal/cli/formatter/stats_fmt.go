package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/budeshi/budeshi/internal/contract"
)

// FormatStats renders the portfolio summary, status distribution and the
// per-project budget comparison (in billions).
func FormatStats(s *contract.Stats) string {
	var b strings.Builder

	b.WriteString(Header("Portfolio") + "\n")
	b.WriteString(RenderTable(
		[]string{"TOTAL BUDGET", "TOTAL SPENT", "REMAINING", "SPENT %"},
		[][]string{{
			s.Formatted.TotalBudget,
			s.Formatted.TotalSpent,
			s.Formatted.RemainingBudget,
			fmt.Sprintf("%.1f%%", s.CompletionPercentage),
		}},
		0, 1, 2, 3,
	))

	if len(s.StatusDistribution) > 0 {
		b.WriteString("\n" + Header("By status") + "\n")
		rows := make([][]string, 0, len(s.StatusDistribution))
		for _, f := range s.StatusDistribution {
			rows = append(rows, []string{StatusPill(f.Name), strconv.Itoa(f.Value)})
		}
		b.WriteString(RenderTable([]string{"STATUS", "PROJECTS"}, rows, 1))
	}

	if len(s.BudgetComparison) > 0 {
		b.WriteString("\n" + Header("Budget vs spent (billions)") + "\n")
		rows := make([][]string, 0, len(s.BudgetComparison))
		for _, c := range s.BudgetComparison {
			spent := fmt.Sprintf("%.2f", c.Spent)
			if c.Spent > c.Budget {
				spent = StyleRed.Render(spent)
			}
			rows = append(rows, []string{c.Name, fmt.Sprintf("%.2f", c.Budget), spent})
		}
		b.WriteString(RenderTable([]string{"PROJECT", "BUDGET", "SPENT"}, rows, 1, 2))
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatFacets lists the distinct statuses and ministries available as filters.
func FormatFacets(f *contract.Facets) string {
	var b strings.Builder
	b.WriteString(Header("Statuses") + "\n")
	for _, s := range f.Statuses {
		b.WriteString("  " + StatusPill(s) + "\n")
	}
	b.WriteString("\n" + Header("Ministries") + "\n")
	for _, m := range f.Ministries {
		b.WriteString("  " + m + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
