package formatter

import (
	"fmt"
	"strings"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/money"
	"github.com/charmbracelet/lipgloss"
)

const nameWidth = 40

// FormatProjectList renders projects as a table inside a bordered box.
func FormatProjectList(projects []domain.Project, f *money.Formatter) string {
	if len(projects) == 0 {
		return RenderBox("Projects", Dim("No projects match."))
	}

	headers := []string{"ID", "NAME", "STATUS", "BUDGET", "SPENT", "MINISTRY"}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		spent := f.Format(p.Spent)
		if p.Overrun() {
			spent = StyleRed.Render(spent)
		}
		rows = append(rows, []string{
			TruncID(p.ID),
			Bold(Truncate(p.Name, nameWidth)),
			StatusPill(p.Status),
			f.Format(p.Budget),
			spent,
			p.Ministry,
		})
	}

	table := RenderTable(headers, rows, 3, 4)
	footer := Dim(fmt.Sprintf("%d project(s)", len(projects)))
	return RenderBox("Projects", table+"\n"+footer)
}

// FormatProjectDetail renders one project as a labelled card.
func FormatProjectDetail(p *domain.Project, f *money.Formatter) string {
	label := lipgloss.NewStyle().Foreground(ColorDim).Width(12)
	line := func(k, v string) string {
		return label.Render(k) + v + "\n"
	}

	var b strings.Builder
	b.WriteString(Bold(p.Name) + "\n")
	if p.Description != "" {
		b.WriteString(StyleFg.Render(p.Description) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(line("ID", p.ID))
	b.WriteString(line("Status", StatusPill(p.Status)))
	b.WriteString(line("Budget", f.Format(p.Budget)))
	b.WriteString(line("Spent", f.Format(p.Spent)))
	b.WriteString(line("Progress", RenderSpend(p.Spent, p.Budget, 20)))
	b.WriteString(line("Location", p.Location))
	b.WriteString(line("Ministry", p.Ministry))
	b.WriteString(line("Contractor", p.Contractor))
	b.WriteString(line("Timeline", p.StartDateString()+" → "+p.EndDateString()))
	if p.Overrun() {
		b.WriteString("\n" + StyleRed.Render(fmt.Sprintf("⚠ Over budget by %s", f.Format(p.Spent-p.Budget))))
	}
	return RenderBox("Project", strings.TrimRight(b.String(), "\n"))
}
