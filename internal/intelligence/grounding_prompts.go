package intelligence

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/budeshi/budeshi/internal/analytics"
	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/money"
	"github.com/budeshi/budeshi/internal/repository"
)

const framingText = `You are the BUDESHI assistant, an assistant for government procurement transparency in Nigeria. You help citizens understand public procurement projects: their budgets, spending, status, locations, responsible ministries and contractors.

Answer only from the project data provided here. If the data does not contain the answer, say so plainly and suggest what the user could ask instead. Never invent projects, amounts or dates.`

const formattingRulesTemplate = `Formatting rules:
- Use Markdown: short paragraphs, bullet lists, and **bold** for key figures.
- Write every monetary value in the canonical currency format with digit grouping and no decimals, for example %s.
- Use a Markdown table whenever you compare two or more projects.
- Point out any project whose spending exceeds its budget.`

const dataUnavailableNote = `Project data is currently unavailable. Tell the user you cannot look up specific projects right now and invite them to try again later.`

// BuildSystemPrompt serializes every project and the portfolio totals into
// the system instruction for the completion service.
func BuildSystemPrompt(projects []domain.Project, f *money.Formatter) string {
	if f == nil {
		f = money.Default()
	}
	stats := analytics.ComputeBudgetStats(projects)

	var b strings.Builder
	b.WriteString(framingText)
	b.WriteString("\n\n")
	b.WriteString(formattingRules(f))
	b.WriteString("\n\nPortfolio totals:\n")
	fmt.Fprintf(&b, "- Projects: %d\n", len(projects))
	fmt.Fprintf(&b, "- Total budget: %s\n", f.Format(stats.TotalBudget))
	fmt.Fprintf(&b, "- Total spent: %s\n", f.Format(stats.TotalSpent))
	fmt.Fprintf(&b, "- Remaining budget: %s\n", f.Format(stats.RemainingBudget))
	fmt.Fprintf(&b, "- Spent share of budget: %.1f%%\n", stats.CompletionPercentage)

	b.WriteString("\nProjects:\n")
	for i, p := range projects {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&b, "   Status: %s\n", p.Status)
		fmt.Fprintf(&b, "   Budget: %s\n", f.Format(p.Budget))
		fmt.Fprintf(&b, "   Spent: %s", f.Format(p.Spent))
		if p.Overrun() {
			b.WriteString(" (over budget)")
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   Location: %s\n", p.Location)
		fmt.Fprintf(&b, "   Ministry: %s\n", p.Ministry)
		fmt.Fprintf(&b, "   Contractor: %s\n", p.Contractor)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FramingPrompt is the reduced prompt used when project data cannot be read.
func FramingPrompt(f *money.Formatter) string {
	if f == nil {
		f = money.Default()
	}
	return framingText + "\n\n" + formattingRules(f) + "\n\n" + dataUnavailableNote
}

// GroundingPrompt builds the prompt from the current store contents. It never
// fails: a store error yields FramingPrompt.
func GroundingPrompt(ctx context.Context, store repository.ProjectStore, f *money.Formatter, logger *slog.Logger) string {
	projects, err := store.All(ctx)
	if err != nil {
		if logger != nil {
			logger.Warn("grounding prompt without project data", "error", err)
		}
		return FramingPrompt(f)
	}
	return BuildSystemPrompt(projects, f)
}

func formattingRules(f *money.Formatter) string {
	return fmt.Sprintf(formattingRulesTemplate, f.Format(45_000_000_000))
}
