package intelligence

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/budeshi/budeshi/internal/analytics"
	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/money"
	"github.com/budeshi/budeshi/internal/repository"
)

// Canned answers.
const (
	GreetingText = "Hello! I'm the BUDESHI assistant here to help you access information about government procurement projects in Nigeria. What would you like to know?"

	HelpText = "I can provide information about government projects including their budgets, status, locations, and contractors. You can ask me things like:\n\n" +
		"- What projects are currently ongoing?\n" +
		"- What's the budget for the Lagos-Ibadan Expressway project?\n" +
		"- Which ministry handles the Primary Healthcare Centers Renovation?\n" +
		"- What's the status of the Abuja Light Rail Project?\n\n" +
		"How can I assist you today?"

	ThanksText  = "You're welcome! I'm here to help make government procurement information accessible. Is there anything else you'd like to know?"
	GoodbyeText = "Thank you for using BUDESHI. We're committed to making government more transparent for all Nigerians. Have a great day!"
	UnknownText = "I'm not sure I understand your question. I can provide information about government projects, their budgets, status, and implementing agencies. Could you rephrase your question?"

	MinistryPromptText   = "I can provide information about which ministries or agencies are responsible for specific projects. Please specify a project name."
	LocationPromptText   = "I can tell you where specific projects are located. Please specify a project name."
	ContractorPromptText = "I can provide information about contractors working on government projects. Please specify a project name."

	DataUnavailableText = "I can't reach the project records right now. Please try again shortly."

	OverrunWarning = "⚠️ This project has exceeded its budget."

	mentionHint = "For details on a specific project, please mention its name."
)

// Synthesizer composes deterministic answers from the project store.
type Synthesizer struct {
	store  repository.ProjectStore
	money  *money.Formatter
	logger *slog.Logger
}

// NewSynthesizer builds a Synthesizer. A nil formatter uses naira and a nil
// logger discards.
func NewSynthesizer(store repository.ProjectStore, f *money.Formatter, logger *slog.Logger) *Synthesizer {
	if f == nil {
		f = money.Default()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Synthesizer{store: store, money: f, logger: logger}
}

// Resolve classifies utterance against the current project names and answers
// it. The store is read once.
func (s *Synthesizer) Resolve(ctx context.Context, utterance string) (Intent, string) {
	projects, err := s.load(ctx)
	intent := NewClassifier(projectNames(projects)).Classify(utterance)
	return intent, s.compose(intent, utterance, projects, err)
}

// Answer responds to an already classified utterance.
func (s *Synthesizer) Answer(ctx context.Context, intent Intent, utterance string) string {
	if !needsStore(intent) {
		return s.compose(intent, utterance, nil, nil)
	}
	projects, err := s.load(ctx)
	return s.compose(intent, utterance, projects, err)
}

func (s *Synthesizer) load(ctx context.Context) ([]domain.Project, error) {
	projects, err := s.store.All(ctx)
	if err != nil {
		s.logger.Warn("project store unavailable for local answer", "error", err)
		return nil, err
	}
	return projects, nil
}

func needsStore(intent Intent) bool {
	switch intent {
	case IntentProjects, IntentBudget, IntentStatus, IntentMinistry, IntentLocation, IntentContractor:
		return true
	}
	return false
}

func (s *Synthesizer) compose(intent Intent, utterance string, projects []domain.Project, loadErr error) string {
	if needsStore(intent) && loadErr != nil {
		switch intent {
		case IntentMinistry:
			return MinistryPromptText
		case IntentLocation:
			return LocationPromptText
		case IntentContractor:
			return ContractorPromptText
		}
		return DataUnavailableText
	}

	named := findNamed(projects, utterance)
	switch intent {
	case IntentGreeting:
		return GreetingText
	case IntentHelp:
		return HelpText
	case IntentProjects:
		return s.projectsAnswer(named, projects)
	case IntentBudget:
		return s.budgetAnswer(named, projects)
	case IntentStatus:
		return statusAnswer(named, projects)
	case IntentMinistry:
		if named != nil {
			return fmt.Sprintf("The %s is managed by the %s.", named.Name, named.Ministry)
		}
		return MinistryPromptText
	case IntentLocation:
		if named != nil {
			return fmt.Sprintf("The %s is located in %s.", named.Name, named.Location)
		}
		return LocationPromptText
	case IntentContractor:
		if named != nil {
			return fmt.Sprintf("The contractor for the %s is %s.", named.Name, named.Contractor)
		}
		return ContractorPromptText
	case IntentThanks:
		return ThanksText
	case IntentGoodbye:
		return GoodbyeText
	default:
		return UnknownText
	}
}

func (s *Synthesizer) projectsAnswer(named *domain.Project, projects []domain.Project) string {
	if named != nil {
		return fmt.Sprintf("Project: %s\nStatus: %s\nBudget: %s\nSpent: %s\nLocation: %s\nContractor: %s",
			named.Name, named.Status, s.money.Format(named.Budget), s.money.Format(named.Spent),
			named.Location, named.Contractor)
	}
	var b strings.Builder
	b.WriteString("Here are some government projects I have information about:\n\n")
	for i, p := range projects {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s (%s)", p.Name, p.Status)
	}
	b.WriteString("\n\nYou can ask me about any of these projects for more details.")
	return b.String()
}

func (s *Synthesizer) budgetAnswer(named *domain.Project, projects []domain.Project) string {
	if named != nil {
		text := fmt.Sprintf("Budget information for %s:\nAllocated Budget: %s\nAmount Spent: %s (%s of budget)",
			named.Name, s.money.Format(named.Budget), s.money.Format(named.Spent), percentSpent(named))
		if named.Overrun() {
			text += "\n" + OverrunWarning
		}
		return text
	}
	stats := analytics.ComputeBudgetStats(projects)
	return fmt.Sprintf("Total budget across all tracked projects: %s\nTotal spent: %s\n\n%s",
		s.money.Format(stats.TotalBudget), s.money.Format(stats.TotalSpent), mentionHint)
}

func statusAnswer(named *domain.Project, projects []domain.Project) string {
	if named != nil {
		return fmt.Sprintf("%s Status of %s: %s\nStart Date: %s\nExpected Completion: %s",
			StatusEmoji(named.Status), named.Name, named.Status, named.StartDateString(), named.EndDateString())
	}
	return fmt.Sprintf("Project Status Summary:\n✅ Completed: %d\n🏗️ In Progress: %d\n⚠️ Delayed: %d\n\n%s",
		analytics.CountStatus(projects, domain.StatusCompleted),
		analytics.CountStatus(projects, domain.StatusInProgress),
		analytics.CountStatus(projects, domain.StatusDelayed),
		mentionHint)
}

// StatusEmoji tags a status for display.
func StatusEmoji(status string) string {
	switch status {
	case domain.StatusCompleted:
		return "✅"
	case domain.StatusInProgress:
		return "🏗️"
	case domain.StatusDelayed:
		return "⚠️"
	default:
		return "❓"
	}
}

// percentSpent is one decimal place; a zero budget has no meaningful ratio.
func percentSpent(p *domain.Project) string {
	if p.Budget == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(p.Spent)/float64(p.Budget)*100)
}

// findNamed returns the project whose full name appears in utterance
// (case-insensitive). When several names match, the longest wins, so a
// name that contains another resolves to the more specific project.
func findNamed(projects []domain.Project, utterance string) *domain.Project {
	text := strings.ToLower(utterance)
	var best *domain.Project
	bestLen := 0
	for i := range projects {
		name := strings.ToLower(strings.TrimSpace(projects[i].Name))
		if len(name) > bestLen && strings.Contains(text, name) {
			best, bestLen = &projects[i], len(name)
		}
	}
	return best
}

func projectNames(projects []domain.Project) []string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	return names
}
