package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/budeshi/budeshi/internal/cli/formatter"
	"github.com/budeshi/budeshi/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// budeshiHuhTheme matches huh forms to the formatter palette.
func budeshiHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// projectDraft holds the string form of a project while it is being entered,
// either through flags or the interactive form.
type projectDraft struct {
	ID          string
	Name        string
	Description string
	Status      string
	Budget      string
	Spent       string
	Location    string
	Ministry    string
	Contractor  string
	StartDate   string
	EndDate     string
}

// toProject parses the draft. Blank money fields are zero.
func (d projectDraft) toProject() (domain.Project, error) {
	budget, err := parseAmount(d.Budget)
	if err != nil {
		return domain.Project{}, err
	}
	spent, err := parseAmount(d.Spent)
	if err != nil {
		return domain.Project{}, err
	}
	start, err := domain.ParseDate(d.StartDate)
	if err != nil {
		return domain.Project{}, err
	}
	end, err := domain.ParseDate(d.EndDate)
	if err != nil {
		return domain.Project{}, err
	}
	return domain.Project{
		ID:          strings.TrimSpace(d.ID),
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Status:      strings.TrimSpace(d.Status),
		Budget:      budget,
		Spent:       spent,
		Location:    strings.TrimSpace(d.Location),
		Ministry:    strings.TrimSpace(d.Ministry),
		Contractor:  strings.TrimSpace(d.Contractor),
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// parseAmount accepts whole units with optional thousands separators.
func parseAmount(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, errors.New("amount must be a whole non-negative number")
	}
	return v, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}

func validateDate(s string) error {
	if _, err := domain.ParseDate(s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

func statusOptions() []huh.Option[string] {
	return huh.NewOptions(
		domain.StatusPlanning,
		domain.StatusInProgress,
		domain.StatusDelayed,
		domain.StatusCompleted,
	)
}

// projectForm collects a new project record into d.
func projectForm(d *projectDraft) *huh.Form {
	if d.Status == "" {
		d.Status = domain.StatusPlanning
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&d.Name).Validate(validateRequired("name")),
			huh.NewText().Title("Description").Value(&d.Description).Lines(3),
			huh.NewSelect[string]().Title("Status").Options(statusOptions()...).Value(&d.Status),
			huh.NewInput().Title("Ministry").Placeholder("Ministry of Works and Housing").Value(&d.Ministry),
			huh.NewInput().Title("Contractor").Value(&d.Contractor),
			huh.NewInput().Title("Location").Placeholder("Lagos State").Value(&d.Location),
		),
		huh.NewGroup(
			huh.NewInput().Title("Budget").Placeholder("45000000000").Value(&d.Budget).Validate(validateAmount),
			huh.NewInput().Title("Spent").Placeholder("0").Value(&d.Spent).Validate(validateAmount),
			huh.NewInput().Title("Start Date (YYYY-MM-DD)").Value(&d.StartDate).Validate(validateDate),
			huh.NewInput().Title("End Date (YYYY-MM-DD)").Value(&d.EndDate).Validate(validateDate),
		),
	).WithTheme(budeshiHuhTheme()).WithShowHelp(false)
}

// apiKeyForm asks for an API key without echoing it.
func apiKeyForm(key *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API Key").
				Description("Stored in the local settings database.").
				EchoMode(huh.EchoModePassword).
				Value(key).
				Validate(validateRequired("key")),
		),
	).WithTheme(budeshiHuhTheme()).WithShowHelp(false)
}
