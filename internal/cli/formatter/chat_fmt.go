package formatter

import (
	"fmt"
	"strings"

	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/export"
	"github.com/charmbracelet/lipgloss"
)

var (
	styleUser   = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	styleBot    = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	styleSystem = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
)

// FormatTurn renders one conversation turn: a colored role label, the local
// time, then the content indented by two spaces.
func FormatTurn(t domain.Turn) string {
	var label string
	switch t.Role {
	case domain.RoleUser:
		label = styleUser.Render(export.RoleLabel(t.Role))
	case domain.RoleBot:
		label = styleBot.Render(export.RoleLabel(t.Role))
	default:
		label = styleSystem.Render(export.RoleLabel(t.Role))
	}

	var b strings.Builder
	b.WriteString(label + " " + Dim(t.CreatedAt.Local().Format("15:04")) + "\n")
	for _, line := range strings.Split(t.Content, "\n") {
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

// FormatChatBanner is shown above an interactive conversation.
func FormatChatBanner(path string) string {
	return Header("budeshi") + "\n" +
		Dim(fmt.Sprintf("Answering via %s path. Commands: /clear, /export, /quit.", path))
}
