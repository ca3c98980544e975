package cli

import (
	"context"
	"strings"
	"time"

	"github.com/budeshi/budeshi/internal/cli/formatter"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type chatKeyMap struct {
	Send  key.Binding
	Clear key.Binding
	Quit  key.Binding
}

var chatKeys = chatKeyMap{
	Send:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
	Clear: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	Quit:  key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
}

// replyMsg carries the outcome of one Send back to the model.
type replyMsg struct {
	reply *intelligence.Reply
	err   error
}

// chatModel is the interactive conversation view. While a message is being
// resolved the input stays editable but Enter is ignored and a spinner shows.
type chatModel struct {
	ctx     context.Context
	session *service.ChatSession
	path    intelligence.Path
	now     func() time.Time

	input   textinput.Model
	spinner spinner.Model
	busy    bool
	notice  string
	failed  bool
	width   int
}

func newChatModel(ctx context.Context, session *service.ChatSession, path intelligence.Path) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about a project's budget, status, ministry..."
	ti.Prompt = ""
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	return chatModel{
		ctx:     ctx,
		session: session,
		path:    path,
		now:     time.Now,
		input:   ti,
		spinner: sp,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case replyMsg:
		m.busy = false
		m.notice, m.failed = "", false
		if msg.err != nil {
			m.notice, m.failed = resolutionNotice(msg.err), true
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, chatKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, chatKeys.Clear):
			return m.runCommand("/clear")
		case key.Matches(msg, chatKeys.Send):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	content := strings.TrimSpace(m.input.Value())
	if content == "" {
		return m, nil
	}
	m.input.Reset()
	if strings.HasPrefix(content, "/") {
		return m.runCommand(content)
	}

	m.busy = true
	m.notice, m.failed = "", false
	session, ctx := m.session, m.ctx
	send := func() tea.Msg {
		reply, err := session.Send(ctx, content)
		return replyMsg{reply: reply, err: err}
	}
	return m, tea.Batch(m.spinner.Tick, send)
}

func (m chatModel) runCommand(line string) (tea.Model, tea.Cmd) {
	if m.busy {
		m.notice, m.failed = resolutionNotice(service.ErrBusy), true
		return m, nil
	}
	quit, msg, err := runSlashCommand(m.ctx, m.session, line, m.now())
	if quit {
		return m, tea.Quit
	}
	m.notice, m.failed = msg, false
	if err != nil {
		m.notice, m.failed = err.Error(), true
	}
	return m, nil
}

func (m chatModel) View() string {
	var b strings.Builder
	b.WriteString(formatter.FormatChatBanner(string(m.path)) + "\n\n")

	for _, t := range m.session.Turns() {
		b.WriteString(formatter.FormatTurn(t) + "\n")
	}

	if m.busy {
		b.WriteString(m.spinner.View() + " " + formatter.Dim("Thinking...") + "\n\n")
	}
	if m.notice != "" {
		style := formatter.StyleDim
		if m.failed {
			style = formatter.StyleRed
		}
		b.WriteString(style.Render(m.notice) + "\n\n")
	}

	b.WriteString(formatter.StylePurple.Render("budeshi") + formatter.Dim("> "))
	b.WriteString(m.input.View() + "\n")
	b.WriteString(formatter.Dim(helpLine(chatKeys.Send, chatKeys.Clear, chatKeys.Quit)))
	return b.String()
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}
