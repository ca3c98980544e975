// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and every returned Cmd is executed and fed back
// until the model settles. Cmds that wait on timers (cursor blink, spinner
// frames) do not return within the timeout and are dropped, so a model that
// animates while busy still settles once its real work has reported back.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDepth bounds Cmd chains so a model that keeps scheduling itself
// cannot hang a test.
const maxDepth = 100

// DefaultCmdTimeout sits well below the fastest animation frame bubbles
// schedules (spinner.Dot at 100ms) and well above an in-memory lookup.
const DefaultCmdTimeout = 20 * time.Millisecond

// Driver feeds messages into a tea.Model and records what comes back.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quit is set once tea.Quit has been returned.
	Quit bool

	cmdTimeout time.Duration
	dropped    int
}

type Option func(*Driver)

// WithSize delivers a WindowSizeMsg before anything else.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Send(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout changes how long a Cmd may run before it is dropped.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.cmdTimeout = timeout }
}

// New wraps model and runs its Init command.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	d.drain(model.Init(), 0)
	return d
}

// Send runs msg through Update and drains the resulting Cmds.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quit {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drain(cmd, 0)
}

// Type enters s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// Submit types s and presses Enter.
func (d *Driver) Submit(s string) {
	d.T.Helper()
	d.Type(s)
	d.Press(tea.KeyEnter)
}

// Press sends a special key such as tea.KeyEnter or tea.KeyEsc.
func (d *Driver) Press(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

func (d *Driver) View() string {
	return d.Model.View()
}

// RequireView fails the test unless the rendered view contains every want.
func (d *Driver) RequireView(want ...string) {
	d.T.Helper()
	view := d.View()
	for _, w := range want {
		if !strings.Contains(view, w) {
			d.T.Fatalf("view does not contain %q:\n%s", w, view)
		}
	}
}

// Dropped reports how many Cmds timed out and were discarded.
func (d *Driver) Dropped() int {
	return d.dropped
}

func (d *Driver) drain(cmd tea.Cmd, depth int) {
	if cmd == nil {
		return
	}
	if depth >= maxDepth {
		d.T.Logf("teatest: stopped draining at depth %d", maxDepth)
		return
	}

	msg, ok := d.run(cmd)
	if !ok {
		d.dropped++
		return
	}
	if msg == nil || isBlink(msg) {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drain(sub, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quit = true
		return
	}

	var next tea.Cmd
	d.Model, next = d.Model.Update(msg)
	d.drain(next, depth+1)
}

// run executes cmd, giving up after the driver's timeout.
func (d *Driver) run(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(d.cmdTimeout):
		return nil, false
	}
}

// isBlink matches the unexported cursor blink messages from bubbles.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
