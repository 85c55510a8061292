// Package teatest drives bubbletea models synchronously in tests.
//
// Instead of running a tea.Program, the Driver calls Update directly and
// drains every returned Cmd on the test goroutine's terms. Cmds that do not
// return within the configured timeout (cursor blinks, tickers) are dropped.
package teatest

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// MaxDrainDepth bounds how many chained Cmds a single Send may drain.
const MaxDrainDepth = 100

// DefaultCmdTimeout is how long a Cmd may run before it is skipped. Page
// queries against SQLite finish well inside it; blink timers (~530ms) do not.
const DefaultCmdTimeout = 250 * time.Millisecond

var ansi = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// Driver is a synchronous test harness for any tea.Model.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quitting is set once a tea.QuitMsg comes out of a drained Cmd. The
	// bubbletea runtime normally swallows it, so models rarely react to it.
	Quitting bool

	cmdTimeout time.Duration
	skipped    int
}

// Option configures the Driver during construction.
type Option func(*Driver)

// WithSize sends an initial WindowSizeMsg before any other processing.
func WithSize(w, h int) Option {
	return func(d *Driver) {
		d.Model, _ = d.Model.Update(tea.WindowSizeMsg{Width: w, Height: h})
	}
}

// WithCmdTimeout overrides DefaultCmdTimeout.
func WithCmdTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.cmdTimeout = timeout
	}
}

// New creates a Driver for model. Call DrainInit to run the model's Init.
func New(t *testing.T, model tea.Model, opts ...Option) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model, cmdTimeout: DefaultCmdTimeout}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DrainInit executes the model's Init command and drains the results.
func (d *Driver) DrainInit() {
	d.T.Helper()
	d.drainCmd(d.Model.Init(), 0)
}

// Send dispatches msg through Update and drains all resulting Cmds.
// Messages sent after quitting are ignored.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quitting {
		return
	}
	var cmd tea.Cmd
	d.Model, cmd = d.Model.Update(msg)
	d.drainCmd(cmd, 0)
}

// PressKey sends a single rune key.
func (d *Driver) PressKey(r rune) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

// Press sends a special key such as tea.KeyEnter or tea.KeyLeft.
func (d *Driver) Press(k tea.KeyType) {
	d.T.Helper()
	d.Send(tea.KeyMsg{Type: k})
}

// PressEnter sends Enter.
func (d *Driver) PressEnter() {
	d.T.Helper()
	d.Press(tea.KeyEnter)
}

// PressEsc sends Escape.
func (d *Driver) PressEsc() {
	d.T.Helper()
	d.Press(tea.KeyEsc)
}

// PressCtrlC sends Ctrl+C.
func (d *Driver) PressCtrlC() {
	d.T.Helper()
	d.Press(tea.KeyCtrlC)
}

// PressUp sends the Up arrow.
func (d *Driver) PressUp() {
	d.T.Helper()
	d.Press(tea.KeyUp)
}

func (d *Driver) PressDown() {
	d.T.Helper()
	d.Press(tea.KeyDown)
}

func (d *Driver) PressLeft() {
	d.T.Helper()
	d.Press(tea.KeyLeft)
}

func (d *Driver) PressRight() {
	d.T.Helper()
	d.Press(tea.KeyRight)
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.T.Helper()
	for _, r := range s {
		d.PressKey(r)
	}
}

// View returns the model's rendered output.
func (d *Driver) View() string {
	return d.Model.View()
}

// PlainView returns the rendered output with ANSI escapes removed.
func (d *Driver) PlainView() string {
	return ansi.ReplaceAllString(d.Model.View(), "")
}

// RequireViewContains fails the test unless every part appears in PlainView.
func (d *Driver) RequireViewContains(parts ...string) {
	d.T.Helper()
	view := d.PlainView()
	for _, p := range parts {
		if !strings.Contains(view, p) {
			d.T.Fatalf("view does not contain %q:\n%s", p, view)
		}
	}
}

// Skipped reports how many Cmds were dropped for exceeding the timeout.
func (d *Driver) Skipped() int {
	return d.skipped
}

func (d *Driver) drainCmd(cmd tea.Cmd, depth int) {
	d.T.Helper()
	if cmd == nil {
		return
	}
	if depth >= MaxDrainDepth {
		d.T.Logf("teatest: drain depth limit (%d) reached", MaxDrainDepth)
		return
	}

	msg, ok := d.exec(cmd)
	if !ok {
		d.skipped++
		return
	}
	if msg == nil || isCursorBlink(msg) {
		return
	}

	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, sub := range msg {
			d.drainCmd(sub, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quitting = true
		d.Model, _ = d.Model.Update(msg)
		return
	}

	var next tea.Cmd
	d.Model, next = d.Model.Update(msg)
	d.drainCmd(next, depth+1)
}

// exec runs cmd on its own goroutine and reports false if it did not
// return within the driver's timeout.
func (d *Driver) exec(cmd tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() {
		ch <- cmd()
	}()
	timer := time.NewTimer(d.cmdTimeout)
	defer timer.Stop()
	select {
	case msg := <-ch:
		return msg, true
	case <-timer.C:
		return nil, false
	}
}

// isCursorBlink matches the unexported blink messages from bubbles/cursor,
// which chain into further timer Cmds.
func isCursorBlink(msg tea.Msg) bool {
	t := fmt.Sprintf("%T", msg)
	return strings.Contains(t, "Blink") || strings.Contains(t, "blink")
}
