package tuitest

import (
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes all ANSI escape codes from a string.
func StripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DefaultTimeout bounds how long a command may take before its message is
// dropped. Timer driven commands such as spinner ticks and cursor blinks
// never make it back, which keeps the model still between assertions.
const DefaultTimeout = 25 * time.Millisecond

// Driver feeds messages to a model and runs the commands it returns,
// feeding their messages back in until the model settles.
type Driver struct {
	Model    tea.Model
	Messages []tea.Msg
	Timeout  time.Duration
	Quit     bool
}

// NewDriver wraps model.
func NewDriver(model tea.Model) *Driver {
	return &Driver{Model: model, Timeout: DefaultTimeout}
}

// Init runs the model's Init command.
func (d *Driver) Init() *Driver {
	d.process(d.Model.Init())
	return d
}

// Send delivers msgs in order.
func (d *Driver) Send(msgs ...tea.Msg) *Driver {
	for _, msg := range msgs {
		d.Messages = append(d.Messages, msg)

		var cmd tea.Cmd
		d.Model, cmd = d.Model.Update(msg)
		d.process(cmd)
	}
	return d
}

// View renders the model without ANSI codes.
func (d *Driver) View() string {
	return StripANSI(d.Model.View())
}

// ContainsInOrder reports whether the view contains all strings in order.
func (d *Driver) ContainsInOrder(expected ...string) bool {
	view := d.View()
	last := 0
	for _, exp := range expected {
		i := strings.Index(view[last:], exp)
		if i == -1 {
			return false
		}
		last += i + len(exp)
	}
	return true
}

func (d *Driver) process(cmd tea.Cmd) {
	for _, msg := range d.exec(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			d.Quit = true
			continue
		}
		d.Send(msg)
	}
}

func (d *Driver) exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, d.exec(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(d.Timeout):
		return nil
	}
}
