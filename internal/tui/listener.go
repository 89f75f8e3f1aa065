package tui

import (
	"sync"

	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/Veraticus/shelfscan/internal/scanner"
	tea "github.com/charmbracelet/bubbletea"
)

// Sender delivers messages to a running program.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge forwards controller callbacks to the program as messages. It is
// created before the program so the controller can be built with it.
// Callbacks that arrive before Attach are dropped.
type Bridge struct {
	sender Sender
	mu     sync.RWMutex
}

var _ scanner.Listener = (*Bridge)(nil)

// NewBridge creates a detached bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach starts forwarding to s.
func (b *Bridge) Attach(s Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sender = s
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	s := b.sender
	b.mu.RUnlock()
	if s != nil {
		s.Send(msg)
	}
}

// OnScanSuccess implements scanner.Listener.
func (b *Bridge) OnScanSuccess(result model.ScanResult) {
	b.send(scanSuccessMsg{result: result})
}

// OnScanError implements scanner.Listener.
func (b *Bridge) OnScanError(message string) {
	b.send(scanErrorMsg{message: message})
}

// OnStateChange implements scanner.Listener.
func (b *Bridge) OnStateChange(from, to model.SessionState) {
	b.send(stateChangedMsg{from: from, to: to})
}
