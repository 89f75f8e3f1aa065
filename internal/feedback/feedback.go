// Package feedback implements the cues that acknowledge an accepted scan.
package feedback

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// bell is the terminal BEL control character.
const bell = "\a"

// Terminal rings the terminal bell. Terminals cannot vibrate.
type Terminal struct {
	w  io.Writer
	mu sync.Mutex
}

// NewTerminal returns feedback that writes to w, usually the tty.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Vibrate always fails with errors.ErrUnsupported.
func (t *Terminal) Vibrate(time.Duration) error {
	return fmt.Errorf("vibrate: %w", errors.ErrUnsupported)
}

// Beep rings the bell.
func (t *Terminal) Beep() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.w == nil {
		return fmt.Errorf("beep: %w", errors.ErrUnsupported)
	}
	if _, err := io.WriteString(t.w, bell); err != nil {
		return fmt.Errorf("beep: %w", err)
	}
	return nil
}

// Nop produces no cues.
type Nop struct{}

func (Nop) Vibrate(time.Duration) error { return nil }
func (Nop) Beep() error                 { return nil }
