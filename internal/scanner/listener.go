package scanner

import (
	"time"

	"github.com/Veraticus/shelfscan/internal/model"
)

// Listener receives the controller's callbacks. Calls are delivered one at
// a time, in the order the controller produced them, and never while the
// controller holds its lock, so a callback may call back into it.
type Listener interface {
	OnScanSuccess(result model.ScanResult)
	OnScanError(message string)
	OnStateChange(from, to model.SessionState)
}

// ListenerFuncs adapts optional functions to a Listener.
type ListenerFuncs struct {
	ScanSuccess func(model.ScanResult)
	ScanError   func(string)
	StateChange func(from, to model.SessionState)
}

func (f ListenerFuncs) OnScanSuccess(result model.ScanResult) {
	if f.ScanSuccess != nil {
		f.ScanSuccess(result)
	}
}

func (f ListenerFuncs) OnScanError(message string) {
	if f.ScanError != nil {
		f.ScanError(message)
	}
}

func (f ListenerFuncs) OnStateChange(from, to model.SessionState) {
	if f.StateChange != nil {
		f.StateChange(from, to)
	}
}

// Feedback produces the cues that acknowledge an accepted scan.
type Feedback interface {
	Vibrate(d time.Duration) error
	Beep() error
}

type nopFeedback struct{}

func (nopFeedback) Vibrate(time.Duration) error { return nil }
func (nopFeedback) Beep() error                 { return nil }
