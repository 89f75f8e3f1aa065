package tui

import (
	"github.com/Veraticus/shelfscan/internal/model"
)

// Messages forwarded from the scanner controller.
type scanSuccessMsg struct {
	result model.ScanResult
}

type scanErrorMsg struct {
	message string
}

type stateChangedMsg struct {
	from model.SessionState
	to   model.SessionState
}

// Results of commands that call into the controller.
type startedMsg struct {
	err error
}

type stoppedMsg struct {
	err error
}

// Screen is the page currently shown.
type Screen int

const (
	ScreenScan Screen = iota
	ScreenResult
)
