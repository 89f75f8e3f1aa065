package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is a state of the capture session lifecycle.
type SessionState int

const (
	StateIdle SessionState = iota
	StateStarting
	StateActive
	StateCooldown
	StateStopping
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateCooldown:
		return "cooldown"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Scanning reports whether the capture device is held in this state.
func (s SessionState) Scanning() bool {
	return s == StateActive || s == StateCooldown
}

// ScanResult is a single accepted decode.
type ScanResult struct {
	ScannedAt time.Time
	Text      string
	Format    string
}

// Session identifies one capture session from start to stop.
type Session struct {
	StartedAt time.Time
	ID        uuid.UUID
}

// NewSession returns a session stamped with a fresh ID.
func NewSession(now time.Time) Session {
	return Session{
		ID:        uuid.New(),
		StartedAt: now,
	}
}
