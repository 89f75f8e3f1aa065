// Package scanner drives a capture session: it starts and stops the
// decoding collaborator, filters its decode events, and reports accepted
// codes and classified start failures to a Listener.
package scanner

import (
	"context"
	"time"
)

// Facing selects which capture device to prefer when several exist.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Box is the detection region inside the capture frame, in pixels.
type Box struct {
	Width  int
	Height int
}

// Config is handed to the decoder when a session starts.
type Config struct {
	Facing      Facing
	Box         Box
	AspectRatio float64
	FrameRate   int
}

// DefaultConfig returns the capture settings used for every session.
func DefaultConfig() Config {
	return Config{
		FrameRate:   10,
		Box:         Box{Width: 250, Height: 250},
		AspectRatio: 16.0 / 9.0,
		Facing:      FacingEnvironment,
	}
}

// FrameInterval is the time between frames at the configured rate.
func (c Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Event is something the decoder observed in a frame.
type Event interface {
	event()
}

// DecodeSuccess carries text extracted from a frame.
type DecodeSuccess struct {
	At     time.Time
	Text   string
	Format string
}

// DecodeFailure is a frame without a readable code.
type DecodeFailure struct {
	Reason string
}

func (DecodeSuccess) event() {}
func (DecodeFailure) event() {}

// Decoder is the decoding collaborator that owns the capture device.
//
// Start acquires the device and returns a channel of per-frame events. The
// decoder must close that channel once Stop has released the device, or
// when the device goes away on its own.
type Decoder interface {
	Start(ctx context.Context, cfg Config) (<-chan Event, error)
	Stop() error
}
