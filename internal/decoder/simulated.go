package decoder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/scanner"
)

const (
	// DefaultHoldFrames is how many consecutive frames a code stays in view.
	DefaultHoldFrames = 5
	injectQueue       = 8
)

// SimulatedOption configures a Simulated decoder.
type SimulatedOption func(*Simulated)

// WithHoldFrames sets how many frames each code stays in view.
func WithHoldFrames(n int) SimulatedOption {
	return func(s *Simulated) {
		if n > 0 {
			s.hold = n
		}
	}
}

// WithGapFrames sets how many empty frames precede the scripted code in each
// session. By default the gap is one second of frames.
func WithGapFrames(n int) SimulatedOption {
	return func(s *Simulated) {
		if n >= 0 {
			s.gap = n
		}
	}
}

// Simulated is a frame-driven decoder that needs no hardware. Each session
// shows empty frames for a while, then the next code from its script held
// in view for several frames, then empty frames until it is stopped. Codes
// pushed with Inject appear on the next frame.
type Simulated struct {
	inject chan string
	done   chan struct{}
	script []string
	wg     sync.WaitGroup
	pos    int
	hold   int
	gap    int
	mu     sync.Mutex
}

// NewSimulated creates a simulated decoder that plays codes, one per session.
func NewSimulated(codes []string, opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		script: append([]string(nil), codes...),
		hold:   DefaultHoldFrames,
		gap:    -1,
		inject: make(chan string, injectQueue),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inject queues code for the next frame. It reports false if the queue is full.
func (s *Simulated) Inject(code string) bool {
	select {
	case s.inject <- code:
		return true
	default:
		return false
	}
}

// Running reports whether a session holds the decoder.
func (s *Simulated) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// Start begins producing one event per frame.
func (s *Simulated) Start(ctx context.Context, cfg scanner.Config) (<-chan scanner.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return nil, fmt.Errorf("simulated decoder: %w", common.ErrDeviceBusy)
	}

	gap := s.gap
	if gap < 0 {
		gap = cfg.FrameRate
	}

	next := ""
	if len(s.script) > 0 {
		next = s.script[s.pos%len(s.script)]
		s.pos++
	}

	s.done = make(chan struct{})
	events := make(chan scanner.Event)

	f := &frames{
		events: events,
		done:   s.done,
		inject: s.inject,
		next:   next,
		gap:    gap,
		hold:   s.hold,
	}

	slog.Debug("Simulated decoder started", "next", next, "gap", gap, "hold", s.hold)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		f.run(ctx, cfg.FrameInterval())
	}()

	return events, nil
}

// Stop ends the session and waits for the frame loop to exit.
func (s *Simulated) Stop() error {
	s.mu.Lock()
	if s.done == nil {
		s.mu.Unlock()
		return nil
	}
	close(s.done)
	s.done = nil
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// frames is the per-session frame loop.
type frames struct {
	events  chan<- scanner.Event
	done    <-chan struct{}
	inject  <-chan string
	current string
	next    string
	gap     int
	hold    int
	left    int
}

func (f *frames) run(ctx context.Context, interval time.Duration) {
	defer close(f.events)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			select {
			case f.events <- f.frame(now):
			case <-f.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

// frame decides what the decoder sees in one frame.
func (f *frames) frame(now time.Time) scanner.Event {
	if f.left > 0 {
		f.left--
		return f.success(now)
	}

	select {
	case code := <-f.inject:
		f.current, f.left = code, f.hold-1
		return f.success(now)
	default:
	}

	if f.gap > 0 {
		f.gap--
		return scanner.DecodeFailure{Reason: "no code in frame"}
	}

	if f.next != "" {
		f.current, f.next, f.left = f.next, "", f.hold-1
		return f.success(now)
	}

	return scanner.DecodeFailure{Reason: "no code in frame"}
}

func (f *frames) success(now time.Time) scanner.Event {
	return scanner.DecodeSuccess{Text: f.current, Format: guessFormat(f.current), At: now}
}

// guessFormat labels a code the way a decoder would report it.
func guessFormat(code string) string {
	digits := true
	for _, r := range code {
		if r < '0' || r > '9' {
			digits = false
			break
		}
	}
	switch {
	case digits && len(code) == 13:
		return "EAN_13"
	case digits && len(code) == 12:
		return "UPC_A"
	case digits && len(code) == 8:
		return "EAN_8"
	default:
		return "QR_CODE"
	}
}
