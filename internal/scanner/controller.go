package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/google/uuid"
)

const (
	// DefaultCooldown is how long a session stays open after an accepted scan.
	DefaultCooldown = 2 * time.Second
	// DefaultPulse is the length of the haptic pulse on an accepted scan.
	DefaultPulse = 200 * time.Millisecond
)

// Stats counts what the current or last session saw.
type Stats struct {
	Accepted   int
	Duplicates int
	Misses     int
}

type options struct {
	feedback Feedback
	now      func() time.Time
	config   Config
	cooldown time.Duration
	pulse    time.Duration
}

// Option configures a Controller.
type Option func(*options)

// WithConfig overrides the capture settings passed to the decoder.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithCooldown sets the delay between an accepted scan and the automatic stop.
func WithCooldown(d time.Duration) Option {
	return func(o *options) {
		o.cooldown = d
	}
}

// WithFeedback sets the cue producer for accepted scans.
func WithFeedback(f Feedback) Option {
	return func(o *options) {
		o.feedback = f
	}
}

// WithClock sets the time source used to stamp sessions and results.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Controller is the capture session state machine:
//
//	Idle -> Starting -> Active -> Cooldown -> Stopping -> Idle
//
// At most one session exists at a time. The decoder is released exactly
// once per session, whichever of Stop, the cooldown timer, end of stream or
// Close gets there first.
type Controller struct {
	decoder  Decoder
	listener Listener
	calls    *dispatcher
	timer    *time.Timer
	session  *model.Session
	opts     options
	last     string
	stats    Stats
	wg       sync.WaitGroup
	gen      uint64
	mu       sync.Mutex
	state    model.SessionState
	closed   bool
}

// New creates an idle controller.
func New(decoder Decoder, listener Listener, opts ...Option) *Controller {
	o := options{
		config:   DefaultConfig(),
		cooldown: DefaultCooldown,
		pulse:    DefaultPulse,
		feedback: nopFeedback{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if listener == nil {
		listener = ListenerFuncs{}
	}

	return &Controller{
		decoder:  decoder,
		listener: listener,
		opts:     o,
		calls:    newDispatcher(),
		state:    model.StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() model.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the session in progress, if any.
func (c *Controller) Session() (model.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return model.Session{}, false
	}
	return *c.session, true
}

// Stats returns counters for the current or most recent session.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Config returns the capture settings handed to the decoder.
func (c *Controller) Config() Config {
	return c.opts.config
}

// Start acquires the capture device and begins decoding. It blocks until
// the decoder reports ready or fails. A failure is classified, reported to
// the listener once, and returned as a *StartError; the controller is Idle
// again afterwards.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return common.ErrClosed
	}
	if c.state != model.StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w (state %s)", common.ErrSessionActive, state)
	}

	session := model.NewSession(c.opts.now())
	c.session = &session
	c.gen++
	gen := c.gen
	c.last = ""
	c.stats = Stats{}
	c.transitionLocked(model.StateStarting)
	c.mu.Unlock()

	slog.Debug("Starting capture session",
		"session", session.ID,
		"fps", c.opts.config.FrameRate,
		"box", fmt.Sprintf("%dx%d", c.opts.config.Box.Width, c.opts.config.Box.Height),
		"facing", c.opts.config.Facing)

	events, err := c.decoder.Start(ctx, c.opts.config)

	c.mu.Lock()
	if err != nil {
		startErr := Classify(err)
		c.session = nil
		c.transitionLocked(model.StateIdle)
		msg := startErr.Message()
		c.calls.push(func() { c.listener.OnScanError(msg) })
		c.mu.Unlock()

		slog.Warn("Capture session failed to start",
			"session", session.ID,
			"kind", startErr.Kind,
			"error", err)
		return startErr
	}

	if c.closed {
		// Torn down while the device was being acquired.
		c.transitionLocked(model.StateStopping)
		c.mu.Unlock()
		_ = c.release(session.ID, "teardown")
		return common.ErrClosed
	}

	c.transitionLocked(model.StateActive)
	c.wg.Add(1)
	go c.pump(gen, events)
	c.mu.Unlock()

	slog.Info("Capture session started", "session", session.ID)
	return nil
}

// Stop ends the session. Stopping an idle or already stopping controller
// is a no-op, and so is stopping during Starting: an in-flight start can
// only finish.
func (c *Controller) Stop() error {
	return c.stop(0, "user")
}

// Close tears the controller down, releasing the device if a session is
// open or still starting. The controller cannot be restarted. Close must
// not be called from a Listener callback.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.stop(0, "teardown")
	c.wg.Wait()
	c.calls.close()
	return err
}

// stop runs the Stopping transition. A non-zero gen restricts it to the
// session that armed the caller, so stale timers and pumps cannot stop a
// newer session.
func (c *Controller) stop(gen uint64, reason string) error {
	c.mu.Lock()
	if !c.state.Scanning() || (gen != 0 && gen != c.gen) {
		c.mu.Unlock()
		return nil
	}
	id := c.session.ID
	c.transitionLocked(model.StateStopping)
	c.mu.Unlock()

	return c.release(id, reason)
}

// release frees the device and returns to Idle. Only the goroutine that
// moved the controller into Stopping calls it.
func (c *Controller) release(id uuid.UUID, reason string) error {
	err := c.decoder.Stop()
	if err != nil {
		common.LogError(err, "Failed to release capture device", common.Fields{
			"session": id.String(),
			"reason":  reason,
		})
		err = fmt.Errorf("failed to release capture device: %w", err)
	}

	c.mu.Lock()
	// Invalidate timers and pump events of the finished session.
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.last = ""
	c.session = nil
	c.transitionLocked(model.StateIdle)
	c.mu.Unlock()

	slog.Info("Capture session stopped", "session", id.String(), "reason", reason)
	return err
}

func (c *Controller) pump(gen uint64, events <-chan Event) {
	defer c.wg.Done()

	for ev := range events {
		c.handle(gen, ev)
	}

	// The decoder closed the stream. After our own Stop this is stale;
	// otherwise the device went away and the session ends here.
	if err := c.stop(gen, "stream closed"); err != nil {
		slog.Debug("Stop after end of stream failed", "error", err)
	}
}

// handle is the transition function for decoder events.
func (c *Controller) handle(gen uint64, ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || !c.state.Scanning() {
		return
	}

	switch e := ev.(type) {
	case DecodeFailure:
		c.stats.Misses++

	case DecodeSuccess:
		if e.Text == "" || e.Text == c.last {
			c.stats.Duplicates++
			return
		}

		at := e.At
		if at.IsZero() {
			at = c.opts.now()
		}
		result := model.ScanResult{Text: e.Text, Format: e.Format, ScannedAt: at}
		c.last = e.Text
		c.stats.Accepted++

		c.calls.push(func() { c.listener.OnScanSuccess(result) })
		c.calls.push(c.signal)

		slog.Debug("Accepted scan",
			"session", c.session.ID,
			"text", e.Text,
			"format", e.Format)

		// Later distinct codes are still reported during cooldown but do
		// not push the automatic stop back.
		if c.state == model.StateActive {
			c.transitionLocked(model.StateCooldown)
			c.timer = time.AfterFunc(c.opts.cooldown, func() {
				if err := c.stop(gen, "cooldown"); err != nil {
					slog.Debug("Cooldown stop failed", "error", err)
				}
			})
		}
	}
}

// signal fires the feedback cues. Failures are expected on terminals and
// devices without the hardware and are ignored.
func (c *Controller) signal() {
	if err := c.opts.feedback.Vibrate(c.opts.pulse); err != nil {
		slog.Debug("Vibration feedback unavailable", "error", err)
	}
	if err := c.opts.feedback.Beep(); err != nil {
		slog.Debug("Audio feedback unavailable", "error", err)
	}
}

func (c *Controller) transitionLocked(to model.SessionState) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	c.calls.push(func() { c.listener.OnStateChange(from, to) })
}
