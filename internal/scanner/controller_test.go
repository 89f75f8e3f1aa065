package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

type fakeDecoder struct {
	startErr error
	stopErr  error
	gate     chan struct{}
	events   chan Event
	cfg      Config
	starts   int
	stops    int
	mu       sync.Mutex
}

func (d *fakeDecoder) Start(_ context.Context, cfg Config) (<-chan Event, error) {
	if d.gate != nil {
		<-d.gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.starts++
	d.cfg = cfg
	if d.startErr != nil {
		return nil, d.startErr
	}
	d.events = make(chan Event, 16)
	return d.events, nil
}

func (d *fakeDecoder) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stops++
	if d.events != nil {
		close(d.events)
		d.events = nil
	}
	return d.stopErr
}

func (d *fakeDecoder) emit(t *testing.T, ev Event) {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotNil(t, d.events, "decoder not started")
	d.events <- ev
}

// hangUp simulates the device disappearing without a Stop call.
func (d *fakeDecoder) hangUp() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.events != nil {
		close(d.events)
		d.events = nil
	}
}

func (d *fakeDecoder) counts() (starts, stops int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.starts, d.stops
}

type transition struct {
	from model.SessionState
	to   model.SessionState
}

type recorder struct {
	results     []model.ScanResult
	errors      []string
	transitions []transition
	mu          sync.Mutex
}

func (r *recorder) OnScanSuccess(result model.ScanResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recorder) OnScanError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, message)
}

func (r *recorder) OnStateChange(from, to model.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions, transition{from: from, to: to})
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	texts := make([]string, 0, len(r.results))
	for _, res := range r.results {
		texts = append(texts, res.Text)
	}
	return texts
}

func (r *recorder) errorMessages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

func (r *recorder) entered(state model.SessionState) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, tr := range r.transitions {
		if tr.to == state {
			n++
		}
	}
	return n
}

type countingFeedback struct {
	err      error
	vibrates int
	beeps    int
	mu       sync.Mutex
}

func (f *countingFeedback) Vibrate(time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vibrates++
	return f.err
}

func (f *countingFeedback) Beep() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beeps++
	return f.err
}

func (f *countingFeedback) counts() (vibrates, beeps int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vibrates, f.beeps
}

func newTestController(t *testing.T, dec *fakeDecoder, opts ...Option) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	opts = append([]Option{WithCooldown(time.Hour)}, opts...)
	c := New(dec, rec, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, rec
}

func waitState(t *testing.T, c *Controller, want model.SessionState) {
	t.Helper()
	require.Eventually(t, func() bool { return c.State() == want }, waitFor, tick,
		"state never became %s (is %s)", want, c.State())
}

func TestControllerStart(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec)

	assert.Equal(t, model.StateIdle, c.State())
	_, ok := c.Session()
	assert.False(t, ok)

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, model.StateActive, c.State())

	session, ok := c.Session()
	require.True(t, ok)
	assert.NotEmpty(t, session.ID.String())

	assert.Equal(t, 10, dec.cfg.FrameRate)
	assert.Equal(t, Box{Width: 250, Height: 250}, dec.cfg.Box)
	assert.InDelta(t, 16.0/9.0, dec.cfg.AspectRatio, 1e-9)
	assert.Equal(t, FacingEnvironment, dec.cfg.Facing)

	require.Eventually(t, func() bool { return rec.entered(model.StateActive) == 1 }, waitFor, tick)
	assert.Equal(t, 1, rec.entered(model.StateStarting))
}

func TestControllerStartWhileActive(t *testing.T) {
	dec := &fakeDecoder{}
	c, _ := newTestController(t, dec)

	require.NoError(t, c.Start(context.Background()))
	err := c.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrSessionActive)

	starts, _ := dec.counts()
	assert.Equal(t, 1, starts)
}

func TestControllerStartFailures(t *testing.T) {
	tests := []struct {
		err      error
		name     string
		wantMsg  string
		wantKind ErrorKind
	}{
		{
			name:     "permission denied",
			err:      errors.New("NotAllowedError: Permission denied"),
			wantKind: KindPermissionDenied,
			wantMsg:  "Camera permission denied. Please allow camera access.",
		},
		{
			name:     "no device",
			err:      errors.New("NotFoundError: Requested device not found"),
			wantKind: KindNoDevice,
			wantMsg:  "No camera found on this device.",
		},
		{
			name:     "device busy",
			err:      errors.New("NotReadableError: Could not start video source"),
			wantKind: KindDeviceBusy,
			wantMsg:  "Camera is being used by another application.",
		},
		{
			name:     "unclassified",
			err:      errors.New("OverconstrainedError"),
			wantKind: KindUnavailable,
			wantMsg:  "Camera access denied or not available.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := &fakeDecoder{startErr: tt.err}
			c, rec := newTestController(t, dec)

			err := c.Start(context.Background())
			require.Error(t, err)

			var startErr *StartError
			require.ErrorAs(t, err, &startErr)
			assert.Equal(t, tt.wantKind, startErr.Kind)
			assert.ErrorIs(t, err, tt.err)

			assert.Equal(t, model.StateIdle, c.State())
			_, ok := c.Session()
			assert.False(t, ok)

			require.Eventually(t, func() bool { return len(rec.errorMessages()) == 1 }, waitFor, tick)
			assert.Equal(t, []string{tt.wantMsg}, rec.errorMessages())

			// No automatic retry.
			time.Sleep(20 * time.Millisecond)
			starts, stops := dec.counts()
			assert.Equal(t, 1, starts)
			assert.Zero(t, stops)
			assert.Len(t, rec.errorMessages(), 1)
		})
	}
}

func TestControllerRestartAfterFailure(t *testing.T) {
	dec := &fakeDecoder{startErr: errors.New("NotReadableError")}
	c, _ := newTestController(t, dec)

	require.Error(t, c.Start(context.Background()))

	dec.mu.Lock()
	dec.startErr = nil
	dec.mu.Unlock()

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, model.StateActive, c.State())
}

func TestControllerAcceptsScan(t *testing.T) {
	dec := &fakeDecoder{}
	fb := &countingFeedback{}
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	c, rec := newTestController(t, dec, WithFeedback(fb), WithClock(func() time.Time { return now }))

	require.NoError(t, c.Start(context.Background()))
	dec.emit(t, DecodeSuccess{Text: "012345678905", Format: "UPC_A"})

	waitState(t, c, model.StateCooldown)
	require.Eventually(t, func() bool { return len(rec.texts()) == 1 }, waitFor, tick)

	rec.mu.Lock()
	result := rec.results[0]
	rec.mu.Unlock()
	assert.Equal(t, "012345678905", result.Text)
	assert.Equal(t, "UPC_A", result.Format)
	assert.Equal(t, now, result.ScannedAt)

	require.Eventually(t, func() bool {
		v, b := fb.counts()
		return v == 1 && b == 1
	}, waitFor, tick)

	assert.Equal(t, 1, c.Stats().Accepted)
}

func TestControllerIgnoresDecodeFailures(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec)

	require.NoError(t, c.Start(context.Background()))
	for range 5 {
		dec.emit(t, DecodeFailure{Reason: "no code in frame"})
	}

	require.Eventually(t, func() bool { return c.Stats().Misses == 5 }, waitFor, tick)
	assert.Equal(t, model.StateActive, c.State())
	assert.Empty(t, rec.texts())
	assert.Empty(t, rec.errorMessages())
}

func TestControllerSuppressesDuplicates(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec)

	require.NoError(t, c.Start(context.Background()))

	dec.emit(t, DecodeSuccess{Text: "5901234123457"})
	dec.emit(t, DecodeSuccess{Text: "5901234123457"})
	dec.emit(t, DecodeSuccess{Text: "5901234123457"})
	dec.emit(t, DecodeSuccess{Text: ""})

	require.Eventually(t, func() bool { return c.Stats().Duplicates == 3 }, waitFor, tick)
	assert.Equal(t, []string{"5901234123457"}, rec.texts())
	assert.Equal(t, model.StateCooldown, c.State())

	// A different code is still reported while cooling down.
	dec.emit(t, DecodeSuccess{Text: "5901234123488"})
	require.Eventually(t, func() bool { return len(rec.texts()) == 2 }, waitFor, tick)
	assert.Equal(t, []string{"5901234123457", "5901234123488"}, rec.texts())
	assert.Equal(t, model.StateCooldown, c.State())
}

func TestControllerCooldownAutoStop(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec, WithCooldown(30*time.Millisecond))

	require.NoError(t, c.Start(context.Background()))
	dec.emit(t, DecodeSuccess{Text: "QR-TEST-12345"})

	require.Eventually(t, func() bool { return len(rec.texts()) == 1 }, waitFor, tick)
	waitState(t, c, model.StateIdle)

	_, stops := dec.counts()
	assert.Equal(t, 1, stops)
	require.Eventually(t, func() bool { return rec.entered(model.StateIdle) == 1 }, waitFor, tick)

	// The suppression value was cleared, so the same code is accepted
	// again in the next session.
	require.NoError(t, c.Start(context.Background()))
	dec.emit(t, DecodeSuccess{Text: "QR-TEST-12345"})
	require.Eventually(t, func() bool { return len(rec.texts()) == 2 }, waitFor, tick)
}

func TestControllerCooldownIsNotExtended(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec, WithCooldown(300*time.Millisecond))

	require.NoError(t, c.Start(context.Background()))
	dec.emit(t, DecodeSuccess{Text: "A"})
	waitState(t, c, model.StateCooldown)

	time.Sleep(200 * time.Millisecond)
	dec.emit(t, DecodeSuccess{Text: "B"})
	require.Eventually(t, func() bool { return len(rec.texts()) == 2 }, waitFor, tick)

	// Stops about 300ms after A, well before 300ms after B.
	require.Eventually(t, func() bool { return c.State() == model.StateIdle }, 200*time.Millisecond, tick)
}

func TestControllerDoubleStop(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec)

	require.NoError(t, c.Start(context.Background()))

	assert.NotPanics(t, func() {
		assert.NoError(t, c.Stop())
		assert.NoError(t, c.Stop())
	})

	assert.Equal(t, model.StateIdle, c.State())
	_, stops := dec.counts()
	assert.Equal(t, 1, stops)

	require.Eventually(t, func() bool { return rec.entered(model.StateIdle) == 1 }, waitFor, tick)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.entered(model.StateIdle))
	assert.Equal(t, 1, rec.entered(model.StateStopping))
}

func TestControllerConcurrentStops(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec, WithCooldown(5*time.Millisecond))

	require.NoError(t, c.Start(context.Background()))
	dec.emit(t, DecodeSuccess{Text: "race"})
	require.Eventually(t, func() bool { return c.Stats().Accepted == 1 }, waitFor, tick)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Stop()
		}()
	}
	wg.Wait()

	waitState(t, c, model.StateIdle)
	time.Sleep(20 * time.Millisecond)

	_, stops := dec.counts()
	assert.Equal(t, 1, stops)
	assert.Equal(t, 1, rec.entered(model.StateIdle))
}

func TestControllerStopWhenIdle(t *testing.T) {
	dec := &fakeDecoder{}
	c, _ := newTestController(t, dec)

	assert.NoError(t, c.Stop())
	assert.Equal(t, model.StateIdle, c.State())

	_, stops := dec.counts()
	assert.Zero(t, stops)
}

func TestControllerStopDuringStarting(t *testing.T) {
	dec := &fakeDecoder{gate: make(chan struct{})}
	c, _ := newTestController(t, dec)

	started := make(chan error, 1)
	go func() { started <- c.Start(context.Background()) }()

	waitState(t, c, model.StateStarting)
	assert.NoError(t, c.Stop())
	assert.Equal(t, model.StateStarting, c.State())

	close(dec.gate)
	require.NoError(t, <-started)
	assert.Equal(t, model.StateActive, c.State())
}

func TestControllerStreamClosed(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec)

	require.NoError(t, c.Start(context.Background()))
	dec.hangUp()

	waitState(t, c, model.StateIdle)
	_, stops := dec.counts()
	assert.Equal(t, 1, stops)
	assert.Empty(t, rec.errorMessages())
}

func TestControllerEventsAfterStopAreIgnored(t *testing.T) {
	dec := &fakeDecoder{}
	c, rec := newTestController(t, dec)

	require.NoError(t, c.Start(context.Background()))
	dec.mu.Lock()
	events := dec.events
	dec.mu.Unlock()

	// Handled as if it raced in after the stop.
	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()
	require.NoError(t, c.Stop())
	c.handle(gen, DecodeSuccess{Text: "late"})

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.texts())
	_, open := <-events
	assert.False(t, open)
}

func TestControllerFeedbackFailureIsIgnored(t *testing.T) {
	dec := &fakeDecoder{}
	fb := &countingFeedback{err: errors.New("no vibration motor")}
	c, rec := newTestController(t, dec, WithFeedback(fb))

	require.NoError(t, c.Start(context.Background()))
	dec.emit(t, DecodeSuccess{Text: "012345678905"})

	require.Eventually(t, func() bool {
		v, b := fb.counts()
		return v == 1 && b == 1
	}, waitFor, tick)
	assert.Equal(t, []string{"012345678905"}, rec.texts())
	assert.Empty(t, rec.errorMessages())
	assert.Equal(t, model.StateCooldown, c.State())
}

func TestControllerReleaseError(t *testing.T) {
	dec := &fakeDecoder{stopErr: errors.New("ioctl failed")}
	c, _ := newTestController(t, dec)

	require.NoError(t, c.Start(context.Background()))
	err := c.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ioctl failed")
	assert.Equal(t, model.StateIdle, c.State())
}

func TestControllerClose(t *testing.T) {
	dec := &fakeDecoder{}
	c := New(dec, nil, WithCooldown(time.Hour))

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Close())

	assert.Equal(t, model.StateIdle, c.State())
	_, stops := dec.counts()
	assert.Equal(t, 1, stops)

	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(context.Background()), common.ErrClosed)
}

func TestControllerCloseDuringStarting(t *testing.T) {
	dec := &fakeDecoder{gate: make(chan struct{})}
	c := New(dec, nil)

	started := make(chan error, 1)
	go func() { started <- c.Start(context.Background()) }()
	waitState(t, c, model.StateStarting)

	require.NoError(t, c.Close())
	close(dec.gate)

	assert.ErrorIs(t, <-started, common.ErrClosed)
	assert.Equal(t, model.StateIdle, c.State())
	_, stops := dec.counts()
	assert.Equal(t, 1, stops)

	// Transitions after teardown have no one to deliver them.
	c.calls.mu.Lock()
	defer c.calls.mu.Unlock()
	assert.Empty(t, c.calls.queue)
}

func TestListenerMayReenterController(t *testing.T) {
	dec := &fakeDecoder{}
	var c *Controller
	stopped := make(chan error, 1)
	c = New(dec, ListenerFuncs{
		ScanSuccess: func(model.ScanResult) { stopped <- c.Stop() },
	}, WithCooldown(time.Hour))
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Start(context.Background()))
	dec.emit(t, DecodeSuccess{Text: "012345678905"})

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("listener never ran")
	}
	waitState(t, c, model.StateIdle)
}
