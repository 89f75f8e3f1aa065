package tui

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/shelfscan/internal/catalog"
	"github.com/Veraticus/shelfscan/internal/decoder"
	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/Veraticus/shelfscan/internal/resolver"
	"github.com/Veraticus/shelfscan/internal/scanner"
	"github.com/Veraticus/shelfscan/internal/tui/tuitest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeController struct {
	startErr error
	state    model.SessionState
	starts   int
	stops    int
	mu       sync.Mutex
}

func (f *fakeController) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.startErr != nil {
		return f.startErr
	}
	f.state = model.StateActive
	return nil
}

func (f *fakeController) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.state = model.StateIdle
	return nil
}

func (f *fakeController) State() model.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) Stats() scanner.Stats   { return scanner.Stats{} }
func (f *fakeController) Config() scanner.Config { return scanner.DefaultConfig() }

func (f *fakeController) counts() (starts, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

// chanSender collects messages the bridge forwards.
type chanSender chan tea.Msg

func (c chanSender) Send(msg tea.Msg) { c <- msg }

// await forwards bridged messages into the driver until one satisfies done.
func await(t *testing.T, d *tuitest.Driver, msgs chanSender, done func(tea.Msg) bool) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-msgs:
			d.Send(msg)
			if done(msg) {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for controller message")
		}
	}
}

func stateIs(s model.SessionState) func(tea.Msg) bool {
	return func(msg tea.Msg) bool {
		sc, ok := msg.(stateChangedMsg)
		return ok && sc.to == s
	}
}

func newTestDriver(c Controller, injector Injector) *tuitest.Driver {
	m := NewModel(c, resolver.New(catalog.Default()), injector, WithSize(100, 40))
	return tuitest.NewDriver(m)
}

func TestModel_InitialScanScreen(t *testing.T) {
	d := newTestDriver(&fakeController{}, nil).Init()

	view := d.View()
	assert.Contains(t, view, "Scan Product")
	assert.Contains(t, view, "Not scanning. Press s to start.")
	assert.Contains(t, view, "10 fps, 250x250 box")
	assert.Contains(t, view, "simulated (environment)")
	assert.True(t, d.ContainsInOrder("Mouse", "Sample", "Headphone"))
	assert.Equal(t, ScreenScan, d.Model.(Model).Screen())
}

func TestModel_TestKeyWhileIdleResolvesDirectly(t *testing.T) {
	d := newTestDriver(&fakeController{}, nil).Send(tuitest.KeyPress("1"))

	m := d.Model.(Model)
	require.Equal(t, ScreenResult, m.Screen())
	match, ok := m.Match()
	require.True(t, ok)
	assert.Equal(t, "Wireless Mouse", match.Product.Name)

	view := d.View()
	assert.Contains(t, view, "Product Found")
	assert.Contains(t, view, "Wireless Mouse")
	assert.Contains(t, view, "29.99")
	assert.Contains(t, view, "012345678905")
	assert.Contains(t, view, "/placeholder-product.jpg")
}

func TestModel_AddToCartAndBack(t *testing.T) {
	d := newTestDriver(&fakeController{}, nil).Send(tuitest.KeyPress("3"))
	assert.NotContains(t, d.View(), "to cart!")

	d.Send(tuitest.KeyPress("a"))
	assert.Contains(t, d.View(), "Added Headphone to cart!")

	d.Send(tuitest.KeyEsc())
	m := d.Model.(Model)
	assert.Equal(t, ScreenScan, m.Screen())
	_, ok := m.Match()
	assert.False(t, ok)

	view := d.View()
	assert.Contains(t, view, "Scan Product")
	assert.Contains(t, view, "Last scanned: 5901234123488")
	assert.NotContains(t, view, "to cart!")
}

func TestModel_ManualEntry(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		product  string
		notFound string
	}{
		{name: "exact", input: "QR-TEST-12345", product: "QR Code Product"},
		{name: "spaced isbn", input: "978 0 123456 78 9", product: "Programming Book"},
		{name: "lower case", input: "qr-test-12345", product: "QR Code Product"},
		{name: "unknown", input: "000", notFound: `Product with barcode "000" not found in database`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDriver(&fakeController{}, nil).Send(tuitest.KeyPress("/"))
			assert.True(t, d.Model.(Model).entering)

			d.Send(tuitest.Type(tt.input)...)
			d.Send(tuitest.KeyEnter())

			m := d.Model.(Model)
			assert.False(t, m.entering)
			if tt.notFound != "" {
				assert.Equal(t, ScreenScan, m.Screen())
				assert.Contains(t, d.View(), tt.notFound)
				assert.Contains(t, d.View(), "Last scanned: "+tt.input)
				return
			}
			require.Equal(t, ScreenResult, m.Screen())
			match, _ := m.Match()
			assert.Equal(t, tt.product, match.Product.Name)
		})
	}
}

func TestModel_ManualEntryKeysDoNotTrigger(t *testing.T) {
	c := &fakeController{}
	d := newTestDriver(c, nil).Send(tuitest.KeyPress("/"))
	d.Send(tuitest.Type("qs1")...)

	m := d.Model.(Model)
	assert.False(t, d.Quit)
	assert.Equal(t, ScreenScan, m.Screen())
	assert.Equal(t, "qs1", m.input.Value())
	starts, _ := c.counts()
	assert.Zero(t, starts)

	d.Send(tuitest.KeyEsc())
	m = d.Model.(Model)
	assert.False(t, m.entering)
	assert.Empty(t, m.input.Value())
	assert.Equal(t, ScreenScan, m.Screen())
}

func TestModel_EmptyManualEntryIgnored(t *testing.T) {
	d := newTestDriver(&fakeController{}, nil).
		Send(tuitest.KeyPress("/"), tuitest.KeyEnter())

	m := d.Model.(Model)
	assert.Equal(t, ScreenScan, m.Screen())
	assert.Empty(t, m.lastScanned)
}

func TestModel_ToggleFollowsState(t *testing.T) {
	c := &fakeController{}
	d := newTestDriver(c, nil)

	d.Send(tuitest.KeyPress("s"))
	starts, stops := c.counts()
	assert.Equal(t, 1, starts)
	assert.Zero(t, stops)

	// Starting cannot be interrupted.
	d.Send(stateChangedMsg{from: model.StateIdle, to: model.StateStarting})
	d.Send(tuitest.KeyPress("s"))
	starts, stops = c.counts()
	assert.Equal(t, 1, starts)
	assert.Zero(t, stops)

	d.Send(stateChangedMsg{from: model.StateStarting, to: model.StateActive})
	assert.Contains(t, d.View(), "Scanning. Point the reader at a code.")
	d.Send(tuitest.KeyPress("s"))
	_, stops = c.counts()
	assert.Equal(t, 1, stops)

	d.Send(stateChangedMsg{from: model.StateActive, to: model.StateCooldown})
	assert.Contains(t, d.View(), "Code read. Stopping shortly.")
}

func TestModel_ScanSuccessWhileScanningStops(t *testing.T) {
	c := &fakeController{}
	d := newTestDriver(c, nil)
	d.Send(stateChangedMsg{from: model.StateStarting, to: model.StateActive})

	d.Send(scanSuccessMsg{result: model.ScanResult{Text: "5901234123457"}})

	assert.Equal(t, ScreenResult, d.Model.(Model).Screen())
	_, stops := c.counts()
	assert.Equal(t, 1, stops)
}

func TestModel_NotFoundKeepsScanning(t *testing.T) {
	c := &fakeController{}
	d := newTestDriver(c, nil)
	d.Send(stateChangedMsg{from: model.StateStarting, to: model.StateActive})

	d.Send(scanSuccessMsg{result: model.ScanResult{Text: "999"}})

	assert.Equal(t, ScreenScan, d.Model.(Model).Screen())
	assert.Contains(t, d.View(), `Product with barcode "999" not found in database`)
	_, stops := c.counts()
	assert.Zero(t, stops)
}

func TestModel_UnclassifiedStartErrorShown(t *testing.T) {
	c := &fakeController{startErr: errors.New("session already active")}
	d := newTestDriver(c, nil).Send(tuitest.KeyPress("s"))

	assert.Contains(t, d.View(), "session already active")
}

func TestModel_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{tuitest.KeyPress("q"), tuitest.KeyCtrlC()} {
		d := newTestDriver(&fakeController{}, nil).Send(msg)
		assert.True(t, d.Quit)
		assert.Empty(t, d.View())
	}
}

func TestModel_HelpToggle(t *testing.T) {
	d := newTestDriver(&fakeController{}, nil)
	assert.NotContains(t, d.View(), "test headphone")

	d.Send(tuitest.KeyPress("?"))
	assert.Contains(t, d.View(), "test headphone")
}

// failingDecoder refuses to start.
type failingDecoder struct {
	err error
}

func (f failingDecoder) Start(context.Context, scanner.Config) (<-chan scanner.Event, error) {
	return nil, f.err
}

func (failingDecoder) Stop() error { return nil }

func TestModel_StartFailureBanner(t *testing.T) {
	msgs := make(chanSender, 64)
	bridge := NewBridge()
	bridge.Attach(msgs)

	ctl := scanner.New(failingDecoder{err: os.ErrPermission}, bridge)
	defer func() { _ = ctl.Close() }()

	d := newTestDriver(ctl, nil).Send(tuitest.KeyPress("s"))
	await(t, d, msgs, func(msg tea.Msg) bool {
		_, ok := msg.(scanErrorMsg)
		return ok
	})

	assert.Contains(t, d.View(), "Camera permission denied. Please allow camera access.")
	assert.Equal(t, model.StateIdle, ctl.State())

	// A new attempt clears the banner.
	d.Send(stateChangedMsg{from: model.StateIdle, to: model.StateStarting})
	assert.NotContains(t, d.View(), "Camera permission denied")
}

func TestModel_SimulatedSession(t *testing.T) {
	msgs := make(chanSender, 256)
	bridge := NewBridge()
	bridge.Attach(msgs)

	cfg := scanner.DefaultConfig()
	cfg.FrameRate = 100
	sim := decoder.NewSimulated(nil, decoder.WithHoldFrames(3))
	ctl := scanner.New(sim, bridge, scanner.WithConfig(cfg))
	defer func() { _ = ctl.Close() }()

	d := newTestDriver(ctl, sim).Send(tuitest.KeyPress("s"))
	await(t, d, msgs, stateIs(model.StateActive))
	assert.Contains(t, d.View(), "Scanning.")

	d.Send(tuitest.KeyPress("3"))
	await(t, d, msgs, func(msg tea.Msg) bool {
		_, ok := msg.(scanSuccessMsg)
		return ok
	})

	m := d.Model.(Model)
	require.Equal(t, ScreenResult, m.Screen())
	match, _ := m.Match()
	assert.Equal(t, "Headphone", match.Product.Name)

	await(t, d, msgs, stateIs(model.StateIdle))
	assert.Equal(t, model.StateIdle, ctl.State())
	assert.False(t, sim.Running())
}

func TestBridge(t *testing.T) {
	msgs := make(chanSender, 4)
	b := NewBridge()

	b.OnScanError("dropped")
	assert.Empty(t, msgs)

	b.Attach(msgs)
	b.OnScanSuccess(model.ScanResult{Text: "x"})
	b.OnScanError("boom")
	b.OnStateChange(model.StateIdle, model.StateStarting)

	assert.Equal(t, scanSuccessMsg{result: model.ScanResult{Text: "x"}}, <-msgs)
	assert.Equal(t, scanErrorMsg{message: "boom"}, <-msgs)
	assert.Equal(t, stateChangedMsg{from: model.StateIdle, to: model.StateStarting}, <-msgs)
}
