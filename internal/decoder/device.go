// Package decoder provides the decoding collaborators the scanner drives:
// a line-oriented capture device and a frame-driven simulator.
package decoder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/config"
	"github.com/Veraticus/shelfscan/internal/scanner"
)

// StdinPath selects standard input as the capture device.
const StdinPath = config.StdinPath

// knownFormats are the labels accepted as a "FORMAT:" prefix on a line.
var knownFormats = map[string]bool{
	"QR_CODE":     true,
	"AZTEC":       true,
	"CODABAR":     true,
	"CODE_39":     true,
	"CODE_93":     true,
	"CODE_128":    true,
	"DATA_MATRIX": true,
	"EAN_8":       true,
	"EAN_13":      true,
	"ITF":         true,
	"PDF_417":     true,
	"UPC_A":       true,
	"UPC_E":       true,
}

// OpenFunc opens a capture device for reading.
type OpenFunc func(path string) (io.ReadCloser, error)

// Device reads decoded codes from a barcode reader that delivers one code
// per line, such as a HID or serial scanner in keyboard-wedge mode. Each
// non-blank line is a decode; blank lines are frames without a code.
//
// A device file is opened per session and closed by Stop. Standard input
// cannot be reopened, so its reader outlives sessions and later sessions
// continue where the previous one stopped.
type Device struct {
	src  *lineSource
	open OpenFunc
	done chan struct{}
	path string
	eof  atomic.Bool
	mu   sync.Mutex
}

// NewDevice creates a decoder for the device at path.
func NewDevice(path string) *Device {
	return &Device{path: path, open: openDevice}
}

// NewDeviceWithOpener creates a decoder that opens path with open.
func NewDeviceWithOpener(path string, open OpenFunc) *Device {
	return &Device{path: path, open: open}
}

func openDevice(path string) (io.ReadCloser, error) {
	if path == StdinPath {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path) // #nosec G304 -- device path comes from user configuration
}

// Path returns the device path.
func (d *Device) Path() string {
	return d.path
}

// Exhausted reports whether the last source reached end of input. Callers
// that restart sessions use it to tell a finished pipe from a live reader.
func (d *Device) Exhausted() bool {
	return d.eof.Load()
}

func (d *Device) persistent() bool {
	return d.path == StdinPath
}

// Start opens the device and streams its lines as events.
func (d *Device) Start(ctx context.Context, cfg scanner.Config) (<-chan scanner.Event, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done != nil {
		return nil, fmt.Errorf("%s: %w", d.path, common.ErrDeviceBusy)
	}

	if d.src == nil || d.src.finished() {
		rc, err := d.open(d.path)
		if err != nil {
			return nil, fmt.Errorf("failed to open capture device: %w", err)
		}
		d.eof.Store(false)
		d.src = newLineSource(rc, &d.eof)
	}

	slog.Debug("Opened capture device",
		"path", d.path,
		"fps", cfg.FrameRate,
		"facing", cfg.Facing)

	d.done = make(chan struct{})
	events := make(chan scanner.Event)
	go forward(ctx, d.src.lines, events, d.done)

	return events, nil
}

// Stop ends the session. The event channel is closed promptly even if the
// underlying read cannot be interrupted.
func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.done == nil {
		return nil
	}
	close(d.done)
	d.done = nil

	if d.persistent() {
		return nil
	}

	src := d.src
	d.src = nil
	if err := src.close(); err != nil {
		return fmt.Errorf("failed to close capture device: %w", err)
	}
	return nil
}

// lineSource reads lines from an open device until it is closed or ends.
type lineSource struct {
	rc    io.ReadCloser
	lines chan string
	quit  chan struct{}
	ended chan struct{}
	once  sync.Once
}

func newLineSource(rc io.ReadCloser, eof *atomic.Bool) *lineSource {
	s := &lineSource{
		rc:    rc,
		lines: make(chan string),
		quit:  make(chan struct{}),
		ended: make(chan struct{}),
	}
	go s.read(eof)
	return s
}

func (s *lineSource) read(eof *atomic.Bool) {
	defer close(s.ended)
	defer close(s.lines)

	sc := bufio.NewScanner(s.rc)
	for sc.Scan() {
		select {
		case s.lines <- sc.Text():
		case <-s.quit:
			return
		}
	}

	select {
	case <-s.quit:
	default:
		if err := sc.Err(); err != nil {
			slog.Warn("Capture device read failed", "error", err)
			return
		}
		eof.Store(true)
	}
}

func (s *lineSource) finished() bool {
	select {
	case <-s.ended:
		return true
	default:
		return false
	}
}

func (s *lineSource) close() error {
	var err error
	s.once.Do(func() {
		close(s.quit)
		err = s.rc.Close()
	})
	return err
}

func forward(ctx context.Context, lines <-chan string, events chan<- scanner.Event, done <-chan struct{}) {
	defer close(events)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			select {
			case events <- ParseLine(line, time.Now()):
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// ParseLine turns one line of reader output into an event. A leading
// "FORMAT:" label is split off when FORMAT is a known symbology.
func ParseLine(line string, at time.Time) scanner.Event {
	if strings.TrimSpace(line) == "" {
		return scanner.DecodeFailure{Reason: "no code in frame"}
	}

	format := ""
	if label, text, ok := strings.Cut(line, ":"); ok && knownFormats[label] && text != "" {
		format, line = label, text
	}

	return scanner.DecodeSuccess{Text: line, Format: format, At: at}
}
