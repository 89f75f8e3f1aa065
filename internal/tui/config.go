package tui

import (
	"context"

	"github.com/Veraticus/shelfscan/internal/tui/themes"
)

// TestCode is a code bound to one of the test-scan keys.
type TestCode struct {
	Label string
	Code  string
}

// Config holds TUI configuration.
type Config struct {
	Context   context.Context
	Theme     themes.Theme
	Device    string
	TestCodes []TestCode
	Width     int
	Height    int
	ShowHelp  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// DefaultTestCodes are the codes behind the 1, 2 and 3 keys.
func DefaultTestCodes() []TestCode {
	return []TestCode{
		{Label: "Mouse", Code: "012345678905"},
		{Label: "Sample", Code: "5901234123457"},
		{Label: "Headphone", Code: "5901234123488"},
	}
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Context:   context.Background(),
		Theme:     themes.Default,
		Device:    "simulated",
		TestCodes: DefaultTestCodes(),
		Width:     80,
		Height:    24,
		ShowHelp:  true,
	}
}

// WithContext sets the context scan sessions are started with.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithDevice sets the capture device label shown on the scan screen.
func WithDevice(device string) Option {
	return func(c *Config) {
		c.Device = device
	}
}

// WithTestCodes replaces the codes behind the test-scan keys. At most three
// are used.
func WithTestCodes(codes []TestCode) Option {
	return func(c *Config) {
		if len(codes) > 3 {
			codes = codes[:3]
		}
		c.TestCodes = codes
	}
}

// WithHelp toggles the key help footer.
func WithHelp(show bool) Option {
	return func(c *Config) {
		c.ShowHelp = show
	}
}
