package tui

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/Veraticus/shelfscan/internal/resolver"
	"github.com/Veraticus/shelfscan/internal/scanner"
	"github.com/Veraticus/shelfscan/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Controller is the part of the scanner controller the TUI drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	State() model.SessionState
	Stats() scanner.Stats
	Config() scanner.Config
}

// Injector accepts codes typed or pressed by hand while a session runs.
type Injector interface {
	Inject(code string) bool
}

// Model holds the TUI state.
type Model struct {
	ctx         context.Context
	controller  Controller
	injector    Injector
	resolver    *resolver.Resolver
	match       *resolver.Match
	theme       themes.Theme
	keymap      KeyMap
	help        help.Model
	spinner     spinner.Model
	input       textinput.Model
	config      Config
	banner      string
	lastScanned string
	notFound    string
	cartNotice  string
	width       int
	height      int
	screen      Screen
	scanState   model.SessionState
	entering    bool
	quitting    bool
}

// NewModel creates the scan screen model. injector may be nil.
func NewModel(controller Controller, res *resolver.Resolver, injector Injector, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.Placeholder = "barcode or QR text"
	input.Prompt = "Code: "
	input.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Theme.StatusInfo

	h := help.New()
	h.ShowAll = false

	return Model{
		ctx:        cfg.Context,
		controller: controller,
		injector:   injector,
		resolver:   res,
		theme:      cfg.Theme,
		keymap:     DefaultKeyMap(),
		help:       h,
		spinner:    sp,
		input:      input,
		config:     cfg,
		width:      cfg.Width,
		height:     cfg.Height,
		screen:     ScreenScan,
		scanState:  controller.State(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case stateChangedMsg:
		m.scanState = msg.to
		if msg.to == model.StateStarting {
			m.banner = ""
		}
		return m, nil

	case scanErrorMsg:
		m.banner = msg.message
		return m, nil

	case scanSuccessMsg:
		return m.handleScan(msg.result.Text)

	case startedMsg:
		if msg.err != nil {
			// Classified failures reach the banner through the listener.
			var startErr *scanner.StartError
			if !errors.As(msg.err, &startErr) {
				m.banner = common.UserMessage(msg.err)
			}
		}
		return m, nil

	case stoppedMsg:
		if msg.err != nil {
			slog.Warn("Failed to stop scanning", "error", msg.err)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.entering {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.screen == ScreenResult && m.match != nil {
		return m.renderResult()
	}
	return m.renderScan()
}

// Screen returns the page being shown.
func (m Model) Screen() Screen {
	return m.screen
}

// Match returns the product on the result screen, if any.
func (m Model) Match() (resolver.Match, bool) {
	if m.match == nil {
		return resolver.Match{}, false
	}
	return *m.match, true
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.entering {
		return m.handleEntryKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.screen == ScreenResult {
		return m.handleResultKey(msg)
	}
	return m.handleScanKey(msg)
}

func (m Model) handleScanKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Toggle):
		return m.toggle()

	case key.Matches(msg, m.keymap.Manual):
		m.entering = true
		m.input.Reset()
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keymap.Test1):
		return m.testScan(0)
	case key.Matches(msg, m.keymap.Test2):
		return m.testScan(1)
	case key.Matches(msg, m.keymap.Test3):
		return m.testScan(2)
	}
	return m, nil
}

func (m Model) handleEntryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Submit):
		code := m.input.Value()
		m.entering = false
		m.input.Blur()
		m.input.Reset()
		if code == "" {
			return m, nil
		}
		return m.handleScan(code)

	case msg.Type == tea.KeyEsc:
		m.entering = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResultKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.AddToCart):
		m.cartNotice = "Added " + m.match.Product.Name + " to cart!"
	case key.Matches(msg, m.keymap.Back):
		m.screen = ScreenScan
		m.match = nil
		m.cartNotice = ""
		m.notFound = ""
	}
	return m, nil
}

// toggle starts a session when idle and stops one that is scanning.
// Starting and Stopping are in flight and cannot be interrupted.
func (m Model) toggle() (tea.Model, tea.Cmd) {
	switch {
	case m.scanState == model.StateIdle:
		m.notFound = ""
		return m, startCmd(m.ctx, m.controller)
	case m.scanState.Scanning():
		return m, stopCmd(m.controller)
	}
	return m, nil
}

// testScan feeds a test code through the decoder when a session is
// running, so it goes through duplicate suppression like a real frame.
// Otherwise it is looked up directly.
func (m Model) testScan(i int) (tea.Model, tea.Cmd) {
	if i >= len(m.config.TestCodes) {
		return m, nil
	}
	code := m.config.TestCodes[i].Code

	if m.injector != nil && m.scanState.Scanning() {
		if !m.injector.Inject(code) {
			slog.Debug("Test scan dropped", "code", code)
		}
		return m, nil
	}
	return m.handleScan(code)
}

// handleScan resolves decoded text. A match opens the result screen and
// ends the session; a miss is shown inline and scanning continues.
func (m Model) handleScan(text string) (tea.Model, tea.Cmd) {
	m.lastScanned = text

	match, err := m.resolver.Resolve(text)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			m.notFound = err.Error()
			return m, nil
		}
		m.notFound = common.UserMessage(err)
		return m, nil
	}

	m.notFound = ""
	m.cartNotice = ""
	m.match = &match
	m.screen = ScreenResult

	if m.scanState.Scanning() {
		return m, stopCmd(m.controller)
	}
	return m, nil
}
