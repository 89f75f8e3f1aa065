package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/Veraticus/shelfscan/internal/money"
	"github.com/charmbracelet/lipgloss"
)

// renderScan renders the scan screen.
func (m Model) renderScan() string {
	sections := []string{
		m.theme.Title.Render("Scan Product"),
		m.theme.Subtitle.Render("Scan a barcode or QR code to look up a product"),
	}

	if m.banner != "" {
		sections = append(sections, m.theme.StatusError.Render("✗ "+m.banner))
	}

	sections = append(sections, m.renderCapturePanel())

	if m.entering {
		sections = append(sections, m.input.View())
	}

	if m.notFound != "" {
		sections = append(sections, m.theme.StatusWarning.Render(m.notFound))
	}

	if m.lastScanned != "" {
		sections = append(sections,
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Last scanned: "+m.lastScanned))
	}

	sections = append(sections, m.renderTestKeys())

	if m.config.ShowHelp {
		sections = append(sections, m.help.View(m.keymap))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderCapturePanel shows the session state and capture settings.
func (m Model) renderCapturePanel() string {
	cfg := m.controller.Config()
	stats := m.controller.Stats()

	var status string
	switch m.scanState {
	case model.StateIdle:
		status = m.theme.StatusPending.Render("Not scanning. Press s to start.")
	case model.StateStarting:
		status = m.spinner.View() + " " + m.theme.StatusInfo.Render("Starting camera...")
	case model.StateActive:
		status = m.theme.StatusSuccess.Render("● Scanning. Point the reader at a code.")
	case model.StateCooldown:
		status = m.theme.StatusSuccess.Render("● Code read. Stopping shortly.")
	case model.StateStopping:
		status = m.theme.StatusPending.Render("Stopping...")
	}

	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)
	lines := []string{
		status,
		"",
		muted.Render(fmt.Sprintf("Device  %s (%s)", m.config.Device, cfg.Facing)),
		muted.Render(fmt.Sprintf("Capture %d fps, %dx%d box", cfg.FrameRate, cfg.Box.Width, cfg.Box.Height)),
		muted.Render(fmt.Sprintf("Session %d read, %d repeated, %d empty frames",
			stats.Accepted, stats.Duplicates, stats.Misses)),
	}

	width := m.width - 4
	if width > 60 {
		width = 60
	}
	if width < 30 {
		width = 30
	}

	return m.theme.RoundedBox.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderTestKeys() string {
	if len(m.config.TestCodes) == 0 {
		return ""
	}

	parts := make([]string, 0, len(m.config.TestCodes))
	for i, tc := range m.config.TestCodes {
		parts = append(parts, fmt.Sprintf("%s %s", m.theme.Code.Render(fmt.Sprint(i+1)), tc.Label))
	}
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Test scans: ") + strings.Join(parts, "  ")
}

// renderResult renders the product card.
func (m Model) renderResult() string {
	p := m.match.Product

	card := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render(p.Name),
		m.theme.StatusSuccess.Render(money.Format(p.Price)),
		"",
		m.renderField("Barcode", p.Barcode),
		m.renderField("Image", p.Image),
	)

	sections := []string{
		m.theme.Subtitle.Render("Product Found"),
		m.theme.RoundedBox.Render(card),
	}

	if m.cartNotice != "" {
		sections = append(sections, m.theme.StatusSuccess.Render("✓ "+m.cartNotice))
	}

	if m.config.ShowHelp {
		sections = append(sections, lipgloss.NewStyle().Foreground(m.theme.Muted).Render(
			fmt.Sprintf("%s add to cart • %s back to scanner • %s quit",
				m.keymap.AddToCart.Help().Key, m.keymap.Back.Help().Key, m.keymap.Quit.Help().Key)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderField(label, value string) string {
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Width(9).Render(label) + m.theme.Normal.Render(value)
}
