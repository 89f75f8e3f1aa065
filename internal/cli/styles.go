// Package cli provides styled terminal output for the one-shot commands.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

// Status colors.
var (
	FoundColor   = lipgloss.Color("#10B981")
	MissingColor = lipgloss.Color("#F59E0B")
	FailedColor  = lipgloss.Color("#EF4444")
	NoticeColor  = lipgloss.Color("#3B82F6")
	DimColor     = lipgloss.Color("#737373")
	AccentColor  = lipgloss.Color("#7C3AED")
)

var (
	// BoldStyle highlights product names.
	BoldStyle = lipgloss.NewStyle().Bold(true)

	// SubtleStyle is for match details and other secondary text.
	SubtleStyle = lipgloss.NewStyle().Foreground(DimColor)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86"))

	// LabelStyle titles a rendered code.
	LabelStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	// CodeBoxStyle frames a terminal-rendered code. The padding doubles as
	// the quiet zone readers need around a QR symbol.
	CodeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#404040")).
			Padding(0, 1)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
)

func status(color lipgloss.Color, icon, message string) string {
	return lipgloss.NewStyle().Foreground(color).Render(icon + " " + message)
}

// FormatSuccess marks a found product or a completed step.
func FormatSuccess(message string) string { return status(FoundColor, SuccessIcon, message) }

// FormatError marks a failure.
func FormatError(message string) string { return status(FailedColor, ErrorIcon, message) }

// FormatWarning marks a code with no product.
func FormatWarning(message string) string { return status(MissingColor, WarningIcon, message) }

// FormatInfo marks progress notices.
func FormatInfo(message string) string { return status(NoticeColor, InfoIcon, message) }

// RenderBox renders a labelled code block.
func RenderBox(title, content string) string {
	return CodeBoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(title),
		content,
	))
}
