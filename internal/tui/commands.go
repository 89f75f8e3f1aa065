package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// startCmd starts a session off the update loop; Start blocks until the
// device is ready or has failed.
func startCmd(ctx context.Context, c Controller) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: c.Start(ctx)}
	}
}

// stopCmd stops the session off the update loop.
func stopCmd(c Controller) tea.Cmd {
	return func() tea.Msg {
		return stoppedMsg{err: c.Stop()}
	}
}
