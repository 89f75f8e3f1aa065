package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/shelfscan/internal/resolver"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the scan screen until the user quits. The bridge must be the
// listener controller was built with. A session still open on exit is
// stopped.
func Run(ctx context.Context, controller Controller, res *resolver.Resolver, injector Injector, bridge *Bridge, opts ...Option) error {
	if controller == nil {
		return fmt.Errorf("controller is required")
	}
	if res == nil {
		return fmt.Errorf("resolver is required")
	}

	opts = append([]Option{WithContext(ctx)}, opts...)
	m := NewModel(controller, res, injector, opts...)

	program := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	bridge.Attach(program)

	_, runErr := program.Run()

	if err := controller.Stop(); err != nil {
		slog.Warn("Failed to stop scanning on exit", "error", err)
	}

	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}
