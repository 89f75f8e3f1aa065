package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/config"
	"github.com/Veraticus/shelfscan/internal/feedback"
	"github.com/Veraticus/shelfscan/internal/resolver"
	"github.com/Veraticus/shelfscan/internal/scanner"
	"github.com/Veraticus/shelfscan/internal/tui"
	"github.com/Veraticus/shelfscan/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan codes interactively",
		Long: `Open the scanner screen. Press s to start a capture session, point the
reader at a code and the matching product is shown. Keys 1, 2 and 3 scan
test codes, / lets you type a code.

Logs go to the log file while the screen is open.`,
		RunE: runScan,
	}

	cmd.Flags().String("decoder", "", "decoder to use (device, simulated)")
	cmd.Flags().String("device", "", "capture device path (stdin is only supported by watch)")
	cmd.Flags().String("theme", "", fmt.Sprintf("color theme (%v)", themes.Names()))
	cmd.Flags().Duration("cooldown", 0, "how long a session stays open after a code is read")

	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := bindFlags(cmd, map[string]string{
		"decoder":  "scanner.decoder",
		"device":   "scanner.device",
		"theme":    "tui.theme",
		"cooldown": "scanner.cooldown",
	}); err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	// The screen takes its keys from stdin, so codes cannot come from there too.
	if settings.ReadsStdin() {
		return common.NewUserError(
			"The scan screen reads keys from stdin. Use watch to read codes from stdin.",
			fmt.Errorf("%w: scanner.device %q", common.ErrInvalidConfig, config.StdinPath))
	}

	logFile, err := redirectLogs(settings.LogFile, settings.LogLevel, settings.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	table, err := loadCatalog(settings)
	if err != nil {
		return err
	}

	bridge := tui.NewBridge()
	ctl, dec, err := newController(settings, table, bridge,
		scanner.WithFeedback(feedback.NewTerminal(os.Stdout)))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ctl.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close scanner", nil)
		}
	}()

	injector, _ := dec.(tui.Injector)

	return tui.Run(ctx, ctl, resolver.New(table), injector, bridge,
		tui.WithTheme(themes.GetTheme(settings.Theme)),
		tui.WithDevice(deviceLabel(settings)),
	)
}

// redirectLogs sends logs to path so they do not draw over the screen.
func redirectLogs(path, level, format string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := tea.LogToFile(path, "shelfscan")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	lvl, err := common.ParseLevel(level)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := common.SetupLogger(f, lvl, format); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}
