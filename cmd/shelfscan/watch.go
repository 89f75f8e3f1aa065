package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Veraticus/shelfscan/internal/catalog"
	"github.com/Veraticus/shelfscan/internal/cli"
	"github.com/Veraticus/shelfscan/internal/common"
	"github.com/Veraticus/shelfscan/internal/config"
	"github.com/Veraticus/shelfscan/internal/feedback"
	"github.com/Veraticus/shelfscan/internal/model"
	"github.com/Veraticus/shelfscan/internal/resolver"
	"github.com/Veraticus/shelfscan/internal/scanner"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan without the interactive screen",
		Long: `Run capture sessions back to back and print one line per code read.
A new session starts as soon as the previous one stops. Reading from stdin
(--decoder device --device -) ends when the input does.`,
		RunE: runWatch,
	}

	cmd.Flags().String("decoder", "", "decoder to use (device, simulated)")
	cmd.Flags().String("device", "", "capture device path, - for stdin")
	cmd.Flags().Duration("cooldown", 0, "how long a session stays open after a code is read")
	cmd.Flags().Bool("once", false, "exit after the first product is found")
	cmd.Flags().Bool("beep", false, "ring the terminal bell on every code read")

	return cmd
}

// watchTally counts what a watch run saw.
type watchTally struct {
	read  int
	found int
	mu    sync.Mutex
}

func (w *watchTally) add(found bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.read++
	if found {
		w.found++
	}
}

func (w *watchTally) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fmt.Sprintf("%d codes read, %d found", w.read, w.found)
}

// watcher prints resolutions as the controller reports them.
type watcher struct {
	out      io.Writer
	resolver *resolver.Resolver
	tally    *watchTally
	ended    chan struct{}
	found    chan struct{}
}

func newWatcher(out io.Writer, table *catalog.Table) *watcher {
	return &watcher{
		out:      out,
		resolver: resolver.New(table),
		tally:    &watchTally{},
		ended:    make(chan struct{}, 1),
		found:    make(chan struct{}, 1),
	}
}

func (w *watcher) listener() scanner.Listener {
	return scanner.ListenerFuncs{
		ScanSuccess: func(result model.ScanResult) {
			m, err := w.resolver.Resolve(result.Text)
			w.tally.add(err == nil)
			fmt.Fprintln(w.out, cli.FormatResolution(m, err))
			if err == nil {
				notify(w.found)
			}
		},
		ScanError: func(message string) {
			slog.Debug("Capture session failed", "message", message)
		},
		StateChange: func(from, to model.SessionState) {
			slog.Debug("Scanner state changed", "from", from, "to", to)
			if from == model.StateStopping && to == model.StateIdle {
				notify(w.ended)
			}
		},
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd, map[string]string{
		"decoder":  "scanner.decoder",
		"device":   "scanner.device",
		"cooldown": "scanner.cooldown",
	}); err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	table, err := loadCatalog(settings)
	if err != nil {
		return err
	}

	once, _ := cmd.Flags().GetBool("once")
	beep, _ := cmd.Flags().GetBool("beep")

	var cue scanner.Feedback = feedback.Nop{}
	if beep {
		cue = feedback.NewTerminal(cmd.ErrOrStderr())
	}

	w := newWatcher(cmd.OutOrStdout(), table)
	ctl, dec, err := newController(settings, table, w.listener(), scanner.WithFeedback(cue))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := ctl.Close(); closeErr != nil {
			common.LogError(closeErr, "Failed to close scanner", nil)
		}
	}()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	ctx = handler.HandleInterrupts(ctx, w.tally.String)

	fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatInfo(fmt.Sprintf("Watching %s. Press Ctrl+C to stop.", deviceLabel(settings))))

	for {
		if err := ctl.Start(ctx); err != nil {
			return common.NewUserError(scanner.Classify(err).Message(), err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-w.ended:
		}

		if once {
			select {
			case <-w.found:
				return nil
			default:
			}
		}

		if exhausted(settings, dec) {
			slog.Info("Input ended", "summary", w.tally.String())
			return nil
		}
	}
}

// exhausted reports whether the decoder has no more input to give.
func exhausted(settings config.Settings, dec scanner.Decoder) bool {
	if settings.Decoder != config.DecoderDevice {
		return false
	}
	ex, ok := dec.(interface{ Exhausted() bool })
	return ok && ex.Exhausted()
}
