package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/logging"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
	"github.com/colonyops/violations/internal/profiler"
	"github.com/colonyops/violations/internal/tui"
	"github.com/colonyops/violations/pkg/utils"
)

type TuiCmd struct {
	flags *Flags
	app   *ledger.App

	noWatch bool
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *ledger.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "enable pprof HTTP endpoint on specified port (e.g., 6060)",
			Sources:     cli.EnvVars("VIOLATIONS_PROFILER_PORT"),
			Destination: &cmd.flags.ProfilerPort,
		},
		&cli.BoolFlag{
			Name:        "no-watch",
			Usage:       "do not reload when another process changes the data files",
			Destination: &cmd.noWatch,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	logger := logging.Component("tui")

	// Output produced while the alternate screen is up is shown after exit.
	deferred := &utils.DeferredWriter{}
	defer func() { _ = deferred.Flush(os.Stderr) }()
	p := printer.New(deferred, deferred)
	ctx = printer.NewContext(ctx, p)

	if cmd.flags.ProfilerPort > 0 {
		prof := profiler.New(cmd.flags.ProfilerPort, logger)
		if err := prof.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := prof.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		p.Infof("profiler was available at http://%s/debug/pprof/", prof.Addr())
	}

	opts := tui.Options{Logger: logger}
	if cmd.app.Config.TUI.Watch && !cmd.noWatch {
		watcher, err := cmd.app.Watch()
		if err != nil {
			logger.Warn().Err(err).Msg("file watcher unavailable; external changes need a manual reload")
		}
		if watcher != nil {
			defer func() { _ = watcher.Close() }()
			opts.Changes = watcher.Events()
		}
	}

	if err := tui.Run(ctx, cmd.app, opts); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	for _, w := range cmd.app.Store.Warnings() {
		p.Warnf("%v", w)
	}
	return nil
}
