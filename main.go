package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/commands"
	"github.com/colonyops/violations/internal/core/config"
	"github.com/colonyops/violations/internal/core/logging"
	"github.com/colonyops/violations/internal/core/styles"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
	"github.com/colonyops/violations/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser     func()
		violationsApp = &ledger.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "violations",
		Usage:     "Record and track workplace violations",
		UsageText: "violations [global options] command [command options]",
		Description: `Violations keeps a ledger of workplace violations: what happened, where,
when, how urgent it is, and what was done about it.

Run 'violations' with no arguments to open the dashboard.
Run 'violations form' to record one from the terminal.`,
		Version:               build(),
		Writer:                os.Stdout,
		ErrWriter:             os.Stderr,
		EnableShellCompletion: true,
		Flags:                 commands.GlobalFlags(flags),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			ctx = printer.NewContext(ctx, printer.New(c.Root().Writer, c.Root().ErrWriter))

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.Driver != "" {
				cfg.Storage.Driver = flags.Driver
				if err := cfg.Validate(); err != nil {
					return ctx, fmt.Errorf("invalid --driver: %w", err)
				}
			}
			flags.Config = cfg

			// Always log to a file; use explicit path or default to <datadir>/violations.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			logging.Setup(logger)
			logCloser = closer

			if name := c.Args().First(); name != "" {
				ctx = logging.WithCommand(ctx, name)
			}

			// Validation ensures the theme name is known
			if err := styles.UseTheme(cfg.TUI.Theme); err != nil {
				return ctx, err
			}

			la, err := ledger.NewApp(ctx, cfg, log.Logger)
			if err != nil {
				return ctx, fmt.Errorf("open ledger: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*violationsApp = *la

			for _, w := range la.Store.Warnings() {
				log.Warn().Ctx(ctx).Err(w).Msg("ledger loaded with warnings")
			}
			commands.WarnLoadProblems(ctx, violationsApp, c.Args().First())

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			var afterErr error

			if violationsApp.Store != nil {
				if err := violationsApp.WriteMetrics(); err != nil {
					log.Error().Err(err).Msg("failed to write metrics textfile")
				}
				if err := violationsApp.Close(ctx); err != nil {
					log.Error().Err(err).Msg("failed to close ledger")
					afterErr = err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return afterErr
		},
	}

	tuiCmd := commands.RegisterAll(app, flags, violationsApp)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'violations --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
