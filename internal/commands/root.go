package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
)

// GlobalFlags returns the options accepted before any command.
func GlobalFlags(flags *Flags) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error, fatal, panic)",
			Sources:     cli.EnvVars("VIOLATIONS_LOG_LEVEL"),
			Value:       "info",
			Destination: &flags.LogLevel,
		},
		&cli.StringFlag{
			Name:        "log-file",
			Usage:       "path to log file (defaults to <data-dir>/violations.log)",
			Sources:     cli.EnvVars("VIOLATIONS_LOG_FILE"),
			Destination: &flags.LogFile,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config file",
			Sources:     cli.EnvVars("VIOLATIONS_CONFIG"),
			Value:       DefaultConfigPath(),
			Destination: &flags.ConfigPath,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "path to data directory",
			Sources:     cli.EnvVars("VIOLATIONS_DATA_DIR"),
			Value:       DefaultDataDir(),
			Destination: &flags.DataDir,
		},
		&cli.StringFlag{
			Name:        "driver",
			Usage:       "storage driver override (sqlite, json, memory)",
			Sources:     cli.EnvVars("VIOLATIONS_DRIVER"),
			Destination: &flags.Driver,
		},
	}
}

// RegisterAll adds every subcommand to root and returns the TUI command,
// whose flags are also added to root for use as the default action.
func RegisterAll(root *cli.Command, flags *Flags, app *ledger.App) *TuiCmd {
	root = NewAddCmd(flags, app).Register(root)
	root = NewEditCmd(flags, app).Register(root)
	root = NewRmCmd(flags, app).Register(root)
	root = NewStatusCmd(flags, app).Register(root)
	root = NewLsCmd(flags, app).Register(root)
	root = NewShowCmd(flags, app).Register(root)
	root = NewDraftCmd(flags, app).Register(root)
	root = NewFormCmd(flags, app).Register(root)
	root = NewStatsCmd(flags, app).Register(root)
	root = NewReportCmd(flags, app).Register(root)
	root = NewExportCmd(flags, app).Register(root)
	root = NewImportCmd(flags, app).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)

	tuiCmd := NewTuiCmd(flags, app)
	root.Flags = append(root.Flags, tuiCmd.Flags()...)
	return tuiCmd
}

// WarnLoadProblems prints the store's load warnings for command. The TUI
// shows them as notifications instead, so nothing is printed for it.
func WarnLoadProblems(ctx context.Context, app *ledger.App, command string) {
	if app.Store == nil || command == "" || command == "tui" {
		return
	}
	p := printer.Ctx(ctx)
	for _, w := range app.Store.Warnings() {
		p.Warnf("%v", w)
	}
}
