package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/doctor"
	"github.com/colonyops/violations/internal/core/styles"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/pkg/iojson"
)

type DoctorCmd struct {
	flags  *Flags
	app    *ledger.App
	format string
}

func NewDoctorCmd(flags *Flags, app *ledger.App) *DoctorCmd {
	return &DoctorCmd{flags: flags, app: app}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your violations setup",
		UsageText:   "violations doctor [options]",
		Description: "Checks configuration, the data directory, the stored collection and the export destination.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.app.Config
	results := doctor.RunAll(ctx, []doctor.Check{
		doctor.NewConfigCheck(cfg, cmd.flags.ConfigPath),
		doctor.NewDataDirCheck(cfg.DataDir),
		doctor.NewStorageCheck(cmd.app.Store, cfg.Storage.Driver),
		doctor.NewExportCheck(cfg.Export),
	})

	if cmd.format == "json" {
		return cmd.outputJSON(c, results)
	}

	return cmd.outputText(c, results)
}

func (cmd *DoctorCmd) outputJSON(c *cli.Command, results []doctor.Result) error {
	tally := doctor.Summarize(results)

	out := struct {
		Healthy bool            `json:"healthy"`
		Summary doctor.Tally    `json:"summary"`
		Checks  []doctor.Result `json:"checks"`
	}{
		Healthy: tally.Healthy(),
		Summary: tally,
		Checks:  results,
	}

	if err := iojson.WriteWith(c.Root().Writer, os.Stderr, out); err != nil {
		return err
	}
	if !tally.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *DoctorCmd) outputText(c *cli.Command, results []doctor.Result) error {
	w := c.Root().Writer

	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render("Violations Doctor"))
	_, _ = fmt.Fprintln(w, styles.DividerStyle.Render(strings.Repeat("─", 40)))

	for _, result := range results {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.LabelStyle.Render(result.Name))

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.MutedStyle.Render(item.Detail)
			}
			_, _ = fmt.Fprintf(w, "  %s %s%s\n", statusIcon(item.Status), item.Label, detail)
		}
	}

	tally := doctor.Summarize(results)
	_, _ = fmt.Fprintf(w, "\n%s  %s  %s\n",
		styles.StatusResolvedStyle.Render(fmt.Sprintf("%d passed", tally.Passed)),
		styles.StatusInProgressStyle.Render(fmt.Sprintf("%d warnings", tally.Warned)),
		styles.StatusOpenStyle.Render(fmt.Sprintf("%d failed", tally.Failed)),
	)

	if !tally.Healthy() {
		return cli.Exit("", 1)
	}
	return nil
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusPass:
		return styles.StatusResolvedStyle.Render("✔")
	case doctor.StatusWarn:
		return styles.StatusInProgressStyle.Render("●")
	default:
		return styles.StatusOpenStyle.Render("✘")
	}
}
