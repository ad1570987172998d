package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/report"
	"github.com/colonyops/violations/pkg/iojson"
)

const defaultReportWidth = 100

type ReportCmd struct {
	flags *Flags
	app   *ledger.App

	jsonOutput bool
	markdown   bool
	recent     int
}

// NewReportCmd creates a new report command
func NewReportCmd(flags *Flags, app *ledger.App) *ReportCmd {
	return &ReportCmd{flags: flags, app: app}
}

// Register adds the report command to the application
func (cmd *ReportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "report",
		Usage:     "Summarize violations",
		UsageText: "violations report [--markdown | --json] [--recent n]",
		Description: `Renders status counts, breakdowns by type and priority, and the most
recent records. Output is styled for the terminal unless --markdown or --json
is given.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "markdown",
				Usage:       "print the unrendered markdown",
				Destination: &cmd.markdown,
			},
			&cli.IntFlag{
				Name:        "recent",
				Usage:       "number of recent records to list (defaults to tui.recent_count)",
				Destination: &cmd.recent,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ReportCmd) run(ctx context.Context, c *cli.Command) error {
	recent := cmd.app.Config.TUI.RecentCount
	if cmd.recent > 0 {
		recent = cmd.recent
	}

	vocab := cmd.app.Config.Vocabulary
	rep := report.Build(cmd.app.Store.Records(), recent, vocab, time.Now())

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, rep)
	}

	md := rep.Markdown(vocab)
	if cmd.markdown {
		_, err := fmt.Fprint(out, md)
		return err
	}

	rendered, err := report.Render(md, terminalWidth())
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultReportWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultReportWidth
	}
	return w
}
