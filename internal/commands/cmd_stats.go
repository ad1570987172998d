package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
	"github.com/colonyops/violations/pkg/iojson"
)

type StatsCmd struct {
	flags *Flags
	app   *ledger.App

	jsonOutput   bool
	promTextfile string
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, app *ledger.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "stats",
		Usage:     "Show counts by status",
		UsageText: "violations stats [--json] [--prom-textfile path.prom]",
		Description: `Prints total, open, in-progress and resolved counts plus the share of
resolved records.

--prom-textfile also writes the counts in Prometheus text format, for the
node_exporter textfile collector.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.StringFlag{
				Name:        "prom-textfile",
				Usage:       "write metrics to this .prom file",
				Destination: &cmd.promTextfile,
			},
		},
		Action: cmd.run,
	})

	return app
}

type statsOutput struct {
	violation.Stats
	Active          int `json:"active"`
	PercentResolved int `json:"percentResolved"`
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	stats := cmd.app.Store.Stats()

	if cmd.promTextfile != "" {
		if err := cmd.app.WriteMetricsTo(cmd.promTextfile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		printer.Ctx(ctx).Infof("metrics written to %s", cmd.promTextfile)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, statsOutput{
			Stats:           stats,
			Active:          stats.Active(),
			PercentResolved: stats.PercentResolved(),
		})
	}

	vocab := cmd.app.Config.Vocabulary
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total\t%d\n", stats.Total)
	for _, s := range violation.Statuses {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", vocab.StatusLabel(string(s)), stats.Count(s))
	}
	_, _ = fmt.Fprintf(w, "Resolved\t%d%%\n", stats.PercentResolved())
	return w.Flush()
}
