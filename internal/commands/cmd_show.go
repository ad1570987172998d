package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/styles"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/pkg/iojson"
)

type ShowCmd struct {
	flags *Flags
	app   *ledger.App

	jsonOutput bool
}

// NewShowCmd creates a new show command
func NewShowCmd(flags *Flags, app *ledger.App) *ShowCmd {
	return &ShowCmd{flags: flags, app: app}
}

// Register adds the show command to the application
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show a single violation",
		UsageText: "violations show <id> [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: RecordIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1, "violations show <id>")
	if err != nil {
		return err
	}

	rec, err := cmd.app.Store.Get(args[0])
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteLine(out, rec)
	}

	vocab := cmd.app.Config.Vocabulary
	_, _ = fmt.Fprintln(out, styles.CommandHeaderStyle.Render("Violation "+rec.ID))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Status", styles.StatusStyle(string(rec.Status)).Render(vocab.StatusLabel(string(rec.Status)))},
		{"Type", vocab.TypeLabel(rec.Type)},
		{"Priority", vocab.PriorityLabel(rec.Priority)},
		{"Department", rec.Department},
		{"Category", rec.Category},
		{"Start", rec.StartTime},
		{"End", rec.EndTime},
		{"Duration", rec.Duration()},
		{"Description", rec.Description},
		{"Actions taken", rec.ActionsTaken},
		{"Created", rec.CreatedAt.Local().Format("2006-01-02 15:04")},
	}
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", styles.LabelStyle.Render(row[0]), row[1])
	}
	return w.Flush()
}
