package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/x/ansi"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/pkg/iojson"
)

const descriptionWidth = 40

type LsCmd struct {
	flags *Flags
	app   *ledger.App

	// flags
	query      string
	status     string
	jsonOutput bool
	raw        bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *ledger.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List violations",
		UsageText: "violations ls [--query text] [--status open|in-progress|resolved|all] [--json]",
		Description: `Displays the records in the order they were recorded, oldest first.

--query matches type, priority and description without regard to case.
Use --json for one JSON document per record.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "query",
				Aliases:     []string{"q"},
				Usage:       "text to search for",
				Destination: &cmd.query,
			},
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "status filter (all, open, in-progress, resolved)",
				Value:       string(violation.StatusAll),
				Destination: &cmd.status,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "show stored values instead of display labels",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	filter, err := violation.ParseStatusFilter(cmd.status)
	if err != nil {
		return err
	}

	records := cmd.app.Store.Filter(cmd.query, filter)
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range records {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
		}
		return nil
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No violations found")
		return nil
	}

	labels := cmd.labels()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tPRIORITY\tDEPARTMENT\tSTART\tDURATION\tDESCRIPTION")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			labels.StatusLabel(string(r.Status)),
			labels.TypeLabel(r.Type),
			labels.PriorityLabel(r.Priority),
			r.Department,
			r.StartTime,
			r.Duration(),
			ansi.Truncate(r.Description, descriptionWidth, "…"),
		)
	}
	return w.Flush()
}

func (cmd *LsCmd) labels() labeler {
	if cmd.raw {
		return rawLabels{}
	}
	return cmd.app.Config.Vocabulary
}

type labeler interface {
	TypeLabel(string) string
	PriorityLabel(string) string
	StatusLabel(string) string
}

type rawLabels struct{}

func (rawLabels) TypeLabel(v string) string     { return v }
func (rawLabels) PriorityLabel(v string) string { return v }
func (rawLabels) StatusLabel(v string) string   { return v }
