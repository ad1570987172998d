package commands

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
	"github.com/colonyops/violations/pkg/iojson"
)

type AddCmd struct {
	flags *Flags
	app   *ledger.App

	jsonOutput bool
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *ledger.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Record a new violation",
		UsageText: "violations add --type safety --priority high --description '...'",
		Description: `Creates an open record from the given fields. Missing start and end
times default to a one hour window starting now.

The in-progress draft is reset, as it is after any submit.`,
		Flags: append(fieldFlags(), &cli.BoolFlag{
			Name:        "json",
			Usage:       "print the new record as JSON",
			Destination: &cmd.jsonOutput,
		}),
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	draft := violation.NewDraft(time.Now())
	fields, _ := applyFieldFlags(c, draft.Fields)

	rec, err := cmd.app.Store.Create(ctx, fields)
	if err := checkMutation(ctx, err); err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, rec)
	}
	printer.Ctx(ctx).Successf("recorded %s", rec.ID)
	return nil
}
