package commands

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
	"github.com/colonyops/violations/internal/tui"
)

type FormCmd struct {
	flags *Flags
	app   *ledger.App

	edit string
}

// NewFormCmd creates a new form command
func NewFormCmd(flags *Flags, app *ledger.App) *FormCmd {
	return &FormCmd{flags: flags, app: app}
}

// Register adds the form command to the application
func (cmd *FormCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "form",
		Usage:     "Fill in the draft interactively",
		UsageText: "violations form [--edit id]",
		Description: `Opens the violation form in the terminal, starting from the saved draft.
Each answer is saved as it is entered; press ctrl+c to stop and continue later.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "edit",
				Aliases:     []string{"e"},
				Usage:       "load this record into the draft first",
				Destination: &cmd.edit,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FormCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.edit != "" {
		if _, err := cmd.app.Store.BeginEdit(ctx, cmd.edit); err != nil {
			return checkMutation(ctx, err)
		}
	}

	rec, err := tui.RunForm(ctx, cmd.app)
	if errors.Is(err, tui.ErrFormAborted) {
		p.Infof("draft kept; run 'violations form' to continue")
		return nil
	}
	if err := checkMutation(ctx, err); err != nil {
		return err
	}

	p.Successf("saved %s", rec.ID)
	return nil
}
