package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
)

type EditCmd struct {
	flags *Flags
	app   *ledger.App
}

// NewEditCmd creates a new edit command
func NewEditCmd(flags *Flags, app *ledger.App) *EditCmd {
	return &EditCmd{flags: flags, app: app}
}

// Register adds the edit command to the application
func (cmd *EditCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:          "edit",
		Usage:         "Change fields of an existing violation",
		UsageText:     "violations edit <id> [--type ...] [--priority ...]",
		Description:   "Only the flags given are changed. Status, id and creation time are kept.",
		Flags:         fieldFlags(),
		ShellComplete: RecordIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *EditCmd) run(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1, "violations edit <id> [field flags]")
	if err != nil {
		return err
	}

	rec, err := cmd.app.Store.Get(args[0])
	if err != nil {
		return err
	}

	fields, n := applyFieldFlags(c, rec.Fields)
	if n == 0 {
		return fmt.Errorf("nothing to change; pass at least one field flag")
	}

	updated, err := cmd.app.Store.Update(ctx, rec.ID, fields)
	if err := checkMutation(ctx, err); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("updated %s", updated.ID)
	return nil
}
