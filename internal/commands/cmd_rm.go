package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
)

type RmCmd struct {
	flags *Flags
	app   *ledger.App
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, app *ledger.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:          "rm",
		Usage:         "Delete violations",
		UsageText:     "violations rm <id> [id...]",
		Description:   "Removes the given records. Unknown ids are ignored.",
		ShellComplete: RecordIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("usage: violations rm <id> [id...]")
	}

	p := printer.Ctx(ctx)
	for _, id := range c.Args().Slice() {
		if _, err := cmd.app.Store.Get(id); err != nil {
			p.Infof("%s: not found, skipped", id)
			continue
		}
		if err := checkMutation(ctx, cmd.app.Store.Delete(ctx, id)); err != nil {
			return err
		}
		p.Successf("deleted %s", id)
	}
	return nil
}
