package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
)

type StatusCmd struct {
	flags *Flags
	app   *ledger.App
}

// NewStatusCmd creates a new status command
func NewStatusCmd(flags *Flags, app *ledger.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: app}
}

// Register adds the status command to the application
func (cmd *StatusCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:          "status",
		Usage:         "Move a violation to another status",
		UsageText:     "violations status <id> <open|in-progress|resolved>",
		ShellComplete: RecordIDCompleter(cmd.app),
		Action:        cmd.run,
	})

	return app
}

func (cmd *StatusCmd) run(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 2, "violations status <id> <open|in-progress|resolved>")
	if err != nil {
		return err
	}

	rec, err := cmd.app.Store.SetStatus(ctx, args[0], violation.Status(args[1]))
	if err := checkMutation(ctx, err); err != nil {
		return err
	}

	printer.Ctx(ctx).Successf("%s is now %s", rec.ID, cmd.app.Config.Vocabulary.StatusLabel(string(rec.Status)))
	return nil
}
