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

type DraftCmd struct {
	flags *Flags
	app   *ledger.App

	jsonOutput bool
}

// NewDraftCmd creates a new draft command
func NewDraftCmd(flags *Flags, app *ledger.App) *DraftCmd {
	return &DraftCmd{flags: flags, app: app}
}

// Register adds the draft command to the application
func (cmd *DraftCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "draft",
		Usage: "Work with the in-progress form",
		Description: `The draft holds a violation that has not been submitted yet. It is saved
after every change, so it can be filled in over several invocations or
continued in the TUI.`,
		Commands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Print the draft",
				UsageText: "violations draft show [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runShow,
			},
			{
				Name:      "set",
				Usage:     "Set one draft field",
				UsageText: "violations draft set <field> <value>",
				Description: fmt.Sprintf("Fields: %v. Dashes and underscores are accepted, e.g. actions-taken.",
					violation.FieldNames),
				Action: cmd.runSet,
			},
			{
				Name:        "clear",
				Usage:       "Reset the draft to an empty form",
				UsageText:   "violations draft clear",
				Description: "Clears every field, restores the default time window and unbinds any record being edited.",
				Action:      cmd.runClear,
			},
			{
				Name:          "edit",
				Usage:         "Load a record into the draft for editing",
				UsageText:     "violations draft edit <id>",
				ShellComplete: RecordIDCompleter(cmd.app),
				Action:        cmd.runEdit,
			},
			{
				Name:        "submit",
				Usage:       "Save the draft as a record",
				UsageText:   "violations draft submit",
				Description: "Updates the bound record when editing, otherwise creates a new one. The draft is reset afterwards.",
				Action:      cmd.runSubmit,
			},
		},
	})

	return app
}

func (cmd *DraftCmd) runShow(ctx context.Context, c *cli.Command) error {
	draft := cmd.app.Store.Draft()
	out := c.Root().Writer

	if cmd.jsonOutput {
		return iojson.WriteLine(out, draft)
	}

	target := "(new record)"
	if draft.Editing() {
		target = draft.EditTargetID
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "editing\t%s\n", target)
	for _, name := range violation.FieldNames {
		v, _ := draft.Get(name)
		_, _ = fmt.Fprintf(w, "%s\t%s\n", name, v)
	}
	_, _ = fmt.Fprintf(w, "duration\t%s\n", violation.ComputeDuration(draft.StartTime, draft.EndTime))
	return w.Flush()
}

func (cmd *DraftCmd) runSet(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 2, "violations draft set <field> <value>")
	if err != nil {
		return err
	}

	_, err = cmd.app.Store.UpdateDraftField(ctx, args[0], args[1])
	return checkMutation(ctx, err)
}

func (cmd *DraftCmd) runClear(ctx context.Context, c *cli.Command) error {
	_, err := cmd.app.Store.ClearDraft(ctx)
	if err := checkMutation(ctx, err); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("draft cleared")
	return nil
}

func (cmd *DraftCmd) runEdit(ctx context.Context, c *cli.Command) error {
	args, err := requireArgs(c, 1, "violations draft edit <id>")
	if err != nil {
		return err
	}

	_, err = cmd.app.Store.BeginEdit(ctx, args[0])
	if err := checkMutation(ctx, err); err != nil {
		return err
	}
	printer.Ctx(ctx).Successf("draft now edits %s", args[0])
	return nil
}

func (cmd *DraftCmd) runSubmit(ctx context.Context, c *cli.Command) error {
	editing := cmd.app.Store.Draft().Editing()

	rec, err := cmd.app.Store.Submit(ctx)
	if err := checkMutation(ctx, err); err != nil {
		return err
	}

	verb := "recorded"
	if editing {
		verb = "updated"
	}
	printer.Ctx(ctx).Successf("%s %s", verb, rec.ID)
	return nil
}
