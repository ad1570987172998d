package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/ledger"
)

// RecordIDCompleter returns a ShellCompleteFunc that suggests record ids as
// the first positional argument, with the record type as a description.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func RecordIDCompleter(app *ledger.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		args := cmd.Args()
		if args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
			if args.Len() > 1 {
				return
			}
		}

		if app.Store == nil {
			return
		}

		w := cmd.Root().Writer
		for _, r := range app.Store.Records() {
			_, _ = fmt.Fprintf(w, "%s:%s\n", r.ID, app.Config.Vocabulary.TypeLabel(r.Type))
		}
	}
}
