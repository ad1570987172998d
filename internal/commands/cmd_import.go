package commands

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
	"github.com/colonyops/violations/pkg/iojson"
)

type ImportCmd struct {
	flags *Flags
	app   *ledger.App

	input      iojson.FileReader[[]violation.Record]
	glob       string
	jsonOutput bool
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *ledger.App) *ImportCmd {
	return &ImportCmd{flags: flags, app: app}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "import",
		Usage:     "Import violations from JSON exports",
		UsageText: "violations import [-f file | --glob 'exports/**/*.json'] < export.json",
		Description: `Appends records from JSON arrays such as those written by 'violations export'.

Records whose id already exists are skipped. Records without an id get a new
one, and unknown statuses are imported as open. Older exports that use the
field1..field8 keys are accepted.`,
		Flags: []cli.Flag{
			cmd.input.Flag(),
			&cli.StringFlag{
				Name:        "glob",
				Aliases:     []string{"g"},
				Usage:       "import every file matching this pattern (supports **)",
				Destination: &cmd.glob,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the result as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

type importOutput struct {
	Files    int      `json:"files"`
	Added    int      `json:"added"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings,omitempty"`
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	records, files, err := cmd.read()
	if err != nil {
		return err
	}

	res, err := cmd.app.Store.Import(ctx, records)
	if err := checkMutation(ctx, err); err != nil {
		return err
	}

	out := importOutput{Files: files, Added: res.Added, Skipped: res.Skipped}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, out)
	}

	p := printer.Ctx(ctx)
	for _, w := range out.Warnings {
		p.Warnf("%s", w)
	}
	p.Successf("imported %d record(s), skipped %d", out.Added, out.Skipped)
	return nil
}

// read collects records from the glob matches, or from the file flag/stdin.
func (cmd *ImportCmd) read() ([]violation.Record, int, error) {
	if cmd.glob == "" {
		records, err := cmd.input.Read()
		if err != nil {
			return nil, 0, err
		}
		return records, 1, nil
	}

	if cmd.input.Path() != "" {
		return nil, 0, fmt.Errorf("--file and --glob cannot be combined")
	}

	paths, err := doublestar.FilepathGlob(cmd.glob, doublestar.WithFilesOnly())
	if err != nil {
		return nil, 0, fmt.Errorf("expand %q: %w", cmd.glob, err)
	}
	if len(paths) == 0 {
		return nil, 0, fmt.Errorf("no files match %q", cmd.glob)
	}

	var all []violation.Record
	for _, path := range paths {
		records, err := iojson.ReadFile[[]violation.Record](path)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, records...)
	}
	return all, len(paths), nil
}
