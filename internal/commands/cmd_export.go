package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
	"github.com/colonyops/violations/pkg/iojson"
)

type ExportCmd struct {
	flags *Flags
	app   *ledger.App

	format     string
	dest       string
	jsonOutput bool
}

// NewExportCmd creates a new export command
func NewExportCmd(flags *Flags, app *ledger.App) *ExportCmd {
	return &ExportCmd{flags: flags, app: app}
}

// Register adds the export command to the application
func (cmd *ExportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "export",
		Usage:     "Export all violations to a file",
		UsageText: "violations export [--format json|xlsx] [--dest dir|s3://bucket/prefix]",
		Description: `Writes every record to violations-export.json or violations-export.xlsx.

The destination is a local directory or an s3:// URL. Defaults come from the
export section of the config file.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "export format (json, xlsx)",
				Destination: &cmd.format,
			},
			&cli.StringFlag{
				Name:        "dest",
				Aliases:     []string{"d"},
				Usage:       "destination directory or s3:// URL",
				Destination: &cmd.dest,
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

func (cmd *ExportCmd) run(ctx context.Context, c *cli.Command) error {
	res, err := cmd.app.Export(ctx, cmd.format, cmd.dest)
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.WriteLine(c.Root().Writer, res)
	}
	printer.Ctx(ctx).Successf("exported %d record(s) to %s", res.Count, res.Location)
	return nil
}
