package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/violations/internal/core/config"
	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/printer"
)

// fieldFlag binds a CLI flag to one record field.
type fieldFlag struct {
	name  string
	field string
	usage string
}

var fieldFlagDefs = []fieldFlag{
	{"type", violation.FieldType, "violation type (" + optionValues(config.DefaultVocabulary().Types) + ")"},
	{"priority", violation.FieldPriority, "priority (" + optionValues(config.DefaultVocabulary().Priorities) + ")"},
	{"department", violation.FieldDepartment, "department name"},
	{"category", violation.FieldCategory, "category"},
	{"start", violation.FieldStartTime, "start time (YYYY-MM-DDTHH:MM)"},
	{"end", violation.FieldEndTime, "end time (YYYY-MM-DDTHH:MM)"},
	{"description", violation.FieldDescription, "description of the violation"},
	{"actions", violation.FieldActionsTaken, "actions taken"},
}

func optionValues(opts []config.Option) string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return strings.Join(values, ", ")
}

func fieldFlags() []cli.Flag {
	flags := make([]cli.Flag, 0, len(fieldFlagDefs))
	for _, def := range fieldFlagDefs {
		flags = append(flags, &cli.StringFlag{Name: def.name, Usage: def.usage})
	}
	return flags
}

// applyFieldFlags copies every field flag the user set onto base.
func applyFieldFlags(c *cli.Command, base violation.Fields) (violation.Fields, int) {
	set := 0
	for _, def := range fieldFlagDefs {
		if !c.IsSet(def.name) {
			continue
		}
		_ = base.Set(def.field, c.String(def.name))
		set++
	}
	return base, set
}

// requireArgs returns the first n positional arguments.
func requireArgs(c *cli.Command, n int, usage string) ([]string, error) {
	if c.Args().Len() != n {
		return nil, fmt.Errorf("usage: %s", usage)
	}
	return c.Args().Slice(), nil
}

// checkMutation turns a persistence failure into a warning. The change
// already applied in memory, but the process is about to exit, so the
// command still fails.
func checkMutation(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ledger.ErrPersistence) {
		printer.Ctx(ctx).Warnf("%v; changes may not survive a reload", err)
	}
	return err
}
