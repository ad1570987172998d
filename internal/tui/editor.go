package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/colonyops/violations/internal/core/config"
	"github.com/colonyops/violations/internal/core/styles"
	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
)

// editor wraps a huh form bound to the store's draft. Every changed field is
// written through Store.UpdateDraftField as soon as the form reports it, so
// an interrupted edit survives a restart.
type editor struct {
	store  *ledger.Store
	form   *huh.Form
	values map[string]*string
	title  string
}

func newEditor(store *ledger.Store, vocab config.Vocabulary) *editor {
	draft := store.Draft()

	e := &editor{
		store:  store,
		values: make(map[string]*string, len(violation.FieldNames)),
		title:  "New violation",
	}
	if draft.Editing() {
		e.title = "Edit violation"
	}

	for _, name := range violation.FieldNames {
		v, _ := draft.Get(name)
		e.values[name] = &v
	}

	e.form = newDraftForm(e.values, vocab).WithTheme(styles.FormTheme()).WithShowHelp(true)
	return e
}

// newDraftForm builds the violation form over values, keyed by canonical
// field name. Every field name in violation.FieldNames must be present.
func newDraftForm(values map[string]*string, vocab config.Vocabulary) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Type").
				Options(options(vocab.Types, *values[violation.FieldType])...).
				Value(values[violation.FieldType]),
			huh.NewSelect[string]().
				Title("Priority").
				Options(options(vocab.Priorities, *values[violation.FieldPriority])...).
				Value(values[violation.FieldPriority]),
			huh.NewInput().
				Title("Department").
				Value(values[violation.FieldDepartment]),
			huh.NewInput().
				Title("Category").
				Value(values[violation.FieldCategory]),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Start").
				Description("YYYY-MM-DDTHH:MM").
				Validate(validateTimestamp).
				Value(values[violation.FieldStartTime]),
			huh.NewInput().
				Title("End").
				Description("YYYY-MM-DDTHH:MM").
				Validate(validateTimestamp).
				Value(values[violation.FieldEndTime]),
			huh.NewText().
				Title("Description").
				Value(values[violation.FieldDescription]),
			huh.NewText().
				Title("Actions taken").
				Value(values[violation.FieldActionsTaken]),
		),
	)
}

// options lists the vocabulary plus the current value when it is not part of it.
func options(vocab []config.Option, current string) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(vocab)+2)
	opts = append(opts, huh.NewOption("(none)", ""))

	known := current == ""
	for _, o := range vocab {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		opts = append(opts, huh.NewOption(label, o.Value))
		known = known || o.Value == current
	}
	if !known {
		opts = append(opts, huh.NewOption(current, current))
	}
	return opts
}

func validateTimestamp(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.ParseInLocation(violation.TimeLayout, s, time.Local); err != nil {
		return fmt.Errorf("use %s", "YYYY-MM-DDTHH:MM")
	}
	return nil
}

func (e *editor) Init() tea.Cmd {
	return e.form.Init()
}

// Update forwards msg to the form and persists any field the form changed.
func (e *editor) Update(ctx context.Context, msg tea.Msg) (tea.Cmd, error) {
	model, cmd := e.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		e.form = f
	}
	return cmd, e.sync(ctx)
}

// sync writes every form value that differs from the stored draft.
func (e *editor) sync(ctx context.Context) error {
	draft := e.store.Draft()

	var errs []error
	for _, name := range violation.FieldNames {
		current, _ := draft.Get(name)
		if v := *e.values[name]; v != current {
			if _, err := e.store.UpdateDraftField(ctx, name, v); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (e *editor) State() huh.FormState {
	return e.form.State
}

func (e *editor) View() string {
	return styles.ModalTitleStyle.Render(e.title) + "\n\n" + e.form.View()
}
