package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
)

// ErrFormAborted is returned by RunForm when the user cancels. Values typed
// before cancelling stay in the draft.
var ErrFormAborted = errors.New("form aborted")

// formModel runs the draft editor on its own, outside the dashboard.
type formModel struct {
	ctx    context.Context
	editor *editor
	errs   []error
}

func newFormModel(ctx context.Context, app *ledger.App) *formModel {
	return &formModel{ctx: ctx, editor: newEditor(app.Store, app.Config.Vocabulary)}
}

func (m *formModel) Init() tea.Cmd {
	return m.editor.Init()
}

func (m *formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		return m, tea.Quit
	}

	cmd, err := m.editor.Update(m.ctx, msg)
	if err != nil {
		m.errs = append(m.errs, err)
	}
	if m.editor.State() != huh.StateNormal {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *formModel) View() string {
	if m.editor.State() != huh.StateNormal {
		return ""
	}
	return m.editor.View()
}

// finish submits a completed form. Any write failure seen while typing is
// joined into the returned error.
func (m *formModel) finish(ctx context.Context, store *ledger.Store) (violation.Record, error) {
	if m.editor.State() != huh.StateCompleted {
		return violation.Record{}, errors.Join(append([]error{ErrFormAborted}, m.errs...)...)
	}
	rec, err := store.Submit(ctx)
	return rec, errors.Join(append(m.errs, err)...)
}

// RunForm shows the draft form on the terminal, writing each change through
// to the store, and submits the draft when the form completes.
func RunForm(ctx context.Context, app *ledger.App) (violation.Record, error) {
	m := newFormModel(ctx, app)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return violation.Record{}, fmt.Errorf("run form: %w", err)
	}
	return m.finish(ctx, app.Store)
}
