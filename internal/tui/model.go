// Package tui implements the interactive terminal dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"

	"github.com/colonyops/violations/internal/core/eventbus"
	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/ledger"
	"github.com/colonyops/violations/internal/store/jsonfile"
)

type (
	toastTickMsg   struct{}
	fileChangedMsg struct{ name string }
	watchClosedMsg struct{}
)

// Options configures the model.
type Options struct {
	// Changes delivers storage change events; nil disables live reload.
	Changes <-chan jsonfile.ChangeEvent
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	app    *ledger.App
	keys   keyMap
	help   help.Model
	logger zerolog.Logger
	now    func() time.Time

	view          ViewType
	width, height int

	filter       textinput.Model
	filtering    bool
	statusFilter violation.StatusFilter
	cursor       int

	editor        *editor
	confirmDelete string

	notifications *NotificationBuffer
	toasts        ToastController
	changes       <-chan jsonfile.ChangeEvent

	reportCache string
}

// New builds the model over app. Load warnings recorded by the store are
// shown as toasts on start.
func New(ctx context.Context, app *ledger.App, opts Options) *Model {
	filter := textinput.New()
	filter.Placeholder = "search type, priority or description"
	filter.Prompt = "/ "
	filter.CharLimit = 120

	m := &Model{
		ctx:           ctx,
		app:           app,
		keys:          defaultKeyMap(),
		help:          help.New(),
		logger:        opts.Logger,
		now:           opts.Now,
		filter:        filter,
		statusFilter:  violation.StatusAll,
		notifications: NewNotificationBuffer(app.Bus),
		changes:       opts.Changes,
	}
	if m.now == nil {
		m.now = time.Now
	}

	for _, w := range app.Store.Warnings() {
		m.notifications.Push(Notification{Level: eventbus.LevelWarning, Message: w.Error()})
	}
	return m
}

// Run starts the full-screen program and blocks until it exits.
func Run(ctx context.Context, app *ledger.App, opts Options) error {
	_, err := tea.NewProgram(New(ctx, app, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.drain())
}

func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return watchClosedMsg{}
		}
		return fileChangedMsg{name: ev.Name}
	}
}

// drain moves buffered notifications into toasts and starts the tick timer.
func (m *Model) drain() tea.Cmd {
	for _, n := range m.notifications.Drain() {
		m.toasts.Push(n)
	}
	if !m.toasts.HasToasts() || m.toasts.ticking {
		return nil
	}
	m.toasts.ticking = true
	return tickToasts()
}

func tickToasts() tea.Cmd {
	return tea.Tick(toastTickInterval, func(time.Time) tea.Msg { return toastTickMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	return m, tea.Batch(cmd, m.drain())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.reportCache = ""
		if m.editor != nil {
			return m.updateEditor(msg)
		}
		return nil

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return tickToasts()
		}
		m.toasts.ticking = false
		return nil

	case fileChangedMsg:
		changed, err := m.app.Store.Refresh(m.ctx)
		m.report(err)
		if changed {
			m.invalidate()
			m.logger.Debug().Str("file", msg.name).Msg("reloaded after external change")
		}
		return m.waitForChange()

	case watchClosedMsg:
		m.changes = nil
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.editor != nil {
		return m.updateEditor(msg)
	}
	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	if m.editor != nil {
		switch msg.String() {
		case "esc":
			m.closeEditor()
			m.notify(eventbus.LevelInfo, "draft saved; press c to continue editing")
			return nil
		case editorClearKey:
			m.clearDraft()
			return m.openEditor()
		}
		return m.updateEditor(msg)
	}

	if m.confirmDelete != "" {
		id := m.confirmDelete
		m.confirmDelete = ""
		if msg.String() == "y" || msg.String() == "enter" {
			m.report(m.app.Store.Delete(m.ctx, id))
			m.invalidate()
		}
		return nil
	}

	if m.filtering {
		switch msg.String() {
		case "esc":
			m.filtering = false
			m.filter.Blur()
			m.filter.SetValue("")
			m.cursor = 0
			return nil
		case "enter":
			m.filtering = false
			m.filter.Blur()
			return nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.cursor = 0
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.NextTab):
		m.view = m.view.next()
	case key.Matches(msg, m.keys.PrevTab):
		m.view = m.view.prev()
	case key.Matches(msg, m.keys.Dashboard):
		m.view = ViewDashboard
	case key.Matches(msg, m.keys.Violations):
		m.view = ViewViolations
	case key.Matches(msg, m.keys.Reports):
		m.view = ViewReports
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
	case key.Matches(msg, m.keys.Reload):
		m.report(m.app.Store.Reload(m.ctx))
		m.invalidate()
	case key.Matches(msg, m.keys.New):
		if m.app.Store.Draft().Editing() {
			if _, err := m.app.Store.ClearDraft(m.ctx); err != nil {
				m.report(err)
			}
		}
		return m.openEditor()
	case key.Matches(msg, m.keys.Resume):
		return m.openEditor()
	case key.Matches(msg, m.keys.ClearDraft):
		m.clearDraft()
	default:
		if m.view == ViewViolations {
			return m.handleListKey(msg)
		}
	}
	return nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	visible := m.visible()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m.filter.Focus()
	case key.Matches(msg, m.keys.StatusFilter):
		m.statusFilter = m.statusFilter.Next()
		m.cursor = 0
	}

	rec, ok := m.selected(visible)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.CycleStatus):
		_, err := m.app.Store.SetStatus(m.ctx, rec.ID, rec.Status.Next())
		m.report(err)
		m.invalidate()
	case key.Matches(msg, m.keys.Delete):
		m.confirmDelete = rec.ID
	case key.Matches(msg, m.keys.Edit):
		if _, err := m.app.Store.BeginEdit(m.ctx, rec.ID); err != nil {
			m.report(err)
			return nil
		}
		return m.openEditor()
	}
	return nil
}

func (m *Model) openEditor() tea.Cmd {
	m.editor = newEditor(m.app.Store, m.app.Config.Vocabulary)
	return m.editor.Init()
}

// editorClearKey discards the draft while the form is open.
const editorClearKey = "ctrl+x"

// clearDraft resets the draft to an empty new record.
func (m *Model) clearDraft() {
	if _, err := m.app.Store.ClearDraft(m.ctx); err != nil {
		m.report(err)
		return
	}
	m.notify(eventbus.LevelInfo, "draft cleared")
}

func (m *Model) closeEditor() {
	m.editor = nil
	m.invalidate()
}

func (m *Model) updateEditor(msg tea.Msg) tea.Cmd {
	cmd, err := m.editor.Update(m.ctx, msg)
	m.report(err)

	if m.finishEditor(m.editor.State()) {
		return nil
	}
	return cmd
}

// finishEditor submits or discards the editor once the form is done. It
// reports whether the editor was closed.
func (m *Model) finishEditor(state huh.FormState) bool {
	switch state {
	case huh.StateCompleted:
		_, err := m.app.Store.Submit(m.ctx)
		m.report(err)
		m.closeEditor()
		m.view = ViewViolations
		return true
	case huh.StateAborted:
		m.closeEditor()
		return true
	default:
		return false
	}
}

// visible returns the records passing the current filters.
func (m *Model) visible() []violation.Record {
	return m.app.Store.Filter(m.filter.Value(), m.statusFilter)
}

func (m *Model) selected(visible []violation.Record) (violation.Record, bool) {
	if len(visible) == 0 {
		return violation.Record{}, false
	}
	if m.cursor >= len(visible) {
		m.cursor = len(visible) - 1
	}
	return visible[m.cursor], true
}

func (m *Model) invalidate() {
	m.reportCache = ""
	if n := len(m.visible()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// report surfaces an operation error as a toast. Persistence failures keep
// the in-memory change and are shown as warnings.
func (m *Model) report(err error) {
	if err == nil {
		return
	}
	m.logger.Warn().Err(err).Msg("operation failed")
	if errors.Is(err, ledger.ErrPersistence) {
		m.notify(eventbus.LevelWarning, fmt.Sprintf("warning: %v; changes may not survive a reload", err))
		return
	}
	m.notify(eventbus.LevelWarning, err.Error())
}

func (m *Model) notify(level eventbus.Level, msg string) {
	m.notifications.Push(Notification{Level: level, Message: msg, CreatedAt: m.now()})
}
