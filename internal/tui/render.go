package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/violations/internal/core/eventbus"
	"github.com/colonyops/violations/internal/core/styles"
	"github.com/colonyops/violations/internal/core/violation"
	"github.com/colonyops/violations/internal/report"
)

func (m *Model) View() string {
	var body string
	switch {
	case m.editor != nil:
		body = lipgloss.JoinVertical(lipgloss.Left,
			styles.ModalStyle.Render(m.editor.View()),
			styles.HelpStyle.Render("esc keep draft • "+editorClearKey+" clear draft"),
		)
	case m.view == ViewDashboard:
		body = m.renderDashboard()
	case m.view == ViewViolations:
		body = m.renderViolations()
	default:
		body = m.renderReports()
	}

	sections := []string{m.renderTabs(), body}
	if t := m.renderToasts(); t != "" {
		sections = append(sections, t)
	}
	if m.editor == nil {
		sections = append(sections, styles.HelpStyle.Render(m.help.View(m.keys)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, len(viewOrder))
	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v.Title())
		if v == m.view {
			tabs = append(tabs, styles.ViewSelectedStyle.Render(label))
		} else {
			tabs = append(tabs, styles.ViewNormalStyle.Render(label))
		}
	}

	header := styles.HeaderStyle.Render("Violations")
	if m.app.Store.Draft().Editing() {
		header += styles.MutedStyle.Render(" · editing draft")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", strings.Join(tabs, " ")) + "\n"
}

func (m *Model) renderDashboard() string {
	stats := m.app.Store.Stats()
	vocab := m.app.Config.Vocabulary

	card := func(title string, value int) string {
		return styles.CardStyle.Render(
			styles.MutedStyle.Render(title) + "\n" + styles.CardValueStyle.Render(fmt.Sprint(value)),
		)
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", stats.Total),
		card(vocab.StatusLabel(string(violation.StatusOpen)), stats.Open),
		card(vocab.StatusLabel(string(violation.StatusInProgress)), stats.InProgress),
		card(vocab.StatusLabel(string(violation.StatusResolved)), stats.Resolved),
	)

	var b strings.Builder
	b.WriteString(cards)
	b.WriteString("\n\n")
	b.WriteString(styles.LabelStyle.Render("Recent violations"))
	b.WriteString("\n")

	recent := violation.Recent(m.app.Store.Records(), m.app.Config.TUI.RecentCount)
	if len(recent) == 0 {
		b.WriteString(styles.MutedStyle.Render("No violations yet. Press n to record one."))
		return b.String()
	}
	for _, r := range recent {
		b.WriteString(m.renderRow(r, false))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderViolations() string {
	var b strings.Builder

	filterLine := m.filter.View()
	if !m.filtering && m.filter.Value() == "" {
		filterLine = styles.MutedStyle.Render("/ search")
	}
	status := "all"
	if m.statusFilter != violation.StatusAll {
		status = m.app.Config.Vocabulary.StatusLabel(string(m.statusFilter))
	}
	b.WriteString(filterLine + "   " + styles.MutedStyle.Render("status: ") + styles.LabelStyle.Render(status))
	b.WriteString("\n\n")

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(styles.MutedStyle.Render("No violations match."))
		return b.String()
	}

	b.WriteString(" " + styles.TableHeaderStyle.Render(m.columns(columnWidths, 0, "Status", "Type", "Priority", "Duration", "Description")))
	b.WriteString("\n")

	start, end := m.window(len(visible))
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(visible[i], i == m.cursor))
		b.WriteString("\n")
	}

	if m.confirmDelete != "" {
		b.WriteString("\n")
		b.WriteString(styles.NotifyWarningStyle.Render("Delete this violation? (y/N)"))
	}
	return b.String()
}

// window returns the slice of rows that fits the terminal around the cursor.
func (m *Model) window(n int) (int, int) {
	rows := m.height - 10
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := max(m.cursor-rows/2, 0)
	end := min(start+rows, n)
	return end - rows, end
}

var columnWidths = []int{12, 26, 12, 9}

// columns lays cells out in fixed widths; the final cell takes the rest of
// the line after offset columns already used.
func (m *Model) columns(widths []int, offset int, cells ...string) string {
	used := offset
	parts := make([]string, 0, len(cells))
	for i, c := range cells {
		if i < len(widths) {
			parts = append(parts, pad(c, widths[i]))
			used += widths[i] + 1
			continue
		}
		width := 60
		if m.width > 0 {
			width = max(m.width-used-2, 10)
		}
		parts = append(parts, ansi.Truncate(c, width, "…"))
	}
	return strings.Join(parts, " ")
}

func pad(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if n := ansi.StringWidth(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}

func (m *Model) renderRow(r violation.Record, selected bool) string {
	vocab := m.app.Config.Vocabulary

	status := styles.StatusStyle(string(r.Status)).Render(pad(vocab.StatusLabel(string(r.Status)), columnWidths[0]))
	rest := m.columns(columnWidths[1:], columnWidths[0]+1,
		vocab.TypeLabel(r.Type),
		vocab.PriorityLabel(r.Priority),
		r.Duration(),
		strings.ReplaceAll(r.Description, "\n", " "),
	)

	line := status + " " + rest
	if selected {
		return styles.RowSelectedStyle.Render("▌" + line)
	}
	return " " + line
}

func (m *Model) renderReports() string {
	if m.reportCache != "" {
		return m.reportCache
	}

	vocab := m.app.Config.Vocabulary
	md := m.app.Report(m.now()).Markdown(vocab)

	out, err := report.Render(md, m.width)
	if err != nil {
		m.logger.Warn().Err(err).Msg("render report")
		out = md
	}
	m.reportCache = out
	return out
}

func (m *Model) renderToasts() string {
	toasts := m.toasts.Toasts()
	if len(toasts) == 0 {
		return ""
	}

	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style := styles.NotifyInfoStyle
		if t.notification.Level == eventbus.LevelWarning {
			style = styles.NotifyWarningStyle
		}
		lines = append(lines, style.Render(ansi.Truncate(t.notification.Message, toastWidth, "…")))
	}
	return strings.Join(lines, "\n")
}
