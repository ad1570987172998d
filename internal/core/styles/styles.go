// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// PlainTheme uses the terminal's 16 ANSI colors only.
const PlainTheme = "plain"

var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    "#7aa2f7",
		Secondary:  "#7dcfff",
		Foreground: "#c0caf5",
		Muted:      "#565f89",
		Background: "#1a1b26",
		Surface:    "#3b4261",
		Success:    "#9ece6a",
		Warning:    "#e0af68",
		Error:      "#f7768e",
	},
	"gruvbox": {
		Primary:    "#83a598",
		Secondary:  "#8ec07c",
		Foreground: "#ebdbb2",
		Muted:      "#665c54",
		Background: "#282828",
		Surface:    "#3c3836",
		Success:    "#b8bb26",
		Warning:    "#fabd2f",
		Error:      "#fb4934",
	},
	PlainTheme: {
		Primary:    "4",
		Secondary:  "6",
		Foreground: "7",
		Muted:      "8",
		Background: "0",
		Surface:    "8",
		Success:    "2",
		Warning:    "3",
		Error:      "1",
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// UseTheme activates the named theme.
func UseTheme(name string) error {
	p, ok := GetPalette(name)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	SetTheme(p)
	return nil
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	MutedStyle         lipgloss.Style
	LabelStyle         lipgloss.Style

	// TUI shared styles.
	HeaderStyle       lipgloss.Style
	ViewSelectedStyle lipgloss.Style
	ViewNormalStyle   lipgloss.Style
	RowSelectedStyle  lipgloss.Style
	TableHeaderStyle  lipgloss.Style
	CardStyle         lipgloss.Style
	CardValueStyle    lipgloss.Style
	ModalStyle        lipgloss.Style
	ModalTitleStyle   lipgloss.Style
	HelpStyle         lipgloss.Style

	NotifyInfoStyle    lipgloss.Style
	NotifyWarningStyle lipgloss.Style

	StatusOpenStyle       lipgloss.Style
	StatusInProgressStyle lipgloss.Style
	StatusResolvedStyle   lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Muted)
	MutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	LabelStyle = lipgloss.NewStyle().Foreground(p.Secondary).Bold(true)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Foreground).
		Bold(true).
		Padding(0, 1)
	ViewSelectedStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Underline(true).
		Padding(0, 1)
	ViewNormalStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Padding(0, 1)
	RowSelectedStyle = lipgloss.NewStyle().
		Background(p.Surface).
		Foreground(p.Foreground).
		Bold(true)
	TableHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Bold(true)
	CardStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Padding(0, 2)
	CardValueStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)

	NotifyInfoStyle = lipgloss.NewStyle().Foreground(p.Success)
	NotifyWarningStyle = lipgloss.NewStyle().Foreground(p.Warning).Bold(true)

	StatusOpenStyle = lipgloss.NewStyle().Foreground(p.Error)
	StatusInProgressStyle = lipgloss.NewStyle().Foreground(p.Warning)
	StatusResolvedStyle = lipgloss.NewStyle().Foreground(p.Success)
}

// StatusStyle returns the badge style for a record status value.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case "open":
		return StatusOpenStyle
	case "in-progress":
		return StatusInProgressStyle
	case "resolved":
		return StatusResolvedStyle
	default:
		return MutedStyle
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

// FormTheme returns a huh theme matching the active palette.
func FormTheme() *huh.Theme {
	p := CurrentPalette
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(p.Primary)
	t.Focused.Title = t.Focused.Title.Foreground(p.Primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(p.Muted)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(p.Error)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(p.Error)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(p.Secondary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(p.Success)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(p.Secondary)
	t.Focused.TextInput.Placeholder = t.Focused.TextInput.Placeholder.Foreground(p.Muted)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Title = t.Blurred.Title.Foreground(p.Muted).Bold(false)

	return t
}

func hexPtr(c lipgloss.Color) *string {
	s := string(c)
	if !strings.HasPrefix(s, "#") {
		return nil
	}
	return &s
}

// GlamourStyle returns a Glamour style config derived from the active theme.
// The plain theme maps to glamour's no-color style.
func GlamourStyle() ansi.StyleConfig {
	p := CurrentPalette
	if hexPtr(p.Primary) == nil {
		return glamourstyles.NoTTYStyleConfig
	}

	cfg := glamourstyles.DarkStyleConfig

	fg := hexPtr(p.Foreground)
	primary := hexPtr(p.Primary)
	secondary := hexPtr(p.Secondary)
	muted := hexPtr(p.Muted)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = hexPtr(p.Surface)
	cfg.H2.Color = primary
	cfg.H3.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted
	cfg.Code.Color = secondary
	cfg.Table.Color = fg

	return cfg
}
