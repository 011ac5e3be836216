package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view.
type Theme struct {
	Name     string
	Accent   lipgloss.Color
	Canvas   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Selected lipgloss.Color
	Warning  lipgloss.Color
	Error    lipgloss.Color
}

var (
	ThemeDark = Theme{
		Name:     "dark",
		Accent:   lipgloss.Color("86"),
		Canvas:   lipgloss.Color("#1293d8"),
		Text:     lipgloss.Color("252"),
		Muted:    lipgloss.Color("245"),
		Selected: lipgloss.Color("205"),
		Warning:  lipgloss.Color("220"),
		Error:    lipgloss.Color("196"),
	}

	ThemeRetro = Theme{
		Name:     "retro",
		Accent:   lipgloss.Color("#00ff00"),
		Canvas:   lipgloss.Color("#00cc00"),
		Text:     lipgloss.Color("#88ff88"),
		Muted:    lipgloss.Color("#005500"),
		Selected: lipgloss.Color("#ffff00"),
		Warning:  lipgloss.Color("#ffff00"),
		Error:    lipgloss.Color("#ff0000"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Accent:   lipgloss.Color("#ffffff"),
		Canvas:   lipgloss.Color("#cccccc"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
		Selected: lipgloss.Color("#0088ff"),
		Warning:  lipgloss.Color("#ffaa00"),
		Error:    lipgloss.Color("#ff0000"),
	}
)

var themes = []Theme{ThemeDark, ThemeRetro, ThemeMinimal}

// styles is the set of lipgloss styles derived from one Theme.
type styles struct {
	canvas   lipgloss.Style
	panel    lipgloss.Style
	header   lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	selected lipgloss.Style
	graph    lipgloss.Style
	help     lipgloss.Style
	warning  lipgloss.Style
	err      lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Foreground(t.Canvas).Padding(1, 2),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(46),
		header:   lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:    lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:    lipgloss.NewStyle().Foreground(t.Text),
		selected: lipgloss.NewStyle().Foreground(t.Selected).Bold(true),
		graph:    lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:     lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		warning:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		err:      lipgloss.NewStyle().Foreground(t.Error).Bold(true),
	}
}

// ThemeNames lists the available themes in cycling order.
func ThemeNames() []string {
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// ThemeByName returns the named theme, falling back to the first one.
func ThemeByName(name string) (Theme, int) {
	for i, t := range themes {
		if t.Name == name {
			return t, i
		}
	}
	return themes[0], 0
}
