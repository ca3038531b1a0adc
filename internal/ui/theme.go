package ui

import "github.com/charmbracelet/lipgloss"

// Theme bundles the palette and borders every renderer pulls from.
type Theme struct {
	Name string
	Dark bool

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	Selected, Help, Clock                         lipgloss.Style
	BorderColor                                   lipgloss.Color
	Border                                        lipgloss.Border
}

var current = light()

func light() Theme {
	return Theme{
		Name:        "light",
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("24")),
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("25")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
		Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("166")),
		Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
		Help:        lipgloss.NewStyle().Faint(true),
		Clock:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		BorderColor: lipgloss.Color("250"),
		Border:      lipgloss.RoundedBorder(),
	}
}

func dark() Theme {
	return Theme{
		Name:        "dark",
		Dark:        true,
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")),
		Muted:       lipgloss.NewStyle().Faint(true),
		Accent:      lipgloss.NewStyle().Foreground(lipgloss.Color("87")),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Pending:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Selected:    lipgloss.NewStyle().Bold(true).Reverse(true),
		Help:        lipgloss.NewStyle().Faint(true),
		Clock:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		BorderColor: lipgloss.Color("8"),
		Border:      lipgloss.RoundedBorder(),
	}
}

// SetTheme switches between the dark and light palettes.
func SetTheme(darkMode bool) {
	if darkMode {
		current = dark()
		return
	}
	current = light()
}

// Expose what renderers need
func Current() Theme { return current }
