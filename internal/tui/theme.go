package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header      lipgloss.Style
	panel       lipgloss.Style
	panelActive lipgloss.Style
	title       lipgloss.Style
	row         lipgloss.Style
	rowSelected lipgloss.Style
	badge       lipgloss.Style
	muted       lipgloss.Style
	mine        lipgloss.Style
	other       lipgloss.Style
	avatar      lipgloss.Style
	dropdown    lipgloss.Style
	pick        lipgloss.Style
	status      lipgloss.Style
	alert       lipgloss.Style
	help        lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	pink := lipgloss.Color("#ff71ce")
	muted := lipgloss.Color("#9ca3d8")
	text := lipgloss.Color("#f3f3ff")

	return theme{
		header: lipgloss.NewStyle().Foreground(accent).Bold(true),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted),
		panelActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
		title:       lipgloss.NewStyle().Foreground(text).Bold(true),
		row:         lipgloss.NewStyle().Foreground(text),
		rowSelected: lipgloss.NewStyle().Foreground(accent).Bold(true),
		badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#120924")).
			Background(pink).
			Bold(true).
			Padding(0, 1),
		muted:    lipgloss.NewStyle().Foreground(muted),
		mine:     lipgloss.NewStyle().Foreground(mint),
		other:    lipgloss.NewStyle().Foreground(text),
		avatar:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		dropdown: lipgloss.NewStyle().Foreground(text).PaddingLeft(1),
		pick:     lipgloss.NewStyle().Foreground(pink).Bold(true),
		status:   lipgloss.NewStyle().Foreground(accent),
		alert: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(pink).
			Foreground(pink).
			Bold(true).
			Padding(0, 1),
		help: lipgloss.NewStyle().Foreground(muted),
	}
}
