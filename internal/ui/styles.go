package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/riego/internal/model"
)

// ------- TUI styling helpers (Lip Gloss) -------
var (
	TitleStyle    = lipgloss.NewStyle().Bold(true)
	SuccessStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	PendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	AccentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	MutedStyle    = lipgloss.NewStyle().Faint(true)
	ErrorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	HelpStyle     = lipgloss.NewStyle().Faint(true)
)

// Zone button colors.
const (
	ZoneOnColor  = "#16a34a" // green
	ZoneOffColor = "#dc2626" // red
	ZoneText     = "#ffffff"
)

// ZoneColor maps a state to its background color.
func ZoneColor(s model.ZoneState) string {
	if s == model.ZoneOn {
		return ZoneOnColor
	}
	return ZoneOffColor
}

// ZoneStyle is the button style for a zone state: white text on green or red.
func ZoneStyle(s model.ZoneState) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(ZoneColor(s))).
		Foreground(lipgloss.Color(ZoneText)).
		Padding(0, 1)
}

// Frame draws a rounded section; the border is highlighted when focused.
func Frame(title, inner string, focused bool, width int) string {
	border := lipgloss.Color("8")
	if focused {
		border = lipgloss.Color("12")
	}
	st := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 4 {
		st = st.Width(width - 2)
	}
	head := TitleStyle.Render(title)
	if focused {
		head = AccentStyle.Bold(true).Render(title)
	}
	return st.Render(head + "\n" + inner)
}
