package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold   lipgloss.Style
	Banner lipgloss.Style
	Header lipgloss.Style
	Active lipgloss.Style
}{
	Bold: lipgloss.NewStyle().Bold(true),

	Banner: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("86")).
		Padding(0, 1),

	Header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),

	Active: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
}
