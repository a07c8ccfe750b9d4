package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	sidebarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#0f172a")).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("#1e293b")).
			Padding(0, 1)
	newChatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#2563eb")).
			Padding(0, 1)
	activeItemStyle = lipgloss.NewStyle().Background(lipgloss.Color("#1e293b")).Bold(true)
	itemStyle       = lipgloss.NewStyle()
	heroTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#22d3ee"))
)

func joinDots(parts []string) string {
	return strings.Join(parts, " • ")
}
