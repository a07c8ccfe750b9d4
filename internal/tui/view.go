package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// View renders the UI (Bubble Tea interface)
func (m chatModel) View() string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), m.panelView())
}

func (m chatModel) sidebarView() string {
	inner := sidebarWidth - 2
	lines := []string{newChatStyle.Render("+ New Chat"), ""}

	activeID := m.svc.ActiveID()
	for i, s := range m.sessions {
		marker := "  "
		if m.focus == focusSidebar && i == m.cursor {
			marker = "› "
		}
		title := runewidth.Truncate(s.Title, inner-runewidth.StringWidth(marker), "…")
		line := runewidth.FillRight(marker+title, inner)
		if s.ID == activeID {
			lines = append(lines, activeItemStyle.Render(line))
		} else {
			lines = append(lines, itemStyle.Render(line))
		}
	}

	return sidebarStyle.Width(sidebarWidth).Height(m.height).Render(strings.Join(lines, "\n"))
}

func (m chatModel) panelView() string {
	panelWidth := m.view.Width

	active, ok := m.svc.Active()
	if !ok {
		hero := lipgloss.JoinVertical(lipgloss.Center,
			heroTitleStyle.Render("Elite AI Assistant"),
			"",
			dimStyle.Render("Select a chat or press ctrl+n to start a new one"),
		)
		return lipgloss.Place(panelWidth, m.height, lipgloss.Center, lipgloss.Center, hero)
	}

	busy := m.svc.InFlight(active.ID)
	status := boldStyle.Render(active.Title)
	if busy {
		status += " " + m.spinner.View() + dimStyle.Render(" waiting for reply...")
	}

	var inputView string
	if busy {
		inputView = dimStyle.Render("> ") + dimStyle.Render("waiting for reply...")
	} else {
		inputView = promptStyle.Render("> ") + m.input.View()
	}

	parts := []string{status, "", m.view.View(), "", inputView}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
	} else {
		parts = append(parts, dimStyle.Render(m.keys.helpLine()))
	}

	return lipgloss.NewStyle().Width(panelWidth).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
