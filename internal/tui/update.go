package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
	chatservice "github.com/zhouzirui/z-tavern/chat/internal/service/chat"
)

// Update processes messages and updates the model (Bubble Tea interface)
func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, consumed := m.handleKeyPress(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if consumed {
			return m, tea.Batch(cmds...)
		}

	case tea.WindowSizeMsg:
		m.handleWindowResize(msg)

	case answerMsg:
		m.finishTurn(msg)

	case spinner.TickMsg:
		// one tick chain runs while any conversation awaits a reply
		if m.anyInFlight() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.ticking = false
		}
	}

	// the input is frozen while the active conversation awaits a reply
	if m.focus == focusInput && !m.busy() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKeyPress reports whether the key was consumed and must not reach
// the text input.
func (m *chatModel) handleKeyPress(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keys.NewChat):
		m.createSession()
		return nil, true

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return nil, true

	case key.Matches(msg, m.keys.Submit):
		if m.focus == focusSidebar {
			if m.cursor < len(m.sessions) {
				m.selectSession(m.sessions[m.cursor].ID)
				m.focus = focusInput
				m.input.Focus()
			}
			return nil, true
		}
		return m.submit(), true

	case key.Matches(msg, m.keys.Up):
		if m.focus == focusSidebar {
			if m.cursor > 0 {
				m.cursor--
			}
		} else {
			m.view.LineUp(1)
		}
		return nil, true

	case key.Matches(msg, m.keys.Down):
		if m.focus == focusSidebar {
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			}
		} else {
			m.view.LineDown(1)
		}
		return nil, true

	case key.Matches(msg, m.keys.PageUp):
		m.view.ViewUp()
		return nil, true

	case key.Matches(msg, m.keys.PageDown):
		m.view.ViewDown()
		return nil, true
	}

	return nil, m.focus == focusSidebar
}

func (m *chatModel) handleWindowResize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height

	panelWidth := msg.Width - sidebarWidth - 1
	if panelWidth < minPanelWidth {
		panelWidth = minPanelWidth
	}
	contentHeight := msg.Height - panelChromeHeight
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}

	m.view.Width = panelWidth
	m.view.Height = contentHeight
	m.input.Width = panelWidth - 3
	m.renderer.SetWidth(panelWidth - 2)
	m.refresh()
}

func (m *chatModel) createSession() {
	if _, err := m.svc.Create(m.ctx); err != nil {
		m.err = err
	} else {
		m.err = nil
	}
	m.focus = focusInput
	m.input.Focus()
	m.refresh()
}

func (m *chatModel) selectSession(id string) {
	// an unknown id leaves no active conversation
	_ = m.svc.Select(id)
	m.err = nil
	m.refresh()
}

// submit starts a turn for the active session and returns the command that
// performs the request.
func (m *chatModel) submit() tea.Cmd {
	active, ok := m.svc.Active()
	if !ok {
		return nil
	}

	text := strings.TrimSpace(m.input.Value())
	history, err := m.svc.BeginTurn(m.ctx, active.ID, text)
	switch {
	case errors.Is(err, chatservice.ErrEmptyInput), errors.Is(err, chatservice.ErrTurnInFlight):
		return nil
	case err != nil:
		m.err = err
		m.refresh()
		return nil
	}

	m.err = nil
	m.input.Reset()
	m.refresh()

	ask := m.askCmd(active.ID, history)
	if m.ticking {
		return ask
	}
	m.ticking = true
	return tea.Batch(ask, m.spinner.Tick)
}

func (m chatModel) askCmd(sessionID string, history []chat.Message) tea.Cmd {
	ctx, asker := m.ctx, m.asker
	return func() tea.Msg {
		return answerMsg{sessionID: sessionID, answer: asker.Ask(ctx, history)}
	}
}

func (m *chatModel) finishTurn(msg answerMsg) {
	if err := m.svc.FinishTurn(m.ctx, msg.sessionID, msg.answer); err != nil && !errors.Is(err, chatservice.ErrSessionNotFound) {
		m.err = err
	}
	m.refresh()
}

func (m chatModel) busy() bool {
	id := m.svc.ActiveID()
	return id != "" && m.svc.InFlight(id)
}

func (m chatModel) anyInFlight() bool {
	for _, s := range m.sessions {
		if m.svc.InFlight(s.ID) {
			return true
		}
	}
	return false
}

// refresh reloads the session snapshot and re-renders the conversation,
// scrolled to the newest message.
func (m *chatModel) refresh() {
	m.sessions = m.svc.List()

	activeID := m.svc.ActiveID()
	for i, s := range m.sessions {
		if s.ID == activeID {
			m.cursor = i
			break
		}
	}
	if m.cursor >= len(m.sessions) {
		m.cursor = len(m.sessions) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	active, ok := m.svc.Active()
	if !ok {
		m.view.SetContent("")
		return
	}

	content := m.renderer.Messages(active.Messages)
	if m.svc.InFlight(active.ID) {
		content += "\n\n" + m.renderer.Message(chat.AssistantMessage("Thinking..."))
	}
	m.view.SetContent(content)
	m.view.GotoBottom()
}
