// Package tui is the full-screen chat client: a conversation list on the
// left and the active conversation with its input on the right.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
	"github.com/zhouzirui/z-tavern/chat/internal/render"
	chatservice "github.com/zhouzirui/z-tavern/chat/internal/service/chat"
)

const (
	sidebarWidth        = 28
	defaultWindowWidth  = 100
	defaultWindowHeight = 30
	inputCharLimit      = 4000
	panelChromeHeight   = 5
	minContentHeight    = 5
	minPanelWidth       = 30
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// ChatProgram encapsulates the chat TUI program.
type ChatProgram struct {
	model chatModel
}

// NewChatProgram builds the TUI over an existing session store. asker is
// called from a background command for every submitted message.
func NewChatProgram(ctx context.Context, svc *chatservice.Service, asker chatservice.Asker) *ChatProgram {
	return &ChatProgram{model: initialModel(ctx, svc, asker)}
}

// Run starts the program and blocks until the user quits.
func (p *ChatProgram) Run() error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// chatModel is the Bubble Tea model for the whole screen.
type chatModel struct {
	ctx   context.Context
	svc   *chatservice.Service
	asker chatservice.Asker

	sessions []chat.Session
	cursor   int
	focus    focusArea

	input    textinput.Model
	view     viewport.Model
	spinner  spinner.Model
	ticking  bool
	renderer *render.TerminalRenderer
	keys     keyMap

	err    error
	width  int
	height int
}

func initialModel(ctx context.Context, svc *chatservice.Service, asker chatservice.Asker) chatModel {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = ""
	input.CharLimit = inputCharLimit
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = accentStyle

	m := chatModel{
		ctx:      ctx,
		svc:      svc,
		asker:    asker,
		input:    input,
		view:     viewport.New(defaultWindowWidth-sidebarWidth, defaultWindowHeight-panelChromeHeight),
		spinner:  sp,
		renderer: render.NewTerminalRenderer(defaultWindowWidth - sidebarWidth - 2),
		keys:     defaultKeyMap(),
		width:    defaultWindowWidth,
		height:   defaultWindowHeight,
	}
	m.refresh()
	return m
}

// Init initializes the model (Bubble Tea interface)
func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

// answerMsg carries the ask result back into the update loop.
type answerMsg struct {
	sessionID string
	answer    string
}
