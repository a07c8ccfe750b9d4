package chat

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultTitle is the title every new session starts with.
	DefaultTitle = "New Chat"
	// Greeting seeds the history of a new session.
	Greeting = "Hello 👋 How can I assist you today?"

	maxTitleRunes = 40
)

// Session is a single conversation thread with its ordered history.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no message storage with s.
func (s Session) Clone() Session {
	out := s
	out.Messages = append(make([]Message, 0, len(s.Messages)), s.Messages...)
	return out
}

// LastMessage returns the newest message, if any.
func (s Session) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// DeriveTitle builds a display title from the first user message, or returns
// DefaultTitle when the history has none.
func DeriveTitle(messages []Message) string {
	for _, msg := range messages {
		if !msg.IsUser() {
			continue
		}
		line := strings.TrimSpace(msg.Content)
		if idx := strings.IndexByte(line, '\n'); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) <= maxTitleRunes {
			return line
		}
		runes := []rune(line)
		return strings.TrimSpace(string(runes[:maxTitleRunes])) + "…"
	}
	return DefaultTitle
}
