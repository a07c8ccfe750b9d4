package chat

import (
	"context"
	"strings"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
)

// Asker produces an assistant answer for a conversation history. Failures
// are expected to be folded into the returned text.
type Asker interface {
	Ask(ctx context.Context, history []chat.Message) string
}

// BeginTurn appends the user's input to session id and marks the session as
// awaiting a response. It returns the history to send to the ask endpoint.
// A second call before FinishTurn fails with ErrTurnInFlight.
func (s *Service) BeginTurn(ctx context.Context, id, input string) ([]chat.Message, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrSessionNotFound
	}
	if _, busy := s.inFlight[id]; busy {
		return nil, ErrTurnInFlight
	}

	history := append(s.sessions[idx].Clone().Messages, chat.UserMessage(input))
	if err := s.replaceLocked(ctx, id, history); err != nil {
		return nil, err
	}

	s.inFlight[id] = struct{}{}
	return append([]chat.Message(nil), history...), nil
}

// FinishTurn appends the assistant answer to the session's current history
// and releases the in-flight guard. The guard is released even when the
// session disappeared in the meantime.
func (s *Service) FinishTurn(ctx context.Context, id, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, id)

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}
	history := append(s.sessions[idx].Clone().Messages, chat.AssistantMessage(answer))
	return s.replaceLocked(ctx, id, history)
}

// InFlight reports whether session id is awaiting a response.
func (s *Service) InFlight(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, busy := s.inFlight[id]
	return busy
}

// Send runs a full turn synchronously and returns the assistant message.
func (s *Service) Send(ctx context.Context, id, input string, asker Asker) (chat.Message, error) {
	history, err := s.BeginTurn(ctx, id, input)
	if err != nil {
		return chat.Message{}, err
	}

	answer := asker.Ask(ctx, history)
	if err := s.FinishTurn(ctx, id, answer); err != nil {
		return chat.Message{}, err
	}
	return chat.AssistantMessage(answer), nil
}
