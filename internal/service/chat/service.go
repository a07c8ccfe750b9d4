package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/z-tavern/chat/internal/model/chat"
	"github.com/zhouzirui/z-tavern/chat/internal/storage"
)

// SessionsKey is the storage key holding the serialized session list.
const SessionsKey = "chat_sessions"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnInFlight    = errors.New("a request is already in flight for this session")
	ErrEmptyInput      = errors.New("message is empty")
)

// Service owns the ordered session list and the active session reference.
// Every mutation is written through to the storage port.
type Service struct {
	mu       sync.RWMutex
	store    storage.Store
	sessions []chat.Session
	activeID string
	inFlight map[string]struct{}

	now   func() time.Time
	newID func() string
}

// NewService restores the session list from store. A missing key starts
// empty; a corrupted payload is logged and also starts empty.
func NewService(ctx context.Context, store storage.Store) (*Service, error) {
	s := &Service{
		store:    store,
		sessions: []chat.Session{},
		inFlight: make(map[string]struct{}),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    newSessionID,
	}

	data, err := store.Get(ctx, SessionsKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	sessions, err := chat.DecodeSessions(data)
	if err != nil {
		log.Printf("[chat] discarding persisted sessions: %v", err)
		return s, nil
	}
	s.sessions = sessions
	return s, nil
}

// newSessionID returns a time-ordered UUID, falling back to a random one.
func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// List returns a copy of every session, newest first.
func (s *Service) List() []chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSessions(s.sessions)
}

// Get retrieves a session by identifier.
func (s *Service) Get(id string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return chat.Session{}, ErrSessionNotFound
	}
	return s.sessions[idx].Clone(), nil
}

// Create inserts a greeting-seeded session at the front of the list and
// makes it active.
func (s *Service) Create(ctx context.Context) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	session := chat.Session{
		ID:        s.newID(),
		Title:     chat.DefaultTitle,
		Messages:  []chat.Message{chat.AssistantMessage(chat.Greeting)},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for s.indexOf(session.ID) >= 0 {
		session.ID = s.newID()
	}

	prev := s.sessions
	s.sessions = append([]chat.Session{session}, s.sessions...)
	if err := s.persistLocked(ctx); err != nil {
		s.sessions = prev
		return chat.Session{}, err
	}

	s.activeID = session.ID
	return session.Clone(), nil
}

// AppendMessages replaces the message sequence of session id. An unknown id
// leaves the store untouched and reports ErrSessionNotFound.
func (s *Service) AppendMessages(ctx context.Context, id string, messages []chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(ctx, id, messages)
}

// Rename changes the display title of a session.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	prev := s.sessions[idx]
	s.sessions[idx].Title = title
	s.sessions[idx].UpdatedAt = s.now()
	if err := s.persistLocked(ctx); err != nil {
		s.sessions[idx] = prev
		return err
	}
	return nil
}

// Delete removes a session. Deleting the active session clears the active
// reference.
func (s *Service) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	prev := s.sessions
	next := make([]chat.Session, 0, len(s.sessions)-1)
	next = append(next, s.sessions[:idx]...)
	next = append(next, s.sessions[idx+1:]...)
	s.sessions = next
	if err := s.persistLocked(ctx); err != nil {
		s.sessions = prev
		return err
	}

	if s.activeID == id {
		s.activeID = ""
	}
	return nil
}

// Select makes id the active session. An unknown id clears the active
// reference and reports ErrSessionNotFound.
func (s *Service) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		s.activeID = ""
		return ErrSessionNotFound
	}
	s.activeID = id
	return nil
}

// Active returns the active session, if one is set.
func (s *Service) Active() (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(s.activeID)
	if idx < 0 {
		return chat.Session{}, false
	}
	return s.sessions[idx].Clone(), true
}

// ActiveID returns the active session identifier or "".
func (s *Service) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

func (s *Service) replaceLocked(ctx context.Context, id string, messages []chat.Message) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrSessionNotFound
	}

	prev := s.sessions[idx]
	updated := prev
	updated.Messages = append(make([]chat.Message, 0, len(messages)), messages...)
	updated.UpdatedAt = s.now()
	if updated.Title == chat.DefaultTitle {
		updated.Title = chat.DeriveTitle(updated.Messages)
	}

	s.sessions[idx] = updated
	if err := s.persistLocked(ctx); err != nil {
		s.sessions[idx] = prev
		return err
	}
	return nil
}

func (s *Service) persistLocked(ctx context.Context) error {
	data, err := chat.EncodeSessions(s.sessions)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, SessionsKey, data); err != nil {
		log.Printf("[chat] failed to persist %d sessions: %v", len(s.sessions), err)
		return fmt.Errorf("persist sessions: %w", err)
	}
	return nil
}

func (s *Service) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneSessions(in []chat.Session) []chat.Session {
	out := make([]chat.Session, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
