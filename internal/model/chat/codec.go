package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidRecord reports persisted session data that does not satisfy the
// session schema.
var ErrInvalidRecord = errors.New("invalid session record")

// EncodeSessions serializes the full session list in display order.
func EncodeSessions(sessions []Session) ([]byte, error) {
	if sessions == nil {
		sessions = []Session{}
	}
	data, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("encode sessions: %w", err)
	}
	return data, nil
}

// DecodeSessions parses and validates a persisted session list. Any record
// that breaks the schema rejects the whole payload.
func DecodeSessions(data []byte) ([]Session, error) {
	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	if err := ValidateSessions(sessions); err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Messages == nil {
			sessions[i].Messages = []Message{}
		}
	}
	return sessions, nil
}

// ValidateSessions checks identifiers are present and unique and every
// message carries a known role.
func ValidateSessions(sessions []Session) error {
	seen := make(map[string]struct{}, len(sessions))
	for i, s := range sessions {
		if s.ID == "" {
			return fmt.Errorf("%w: session %d has no id", ErrInvalidRecord, i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate session id %q", ErrInvalidRecord, s.ID)
		}
		seen[s.ID] = struct{}{}
		for j, msg := range s.Messages {
			if !msg.Role.Valid() {
				return fmt.Errorf("%w: session %q message %d has role %q", ErrInvalidRecord, s.ID, j, msg.Role)
			}
		}
	}
	return nil
}
