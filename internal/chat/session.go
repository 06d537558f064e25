// Package chat routes free-text questions and ticker lookups over a
// per-session message history.
package chat

import (
	"sync"
	"time"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/models"
)

// Session is one conversation. It starts with the system prompt and only
// grows; a Router holds the session lock for a whole turn.
type Session struct {
	ID string

	mu         sync.Mutex
	messages   []models.Message
	createdAt  time.Time
	lastActive time.Time
}

func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		messages:   []models.Message{models.SystemMessage(consts.ChatSystemPrompt)},
		createdAt:  now,
		lastActive: now,
	}
}

// Messages returns a copy of the full history, system prompt included.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

// Transcript returns the history after the system prompt, for display.
func (s *Session) Transcript() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages[1:]...)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// caller holds s.mu
func (s *Session) appendLocked(msg models.Message) {
	s.messages = append(s.messages, msg)
	s.lastActive = time.Now()
}
