// Package session keeps bounded per-session conversation history for
// prompt context.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Exchange is one completed user/assistant turn pair.
type Exchange struct {
	UserMessage      string
	AssistantMessage string
}

// Store holds recent exchanges per session id. Each session retains at
// most maxHistory exchanges; older ones are dropped on append.
//
// Appends under the same session id are last-writer-wins; concurrent
// queries on one session may interleave.
type Store struct {
	maxHistory int
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[string][]Exchange
}

// NewStore creates a Store retaining maxHistory exchanges per session
// (values < 1 fall back to 2). logger may be nil.
func NewStore(maxHistory int, logger *slog.Logger) *Store {
	if maxHistory < 1 {
		maxHistory = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		maxHistory: maxHistory,
		logger:     logger,
		sessions:   make(map[string][]Exchange),
	}
}

// Create returns a fresh session id.
func (s *Store) Create() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = nil
	s.mu.Unlock()

	s.logger.Debug("created session", "session_id", id)
	return id
}

// AddExchange appends one exchange, creating the session if the id is
// unseen and evicting the oldest exchange past the retention bound.
func (s *Store) AddExchange(id, userMessage, assistantMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exchanges := append(s.sessions[id], Exchange{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	})
	if len(exchanges) > s.maxHistory {
		exchanges = exchanges[len(exchanges)-s.maxHistory:]
	}
	s.sessions[id] = exchanges
}

// History returns the session's retained exchanges formatted for the
// model prompt, or "" for an unseen or empty session.
func (s *Store) History(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exchanges := s.sessions[id]
	if len(exchanges) == 0 {
		return ""
	}

	lines := make([]string, 0, len(exchanges))
	for _, ex := range exchanges {
		lines = append(lines, fmt.Sprintf("User: %s\nAssistant: %s", ex.UserMessage, ex.AssistantMessage))
	}
	return strings.Join(lines, "\n")
}

// Clear drops a session's history but keeps the id valid.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; ok {
		s.sessions[id] = nil
	}
}
