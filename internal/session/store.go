package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role labels one chat transcript entry
type Role string

const (
	RoleUser         Role = "user"
	RoleAssistant    Role = "assistant"
	RoleToolCall     Role = "tool_call"
	RoleToolResponse Role = "tool_response"
)

// ChatMessage is one entry in a session transcript. Appended, never mutated.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session is one user's conversation with the agent. The transcript lives in
// memory only and is discarded when the session is pruned.
type Session struct {
	ID        string        `json:"id"`
	AppName   string        `json:"app_name"`
	UserID    string        `json:"user_id"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store holds sessions keyed by id. A session is only ever appended to by
// the handler processing that user's current message, but the map itself is
// shared across requests, hence the lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a session. An empty sessionID gets a generated one; an
// empty userID likewise. Creating an id that already exists resets it.
func (s *Store) Create(appName, userID, sessionID string) *Session {
	if sessionID == "" {
		sessionID = "session-" + uuid.NewString()
	}
	if userID == "" {
		userID = "user-" + uuid.NewString()
	}
	now := time.Now()
	sess := &Session{
		ID:        sessionID,
		AppName:   appName,
		UserID:    userID,
		Messages:  make([]ChatMessage, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = sess
	return sess
}

// Get returns a copy of the session so callers can't mutate the transcript
// behind the store's back
func (s *Store) Get(sessionID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	out := *sess
	out.Messages = make([]ChatMessage, len(sess.Messages))
	copy(out.Messages, sess.Messages)
	return out, true
}

// Append adds messages to a session transcript
func (s *Store) Append(sessionID string, messages ...ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %q not found", sessionID)
	}
	sess.Messages = append(sess.Messages, messages...)
	sess.UpdatedAt = time.Now()
	return nil
}

// Count returns the number of live sessions
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Prune discards sessions idle longer than the store TTL and returns how
// many were removed. Wired to a cron schedule at startup.
func (s *Store) Prune() int {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
