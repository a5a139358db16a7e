package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/pdf-agent/backend/internal/model/chat"
)

var ErrSessionKeyRequired = errors.New("session key is required")

// Store keeps the append-only turn history of each session.
type Store interface {
	Load(ctx context.Context, key string) ([]chat.Turn, error)
	Append(ctx context.Context, key string, turns ...chat.Turn) error
	Reset(ctx context.Context, key string) error
	Session(key string) (chat.Session, bool)
}

// MemoryStore keeps sessions in process memory. A session is created on
// first use of its key and lives until the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	turns    map[string][]chat.Turn
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]chat.Session),
		turns:    make(map[string][]chat.Turn),
	}
}

// Load returns a copy of the session's turns; unknown keys have none.
func (s *MemoryStore) Load(_ context.Context, key string) ([]chat.Turn, error) {
	if key == "" {
		return nil, ErrSessionKeyRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[key]
	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

// Append adds turns to the session in one step, so turns of a single call
// are never interleaved with another call's.
func (s *MemoryStore) Append(_ context.Context, key string, turns ...chat.Turn) error {
	if key == "" {
		return ErrSessionKeyRequired
	}

	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[key]; !ok {
		s.sessions[key] = chat.Session{Key: key, CreatedAt: now}
		s.turns[key] = make([]chat.Turn, 0, 16)
	}

	for _, turn := range turns {
		turn.ID = uuid.NewString()
		turn.SessionKey = key
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = now
		}
		s.turns[key] = append(s.turns[key], turn)
	}
	return nil
}

// Reset forgets the session.
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	if key == "" {
		return ErrSessionKeyRequired
	}

	s.mu.Lock()
	delete(s.sessions, key)
	delete(s.turns, key)
	s.mu.Unlock()
	return nil
}

// Session returns the session metadata for key; false until the first append.
func (s *MemoryStore) Session(key string) (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}
