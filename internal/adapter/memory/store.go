package memory

import (
	"sync"

	"chatgpt-session/internal/usecase/chat"
)

// Store keeps live sessions in process memory. Each key owns exactly one
// session; Reset swaps in a fresh one instead of editing a transcript.
type Store struct {
	mu         sync.Mutex
	sessions   map[string]*chat.Session
	newSession func() *chat.Session
}

func NewStore(newSession func() *chat.Session) *Store {
	return &Store{
		sessions:   make(map[string]*chat.Session),
		newSession: newSession,
	}
}

// Create registers a new session under its own id.
func (s *Store) Create() *chat.Session {
	session := s.newSession()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	return session
}

func (s *Store) Get(key string) (*chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	return session, ok
}

func (s *Store) GetOrCreate(key string) *chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[key]; ok {
		return session
	}
	session := s.newSession()
	s.sessions[key] = session
	return session
}

func (s *Store) Reset(key string) *chat.Session {
	session := s.newSession()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = session
	return session
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
