package dialog

import (
	"sync"

	"github.com/saronqw/uninews-bot/internal/listing"
	"github.com/saronqw/uninews-bot/pkg/models"
)

// Query is the (scope, interval) pair behind the current listing.
type Query struct {
	Scope    models.Scope
	Interval models.Interval
}

// Session is one user's conversation state. The whole listing state
// (cards, current page) lives here, never in process-wide variables,
// so concurrent users cannot trample each other's result sets.
type Session struct {
	Screen    ScreenID
	Scope     models.Scope
	Interval  models.Interval
	LastQuery *Query
	Cards     []listing.Card
	Page      int
}

type sessionEntry struct {
	mu      sync.Mutex
	session Session
}

// Store holds sessions keyed by user id. Each entry carries its own
// lock: one user's events serialize, different users run in parallel.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*sessionEntry
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*sessionEntry)}
}

// Do runs fn with exclusive access to the user's session, creating a
// default one (menu screen, nothing selected) on first contact.
func (s *Store) Do(userID int64, fn func(*Session)) {
	s.mu.Lock()
	entry, ok := s.sessions[userID]
	if !ok {
		entry = &sessionEntry{session: Session{Screen: ScreenMenu}}
		s.sessions[userID] = entry
	}
	s.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(&entry.session)
}

// Snapshot returns a copy of the user's session, creating it if absent.
func (s *Store) Snapshot(userID int64) Session {
	var copied Session
	s.Do(userID, func(session *Session) {
		copied = *session
	})
	return copied
}

// Reset discards every session. Users start from the menu again on
// their next message.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[int64]*sessionEntry)
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
