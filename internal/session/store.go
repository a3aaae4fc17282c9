package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/models"
)

// Session is an unlocked vault. MasterKey is the identity's unwrapped
// master key and lives only in memory for the session's lifetime.
type Session struct {
	ID         string
	Identity   models.VaultIdentity
	MasterKey  []byte
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Store tracks active sessions. Sessions expire after ttl of inactivity;
// each successful Get refreshes the inactivity window.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new session holding the identity's master key and
// returns it. The store takes ownership of masterKey.
func (s *Store) Create(identity models.VaultIdentity, masterKey []byte) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	sess := &Session{
		ID:         uuid.NewString(),
		Identity:   identity,
		MasterKey:  masterKey,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns the session with the given id and refreshes its inactivity
// window. An unknown or expired id yields common.ErrSessionExpired;
// expired sessions are wiped on first access.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, common.ErrSessionExpired
	}

	now := s.now().UTC()
	if now.Sub(sess.LastSeenAt) > s.ttl {
		s.drop(sess)
		return nil, common.ErrSessionExpired
	}

	sess.LastSeenAt = now
	return sess, nil
}

// Invalidate removes the session and wipes its master key. Unknown ids
// are a no-op.
func (s *Store) Invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		s.drop(sess)
	}
}

// InvalidateAll locks every active session.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		s.drop(sess)
	}
}

// Sweep drops every session whose inactivity window has elapsed and
// returns the number removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	removed := 0
	for _, sess := range s.sessions {
		if now.Sub(sess.LastSeenAt) > s.ttl {
			s.drop(sess)
			removed++
		}
	}
	return removed
}

// Active returns the number of live sessions.
func (s *Store) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// drop must be called with mu held.
func (s *Store) drop(sess *Session) {
	common.WipeByteArray(sess.MasterKey)
	delete(s.sessions, sess.ID)
}
