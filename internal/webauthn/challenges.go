package webauthn

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/vantavault/vantavault/internal/common"
)

// ChallengeSize is the length of issued challenges (256 bits).
const ChallengeSize = 32

// ChallengeStore issues single-use challenges with a bounded lifetime.
// Concrete Verifier implementations use it to tie a ceremony's response
// back to the challenge that started it. Nothing in this tree holds one:
// the shipped Disabled verifier rejects every ceremony up front, so the
// store exists for external implementations built against Verifier.
type ChallengeStore struct {
	mu      sync.Mutex
	pending map[string]pendingChallenge
	ttl     time.Duration
	now     func() time.Time
}

type pendingChallenge struct {
	challenge []byte
	issuedAt  time.Time
}

func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{
		pending: make(map[string]pendingChallenge),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue creates a fresh challenge for the user, replacing any outstanding
// one for the same user.
func (s *ChallengeStore) Issue(userID string) []byte {
	challenge := common.GenerateRandByteArray(ChallengeSize)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[userID] = pendingChallenge{challenge: challenge, issuedAt: s.now().UTC()}
	return challenge
}

// Consume checks that the presented challenge matches the outstanding one
// for the user and has not expired, then removes it. Each issued challenge
// can be consumed at most once.
func (s *ChallengeStore) Consume(userID string, presented []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[userID]
	if !ok {
		return false
	}
	delete(s.pending, userID)

	if s.now().UTC().Sub(p.issuedAt) > s.ttl {
		return false
	}
	return subtle.ConstantTimeCompare(p.challenge, presented) == 1
}
