package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/models"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore(30 * time.Minute)

	key := []byte{1, 2, 3, 4}
	sess := s.Create(models.IdentityReal, key)
	require.NotEmpty(t, sess.ID)
	require.Equal(t, models.IdentityReal, sess.Identity)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.ID, got.ID)
	require.Equal(t, key, got.MasterKey)
}

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore(30 * time.Minute)

	_, err := s.Get("nope")
	require.ErrorIs(t, err, common.ErrSessionExpired)
}

func TestStore_InactivityExpiry(t *testing.T) {
	s := NewStore(30 * time.Minute)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	key := []byte{9, 9, 9}
	sess := s.Create(models.IdentityDecoy, key)

	// activity inside the window keeps the session alive
	now = now.Add(20 * time.Minute)
	_, err := s.Get(sess.ID)
	require.NoError(t, err)

	// the Get above refreshed the window
	now = now.Add(25 * time.Minute)
	_, err = s.Get(sess.ID)
	require.NoError(t, err)

	now = now.Add(31 * time.Minute)
	_, err = s.Get(sess.ID)
	require.ErrorIs(t, err, common.ErrSessionExpired)

	// expiry wipes the key
	require.Equal(t, []byte{0, 0, 0}, key)
}

func TestStore_Invalidate(t *testing.T) {
	s := NewStore(30 * time.Minute)

	key := []byte{7, 7}
	sess := s.Create(models.IdentityReal, key)

	s.Invalidate(sess.ID)
	_, err := s.Get(sess.ID)
	require.ErrorIs(t, err, common.ErrSessionExpired)
	require.Equal(t, []byte{0, 0}, key)

	// unknown ids are a no-op
	s.Invalidate("gone")
}

func TestStore_Sweep(t *testing.T) {
	s := NewStore(10 * time.Minute)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	s.Create(models.IdentityReal, []byte{1})
	s.Create(models.IdentityReal, []byte{2})
	require.Equal(t, 2, s.Active())

	now = now.Add(11 * time.Minute)
	fresh := s.Create(models.IdentityDecoy, []byte{3})

	require.Equal(t, 2, s.Sweep())
	require.Equal(t, 1, s.Active())

	_, err := s.Get(fresh.ID)
	require.NoError(t, err)
}

func TestToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("sess-1", secret)
	require.NoError(t, err)

	id, err := GetSessionIDFromToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, "sess-1", id)
}

func TestToken_NoAbsoluteExpiry(t *testing.T) {
	// The token must stay valid as long as the session store says the
	// session is alive; only inactivity in the store ends a session.
	secret := []byte("test-secret")

	token, err := GenerateToken("sess-1", secret)
	require.NoError(t, err)

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithTimeFunc(func() time.Time {
		return time.Now().Add(24 * time.Hour)
	}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	require.Nil(t, claims.ExpiresAt)
}

func TestToken_WrongKey(t *testing.T) {
	token, err := GenerateToken("sess-1", []byte("key-a"))
	require.NoError(t, err)

	_, err = GetSessionIDFromToken(token, []byte("key-b"))
	require.ErrorIs(t, err, common.ErrSessionExpired)
}
