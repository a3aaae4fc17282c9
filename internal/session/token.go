// Package session keeps the in-memory state of unlocked vaults and the
// bearer tokens that reference it. A session holds the unwrapped master
// key for its identity; locking a session wipes the key from memory.
package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vantavault/vantavault/internal/common"
)

// Claims carries the standard registered claims plus the session id.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string
}

// GenerateToken signs a bearer token referencing the session. The token
// carries no expiry of its own: the session store enforces the inactivity
// window, and an absolute deadline here would cut off active sessions.
func GenerateToken(sessionID string, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func GetSessionIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrSessionExpired
	}

	if !token.Valid {
		return "", common.ErrSessionExpired
	}

	return claims.SessionID, nil
}
