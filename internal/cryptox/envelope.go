package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/vantavault/vantavault/internal/common"
)

// Envelope layout: [1-byte version | 12-byte nonce | AES-GCM ciphertext+tag].
// The header makes ciphertext at rest self-describing: the version pins the
// construction, the nonce travels with the data, and GCM appends its own
// authentication tag.
const (
	envelopeVersion = 0x01
	nonceSize       = 12
	envelopeMinSize = 1 + nonceSize + 16 // header + GCM tag
)

// Seal encrypts plaintext under key with AES-256-GCM and returns the
// self-describing envelope. A fresh random nonce is generated per call.
func Seal(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, 1+nonceSize+len(plaintext)+aesgcm.Overhead())
	out = append(out, envelopeVersion)
	out = append(out, nonce...)
	out = aesgcm.Seal(out, nonce, plaintext, nil)
	return out, nil
}

// Open authenticates and decrypts an envelope produced by Seal. Tampered,
// truncated, or mis-keyed input fails closed with common.ErrIntegrity;
// partial plaintext is never returned.
func Open(envelope, key []byte) ([]byte, error) {
	if len(envelope) < envelopeMinSize {
		return nil, fmt.Errorf("envelope too short: %w", common.ErrIntegrity)
	}
	if envelope[0] != envelopeVersion {
		return nil, fmt.Errorf("unknown envelope version 0x%02x: %w", envelope[0], common.ErrIntegrity)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := envelope[1 : 1+nonceSize]
	plaintext, err := aesgcm.Open(nil, nonce, envelope[1+nonceSize:], nil)
	if err != nil {
		return nil, common.ErrIntegrity
	}
	return plaintext, nil
}

// WrapKey seals one key under another (file key under master key, master
// key under unlock key). The nonce is returned separately so it can live in
// its own catalog column.
func WrapKey(plainKey, wrappingKey []byte) (wrapped, nonce []byte, err error) {
	block, err := aes.NewCipher(wrappingKey)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	wrapped = aesgcm.Seal(nil, nonce, plainKey, nil)
	return wrapped, nonce, nil
}

// UnwrapKey reverses WrapKey. A wrong wrapping key yields common.ErrIntegrity.
func UnwrapKey(wrapped, nonce, wrappingKey []byte) ([]byte, error) {
	block, err := aes.NewCipher(wrappingKey)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plainKey, err := aesgcm.Open(nil, nonce, wrapped, nil)
	if err != nil {
		return nil, common.ErrIntegrity
	}
	return plainKey, nil
}

// NewFileKey returns a fresh random 256-bit per-object key.
func NewFileKey() []byte {
	return common.GenerateRandByteArray(KeySize)
}
