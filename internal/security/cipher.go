// Package security provides authenticated encryption for tenant API keys.
//
// Stored API keys are encrypted at rest with AES-256-GCM. The key comes
// from SUPPORTBOT_ENCRYPTION_KEY (deployment secret), never from the same
// store as the ciphertext.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrInvalidKeySize indicates the cipher key is not 32 bytes.
	ErrInvalidKeySize = errors.New("cipher key must be 32 bytes")

	// ErrCiphertextInvalid indicates the ciphertext is malformed or has
	// been tampered with.
	ErrCiphertextInvalid = errors.New("invalid ciphertext")
)

// Cipher encrypts and decrypts small secrets such as API keys.
// Implementations must provide authenticated encryption: decryption of a
// modified ciphertext fails rather than returning garbage.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// AESGCM is an AES-256-GCM Cipher. Ciphertexts are base64-encoded with the
// random nonce prepended.
//
// AESGCM is safe for concurrent use.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM creates an AESGCM cipher from a 32-byte key.
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}

	return &AESGCM{aead: aead}, nil
}

// Encrypt encrypts plaintext and returns base64(nonce || ciphertext).
func (c *AESGCM) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Returns ErrCiphertextInvalid for malformed or
// tampered input.
func (c *AESGCM) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCiphertextInvalid, err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", fmt.Errorf("%w: too short", ErrCiphertextInvalid)
	}

	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		// Authentication failure: tampered or wrong key.
		return "", fmt.Errorf("%w: %v", ErrCiphertextInvalid, err)
	}

	return string(plaintext), nil
}
