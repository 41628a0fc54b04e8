package config

import (
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// encryptionKeyBytes is the required decoded length of EncryptionKey
// (AES-256).
const encryptionKeyBytes = 32

// Validate checks the configuration and returns a descriptive error for the
// first problem found. Called by Load; the process must not start with an
// invalid configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("%w: set DATABASE_URL", ErrMissingDatabaseURL)
	}
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMissingDatabaseURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "postgres", "postgresql":
	default:
		return fmt.Errorf("%w: unsupported scheme %q (expected postgres or postgresql)", ErrMissingDatabaseURL, u.Scheme)
	}

	if strings.TrimSpace(c.EncryptionKey) == "" {
		return fmt.Errorf("%w: set SUPPORTBOT_ENCRYPTION_KEY", ErrMissingEncryptionKey)
	}
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		return fmt.Errorf("%w: not hex-encoded: %v", ErrInvalidEncryptionKey, err)
	}
	if len(key) != encryptionKeyBytes {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidEncryptionKey, len(key), encryptionKeyBytes)
	}

	if c.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Addr); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidAddr, c.Addr, err)
		}
	}

	return nil
}

// EncryptionKeyBytes returns the decoded AES key. Validate must have
// passed; a decode failure here is a bug.
func (c *Config) EncryptionKeyBytes() []byte {
	key, err := hex.DecodeString(c.EncryptionKey)
	if err != nil {
		panic(fmt.Sprintf("BUG: EncryptionKey not validated: %v", err))
	}
	return key
}
