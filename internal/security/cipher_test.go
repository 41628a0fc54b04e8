package security

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestNewAESGCM_KeySize(t *testing.T) {
	for _, size := range []int{0, 16, 24, 31, 33, 64} {
		if _, err := NewAESGCM(make([]byte, size)); !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("NewAESGCM(%d-byte key) error = %v, want ErrInvalidKeySize", size, err)
		}
	}
	if _, err := NewAESGCM(make([]byte, 32)); err != nil {
		t.Errorf("NewAESGCM(32-byte key) error = %v", err)
	}
}

func TestAESGCM_RoundTrip(t *testing.T) {
	c, err := NewAESGCM(testKey(t))
	if err != nil {
		t.Fatalf("NewAESGCM() error = %v", err)
	}

	for _, plaintext := range []string{"", "k", "AIzaSyExampleApiKey1234567890", "ключ-עם-unicode-鍵"} {
		ciphertext, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q) error = %v", plaintext, err)
		}
		if ciphertext == plaintext && plaintext != "" {
			t.Errorf("Encrypt(%q) returned the plaintext", plaintext)
		}

		got, err := c.Decrypt(ciphertext)
		if err != nil {
			t.Fatalf("Decrypt() error = %v", err)
		}
		if got != plaintext {
			t.Errorf("round trip = %q, want %q", got, plaintext)
		}
	}
}

func TestAESGCM_NonDeterministic(t *testing.T) {
	c, err := NewAESGCM(testKey(t))
	if err != nil {
		t.Fatalf("NewAESGCM() error = %v", err)
	}

	first, err := c.Encrypt("same secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	second, err := c.Encrypt("same secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if first == second {
		t.Error("two encryptions of the same plaintext produced identical ciphertexts")
	}
}

func TestAESGCM_RejectsTampering(t *testing.T) {
	c, err := NewAESGCM(testKey(t))
	if err != nil {
		t.Fatalf("NewAESGCM() error = %v", err)
	}

	ciphertext, err := c.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		t.Fatalf("decoding ciphertext: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := c.Decrypt(tampered); !errors.Is(err, ErrCiphertextInvalid) {
		t.Errorf("Decrypt(tampered) error = %v, want ErrCiphertextInvalid", err)
	}
}

func TestAESGCM_RejectsMalformedInput(t *testing.T) {
	c, err := NewAESGCM(testKey(t))
	if err != nil {
		t.Fatalf("NewAESGCM() error = %v", err)
	}

	for _, input := range []string{"not base64 at all!!!", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := c.Decrypt(input); !errors.Is(err, ErrCiphertextInvalid) {
			t.Errorf("Decrypt(%q) error = %v, want ErrCiphertextInvalid", input, err)
		}
	}
}

func TestAESGCM_WrongKeyFails(t *testing.T) {
	c1, err := NewAESGCM(testKey(t))
	if err != nil {
		t.Fatalf("NewAESGCM() error = %v", err)
	}
	c2, err := NewAESGCM(bytes.Repeat([]byte{0x24}, 32))
	if err != nil {
		t.Fatalf("NewAESGCM() error = %v", err)
	}

	ciphertext, err := c1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, err := c2.Decrypt(ciphertext); !errors.Is(err, ErrCiphertextInvalid) {
		t.Errorf("Decrypt with wrong key error = %v, want ErrCiphertextInvalid", err)
	}
}
