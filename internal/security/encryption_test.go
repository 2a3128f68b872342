package security

import (
	"bytes"
	"errors"
	"testing"
)

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher([]byte("0123456789abcdef0123456789abcdef"))
	if err != nil {
		t.Fatalf("new cipher failed: %v", err)
	}
	plain := []byte("%PDF-1.4 invoice attachment")
	sealed, err := c.Seal(plain)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Fatalf("ciphertext must not contain plaintext")
	}
	again, err := c.Seal(plain)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if bytes.Equal(sealed, again) {
		t.Fatalf("expected random nonce per seal")
	}
	opened, err := c.Open(sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("unexpected plaintext: %q", opened)
	}
}

func TestCipherRejectsTamperedData(t *testing.T) {
	c, err := NewCipher([]byte("0123456789abcdef"))
	if err != nil {
		t.Fatalf("new cipher failed: %v", err)
	}
	sealed, err := c.Seal([]byte("hello"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xff
	if _, err := c.Open(sealed); !errors.Is(err, ErrCiphertextInvalid) {
		t.Fatalf("expected ErrCiphertextInvalid, got %v", err)
	}
	if _, err := c.Open([]byte("short")); !errors.Is(err, ErrCiphertextInvalid) {
		t.Fatalf("expected ErrCiphertextInvalid for short input, got %v", err)
	}
}

func TestNewCipherKeyLength(t *testing.T) {
	if _, err := NewCipher([]byte("short")); !errors.Is(err, ErrKeyInvalid) {
		t.Fatalf("expected ErrKeyInvalid, got %v", err)
	}
}
