package vaultcrypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestAESKeyWrapRoundTrip(t *testing.T) {
	kek := make([]byte, 32)
	if _, err := rand.Read(kek); err != nil {
		t.Fatalf("generating kek: %v", err)
	}

	sizes := []int{16, 24, 32}
	for _, size := range sizes {
		key := make([]byte, size)
		if _, err := rand.Read(key); err != nil {
			t.Fatalf("generating key: %v", err)
		}

		wrapped, err := aesKeyWrap(kek, key)
		if err != nil {
			t.Fatalf("aesKeyWrap(%d bytes): %v", size, err)
		}
		if len(wrapped) != size+8 {
			t.Fatalf("wrapped length = %d, want %d", len(wrapped), size+8)
		}

		unwrapped, err := aesKeyUnwrap(kek, wrapped)
		if err != nil {
			t.Fatalf("aesKeyUnwrap(%d bytes): %v", size, err)
		}
		if !bytes.Equal(unwrapped, key) {
			t.Fatalf("round-trip mismatch for %d-byte key", size)
		}
	}
}

func TestAESKeyUnwrapWrongKEKFails(t *testing.T) {
	kek := make([]byte, 32)
	wrongKEK := make([]byte, 32)
	if _, err := rand.Read(kek); err != nil {
		t.Fatalf("generating kek: %v", err)
	}
	if _, err := rand.Read(wrongKEK); err != nil {
		t.Fatalf("generating wrong kek: %v", err)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generating key: %v", err)
	}

	wrapped, err := aesKeyWrap(kek, key)
	if err != nil {
		t.Fatalf("aesKeyWrap: %v", err)
	}
	if _, err := aesKeyUnwrap(wrongKEK, wrapped); err == nil {
		t.Fatal("expected integrity failure with wrong KEK")
	}
}
