package vaultcrypto

import (
	"strings"
	"testing"
)

func TestPathRoundTrip(t *testing.T) {
	e := testEngine(t)
	store := newMemMetadataStore()

	encoded, err := e.EncryptPath(store, "a/b/c", "/", ":")
	if err != nil {
		t.Fatalf("EncryptPath: %v", err)
	}
	if strings.Count(encoded, ":") != 2 {
		t.Fatalf("expected exactly two separators, got %q", encoded)
	}
	for _, part := range strings.Split(encoded, ":") {
		if part == "" || !strings.HasSuffix(part, basicExt) {
			t.Fatalf("component %q does not look like a short-form encrypted name", part)
		}
	}

	decoded, err := e.DecryptPath(store, encoded, ":", "/")
	if err != nil {
		t.Fatalf("DecryptPath: %v", err)
	}
	if decoded != "a/b/c" {
		t.Fatalf("DecryptPath = %q, want %q", decoded, "a/b/c")
	}
}

func TestPathPreservesEmptyComponents(t *testing.T) {
	e := testEngine(t)
	store := newMemMetadataStore()

	encoded, err := e.EncryptPath(store, "/a/b", "/", ":")
	if err != nil {
		t.Fatalf("EncryptPath: %v", err)
	}
	if !strings.HasPrefix(encoded, ":") {
		t.Fatalf("expected leading empty component to round-trip as a leading separator, got %q", encoded)
	}

	decoded, err := e.DecryptPath(store, encoded, ":", "/")
	if err != nil {
		t.Fatalf("DecryptPath: %v", err)
	}
	if decoded != "/a/b" {
		t.Fatalf("DecryptPath = %q, want %q", decoded, "/a/b")
	}
}
