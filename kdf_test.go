package vaultcrypto

import "testing"

func TestDeriveKEKDeterministic(t *testing.T) {
	params := ScryptParams{Salt: []byte("01234567"), CostParam: 1 << 10, BlockSize: 8}

	a, err := deriveKEK("correct horse battery staple", params, KeyLength256)
	if err != nil {
		t.Fatalf("deriveKEK: %v", err)
	}
	b, err := deriveKEK("correct horse battery staple", params, KeyLength256)
	if err != nil {
		t.Fatalf("deriveKEK: %v", err)
	}
	if len(a) != KeyLength256.Bytes() {
		t.Fatalf("KEK length = %d, want %d", len(a), KeyLength256.Bytes())
	}
	if string(a) != string(b) {
		t.Fatal("expected deriveKEK to be deterministic for the same passphrase and params")
	}
}

func TestDeriveKEKDifferentPassphrasesDiffer(t *testing.T) {
	params := ScryptParams{Salt: []byte("01234567"), CostParam: 1 << 10, BlockSize: 8}

	a, err := deriveKEK("correct horse battery staple", params, KeyLength256)
	if err != nil {
		t.Fatalf("deriveKEK: %v", err)
	}
	b, err := deriveKEK("Correct horse battery staple", params, KeyLength256)
	if err != nil {
		t.Fatalf("deriveKEK: %v", err)
	}
	if string(a) == string(b) {
		t.Fatal("expected different passphrases to derive different KEKs")
	}
}
