package vaultcrypto

import (
	"crypto/rand"
	"fmt"
)

// KeyLengthBits enumerates the AES key lengths this module honors. A new
// keyfile records the length its Engine was created with, which NewEngine
// takes from its caller; 128 and 192 are not rejected for new keyfiles,
// and all three are readable when unlocking older vaults.
type KeyLengthBits int

const (
	KeyLength128 KeyLengthBits = 128
	KeyLength192 KeyLengthBits = 192
	KeyLength256 KeyLengthBits = 256
)

// Bytes returns the key length in bytes.
func (k KeyLengthBits) Bytes() int { return int(k) / 8 }

func (k KeyLengthBits) valid() bool {
	switch k {
	case KeyLength128, KeyLength192, KeyLength256:
		return true
	default:
		return false
	}
}

// SecretKeys holds the two symmetric keys an Engine operates with: a
// primary AES key (content CTR/ECB, AES-SIV CTR half) and an HMAC key
// (content authentication, AES-SIV S2V half). Never exposed in raw form
// across the Engine boundary; callers reach it only through Engine's
// operations (spec §3, §4.1).
type SecretKeys struct {
	primary []byte
	hmac    []byte
}

// generateSecretKeys draws 2*length.Bytes() bytes from the platform CSPRNG and
// assigns primary/HMAC keys (spec §4.1 generateFresh).
func generateSecretKeys(length KeyLengthBits) (*SecretKeys, error) {
	if !length.valid() {
		return nil, fmt.Errorf("vaultcrypto: invalid key length %d bits", length)
	}
	buf := make([]byte, 2*length.Bytes())
	if _, err := rand.Read(buf); err != nil {
		zeroize(buf)
		return nil, fmt.Errorf("vaultcrypto: generating key material: %w", err)
	}
	keys := &SecretKeys{
		primary: append([]byte(nil), buf[:length.Bytes()]...),
		hmac:    append([]byte(nil), buf[length.Bytes():]...),
	}
	zeroize(buf)
	return keys, nil
}

// newSecretKeys wraps already-derived primary/HMAC key bytes, taking
// ownership of the slices (used when restoring keys from a keyfile).
func newSecretKeys(primary, hmacKey []byte) *SecretKeys {
	return &SecretKeys{primary: primary, hmac: hmacKey}
}

func (k *SecretKeys) zeroize() {
	if k == nil {
		return
	}
	zeroize(k.primary)
	zeroize(k.hmac)
	k.primary = nil
	k.hmac = nil
}

func (k *SecretKeys) ready() bool {
	return k != nil && len(k.primary) > 0 && len(k.hmac) > 0
}

// zeroize overwrites b with zeros in place. Callers never read b
// afterward.
func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
