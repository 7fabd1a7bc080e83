package vaultcrypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// ScryptParams are the tunable scrypt cost parameters recorded in every
// keyfile (spec §3). Parallelism is fixed at 1 (spec §4.1).
type ScryptParams struct {
	Salt      []byte
	CostParam int // N, must be a power of two > 1
	BlockSize int // r
}

const (
	scryptSaltLength = 8
	defaultScryptN   = 1 << 14
	defaultScryptR   = 8
)

// defaultScryptParams generates fresh scrypt parameters for a new keyfile.
func defaultScryptParams() (ScryptParams, error) {
	salt := make([]byte, scryptSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return ScryptParams{}, fmt.Errorf("vaultcrypto: generating scrypt salt: %w", err)
	}
	return ScryptParams{Salt: salt, CostParam: defaultScryptN, BlockSize: defaultScryptR}, nil
}

// deriveKEK derives a key-encrypting-key from a passphrase using scrypt
// with parallelism fixed at 1 (spec §4.1). The passphrase is UTF-8 encoded
// into a working buffer that is zeroized on every exit path, including the
// error path.
func deriveKEK(passphrase string, params ScryptParams, length KeyLengthBits) ([]byte, error) {
	if !length.valid() {
		return nil, fmt.Errorf("vaultcrypto: invalid key length %d bits", length)
	}
	encoded := []byte(passphrase)
	defer zeroize(encoded)

	kek, err := scrypt.Key(encoded, params.Salt, params.CostParam, params.BlockSize, 1, length.Bytes())
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: scrypt key derivation: %w", err)
	}
	return kek, nil
}
