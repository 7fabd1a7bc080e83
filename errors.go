package vaultcrypto

import (
	"errors"
	"fmt"
)

// Sentinel error kinds exposed across the engine boundary (spec §6, §7).
var (
	// ErrWrongPassword is raised only by a key-unwrap integrity failure
	// while decrypting a keyfile's master keys.
	ErrWrongPassword = errors.New("vaultcrypto: wrong password")

	// ErrUnsupportedKeyLength is raised when a keyfile declares a key
	// length the platform AES implementation cannot honor.
	ErrUnsupportedKeyLength = errors.New("vaultcrypto: unsupported key length")

	// ErrDecryptFailed covers AES-SIV filename authentication failures,
	// malformed long names, unknown component suffixes, missing UUIDs in
	// long-name metadata, and any other ciphertext-integrity or
	// structural fault discovered at read time.
	ErrDecryptFailed = errors.New("vaultcrypto: decryption failed")

	// ErrMacAuthenticationFailed is a DecryptFailed subclass specific to
	// full-file content integrity; it is raised after plaintext has
	// already been delivered to the caller (spec §4.5.3). It wraps
	// ErrDecryptFailed so callers matching on the broader kind via
	// errors.Is still catch it.
	ErrMacAuthenticationFailed = fmt.Errorf("vaultcrypto: content authentication failed: %w", ErrDecryptFailed)

	// ErrEngineLocked is returned by any cryptographic operation
	// attempted after Zeroize or before the engine's keys are set.
	ErrEngineLocked = errors.New("vaultcrypto: engine has no usable key material")
)

// HeaderError reports a malformed or truncated encrypted-file header: an
// I/O-shaped fault distinct from an authentication failure (spec §4.5.5,
// §8 property 10).
type HeaderError struct {
	Op  string // "read IV", "read MAC", "read length", ...
	Err error  // underlying I/O error, if any
}

func (e *HeaderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vaultcrypto: header %s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("vaultcrypto: header %s: short read", e.Op)
}

func (e *HeaderError) Unwrap() error { return e.Err }

func newHeaderError(op string, err error) error {
	return &HeaderError{Op: op, Err: err}
}

// longNameError wraps ErrDecryptFailed with context about which stage of
// the filename or long-name protocol failed, keeping
// errors.Is(err, ErrDecryptFailed) true for callers that only care about
// the kind.
type longNameError struct {
	reason string
	err    error
}

func (e *longNameError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("vaultcrypto: %s: %s", e.reason, e.err)
	}
	return fmt.Sprintf("vaultcrypto: %s", e.reason)
}

func (e *longNameError) Unwrap() error { return ErrDecryptFailed }

func newDecryptFailed(reason string, cause error) error {
	return &longNameError{reason: reason, err: cause}
}

// IsHeaderError reports whether err is a malformed/truncated header fault.
func IsHeaderError(err error) bool {
	var he *HeaderError
	return errors.As(err, &he)
}
