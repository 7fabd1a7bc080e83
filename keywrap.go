package vaultcrypto

import (
	"crypto/aes"
	"crypto/subtle"
	"errors"
	"fmt"
)

// kwDefaultIV is the fixed initial value used by RFC 3394 AES key wrap;
// successful unwrap must reproduce it exactly, which is the integrity
// check that turns a bad KEK into ErrWrongPassword (spec §4.2).
var kwDefaultIV = [8]byte{0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6, 0xA6}

// aesKeyWrap wraps keyIn (a multiple of 8 bytes, at least 16) under kek
// using the RFC 3394 / NIST SP 800-38F algorithm.
func aesKeyWrap(kek, keyIn []byte) ([]byte, error) {
	if len(keyIn) < 16 || len(keyIn)%8 != 0 {
		return nil, fmt.Errorf("vaultcrypto: key wrap input must be a multiple of 8 bytes, >= 16, got %d", len(keyIn))
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: key wrap cipher: %w", err)
	}

	n := len(keyIn) / 8
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], keyIn[i*8:(i+1)*8])
	}
	a := kwDefaultIV

	var b [16]byte
	for j := 0; j < 6; j++ {
		for i := 0; i < n; i++ {
			copy(b[0:8], a[:])
			copy(b[8:16], r[i][:])
			block.Encrypt(b[:], b[:])
			t := uint64(n*j + (i + 1))
			for k := 0; k < 8; k++ {
				a[k] = b[k] ^ byte(t>>(56-8*k))
			}
			copy(r[i][:], b[8:16])
		}
	}

	out := make([]byte, 0, 8+len(keyIn))
	out = append(out, a[:]...)
	for i := 0; i < n; i++ {
		out = append(out, r[i][:]...)
	}
	return out, nil
}

// aesKeyUnwrap reverses aesKeyWrap. A failed RFC 3394 integrity check (the
// recovered A block not matching kwDefaultIV) means either a wrong KEK or
// tampering; the caller maps that to ErrWrongPassword for keyfile unwraps.
func aesKeyUnwrap(kek, wrapped []byte) ([]byte, error) {
	if len(wrapped) < 24 || len(wrapped)%8 != 0 {
		return nil, fmt.Errorf("vaultcrypto: wrapped key must be a multiple of 8 bytes, >= 24, got %d", len(wrapped))
	}
	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: key unwrap cipher: %w", err)
	}

	n := len(wrapped)/8 - 1
	var a [8]byte
	copy(a[:], wrapped[0:8])
	r := make([][8]byte, n)
	for i := 0; i < n; i++ {
		copy(r[i][:], wrapped[(i+1)*8:(i+2)*8])
	}

	var b [16]byte
	for j := 5; j >= 0; j-- {
		for i := n - 1; i >= 0; i-- {
			t := uint64(n*j + (i + 1))
			var aXor [8]byte
			copy(aXor[:], a[:])
			for k := 0; k < 8; k++ {
				aXor[k] ^= byte(t >> (56 - 8*k))
			}
			copy(b[0:8], aXor[:])
			copy(b[8:16], r[i][:])
			block.Decrypt(b[:], b[:])
			copy(a[:], b[0:8])
			copy(r[i][:], b[8:16])
		}
	}

	if subtle.ConstantTimeCompare(a[:], kwDefaultIV[:]) != 1 {
		return nil, errors.New("vaultcrypto: key wrap integrity check failed")
	}

	out := make([]byte, 0, n*8)
	for i := 0; i < n; i++ {
		out = append(out, r[i][:]...)
	}
	return out, nil
}
