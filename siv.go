package vaultcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// sivEngine implements AES-SIV (RFC 5297) deterministic authenticated
// encryption used for filename encryption (spec §4.3). Unlike the
// classic construction that splits one double-length key in half, the
// two keys here are the engine's existing primary and HMAC keys
// (spec §9 Open Question 1): hmacKey drives S2V/CMAC, primaryKey drives
// CTR.
type sivEngine struct {
	macKey  []byte
	ctrKey  cipher.Block
	macBase cipher.Block
}

// newSIVEngine builds a sivEngine from the engine's two keys. Either key
// may be 16, 24, or 32 bytes (AES-128/192/256); they need not match in
// length.
func newSIVEngine(hmacKey, primaryKey []byte) (*sivEngine, error) {
	macBlock, err := aes.NewCipher(hmacKey)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: SIV CMAC cipher: %w", err)
	}
	ctrBlock, err := aes.NewCipher(primaryKey)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: SIV CTR cipher: %w", err)
	}
	return &sivEngine{macKey: hmacKey, ctrKey: ctrBlock, macBase: macBlock}, nil
}

// encrypt returns SIV || CTR(plaintext), authenticating plaintext and any
// additional data components (e.g. a directory ID).
func (e *sivEngine) encrypt(plaintext []byte, ad ...[]byte) []byte {
	siv := e.s2v(plaintext, ad...)
	ciphertext := make([]byte, len(plaintext))
	e.ctrMode(siv, plaintext, ciphertext)

	out := make([]byte, 16+len(ciphertext))
	copy(out[:16], siv)
	copy(out[16:], ciphertext)
	return out
}

// decrypt reverses encrypt, recomputing the SIV over the recovered
// plaintext and rejecting a mismatch with ErrDecryptFailed.
func (e *sivEngine) decrypt(ciphertext []byte, ad ...[]byte) ([]byte, error) {
	if len(ciphertext) < 16 {
		return nil, newDecryptFailed("SIV ciphertext shorter than SIV block", nil)
	}
	siv := ciphertext[:16]
	ct := ciphertext[16:]

	plaintext := make([]byte, len(ct))
	e.ctrMode(siv, ct, plaintext)

	expected := e.s2v(plaintext, ad...)
	if subtle.ConstantTimeCompare(siv, expected) != 1 {
		return nil, newDecryptFailed("SIV authentication mismatch", nil)
	}
	return plaintext, nil
}

// s2v implements the RFC 5297 S2V construction over the additional-data
// components followed by the plaintext.
func (e *sivEngine) s2v(plaintext []byte, ad ...[]byte) []byte {
	d := e.cmac(make([]byte, 16))
	for _, a := range ad {
		d = xor(dbl(d), e.cmac(a))
	}

	var t []byte
	if len(plaintext) >= 16 {
		t = make([]byte, len(plaintext))
		copy(t, plaintext)
		xorInto(t[len(t)-16:], d)
	} else {
		t = xor(dbl(d), pad16(plaintext))
	}
	return e.cmac(t)
}

// cmac computes AES-CMAC (NIST SP 800-38B) over data using macBase.
func (e *sivEngine) cmac(data []byte) []byte {
	subkey1, subkey2 := cmacSubkeys(e.macBase)

	n := (len(data) + 15) / 16
	if n == 0 {
		n = 1
	}

	last := make([]byte, 16)
	if len(data) != 0 && len(data)%16 == 0 {
		copy(last, data[16*(n-1):])
		xorInto(last, subkey1)
	} else {
		copy(last, data[16*(n-1):])
		last = pad16(last[:len(data)-16*(n-1)])
		xorInto(last, subkey2)
	}

	mac := make([]byte, 16)
	for i := 0; i < n-1; i++ {
		xorInto(mac, data[i*16:(i+1)*16])
		e.macBase.Encrypt(mac, mac)
	}
	xorInto(mac, last)
	e.macBase.Encrypt(mac, mac)
	return mac
}

// ctrMode runs AES-CTR keyed by ctrKey with the top bit of byte 8 and the
// top bit of byte 12 of iv cleared, as RFC 5297 §2.5 requires, so that
// incrementing the low counter words cannot carry past those bits.
func (e *sivEngine) ctrMode(iv, src, dst []byte) {
	ctr := make([]byte, 16)
	copy(ctr, iv)
	ctr[8] &= 0x7f
	ctr[12] &= 0x7f

	stream := cipher.NewCTR(e.ctrKey, ctr)
	stream.XORKeyStream(dst, src)
}

// dbl doubles block in GF(2^128) per RFC 5297 §2.3.
func dbl(block []byte) []byte {
	out := make([]byte, 16)
	carry := uint64(0)
	for i := 0; i < 2; i++ {
		offset := (1 - i) * 8
		val := binary.BigEndian.Uint64(block[offset : offset+8])
		binary.BigEndian.PutUint64(out[offset:offset+8], (val<<1)|carry)
		carry = val >> 63
	}
	if carry != 0 {
		out[15] ^= 0x87
	}
	return out
}

// pad16 applies ISO/IEC 9797-1 padding method 2 (a single 0x80 byte
// followed by zeros) to fit data into exactly one 16-byte block.
func pad16(data []byte) []byte {
	out := make([]byte, 16)
	copy(out, data)
	out[len(data)] = 0x80
	return out
}

func xor(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range out {
		if i < len(b) {
			out[i] = a[i] ^ b[i]
		} else {
			out[i] = a[i]
		}
	}
	return out
}

func xorInto(dst, src []byte) {
	for i := 0; i < len(dst) && i < len(src); i++ {
		dst[i] ^= src[i]
	}
}

// cmacSubkeys derives the two CMAC subkeys from block per NIST SP 800-38B.
func cmacSubkeys(block cipher.Block) (k1, k2 []byte) {
	l := make([]byte, 16)
	block.Encrypt(l, l)
	k1 = dbl(l)
	k2 = dbl(k1)
	return k1, k2
}
