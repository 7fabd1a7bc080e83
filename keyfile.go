package vaultcrypto

import (
	"encoding/json"
	"io"
)

// keyfileDoc is the on-wire text form of a Keyfile (spec §3, §6): byte
// strings are base64 standard (encoding/json's default for []byte),
// integers are decimal. Field order is not meaningful on either side.
type keyfileDoc struct {
	ScryptSalt      []byte `json:"scryptSalt"`
	ScryptCostParam int    `json:"scryptCostParam"`
	ScryptBlockSize int    `json:"scryptBlockSize"`
	KeyLength       int    `json:"keyLength"`
	PrimaryMasterKey []byte `json:"primaryMasterKey"`
	HMacMasterKey    []byte `json:"hMacMasterKey"`
}

// EncryptMasterKey derives a fresh scrypt-based KEK from passphrase,
// wraps both of the engine's master keys under it, and writes the
// resulting keyfile document to out (spec §4.2). Apart from
// ErrEngineLocked when the engine holds no keys, it fails only on KDF,
// wrapping, or I/O error; all of those are abort-worthy in this engine's
// contract, never a case to retry.
func (e *Engine) EncryptMasterKey(out io.Writer, passphrase string) error {
	if !e.keys.ready() {
		return ErrEngineLocked
	}
	keyLength := KeyLengthBits(len(e.keys.primary) * 8)
	if !keyLength.valid() {
		return ErrUnsupportedKeyLength
	}

	params, err := defaultScryptParams()
	if err != nil {
		return err
	}
	kek, err := deriveKEK(passphrase, params, keyLength)
	if err != nil {
		return err
	}
	defer zeroize(kek)

	wrappedPrimary, err := aesKeyWrap(kek, e.keys.primary)
	if err != nil {
		return err
	}
	wrappedHMAC, err := aesKeyWrap(kek, e.keys.hmac)
	if err != nil {
		return err
	}

	doc := keyfileDoc{
		ScryptSalt:       params.Salt,
		ScryptCostParam:  params.CostParam,
		ScryptBlockSize:  params.BlockSize,
		KeyLength:        int(keyLength),
		PrimaryMasterKey: wrappedPrimary,
		HMacMasterKey:    wrappedHMAC,
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = out.Write(raw)
	return err
}

// Unlock parses a keyfile document from in, derives the KEK using its
// recorded scrypt parameters, and unwraps both master keys, installing
// them into the engine on success (spec §4.2). Prior keys, if any, are
// zeroized before being replaced.
//
// An unwrap integrity failure — wrong passphrase or a tampered keyfile —
// surfaces as ErrWrongPassword, distinct from a structurally malformed
// document (ErrDecryptFailed) or an out-of-range key length
// (ErrUnsupportedKeyLength).
func (e *Engine) Unlock(in io.Reader, passphrase string) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	var doc keyfileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return newDecryptFailed("parsing keyfile", err)
	}

	keyLength := KeyLengthBits(doc.KeyLength)
	if !keyLength.valid() {
		return ErrUnsupportedKeyLength
	}

	params := ScryptParams{Salt: doc.ScryptSalt, CostParam: doc.ScryptCostParam, BlockSize: doc.ScryptBlockSize}
	kek, err := deriveKEK(passphrase, params, keyLength)
	if err != nil {
		return err
	}
	defer zeroize(kek)

	primary, err := aesKeyUnwrap(kek, doc.PrimaryMasterKey)
	if err != nil {
		return ErrWrongPassword
	}
	hmacKey, err := aesKeyUnwrap(kek, doc.HMacMasterKey)
	if err != nil {
		zeroize(primary)
		return ErrWrongPassword
	}

	if e.keys != nil {
		e.keys.zeroize()
	}
	e.keys = newSecretKeys(primary, hmacKey)
	return nil
}
