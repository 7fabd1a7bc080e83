package vaultcrypto

import (
	"crypto/aes"
	"fmt"
)

// ecbEncryptBlock encrypts exactly one AES block with key under ECB mode.
// Used only to obscure the stored plaintext-length field (spec §4.5.1).
// The field sits at offset 48-64, outside the content HMAC's coverage
// (the IV at [0,16) followed by the body at [64,end)), so it is left
// unauthenticated: a decrypted
// length is only a hint until DecryptFile's body MAC check passes.
func ecbEncryptBlock(key, plaintext []byte) ([]byte, error) {
	if len(plaintext) != aes.BlockSize {
		return nil, fmt.Errorf("vaultcrypto: ECB block must be %d bytes, got %d", aes.BlockSize, len(plaintext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: ECB cipher: %w", err)
	}
	out := make([]byte, aes.BlockSize)
	block.Encrypt(out, plaintext)
	return out, nil
}

// ecbDecryptBlock reverses ecbEncryptBlock.
func ecbDecryptBlock(key, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != aes.BlockSize {
		return nil, fmt.Errorf("vaultcrypto: ECB block must be %d bytes, got %d", aes.BlockSize, len(ciphertext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vaultcrypto: ECB cipher: %w", err)
	}
	out := make([]byte, aes.BlockSize)
	block.Decrypt(out, ciphertext)
	return out, nil
}
