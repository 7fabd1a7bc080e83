package vaultcrypto

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"io"
)

// macTap is a stream adapter that lets ciphertext bytes pass through
// unchanged while also feeding them into a running HMAC (spec §9
// "Stream pipelines"). It must see bytes in exactly the order they reach
// the channel, which is why it always sits closest to the channel in the
// composed pipeline. The content MAC covers the header IV followed by the
// ciphertext body, so callers prime it with the IV before streaming body
// bytes through Write.
type macTap struct {
	w    io.Writer
	mac  hash.Hash
}

func newMacTap(w io.Writer, key []byte) *macTap {
	return &macTap{w: w, mac: hmac.New(sha256.New, key)}
}

func (t *macTap) Write(p []byte) (int, error) {
	t.mac.Write(p)
	return t.w.Write(p)
}

// Prime feeds b into the running MAC without forwarding it to the
// underlying writer, for header bytes (the IV) that reach the channel by
// some other write but must still be bound into the content MAC.
func (t *macTap) Prime(b []byte) { t.mac.Write(b) }

func (t *macTap) Sum() []byte { return t.mac.Sum(nil) }

// newReadMAC builds the HMAC used on the read side, where bytes are
// observed via io.TeeReader(channel, mac) instead of a Write-side tap:
// hash.Hash already satisfies io.Writer, so no separate adapter type is
// needed for that direction.
func newReadMAC(key []byte) hash.Hash {
	return hmac.New(sha256.New, key)
}

// ctrWriter returns a writer that encrypts plaintext with AES-CTR under
// key/iv and writes the ciphertext to w.
func ctrWriter(block cipher.Block, iv []byte, w io.Writer) io.Writer {
	stream := cipher.NewCTR(block, iv)
	return &cipher.StreamWriter{S: stream, W: w}
}

// ctrReader returns a reader that decrypts AES-CTR ciphertext read from r
// under key/iv.
func ctrReader(block cipher.Block, iv []byte, r io.Reader) io.Reader {
	stream := cipher.NewCTR(block, iv)
	return &cipher.StreamReader{S: stream, R: r}
}
