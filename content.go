package vaultcrypto

import (
	"bufio"
	"crypto/aes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
)

// On-disk layout offsets for an encrypted file (spec §3). The layout has
// no version byte; compatibility is by position.
const (
	ivOffset  = 0
	ivSize    = 16
	macOffset = 16
	macSize   = 32
	lenOffset = 48
	lenSize   = 16
	bodyOffset = ivSize + macSize + lenSize // 64

	aesBlockSize = aes.BlockSize
)

// fileHeader is the parsed prefix of an encrypted file: its IV and the
// stored MAC tag, read without yet trusting either.
type fileHeader struct {
	iv  []byte
	mac []byte
}

// readFileHeader validates minimum file size and reads the IV and stored
// MAC. Any failure here is a HeaderError, never a silent zero-length read
// (spec §8 property 10).
func readFileHeader(ch SeekableChannel) (*fileHeader, error) {
	size, err := ch.Size()
	if err != nil {
		return nil, newHeaderError("stat", err)
	}
	if size < bodyOffset {
		return nil, newHeaderError("size", fmt.Errorf("file is %d bytes, minimum is %d", size, bodyOffset))
	}
	if err := ch.Position(ivOffset); err != nil {
		return nil, newHeaderError("read IV", err)
	}
	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(ch, iv); err != nil {
		return nil, newHeaderError("read IV", err)
	}
	mac := make([]byte, macSize)
	if _, err := io.ReadFull(ch, mac); err != nil {
		return nil, newHeaderError("read MAC", err)
	}
	return &fileHeader{iv: iv, mac: mac}, nil
}

// readDecryptedContentLength reads and ECB-decrypts the stored length
// field (spec §4.5.1). ok is false only on a short read; a successfully
// decrypted length of zero is returned as (0, true, nil), never conflated
// with "unknown" (spec §9 Open Question 2).
func readDecryptedContentLength(ch SeekableChannel, primaryKey []byte) (length int64, ok bool, err error) {
	if err := ch.Position(lenOffset); err != nil {
		return 0, false, nil
	}
	buf := make([]byte, lenSize)
	if _, err := io.ReadFull(ch, buf); err != nil {
		return 0, false, nil
	}
	dec, err := ecbDecryptBlock(primaryKey, buf)
	if err != nil {
		return 0, false, err
	}
	length = int64(binary.BigEndian.Uint64(dec[:8]))
	return length, true, nil
}

// writeEncryptedContentLength ECB-encrypts length into the fixed 16-byte
// field and writes it at offset 48.
func writeEncryptedContentLength(ch SeekableChannel, primaryKey []byte, length int64) error {
	block := make([]byte, lenSize)
	binary.BigEndian.PutUint64(block[:8], uint64(length))
	enc, err := ecbEncryptBlock(primaryKey, block)
	if err != nil {
		return err
	}
	if err := ch.Position(lenOffset); err != nil {
		return err
	}
	_, err = ch.Write(enc)
	return err
}

// EncryptFile implements spec §4.5.2: writes a fresh header, streams
// plaintext through AES-CTR into a MAC-observing write, pads to a block
// boundary, appends a randomized run of fake blocks, then finalizes the
// MAC and the real length field. The MAC covers the IV followed by the
// ciphertext body, so a flipped IV invalidates it (spec §8 property 9).
// Returns the plaintext byte count.
func (e *Engine) EncryptFile(ch SeekableChannel, plaintext io.Reader) (int64, error) {
	if !e.keys.ready() {
		return 0, ErrEngineLocked
	}
	if err := ch.Truncate(0); err != nil {
		return 0, err
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return 0, fmt.Errorf("vaultcrypto: generating file IV: %w", err)
	}
	for i := ivSize - 8; i < ivSize; i++ {
		iv[i] = 0
	}
	if err := ch.Position(ivOffset); err != nil {
		return 0, err
	}
	if _, err := ch.Write(iv); err != nil {
		return 0, err
	}

	if err := ch.Position(macOffset); err != nil {
		return 0, err
	}
	if _, err := ch.Write(make([]byte, macSize)); err != nil {
		return 0, err
	}

	if err := writeEncryptedContentLength(ch, e.keys.primary, 0); err != nil {
		return 0, err
	}

	if err := ch.Position(bodyOffset); err != nil {
		return 0, err
	}

	block, err := aes.NewCipher(e.keys.primary)
	if err != nil {
		return 0, fmt.Errorf("vaultcrypto: content cipher: %w", err)
	}
	tap := newMacTap(ch, e.keys.hmac)
	tap.Prime(iv)
	cw := ctrWriter(block, iv, tap)
	buffered := bufio.NewWriter(cw)

	plaintextSize, err := io.Copy(buffered, plaintext)
	if err != nil {
		return 0, err
	}
	if err := buffered.Flush(); err != nil {
		return 0, err
	}

	padLen := aesBlockSize - int(plaintextSize%aesBlockSize)
	if _, err := buffered.Write(make([]byte, padLen)); err != nil {
		return 0, err
	}
	if err := buffered.Flush(); err != nil {
		return 0, err
	}

	blockCount := ceilDiv(plaintextSize, int64(aesBlockSize))
	maxFakeBlocks := ceilDiv(blockCount, 10)
	fakeBlocks := e.randIntN(maxFakeBlocks + 1)
	if fakeBlocks > 0 {
		if _, err := buffered.Write(make([]byte, fakeBlocks*aesBlockSize)); err != nil {
			return 0, err
		}
		if err := buffered.Flush(); err != nil {
			return 0, err
		}
	}

	mac := tap.Sum()
	if err := ch.Position(macOffset); err != nil {
		return 0, err
	}
	if _, err := ch.Write(mac); err != nil {
		return 0, err
	}

	if err := writeEncryptedContentLength(ch, e.keys.primary, plaintextSize); err != nil {
		return 0, err
	}

	return plaintextSize, nil
}

// DecryptFile implements spec §4.5.3: reads exactly plaintextSize bytes
// to out before draining and checking the MAC, so a tampered file still
// delivers its (possibly garbled) plaintext before reporting the fault.
// The MAC is recomputed over the header IV followed by the ciphertext
// body, so a flipped IV is caught here even though it only garbles the
// plaintext rather than touching the stored ciphertext or MAC bytes.
func (e *Engine) DecryptFile(ch SeekableChannel, out io.Writer) (int64, error) {
	if !e.keys.ready() {
		return 0, ErrEngineLocked
	}
	header, err := readFileHeader(ch)
	if err != nil {
		return 0, err
	}
	length, ok, err := readDecryptedContentLength(ch, e.keys.primary)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, newHeaderError("read length", nil)
	}

	if err := ch.Position(bodyOffset); err != nil {
		return 0, err
	}
	block, err := aes.NewCipher(e.keys.primary)
	if err != nil {
		return 0, fmt.Errorf("vaultcrypto: content cipher: %w", err)
	}
	mac := newReadMAC(e.keys.hmac)
	mac.Write(header.iv)
	tee := io.TeeReader(ch, mac)
	cr := ctrReader(block, header.iv, tee)

	n, err := io.CopyN(out, cr, length)
	if err != nil && err != io.EOF {
		return n, err
	}

	if _, err := io.Copy(io.Discard, tee); err != nil {
		return n, err
	}

	if subtle.ConstantTimeCompare(mac.Sum(nil), header.mac) != 1 {
		return n, ErrMacAuthenticationFailed
	}
	return n, nil
}

// DecryptRange implements spec §4.5.4: a seekable partial read that never
// verifies the MAC, re-seeding the CTR counter to the containing block.
func (e *Engine) DecryptRange(ch SeekableChannel, pos, length int64, out io.Writer) (int64, error) {
	if !e.keys.ready() {
		return 0, ErrEngineLocked
	}
	if err := validateRange(pos, length); err != nil {
		return 0, err
	}
	header, err := readFileHeader(ch)
	if err != nil {
		return 0, err
	}

	firstBlock := pos / aesBlockSize
	blockStart := firstBlock * aesBlockSize
	offsetInBlock := pos - blockStart

	iv := append([]byte(nil), header.iv...)
	binary.BigEndian.PutUint64(iv[ivSize-8:], uint64(firstBlock))

	if err := ch.Position(bodyOffset + blockStart); err != nil {
		return 0, err
	}
	block, err := aes.NewCipher(e.keys.primary)
	if err != nil {
		return 0, fmt.Errorf("vaultcrypto: content cipher: %w", err)
	}
	cr := ctrReader(block, iv, ch)

	if offsetInBlock > 0 {
		if _, err := io.CopyN(io.Discard, cr, offsetInBlock); err != nil {
			return 0, err
		}
	}

	n, err := io.CopyN(out, cr, length)
	if err != nil && err != io.EOF {
		return n, err
	}
	return n, nil
}

// IsAuthentic implements spec §4.5.5: recomputes the content MAC and
// reports whether it matches the stored tag, without decrypting anything.
func (e *Engine) IsAuthentic(ch SeekableChannel) (bool, error) {
	if !e.keys.ready() {
		return false, ErrEngineLocked
	}
	header, err := readFileHeader(ch)
	if err != nil {
		return false, err
	}
	if err := ch.Position(bodyOffset); err != nil {
		return false, err
	}
	tap := newMacTap(io.Discard, e.keys.hmac)
	tap.Prime(header.iv)
	if _, err := io.Copy(tap, ch); err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(tap.Sum(), header.mac) == 1, nil
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
