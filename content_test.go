package vaultcrypto

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// memChannel is an in-memory SeekableChannel backed by a growable byte
// slice, used to exercise the content codec without real file I/O.
type memChannel struct {
	data []byte
	pos  int64
}

func (c *memChannel) Read(buf []byte) (int, error) {
	if c.pos >= int64(len(c.data)) {
		return 0, io.EOF
	}
	n := copy(buf, c.data[c.pos:])
	c.pos += int64(n)
	return n, nil
}

func (c *memChannel) Write(buf []byte) (int, error) {
	end := c.pos + int64(len(buf))
	if end > int64(len(c.data)) {
		grown := make([]byte, end)
		copy(grown, c.data)
		c.data = grown
	}
	n := copy(c.data[c.pos:end], buf)
	c.pos = end
	return n, nil
}

func (c *memChannel) Position(offset int64) error {
	c.pos = offset
	return nil
}

func (c *memChannel) Pos() (int64, error) { return c.pos, nil }

func (c *memChannel) Truncate(size int64) error {
	if size <= int64(len(c.data)) {
		c.data = c.data[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, c.data)
	c.data = grown
	return nil
}

func (c *memChannel) Size() (int64, error) { return int64(len(c.data)), nil }

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(KeyLength256)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestContentRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		[]byte("a"),
		bytes.Repeat([]byte("x"), 16),
		bytes.Repeat([]byte("y"), 1000),
		bytes.Repeat([]byte{0x00, 0x0F, 0xAB}, 777),
	}

	for _, b := range cases {
		e := testEngine(t)
		ch := &memChannel{}

		n, err := e.EncryptFile(ch, bytes.NewReader(b))
		if err != nil {
			t.Fatalf("EncryptFile: %v", err)
		}
		if n != int64(len(b)) {
			t.Fatalf("EncryptFile returned %d, want %d", n, len(b))
		}

		ch.pos = 0
		var out bytes.Buffer
		got, err := e.DecryptFile(ch, &out)
		if err != nil {
			t.Fatalf("DecryptFile: %v", err)
		}
		if got != int64(len(b)) {
			t.Fatalf("DecryptFile returned count %d, want %d", got, len(b))
		}
		if !bytes.Equal(out.Bytes(), b) {
			t.Fatalf("round-trip mismatch: got %x, want %x", out.Bytes(), b)
		}
	}
}

func TestEncryptFileEmptyIsEightyBytes(t *testing.T) {
	e := testEngine(t)
	ch := &memChannel{}
	if _, err := e.EncryptFile(ch, bytes.NewReader(nil)); err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}
	if len(ch.data) != 80 {
		t.Fatalf("empty-file size = %d, want 80", len(ch.data))
	}
}

func TestContentLengthBound(t *testing.T) {
	b := bytes.Repeat([]byte("z"), 333)
	e := testEngine(t)
	ch := &memChannel{}
	if _, err := e.EncryptFile(ch, bytes.NewReader(b)); err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	blocks := int64((len(b) + 15) / 16)
	minSize := bodyOffset + blocks*16
	maxSize := bodyOffset + blocks*16 + (blocks*16*11)/100 + 16
	size := int64(len(ch.data))
	if size < minSize || size > maxSize {
		t.Fatalf("size %d outside bound [%d, %d]", size, minSize, maxSize)
	}
}

func TestDecryptRangePartial(t *testing.T) {
	b := make([]byte, 16)
	for i := range b {
		b[i] = byte(i)
	}
	e := testEngine(t)
	ch := &memChannel{}
	if _, err := e.EncryptFile(ch, bytes.NewReader(b)); err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	var out bytes.Buffer
	n, err := e.DecryptRange(ch, 5, 7, &out)
	if err != nil {
		t.Fatalf("DecryptRange: %v", err)
	}
	if n != 7 {
		t.Fatalf("DecryptRange returned %d bytes, want 7", n)
	}
	want := []byte{0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B}
	if !bytes.Equal(out.Bytes(), want) {
		t.Fatalf("partial read = %x, want %x", out.Bytes(), want)
	}
}

func TestTamperedContentFailsAuthenticationAfterDelivery(t *testing.T) {
	b := make([]byte, 16)
	for i := range b {
		b[i] = byte(i)
	}
	e := testEngine(t)
	ch := &memChannel{}
	if _, err := e.EncryptFile(ch, bytes.NewReader(b)); err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	ch.data[70] ^= 0xFF

	ok, err := e.IsAuthentic(&memChannel{data: append([]byte(nil), ch.data...)})
	if err != nil {
		t.Fatalf("IsAuthentic: %v", err)
	}
	if ok {
		t.Fatal("expected IsAuthentic to return false for tampered file")
	}

	var out bytes.Buffer
	readCh := &memChannel{data: append([]byte(nil), ch.data...)}
	n, err := e.DecryptFile(readCh, &out)
	if !errors.Is(err, ErrMacAuthenticationFailed) {
		t.Fatalf("DecryptFile: got %v, want ErrMacAuthenticationFailed", err)
	}
	if n != int64(len(b)) || out.Len() != len(b) {
		t.Fatalf("expected plaintext delivered before auth failure, got %d bytes", out.Len())
	}
}

func TestTamperedIVFailsAuthenticationAfterDelivery(t *testing.T) {
	b := make([]byte, 16)
	for i := range b {
		b[i] = byte(i)
	}
	e := testEngine(t)
	ch := &memChannel{}
	if _, err := e.EncryptFile(ch, bytes.NewReader(b)); err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	ch.data[0] ^= 0xFF

	ok, err := e.IsAuthentic(&memChannel{data: append([]byte(nil), ch.data...)})
	if err != nil {
		t.Fatalf("IsAuthentic: %v", err)
	}
	if ok {
		t.Fatal("expected IsAuthentic to return false for a flipped IV")
	}

	var out bytes.Buffer
	readCh := &memChannel{data: append([]byte(nil), ch.data...)}
	n, err := e.DecryptFile(readCh, &out)
	if !errors.Is(err, ErrMacAuthenticationFailed) {
		t.Fatalf("DecryptFile: got %v, want ErrMacAuthenticationFailed", err)
	}
	if n != int64(len(b)) || out.Len() != len(b) {
		t.Fatalf("expected garbled plaintext delivered before auth failure, got %d bytes", out.Len())
	}
	if bytes.Equal(out.Bytes(), b) {
		t.Fatal("expected plaintext to be garbled by the flipped IV, got original bytes")
	}
}

func TestTruncatedHeaderFailsWithHeaderError(t *testing.T) {
	e := testEngine(t)
	ch := &memChannel{}
	if _, err := e.EncryptFile(ch, bytes.NewReader([]byte("hello"))); err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}
	ch.data = ch.data[:40]
	ch.pos = 0

	if _, err := e.IsAuthentic(ch); !IsHeaderError(err) {
		t.Fatalf("IsAuthentic on truncated file: got %v, want HeaderError", err)
	}

	ch.pos = 0
	var out bytes.Buffer
	if _, err := e.DecryptFile(ch, &out); !IsHeaderError(err) {
		t.Fatalf("DecryptFile on truncated file: got %v, want HeaderError", err)
	}
}

func TestZeroizeLocksEngine(t *testing.T) {
	e := testEngine(t)
	e.Zeroize()
	if !e.Locked() {
		t.Fatal("expected engine to be locked after Zeroize")
	}
	ch := &memChannel{}
	if _, err := e.EncryptFile(ch, bytes.NewReader(nil)); !errors.Is(err, ErrEngineLocked) {
		t.Fatalf("EncryptFile after Zeroize: got %v, want ErrEngineLocked", err)
	}
}
