package vaultcrypto

import "encoding/base32"

// filenameEncoding is the fixed RFC 4648 base32 alphabet (no padding) used
// for every encrypted path component (spec §3). It is pinned so every
// vault produced by this engine decodes identically regardless of
// platform default.
var filenameEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func encodeComponent(b []byte) string {
	return filenameEncoding.EncodeToString(b)
}

func decodeComponent(s string) ([]byte, error) {
	return filenameEncoding.DecodeString(s)
}
