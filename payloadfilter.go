package vaultcrypto

import "strings"

// IsPayloadFile reports whether name is a payload-carrying encrypted
// file — one ending in BASIC_EXT or LONG_EXT — as opposed to a long-name
// metadata sidecar (spec §4.6). External directory walkers use this to
// enumerate entries worth decrypting.
func IsPayloadFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, metadataExt) {
		return false
	}
	return strings.HasSuffix(lower, basicExt) || strings.HasSuffix(lower, longExt)
}
