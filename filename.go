package vaultcrypto

import "strings"

// encryptComponent implements the per-component encryption protocol of
// spec §4.3: deterministic AES-SIV, base32, then either a short BASIC_EXT
// name or a spill into a long-name group sidecar.
func (e *Engine) encryptComponent(store MetadataStore, cleartext string) (string, error) {
	if !e.keys.ready() {
		return "", ErrEngineLocked
	}
	siv, err := e.sivEngine()
	if err != nil {
		return "", err
	}

	ct := []byte(cleartext)
	sivOut := siv.encrypt(ct)
	enc := encodeComponent(sivOut)

	if len(enc)+len(basicExt) <= encryptedNameLimit {
		return enc + basicExt, nil
	}

	prefix := enc[:longNamePrefixLength]
	metaName := prefix + metadataExt

	raw, err := store.ReadPathSpecificMetadata(metaName)
	if err != nil {
		return "", err
	}
	meta, err := loadLongNameMetadata(raw)
	if err != nil {
		return "", err
	}

	id, added := meta.uuidFor(enc)
	if added {
		out, err := meta.marshal()
		if err != nil {
			return "", newDecryptFailed("marshaling long-name metadata", err)
		}
		if err := store.WritePathSpecificMetadata(metaName, out); err != nil {
			return "", err
		}
	}

	return prefix + id + longExt, nil
}

// decryptComponent reverses encryptComponent.
func (e *Engine) decryptComponent(store MetadataStore, encrypted string) (string, error) {
	if !e.keys.ready() {
		return "", ErrEngineLocked
	}
	siv, err := e.sivEngine()
	if err != nil {
		return "", err
	}

	var enc string
	switch {
	case strings.HasSuffix(strings.ToLower(encrypted), longExt):
		stripped := encrypted[:len(encrypted)-len(longExt)]
		if len(stripped) <= longNamePrefixLength {
			return "", newDecryptFailed("long filename shorter than group prefix", nil)
		}
		prefix := stripped[:longNamePrefixLength]
		idStr := stripped[longNamePrefixLength:]

		metaName := prefix + metadataExt
		raw, err := store.ReadPathSpecificMetadata(metaName)
		if err != nil {
			return "", err
		}
		meta, err := loadLongNameMetadata(raw)
		if err != nil {
			return "", err
		}
		enc, err = meta.encryptedNameFor(idStr)
		if err != nil {
			return "", err
		}
	case strings.HasSuffix(strings.ToLower(encrypted), basicExt):
		enc = encrypted[:len(encrypted)-len(basicExt)]
	default:
		return "", newDecryptFailed("unrecognized encrypted filename suffix", nil)
	}

	sivOut, err := decodeComponent(enc)
	if err != nil {
		return "", newDecryptFailed("base32-decoding encrypted filename", err)
	}
	plain, err := siv.decrypt(sivOut)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
