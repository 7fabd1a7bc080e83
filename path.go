package vaultcrypto

import "strings"

// EncryptPath splits cleartext on clearSep, encrypts each component, and
// joins the result with encSep. Empty components (e.g. a leading
// separator) are preserved verbatim (spec §4.4).
func (e *Engine) EncryptPath(store MetadataStore, cleartext, clearSep, encSep string) (string, error) {
	parts := strings.Split(cleartext, clearSep)
	out := make([]string, len(parts))
	for i, p := range parts {
		if p == "" {
			out[i] = ""
			continue
		}
		enc, err := e.encryptComponent(store, p)
		if err != nil {
			return "", err
		}
		out[i] = enc
	}
	return strings.Join(out, encSep), nil
}

// DecryptPath reverses EncryptPath.
func (e *Engine) DecryptPath(store MetadataStore, encrypted, encSep, clearSep string) (string, error) {
	parts := strings.Split(encrypted, encSep)
	out := make([]string, len(parts))
	for i, p := range parts {
		if p == "" {
			out[i] = ""
			continue
		}
		dec, err := e.decryptComponent(store, p)
		if err != nil {
			return "", err
		}
		out[i] = dec
	}
	return strings.Join(out, clearSep), nil
}
