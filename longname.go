package vaultcrypto

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const (
	longNamePrefixLength = 32
	encryptedNameLimit   = 220

	basicExt    = ".vault"
	longExt     = ".vault.lng"
	metadataExt = ".vault.lngname"
)

// longNameEntry is one row of a long-name group's sidecar: a version-4
// UUID paired with the full base32(SIV) string it stands in for.
type longNameEntry struct {
	UUID              string `json:"uuid"`
	EncryptedFilename string `json:"encryptedFilename"`
}

// longNameMetadata is the per-group sidecar record (spec §3). It keeps
// both directions of the mapping so encrypt can reuse an existing UUID
// for a name it has already seen, and decrypt can resolve a UUID back to
// its encrypted name.
type longNameMetadata struct {
	Filenames []longNameEntry `json:"filenames"`

	byName map[string]string
	byID   map[string]string
}

func newLongNameMetadata() *longNameMetadata {
	return &longNameMetadata{
		byName: make(map[string]string),
		byID:   make(map[string]string),
	}
}

func loadLongNameMetadata(raw []byte) (*longNameMetadata, error) {
	if len(raw) == 0 {
		return newLongNameMetadata(), nil
	}
	var doc struct {
		Filenames []longNameEntry `json:"filenames"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, newDecryptFailed("parsing long-name metadata", err)
	}
	m := newLongNameMetadata()
	for _, e := range doc.Filenames {
		m.byID[e.UUID] = e.EncryptedFilename
		m.byName[e.EncryptedFilename] = e.UUID
	}
	m.Filenames = doc.Filenames
	return m, nil
}

func (m *longNameMetadata) marshal() ([]byte, error) {
	doc := struct {
		Filenames []longNameEntry `json:"filenames"`
	}{Filenames: m.Filenames}
	return json.Marshal(doc)
}

// uuidFor returns the UUID already bound to encryptedName, inserting a
// fresh random one if this is the first time the group has seen it
// (spec §4.3 step 5). It reports whether a new entry was added.
func (m *longNameMetadata) uuidFor(encryptedName string) (id string, added bool) {
	if existing, ok := m.byName[encryptedName]; ok {
		return existing, false
	}
	id = uuid.New().String()
	m.byID[id] = encryptedName
	m.byName[encryptedName] = id
	m.Filenames = append(m.Filenames, longNameEntry{UUID: id, EncryptedFilename: encryptedName})
	return id, true
}

// encryptedNameFor resolves a parsed UUID string back to its encrypted
// name, failing with DecryptFailed if the group has no such entry.
func (m *longNameMetadata) encryptedNameFor(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", newDecryptFailed("malformed UUID in long filename", err)
	}
	name, ok := m.byID[id]
	if !ok {
		return "", newDecryptFailed(fmt.Sprintf("no long-name metadata entry for UUID %s", id), nil)
	}
	return name, nil
}
