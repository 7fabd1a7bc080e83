// Command vaultdemo walks through a vault's cryptographic lifecycle
// against plain files in a temporary directory: create a keyfile, unlock
// it, encrypt a path and a file's contents, then read both back.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/cryptovault/vaultcore"
)

// osChannel adapts an *os.File to vaultcrypto.SeekableChannel.
type osChannel struct {
	f *os.File
}

func (c *osChannel) Read(buf []byte) (int, error)  { return c.f.Read(buf) }
func (c *osChannel) Write(buf []byte) (int, error) { return c.f.Write(buf) }
func (c *osChannel) Position(offset int64) error {
	_, err := c.f.Seek(offset, io.SeekStart)
	return err
}
func (c *osChannel) Pos() (int64, error) { return c.f.Seek(0, io.SeekCurrent) }
func (c *osChannel) Truncate(size int64) error {
	if err := c.f.Truncate(size); err != nil {
		return err
	}
	_, err := c.f.Seek(0, io.SeekStart)
	return err
}
func (c *osChannel) Size() (int64, error) {
	info, err := c.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// osMetadataStore resolves sidecar names against a root directory,
// matching spec §6's "atomic replace" recommendation via a temp-file
// rename.
type osMetadataStore struct {
	root string
}

func (s *osMetadataStore) ReadPathSpecificMetadata(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

func (s *osMetadataStore) WritePathSpecificMetadata(name string, data []byte) error {
	path := filepath.Join(s.root, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func main() {
	vaultDir, err := os.MkdirTemp("", "vaultdemo-*")
	if err != nil {
		log.Fatalf("creating vault directory: %v", err)
	}
	defer os.RemoveAll(vaultDir)
	fmt.Printf("vault directory: %s\n\n", vaultDir)

	store := &osMetadataStore{root: vaultDir}
	const passphrase = "correct horse battery staple"

	fmt.Println("=== creating a new vault ===")
	engine, err := vaultcrypto.NewEngine(vaultcrypto.KeyLength256)
	if err != nil {
		log.Fatalf("NewEngine: %v", err)
	}

	keyfilePath := filepath.Join(vaultDir, "vault.keyfile")
	keyfile, err := os.Create(keyfilePath)
	if err != nil {
		log.Fatalf("creating keyfile: %v", err)
	}
	if err := engine.EncryptMasterKey(keyfile, passphrase); err != nil {
		log.Fatalf("EncryptMasterKey: %v", err)
	}
	keyfile.Close()
	engine.Zeroize()
	fmt.Println("wrote keyfile, zeroized the in-memory engine")

	fmt.Println("\n=== unlocking with the correct passphrase ===")
	unlocked, err := vaultcrypto.NewLockedEngine()
	if err != nil {
		log.Fatalf("NewLockedEngine: %v", err)
	}

	keyfileIn, err := os.Open(keyfilePath)
	if err != nil {
		log.Fatalf("opening keyfile: %v", err)
	}
	if err := unlocked.Unlock(keyfileIn, passphrase); err != nil {
		log.Fatalf("Unlock: %v", err)
	}
	keyfileIn.Close()
	fmt.Println("unlocked successfully")

	fmt.Println("\n=== unlocking with the wrong passphrase ===")
	wrongEngine, err := vaultcrypto.NewLockedEngine()
	if err != nil {
		log.Fatalf("NewLockedEngine: %v", err)
	}
	keyfileIn2, err := os.Open(keyfilePath)
	if err != nil {
		log.Fatalf("opening keyfile: %v", err)
	}
	err = wrongEngine.Unlock(keyfileIn2, "Correct horse battery staple")
	keyfileIn2.Close()
	fmt.Printf("unlock error (expected WrongPassword): %v\n", err)

	fmt.Println("\n=== encrypting a path ===")
	clearPath := "notes/2026/march.txt"
	encPath, err := unlocked.EncryptPath(store, clearPath, "/", "/")
	if err != nil {
		log.Fatalf("EncryptPath: %v", err)
	}
	fmt.Printf("%q -> %q\n", clearPath, encPath)

	decPath, err := unlocked.DecryptPath(store, encPath, "/", "/")
	if err != nil {
		log.Fatalf("DecryptPath: %v", err)
	}
	fmt.Printf("%q -> %q\n", encPath, decPath)

	fmt.Println("\n=== encrypting file content ===")
	payloadPath := filepath.Join(vaultDir, encPath)
	if err := os.MkdirAll(filepath.Dir(payloadPath), 0o700); err != nil {
		log.Fatalf("creating payload directory: %v", err)
	}
	payloadFile, err := os.Create(payloadPath)
	if err != nil {
		log.Fatalf("creating payload file: %v", err)
	}
	content := []byte("March 2026 planning notes.\n")
	n, err := unlocked.EncryptFile(&osChannel{f: payloadFile}, bytes.NewReader(content))
	if err != nil {
		log.Fatalf("EncryptFile: %v", err)
	}
	payloadFile.Close()
	fmt.Printf("encrypted %d plaintext bytes\n", n)

	payloadIn, err := os.Open(payloadPath)
	if err != nil {
		log.Fatalf("opening payload file: %v", err)
	}
	var out bytes.Buffer
	if _, err := unlocked.DecryptFile(&osChannel{f: payloadIn}, &out); err != nil {
		log.Fatalf("DecryptFile: %v", err)
	}
	payloadIn.Close()
	fmt.Printf("decrypted content: %q\n", out.String())

	unlocked.Zeroize()
	fmt.Println("\ndone")
}
