// Package keystore manages the cryptographic keys behind the key store demo
// screen. Key material lives in the OS keychain where one is available,
// through the keyring library, with an encrypted file backend under the
// harness storage directory as the fallback.
package keystore

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/99designs/keyring"
	"github.com/google/uuid"
)

// Kind says what a store entry holds.
type Kind string

const (
	// KindKey is a symmetric key.
	KindKey Kind = "key"
	// KindPair is an asymmetric key pair.
	KindPair Kind = "pair"
)

// Attributes describe one stored entry, without its key material.
type Attributes struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	Algorithm string    `json:"algorithm"`
	Created   time.Time `json:"created"`
}

// entry is the stored form: attributes plus serialised key material, a raw
// symmetric key or a PKCS #8 private key.
type entry struct {
	Attributes Attributes `json:"attributes"`
	Material   []byte     `json:"material"`
}

// Store holds named keys in a keyring.
type Store struct {
	ring keyring.Keyring
}

// Open opens the key store for the named service. Native keychain backends
// are preferred; the file backend under dir serves where none is available,
// so the harness works on headless development machines too.
func Open(service, dir string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.FileBackend,
		},
		FileDir:          filepath.Join(dir, "keystore"),
		FilePasswordFunc: keyring.FixedStringPrompt(service),
	})
	if err != nil {
		return nil, fmt.Errorf("key store didn't open: %w", err)
	}
	return &Store{ring: ring}, nil
}

// NewMemory returns a store over an in-memory keyring, for tests.
func NewMemory() *Store {
	return &Store{ring: keyring.NewArrayKeyring(nil)}
}

func (store *Store) put(item entry) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return store.ring.Set(keyring.Item{
		Key:   item.Attributes.Name,
		Data:  data,
		Label: string(item.Attributes.Kind) + " " + item.Attributes.Name,
	})
}

func (store *Store) get(name string) (entry, error) {
	item, err := store.ring.Get(name)
	if err != nil {
		return entry{}, fmt.Errorf("no store entry %q: %w", name, err)
	}
	var stored entry
	if err := json.Unmarshal(item.Data, &stored); err != nil {
		return entry{}, fmt.Errorf("store entry %q didn't decode: %w", name, err)
	}
	return stored, nil
}

// Summarise returns the attributes of every entry, sorted by name.
func (store *Store) Summarise() ([]Attributes, error) {
	names, err := store.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("store keys couldn't be listed: %w", err)
	}
	sort.Strings(names)
	summaries := make([]Attributes, 0, len(names))
	for _, name := range names {
		stored, err := store.get(name)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, stored.Attributes)
	}
	return summaries, nil
}

// DeleteAll removes every entry and reports how many went.
func (store *Store) DeleteAll() (int, error) {
	names, err := store.ring.Keys()
	if err != nil {
		return 0, fmt.Errorf("store keys couldn't be listed: %w", err)
	}
	deleted := 0
	for _, name := range names {
		if err := store.ring.Remove(name); err != nil {
			return deleted, fmt.Errorf("store entry %q couldn't be removed: %w", name, err)
		}
		deleted++
	}
	return deleted, nil
}

func newAttributes(name string, kind Kind, algorithm string) Attributes {
	return Attributes{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		Algorithm: algorithm,
		Created:   time.Now().UTC(),
	}
}
