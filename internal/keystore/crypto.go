package keystore

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	algorithmKey  = "ChaCha20-Poly1305"
	algorithmPair = "RSA-2048 OAEP SHA-256"

	pairBits = 2048
)

// Capabilities reports what the store can do, for the capabilities command.
func Capabilities() map[string]any {
	return map[string]any{
		"key": map[string]any{
			"algorithm": algorithmKey,
			"bits":      8 * chacha20poly1305.KeySize,
			"purposes":  []string{"encrypt", "decrypt"},
		},
		"pair": map[string]any{
			"algorithm": algorithmPair,
			"bits":      pairBits,
			"purposes":  []string{"encrypt", "decrypt"},
		},
	}
}

// GenerateKey creates and stores a symmetric key under the given name,
// replacing any entry with the same name.
func (store *Store) GenerateKey(name string) (Attributes, error) {
	if name == "" {
		return Attributes{}, errors.New("key name is empty")
	}
	material := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, material); err != nil {
		return Attributes{}, fmt.Errorf("key material couldn't be generated: %w", err)
	}
	item := entry{
		Attributes: newAttributes(name, KindKey, algorithmKey),
		Material:   material,
	}
	if err := store.put(item); err != nil {
		return Attributes{}, fmt.Errorf("key %q couldn't be stored: %w", name, err)
	}
	return item.Attributes, nil
}

// GeneratePair creates and stores an RSA key pair under the given name,
// replacing any entry with the same name.
func (store *Store) GeneratePair(name string) (Attributes, error) {
	if name == "" {
		return Attributes{}, errors.New("key pair name is empty")
	}
	private, err := rsa.GenerateKey(rand.Reader, pairBits)
	if err != nil {
		return Attributes{}, fmt.Errorf("key pair couldn't be generated: %w", err)
	}
	material, err := x509.MarshalPKCS8PrivateKey(private)
	if err != nil {
		return Attributes{}, fmt.Errorf("key pair couldn't be serialised: %w", err)
	}
	item := entry{
		Attributes: newAttributes(name, KindPair, algorithmPair),
		Material:   material,
	}
	if err := store.put(item); err != nil {
		return Attributes{}, fmt.Errorf("key pair %q couldn't be stored: %w", name, err)
	}
	return item.Attributes, nil
}

// TestResult is the outcome of an encrypt round-trip self-test.
type TestResult struct {
	Name       string `json:"name"`
	Kind       Kind   `json:"kind"`
	Algorithm  string `json:"algorithm"`
	Ciphertext string `json:"ciphertext"`
	Decrypted  string `json:"decrypted"`
	Passed     bool   `json:"passed"`
}

// Encrypt runs a round-trip self-test with the named entry: encrypt the
// sentinel, decrypt the result, compare. The ciphertext comes back base64
// encoded so the page can show it.
func (store *Store) Encrypt(name, sentinel string) (TestResult, error) {
	stored, err := store.get(name)
	if err != nil {
		return TestResult{}, err
	}

	var ciphertext []byte
	var decrypted string
	switch stored.Attributes.Kind {
	case KindKey:
		ciphertext, decrypted, err = roundTripKey(stored.Material, sentinel)
	case KindPair:
		ciphertext, decrypted, err = roundTripPair(stored.Material, sentinel)
	default:
		err = fmt.Errorf("store entry %q has unknown kind %q", name, stored.Attributes.Kind)
	}
	if err != nil {
		return TestResult{}, fmt.Errorf("encrypt with %q failed: %w", name, err)
	}

	return TestResult{
		Name:       name,
		Kind:       stored.Attributes.Kind,
		Algorithm:  stored.Attributes.Algorithm,
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Decrypted:  decrypted,
		Passed:     decrypted == sentinel,
	}, nil
}

func roundTripKey(material []byte, sentinel string) ([]byte, string, error) {
	aead, err := chacha20poly1305.New(material)
	if err != nil {
		return nil, "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(sentinel), nil)

	opened, err := aead.Open(nil, sealed[:aead.NonceSize()], sealed[aead.NonceSize():], nil)
	if err != nil {
		return nil, "", err
	}
	return sealed, string(opened), nil
}

func roundTripPair(material []byte, sentinel string) ([]byte, string, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(material)
	if err != nil {
		return nil, "", err
	}
	private, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, "", fmt.Errorf("stored pair isn't RSA")
	}
	ciphertext, err := rsa.EncryptOAEP(
		sha256.New(), rand.Reader, &private.PublicKey, []byte(sentinel), nil)
	if err != nil {
		return nil, "", err
	}
	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, private, ciphertext, nil)
	if err != nil {
		return nil, "", err
	}
	return ciphertext, string(plaintext), nil
}
