// Package secrets encrypts provider credentials for storage at rest.
//
// Ciphertext format is base64(nonce || AES-256-GCM sealed payload). The AES
// key is derived from a single process-wide secret configured at startup and
// threaded in at construction time; it is never read from globals.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptyKey indicates the encryptor was built with an empty secret.
	ErrEmptyKey = errors.New("encryption key is empty")
	// ErrMalformedCiphertext indicates the stored value cannot be decrypted.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")
)

// Encryptor performs authenticated symmetric encryption of credential secrets.
type Encryptor struct {
	aesKey []byte
}

// New derives the AES-256 key from the configured secret.
// Any non-empty string works; the same secret always yields the same key.
func New(secret string) (*Encryptor, error) {
	if secret == "" {
		return nil, ErrEmptyKey
	}

	key := sha256.Sum256([]byte(secret))
	return &Encryptor{aesKey: key[:]}, nil
}

// Encrypt seals the plaintext and returns opaque base64 text for storage.
// Encryption is randomized: encrypting the same value twice yields
// different ciphertexts.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(e.aesKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Tampered or truncated input fails with
// ErrMalformedCiphertext.
func (e *Encryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	block, err := aes.NewCipher(e.aesKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return "", ErrMalformedCiphertext
	}

	plaintext, err := gcm.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrMalformedCiphertext
	}

	return string(plaintext), nil
}
