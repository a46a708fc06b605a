// Package crypto seals account PII at rest. Values are encrypted with
// AES-256-GCM and looked up through an HMAC-SHA256 blind index, so an email
// can be found by equality without ever being stored in the clear.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const KeySize = 32

var (
	ErrKeySize         = fmt.Errorf("key must be %d bytes", KeySize)
	ErrCiphertextShort = errors.New("ciphertext too short")
)

// Box holds the two independent keys. It is safe for concurrent use.
type Box struct {
	aead     cipher.AEAD
	indexKey []byte
}

func NewBox(encryptionKey, blindIndexKey []byte) (*Box, error) {
	if len(encryptionKey) != KeySize {
		return nil, fmt.Errorf("encryption key: %w", ErrKeySize)
	}
	if len(blindIndexKey) != KeySize {
		return nil, fmt.Errorf("blind index key: %w", ErrKeySize)
	}
	block, err := aes.NewCipher(encryptionKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Box{aead: aead, indexKey: append([]byte(nil), blindIndexKey...)}, nil
}

// Seal returns base64(nonce || ciphertext). The empty string seals to itself.
func (b *Box) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := b.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (b *Box) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	ns := b.aead.NonceSize()
	if len(data) < ns {
		return "", ErrCiphertextShort
	}
	plain, err := b.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("open ciphertext: %w", err)
	}
	return string(plain), nil
}

// BlindIndex is deterministic for a given key.
func (b *Box) BlindIndex(plaintext string) string {
	if plaintext == "" {
		return ""
	}
	mac := hmac.New(sha256.New, b.indexKey)
	mac.Write([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SealIndexed seals plaintext and also returns its blind index.
func (b *Box) SealIndexed(plaintext string) (sealed, index string, err error) {
	if sealed, err = b.Seal(plaintext); err != nil {
		return "", "", err
	}
	return sealed, b.BlindIndex(plaintext), nil
}
