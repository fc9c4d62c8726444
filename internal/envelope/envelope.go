package envelope

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Prefix marks an encrypted value.
const Prefix = "enc1:"

// KeySize is the length of a raw key in bytes.
const KeySize = chacha20poly1305.KeySize

var encoding = base64.RawURLEncoding

// Key is a parsed encryption key.
type Key [KeySize]byte

// String returns the key in its exchange encoding.
func (k Key) String() string {
	return encoding.EncodeToString(k[:])
}

// Equal reports whether both keys hold the same bytes.
func (k Key) Equal(other Key) bool {
	return subtle.ConstantTimeCompare(k[:], other[:]) == 1
}

// GenerateKey returns a fresh random key.
func GenerateKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return Key{}, fmt.Errorf("failed to generate key: %w", err)
	}
	return k, nil
}

// ParseKey decodes an encoded key. Surrounding whitespace and base64 padding
// are tolerated.
func ParseKey(encoded string) (Key, error) {
	s := strings.TrimRight(strings.TrimSpace(encoded), "=")
	if s == "" {
		return Key{}, ErrNoKey
	}
	raw, err := encoding.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(raw) != KeySize {
		return Key{}, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(raw))
	}
	var k Key
	copy(k[:], raw)
	return k, nil
}

// IsEncrypted reports whether raw carries the envelope prefix.
func IsEncrypted(raw string) bool {
	return strings.HasPrefix(raw, Prefix)
}

// Encrypt seals plaintext under key with a fresh random nonce.
func Encrypt(plaintext string, key Key) (string, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return Prefix + encoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope produced by Encrypt. A wrong key or a tampered
// envelope yields ErrInvalidToken, never a wrong plaintext.
func Decrypt(token string, key Key) (string, error) {
	if !IsEncrypted(token) {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, errNotEnvelope)
	}
	sealed, err := encoding.DecodeString(strings.TrimPrefix(token, Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return "", fmt.Errorf("%w: envelope too short", ErrInvalidToken)
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(plain), nil
}
