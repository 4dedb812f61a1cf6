// Package vault encrypts supplier account passwords before they are stored.
//
// Tokens are self-contained: a version byte, a random 12-byte nonce and the
// AES-256-GCM ciphertext (with tag) are bundled and base64url-encoded, so the
// stored column is opaque text and tampering is detected on decryption.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

const tokenVersion = 0x01

// ErrDecrypt is returned for any token that cannot be decrypted: wrong key,
// truncated or malformed token, or failed integrity check.
var ErrDecrypt = errors.New("vault: decryption failed")

// DeriveKey turns an arbitrary non-empty secret into a 32-byte AES key.
// Both the dedicated vault key and the session-secret fallback go through
// the same derivation, so either works as long as it stays stable.
func DeriveKey(secret string) []byte {
	digest := sha256.Sum256([]byte(secret))
	return digest[:]
}

func Encrypt(plaintext string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("vault: bad key: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	token := make([]byte, 0, 1+len(nonce)+len(plaintext)+aesgcm.Overhead())
	token = append(token, tokenVersion)
	token = append(token, nonce...)
	token = aesgcm.Seal(token, nonce, []byte(plaintext), nil)

	return base64.RawURLEncoding.EncodeToString(token), nil
}

func Decrypt(token string, key []byte) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", ErrDecrypt
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("vault: bad key: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(raw) < 1+aesgcm.NonceSize() || raw[0] != tokenVersion {
		return "", ErrDecrypt
	}
	nonce := raw[1 : 1+aesgcm.NonceSize()]
	ciphertext := raw[1+aesgcm.NonceSize():]

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}
