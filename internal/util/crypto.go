package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/sha3"
)

const (
	// AttemptKeySize is the AES-128 key length protecting attempt tokens.
	AttemptKeySize = 16
	// AttemptIVSize is the GCM nonce length stored with each form.
	AttemptIVSize = 12
)

var (
	ErrEncryptionFailed = errors.New("failed to encrypt attempt token")
	ErrDecryptionFailed = errors.New("failed to decrypt attempt token")
)

// EncryptIndex seals plaintext with AES-128-GCM under the form's key and iv
// and returns it hex encoded. The iv is fixed per form; the token never
// leaves the server unencrypted.
func EncryptIndex(plaintext string, key, iv []byte) (string, error) {
	gcm, err := newGCM(key, iv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

// DecryptIndex reverses EncryptIndex. Any tampering with the ciphertext,
// including a single flipped bit, fails authentication.
func DecryptIndex(ciphertext string, key, iv []byte) (string, error) {
	data, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	gcm, err := newGCM(key, iv)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	plaintext, err := gcm.Open(nil, iv, data, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

func newGCM(key, iv []byte) (cipher.AEAD, error) {
	if len(key) != AttemptKeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", AttemptKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, len(iv))
}

// RandomKeyIssuer mints random key material from crypto/rand.
type RandomKeyIssuer struct{}

// NewKeyPair implements domain.KeyIssuer.
func (RandomKeyIssuer) NewKeyPair() ([]byte, []byte, error) {
	key := make([]byte, AttemptKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, nil, fmt.Errorf("failed to generate key: %w", err)
	}
	iv := make([]byte, AttemptIVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}
	return key, iv, nil
}

// HashPassword hashes a password with SHA3-256 and returns it hex encoded.
func HashPassword(password string) string {
	sum := sha3.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
