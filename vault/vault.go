// Package vault recovers plaintext secrets (private keys, access tokens)
// from their encrypted-at-rest form using a session pin.
//
// Decrypt is a pure function of (ciphertext, pin). Plaintext is returned to
// the caller and never logged, cached or retained here; callers are expected
// to Wipe it once the signing call that needed it returns.
package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"

	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	versionPrefix = "v1:"

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLen       = chacha20poly1305.KeySize
	saltLen      = 16
	nonceLen     = chacha20poly1305.NonceSizeX
)

// Encrypt seals plaintext under pin in the authenticated v1 format:
//
//	"v1:" base64([salt: 16] [nonce: 24] [ciphertext+tag])
//
// The key is argon2id(pin, salt) and the cipher XChaCha20-Poly1305, with the
// version prefix as additional data.
func Encrypt(plaintext, pin []byte) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}

	key := deriveKey(pin, salt)
	defer Wipe(key)

	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "generate nonce")
	}

	out := make([]byte, 0, saltLen+nonceLen+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, []byte(versionPrefix))

	return versionPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt returns the plaintext sealed in ciphertext. Any failure, whether
// caused by a wrong pin or by corrupted input, is reported as
// types.ErrDecryption.
func Decrypt(ciphertext string, pin []byte) ([]byte, error) {
	if len(pin) == 0 {
		return nil, errors.Wrap(types.ErrDecryption, "empty pin")
	}

	switch {
	case strings.HasPrefix(ciphertext, versionPrefix):
		return decryptV1(strings.TrimPrefix(ciphertext, versionPrefix), pin)
	case strings.HasPrefix(ciphertext, legacyPrefix):
		return decryptLegacy(ciphertext, pin)
	}

	return nil, errors.Wrap(types.ErrDecryption, "unknown ciphertext format")
}

// DecryptString is Decrypt for callers that need a string, such as access
// tokens that end up in an HTTP header anyway.
func DecryptString(ciphertext string, pin []byte) (string, error) {
	bz, err := Decrypt(ciphertext, pin)
	if err != nil {
		return "", err
	}
	s := string(bz)
	Wipe(bz)

	return s, nil
}

func decryptV1(encoded string, pin []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(types.ErrDecryption, "malformed base64")
	}
	if len(raw) < saltLen+nonceLen+chacha20poly1305.Overhead {
		return nil, errors.Wrap(types.ErrDecryption, "ciphertext too short")
	}

	salt := raw[:saltLen]
	nonce := raw[saltLen : saltLen+nonceLen]

	key := deriveKey(pin, salt)
	defer Wipe(key)

	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, raw[saltLen+nonceLen:], []byte(versionPrefix))
	if err != nil {
		return nil, errors.Wrap(types.ErrDecryption, "authentication failed")
	}

	return plaintext, nil
}

func deriveKey(pin, salt []byte) []byte {
	return argon2.IDKey(pin, salt, argonTime, argonMemory, argonThreads, keyLen)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "new xchacha20-poly1305")
	}

	return aead, nil
}

// Wipe zeroes b in place.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
