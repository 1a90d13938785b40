package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/base64"

	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
)

// Keys imported by the desktop client are stored in the OpenSSL passphrase
// format: base64("Salted__" || salt[8] || AES-256-CBC ciphertext). The format
// is not authenticated, so a wrong pin may unpad cleanly and yield garbage.
// Key parsing downstream rejects that through the WIF checksum.
const (
	legacyPrefix = "U2FsdGVkX1"
	legacyMagic  = "Salted__"
)

func decryptLegacy(encoded string, pin []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Wrap(types.ErrDecryption, "malformed base64")
	}
	if len(raw) < 16+aes.BlockSize || string(raw[:8]) != legacyMagic {
		return nil, errors.Wrap(types.ErrDecryption, "malformed legacy ciphertext")
	}

	salt := raw[8:16]
	body := raw[16:]
	if len(body)%aes.BlockSize != 0 {
		return nil, errors.Wrap(types.ErrDecryption, "ciphertext is not block aligned")
	}

	key, iv := evpBytesToKey(pin, salt)
	defer Wipe(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "new cipher")
	}

	plaintext := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, body)

	unpadded, ok := pkcs7Unpad(plaintext)
	if !ok {
		Wipe(plaintext)
		return nil, errors.Wrap(types.ErrDecryption, "bad padding")
	}

	return unpadded, nil
}

// evpBytesToKey is OpenSSL's EVP_BytesToKey with MD5 and one iteration,
// producing a 32 byte key and a 16 byte iv.
func evpBytesToKey(pin, salt []byte) ([]byte, []byte) {
	var (
		derived []byte
		prev    []byte
	)

	for len(derived) < 48 {
		h := md5.New()
		h.Write(prev)
		h.Write(pin)
		h.Write(salt)
		prev = h.Sum(nil)
		derived = append(derived, prev...)
	}

	return derived[:32], derived[32:48]
}

func pkcs7Unpad(b []byte) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}

	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, false
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, false
		}
	}

	return b[:len(b)-n], true
}
