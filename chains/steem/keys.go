package steem

import (
	"bytes"
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/esteemapp/surfer-core/types"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160"
)

const (
	wifVersion    = 0x80
	pubKeyLen     = 33
	keyPrefixSize = 3
)

type PrivateKey struct {
	key *btcec.PrivateKey
}

// ParseWIF decodes a wallet import format key. The WIF checksum is the only
// integrity check available for secrets stored in the unauthenticated legacy
// vault format, so a checksum mismatch is reported as a decryption failure.
func ParseWIF(wif []byte) (*PrivateKey, error) {
	raw, err := base58.Decode(string(wif))
	if err != nil || len(raw) != 37 || raw[0] != wifVersion {
		return nil, errors.Wrap(types.ErrDecryption, "decrypted secret is not a private key")
	}
	defer wipe(raw)

	checksum := doubleSha256(raw[:33])
	if !bytes.Equal(checksum[:4], raw[33:]) {
		return nil, errors.Wrap(types.ErrDecryption, "private key checksum mismatch")
	}

	key, _ := btcec.PrivKeyFromBytes(raw[1:33])
	return &PrivateKey{key: key}, nil
}

// EncodeWIF is the inverse of ParseWIF.
func EncodeWIF(secret []byte) string {
	raw := append([]byte{wifVersion}, secret...)
	checksum := doubleSha256(raw)
	return base58.Encode(append(raw, checksum[:4]...))
}

// SignDigest returns a 65 byte compact recoverable signature. btcec always
// produces low-S signatures, which is the canonical form nodes require.
func (k *PrivateKey) SignDigest(digest []byte) ([]byte, error) {
	return ecdsa.SignCompact(k.key, digest, true)
}

// PublicKey returns the prefixed base58 public key, e.g. "STM...".
func (k *PrivateKey) PublicKey(prefix string) string {
	return EncodePublicKey(k.key.PubKey().SerializeCompressed(), prefix)
}

// Zero clears the key material.
func (k *PrivateKey) Zero() {
	if k != nil && k.key != nil {
		k.key.Zero()
	}
}

func EncodePublicKey(compressed []byte, prefix string) string {
	checksum := ripemd(compressed)
	return prefix + base58.Encode(append(append([]byte{}, compressed...), checksum[:4]...))
}

// DecodePublicKey returns the 33 byte compressed key of a prefixed public
// key string.
func DecodePublicKey(s string) ([]byte, error) {
	if len(s) <= keyPrefixSize {
		return nil, errors.Errorf("invalid public key %q", s)
	}

	raw, err := base58.Decode(s[keyPrefixSize:])
	if err != nil || len(raw) != pubKeyLen+4 {
		return nil, errors.Errorf("invalid public key %q", s)
	}

	checksum := ripemd(raw[:pubKeyLen])
	if !bytes.Equal(checksum[:4], raw[pubKeyLen:]) {
		return nil, errors.Errorf("public key checksum mismatch %q", s)
	}

	return raw[:pubKeyLen], nil
}

func doubleSha256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}

func ripemd(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
