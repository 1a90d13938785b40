package steem

import (
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/esteemapp/surfer-core/types"
	"github.com/stretchr/testify/require"
)

func newTestKey(t *testing.T) (*btcec.PrivateKey, string) {
	key, err := btcec.NewPrivateKey()
	require.Nil(t, err)

	return key, EncodeWIF(key.Serialize())
}

func TestWIF_RoundTrip(t *testing.T) {
	key, wif := newTestKey(t)

	parsed, err := ParseWIF([]byte(wif))
	require.Nil(t, err)
	require.Equal(t, EncodePublicKey(key.PubKey().SerializeCompressed(), "STM"), parsed.PublicKey("STM"))
}

func TestParseWIF_Corrupted(t *testing.T) {
	_, wif := newTestKey(t)

	// Flip the last character to break the checksum.
	b := []byte(wif)
	if b[len(b)-1] == '1' {
		b[len(b)-1] = '2'
	} else {
		b[len(b)-1] = '1'
	}

	_, err := ParseWIF(b)
	require.True(t, errors.Is(err, types.ErrDecryption))

	_, err = ParseWIF([]byte("not a key"))
	require.True(t, errors.Is(err, types.ErrDecryption))
}

func TestPublicKey_RoundTrip(t *testing.T) {
	key, _ := newTestKey(t)
	compressed := key.PubKey().SerializeCompressed()

	encoded := EncodePublicKey(compressed, "STM")
	require.Equal(t, "STM", encoded[:3])

	decoded, err := DecodePublicKey(encoded)
	require.Nil(t, err)
	require.Equal(t, compressed, decoded)

	_, err = DecodePublicKey(encoded[:len(encoded)-1] + "z")
	require.NotNil(t, err)
	_, err = DecodePublicKey("STM")
	require.NotNil(t, err)
}

func TestPrivateKey_Zero(t *testing.T) {
	_, wif := newTestKey(t)
	parsed, err := ParseWIF([]byte(wif))
	require.Nil(t, err)

	parsed.Zero()
	require.Equal(t, make([]byte, 32), parsed.key.Serialize())
}
