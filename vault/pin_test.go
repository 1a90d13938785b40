package vault

import (
	"errors"
	"testing"

	"github.com/esteemapp/surfer-core/types"
	"github.com/stretchr/testify/require"
)

type mapStore map[string]string

func (m mapStore) GetItem(key, defaultValue string) string {
	if v, ok := m[key]; ok {
		return v
	}

	return defaultValue
}

func TestPinGuard_Verify(t *testing.T) {
	hash, err := HashPin([]byte("1234"))
	require.Nil(t, err)

	guard := NewPinGuard(mapStore{PinHashKey: hash}, 3, nil)
	require.Nil(t, guard.Verify([]byte("1234")))

	require.Equal(t, types.ErrWrongPin, guard.Verify([]byte("0000")))
	require.Equal(t, 2, guard.RemainingTries())

	// Success resets the counter.
	require.Nil(t, guard.Verify([]byte("1234")))
	require.Equal(t, 3, guard.RemainingTries())
}

func TestPinGuard_Invalidates(t *testing.T) {
	hash, err := HashPin([]byte("1234"))
	require.Nil(t, err)

	invalidated := 0
	guard := NewPinGuard(mapStore{PinHashKey: hash}, 2, func() { invalidated++ })

	require.Equal(t, types.ErrWrongPin, guard.Verify([]byte("0000")))
	require.Equal(t, types.ErrPinInvalidated, guard.Verify([]byte("0000")))
	require.Equal(t, 1, invalidated)

	// Even the right pin is refused now.
	require.Equal(t, types.ErrPinInvalidated, guard.Verify([]byte("1234")))
	require.Equal(t, 1, invalidated)
	require.Equal(t, 0, guard.RemainingTries())
}

func TestPinGuard_MissingHash(t *testing.T) {
	guard := NewPinGuard(mapStore{}, 3, nil)
	require.Equal(t, types.ErrWrongPin, guard.Verify([]byte("1234")))
}

func TestPinGuard_FailuresAreDecryptionErrors(t *testing.T) {
	hash, err := HashPin([]byte("1234"))
	require.Nil(t, err)

	guard := NewPinGuard(mapStore{PinHashKey: hash}, 2, nil)

	err = guard.Verify([]byte("0000"))
	require.True(t, errors.Is(err, types.ErrWrongPin))
	require.True(t, errors.Is(err, types.ErrDecryption))

	err = guard.Verify([]byte("0000"))
	require.True(t, errors.Is(err, types.ErrPinInvalidated))
	require.True(t, errors.Is(err, types.ErrDecryption))
}
