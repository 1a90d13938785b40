package vault

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
	"go.uber.org/atomic"
)

const (
	// PinHashKey is the store key holding the hashed pin.
	PinHashKey = "pin-code"

	pinSaltLen = 16
)

// ItemReader is the read side of the local secret store.
type ItemReader interface {
	GetItem(key, defaultValue string) string
}

// HashPin returns hex(salt || argon2id(pin, salt)), the format PinGuard
// compares against.
func HashPin(pin []byte) (string, error) {
	salt := make([]byte, pinSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}

	hash := deriveKey(pin, salt)
	return hex.EncodeToString(append(salt, hash...)), nil
}

// PinGuard checks a session pin against the stored hash before any secret
// is touched. After maxTries consecutive failures it invalidates the session
// and refuses every later attempt.
type PinGuard struct {
	store        ItemReader
	maxTries     int32
	failures     *atomic.Int32
	invalidated  *atomic.Bool
	onInvalidate func()
}

func NewPinGuard(store ItemReader, maxTries int, onInvalidate func()) *PinGuard {
	if maxTries <= 0 {
		maxTries = 3
	}

	return &PinGuard{
		store:        store,
		maxTries:     int32(maxTries),
		failures:     atomic.NewInt32(0),
		invalidated:  atomic.NewBool(false),
		onInvalidate: onInvalidate,
	}
}

func (g *PinGuard) Verify(pin []byte) error {
	if g.invalidated.Load() {
		return types.ErrPinInvalidated
	}

	stored, err := hex.DecodeString(g.store.GetItem(PinHashKey, ""))
	if err == nil && len(stored) == pinSaltLen+keyLen {
		computed := deriveKey(pin, stored[:pinSaltLen])
		ok := hmac.Equal(computed, stored[pinSaltLen:])
		Wipe(computed)
		if ok {
			g.failures.Store(0)
			return nil
		}
	}

	if g.failures.Inc() >= g.maxTries {
		if g.invalidated.CAS(false, true) {
			log.Warn("Pin invalidated after ", g.maxTries, " failed attempts")
			if g.onInvalidate != nil {
				g.onInvalidate()
			}
		}
		return types.ErrPinInvalidated
	}

	return types.ErrWrongPin
}

func (g *PinGuard) RemainingTries() int {
	n := g.maxTries - g.failures.Load()
	if n < 0 {
		return 0
	}

	return int(n)
}
