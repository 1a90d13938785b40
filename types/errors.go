package types

import "github.com/pkg/errors"

var (
	// ErrDecryption covers both a wrong pin and a corrupted ciphertext.
	ErrDecryption = errors.New("cannot decrypt secret")

	ErrUnsupportedAccountKind = errors.New("unsupported account kind")
	ErrInvalidAccount         = errors.New("invalid account")
	ErrMissingSecret          = errors.New("account has no secret for key role")
	ErrMissingAuthorityState  = errors.New("account authority state is not loaded")

	// ErrOperationRejected is returned when a backend declined the bundle.
	ErrOperationRejected = errors.New("operation rejected")
	// ErrTransport is returned on network failures talking to a backend.
	ErrTransport = errors.New("transport error")

	// ErrActivityLog is only reported on the activity logger's own channel.
	ErrActivityLog = errors.New("activity log failure")

	// Pin failures are decryption failures to callers: errors.Is matches
	// both against ErrDecryption.
	ErrWrongPin       = errors.WithMessage(ErrDecryption, "wrong pin")
	ErrPinInvalidated = errors.WithMessage(ErrDecryption, "pin invalidated after too many attempts")
)
