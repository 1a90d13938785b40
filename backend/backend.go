package backend

import (
	"context"

	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
)

// Credential is the decrypted signing material of one account, held for a
// single call. Zero must be called once the call is done.
type Credential interface {
	Username() string
	Role() types.KeyRole
	Zero()
}

// Backend submits operation bundles on behalf of an account. Resolve
// decrypts the credential for a key role with the session pin and makes no
// network call. Submit only accepts credentials resolved by the same backend.
type Backend interface {
	Kind() types.AuthKind
	Resolve(acc *types.Account, pin []byte, role types.KeyRole) (Credential, error)
	Submit(ctx context.Context, cred Credential, bundle types.Bundle) (*types.BroadcastResult, error)
}

// Backends selects the backend matching an account's kind. An account is
// always served by exactly one backend.
type Backends struct {
	byKind map[types.AuthKind]Backend
}

func NewBackends(backends ...Backend) *Backends {
	byKind := make(map[types.AuthKind]Backend, len(backends))
	for _, b := range backends {
		byKind[b.Kind()] = b
	}

	return &Backends{byKind: byKind}
}

func (b *Backends) Select(kind types.AuthKind) (Backend, error) {
	backend, ok := b.byKind[kind]
	if !ok {
		return nil, errors.Wrapf(types.ErrUnsupportedAccountKind, "kind %s", kind)
	}

	return backend, nil
}

func checkKind(acc *types.Account, kind types.AuthKind) error {
	if acc == nil || acc.Kind() != kind {
		return errors.Wrapf(types.ErrUnsupportedAccountKind, "expected %s account", kind)
	}

	return nil
}

func foreignCredential(cred Credential, kind types.AuthKind) error {
	return errors.Wrapf(types.ErrUnsupportedAccountKind, "%T is not a %s credential", cred, kind)
}
