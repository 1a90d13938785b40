package database

import (
	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
)

// AccountRecord is the stored form of an imported account. Keys and the
// access token are vault ciphertexts.
type AccountRecord struct {
	Username    string        `json:"username"`
	Type        string        `json:"type"`
	Keys        types.Secrets `json:"keys"`
	AccessToken string        `json:"accessToken,omitempty"`
}

func (r *AccountRecord) Account() (*types.Account, error) {
	switch types.ParseAuthKind(r.Type) {
	case types.AuthKindLocalKey:
		return types.NewLocalKeyAccount(r.Username, r.Keys)
	case types.AuthKindDelegated:
		return types.NewDelegatedAccount(r.Username, r.AccessToken)
	}

	return nil, errors.Wrapf(types.ErrUnsupportedAccountKind, "account %s has type %q", r.Username, r.Type)
}
