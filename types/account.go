package types

import (
	"fmt"

	"github.com/pkg/errors"
)

type AuthKind int

const (
	AuthKindUnknown AuthKind = iota
	AuthKindLocalKey
	AuthKindDelegated
)

func (k AuthKind) String() string {
	switch k {
	case AuthKindLocalKey:
		return "s"
	case AuthKindDelegated:
		return "sc"
	}

	return fmt.Sprintf("unknown(%d)", int(k))
}

// ParseAuthKind accepts the short tags used by the account store ("s", "sc").
func ParseAuthKind(s string) AuthKind {
	switch s {
	case "s":
		return AuthKindLocalKey
	case "sc":
		return AuthKindDelegated
	}

	return AuthKindUnknown
}

type KeyRole int

const (
	KeyRolePosting KeyRole = iota
	KeyRoleActive
	KeyRoleMemo
)

func (r KeyRole) String() string {
	switch r {
	case KeyRolePosting:
		return "posting"
	case KeyRoleActive:
		return "active"
	case KeyRoleMemo:
		return "memo"
	}

	return "unknown"
}

// Secrets holds the encrypted private keys of a LocalKey account. Empty
// strings mean the role was never imported.
type Secrets struct {
	Posting string `json:"posting,omitempty"`
	Active  string `json:"active,omitempty"`
	Memo    string `json:"memo,omitempty"`
}

// AccountAuth is an [account, weight] pair in an authority list.
type AccountAuth struct {
	Account string
	Weight  uint16
}

// KeyAuth is a [public key, weight] pair in an authority list.
type KeyAuth struct {
	Key    string
	Weight uint16
}

type Authority struct {
	WeightThreshold uint32        `json:"weight_threshold"`
	AccountAuths    []AccountAuth `json:"account_auths"`
	KeyAuths        []KeyAuth     `json:"key_auths"`
}

// Clone returns a deep copy so builders never alias the cached state.
func (a Authority) Clone() Authority {
	out := Authority{WeightThreshold: a.WeightThreshold}
	if a.AccountAuths != nil {
		out.AccountAuths = make([]AccountAuth, len(a.AccountAuths))
		copy(out.AccountAuths, a.AccountAuths)
	}
	if a.KeyAuths != nil {
		out.KeyAuths = make([]KeyAuth, len(a.KeyAuths))
		copy(out.KeyAuths, a.KeyAuths)
	}

	return out
}

// AuthorityState is the last fetched on-chain authority data of an account.
type AuthorityState struct {
	Posting      Authority `json:"posting"`
	MemoKey      string    `json:"memo_key"`
	JSONMetadata string    `json:"json_metadata"`
}

// Account is owned by the calling session. Exactly one of secrets and
// accessToken is populated, depending on kind.
type Account struct {
	username    string
	kind        AuthKind
	secrets     Secrets
	accessToken string
	authority   *AuthorityState
}

func NewLocalKeyAccount(username string, secrets Secrets) (*Account, error) {
	if username == "" {
		return nil, errors.Wrap(ErrInvalidAccount, "empty username")
	}
	if secrets.Posting == "" && secrets.Active == "" && secrets.Memo == "" {
		return nil, errors.Wrapf(ErrInvalidAccount, "account %s has no encrypted keys", username)
	}

	return &Account{
		username: username,
		kind:     AuthKindLocalKey,
		secrets:  secrets,
	}, nil
}

func NewDelegatedAccount(username, accessToken string) (*Account, error) {
	if username == "" {
		return nil, errors.Wrap(ErrInvalidAccount, "empty username")
	}
	if accessToken == "" {
		return nil, errors.Wrapf(ErrInvalidAccount, "account %s has no access token", username)
	}

	return &Account{
		username:    username,
		kind:        AuthKindDelegated,
		accessToken: accessToken,
	}, nil
}

func (a *Account) Username() string {
	return a.username
}

func (a *Account) Kind() AuthKind {
	return a.kind
}

func (a *Account) AccessToken() string {
	return a.accessToken
}

// Secret returns the ciphertext stored for a role, or an empty string.
func (a *Account) Secret(role KeyRole) string {
	switch role {
	case KeyRolePosting:
		return a.secrets.Posting
	case KeyRoleActive:
		return a.secrets.Active
	case KeyRoleMemo:
		return a.secrets.Memo
	}

	return ""
}

func (a *Account) AuthorityState() *AuthorityState {
	if a.authority == nil {
		return nil
	}

	state := *a.authority
	state.Posting = a.authority.Posting.Clone()
	return &state
}

// WithAuthorityState returns a copy of the account carrying state.
func (a *Account) WithAuthorityState(state *AuthorityState) *Account {
	cp := *a
	if state != nil {
		s := *state
		s.Posting = state.Posting.Clone()
		cp.authority = &s
	} else {
		cp.authority = nil
	}

	return &cp
}
