package operations

import (
	"math"

	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
)

// GrantPostingPermission appends [app, weight_threshold] to the posting
// account auths. Every other field of the cached state is copied verbatim so
// the update cannot change unrelated authority settings.
func GrantPostingPermission(account string, state *types.AuthorityState, app string) (types.Bundle, error) {
	if state == nil {
		return nil, errors.Wrapf(types.ErrMissingAuthorityState, "account %s", account)
	}

	posting := state.Posting.Clone()
	if posting.WeightThreshold > math.MaxUint16 {
		return nil, errors.Errorf("posting weight threshold %d of %s does not fit an account weight", posting.WeightThreshold, account)
	}

	if indexOfAccountAuth(posting.AccountAuths, app) < 0 {
		posting.AccountAuths = append(posting.AccountAuths, types.AccountAuth{
			Account: app,
			Weight:  uint16(posting.WeightThreshold),
		})
	}

	return accountUpdate(account, state, posting), nil
}

// RevokePostingPermission removes app from the posting account auths.
func RevokePostingPermission(account string, state *types.AuthorityState, app string) (types.Bundle, error) {
	if state == nil {
		return nil, errors.Wrapf(types.ErrMissingAuthorityState, "account %s", account)
	}

	posting := state.Posting.Clone()
	kept := make([]types.AccountAuth, 0, len(posting.AccountAuths))
	for _, auth := range posting.AccountAuths {
		if auth.Account != app {
			kept = append(kept, auth)
		}
	}
	posting.AccountAuths = kept

	return accountUpdate(account, state, posting), nil
}

func accountUpdate(account string, state *types.AuthorityState, posting types.Authority) types.Bundle {
	return types.Bundle{
		types.AccountUpdate{
			Account:      account,
			Posting:      &posting,
			MemoKey:      state.MemoKey,
			JSONMetadata: state.JSONMetadata,
		},
	}
}

func indexOfAccountAuth(auths []types.AccountAuth, account string) int {
	for i, auth := range auths {
		if auth.Account == account {
			return i
		}
	}

	return -1
}
