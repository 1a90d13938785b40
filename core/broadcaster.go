package core

import (
	"context"

	"github.com/esteemapp/surfer-core/activity"
	"github.com/esteemapp/surfer-core/backend"
	"github.com/esteemapp/surfer-core/chains/steem"
	"github.com/esteemapp/surfer-core/operations"
	"github.com/esteemapp/surfer-core/types"
	"github.com/esteemapp/surfer-core/vault"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
)

// NodeItemKey is the store key of the persisted node address.
const NodeItemKey = "server"

// PinVerifier checks a pin before any credential is decrypted.
type PinVerifier interface {
	Verify(pin []byte) error
}

type ItemWriter interface {
	SetItem(key, value string) error
}

// Broadcaster is the single entry point for every user intent that changes
// chain state. Every intent takes ownership of its pin argument and zeroes
// it before returning.
type Broadcaster struct {
	backends *backend.Backends
	nodes    *steem.NodeRegistry
	activity activity.Recorder
	pins     PinVerifier
	items    ItemWriter
	app      string
	observer StateObserver
}

func NewBroadcaster(
	backends *backend.Backends,
	nodes *steem.NodeRegistry,
	recorder activity.Recorder,
	pins PinVerifier,
	items ItemWriter,
	app string,
) *Broadcaster {
	return &Broadcaster{
		backends: backends,
		nodes:    nodes,
		activity: recorder,
		pins:     pins,
		items:    items,
		app:      app,
	}
}

func (b *Broadcaster) SetObserver(observer StateObserver) {
	b.observer = observer
}

type intent struct {
	name  string
	role  types.KeyRole
	build func(username string) (types.Bundle, error)
	// activity returns the code to record for a successful call, or false.
	activity func() (types.ActivityCode, bool)
}

func tracked(code types.ActivityCode) func() (types.ActivityCode, bool) {
	return func() (types.ActivityCode, bool) { return code, true }
}

func (b *Broadcaster) notify(username, name string, state State) {
	if b.observer != nil {
		b.observer(username, name, state)
	}
}

// run drives one intent through the call states. It consumes pin: the
// slice is zeroed before run returns, whatever the outcome.
func (b *Broadcaster) run(ctx context.Context, acc *types.Account, pin []byte, in *intent) (*types.BroadcastResult, error) {
	defer vault.Wipe(pin)

	if acc == nil {
		return nil, errors.Wrap(types.ErrInvalidAccount, "nil account")
	}

	username := acc.Username()
	b.notify(username, in.name, StateIdle)

	fail := func(err error) (*types.BroadcastResult, error) {
		log.Verbose("Intent ", in.name, " for ", username, " failed, err = ", err)
		b.notify(username, in.name, StateFailed)
		return nil, err
	}

	b.notify(username, in.name, StateResolvingCredential)
	if b.pins != nil {
		if err := b.pins.Verify(pin); err != nil {
			return fail(err)
		}
	}
	be, err := b.backends.Select(acc.Kind())
	if err != nil {
		return fail(err)
	}
	cred, err := be.Resolve(acc, pin, in.role)
	if err != nil {
		return fail(err)
	}
	defer cred.Zero()

	b.notify(username, in.name, StateBuildingOperations)
	bundle, err := in.build(username)
	if err != nil {
		return fail(err)
	}

	b.notify(username, in.name, StateSubmitting)
	result, err := be.Submit(ctx, cred, bundle)
	if err != nil {
		return fail(err)
	}

	b.notify(username, in.name, StateSucceeded)
	if in.activity != nil && b.activity != nil {
		if code, ok := in.activity(); ok {
			b.activity.Record(types.NewActivityRecord(username, code, result))
		}
	}

	return result, nil
}

func (b *Broadcaster) Vote(ctx context.Context, acc *types.Account, pin []byte, author, permlink string, weight int16) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpVote,
		role: types.KeyRolePosting,
		build: func(username string) (types.Bundle, error) {
			return operations.Vote(username, author, permlink, weight), nil
		},
		activity: tracked(types.ActivityVote),
	})
}

func (b *Broadcaster) Follow(ctx context.Context, acc *types.Account, pin []byte, following string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: "follow",
		role: types.KeyRolePosting,
		build: func(username string) (types.Bundle, error) {
			return operations.Follow(username, following)
		},
		activity: tracked(types.ActivityFollow),
	})
}

func (b *Broadcaster) UnFollow(ctx context.Context, acc *types.Account, pin []byte, following string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: "unfollow",
		role: types.KeyRolePosting,
		build: func(username string) (types.Bundle, error) {
			return operations.Unfollow(username, following)
		},
		activity: tracked(types.ActivityFollow),
	})
}

func (b *Broadcaster) Ignore(ctx context.Context, acc *types.Account, pin []byte, following string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: "ignore",
		role: types.KeyRolePosting,
		build: func(username string) (types.Bundle, error) {
			return operations.Ignore(username, following)
		},
		activity: tracked(types.ActivityFollow),
	})
}

// Comment publishes a post or a reply. Only comments published with options
// are reported to the activity backend: 100 for a titled root post, 110
// otherwise.
func (b *Broadcaster) Comment(
	ctx context.Context,
	acc *types.Account,
	pin []byte,
	params operations.CommentParams,
	options *types.CommentOptions,
	voteWeight *int16,
) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpComment,
		role: types.KeyRolePosting,
		build: func(username string) (types.Bundle, error) {
			return operations.Comment(username, params, options, voteWeight)
		},
		activity: func() (types.ActivityCode, bool) {
			if options == nil {
				return 0, false
			}
			if params.Title != "" {
				return types.ActivityPost, true
			}
			return types.ActivityReply, true
		},
	})
}

func (b *Broadcaster) Reblog(ctx context.Context, acc *types.Account, pin []byte, author, permlink string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: "reblog",
		role: types.KeyRolePosting,
		build: func(username string) (types.Bundle, error) {
			return operations.Reblog(username, author, permlink)
		},
		activity: tracked(types.ActivityFollow),
	})
}

func (b *Broadcaster) ClaimRewardBalance(ctx context.Context, acc *types.Account, pin []byte, rewardSteem, rewardSbd, rewardVests string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpClaimRewardBalance,
		role: types.KeyRolePosting,
		build: func(username string) (types.Bundle, error) {
			return operations.ClaimRewardBalance(username, rewardSteem, rewardSbd, rewardVests), nil
		},
	})
}

func (b *Broadcaster) WitnessVote(ctx context.Context, acc *types.Account, pin []byte, witness string, approve bool) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpAccountWitnessVote,
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.WitnessVote(username, witness, approve), nil
		},
	})
}

func (b *Broadcaster) WitnessProxy(ctx context.Context, acc *types.Account, pin []byte, proxy string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpAccountWitnessProxy,
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.WitnessProxy(username, proxy), nil
		},
	})
}

func (b *Broadcaster) Transfer(ctx context.Context, acc *types.Account, pin []byte, to, amount, memo string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpTransfer,
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.Transfer(username, to, amount, memo), nil
		},
	})
}

func (b *Broadcaster) TransferToSavings(ctx context.Context, acc *types.Account, pin []byte, to, amount, memo string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpTransferToSavings,
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.TransferToSavings(username, to, amount, memo), nil
		},
	})
}

func (b *Broadcaster) TransferFromSavings(ctx context.Context, acc *types.Account, pin []byte, requestID uint32, to, amount, memo string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpTransferFromSavings,
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.TransferFromSavings(username, requestID, to, amount, memo), nil
		},
	})
}

func (b *Broadcaster) TransferToVesting(ctx context.Context, acc *types.Account, pin []byte, to, amount string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpTransferToVesting,
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.TransferToVesting(username, to, amount), nil
		},
	})
}

func (b *Broadcaster) DelegateVestingShares(ctx context.Context, acc *types.Account, pin []byte, delegatee, vestingShares string) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: types.OpDelegateVestingShares,
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.DelegateVestingShares(username, delegatee, vestingShares), nil
		},
	})
}

// GrantPostingPermission adds the app account to the account's posting
// authority, using the authority state cached on acc.
func (b *Broadcaster) GrantPostingPermission(ctx context.Context, acc *types.Account, pin []byte) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: "grant_posting_permission",
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.GrantPostingPermission(username, acc.AuthorityState(), b.app)
		},
	})
}

func (b *Broadcaster) RevokePostingPermission(ctx context.Context, acc *types.Account, pin []byte) (*types.BroadcastResult, error) {
	return b.run(ctx, acc, pin, &intent{
		name: "revoke_posting_permission",
		role: types.KeyRoleActive,
		build: func(username string) (types.Bundle, error) {
			return operations.RevokePostingPermission(username, acc.AuthorityState(), b.app)
		},
	})
}
