package core

import (
	"context"

	"github.com/esteemapp/surfer-core/chains/steem"
	"github.com/esteemapp/surfer-core/types"
	"github.com/esteemapp/surfer-core/vault"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
)

func (b *Broadcaster) fetchAccount(ctx context.Context, node steem.Client, username string) (*steem.Account, error) {
	accounts, err := node.GetAccounts(ctx, username)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, errors.Wrapf(types.ErrInvalidAccount, "account %s not found on chain", username)
	}

	return accounts[0], nil
}

// RefreshAuthorityState returns a copy of acc carrying the posting
// authority, memo key and metadata currently on chain.
func (b *Broadcaster) RefreshAuthorityState(ctx context.Context, acc *types.Account) (*types.Account, error) {
	chainAccount, err := b.fetchAccount(ctx, b.nodes.Current(), acc.Username())
	if err != nil {
		return nil, err
	}

	return acc.WithAuthorityState(chainAccount.AuthorityState()), nil
}

// ClaimPendingRewards claims every unclaimed reward balance of the account.
// The pin is checked before the balances are read from the node.
func (b *Broadcaster) ClaimPendingRewards(ctx context.Context, acc *types.Account, pin []byte) (*types.BroadcastResult, error) {
	defer vault.Wipe(pin)

	if b.pins != nil {
		if err := b.pins.Verify(pin); err != nil {
			return nil, err
		}
	}

	chainAccount, err := b.fetchAccount(ctx, b.nodes.Current(), acc.Username())
	if err != nil {
		return nil, err
	}

	return b.ClaimRewardBalance(ctx, acc, pin,
		chainAccount.RewardSteemBalance,
		chainAccount.RewardSbdBalance,
		chainAccount.RewardVestingBalance,
	)
}

// SetNodeAddress switches the node used by calls started from now on and
// persists it for the next start.
func (b *Broadcaster) SetNodeAddress(address string) error {
	b.nodes.SetAddress(address)

	if b.items == nil {
		return nil
	}
	if err := b.items.SetItem(NodeItemKey, address); err != nil {
		log.Error("Cannot persist node address, err = ", err)
		return err
	}

	return nil
}

func (b *Broadcaster) NodeAddress() string {
	return b.nodes.Address()
}

// AppAccount is the account posting authority is granted to.
func (b *Broadcaster) AppAccount() string {
	return b.app
}
