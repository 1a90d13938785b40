package backend

import (
	"context"
	"time"

	"github.com/esteemapp/surfer-core/chains/steem"
	"github.com/esteemapp/surfer-core/types"
	"github.com/esteemapp/surfer-core/vault"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
)

// NodeProvider returns the client of the currently configured node.
type NodeProvider interface {
	Current() steem.Client
}

// LocalSigning signs bundles with the account's decrypted private key and
// submits them to a chain node directly.
type LocalSigning struct {
	nodes      NodeProvider
	chainID    []byte
	expiration time.Duration
}

type localCredential struct {
	username string
	role     types.KeyRole
	key      *steem.PrivateKey
}

func (c *localCredential) Username() string    { return c.username }
func (c *localCredential) Role() types.KeyRole { return c.role }
func (c *localCredential) Zero()               { c.key.Zero() }

func NewLocalSigning(nodes NodeProvider, chainID []byte, expiration time.Duration) *LocalSigning {
	if expiration <= 0 {
		expiration = steem.DefaultExpiration
	}

	return &LocalSigning{
		nodes:      nodes,
		chainID:    chainID,
		expiration: expiration,
	}
}

func (b *LocalSigning) Kind() types.AuthKind {
	return types.AuthKindLocalKey
}

func (b *LocalSigning) Resolve(acc *types.Account, pin []byte, role types.KeyRole) (Credential, error) {
	if err := checkKind(acc, types.AuthKindLocalKey); err != nil {
		return nil, err
	}

	secret := acc.Secret(role)
	if secret == "" {
		return nil, errors.Wrapf(types.ErrMissingSecret, "%s key of %s", role, acc.Username())
	}

	plain, err := vault.Decrypt(secret, pin)
	if err != nil {
		return nil, err
	}
	defer vault.Wipe(plain)

	key, err := steem.ParseWIF(plain)
	if err != nil {
		return nil, err
	}

	return &localCredential{username: acc.Username(), role: role, key: key}, nil
}

func (b *LocalSigning) Submit(ctx context.Context, cred Credential, bundle types.Bundle) (*types.BroadcastResult, error) {
	local, ok := cred.(*localCredential)
	if !ok {
		return nil, foreignCredential(cred, types.AuthKindLocalKey)
	}

	// Later node changes must not affect this call.
	node := b.nodes.Current()

	props, err := node.GetDynamicGlobalProperties(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := steem.NewTransaction(props, bundle, b.expiration)
	if err != nil {
		return nil, err
	}

	if err := tx.Sign(b.chainID, local.key); err != nil {
		return nil, err
	}

	txID, err := tx.ID()
	if err != nil {
		return nil, err
	}

	log.Verbose("Broadcasting ", bundle.Names(), " for ", local.username, " to ", node.Address())
	resp, err := node.BroadcastTransactionSynchronous(ctx, tx)
	if err != nil {
		return nil, err
	}

	if resp.ID != "" {
		txID = resp.ID
	}

	return &types.BroadcastResult{
		TransactionID: txID,
		BlockNumber:   resp.BlockNum,
		OperationID:   txID,
	}, nil
}
