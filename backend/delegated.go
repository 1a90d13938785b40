package backend

import (
	"context"

	"github.com/esteemapp/surfer-core/client"
	"github.com/esteemapp/surfer-core/types"
	"github.com/esteemapp/surfer-core/vault"
	"github.com/sisu-network/lib/log"
)

// DelegatedBroadcast hands unsigned bundles to a delegated signing service
// authorized by the account's access token.
type DelegatedBroadcast struct {
	service client.SteemConnect
}

type delegatedCredential struct {
	username string
	role     types.KeyRole
	token    []byte
}

func (c *delegatedCredential) Username() string    { return c.username }
func (c *delegatedCredential) Role() types.KeyRole { return c.role }
func (c *delegatedCredential) Zero()               { vault.Wipe(c.token) }

func NewDelegatedBroadcast(service client.SteemConnect) *DelegatedBroadcast {
	return &DelegatedBroadcast{service: service}
}

func (b *DelegatedBroadcast) Kind() types.AuthKind {
	return types.AuthKindDelegated
}

// Resolve decrypts the access token. The token authorizes every role the
// user granted the service, so role is only carried along.
func (b *DelegatedBroadcast) Resolve(acc *types.Account, pin []byte, role types.KeyRole) (Credential, error) {
	if err := checkKind(acc, types.AuthKindDelegated); err != nil {
		return nil, err
	}

	token, err := vault.Decrypt(acc.AccessToken(), pin)
	if err != nil {
		return nil, err
	}

	return &delegatedCredential{username: acc.Username(), role: role, token: token}, nil
}

func (b *DelegatedBroadcast) Submit(ctx context.Context, cred Credential, bundle types.Bundle) (*types.BroadcastResult, error) {
	delegated, ok := cred.(*delegatedCredential)
	if !ok {
		return nil, foreignCredential(cred, types.AuthKindDelegated)
	}

	log.Verbose("Delegating ", bundle.Names(), " for ", delegated.username, ", role = ", delegated.role)
	result, err := b.service.Broadcast(ctx, string(delegated.token), bundle)
	if err != nil {
		return nil, err
	}

	return &types.BroadcastResult{
		TransactionID: result.ID,
		BlockNumber:   result.BlockNum,
		OperationID:   result.ID,
	}, nil
}
