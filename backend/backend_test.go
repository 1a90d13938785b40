package backend

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/esteemapp/surfer-core/chains/steem"
	"github.com/esteemapp/surfer-core/client"
	"github.com/esteemapp/surfer-core/types"
	"github.com/esteemapp/surfer-core/vault"
	"github.com/stretchr/testify/require"
)

var testPin = []byte("1234")

type staticNodes struct {
	client steem.Client
}

func (n *staticNodes) Current() steem.Client {
	return n.client
}

func newLocalAccount(t *testing.T) (*types.Account, *btcec.PrivateKey) {
	key, err := btcec.NewPrivateKey()
	require.Nil(t, err)

	encrypted, err := vault.Encrypt([]byte(steem.EncodeWIF(key.Serialize())), testPin)
	require.Nil(t, err)

	acc, err := types.NewLocalKeyAccount("alice", types.Secrets{Posting: encrypted})
	require.Nil(t, err)

	return acc, key
}

func newDelegatedAccount(t *testing.T) *types.Account {
	encrypted, err := vault.Encrypt([]byte("access-token"), testPin)
	require.Nil(t, err)

	acc, err := types.NewDelegatedAccount("alice", encrypted)
	require.Nil(t, err)

	return acc
}

func newMockNode(calls *int, broadcast func(tx *steem.Transaction)) *steem.MockClient {
	return &steem.MockClient{
		GetDynamicGlobalPropertiesFunc: func(ctx context.Context) (*steem.DynamicGlobalProperties, error) {
			*calls++
			return &steem.DynamicGlobalProperties{
				HeadBlockNumber: 1000,
				HeadBlockID:     "000003e8aabbccdd000000000000000000000000",
				Time:            "2018-06-01T10:00:00",
			}, nil
		},
		BroadcastTransactionSynchronousFunc: func(ctx context.Context, tx *steem.Transaction) (*steem.BroadcastResponse, error) {
			*calls++
			broadcast(tx)
			return &steem.BroadcastResponse{ID: "f00d", BlockNum: 1001}, nil
		},
	}
}

func resolveAndSubmit(b Backend, acc *types.Account, pin []byte, role types.KeyRole, bundle types.Bundle) (*types.BroadcastResult, error) {
	cred, err := b.Resolve(acc, pin, role)
	if err != nil {
		return nil, err
	}
	defer cred.Zero()

	return b.Submit(context.Background(), cred, bundle)
}

func TestLocalSigning_Submit(t *testing.T) {
	acc, key := newLocalAccount(t)

	calls := 0
	var submitted *steem.Transaction
	node := newMockNode(&calls, func(tx *steem.Transaction) { submitted = tx })

	local := NewLocalSigning(&staticNodes{client: node}, steem.ChainID, 0)
	bundle := types.Bundle{types.Vote{Voter: "alice", Author: "bob", Permlink: "p", Weight: 10000}}

	result, err := resolveAndSubmit(local, acc, testPin, types.KeyRolePosting, bundle)
	require.Nil(t, err)
	require.Equal(t, &types.BroadcastResult{TransactionID: "f00d", BlockNumber: 1001, OperationID: "f00d"}, result)
	require.Equal(t, 2, calls)

	require.Equal(t, uint16(1000), submitted.RefBlockNum)
	require.Equal(t, uint32(0xddccbbaa), submitted.RefBlockPrefix)
	require.Len(t, submitted.Signatures, 1)

	sig, err := hex.DecodeString(submitted.Signatures[0])
	require.Nil(t, err)
	digest, err := submitted.Digest(steem.ChainID)
	require.Nil(t, err)
	pub, _, err := ecdsa.RecoverCompact(sig, digest)
	require.Nil(t, err)
	require.Equal(t, key.PubKey().SerializeCompressed(), pub.SerializeCompressed())
}

func TestLocalSigning_WrongPinMakesNoNetworkCall(t *testing.T) {
	acc, _ := newLocalAccount(t)

	calls := 0
	node := newMockNode(&calls, func(tx *steem.Transaction) {})
	local := NewLocalSigning(&staticNodes{client: node}, steem.ChainID, 0)

	_, err := local.Resolve(acc, []byte("0000"), types.KeyRolePosting)
	require.True(t, errors.Is(err, types.ErrDecryption))
	require.Equal(t, 0, calls)
}

func TestLocalSigning_MissingSecret(t *testing.T) {
	acc, _ := newLocalAccount(t)

	calls := 0
	local := NewLocalSigning(&staticNodes{client: newMockNode(&calls, func(tx *steem.Transaction) {})}, steem.ChainID, 0)

	_, err := local.Resolve(acc, testPin, types.KeyRoleActive)
	require.True(t, errors.Is(err, types.ErrMissingSecret))
	require.Equal(t, 0, calls)
}

func TestLocalSigning_Rejected(t *testing.T) {
	acc, _ := newLocalAccount(t)

	node := &steem.MockClient{
		GetDynamicGlobalPropertiesFunc: func(ctx context.Context) (*steem.DynamicGlobalProperties, error) {
			return &steem.DynamicGlobalProperties{HeadBlockID: "000003e8aabbccdd", Time: "2018-06-01T10:00:00"}, nil
		},
		BroadcastTransactionSynchronousFunc: func(ctx context.Context, tx *steem.Transaction) (*steem.BroadcastResponse, error) {
			return nil, types.ErrOperationRejected
		},
	}

	local := NewLocalSigning(&staticNodes{client: node}, steem.ChainID, 0)
	_, err := resolveAndSubmit(local, acc, testPin, types.KeyRolePosting, types.Bundle{})
	require.True(t, errors.Is(err, types.ErrOperationRejected))
}

func TestDelegatedBroadcast_Submit(t *testing.T) {
	acc := newDelegatedAccount(t)

	sc := &client.MockSteemConnect{
		BroadcastFunc: func(ctx context.Context, accessToken string, bundle types.Bundle) (*client.DelegatedResult, error) {
			require.Equal(t, "access-token", accessToken)
			require.Equal(t, []string{types.OpVote}, bundle.Names())
			return &client.DelegatedResult{ID: "abc", BlockNum: 7}, nil
		},
	}

	result, err := resolveAndSubmit(NewDelegatedBroadcast(sc), acc, testPin, types.KeyRolePosting,
		types.Bundle{types.Vote{Voter: "alice", Author: "bob", Permlink: "p", Weight: 100}})
	require.Nil(t, err)
	require.Equal(t, &types.BroadcastResult{TransactionID: "abc", BlockNumber: 7, OperationID: "abc"}, result)
}

func TestDelegatedBroadcast_WrongPinMakesNoNetworkCall(t *testing.T) {
	acc := newDelegatedAccount(t)

	calls := 0
	sc := &client.MockSteemConnect{
		BroadcastFunc: func(ctx context.Context, accessToken string, bundle types.Bundle) (*client.DelegatedResult, error) {
			calls++
			return &client.DelegatedResult{}, nil
		},
	}

	_, err := NewDelegatedBroadcast(sc).Resolve(acc, []byte("9999"), types.KeyRolePosting)
	require.True(t, errors.Is(err, types.ErrDecryption))
	require.Equal(t, 0, calls)
}

func TestBackends_Select(t *testing.T) {
	calls := 0
	local := NewLocalSigning(&staticNodes{client: newMockNode(&calls, func(tx *steem.Transaction) {})}, steem.ChainID, 0)
	delegated := NewDelegatedBroadcast(&client.MockSteemConnect{})
	backends := NewBackends(local, delegated)

	b, err := backends.Select(types.AuthKindLocalKey)
	require.Nil(t, err)
	require.Equal(t, local, b)

	b, err = backends.Select(types.AuthKindDelegated)
	require.Nil(t, err)
	require.Equal(t, delegated, b)

	_, err = backends.Select(types.AuthKindUnknown)
	require.True(t, errors.Is(err, types.ErrUnsupportedAccountKind))
}

func TestSubmit_KindMismatch(t *testing.T) {
	acc := newDelegatedAccount(t)
	calls := 0
	local := NewLocalSigning(&staticNodes{client: newMockNode(&calls, func(tx *steem.Transaction) {})}, steem.ChainID, 0)

	_, err := local.Resolve(acc, testPin, types.KeyRolePosting)
	require.True(t, errors.Is(err, types.ErrUnsupportedAccountKind))

	cred, err := NewDelegatedBroadcast(&client.MockSteemConnect{}).Resolve(acc, testPin, types.KeyRolePosting)
	require.Nil(t, err)

	_, err = local.Submit(context.Background(), cred, types.Bundle{})
	require.True(t, errors.Is(err, types.ErrUnsupportedAccountKind))
	require.Equal(t, 0, calls)
}

func TestDelegatedCredential_Zero(t *testing.T) {
	cred, err := NewDelegatedBroadcast(&client.MockSteemConnect{}).Resolve(newDelegatedAccount(t), testPin, types.KeyRoleActive)
	require.Nil(t, err)
	require.Equal(t, "alice", cred.Username())
	require.Equal(t, types.KeyRoleActive, cred.Role())

	token := cred.(*delegatedCredential).token
	require.Equal(t, "access-token", string(token))

	cred.Zero()
	require.Equal(t, make([]byte, len("access-token")), token)
}
