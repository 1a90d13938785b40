package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/esteemapp/surfer-core/activity"
	"github.com/esteemapp/surfer-core/backend"
	"github.com/esteemapp/surfer-core/chains/steem"
	"github.com/esteemapp/surfer-core/client"
	"github.com/esteemapp/surfer-core/operations"
	"github.com/esteemapp/surfer-core/types"
	"github.com/esteemapp/surfer-core/vault"
	"github.com/stretchr/testify/require"
)

// testPin returns a fresh pin: every intent zeroes the slice it is given.
func testPin() []byte { return []byte("1234") }

type recorder struct {
	lock    sync.Mutex
	records []*types.ActivityRecord
}

func (r *recorder) Record(record *types.ActivityRecord) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.records = append(r.records, record)
}

func (r *recorder) get() []*types.ActivityRecord {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]*types.ActivityRecord{}, r.records...)
}

func encrypt(t *testing.T, plaintext string) string {
	ciphertext, err := vault.Encrypt([]byte(plaintext), testPin())
	require.Nil(t, err)
	return ciphertext
}

func newLocalAccount(t *testing.T) *types.Account {
	key, err := btcec.NewPrivateKey()
	require.Nil(t, err)
	wif := steem.EncodeWIF(key.Serialize())

	acc, err := types.NewLocalKeyAccount("alice", types.Secrets{
		Posting: encrypt(t, wif),
		Active:  encrypt(t, wif),
	})
	require.Nil(t, err)
	return acc
}

func newDelegatedAccount(t *testing.T) *types.Account {
	acc, err := types.NewDelegatedAccount("alice", encrypt(t, "token"))
	require.Nil(t, err)
	return acc
}

type testNode struct {
	lock       sync.Mutex
	broadcasts int
	propsCalls int
	onProps    func()
	accounts   []*steem.Account
	reject     bool
}

func (n *testNode) client(address string) *steem.MockClient {
	return &steem.MockClient{
		AddressFunc: func() string { return address },
		GetDynamicGlobalPropertiesFunc: func(ctx context.Context) (*steem.DynamicGlobalProperties, error) {
			n.lock.Lock()
			n.propsCalls++
			onProps := n.onProps
			n.lock.Unlock()
			if onProps != nil {
				onProps()
			}

			return &steem.DynamicGlobalProperties{
				HeadBlockNumber: 10,
				HeadBlockID:     "0000000a01020304000000000000000000000000",
				Time:            "2018-06-01T10:00:00",
			}, nil
		},
		BroadcastTransactionSynchronousFunc: func(ctx context.Context, tx *steem.Transaction) (*steem.BroadcastResponse, error) {
			n.lock.Lock()
			n.broadcasts++
			reject := n.reject
			n.lock.Unlock()
			if reject {
				return nil, types.ErrOperationRejected
			}
			return &steem.BroadcastResponse{ID: "tx-" + address, BlockNum: 11}, nil
		},
		GetAccountsFunc: func(ctx context.Context, names ...string) ([]*steem.Account, error) {
			return n.accounts, nil
		},
	}
}

type testEnv struct {
	broadcaster *Broadcaster
	recorder    *recorder
	nodes       map[string]*testNode
	delegated   int
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		recorder: &recorder{},
		nodes:    map[string]*testNode{"a": {}, "b": {}},
	}

	registry := steem.NewNodeRegistryWithFactory("a", func(address string) steem.Client {
		return env.nodes[address].client(address)
	})

	sc := &client.MockSteemConnect{
		BroadcastFunc: func(ctx context.Context, accessToken string, bundle types.Bundle) (*client.DelegatedResult, error) {
			require.Equal(t, "token", accessToken)
			env.delegated++
			return &client.DelegatedResult{ID: "sc-tx", BlockNum: 12}, nil
		},
	}

	backends := backend.NewBackends(
		backend.NewLocalSigning(registry, steem.ChainID, time.Minute),
		backend.NewDelegatedBroadcast(sc),
	)
	env.broadcaster = NewBroadcaster(backends, registry, env.recorder, nil, nil, "esteemapp")

	return env
}

func TestVote_BothBackendsRecordOneActivity(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.broadcaster.Vote(context.Background(), newLocalAccount(t), testPin(), "bob", "post", 10000)
	require.Nil(t, err)
	require.Equal(t, &types.BroadcastResult{TransactionID: "tx-a", BlockNumber: 11, OperationID: "tx-a"}, result)
	require.Equal(t, 1, env.nodes["a"].broadcasts)

	records := env.recorder.get()
	require.Len(t, records, 1)
	require.Equal(t, &types.ActivityRecord{Username: "alice", TypeCode: 120, BlockNumber: 11, OperationID: "tx-a"}, records[0])

	result, err = env.broadcaster.Vote(context.Background(), newDelegatedAccount(t), testPin(), "bob", "post", 10000)
	require.Nil(t, err)
	require.Equal(t, &types.BroadcastResult{TransactionID: "sc-tx", BlockNumber: 12, OperationID: "sc-tx"}, result)
	require.Equal(t, 1, env.delegated)

	records = env.recorder.get()
	require.Len(t, records, 2)
	require.Equal(t, &types.ActivityRecord{Username: "alice", TypeCode: 120, BlockNumber: 12, OperationID: "sc-tx"}, records[1])
}

func TestVote_ActivityFailureDoesNotFailVote(t *testing.T) {
	env := newTestEnv(t)

	esteem := &client.MockEsteem{
		RecordActivityFunc: func(ctx context.Context, record *types.ActivityRecord) error {
			return errors.New("backend unreachable")
		},
	}
	logger := activity.NewLogger(esteem, time.Second, 1)
	env.broadcaster.activity = logger

	result, err := env.broadcaster.Vote(context.Background(), newLocalAccount(t), testPin(), "bob", "post", 10000)
	require.Nil(t, err)
	require.Equal(t, "tx-a", result.TransactionID)

	logger.Wait()
	require.True(t, errors.Is(<-logger.Failures(), types.ErrActivityLog))
}

func TestWrongPin_NoNetworkCall(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.broadcaster.Vote(context.Background(), newLocalAccount(t), []byte("0000"), "bob", "post", 10000)
	require.True(t, errors.Is(err, types.ErrDecryption))

	_, err = env.broadcaster.Transfer(context.Background(), newDelegatedAccount(t), []byte("0000"), "bob", "1.000 STEEM", "")
	require.True(t, errors.Is(err, types.ErrDecryption))

	require.Equal(t, 0, env.nodes["a"].propsCalls)
	require.Equal(t, 0, env.nodes["a"].broadcasts)
	require.Equal(t, 0, env.delegated)
	require.Len(t, env.recorder.get(), 0)
}

type itemStore map[string]string

func (m itemStore) GetItem(key, defaultValue string) string {
	if v, ok := m[key]; ok {
		return v
	}

	return defaultValue
}

func TestWrongPin_PinGuardReportsDecryptionError(t *testing.T) {
	env := newTestEnv(t)

	hash, err := vault.HashPin(testPin())
	require.Nil(t, err)
	invalidated := 0
	env.broadcaster.pins = vault.NewPinGuard(itemStore{vault.PinHashKey: hash}, 3, func() { invalidated++ })

	_, err = env.broadcaster.Vote(context.Background(), newLocalAccount(t), []byte("0000"), "bob", "post", 10000)
	require.True(t, errors.Is(err, types.ErrDecryption))

	_, err = env.broadcaster.Transfer(context.Background(), newDelegatedAccount(t), []byte("0000"), "bob", "1.000 STEEM", "")
	require.True(t, errors.Is(err, types.ErrDecryption))

	// The third failure invalidates the session, still a decryption error.
	_, err = env.broadcaster.Vote(context.Background(), newDelegatedAccount(t), []byte("0000"), "bob", "post", 10000)
	require.True(t, errors.Is(err, types.ErrDecryption))
	require.True(t, errors.Is(err, types.ErrPinInvalidated))
	require.Equal(t, 1, invalidated)

	require.Equal(t, 0, env.nodes["a"].propsCalls)
	require.Equal(t, 0, env.nodes["a"].broadcasts)
	require.Equal(t, 0, env.delegated)
	require.Len(t, env.recorder.get(), 0)
}

func TestPinIsZeroedAfterCall(t *testing.T) {
	env := newTestEnv(t)
	zero := make([]byte, 4)

	pin := testPin()
	_, err := env.broadcaster.Vote(context.Background(), newLocalAccount(t), pin, "bob", "post", 10000)
	require.Nil(t, err)
	require.Equal(t, zero, pin)

	pin = testPin()
	_, err = env.broadcaster.Transfer(context.Background(), newDelegatedAccount(t), pin, "bob", "1.000 STEEM", "")
	require.Nil(t, err)
	require.Equal(t, zero, pin)

	pin = []byte("0000")
	_, err = env.broadcaster.Vote(context.Background(), newLocalAccount(t), pin, "bob", "post", 10000)
	require.NotNil(t, err)
	require.Equal(t, zero, pin)

	pin = testPin()
	_, err = env.broadcaster.Vote(context.Background(), nil, pin, "bob", "post", 10000)
	require.True(t, errors.Is(err, types.ErrInvalidAccount))
	require.Equal(t, zero, pin)
}

func TestCredentialZeroedAfterCall(t *testing.T) {
	var cred *backend.MockCredential
	mock := &backend.MockBackend{
		KindFunc: func() types.AuthKind { return types.AuthKindDelegated },
		ResolveFunc: func(acc *types.Account, pin []byte, role types.KeyRole) (backend.Credential, error) {
			cred = &backend.MockCredential{Account: acc, KeyRole: role}
			return cred, nil
		},
		SubmitFunc: func(ctx context.Context, c backend.Credential, bundle types.Bundle) (*types.BroadcastResult, error) {
			require.False(t, cred.Zeroed)
			return nil, types.ErrOperationRejected
		},
	}
	b := NewBroadcaster(backend.NewBackends(mock), nil, &recorder{}, nil, nil, "esteemapp")

	_, err := b.Vote(context.Background(), newDelegatedAccount(t), testPin(), "bob", "p", 100)
	require.True(t, errors.Is(err, types.ErrOperationRejected))
	require.True(t, cred.Zeroed)
}

func TestNodeSwitchDuringCall(t *testing.T) {
	env := newTestEnv(t)

	env.nodes["a"].onProps = func() {
		require.Nil(t, env.broadcaster.SetNodeAddress("b"))
	}

	result, err := env.broadcaster.Vote(context.Background(), newLocalAccount(t), testPin(), "bob", "post", 10000)
	require.Nil(t, err)
	require.Equal(t, "tx-a", result.TransactionID)
	require.Equal(t, 1, env.nodes["a"].broadcasts)
	require.Equal(t, 0, env.nodes["b"].broadcasts)

	result, err = env.broadcaster.Vote(context.Background(), newLocalAccount(t), testPin(), "bob", "post", 10000)
	require.Nil(t, err)
	require.Equal(t, "tx-b", result.TransactionID)
}

func TestComment_ActivityCodes(t *testing.T) {
	env := newTestEnv(t)
	acc := newDelegatedAccount(t)
	options := &types.CommentOptions{MaxAcceptedPayout: "1000000.000 SBD", PercentSteemDollars: 10000, AllowVotes: true, AllowCurationRewards: true}

	_, err := env.broadcaster.Comment(context.Background(), acc, testPin(),
		operations.CommentParams{ParentPermlink: "steem", Permlink: "p", Title: "Hello", Body: "b"}, options, nil)
	require.Nil(t, err)

	_, err = env.broadcaster.Comment(context.Background(), acc, testPin(),
		operations.CommentParams{ParentAuthor: "bob", ParentPermlink: "p", Permlink: "re-p", Body: "b"}, options, nil)
	require.Nil(t, err)

	_, err = env.broadcaster.Comment(context.Background(), acc, testPin(),
		operations.CommentParams{ParentAuthor: "bob", ParentPermlink: "p", Permlink: "re-p2", Body: "b"}, nil, nil)
	require.Nil(t, err)

	records := env.recorder.get()
	require.Len(t, records, 2)
	require.Equal(t, types.ActivityPost, records[0].TypeCode)
	require.Equal(t, types.ActivityReply, records[1].TypeCode)
}

func TestIntents_RolesAndActivity(t *testing.T) {
	rec := &recorder{}
	var lastRole types.KeyRole
	var lastBundle types.Bundle

	mock := &backend.MockBackend{
		KindFunc: func() types.AuthKind { return types.AuthKindDelegated },
		SubmitFunc: func(ctx context.Context, cred backend.Credential, bundle types.Bundle) (*types.BroadcastResult, error) {
			lastRole = cred.Role()
			lastBundle = bundle
			return &types.BroadcastResult{TransactionID: "x", BlockNumber: 1, OperationID: "x"}, nil
		},
	}
	b := NewBroadcaster(backend.NewBackends(mock), nil, rec, nil, nil, "esteemapp")
	acc := newDelegatedAccount(t)
	ctx := context.Background()

	cases := []struct {
		call     func() (*types.BroadcastResult, error)
		role     types.KeyRole
		op       string
		activity bool
	}{
		{func() (*types.BroadcastResult, error) { return b.Follow(ctx, acc, testPin(), "bob") }, types.KeyRolePosting, types.OpCustomJSON, true},
		{func() (*types.BroadcastResult, error) { return b.UnFollow(ctx, acc, testPin(), "bob") }, types.KeyRolePosting, types.OpCustomJSON, true},
		{func() (*types.BroadcastResult, error) { return b.Ignore(ctx, acc, testPin(), "bob") }, types.KeyRolePosting, types.OpCustomJSON, true},
		{func() (*types.BroadcastResult, error) { return b.Reblog(ctx, acc, testPin(), "bob", "p") }, types.KeyRolePosting, types.OpCustomJSON, true},
		{func() (*types.BroadcastResult, error) {
			return b.ClaimRewardBalance(ctx, acc, testPin(), "0.000 STEEM", "1.000 SBD", "0.000000 VESTS")
		}, types.KeyRolePosting, types.OpClaimRewardBalance, false},
		{func() (*types.BroadcastResult, error) { return b.WitnessVote(ctx, acc, testPin(), "w", true) }, types.KeyRoleActive, types.OpAccountWitnessVote, false},
		{func() (*types.BroadcastResult, error) { return b.WitnessProxy(ctx, acc, testPin(), "p") }, types.KeyRoleActive, types.OpAccountWitnessProxy, false},
		{func() (*types.BroadcastResult, error) { return b.Transfer(ctx, acc, testPin(), "bob", "1.000 STEEM", "") }, types.KeyRoleActive, types.OpTransfer, false},
		{func() (*types.BroadcastResult, error) {
			return b.TransferToSavings(ctx, acc, testPin(), "alice", "1.000 SBD", "")
		}, types.KeyRoleActive, types.OpTransferToSavings, false},
		{func() (*types.BroadcastResult, error) {
			return b.TransferFromSavings(ctx, acc, testPin(), 3, "alice", "1.000 SBD", "")
		}, types.KeyRoleActive, types.OpTransferFromSavings, false},
		{func() (*types.BroadcastResult, error) { return b.TransferToVesting(ctx, acc, testPin(), "alice", "1.000 STEEM") }, types.KeyRoleActive, types.OpTransferToVesting, false},
		{func() (*types.BroadcastResult, error) {
			return b.DelegateVestingShares(ctx, acc, testPin(), "bob", "1.000000 VESTS")
		}, types.KeyRoleActive, types.OpDelegateVestingShares, false},
	}

	for i, c := range cases {
		before := len(rec.get())

		result, err := c.call()
		require.Nil(t, err, i)
		require.Equal(t, "x", result.TransactionID)
		require.Equal(t, c.role, lastRole, i)
		require.Equal(t, []string{c.op}, lastBundle.Names(), i)

		if c.activity {
			require.Len(t, rec.get(), before+1, i)
			require.Equal(t, types.ActivityFollow, rec.get()[before].TypeCode)
		} else {
			require.Len(t, rec.get(), before, i)
		}
	}
}

func TestPostingPermission(t *testing.T) {
	var submitted types.Bundle
	mock := &backend.MockBackend{
		KindFunc: func() types.AuthKind { return types.AuthKindLocalKey },
		SubmitFunc: func(ctx context.Context, cred backend.Credential, bundle types.Bundle) (*types.BroadcastResult, error) {
			require.Equal(t, types.KeyRoleActive, cred.Role())
			submitted = bundle
			return &types.BroadcastResult{}, nil
		},
	}
	b := NewBroadcaster(backend.NewBackends(mock), nil, &recorder{}, nil, nil, "esteemapp")

	acc := newLocalAccount(t)
	_, err := b.GrantPostingPermission(context.Background(), acc, testPin())
	require.True(t, errors.Is(err, types.ErrMissingAuthorityState))
	require.Nil(t, submitted)

	acc = acc.WithAuthorityState(&types.AuthorityState{
		Posting: types.Authority{WeightThreshold: 1, AccountAuths: []types.AccountAuth{{Account: "carol", Weight: 1}}},
	})

	_, err = b.GrantPostingPermission(context.Background(), acc, testPin())
	require.Nil(t, err)
	require.Equal(t, []types.AccountAuth{{Account: "carol", Weight: 1}, {Account: "esteemapp", Weight: 1}},
		submitted[0].(types.AccountUpdate).Posting.AccountAuths)

	_, err = b.RevokePostingPermission(context.Background(), acc, testPin())
	require.Nil(t, err)
	require.Equal(t, []types.AccountAuth{{Account: "carol", Weight: 1}},
		submitted[0].(types.AccountUpdate).Posting.AccountAuths)
}

func TestUnsupportedAccountKind(t *testing.T) {
	mock := &backend.MockBackend{KindFunc: func() types.AuthKind { return types.AuthKindLocalKey }}
	b := NewBroadcaster(backend.NewBackends(mock), nil, &recorder{}, nil, nil, "esteemapp")

	_, err := b.Vote(context.Background(), newDelegatedAccount(t), testPin(), "bob", "p", 100)
	require.True(t, errors.Is(err, types.ErrUnsupportedAccountKind))
}

type pinVerifier struct {
	err error
}

func (p *pinVerifier) Verify(pin []byte) error {
	return p.err
}

func TestPinVerifiedBeforeResolve(t *testing.T) {
	resolved, submitted := false, false
	mock := &backend.MockBackend{
		KindFunc: func() types.AuthKind { return types.AuthKindDelegated },
		ResolveFunc: func(acc *types.Account, pin []byte, role types.KeyRole) (backend.Credential, error) {
			resolved = true
			return &backend.MockCredential{Account: acc, KeyRole: role}, nil
		},
		SubmitFunc: func(ctx context.Context, cred backend.Credential, bundle types.Bundle) (*types.BroadcastResult, error) {
			submitted = true
			return &types.BroadcastResult{}, nil
		},
	}
	b := NewBroadcaster(backend.NewBackends(mock), nil, &recorder{}, &pinVerifier{err: types.ErrPinInvalidated}, nil, "esteemapp")

	_, err := b.Vote(context.Background(), newDelegatedAccount(t), testPin(), "bob", "p", 100)
	require.True(t, errors.Is(err, types.ErrPinInvalidated))
	require.False(t, resolved)
	require.False(t, submitted)
}

func TestStateObserver(t *testing.T) {
	env := newTestEnv(t)

	var states []State
	env.broadcaster.SetObserver(func(username, intent string, state State) {
		require.Equal(t, "alice", username)
		require.Equal(t, types.OpVote, intent)
		states = append(states, state)
	})

	_, err := env.broadcaster.Vote(context.Background(), newLocalAccount(t), testPin(), "bob", "post", 100)
	require.Nil(t, err)
	require.Equal(t, []State{StateIdle, StateResolvingCredential, StateBuildingOperations, StateSubmitting, StateSucceeded}, states)

	states = nil
	_, err = env.broadcaster.Vote(context.Background(), newLocalAccount(t), []byte("0000"), "bob", "post", 100)
	require.NotNil(t, err)
	require.Equal(t, []State{StateIdle, StateResolvingCredential, StateFailed}, states)

	// A rejection by the node fails from the submitting state.
	states = nil
	env.nodes["a"].reject = true
	_, err = env.broadcaster.Vote(context.Background(), newLocalAccount(t), testPin(), "bob", "post", 100)
	require.True(t, errors.Is(err, types.ErrOperationRejected))
	require.Equal(t, []State{StateIdle, StateResolvingCredential, StateBuildingOperations, StateSubmitting, StateFailed}, states)
}

func TestClaimPendingRewards(t *testing.T) {
	env := newTestEnv(t)
	env.nodes["a"].accounts = []*steem.Account{{
		Name:                 "alice",
		RewardSteemBalance:   "0.000 STEEM",
		RewardSbdBalance:     "1.234 SBD",
		RewardVestingBalance: "5.000000 VESTS",
	}}

	result, err := env.broadcaster.ClaimPendingRewards(context.Background(), newLocalAccount(t), testPin())
	require.Nil(t, err)
	require.Equal(t, "tx-a", result.TransactionID)
}

func TestRefreshAuthorityState(t *testing.T) {
	env := newTestEnv(t)
	env.nodes["a"].accounts = []*steem.Account{{
		Name:         "alice",
		Posting:      types.Authority{WeightThreshold: 1, AccountAuths: []types.AccountAuth{{Account: "esteemapp", Weight: 1}}},
		MemoKey:      "STM1",
		JSONMetadata: "{}",
	}}

	acc := newLocalAccount(t)
	refreshed, err := env.broadcaster.RefreshAuthorityState(context.Background(), acc)
	require.Nil(t, err)
	require.Nil(t, acc.AuthorityState())
	require.Equal(t, "STM1", refreshed.AuthorityState().MemoKey)

	env.nodes["a"].accounts = nil
	_, err = env.broadcaster.RefreshAuthorityState(context.Background(), acc)
	require.True(t, errors.Is(err, types.ErrInvalidAccount))
}
