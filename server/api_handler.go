package server

import (
	"context"
	"encoding/json"

	"github.com/esteemapp/surfer-core/client"
	"github.com/esteemapp/surfer-core/core"
	"github.com/esteemapp/surfer-core/database"
	"github.com/esteemapp/surfer-core/operations"
	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
)

// ApiHandler exposes the broadcaster to a local presentation process. The
// pin travels with each request and the broadcaster zeroes its copy.
type ApiHandler struct {
	broadcaster *core.Broadcaster
	db          database.Database
	sc          client.SteemConnect
	redirect    string
}

func NewApi(broadcaster *core.Broadcaster, db database.Database, sc client.SteemConnect, redirect string) *ApiHandler {
	return &ApiHandler{
		broadcaster: broadcaster,
		db:          db,
		sc:          sc,
		redirect:    redirect,
	}
}

// Empty function for checking health only.
func (api *ApiHandler) CheckHealth() {
}

func (api *ApiHandler) Accounts() ([]string, error) {
	return api.db.ListAccounts()
}

func (api *ApiHandler) NodeAddress() string {
	return api.broadcaster.NodeAddress()
}

func (api *ApiHandler) SetNodeAddress(address string) error {
	return api.broadcaster.SetNodeAddress(address)
}

func (api *ApiHandler) Vote(ctx context.Context, username, pin, author, permlink string, weight int16) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.Vote(ctx, acc, []byte(pin), author, permlink, weight)
}

func (api *ApiHandler) Follow(ctx context.Context, username, pin, following string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.Follow(ctx, acc, []byte(pin), following)
}

func (api *ApiHandler) UnFollow(ctx context.Context, username, pin, following string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.UnFollow(ctx, acc, []byte(pin), following)
}

func (api *ApiHandler) Ignore(ctx context.Context, username, pin, following string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.Ignore(ctx, acc, []byte(pin), following)
}

type CommentRequest struct {
	operations.CommentParams
	Options    *types.CommentOptions `json:"options"`
	VoteWeight *int16                `json:"vote_weight"`
}

func (api *ApiHandler) Comment(ctx context.Context, username, pin string, req *CommentRequest) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.Comment(ctx, acc, []byte(pin), req.CommentParams, req.Options, req.VoteWeight)
}

func (api *ApiHandler) Reblog(ctx context.Context, username, pin, author, permlink string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.Reblog(ctx, acc, []byte(pin), author, permlink)
}

func (api *ApiHandler) ClaimRewardBalance(ctx context.Context, username, pin, rewardSteem, rewardSbd, rewardVests string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.ClaimRewardBalance(ctx, acc, []byte(pin), rewardSteem, rewardSbd, rewardVests)
}

func (api *ApiHandler) ClaimPendingRewards(ctx context.Context, username, pin string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.ClaimPendingRewards(ctx, acc, []byte(pin))
}

func (api *ApiHandler) WitnessVote(ctx context.Context, username, pin, witness string, approve bool) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.WitnessVote(ctx, acc, []byte(pin), witness, approve)
}

func (api *ApiHandler) WitnessProxy(ctx context.Context, username, pin, proxy string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.WitnessProxy(ctx, acc, []byte(pin), proxy)
}

func (api *ApiHandler) Transfer(ctx context.Context, username, pin, to, amount, memo string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.Transfer(ctx, acc, []byte(pin), to, amount, memo)
}

func (api *ApiHandler) TransferToSavings(ctx context.Context, username, pin, to, amount, memo string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.TransferToSavings(ctx, acc, []byte(pin), to, amount, memo)
}

func (api *ApiHandler) TransferFromSavings(ctx context.Context, username, pin string, requestID uint32, to, amount, memo string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.TransferFromSavings(ctx, acc, []byte(pin), requestID, to, amount, memo)
}

func (api *ApiHandler) TransferToVesting(ctx context.Context, username, pin, to, amount string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.TransferToVesting(ctx, acc, []byte(pin), to, amount)
}

func (api *ApiHandler) DelegateVestingShares(ctx context.Context, username, pin, delegatee, vestingShares string) (*types.BroadcastResult, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.DelegateVestingShares(ctx, acc, []byte(pin), delegatee, vestingShares)
}

// GrantPostingPermission refreshes the account's authority from the node
// before building the update so the bundle never carries a stale list.
func (api *ApiHandler) GrantPostingPermission(ctx context.Context, username, pin string) (*types.BroadcastResult, error) {
	acc, err := api.loadWithAuthority(ctx, username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.GrantPostingPermission(ctx, acc, []byte(pin))
}

func (api *ApiHandler) RevokePostingPermission(ctx context.Context, username, pin string) (*types.BroadcastResult, error) {
	acc, err := api.loadWithAuthority(ctx, username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.RevokePostingPermission(ctx, acc, []byte(pin))
}

func (api *ApiHandler) loadWithAuthority(ctx context.Context, username string) (*types.Account, error) {
	acc, err := api.db.LoadAccount(username)
	if err != nil {
		return nil, err
	}

	return api.broadcaster.RefreshAuthorityState(ctx, acc)
}

// HotSigningURL returns the delegated service page where a Delegated
// account signs an active authority operation itself.
func (api *ApiHandler) HotSigningURL(name string, fields json.RawMessage) (string, error) {
	op, err := decodeActiveOperation(name, fields)
	if err != nil {
		return "", err
	}

	return api.sc.HotSigningURL(op, api.redirect)
}

// AppAuthorizationURL returns the delegated service page where a Delegated
// account grants the app posting authority, or revokes it.
func (api *ApiHandler) AppAuthorizationURL(grant bool) string {
	return api.sc.AppAuthorizationURL(api.broadcaster.AppAccount(), grant, api.redirect)
}

func decodeActiveOperation(name string, fields json.RawMessage) (types.Operation, error) {
	var op types.Operation
	var err error

	switch name {
	case types.OpAccountWitnessVote:
		o := types.AccountWitnessVote{}
		err = json.Unmarshal(fields, &o)
		op = o
	case types.OpAccountWitnessProxy:
		o := types.AccountWitnessProxy{}
		err = json.Unmarshal(fields, &o)
		op = o
	case types.OpTransfer:
		o := types.Transfer{}
		err = json.Unmarshal(fields, &o)
		op = o
	case types.OpTransferToSavings:
		o := types.TransferToSavings{}
		err = json.Unmarshal(fields, &o)
		op = o
	case types.OpTransferFromSavings:
		o := types.TransferFromSavings{}
		err = json.Unmarshal(fields, &o)
		op = o
	case types.OpTransferToVesting:
		o := types.TransferToVesting{}
		err = json.Unmarshal(fields, &o)
		op = o
	case types.OpDelegateVestingShares:
		o := types.DelegateVestingShares{}
		err = json.Unmarshal(fields, &o)
		op = o
	case types.OpAccountUpdate:
		o := types.AccountUpdate{}
		err = json.Unmarshal(fields, &o)
		op = o
	default:
		return nil, errors.Errorf("operation %s cannot be hot signed", name)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s fields", name)
	}

	return op, nil
}
