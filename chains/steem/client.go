package steem

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
	"github.com/sisu-network/lib/log"
	"github.com/ybbus/jsonrpc/v3"
)

const condenserApi = "condenser_api"

type DynamicGlobalProperties struct {
	HeadBlockNumber uint32 `json:"head_block_number"`
	HeadBlockID     string `json:"head_block_id"`
	Time            string `json:"time"`
}

// Account is the subset of the node's account object used by this layer.
type Account struct {
	Name                 string          `json:"name"`
	Posting              types.Authority `json:"posting"`
	MemoKey              string          `json:"memo_key"`
	JSONMetadata         string          `json:"json_metadata"`
	RewardSteemBalance   string          `json:"reward_steem_balance"`
	RewardSbdBalance     string          `json:"reward_sbd_balance"`
	RewardVestingBalance string          `json:"reward_vesting_balance"`
}

func (a *Account) AuthorityState() *types.AuthorityState {
	return &types.AuthorityState{
		Posting:      a.Posting.Clone(),
		MemoKey:      a.MemoKey,
		JSONMetadata: a.JSONMetadata,
	}
}

type FollowCount struct {
	Account        string `json:"account"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
}

type ActiveVote struct {
	Voter   string      `json:"voter"`
	Weight  interface{} `json:"weight"`
	Rshares interface{} `json:"rshares"`
	Percent int         `json:"percent"`
	Time    string      `json:"time"`
}

type Discussion struct {
	ID             int64        `json:"id"`
	Author         string       `json:"author"`
	Permlink       string       `json:"permlink"`
	Category       string       `json:"category"`
	ParentAuthor   string       `json:"parent_author"`
	ParentPermlink string       `json:"parent_permlink"`
	Title          string       `json:"title"`
	Body           string       `json:"body"`
	JSONMetadata   string       `json:"json_metadata"`
	Created        string       `json:"created"`
	Children       int          `json:"children"`
	NetVotes       int          `json:"net_votes"`
	PendingPayout  string       `json:"pending_payout_value"`
	ActiveVotes    []ActiveVote `json:"active_votes"`
}

// DiscussionQuery is the argument of the get_discussions_by_* calls.
type DiscussionQuery struct {
	Tag           string `json:"tag"`
	Limit         int    `json:"limit"`
	StartAuthor   string `json:"start_author,omitempty"`
	StartPermlink string `json:"start_permlink,omitempty"`
	TruncateBody  int    `json:"truncate_body,omitempty"`
}

type BroadcastResponse struct {
	ID       string `json:"id"`
	BlockNum uint32 `json:"block_num"`
	TrxNum   uint32 `json:"trx_num"`
	Expired  bool   `json:"expired"`
}

// Client is a JSON-RPC connection to one node.
type Client interface {
	Address() string
	Call(ctx context.Context, api, method string, params []interface{}, out interface{}) error

	GetDiscussions(ctx context.Context, by string, query *DiscussionQuery) ([]*Discussion, error)
	GetAccounts(ctx context.Context, names ...string) ([]*Account, error)
	GetDynamicGlobalProperties(ctx context.Context) (*DynamicGlobalProperties, error)
	GetFollowCount(ctx context.Context, name string) (*FollowCount, error)
	GetActiveVotes(ctx context.Context, author, permlink string) ([]*ActiveVote, error)
	BroadcastTransactionSynchronous(ctx context.Context, tx *Transaction) (*BroadcastResponse, error)
}

type DefaultClient struct {
	address string
	client  jsonrpc.RPCClient
}

func NewClient(address string, timeout time.Duration) Client {
	return &DefaultClient{
		address: address,
		client: jsonrpc.NewClientWithOpts(address, &jsonrpc.RPCClientOpts{
			HTTPClient: &http.Client{Timeout: timeout},
		}),
	}
}

func (c *DefaultClient) Address() string {
	return c.address
}

func (c *DefaultClient) Call(ctx context.Context, api, method string, params []interface{}, out interface{}) error {
	if params == nil {
		params = []interface{}{}
	}

	name := fmt.Sprintf("%s.%s", api, method)
	resp, err := c.client.Call(ctx, name, params)

	// Some nodes answer a JSON-RPC error with a non-2xx status, in which case
	// the client returns the decoded response together with an HTTPError.
	if resp != nil && resp.Error != nil {
		log.Verbose("Node rejected ", name, ", code = ", resp.Error.Code, ", message = ", resp.Error.Message)
		return errors.Wrapf(types.ErrOperationRejected, "%s: %s", name, resp.Error.Message)
	}

	if err != nil {
		log.Warn("Cannot call ", name, " on ", c.address, ", err = ", err)
		return errors.Wrapf(types.ErrTransport, "%s: %v", name, err)
	}

	if err := resp.GetObject(out); err != nil {
		return errors.Wrapf(types.ErrTransport, "%s: cannot decode result: %v", name, err)
	}

	return nil
}

func (c *DefaultClient) GetDiscussions(ctx context.Context, by string, query *DiscussionQuery) ([]*Discussion, error) {
	discussions := make([]*Discussion, 0)
	err := c.Call(ctx, condenserApi, "get_discussions_by_"+by, []interface{}{query}, &discussions)
	return discussions, err
}

func (c *DefaultClient) GetAccounts(ctx context.Context, names ...string) ([]*Account, error) {
	accounts := make([]*Account, 0, len(names))
	err := c.Call(ctx, condenserApi, "get_accounts", []interface{}{names}, &accounts)
	return accounts, err
}

func (c *DefaultClient) GetDynamicGlobalProperties(ctx context.Context) (*DynamicGlobalProperties, error) {
	props := new(DynamicGlobalProperties)
	if err := c.Call(ctx, condenserApi, "get_dynamic_global_properties", nil, props); err != nil {
		return nil, err
	}

	return props, nil
}

func (c *DefaultClient) GetFollowCount(ctx context.Context, name string) (*FollowCount, error) {
	count := new(FollowCount)
	if err := c.Call(ctx, condenserApi, "get_follow_count", []interface{}{name}, count); err != nil {
		return nil, err
	}

	return count, nil
}

func (c *DefaultClient) GetActiveVotes(ctx context.Context, author, permlink string) ([]*ActiveVote, error) {
	votes := make([]*ActiveVote, 0)
	err := c.Call(ctx, condenserApi, "get_active_votes", []interface{}{author, permlink}, &votes)
	return votes, err
}

func (c *DefaultClient) BroadcastTransactionSynchronous(ctx context.Context, tx *Transaction) (*BroadcastResponse, error) {
	resp := new(BroadcastResponse)
	if err := c.Call(ctx, condenserApi, "broadcast_transaction_synchronous", []interface{}{tx}, resp); err != nil {
		return nil, err
	}

	return resp, nil
}
