package types

import (
	"encoding/json"
)

// Operation is one instruction understood by the chain. The concrete types
// below carry only the fields the chain defines for them.
type Operation interface {
	OpName() string
}

const (
	OpVote                  = "vote"
	OpComment               = "comment"
	OpCommentOptions        = "comment_options"
	OpCustomJSON            = "custom_json"
	OpTransfer              = "transfer"
	OpTransferToSavings     = "transfer_to_savings"
	OpTransferFromSavings   = "transfer_from_savings"
	OpTransferToVesting     = "transfer_to_vesting"
	OpDelegateVestingShares = "delegate_vesting_shares"
	OpClaimRewardBalance    = "claim_reward_balance"
	OpAccountWitnessVote    = "account_witness_vote"
	OpAccountWitnessProxy   = "account_witness_proxy"
	OpAccountUpdate         = "account_update"
)

type Vote struct {
	Voter    string `json:"voter"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
	Weight   int16  `json:"weight"`
}

type Comment struct {
	ParentAuthor   string `json:"parent_author"`
	ParentPermlink string `json:"parent_permlink"`
	Author         string `json:"author"`
	Permlink       string `json:"permlink"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	JSONMetadata   string `json:"json_metadata"`
}

type Beneficiary struct {
	Account string `json:"account"`
	Weight  uint16 `json:"weight"`
}

type CommentOptions struct {
	Author               string        `json:"author"`
	Permlink             string        `json:"permlink"`
	MaxAcceptedPayout    string        `json:"max_accepted_payout"`
	PercentSteemDollars  uint16        `json:"percent_steem_dollars"`
	AllowVotes           bool          `json:"allow_votes"`
	AllowCurationRewards bool          `json:"allow_curation_rewards"`
	Beneficiaries        []Beneficiary `json:"-"`
}

// MarshalJSON renders beneficiaries as the chain's extension variant
// [[0, {"beneficiaries": [...]}]].
func (o CommentOptions) MarshalJSON() ([]byte, error) {
	type plain CommentOptions
	extensions := make([]interface{}, 0, 1)
	if len(o.Beneficiaries) > 0 {
		extensions = append(extensions, []interface{}{
			0, map[string]interface{}{"beneficiaries": o.Beneficiaries},
		})
	}

	return json.Marshal(struct {
		plain
		Extensions []interface{} `json:"extensions"`
	}{plain(o), extensions})
}

// UnmarshalJSON is the inverse of MarshalJSON. Unknown extension variants
// are ignored.
func (o *CommentOptions) UnmarshalJSON(data []byte) error {
	type plain CommentOptions
	aux := struct {
		*plain
		Extensions [][]json.RawMessage `json:"extensions"`
	}{plain: (*plain)(o)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	for _, ext := range aux.Extensions {
		if len(ext) != 2 {
			continue
		}

		var tag int
		if err := json.Unmarshal(ext[0], &tag); err != nil || tag != 0 {
			continue
		}

		body := struct {
			Beneficiaries []Beneficiary `json:"beneficiaries"`
		}{}
		if err := json.Unmarshal(ext[1], &body); err != nil {
			return err
		}
		o.Beneficiaries = body.Beneficiaries
	}

	return nil
}

// CustomJSON carries plugin payloads such as follow and reblog.
type CustomJSON struct {
	RequiredAuths        []string `json:"required_auths"`
	RequiredPostingAuths []string `json:"required_posting_auths"`
	ID                   string   `json:"id"`
	JSON                 string   `json:"json"`
}

type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Memo   string `json:"memo"`
}

type TransferToSavings struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Memo   string `json:"memo"`
}

type TransferFromSavings struct {
	From      string `json:"from"`
	RequestID uint32 `json:"request_id"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Memo      string `json:"memo"`
}

type TransferToVesting struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type DelegateVestingShares struct {
	Delegator     string `json:"delegator"`
	Delegatee     string `json:"delegatee"`
	VestingShares string `json:"vesting_shares"`
}

type ClaimRewardBalance struct {
	Account     string `json:"account"`
	RewardSteem string `json:"reward_steem"`
	RewardSbd   string `json:"reward_sbd"`
	RewardVests string `json:"reward_vests"`
}

type AccountWitnessVote struct {
	Account string `json:"account"`
	Witness string `json:"witness"`
	Approve bool   `json:"approve"`
}

type AccountWitnessProxy struct {
	Account string `json:"account"`
	Proxy   string `json:"proxy"`
}

// AccountUpdate leaves owner and active untouched when they are nil.
type AccountUpdate struct {
	Account      string     `json:"account"`
	Owner        *Authority `json:"owner,omitempty"`
	Active       *Authority `json:"active,omitempty"`
	Posting      *Authority `json:"posting,omitempty"`
	MemoKey      string     `json:"memo_key"`
	JSONMetadata string     `json:"json_metadata"`
}

func (Vote) OpName() string                  { return OpVote }
func (Comment) OpName() string               { return OpComment }
func (CommentOptions) OpName() string        { return OpCommentOptions }
func (CustomJSON) OpName() string            { return OpCustomJSON }
func (Transfer) OpName() string              { return OpTransfer }
func (TransferToSavings) OpName() string     { return OpTransferToSavings }
func (TransferFromSavings) OpName() string   { return OpTransferFromSavings }
func (TransferToVesting) OpName() string     { return OpTransferToVesting }
func (DelegateVestingShares) OpName() string { return OpDelegateVestingShares }
func (ClaimRewardBalance) OpName() string    { return OpClaimRewardBalance }
func (AccountWitnessVote) OpName() string    { return OpAccountWitnessVote }
func (AccountWitnessProxy) OpName() string   { return OpAccountWitnessProxy }
func (AccountUpdate) OpName() string         { return OpAccountUpdate }

// Follow is the payload of the follow plugin's "follow" action.
type Follow struct {
	Follower  string   `json:"follower"`
	Following string   `json:"following"`
	What      []string `json:"what"`
}

// Reblog is the payload of the follow plugin's "reblog" action.
type Reblog struct {
	Account  string `json:"account"`
	Author   string `json:"author"`
	Permlink string `json:"permlink"`
}

// Bundle is an ordered list of operations submitted as one transaction.
type Bundle []Operation

// MarshalJSON renders the legacy [[name, body], ...] form accepted by both
// chain nodes and the delegated broadcast service.
func (b Bundle) MarshalJSON() ([]byte, error) {
	pairs := make([][2]interface{}, 0, len(b))
	for _, op := range b {
		pairs = append(pairs, [2]interface{}{op.OpName(), op})
	}

	return json.Marshal(pairs)
}

func (b Bundle) Names() []string {
	names := make([]string, len(b))
	for i, op := range b {
		names[i] = op.OpName()
	}

	return names
}
