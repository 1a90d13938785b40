// Package operations translates user intents into ordered operation bundles.
// Builders are pure: they never perform I/O and never look at how the
// account signs, so the same bundle feeds either backend.
package operations

import (
	"encoding/json"

	"github.com/esteemapp/surfer-core/types"
	"github.com/pkg/errors"
)

const followPluginID = "follow"

// Vote builds a single vote. Weight is in basis points, -10000..10000.
func Vote(voter, author, permlink string, weight int16) types.Bundle {
	return types.Bundle{
		types.Vote{Voter: voter, Author: author, Permlink: permlink, Weight: weight},
	}
}

// CommentParams are the author supplied parts of a post or reply.
type CommentParams struct {
	ParentAuthor   string      `json:"parent_author"`
	ParentPermlink string      `json:"parent_permlink"`
	Permlink       string      `json:"permlink"`
	Title          string      `json:"title"`
	Body           string      `json:"body"`
	JSONMetadata   interface{} `json:"json_metadata"`
}

// Comment builds comment, then comment_options when options is set, then a
// self vote when voteWeight is set. Later operations reference the comment
// created by the first one, so the order is fixed.
func Comment(author string, params CommentParams, options *types.CommentOptions, voteWeight *int16) (types.Bundle, error) {
	meta, err := encodeMetadata(params.JSONMetadata)
	if err != nil {
		return nil, err
	}

	bundle := types.Bundle{
		types.Comment{
			ParentAuthor:   params.ParentAuthor,
			ParentPermlink: params.ParentPermlink,
			Author:         author,
			Permlink:       params.Permlink,
			Title:          params.Title,
			Body:           params.Body,
			JSONMetadata:   meta,
		},
	}

	if options != nil {
		opts := *options
		opts.Author = author
		opts.Permlink = params.Permlink
		bundle = append(bundle, opts)
	}

	if voteWeight != nil {
		bundle = append(bundle, types.Vote{
			Voter:    author,
			Author:   author,
			Permlink: params.Permlink,
			Weight:   *voteWeight,
		})
	}

	return bundle, nil
}

func encodeMetadata(meta interface{}) (string, error) {
	switch v := meta.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.RawMessage:
		return string(v), nil
	}

	bz, err := json.Marshal(meta)
	if err != nil {
		return "", errors.Wrap(err, "encode json metadata")
	}

	return string(bz), nil
}

// Follow, Unfollow and Ignore share the follow plugin encoding and differ
// only in the "what" list.
func Follow(follower, following string) (types.Bundle, error) {
	return followAction(follower, following, "blog")
}

func Unfollow(follower, following string) (types.Bundle, error) {
	return followAction(follower, following, "")
}

func Ignore(follower, following string) (types.Bundle, error) {
	return followAction(follower, following, "ignore")
}

func followAction(follower, following, what string) (types.Bundle, error) {
	return customFollowPlugin(follower, "follow", types.Follow{
		Follower:  follower,
		Following: following,
		What:      []string{what},
	})
}

func Reblog(account, author, permlink string) (types.Bundle, error) {
	return customFollowPlugin(account, "reblog", types.Reblog{
		Account:  account,
		Author:   author,
		Permlink: permlink,
	})
}

func customFollowPlugin(account, action string, payload interface{}) (types.Bundle, error) {
	bz, err := json.Marshal([]interface{}{action, payload})
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s payload", action)
	}

	return types.Bundle{
		types.CustomJSON{
			RequiredAuths:        []string{},
			RequiredPostingAuths: []string{account},
			ID:                   followPluginID,
			JSON:                 string(bz),
		},
	}, nil
}

// ClaimRewardBalance passes the balances through untouched. The caller must
// have read the current unclaimed balances first.
func ClaimRewardBalance(account, rewardSteem, rewardSbd, rewardVests string) types.Bundle {
	return types.Bundle{
		types.ClaimRewardBalance{
			Account:     account,
			RewardSteem: rewardSteem,
			RewardSbd:   rewardSbd,
			RewardVests: rewardVests,
		},
	}
}

func WitnessVote(account, witness string, approve bool) types.Bundle {
	return types.Bundle{
		types.AccountWitnessVote{Account: account, Witness: witness, Approve: approve},
	}
}

// WitnessProxy sets proxy; an empty proxy clears it.
func WitnessProxy(account, proxy string) types.Bundle {
	return types.Bundle{
		types.AccountWitnessProxy{Account: account, Proxy: proxy},
	}
}

func Transfer(from, to, amount, memo string) types.Bundle {
	return types.Bundle{
		types.Transfer{From: from, To: to, Amount: amount, Memo: memo},
	}
}

func TransferToSavings(from, to, amount, memo string) types.Bundle {
	return types.Bundle{
		types.TransferToSavings{From: from, To: to, Amount: amount, Memo: memo},
	}
}

func TransferFromSavings(from string, requestID uint32, to, amount, memo string) types.Bundle {
	return types.Bundle{
		types.TransferFromSavings{From: from, RequestID: requestID, To: to, Amount: amount, Memo: memo},
	}
}

func TransferToVesting(from, to, amount string) types.Bundle {
	return types.Bundle{
		types.TransferToVesting{From: from, To: to, Amount: amount},
	}
}

func DelegateVestingShares(delegator, delegatee, vestingShares string) types.Bundle {
	return types.Bundle{
		types.DelegateVestingShares{Delegator: delegator, Delegatee: delegatee, VestingShares: vestingShares},
	}
}
