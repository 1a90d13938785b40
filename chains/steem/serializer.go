package steem

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/esteemapp/surfer-core/types"
	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

// Operation ids in the chain's static variant.
var opIDs = map[string]int{
	types.OpVote:                  0,
	types.OpComment:               1,
	types.OpTransfer:              2,
	types.OpTransferToVesting:     3,
	types.OpAccountUpdate:         10,
	types.OpAccountWitnessVote:    12,
	types.OpAccountWitnessProxy:   13,
	types.OpCustomJSON:            18,
	types.OpCommentOptions:        19,
	types.OpTransferToSavings:     32,
	types.OpTransferFromSavings:   33,
	types.OpClaimRewardBalance:    39,
	types.OpDelegateVestingShares: 40,
}

var le = binary.LittleEndian

type encoder struct {
	*bin.Encoder
}

func newEncoder(buf *bytes.Buffer) *encoder {
	return &encoder{bin.NewBinEncoder(buf)}
}

func (e *encoder) str(s string) error {
	if err := e.WriteUVarInt(len(s)); err != nil {
		return err
	}

	return e.WriteBytes([]byte(s), false)
}

func (e *encoder) strs(ss ...string) error {
	for _, s := range ss {
		if err := e.str(s); err != nil {
			return err
		}
	}

	return nil
}

// set writes a flat_set of account names, which the chain keeps sorted.
func (e *encoder) set(names []string) error {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)

	if err := e.WriteUVarInt(len(sorted)); err != nil {
		return err
	}

	return e.strs(sorted...)
}

func (e *encoder) asset(s string) error {
	a, err := ParseAsset(s)
	if err != nil {
		return err
	}

	if err := e.WriteUint64(uint64(a.Amount), le); err != nil {
		return err
	}
	if err := e.WriteByte(a.Precision); err != nil {
		return err
	}

	symbol := make([]byte, 7)
	copy(symbol, a.Symbol)
	return e.WriteBytes(symbol, false)
}

func (e *encoder) publicKey(s string) error {
	key, err := DecodePublicKey(s)
	if err != nil {
		return err
	}

	return e.WriteBytes(key, false)
}

func (e *encoder) authority(a *types.Authority) error {
	if err := e.WriteUint32(a.WeightThreshold, le); err != nil {
		return err
	}

	accounts := append([]types.AccountAuth{}, a.AccountAuths...)
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Account < accounts[j].Account })
	if err := e.WriteUVarInt(len(accounts)); err != nil {
		return err
	}
	for _, auth := range accounts {
		if err := e.str(auth.Account); err != nil {
			return err
		}
		if err := e.WriteUint16(auth.Weight, le); err != nil {
			return err
		}
	}

	type rawKeyAuth struct {
		key    []byte
		weight uint16
	}
	keys := make([]rawKeyAuth, 0, len(a.KeyAuths))
	for _, auth := range a.KeyAuths {
		key, err := DecodePublicKey(auth.Key)
		if err != nil {
			return err
		}
		keys = append(keys, rawKeyAuth{key: key, weight: auth.Weight})
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i].key, keys[j].key) < 0 })

	if err := e.WriteUVarInt(len(keys)); err != nil {
		return err
	}
	for _, k := range keys {
		if err := e.WriteBytes(k.key, false); err != nil {
			return err
		}
		if err := e.WriteUint16(k.weight, le); err != nil {
			return err
		}
	}

	return nil
}

func (e *encoder) optionalAuthority(a *types.Authority) error {
	if a == nil {
		return e.WriteBool(false)
	}
	if err := e.WriteBool(true); err != nil {
		return err
	}

	return e.authority(a)
}

func (e *encoder) operation(op types.Operation) error {
	id, ok := opIDs[op.OpName()]
	if !ok {
		return errors.Errorf("unsupported operation %s", op.OpName())
	}
	if err := e.WriteUVarInt(id); err != nil {
		return err
	}

	switch o := op.(type) {
	case types.Vote:
		if err := e.strs(o.Voter, o.Author, o.Permlink); err != nil {
			return err
		}
		return e.WriteUint16(uint16(o.Weight), le)

	case types.Comment:
		return e.strs(o.ParentAuthor, o.ParentPermlink, o.Author, o.Permlink, o.Title, o.Body, o.JSONMetadata)

	case types.CommentOptions:
		if err := e.strs(o.Author, o.Permlink); err != nil {
			return err
		}
		if err := e.asset(o.MaxAcceptedPayout); err != nil {
			return err
		}
		if err := e.WriteUint16(o.PercentSteemDollars, le); err != nil {
			return err
		}
		if err := e.WriteBool(o.AllowVotes); err != nil {
			return err
		}
		if err := e.WriteBool(o.AllowCurationRewards); err != nil {
			return err
		}
		return e.beneficiaries(o.Beneficiaries)

	case types.CustomJSON:
		if err := e.set(o.RequiredAuths); err != nil {
			return err
		}
		if err := e.set(o.RequiredPostingAuths); err != nil {
			return err
		}
		return e.strs(o.ID, o.JSON)

	case types.Transfer:
		return e.transfer(o.From, o.To, o.Amount, &o.Memo)

	case types.TransferToSavings:
		return e.transfer(o.From, o.To, o.Amount, &o.Memo)

	case types.TransferFromSavings:
		if err := e.str(o.From); err != nil {
			return err
		}
		if err := e.WriteUint32(o.RequestID, le); err != nil {
			return err
		}
		if err := e.str(o.To); err != nil {
			return err
		}
		if err := e.asset(o.Amount); err != nil {
			return err
		}
		return e.str(o.Memo)

	case types.TransferToVesting:
		return e.transfer(o.From, o.To, o.Amount, nil)

	case types.DelegateVestingShares:
		if err := e.strs(o.Delegator, o.Delegatee); err != nil {
			return err
		}
		return e.asset(o.VestingShares)

	case types.ClaimRewardBalance:
		if err := e.str(o.Account); err != nil {
			return err
		}
		for _, amount := range []string{o.RewardSteem, o.RewardSbd, o.RewardVests} {
			if err := e.asset(amount); err != nil {
				return err
			}
		}
		return nil

	case types.AccountWitnessVote:
		if err := e.strs(o.Account, o.Witness); err != nil {
			return err
		}
		return e.WriteBool(o.Approve)

	case types.AccountWitnessProxy:
		return e.strs(o.Account, o.Proxy)

	case types.AccountUpdate:
		if err := e.str(o.Account); err != nil {
			return err
		}
		for _, a := range []*types.Authority{o.Owner, o.Active, o.Posting} {
			if err := e.optionalAuthority(a); err != nil {
				return err
			}
		}
		if err := e.publicKey(o.MemoKey); err != nil {
			return err
		}
		return e.str(o.JSONMetadata)
	}

	return errors.Errorf("cannot serialize %T", op)
}

// transfer writes from, to, amount and an optional memo.
func (e *encoder) transfer(from, to, amount string, memo *string) error {
	if err := e.strs(from, to); err != nil {
		return err
	}
	if err := e.asset(amount); err != nil {
		return err
	}
	if memo != nil {
		return e.str(*memo)
	}

	return nil
}

func (e *encoder) beneficiaries(list []types.Beneficiary) error {
	if len(list) == 0 {
		return e.WriteUVarInt(0)
	}

	// Beneficiaries are a vector; the chain only validates that they are
	// already sorted, so the caller's order is kept.
	// One extension of variant 0 (comment_payout_beneficiaries).
	if err := e.WriteUVarInt(1); err != nil {
		return err
	}
	if err := e.WriteUVarInt(0); err != nil {
		return err
	}
	if err := e.WriteUVarInt(len(list)); err != nil {
		return err
	}
	for _, b := range list {
		if err := e.str(b.Account); err != nil {
			return err
		}
		if err := e.WriteUint16(b.Weight, le); err != nil {
			return err
		}
	}

	return nil
}

// SerializeOperations returns the wire encoding of a bundle.
func SerializeOperations(bundle types.Bundle) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := newEncoder(buf)

	if err := enc.WriteUVarInt(len(bundle)); err != nil {
		return nil, err
	}
	for _, op := range bundle {
		if err := enc.operation(op); err != nil {
			return nil, errors.Wrapf(err, "serialize %s", op.OpName())
		}
	}

	return buf.Bytes(), nil
}
