package steem

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/esteemapp/surfer-core/types"
	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

const (
	// Expiration window applied to every transaction.
	DefaultExpiration = time.Minute

	timeLayout = "2006-01-02T15:04:05"
)

// ChainID of the Steem main network.
var ChainID = make([]byte, 32)

type Transaction struct {
	RefBlockNum    uint16
	RefBlockPrefix uint32
	Expiration     time.Time
	Operations     types.Bundle
	Signatures     []string
}

// NewTransaction references the head block of props and expires the
// transaction expiration after the head block time.
func NewTransaction(props *DynamicGlobalProperties, bundle types.Bundle, expiration time.Duration) (*Transaction, error) {
	blockID, err := hex.DecodeString(props.HeadBlockID)
	if err != nil || len(blockID) < 8 {
		return nil, errors.Errorf("invalid head block id %q", props.HeadBlockID)
	}

	headTime, err := time.Parse(timeLayout, props.Time)
	if err != nil {
		return nil, errors.Wrap(err, "invalid head block time")
	}

	return &Transaction{
		RefBlockNum:    uint16(props.HeadBlockNumber & 0xffff),
		RefBlockPrefix: binary.LittleEndian.Uint32(blockID[4:8]),
		Expiration:     headTime.Add(expiration).UTC(),
		Operations:     bundle,
	}, nil
}

// Serialize returns the wire encoding of the unsigned transaction.
func (tx *Transaction) Serialize() ([]byte, error) {
	ops, err := SerializeOperations(tx.Operations)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBinEncoder(buf)
	if err := enc.WriteUint16(tx.RefBlockNum, le); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(tx.RefBlockPrefix, le); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(uint32(tx.Expiration.Unix()), le); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(ops, false); err != nil {
		return nil, err
	}
	// extensions
	if err := enc.WriteUVarInt(0); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Digest is the hash that gets signed: sha256(chainID || tx).
func (tx *Transaction) Digest(chainID []byte) ([]byte, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(append(append([]byte{}, chainID...), raw...))
	return digest[:], nil
}

// ID returns the transaction id, the first 20 bytes of sha256(tx) in hex.
func (tx *Transaction) ID() (string, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(raw)
	return hex.EncodeToString(hash[:20]), nil
}

// Sign appends a signature by each key.
func (tx *Transaction) Sign(chainID []byte, keys ...*PrivateKey) error {
	digest, err := tx.Digest(chainID)
	if err != nil {
		return err
	}

	for _, key := range keys {
		sig, err := key.SignDigest(digest)
		if err != nil {
			return errors.Wrap(err, "sign transaction")
		}
		tx.Signatures = append(tx.Signatures, hex.EncodeToString(sig))
	}

	return nil
}

type transactionJSON struct {
	RefBlockNum    uint16        `json:"ref_block_num"`
	RefBlockPrefix uint32        `json:"ref_block_prefix"`
	Expiration     string        `json:"expiration"`
	Operations     types.Bundle  `json:"operations"`
	Extensions     []interface{} `json:"extensions"`
	Signatures     []string      `json:"signatures"`
}

func (tx *Transaction) MarshalJSON() ([]byte, error) {
	sigs := tx.Signatures
	if sigs == nil {
		sigs = []string{}
	}

	return json.Marshal(transactionJSON{
		RefBlockNum:    tx.RefBlockNum,
		RefBlockPrefix: tx.RefBlockPrefix,
		Expiration:     tx.Expiration.UTC().Format(timeLayout),
		Operations:     tx.Operations,
		Extensions:     []interface{}{},
		Signatures:     sigs,
	})
}
