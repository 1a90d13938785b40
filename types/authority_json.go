package types

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// The chain encodes authority entries as two element arrays.

func (a AccountAuth) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{a.Account, a.Weight})
}

func (a *AccountAuth) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errors.Errorf("account auth must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &a.Account); err != nil {
		return err
	}

	return json.Unmarshal(pair[1], &a.Weight)
}

func (k KeyAuth) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{k.Key, k.Weight})
}

func (k *KeyAuth) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return errors.Errorf("key auth must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &k.Key); err != nil {
		return err
	}

	return json.Unmarshal(pair[1], &k.Weight)
}
