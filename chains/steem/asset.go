package steem

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Asset is a parsed "1.000 STEEM" style amount.
type Asset struct {
	Amount    int64
	Precision uint8
	Symbol    string
}

func ParseAsset(s string) (*Asset, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return nil, errors.Errorf("invalid asset %q", s)
	}

	number, symbol := parts[0], parts[1]
	if len(symbol) == 0 || len(symbol) > 7 {
		return nil, errors.Errorf("invalid asset symbol %q", symbol)
	}

	precision := 0
	digits := number
	if dot := strings.IndexByte(number, '.'); dot >= 0 {
		precision = len(number) - dot - 1
		digits = number[:dot] + number[dot+1:]
	}
	if precision > 18 {
		return nil, errors.Errorf("invalid asset precision in %q", s)
	}

	amount, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || amount < 0 {
		return nil, errors.Errorf("invalid asset amount %q", number)
	}

	return &Asset{
		Amount:    amount,
		Precision: uint8(precision),
		Symbol:    symbol,
	}, nil
}

func (a *Asset) String() string {
	s := strconv.FormatInt(a.Amount, 10)
	if a.Precision == 0 {
		return s + " " + a.Symbol
	}

	p := int(a.Precision)
	if len(s) <= p {
		s = strings.Repeat("0", p-len(s)+1) + s
	}

	return s[:len(s)-p] + "." + s[len(s)-p:] + " " + a.Symbol
}
