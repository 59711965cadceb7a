// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Amount is a token amount in the token's smallest unit. Amounts are
// arbitrary-precision integers and never negative; decimal display is a
// presentation concern. The wire format is a base-10 string so that
// amounts survive JSON round-trips without float truncation.
type Amount struct {
	i *big.Int
}

var ErrInvalidAmount = errors.New("invalid amount")

// ZeroAmount returns the zero amount.
func ZeroAmount() Amount {
	return Amount{i: new(big.Int)}
}

// NewAmount builds an Amount from a non-negative int64.
func NewAmount(v int64) Amount {
	if v < 0 {
		v = 0
	}
	return Amount{i: big.NewInt(v)}
}

// ParseAmount parses a base-10 amount string. Negative values and
// non-integer input are rejected.
func ParseAmount(s string) (Amount, error) {
	i, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if i.Sign() < 0 {
		return Amount{}, fmt.Errorf("%w: negative amount %q", ErrInvalidAmount, s)
	}
	return Amount{i: i}, nil
}

func (a Amount) big() *big.Int {
	if a.i == nil {
		return new(big.Int)
	}
	return a.i
}

func (a Amount) String() string { return a.big().String() }

// Int64 returns the amount as an int64. Only safe for values known to
// fit (counts, test fixtures).
func (a Amount) Int64() int64 { return a.big().Int64() }

// BigInt returns a copy of the underlying integer.
func (a Amount) BigInt() *big.Int { return new(big.Int).Set(a.big()) }

func (a Amount) IsZero() bool { return a.big().Sign() == 0 }

// Cmp compares a to b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int { return a.big().Cmp(b.big()) }

func (a Amount) Add(b Amount) Amount {
	return Amount{i: new(big.Int).Add(a.big(), b.big())}
}

// Sub returns a - b. Subtracting below zero is an accounting bug in the
// caller; the result is clamped and must be guarded by a Cmp first.
func (a Amount) Sub(b Amount) Amount {
	r := new(big.Int).Sub(a.big(), b.big())
	if r.Sign() < 0 {
		r.SetInt64(0)
	}
	return Amount{i: r}
}

// MulDiv returns a * mul / div, truncating. div must be positive.
func (a Amount) MulDiv(mul, div int64) Amount {
	r := new(big.Int).Mul(a.big(), big.NewInt(mul))
	r.Quo(r, big.NewInt(div))
	return Amount{i: r}
}

// DivBy returns a / n, truncating.
func (a Amount) DivBy(n int64) Amount {
	return Amount{i: new(big.Int).Quo(a.big(), big.NewInt(n))}
}

// DivAmount returns a / b truncated to an int64 count. Used to derive
// how many rewards a fund covers.
func (a Amount) DivAmount(b Amount) int64 {
	if b.IsZero() {
		return 0
	}
	return new(big.Int).Quo(a.big(), b.big()).Int64()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		a.i = new(big.Int)
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	a.i = parsed.i
	return nil
}
