package watchlist

import (
	"fmt"
	"math/big"
	"strings"
)

// Amount is an unsigned balance in yoctoNEAR. Balances routinely exceed
// uint64 (1 NEAR = 1e24 yoctoNEAR), so it wraps big.Int and marshals as a
// bare JSON number to keep snapshot files compatible with 128-bit writers.
type Amount struct {
	big.Int
}

// ParseAmount parses a decimal yoctoNEAR string.
func ParseAmount(s string) (*Amount, error) {
	a := new(Amount)
	if _, ok := a.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if a.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return a, nil
}

// AmountOf copies v into a new Amount. Returns nil for a nil input.
func AmountOf(v *big.Int) *Amount {
	if v == nil {
		return nil
	}
	a := new(Amount)
	a.Set(v)
	return a
}

func (a *Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Int.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	// Tolerate quoted numbers, some API producers stringify large values.
	s = strings.Trim(s, `"`)
	if _, ok := a.SetString(s, 10); !ok {
		return fmt.Errorf("invalid balance literal %s", string(data))
	}
	return nil
}

// amountsEqual compares two optional amounts; nil only equals nil.
func amountsEqual(a, b *Amount) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(&b.Int) == 0
}
