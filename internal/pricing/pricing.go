// Package pricing converts between human-entered decimal prices and the
// chain's base unit. PAS uses 18 decimals, so conversion is fixed-point
// scaling by 10^18 and must round-trip exactly for any value the chain
// can represent.
package pricing

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimals is the native decimal precision of the chain's currency
const Decimals = 18

// Symbol is the display unit shown next to converted prices
const Symbol = "PAS"

// ToBaseUnits converts a positive decimal amount to base units. Amounts
// with more fractional digits than the chain can represent are rejected
// rather than rounded.
func ToBaseUnits(amount decimal.Decimal) (*big.Int, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive: %s", amount)
	}
	scaled := amount.Shift(Decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, Decimals)
	}
	return scaled.BigInt(), nil
}

// FromBaseUnits converts a base unit amount back to its decimal form
func FromBaseUnits(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -Decimals)
}

// ParseAmount parses a human-entered decimal string into base units
func ParseAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return ToBaseUnits(d)
}

// Display formats a base unit amount for the UI, e.g. "1.5 PAS"
func Display(wei *big.Int) string {
	return FromBaseUnits(wei).String() + " " + Symbol
}
