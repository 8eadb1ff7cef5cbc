package ethtx

import (
	"math/big"
	"strings"
	"unicode"

	"github/chapool/go-hwctl/internal/clierrors"
)

// unitMultipliers maps recognized denomination names (lower case) to their
// base-unit multiplier. Built once at init and never mutated.
var unitMultipliers = map[string]*big.Int{
	"wei":        exp10(0),
	"kwei":       exp10(3),
	"babbage":    exp10(3),
	"femtoether": exp10(3),
	"mwei":       exp10(6),
	"lovelace":   exp10(6),
	"picoether":  exp10(6),
	"gwei":       exp10(9),
	"shannon":    exp10(9),
	"nanoether":  exp10(9),
	"nano":       exp10(9),
	"szabo":      exp10(12),
	"microether": exp10(12),
	"micro":      exp10(12),
	"finney":     exp10(15),
	"milliether": exp10(15),
	"milli":      exp10(15),
	"ether":      exp10(18),
	"eth":        exp10(18),
}

func exp10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}

// ParseAmount converts a string of the form "<integer><optional unit>" into
// base units (wei). Without a unit suffix the whole string is taken as a
// base-unit integer. Unit names are case-insensitive.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)

	split := len(s)
	for i, r := range s {
		if !unicode.IsDigit(r) {
			split = i
			break
		}
	}

	digits := s[:split]
	unit := strings.ToLower(strings.TrimSpace(s[split:]))

	value, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, clierrors.New(clierrors.CategoryMalformedInput, "invalid amount %q", s)
	}

	if unit == "" {
		return value, nil
	}

	multiplier, ok := unitMultipliers[unit]
	if !ok {
		return nil, clierrors.New(clierrors.CategoryUnknownUnit, "unknown denomination %q", unit)
	}

	return value.Mul(value, multiplier), nil
}
