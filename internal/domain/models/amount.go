package models

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

var units = map[string]*big.Int{
	"wei":   big.NewInt(params.Wei),
	"gwei":  big.NewInt(params.GWei),
	"ether": big.NewInt(params.Ether),
	"eth":   big.NewInt(params.Ether),
}

// unitSuffixes is checked in order so "gwei" wins over "wei"
var unitSuffixes = []string{"gwei", "ether", "eth", "wei"}

// ParseAmount parses an integer amount with an optional unit suffix, e.g. "10ether",
// "0.5 ether", "20gwei" or "1000". Without a unit the value is in wei. The result
// must be a whole number of wei.
func ParseAmount(s string) (*big.Int, error) {
	value := strings.ToLower(strings.TrimSpace(s))
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}

	unit := "wei"
	for _, name := range unitSuffixes {
		if strings.HasSuffix(value, name) {
			unit = name
			break
		}
	}
	number := strings.TrimSpace(strings.TrimSuffix(value, unit))

	return ScaleAmount(number, unit)
}

// ScaleAmount converts a decimal number expressed in the given unit into wei
func ScaleAmount(number, unit string) (*big.Int, error) {
	multiplier, ok := units[strings.ToLower(unit)]
	if !ok {
		return nil, fmt.Errorf("unknown unit %q", unit)
	}

	r, ok := new(big.Rat).SetString(number)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", number)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", number)
	}

	r.Mul(r, new(big.Rat).SetInt(multiplier))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %s %s is not a whole number of wei", number, unit)
	}
	return new(big.Int).Set(r.Num()), nil
}

// FormatEther renders a wei amount in ether without trailing zeros
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	r := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether))
	s := r.FloatString(18)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
