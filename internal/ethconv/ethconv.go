// Package ethconv converts hex-encoded wei quantities into ETH and gwei.
package ethconv

import (
	"fmt"
	"math/big"
	"strings"
)

var (
	weiPerEth  = big.NewFloat(1e18)
	weiPerGwei = big.NewFloat(1e9)
)

// HexToBig parses a 0x-prefixed (or bare) hex quantity.
func HexToBig(hex string) (*big.Int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "0x")
	if s == "" {
		return nil, fmt.Errorf("empty hex quantity")
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", hex)
	}
	return v, nil
}

// HexWeiToEth converts a hex wei quantity to ETH.
func HexWeiToEth(hex string) (float64, error) {
	wei, err := HexToBig(hex)
	if err != nil {
		return 0, err
	}
	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEth).Float64()
	return eth, nil
}

// HexWeiToGwei converts a hex wei quantity to gwei.
func HexWeiToGwei(hex string) (float64, error) {
	wei, err := HexToBig(hex)
	if err != nil {
		return 0, err
	}
	gwei, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerGwei).Float64()
	return gwei, nil
}

// IsZeroHex reports whether the hex quantity equals zero.
func IsZeroHex(hex string) bool {
	v, err := HexToBig(hex)
	if err != nil {
		return false
	}
	return v.Sign() == 0
}

// Scale divides an integer token amount by 10^decimals.
func Scale(amount *big.Int, decimals uint8) float64 {
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	out, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), scale).Float64()
	return out
}
