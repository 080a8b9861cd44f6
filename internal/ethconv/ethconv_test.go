package ethconv

import (
	"math"
	"math/big"
	"testing"
)

func TestHexWeiToEth(t *testing.T) {
	eth, err := HexWeiToEth("0xde0b6b3a7640000")
	if err != nil {
		t.Fatalf("HexWeiToEth: %v", err)
	}
	if math.Abs(eth-1.0) > 1e-12 {
		t.Errorf("expected 1 ETH, got %g", eth)
	}
}

func TestHexWeiToGwei(t *testing.T) {
	gwei, err := HexWeiToGwei("0x6fc23ac00")
	if err != nil {
		t.Fatalf("HexWeiToGwei: %v", err)
	}
	if math.Abs(gwei-30) > 1e-9 {
		t.Errorf("expected 30 gwei, got %g", gwei)
	}
}

func TestHexToBig_Invalid(t *testing.T) {
	for _, in := range []string{"", "0x", "0xzz", "not hex"} {
		if _, err := HexToBig(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestIsZeroHex(t *testing.T) {
	if !IsZeroHex("0x0") {
		t.Error("expected 0x0 to be zero")
	}
	if !IsZeroHex("0x0000") {
		t.Error("expected 0x0000 to be zero")
	}
	if IsZeroHex("0x1") {
		t.Error("expected 0x1 to be non-zero")
	}
	if IsZeroHex("garbage") {
		t.Error("expected invalid hex to be non-zero")
	}
}

func TestScale(t *testing.T) {
	amount := new(big.Int)
	amount.SetString("1500000", 10)
	if got := Scale(amount, 6); math.Abs(got-1.5) > 1e-12 {
		t.Errorf("expected 1.5, got %g", got)
	}
}
