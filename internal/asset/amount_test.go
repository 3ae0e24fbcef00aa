package asset

import (
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseStringBaseUnits(t *testing.T) {
	tests := []struct {
		name    string
		token   *Token
		in      string
		wantRaw string
	}{
		{name: "one ether", token: WETH, in: "1", wantRaw: "1000000000000000000"},
		{name: "fractional ether", token: WETH, in: "0.5", wantRaw: "500000000000000000"},
		{name: "wei precision", token: WETH, in: "0.000000000000000001", wantRaw: "1"},
		{name: "usdc six decimals", token: USDC, in: "4000", wantRaw: "4000000000"},
		{name: "usdc cents", token: USDC, in: "0.01", wantRaw: "10000"},
		{name: "wbtc eight decimals", token: WBTC, in: "1.00000001", wantRaw: "100000001"},
		{name: "zero", token: WETH, in: "0", wantRaw: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt, err := ParseString(tt.token, tt.in)
			if err != nil {
				t.Fatalf("ParseString(%q) error: %v", tt.in, err)
			}
			if got := amt.Raw().String(); got != tt.wantRaw {
				t.Errorf("Raw() = %s, want %s", got, tt.wantRaw)
			}
		})
	}
}

func TestParseStringRejects(t *testing.T) {
	tests := []struct {
		name    string
		token   *Token
		in      string
		wantErr error
	}{
		{name: "too many decimals for usdc", token: USDC, in: "1.0000001", wantErr: ErrTooManyDecimals},
		{name: "sub-wei", token: WETH, in: "0.0000000000000000001", wantErr: ErrTooManyDecimals},
		{name: "negative", token: WETH, in: "-1", wantErr: ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.token, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseString(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
		})
	}

	if _, err := ParseString(WETH, "one"); err == nil {
		t.Error("ParseString() accepted a non-numeric string")
	}
}

func TestToDecimalRoundTrip(t *testing.T) {
	for _, in := range []string{"1", "0.5", "4000", "123.456"} {
		amt, err := ParseString(WETH, in)
		if err != nil {
			t.Fatalf("ParseString(%q) error: %v", in, err)
		}
		if got := amt.ToDecimal(); !got.Equal(decimal.RequireFromString(in)) {
			t.Errorf("round trip of %q = %s", in, got)
		}
	}
}

func TestAmountImmutability(t *testing.T) {
	raw := big.NewInt(100)
	amt := NewAmount(USDC, raw)

	// Neither the input nor the accessor result may alias internal state.
	raw.SetInt64(999)
	if amt.Raw().Int64() != 100 {
		t.Error("Amount aliased the caller's big.Int")
	}

	amt.Raw().SetInt64(555)
	if amt.Raw().Int64() != 100 {
		t.Error("Raw() exposed internal state")
	}
}

func TestCmp(t *testing.T) {
	one, _ := ParseString(WETH, "1")
	two, _ := ParseString(WETH, "2")
	usdc, _ := ParseString(USDC, "1")

	if got, err := one.Cmp(two); err != nil || got != -1 {
		t.Errorf("Cmp(1, 2) = %d, %v, want -1, nil", got, err)
	}
	if got, err := two.Cmp(one); err != nil || got != 1 {
		t.Errorf("Cmp(2, 1) = %d, %v, want 1, nil", got, err)
	}
	if _, err := one.Cmp(usdc); !errors.Is(err, ErrTokenMismatch) {
		t.Errorf("Cmp across tokens error = %v, want ErrTokenMismatch", err)
	}
}
