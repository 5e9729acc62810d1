package decimal_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/han8909227/avatax-go/internal/decimal"
)

func TestFromString(t *testing.T) {
	d, err := decimal.FromString("0.0725")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec.RequireFromString("0.0725")))

	_, err = decimal.FromString("not-a-number")
	require.Error(t, err)
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"plain", "0.060000", "0.06", false},
		{"padded", "  0.0125 ", "0.0125", false},
		{"blank is zero", "", "0", false},
		{"whitespace is zero", "   ", "0", false},
		{"garbage", "N/A", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decimal.ParseRate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec.RequireFromString(tt.expected)),
				"input=%q: got %s, want %s", tt.input, got.String(), tt.expected)
		})
	}
}

func TestApplyRate(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		rate     string
		expected string
	}{
		{"7.25% of 100", "100", "0.0725", "7.25"},
		{"rounds half up", "19.99", "0.0725", "1.45"},
		{"zero rate", "100", "0", "0"},
		{"zero amount", "0", "0.08", "0"},
		{"large amount", "123456.78", "0.0875", "10802.47"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := decimal.ApplyRate(dec.RequireFromString(tt.amount), dec.RequireFromString(tt.rate))
			assert.True(t, result.Equal(dec.RequireFromString(tt.expected)),
				"amount=%s, rate=%s: got %s, want %s", tt.amount, tt.rate, result.String(), tt.expected)
		})
	}
}

func TestPercent(t *testing.T) {
	result := decimal.Percent(dec.RequireFromString("0.0725"))
	assert.True(t, result.Equal(dec.RequireFromString("7.25")))
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.RequireFromString("0.06"),
		dec.RequireFromString("0.0025"),
		dec.RequireFromString("0.01"),
	}
	result := decimal.Sum(values)
	assert.True(t, result.Equal(dec.RequireFromString("0.0725")))
}

func TestSum_Empty(t *testing.T) {
	result := decimal.Sum([]dec.Decimal{})
	assert.True(t, result.IsZero())
}

func TestIsNonNegative(t *testing.T) {
	assert.True(t, decimal.IsNonNegative(dec.NewFromInt(1)))
	assert.True(t, decimal.IsNonNegative(dec.Zero))
	assert.False(t, decimal.IsNonNegative(dec.NewFromInt(-1)))
}

func TestRoundCents(t *testing.T) {
	d := dec.RequireFromString("1.455")
	assert.True(t, decimal.RoundCents(d).Equal(dec.RequireFromString("1.46")))
}
