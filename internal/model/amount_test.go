package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_String(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   string
	}{
		{"zero all", 0, "0.00"},
		{"zero units #1", 99, "0.99"},
		{"zero units #2", 100, "1.00"},
		{"zero units #3", 1000, "10.00"},
		{"zero units #4", 123, "1.23"},
		{"many cents", NewAmount(1, 2345), "24.45"},
		{"zero cents", NewAmount(123, 0), "123.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.amount.String())
		})
	}
}

func TestFromDecimal(t *testing.T) {
	tests := []struct {
		value   string
		want    Amount
		wantErr bool
	}{
		{"1234.0", 123400, false},
		{"0", 0, false},
		{"0.12345", 12, false},
		{"0.129999", 13, false},
		{"1234.164", 123416, false},
		{"1234.105", 123411, false},
		{"1234.145", 123415, false},
		{"1234.991", 123499, false},
		{"100.00", 10000, false},
		{"92233720368547758.08", 0, true},
		{"-1234.0", 0, true},
		{"-0.01", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := FromDecimal(decimal.RequireFromString(tt.value))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount_Fraction(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		rate   string
		want   Amount
	}{
		{"five percent of 100.00", 10000, "0.05", 500},
		{"floors fractional cents", 999, "0.05", 49},
		{"zero rate", 10000, "0", 0},
		{"negative base", -100, "0.05", 0},
		{"full rate", 1234, "1", 1234},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.amount.Fraction(decimal.RequireFromString(tt.rate)))
		})
	}
}
