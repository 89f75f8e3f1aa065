package money

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount string
		want   []string
	}{
		{amount: "29.99", want: []string{"$", "29.99"}},
		{amount: "99.9", want: []string{"$", "99.90"}},
		{amount: "0", want: []string{"$", "0.00"}},
		{amount: "1249", want: []string{"$", "1,249.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := Format(decimal.RequireFromString(tt.amount))
			for _, part := range tt.want {
				assert.Contains(t, got, part)
			}
		})
	}
}

func TestFormat_KeepsPrecision(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{amount: "123456789012345678.91", want: "123,456,789,012,345,678.91"},
		{amount: "0.005", want: "0.01"},
		{amount: "12345678901234567890123.45", want: "12345678901234567890123.45"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := Format(decimal.RequireFromString(tt.amount))
			assert.Contains(t, got, "$")
			assert.True(t, strings.HasSuffix(got, tt.want), "got %q", got)
		})
	}
}

func TestFormat_Negative(t *testing.T) {
	got := Format(decimal.RequireFromString("-5.5"))
	assert.Equal(t, "-", got[:1])
	assert.Contains(t, got, "5.50")
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "49.99", Plain(decimal.RequireFromString("49.99")))
	assert.Equal(t, "19.90", Plain(decimal.RequireFromString("19.9")))
}
