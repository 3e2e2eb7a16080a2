package util

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":               "0.00",
		"28000":           "28,000.00",
		"1234567.5":       "1,234,567.50",
		"14000.005":       "14,000.01",
		"999.99":          "999.99",
		"-1500.5":         "-1,500.50",
		"-0.004":          "0.00",
		"999999999999.99": "999,999,999,999.99",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatAmount(decimal.RequireFromString(in)), in)
	}
}
