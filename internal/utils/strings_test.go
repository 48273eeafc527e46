package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "ORDER_EXECUTED",
			expected: []string{"ORDER_EXECUTED"},
		},
		{
			name:     "two values",
			input:    "ORDER_EXECUTED, DAY_COMPLETED",
			expected: []string{"ORDER_EXECUTED", "DAY_COMPLETED"},
		},
		{
			name:     "no spaces after comma",
			input:    "NVDA,AMZN,MU",
			expected: []string{"NVDA", "AMZN", "MU"},
		},
		{
			name:     "trailing comma",
			input:    "NVDA,",
			expected: []string{"NVDA"},
		},
		{
			name:     "leading comma",
			input:    ",AMZN",
			expected: []string{"AMZN"},
		},
		{
			name:     "only spaces",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "comma only",
			input:    ",",
			expected: nil,
		},
		{
			name:     "multiple commas",
			input:    ",,NVDA,,WMT,,",
			expected: []string{"NVDA", "WMT"},
		},
		{
			name:     "mixed spacing around values",
			input:    "  MARKET_EVENT_CREATED  ,  MARKET_EVENT_EXPIRED  ",
			expected: []string{"MARKET_EVENT_CREATED", "MARKET_EVENT_EXPIRED"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCSV(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseCSV_PreservesInput(t *testing.T) {
	input := "NVDA, AMZN"
	originalInput := input

	_ = ParseCSV(input)

	assert.Equal(t, originalInput, input, "input should not be modified")
}
