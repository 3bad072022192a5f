package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitName(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		first string
		last  string
	}{
		{"two parts", "Jordan Baker", "Jordan", "Baker"},
		{"single word", "Jordan", "Jordan", ""},
		{"three parts split at first space", "Mary Jane Watson", "Mary", "Jane Watson"},
		{"surrounding whitespace", "  Jordan Baker ", "Jordan", "Baker"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := SplitName(tt.in)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}

func TestSynthesizeEmail(t *testing.T) {
	assert.Equal(t, "88421@unknown.com", SynthesizeEmail("88421"))
}

func TestHistoryExternalID(t *testing.T) {
	a := HistoryExternalID("u1", "2023-01-10T10:00:00Z", StatusClosed)
	b := HistoryExternalID("u1", "2023-01-10T10:00:00Z", StatusClosed)
	c := HistoryExternalID("u1", "2023-01-10T10:00:01Z", StatusClosed)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 40)
}
