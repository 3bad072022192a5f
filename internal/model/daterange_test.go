package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange("2023-01-10", "2023-01-20")
	require.NoError(t, err)
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)
	assert.Equal(t, time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), *r.Start)
	assert.Equal(t, time.Date(2023, 1, 20, 23, 59, 59, 0, time.UTC), *r.End)
}

func TestNewDateRangeUnbounded(t *testing.T) {
	r, err := NewDateRange("", "")
	require.NoError(t, err)
	assert.Nil(t, r.Start)
	assert.Nil(t, r.End)
	assert.True(t, r.Contains(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestNewDateRangeRejectsBadInput(t *testing.T) {
	_, err := NewDateRange("10/01/2023", "")
	assert.Error(t, err)

	_, err = NewDateRange("", "not-a-date")
	assert.Error(t, err)
}

func TestDateRangeBoundaries(t *testing.T) {
	r, err := NewDateRange("2023-01-10", "2023-01-20")
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		in   bool
	}{
		{"start of first day", time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC), true},
		{"second before start", time.Date(2023, 1, 9, 23, 59, 59, 0, time.UTC), false},
		{"last second of end day", time.Date(2023, 1, 20, 23, 59, 59, 0, time.UTC), true},
		{"first second after end day", time.Date(2023, 1, 21, 0, 0, 0, 0, time.UTC), false},
		{"middle", time.Date(2023, 1, 15, 12, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, r.Contains(tt.at))
		})
	}
}

func TestDateRangeHalfBounded(t *testing.T) {
	r, err := NewDateRange("2023-01-10", "")
	require.NoError(t, err)
	assert.True(t, r.BeforeStart(time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.AfterEnd(time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)))
}
