package monthkey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name     string
		instant  time.Time
		expected string
	}{
		{
			name:     "mid month",
			instant:  time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
			expected: "2025-01",
		},
		{
			name:     "last second of month",
			instant:  time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
			expected: "2025-01",
		},
		{
			name:     "first second of next month starts a new key",
			instant:  time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			expected: "2025-02",
		},
		{
			name:     "non-UTC instant normalized to UTC",
			instant:  time.Date(2025, 2, 1, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600)),
			expected: "2025-01",
		},
		{
			name:     "year rollover",
			instant:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: "2026-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, For(tt.instant))
		})
	}
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name     string
		instant  time.Time
		expected string
	}{
		{
			name:     "previous within year",
			instant:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			expected: "2025-02",
		},
		{
			name:     "january rolls back to december",
			instant:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: "2024-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Previous(tt.instant))
		})
	}
}

func TestCurrentMatchesFor(t *testing.T) {
	assert.Equal(t, For(time.Now()), Current())
}
