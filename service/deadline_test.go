package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPresentationDate(t *testing.T) {
	// Wed 2024-01-03 plus one allocated day targets Thu 2024-01-04, which is
	// not a sitting day and lands on Mon 2024-01-08.
	committed := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	got := PresentationDate(committed, 1)
	assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), got)

	// Zero allocated days yields the commit date itself, adjusted.
	monday := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, PresentationDate(monday, 0))
}

// More allocated days can never produce an earlier deadline.
func TestPresentationDateMonotonic(t *testing.T) {
	committed := time.Date(2024, time.February, 6, 0, 0, 0, 0, time.UTC)
	prev := PresentationDate(committed, 0)
	for days := 1; days <= 60; days++ {
		next := PresentationDate(committed, days)
		assert.False(t, next.Before(prev), "allocating %d days moved the deadline backwards", days)
		prev = next
	}
}

func TestCountdown(t *testing.T) {
	now := time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		due      time.Time
		expected int
	}{
		{
			name:     "due later today is day zero",
			due:      time.Date(2025, time.March, 5, 23, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "due earlier today is still day zero",
			due:      time.Date(2025, time.March, 5, 1, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "due tomorrow morning is one day",
			due:      time.Date(2025, time.March, 6, 8, 0, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "two days elapsed",
			due:      time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC),
			expected: -2,
		},
		{
			name:     "five days remaining",
			due:      time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			expected: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Countdown(tt.due, now))
		})
	}
}

func TestPendingDaysFromNow(t *testing.T) {
	now := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, PendingDaysFromNow(now.AddDate(0, 0, 5), now))
	assert.Equal(t, 0, PendingDaysFromNow(now, now))
	assert.Equal(t, 0, PendingDaysFromNow(now.AddDate(0, 0, -3), now))
}
