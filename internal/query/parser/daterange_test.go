// internal/query/parser/daterange_test.go
package parser

import (
	"testing"
	"time"

	"crm-assistant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 2026-03-11 14:30 UTC.
var fixedNow = time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveDatePhrase(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected *models.DateRange
	}{
		{
			name:     "today",
			text:     "how much did i earn today",
			expected: &models.DateRange{Start: day(2026, 3, 11), End: day(2026, 3, 12)},
		},
		{
			name:     "yesterday",
			text:     "revenue yesterday",
			expected: &models.DateRange{Start: day(2026, 3, 10), End: day(2026, 3, 11)},
		},
		{
			name:     "tomorrow",
			text:     "what is booked tomorrow",
			expected: &models.DateRange{Start: day(2026, 3, 12), End: day(2026, 3, 13)},
		},
		{
			name:     "this week starts monday",
			text:     "appointments this week",
			expected: &models.DateRange{Start: day(2026, 3, 9), End: day(2026, 3, 16)},
		},
		{
			name:     "this month",
			text:     "income this month",
			expected: &models.DateRange{Start: day(2026, 3, 1), End: day(2026, 4, 1)},
		},
		{
			name:     "last month",
			text:     "sales last month",
			expected: &models.DateRange{Start: day(2026, 2, 1), End: day(2026, 3, 1)},
		},
		{
			name:     "last 7 days",
			text:     "revenue for the last 7 days",
			expected: &models.DateRange{Start: day(2026, 3, 4), End: day(2026, 3, 12)},
		},
		{
			name:     "past 30 days",
			text:     "earnings for the past 30 days",
			expected: &models.DateRange{Start: day(2026, 2, 9), End: day(2026, 3, 12)},
		},
		{
			name:     "no phrase",
			text:     "how is business going",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDatePhrase(tt.text, fixedNow)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, got.Start.Equal(tt.expected.Start), "start: got %v want %v", got.Start, tt.expected.Start)
			assert.True(t, got.End.Equal(tt.expected.End), "end: got %v want %v", got.End, tt.expected.End)
		})
	}
}

func TestResolveDatePhrase_SundayWeek(t *testing.T) {
	// Sunday belongs to the week that began the previous Monday.
	sunday := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	got := ResolveDatePhrase("schedule this week", sunday)
	require.NotNil(t, got)
	assert.True(t, got.Start.Equal(day(2026, 3, 9)))
	assert.True(t, got.End.Equal(day(2026, 3, 16)))
}

func TestResolveDatePhrase_PureInNow(t *testing.T) {
	first := ResolveDatePhrase("revenue today", fixedNow)
	second := ResolveDatePhrase("revenue today", fixedNow)
	assert.Equal(t, first, second)

	shifted := ResolveDatePhrase("revenue today", fixedNow.AddDate(0, 0, 1))
	assert.NotEqual(t, first, shifted)
}
