// internal/segmentation/segment_test.go
package segmentation

import (
	"testing"

	"crm-assistant/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Rule Priority Tests
// ==========================

func TestSegment_RulePriority(t *testing.T) {
	tests := []struct {
		name      string
		recency   int
		frequency int
		monetary  int
		expected  models.SegmentLabel
	}{
		{"all high is champions", 4, 4, 4, models.SegmentChampions},
		{"all max is champions", 5, 5, 5, models.SegmentChampions},
		{"all mid is loyal", 3, 3, 3, models.SegmentLoyal},
		{"high recency low frequency is at-risk before potential", 3, 1, 5, models.SegmentAtRisk},
		{"recent but infrequent is at-risk", 5, 2, 3, models.SegmentAtRisk},
		{"low recency low frequency is lost regardless of spend", 2, 2, 5, models.SegmentLost},
		{"inactive one-timer is lost", 1, 1, 1, models.SegmentLost},
		{"very recent single visit is new", 4, 1, 1, models.SegmentNew},
		{"brand new big spender is new", 5, 1, 5, models.SegmentNew},
		{"no earlier rule leaves potential", 2, 3, 3, models.SegmentPotential},
		{"frequent but stale spender is potential", 2, 5, 2, models.SegmentPotential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segment, err := Segment(tt.recency, tt.frequency, tt.monetary)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, segment)
		})
	}
}

func TestSegment_TotalAndDeterministic(t *testing.T) {
	for r := 1; r <= 5; r++ {
		for f := 1; f <= 5; f++ {
			for m := 1; m <= 5; m++ {
				first, err := Segment(r, f, m)
				assert.NoError(t, err, "r=%d f=%d m=%d", r, f, m)
				assert.NotEmpty(t, first)

				// Same inputs, same output, independent of call order.
				second, err := Segment(r, f, m)
				assert.NoError(t, err)
				assert.Equal(t, first, second)
			}
		}
	}
}

// ==========================
// Input Validation Tests
// ==========================

func TestSegment_OutOfRangeScores(t *testing.T) {
	tests := []struct {
		name      string
		recency   int
		frequency int
		monetary  int
	}{
		{"zero recency", 0, 3, 3},
		{"zero frequency", 3, 0, 3},
		{"zero monetary", 3, 3, 0},
		{"recency above five", 6, 3, 3},
		{"negative score", -1, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Segment(tt.recency, tt.frequency, tt.monetary)
			assert.Error(t, err)

			var scoreErr *InvalidScoreError
			assert.ErrorAs(t, err, &scoreErr)
			assert.Equal(t, tt.recency, scoreErr.Recency)
		})
	}
}
