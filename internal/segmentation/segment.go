// Package segmentation maps RFM scores to customer segments. The rule body
// lives here and nowhere else; every analytics surface goes through Segment.
package segmentation

import (
	"fmt"

	"crm-assistant/internal/models"
)

// InvalidScoreError reports a score outside [1,5]. This is a programming
// error on the caller's side; the engine never clamps.
type InvalidScoreError struct {
	Recency   int
	Frequency int
	Monetary  int
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("INVALID_SCORE: scores must be in [1,5], got recency=%d frequency=%d monetary=%d",
		e.Recency, e.Frequency, e.Monetary)
}

// Segment classifies a customer from recency/frequency/monetary scores,
// each in [1,5]. Rules are evaluated in fixed priority order and the first
// match wins; this ordering is part of the contract.
func Segment(recency, frequency, monetary int) (models.SegmentLabel, error) {
	if !inRange(recency) || !inRange(frequency) || !inRange(monetary) {
		return "", &InvalidScoreError{Recency: recency, Frequency: frequency, Monetary: monetary}
	}

	switch {
	case recency >= 4 && frequency >= 4 && monetary >= 4:
		return models.SegmentChampions, nil
	case recency >= 3 && frequency >= 3 && monetary >= 3:
		return models.SegmentLoyal, nil
	// New precedes At-Risk: a very recent near-first visit would otherwise be
	// swallowed by the broader inactivity rule and New could never fire.
	case recency >= 4 && frequency <= 1:
		return models.SegmentNew, nil
	case recency >= 3 && frequency <= 2:
		return models.SegmentAtRisk, nil
	case recency <= 2 && frequency <= 2:
		return models.SegmentLost, nil
	default:
		return models.SegmentPotential, nil
	}
}

func inRange(score int) bool {
	return score >= 1 && score <= 5
}
