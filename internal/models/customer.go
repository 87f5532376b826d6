// internal/models/customer.go
package models

import "time"

// CustomerProjection is the read-side view of a customer used by query
// results and the analytics path.
type CustomerProjection struct {
	ID                 string    `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	TotalSpent         float64   `json:"totalSpent" db:"total_spent"`
	TotalAppointments  int       `json:"totalAppointments" db:"total_appointments"`
	FirstVisit         time.Time `json:"firstVisit,omitempty" db:"first_visit"`
	LastVisit          time.Time `json:"lastVisit" db:"last_visit"`
	DaysSinceLastVisit int       `json:"daysSinceLastVisit" db:"days_since_last_visit"`
}

// SegmentLabel is an RFM customer segment.
type SegmentLabel string

const (
	SegmentChampions SegmentLabel = "Champions"
	SegmentLoyal     SegmentLabel = "Loyal"
	SegmentAtRisk    SegmentLabel = "At-Risk"
	SegmentLost      SegmentLabel = "Lost"
	SegmentNew       SegmentLabel = "New"
	SegmentPotential SegmentLabel = "Potential"
)

// CustomerScoreProfile carries the RFM ordinal scores (each 1..5) and the
// derived analytics fields. Profiles are recomputed on each fetch and never
// mutated in place; segmentation is a pure projection over the scores.
type CustomerScoreProfile struct {
	CustomerID            string       `json:"customerId"`
	Name                  string       `json:"name"`
	Recency               int          `json:"recency"`
	Frequency             int          `json:"frequency"`
	Monetary              int          `json:"monetary"`
	Segment               SegmentLabel `json:"segment"`
	CustomerLifetimeValue float64      `json:"customerLifetimeValue"`
	TotalSpent            float64      `json:"totalSpent"`
	TotalAppointments     int          `json:"totalAppointments"`
	DaysSinceLastVisit    int          `json:"daysSinceLastVisit"`
}
