// internal/models/query.go
package models

import "time"

// Intent is the classified purpose of a natural-language query.
type Intent string

const (
	IntentRevenue         Intent = "revenue"
	IntentBestCustomer    Intent = "best_customer"
	IntentAtRiskCustomers Intent = "at_risk_customers"
	IntentAppointments    Intent = "appointments_in_range"
	IntentGenericList     Intent = "generic_list"
	IntentUnknown         Intent = "unknown"
)

// DateRange is a half-open interval [Start, End).
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// ParsedQuery is the output of the query parser. Intent is IntentUnknown
// iff no rule matched; in that case DateRange and Limit are nil.
type ParsedQuery struct {
	Intent    Intent     `json:"intent"`
	DateRange *DateRange `json:"dateRange,omitempty"`
	Limit     *int       `json:"limit,omitempty"`
	RawText   string     `json:"rawText"`
}

// ResultKind mirrors the display contract for query results.
type ResultKind string

const (
	KindCustomer     ResultKind = "customer"
	KindRevenue      ResultKind = "revenue"
	KindAppointments ResultKind = "appointments"
	KindList         ResultKind = "list"
	KindEmpty        ResultKind = "empty"
)

// QueryResult is the output of the query processor. Exactly one payload
// field is populated, determined by Kind.
type QueryResult struct {
	Kind         ResultKind              `json:"kind"`
	Customer     *CustomerProjection     `json:"customer,omitempty"`
	Revenue      *RevenueAggregate       `json:"revenue,omitempty"`
	Appointments []AppointmentProjection `json:"appointments,omitempty"`
	List         []CustomerProjection    `json:"list,omitempty"`
	Summary      string                  `json:"summary"`
	FollowUps    []string                `json:"followUps"`
}

// RevenueAggregate holds the revenue rollup for a business within a date range.
type RevenueAggregate struct {
	TotalRevenue        float64 `json:"totalRevenue"`
	AppointmentCount    int     `json:"appointmentCount"`
	UniqueCustomers     int     `json:"uniqueCustomers"`
	AvgTransactionValue float64 `json:"avgTransactionValue"`
}
