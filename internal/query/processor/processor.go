// Package processor dispatches a parsed query to the matching aggregation
// against the data-access boundary and shapes a self-contained result. The
// intent switch here and the template switch in the formatter are the only
// places that enumerate intents; adding one is a single-point change in each.
package processor

import (
	"context"
	"fmt"
	"time"

	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/models"
	"crm-assistant/internal/query/formatter"
)

// Store is the data-access boundary the processor suspends on. Every call is
// scoped by business id; the processor never issues an unscoped query.
type Store interface {
	// FetchRevenueAggregate returns the revenue rollup for the range. A range
	// with no appointments yields a zero aggregate, not an error.
	FetchRevenueAggregate(ctx context.Context, businessID string, dateRange models.DateRange) (*models.RevenueAggregate, error)

	// FetchBestCustomer returns the customer with maximal spend in the range,
	// or nil when there is none. A nil range means all time. Ties are broken
	// by most recent visit, then lexical name order; the store must apply
	// this ordering since the backing database guarantees none otherwise.
	FetchBestCustomer(ctx context.Context, businessID string, dateRange *models.DateRange) (*models.CustomerProjection, error)

	// FetchAtRiskCustomers returns customers whose last visit is older than
	// thresholdDays, ordered by days since last visit descending.
	FetchAtRiskCustomers(ctx context.Context, businessID string, thresholdDays, limit int) ([]models.CustomerProjection, error)

	// FetchAppointments returns appointments in the range ordered by start
	// time ascending.
	FetchAppointments(ctx context.Context, businessID string, dateRange models.DateRange, limit int) ([]models.AppointmentProjection, error)

	// FetchRecentCustomers returns customers ordered by most recent visit.
	FetchRecentCustomers(ctx context.Context, businessID string, limit int) ([]models.CustomerProjection, error)
}

// ProcessingError wraps a data-access failure with the intent that triggered
// the fetch. The processor does not retry; retry policy belongs to callers.
type ProcessingError struct {
	Intent models.Intent
	Err    error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("PROCESSING_FAILED[%s]: %v", e.Intent, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// Config carries the per-intent defaults.
type Config struct {
	AtRiskThresholdDays int
	AtRiskLimit         int
	AppointmentsLimit   int
	GenericListLimit    int
}

func DefaultConfig() *Config {
	return &Config{
		AtRiskThresholdDays: 60,
		AtRiskLimit:         10,
		AppointmentsLimit:   25,
		GenericListLimit:    10,
	}
}

type Processor struct {
	store  Store
	config *Config
	logger logger.Logger
}

func New(store Store, config *Config, log logger.Logger) *Processor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Processor{
		store:  store,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "processor"}),
	}
}

// Process resolves a parsed query into a display-ready result. Unknown
// intents short-circuit before any fetch. All other paths attach summary and
// follow-ups before returning, so the result is self-contained for rendering.
func (p *Processor) Process(ctx context.Context, query models.ParsedQuery, businessID string, now time.Time) (*models.QueryResult, error) {
	var result *models.QueryResult
	var err error

	switch query.Intent {
	case models.IntentRevenue:
		result, err = p.processRevenue(ctx, query, businessID, now)
	case models.IntentBestCustomer:
		result, err = p.processBestCustomer(ctx, query, businessID)
	case models.IntentAtRiskCustomers:
		result, err = p.processAtRisk(ctx, query, businessID)
	case models.IntentAppointments:
		result, err = p.processAppointments(ctx, query, businessID, now)
	case models.IntentGenericList:
		result, err = p.processGenericList(ctx, query, businessID)
	case models.IntentUnknown:
		result = &models.QueryResult{Kind: models.KindEmpty}
	default:
		result = &models.QueryResult{Kind: models.KindEmpty}
	}

	if err != nil {
		p.logger.Error("query processing failed", map[string]interface{}{
			"intent":     string(query.Intent),
			"businessId": businessID,
			"error":      err.Error(),
		})
		return nil, &ProcessingError{Intent: query.Intent, Err: err}
	}

	result.Summary, result.FollowUps = formatter.Format(result)
	return result, nil
}

func (p *Processor) processRevenue(ctx context.Context, query models.ParsedQuery, businessID string, now time.Time) (*models.QueryResult, error) {
	dateRange := query.DateRange
	if dateRange == nil {
		dateRange = currentDay(now)
	}

	agg, err := p.store.FetchRevenueAggregate(ctx, businessID, *dateRange)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		agg = &models.RevenueAggregate{}
	}

	return &models.QueryResult{Kind: models.KindRevenue, Revenue: agg}, nil
}

func (p *Processor) processBestCustomer(ctx context.Context, query models.ParsedQuery, businessID string) (*models.QueryResult, error) {
	customer, err := p.store.FetchBestCustomer(ctx, businessID, query.DateRange)
	if err != nil {
		return nil, err
	}

	return &models.QueryResult{Kind: models.KindCustomer, Customer: customer}, nil
}

func (p *Processor) processAtRisk(ctx context.Context, query models.ParsedQuery, businessID string) (*models.QueryResult, error) {
	limit := p.config.AtRiskLimit
	if query.Limit != nil {
		limit = *query.Limit
	}

	customers, err := p.store.FetchAtRiskCustomers(ctx, businessID, p.config.AtRiskThresholdDays, limit)
	if err != nil {
		return nil, err
	}

	return &models.QueryResult{Kind: models.KindList, List: customers}, nil
}

func (p *Processor) processAppointments(ctx context.Context, query models.ParsedQuery, businessID string, now time.Time) (*models.QueryResult, error) {
	dateRange := query.DateRange
	if dateRange == nil {
		dateRange = currentDay(now)
	}

	limit := p.config.AppointmentsLimit
	if query.Limit != nil {
		limit = *query.Limit
	}

	appointments, err := p.store.FetchAppointments(ctx, businessID, *dateRange, limit)
	if err != nil {
		return nil, err
	}

	return &models.QueryResult{Kind: models.KindAppointments, Appointments: appointments}, nil
}

// processGenericList degrades gracefully when the parser saw a recognizable
// noun but no clear intent: most recently seen customers, best effort.
func (p *Processor) processGenericList(ctx context.Context, query models.ParsedQuery, businessID string) (*models.QueryResult, error) {
	limit := p.config.GenericListLimit
	if query.Limit != nil {
		limit = *query.Limit
	}

	customers, err := p.store.FetchRecentCustomers(ctx, businessID, limit)
	if err != nil {
		return nil, err
	}

	return &models.QueryResult{Kind: models.KindList, List: customers}, nil
}

func currentDay(now time.Time) *models.DateRange {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return &models.DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}
