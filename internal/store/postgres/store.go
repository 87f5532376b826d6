// Package postgres implements the assistant's data-access boundary against
// the primary relational store. Every query is scoped by business id.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/models"
)

var (
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "store"}),
	}
}

// FetchRevenueAggregate sums completed-appointment revenue in the range.
// A range with no appointments yields a zero aggregate.
func (s *Store) FetchRevenueAggregate(ctx context.Context, businessID string, dateRange models.DateRange) (*models.RevenueAggregate, error) {
	var agg models.RevenueAggregate
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(price), 0),
		       COUNT(*),
		       COUNT(DISTINCT customer_id),
		       COALESCE(AVG(price), 0)
		FROM appointments
		WHERE business_id = $1
		  AND status = 'completed'
		  AND start_time >= $2 AND start_time < $3`,
		businessID, dateRange.Start, dateRange.End).Scan(
		&agg.TotalRevenue,
		&agg.AppointmentCount,
		&agg.UniqueCustomers,
		&agg.AvgTransactionValue,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: revenue aggregate: %v", ErrQueryExecutionFailed, err)
	}
	return &agg, nil
}

// FetchBestCustomer returns the customer with maximal spend in the range, or
// nil when none exists. Ties break by most recent visit, then name ascending;
// the ORDER BY is the documented tie-break, since nothing else guarantees a
// stable winner.
func (s *Store) FetchBestCustomer(ctx context.Context, businessID string, dateRange *models.DateRange) (*models.CustomerProjection, error) {
	rangeStart, rangeEnd := allTime(dateRange)

	var c models.CustomerProjection
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name,
		       SUM(a.price)  AS total_spent,
		       COUNT(a.id)   AS total_appointments,
		       MAX(a.start_time) AS last_visit
		FROM customers c
		JOIN appointments a ON a.customer_id = c.id
		WHERE c.business_id = $1
		  AND a.status = 'completed'
		  AND a.start_time >= $2 AND a.start_time < $3
		GROUP BY c.id, c.name
		ORDER BY total_spent DESC, last_visit DESC, c.name ASC
		LIMIT 1`,
		businessID, rangeStart, rangeEnd).Scan(
		&c.ID, &c.Name, &c.TotalSpent, &c.TotalAppointments, &c.LastVisit,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: best customer: %v", ErrQueryExecutionFailed, err)
	}
	return &c, nil
}

// FetchAtRiskCustomers returns customers whose last completed appointment is
// older than thresholdDays, most inactive first.
func (s *Store) FetchAtRiskCustomers(ctx context.Context, businessID string, thresholdDays, limit int) ([]models.CustomerProjection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name,
		       COALESCE(SUM(a.price), 0) AS total_spent,
		       COUNT(a.id)               AS total_appointments,
		       MAX(a.start_time)         AS last_visit,
		       EXTRACT(DAY FROM now() - MAX(a.start_time))::int AS days_since_last_visit
		FROM customers c
		JOIN appointments a ON a.customer_id = c.id
		WHERE c.business_id = $1
		  AND a.status = 'completed'
		GROUP BY c.id, c.name
		HAVING MAX(a.start_time) < now() - ($2 || ' days')::interval
		ORDER BY days_since_last_visit DESC
		LIMIT $3`,
		businessID, thresholdDays, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: at-risk customers: %v", ErrQueryExecutionFailed, err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

// FetchAppointments returns appointments in the range, earliest first.
func (s *Store) FetchAppointments(ctx context.Context, businessID string, dateRange models.DateRange, limit int) ([]models.AppointmentProjection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, c.name, a.service_name, a.start_time, a.end_time, a.price, a.status
		FROM appointments a
		JOIN customers c ON c.id = a.customer_id
		WHERE a.business_id = $1
		  AND a.start_time >= $2 AND a.start_time < $3
		ORDER BY a.start_time ASC
		LIMIT $4`,
		businessID, dateRange.Start, dateRange.End, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: appointments: %v", ErrQueryExecutionFailed, err)
	}
	defer rows.Close()

	var results []models.AppointmentProjection
	for rows.Next() {
		var a models.AppointmentProjection
		if err := rows.Scan(&a.ID, &a.CustomerName, &a.ServiceName, &a.StartTime, &a.EndTime, &a.Price, &a.Status); err != nil {
			return nil, fmt.Errorf("%w: appointments scan: %v", ErrQueryExecutionFailed, err)
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: appointments rows: %v", ErrQueryExecutionFailed, err)
	}
	return results, nil
}

// FetchRecentCustomers returns customers ordered by most recent visit.
func (s *Store) FetchRecentCustomers(ctx context.Context, businessID string, limit int) ([]models.CustomerProjection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name,
		       COALESCE(SUM(a.price), 0) AS total_spent,
		       COUNT(a.id)               AS total_appointments,
		       MAX(a.start_time)         AS last_visit,
		       EXTRACT(DAY FROM now() - MAX(a.start_time))::int AS days_since_last_visit
		FROM customers c
		JOIN appointments a ON a.customer_id = c.id
		WHERE c.business_id = $1
		  AND a.status = 'completed'
		GROUP BY c.id, c.name
		ORDER BY last_visit DESC
		LIMIT $2`,
		businessID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: recent customers: %v", ErrQueryExecutionFailed, err)
	}
	defer rows.Close()

	return scanCustomers(rows)
}

// FetchCustomerStats returns per-customer lifetime totals for the analytics
// read path, including the first visit needed for lifetime-value projection.
func (s *Store) FetchCustomerStats(ctx context.Context, businessID string) ([]models.CustomerProjection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name,
		       COALESCE(SUM(a.price), 0) AS total_spent,
		       COUNT(a.id)               AS total_appointments,
		       MIN(a.start_time)         AS first_visit,
		       MAX(a.start_time)         AS last_visit,
		       EXTRACT(DAY FROM now() - MAX(a.start_time))::int AS days_since_last_visit
		FROM customers c
		JOIN appointments a ON a.customer_id = c.id
		WHERE c.business_id = $1
		  AND a.status = 'completed'
		GROUP BY c.id, c.name
		ORDER BY c.name ASC`,
		businessID)
	if err != nil {
		return nil, fmt.Errorf("%w: customer stats: %v", ErrQueryExecutionFailed, err)
	}
	defer rows.Close()

	var results []models.CustomerProjection
	for rows.Next() {
		var c models.CustomerProjection
		var firstVisit, lastVisit time.Time
		if err := rows.Scan(&c.ID, &c.Name, &c.TotalSpent, &c.TotalAppointments, &firstVisit, &lastVisit, &c.DaysSinceLastVisit); err != nil {
			return nil, fmt.Errorf("%w: customer stats scan: %v", ErrQueryExecutionFailed, err)
		}
		c.FirstVisit = firstVisit
		c.LastVisit = lastVisit
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: customer stats rows: %v", ErrQueryExecutionFailed, err)
	}
	return results, nil
}

// allTime widens a nil range to the representable extremes.
func allTime(r *models.DateRange) (time.Time, time.Time) {
	if r != nil {
		return r.Start, r.End
	}
	return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
}

func scanCustomers(rows *sql.Rows) ([]models.CustomerProjection, error) {
	var results []models.CustomerProjection
	for rows.Next() {
		var c models.CustomerProjection
		err := rows.Scan(&c.ID, &c.Name, &c.TotalSpent, &c.TotalAppointments, &c.LastVisit, &c.DaysSinceLastVisit)
		if err != nil {
			return nil, fmt.Errorf("%w: customer scan: %v", ErrQueryExecutionFailed, err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: customer rows: %v", ErrQueryExecutionFailed, err)
	}
	return results, nil
}
