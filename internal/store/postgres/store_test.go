// internal/store/postgres/store_test.go
package postgres

import (
	"context"
	"testing"
	"time"

	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, logger.NewNop()), mock
}

var (
	rangeStart = time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	rangeEnd   = time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
)

// ==========================
// Revenue Aggregate Tests
// ==========================

func TestFetchRevenueAggregate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(price\\), 0\\)").
		WithArgs("biz-1", rangeStart, rangeEnd).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count", "distinct", "avg"}).
			AddRow(450.50, 9, 7, 50.06))

	agg, err := store.FetchRevenueAggregate(context.Background(), "biz-1", models.DateRange{Start: rangeStart, End: rangeEnd})
	require.NoError(t, err)

	assert.InDelta(t, 450.50, agg.TotalRevenue, 0.001)
	assert.Equal(t, 9, agg.AppointmentCount)
	assert.Equal(t, 7, agg.UniqueCustomers)
	assert.InDelta(t, 50.06, agg.AvgTransactionValue, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRevenueAggregate_EmptyRangeIsZero(t *testing.T) {
	store, mock := newMockStore(t)

	// COALESCE turns an empty range into a zero row, never ErrNoRows.
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(price\\), 0\\)").
		WithArgs("biz-1", rangeStart, rangeEnd).
		WillReturnRows(sqlmock.NewRows([]string{"sum", "count", "distinct", "avg"}).
			AddRow(0, 0, 0, 0))

	agg, err := store.FetchRevenueAggregate(context.Background(), "biz-1", models.DateRange{Start: rangeStart, End: rangeEnd})
	require.NoError(t, err)
	assert.Equal(t, 0.0, agg.TotalRevenue)
	assert.Equal(t, 0, agg.AppointmentCount)
}

// ==========================
// Best Customer Tests
// ==========================

func TestFetchBestCustomer(t *testing.T) {
	store, mock := newMockStore(t)
	lastVisit := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("ORDER BY total_spent DESC, last_visit DESC, c.name ASC").
		WithArgs("biz-1", rangeStart, rangeEnd).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_spent", "total_appointments", "last_visit"}).
			AddRow("cust-1", "Alice", 500.0, 8, lastVisit))

	customer, err := store.FetchBestCustomer(context.Background(), "biz-1", &models.DateRange{Start: rangeStart, End: rangeEnd})
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "Alice", customer.Name)
	assert.InDelta(t, 500.0, customer.TotalSpent, 0.001)
	assert.True(t, customer.LastVisit.Equal(lastVisit))
}

func TestFetchBestCustomer_NilRangeSpansAllTime(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("ORDER BY total_spent DESC").
		WithArgs("biz-1",
			time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_spent", "total_appointments", "last_visit"}).
			AddRow("cust-1", "Alice", 500.0, 8, rangeStart))

	customer, err := store.FetchBestCustomer(context.Background(), "biz-1", nil)
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchBestCustomer_NoCustomersIsNil(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("ORDER BY total_spent DESC").
		WithArgs("biz-1", rangeStart, rangeEnd).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_spent", "total_appointments", "last_visit"}))

	customer, err := store.FetchBestCustomer(context.Background(), "biz-1", &models.DateRange{Start: rangeStart, End: rangeEnd})
	require.NoError(t, err)
	assert.Nil(t, customer)
}

// ==========================
// List Query Tests
// ==========================

func TestFetchAtRiskCustomers(t *testing.T) {
	store, mock := newMockStore(t)
	lastVisit := time.Date(2025, 12, 20, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("ORDER BY days_since_last_visit DESC").
		WithArgs("biz-1", 60, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_spent", "total_appointments", "last_visit", "days_since_last_visit"}).
			AddRow("cust-2", "Bob", 120.0, 3, lastVisit, 81).
			AddRow("cust-3", "Cleo", 80.0, 2, lastVisit.AddDate(0, 0, 10), 71))

	customers, err := store.FetchAtRiskCustomers(context.Background(), "biz-1", 60, 10)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Bob", customers[0].Name)
	assert.Equal(t, 81, customers[0].DaysSinceLastVisit)
}

func TestFetchAppointments(t *testing.T) {
	store, mock := newMockStore(t)
	start := time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery("ORDER BY a.start_time ASC").
		WithArgs("biz-1", rangeStart, rangeEnd, 25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "service_name", "start_time", "end_time", "price", "status"}).
			AddRow("apt-1", "Bob", "Haircut", start, start.Add(30*time.Minute), 40.0, "confirmed"))

	appts, err := store.FetchAppointments(context.Background(), "biz-1", models.DateRange{Start: rangeStart, End: rangeEnd}, 25)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, "Haircut", appts[0].ServiceName)
	assert.Equal(t, "Bob", appts[0].CustomerName)
}

func TestFetchCustomerStats(t *testing.T) {
	store, mock := newMockStore(t)
	firstVisit := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	lastVisit := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("MIN\\(a.start_time\\)").
		WithArgs("biz-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_spent", "total_appointments", "first_visit", "last_visit", "days_since_last_visit"}).
			AddRow("cust-1", "Alice", 300.0, 6, firstVisit, lastVisit, 10))

	stats, err := store.FetchCustomerStats(context.Background(), "biz-1")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.True(t, stats[0].FirstVisit.Equal(firstVisit))
	assert.Equal(t, 10, stats[0].DaysSinceLastVisit)
}

// ==========================
// Failure Path Tests
// ==========================

func TestFetchRevenueAggregate_QueryError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(price\\), 0\\)").
		WithArgs("biz-1", rangeStart, rangeEnd).
		WillReturnError(assert.AnError)

	_, err := store.FetchRevenueAggregate(context.Background(), "biz-1", models.DateRange{Start: rangeStart, End: rangeEnd})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQueryExecutionFailed)
}
