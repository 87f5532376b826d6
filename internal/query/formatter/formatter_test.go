// internal/query/formatter/formatter_test.go
package formatter

import (
	"testing"
	"time"

	"crm-assistant/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Revenue(t *testing.T) {
	result := &models.QueryResult{
		Kind: models.KindRevenue,
		Revenue: &models.RevenueAggregate{
			TotalRevenue:        450.50,
			AppointmentCount:    9,
			UniqueCustomers:     7,
			AvgTransactionValue: 50.06,
		},
	}

	summary, followUps := Format(result)
	assert.Equal(t, "You made $450.50 from 9 appointments across 7 customers (avg $50.06 per visit).", summary)
	assert.Equal(t, []string{"Who is my best customer?", "Which customers are at risk?"}, followUps)
}

func TestFormat_ZeroRevenueDay(t *testing.T) {
	result := &models.QueryResult{
		Kind:    models.KindRevenue,
		Revenue: &models.RevenueAggregate{},
	}

	summary, followUps := Format(result)
	assert.Equal(t, "No completed appointments in that period, so revenue was $0.00.", summary)
	assert.NotEmpty(t, followUps)
}

func TestFormat_Customer(t *testing.T) {
	result := &models.QueryResult{
		Kind: models.KindCustomer,
		Customer: &models.CustomerProjection{
			Name:              "Alice",
			TotalSpent:        500,
			TotalAppointments: 10,
		},
	}

	summary, _ := Format(result)
	assert.Equal(t, "Your best customer is Alice with $500.00 spent across 10 appointments.", summary)
}

func TestFormat_CustomerMissing(t *testing.T) {
	result := &models.QueryResult{Kind: models.KindCustomer}
	summary, followUps := Format(result)
	assert.Equal(t, "No customers with completed appointments in that period.", summary)
	assert.NotEmpty(t, followUps)
}

func TestFormat_Appointments(t *testing.T) {
	start := time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC)
	result := &models.QueryResult{
		Kind: models.KindAppointments,
		Appointments: []models.AppointmentProjection{
			{CustomerName: "Bob", ServiceName: "Haircut", StartTime: start},
			{CustomerName: "Cleo", ServiceName: "Color", StartTime: start.Add(time.Hour)},
		},
	}

	summary, _ := Format(result)
	assert.Equal(t, "You have 2 appointments, starting with Haircut with Bob at 9:30 AM on Mar 11.", summary)
}

func TestFormat_EmptyAppointments(t *testing.T) {
	result := &models.QueryResult{Kind: models.KindAppointments}
	summary, _ := Format(result)
	assert.Equal(t, "No appointments found for that period.", summary)
}

func TestFormat_List(t *testing.T) {
	result := &models.QueryResult{
		Kind: models.KindList,
		List: []models.CustomerProjection{
			{Name: "Alice"}, {Name: "Bob"},
		},
	}

	summary, _ := Format(result)
	assert.Equal(t, "Here are your 2 most recent customers: Alice, Bob.", summary)
}

func TestFormat_EmptyKindOffersExamples(t *testing.T) {
	result := &models.QueryResult{Kind: models.KindEmpty}
	summary, followUps := Format(result)
	assert.Contains(t, summary, "Try asking")
	assert.NotEmpty(t, followUps)
	assert.LessOrEqual(t, len(followUps), 4)
}

// Every kind has a template and a bounded follow-up list.
func TestFormat_TotalOverKinds(t *testing.T) {
	kinds := []models.ResultKind{
		models.KindRevenue, models.KindCustomer, models.KindAppointments,
		models.KindList, models.KindEmpty,
	}

	for _, kind := range kinds {
		summary, followUps := Format(&models.QueryResult{Kind: kind})
		assert.NotEmpty(t, summary, "kind %s must have a template", kind)
		assert.LessOrEqual(t, len(followUps), 4)

		// Static policy table: repeated calls never diverge.
		again, againFollowUps := Format(&models.QueryResult{Kind: kind})
		assert.Equal(t, summary, again)
		assert.Equal(t, followUps, againFollowUps)
	}
}
