// Package formatter turns a typed query result into the one-line summary and
// follow-up suggestions the chat UI renders. Format is pure and total over
// the closed set of result kinds; follow-ups come from a static policy table,
// never generated text, so output is deterministic for a given payload.
package formatter

import (
	"fmt"
	"strings"

	"crm-assistant/internal/models"
)

var followUpsByKind = map[models.ResultKind][]string{
	models.KindRevenue: {
		"Who is my best customer?",
		"Which customers are at risk?",
	},
	models.KindCustomer: {
		"How much revenue did I make this month?",
		"Which customers are at risk?",
	},
	models.KindAppointments: {
		"How much revenue did I make today?",
		"Who is my best customer?",
	},
	models.KindList: {
		"Which customers are at risk?",
		"What are my appointments today?",
	},
	models.KindEmpty: {
		"How much revenue did I make today?",
		"Who is my best customer?",
		"What are my appointments today?",
	},
}

// Format produces the summary and follow-up suggestions for a result. The
// payload fields of result are read according to result.Kind; Summary and
// FollowUps on the input are ignored.
func Format(result *models.QueryResult) (string, []string) {
	return summarize(result), FollowUps(result.Kind)
}

// FollowUps returns the fixed suggestion list for a result kind, 0-4 entries.
func FollowUps(kind models.ResultKind) []string {
	suggestions := followUpsByKind[kind]
	out := make([]string, len(suggestions))
	copy(out, suggestions)
	return out
}

func summarize(result *models.QueryResult) string {
	switch result.Kind {
	case models.KindRevenue:
		return revenueSummary(result.Revenue)
	case models.KindCustomer:
		return customerSummary(result.Customer)
	case models.KindAppointments:
		return appointmentsSummary(result.Appointments)
	case models.KindList:
		return listSummary(result.List)
	case models.KindEmpty:
		return "I didn't catch that. Try asking about revenue, your best customers, or today's appointments."
	default:
		// Kind is a closed set; an unlisted value is a new variant missing
		// its template.
		return "I couldn't put that answer into words."
	}
}

func revenueSummary(agg *models.RevenueAggregate) string {
	if agg == nil || agg.AppointmentCount == 0 {
		return "No completed appointments in that period, so revenue was $0.00."
	}
	return fmt.Sprintf("You made $%.2f from %d appointments across %d customers (avg $%.2f per visit).",
		agg.TotalRevenue, agg.AppointmentCount, agg.UniqueCustomers, agg.AvgTransactionValue)
}

func customerSummary(c *models.CustomerProjection) string {
	if c == nil {
		return "No customers with completed appointments in that period."
	}
	return fmt.Sprintf("Your best customer is %s with $%.2f spent across %d appointments.",
		c.Name, c.TotalSpent, c.TotalAppointments)
}

func appointmentsSummary(appointments []models.AppointmentProjection) string {
	if len(appointments) == 0 {
		return "No appointments found for that period."
	}
	if len(appointments) == 1 {
		a := appointments[0]
		return fmt.Sprintf("You have 1 appointment: %s with %s at %s.",
			a.ServiceName, a.CustomerName, a.StartTime.Format("3:04 PM on Jan 2"))
	}
	first := appointments[0]
	return fmt.Sprintf("You have %d appointments, starting with %s with %s at %s.",
		len(appointments), first.ServiceName, first.CustomerName,
		first.StartTime.Format("3:04 PM on Jan 2"))
}

func listSummary(customers []models.CustomerProjection) string {
	if len(customers) == 0 {
		return "No recent customers to show yet."
	}
	names := make([]string, 0, len(customers))
	for _, c := range customers {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("Here are your %d most recent customers: %s.",
		len(customers), strings.Join(names, ", "))
}
