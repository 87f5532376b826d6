// Package parser classifies free-form chat input into a typed intent with
// extracted parameters. The rule list is evaluated in fixed priority order
// and the first matching predicate wins: explicit precedence over implicit,
// data-driven classification, so results stay predictable as rules grow.
//
// Parse never fails; unmatched input yields IntentUnknown with the raw text
// preserved for logging.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"crm-assistant/internal/models"
)

var revenueVocabulary = []string{
	"revenue", "earning", "earnings", "income", "sales", "made", "make money",
}

var superlativeVocabulary = []string{
	"best", "top", "biggest", "highest", "most valuable",
}

var customerVocabulary = []string{
	"customer", "customers", "client", "clients",
}

var atRiskVocabulary = []string{
	"at risk", "at-risk", "churn", "churning", "losing", "haven't seen", "havent seen",
}

var scheduleVocabulary = []string{
	"appointment", "appointments", "schedule", "booked", "booking", "bookings", "calendar",
}

var genericNounVocabulary = []string{
	"customer", "customers", "client", "clients", "service", "services",
	"appointment", "appointments",
}

var topNPattern = regexp.MustCompile(`(?:top|first|show\s+me)\s+(\d{1,3})`)

type rule struct {
	intent  models.Intent
	match   func(text string) bool
	extract func(text string, now time.Time) (*models.DateRange, *int)
}

// Rule order is the precedence order. At-risk outranks best-customer so that
// "which customers am I at risk of losing" never resolves as a superlative,
// and the generic-list fallback sits last before Unknown.
var rules = []rule{
	{
		intent: models.IntentAtRiskCustomers,
		match: func(text string) bool {
			return containsAny(text, atRiskVocabulary)
		},
		extract: func(text string, _ time.Time) (*models.DateRange, *int) {
			// No date range: the inactivity threshold belongs to the
			// processor, not the parser.
			return nil, extractLimit(text)
		},
	},
	{
		intent: models.IntentRevenue,
		match: func(text string) bool {
			return containsAny(text, revenueVocabulary)
		},
		extract: func(text string, now time.Time) (*models.DateRange, *int) {
			return ResolveDatePhrase(text, now), nil
		},
	},
	{
		intent: models.IntentBestCustomer,
		match: func(text string) bool {
			return containsAny(text, superlativeVocabulary) && containsAny(text, customerVocabulary)
		},
		extract: func(text string, now time.Time) (*models.DateRange, *int) {
			// Absent a date phrase the range stays nil, meaning all time.
			return ResolveDatePhrase(text, now), nil
		},
	},
	{
		intent: models.IntentAppointments,
		match: func(text string) bool {
			return containsAny(text, scheduleVocabulary)
		},
		extract: func(text string, now time.Time) (*models.DateRange, *int) {
			return ResolveDatePhrase(text, now), extractLimit(text)
		},
	},
	{
		intent: models.IntentGenericList,
		match: func(text string) bool {
			return containsAny(text, genericNounVocabulary)
		},
		extract: func(text string, _ time.Time) (*models.DateRange, *int) {
			return nil, extractLimit(text)
		},
	},
}

// Parse classifies text as of the supplied clock value. Re-parsing the same
// text with the same now yields a structurally equal ParsedQuery.
func Parse(text string, now time.Time) models.ParsedQuery {
	normalized := strings.ToLower(strings.TrimSpace(text))

	for _, r := range rules {
		if r.match(normalized) {
			dateRange, limit := r.extract(normalized, now)
			return models.ParsedQuery{
				Intent:    r.intent,
				DateRange: dateRange,
				Limit:     limit,
				RawText:   text,
			}
		}
	}

	return models.ParsedQuery{
		Intent:  models.IntentUnknown,
		RawText: text,
	}
}

func containsAny(text string, vocabulary []string) bool {
	for _, word := range vocabulary {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func contains(text, phrase string) bool {
	return strings.Contains(text, phrase)
}

func extractLimit(text string) *int {
	m := topNPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return nil
	}
	return &n
}
