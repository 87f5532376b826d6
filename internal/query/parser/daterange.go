// internal/query/parser/daterange.go
package parser

import (
	"regexp"
	"strconv"
	"time"

	"crm-assistant/internal/models"
)

var lastNDaysPattern = regexp.MustCompile(`(?:last|past)\s+(\d{1,3})\s+days?`)

// ResolveDatePhrase maps a relative date phrase inside normalized text to a
// concrete half-open range. now is an explicit parameter; the resolver holds
// no clock of its own. Returns nil when no phrase is present.
func ResolveDatePhrase(text string, now time.Time) *models.DateRange {
	if m := lastNDaysPattern.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			start := startOfDay(now).AddDate(0, 0, -n)
			return &models.DateRange{Start: start, End: endOfDay(now)}
		}
	}

	switch {
	case contains(text, "today"):
		return dayRange(now)
	case contains(text, "yesterday"):
		return dayRange(now.AddDate(0, 0, -1))
	case contains(text, "tomorrow"):
		return dayRange(now.AddDate(0, 0, 1))
	case contains(text, "this week"):
		return weekRange(now)
	case contains(text, "last month"):
		return monthRange(now.AddDate(0, -1, -now.Day()+1))
	case contains(text, "this month"):
		return monthRange(now)
	default:
		return nil
	}
}

func dayRange(t time.Time) *models.DateRange {
	return &models.DateRange{Start: startOfDay(t), End: endOfDay(t)}
}

// weekRange covers Monday through Sunday of the week containing t.
func weekRange(t time.Time) *models.DateRange {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := startOfDay(t).AddDate(0, 0, -(weekday - 1))
	return &models.DateRange{Start: start, End: start.AddDate(0, 0, 7)}
}

func monthRange(t time.Time) *models.DateRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return &models.DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1)
}
