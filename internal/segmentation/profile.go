// internal/segmentation/profile.go
package segmentation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/models"

	"github.com/redis/go-redis/v9"
)

// Store is the slice of the data-access boundary the analytics read path
// needs: per-customer lifetime totals plus first and last visit.
type Store interface {
	FetchCustomerStats(ctx context.Context, businessID string) ([]models.CustomerProjection, error)
}

// ProfileService computes CustomerScoreProfile rows for a business. Profiles
// are projections: recomputed on each fetch (subject to the cache TTL), never
// mutated in place.
type ProfileService struct {
	store    Store
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewProfileService(store Store, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "segmentation"}),
	}
}

// Profiles returns score profiles for every customer of the business, ordered
// as the store returns them. now is explicit so derived fields are computable
// with a fixed clock in tests.
func (s *ProfileService) Profiles(ctx context.Context, businessID string, now time.Time) ([]models.CustomerScoreProfile, error) {
	cacheKey := "segments:profiles:" + businessID
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached []models.CustomerScoreProfile
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	stats, err := s.store.FetchCustomerStats(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("fetch customer stats: %w", err)
	}

	profiles := make([]models.CustomerScoreProfile, 0, len(stats))
	for _, c := range stats {
		profile, err := BuildProfile(c, now)
		if err != nil {
			// Bucketing guarantees in-range scores; reaching this means the
			// bucket tables are broken, not the data.
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	if s.redis != nil {
		if data, err := json.Marshal(profiles); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("profile cache write failed", map[string]interface{}{
					"businessId": businessID,
					"error":      err.Error(),
				})
			}
		}
	}

	return profiles, nil
}

// SegmentDistribution returns the number of customers per segment.
func (s *ProfileService) SegmentDistribution(ctx context.Context, businessID string, now time.Time) (map[models.SegmentLabel]int, error) {
	profiles, err := s.Profiles(ctx, businessID, now)
	if err != nil {
		return nil, err
	}

	distribution := make(map[models.SegmentLabel]int)
	for _, p := range profiles {
		distribution[p.Segment]++
	}
	return distribution, nil
}

// BuildProfile derives the score profile for a single customer as of now.
func BuildProfile(c models.CustomerProjection, now time.Time) (models.CustomerScoreProfile, error) {
	daysSince := c.DaysSinceLastVisit
	if daysSince == 0 && !c.LastVisit.IsZero() {
		daysSince = int(now.Sub(c.LastVisit).Hours() / 24)
	}

	recency := RecencyScore(daysSince)
	frequency := FrequencyScore(c.TotalAppointments)
	monetary := MonetaryScore(c.TotalSpent)

	segment, err := Segment(recency, frequency, monetary)
	if err != nil {
		return models.CustomerScoreProfile{}, err
	}

	return models.CustomerScoreProfile{
		CustomerID:            c.ID,
		Name:                  c.Name,
		Recency:               recency,
		Frequency:             frequency,
		Monetary:              monetary,
		Segment:               segment,
		CustomerLifetimeValue: lifetimeValue(c, now),
		TotalSpent:            c.TotalSpent,
		TotalAppointments:     c.TotalAppointments,
		DaysSinceLastVisit:    daysSince,
	}, nil
}

// RecencyScore buckets days since the last visit into 1..5 (5 = most recent).
func RecencyScore(daysSinceLastVisit int) int {
	switch {
	case daysSinceLastVisit <= 7:
		return 5
	case daysSinceLastVisit <= 14:
		return 4
	case daysSinceLastVisit <= 30:
		return 3
	case daysSinceLastVisit <= 60:
		return 2
	default:
		return 1
	}
}

// FrequencyScore buckets lifetime appointment count into 1..5.
func FrequencyScore(totalAppointments int) int {
	switch {
	case totalAppointments >= 20:
		return 5
	case totalAppointments >= 10:
		return 4
	case totalAppointments >= 5:
		return 3
	case totalAppointments >= 2:
		return 2
	default:
		return 1
	}
}

// MonetaryScore buckets lifetime spend into 1..5.
func MonetaryScore(totalSpent float64) int {
	switch {
	case totalSpent >= 1000:
		return 5
	case totalSpent >= 500:
		return 4
	case totalSpent >= 250:
		return 3
	case totalSpent >= 100:
		return 2
	default:
		return 1
	}
}

// lifetimeValue projects spend to a 12-month figure from the average monthly
// spend over the customer's active lifetime.
func lifetimeValue(c models.CustomerProjection, now time.Time) float64 {
	if c.TotalSpent == 0 {
		return 0
	}
	months := 1
	if !c.FirstVisit.IsZero() {
		if m := int(now.Sub(c.FirstVisit).Hours() / (24 * 30)); m > 1 {
			months = m
		}
	}
	return c.TotalSpent / float64(months) * 12
}
