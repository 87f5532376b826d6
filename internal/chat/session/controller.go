// Package session orchestrates one chat turn: rate limiting, parse, process,
// format, and transcript bookkeeping.
//
// Turn lifecycle: a submission that passes the limiter appends a pending
// placeholder turn immediately, then the pipeline runs and the placeholder is
// replaced in place, keyed by turn id. Ids increase monotonically per
// session, so a fast second query resolving before a slow first one lands in
// its own slot and never corrupts transcript order. The limiter is consulted
// synchronously before the pipeline's single suspension point (the data
// fetch), so concurrent submissions from one session cannot race on it.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"crm-assistant/internal/chat/ratelimit"
	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/common/observability"
	"crm-assistant/internal/models"
	"crm-assistant/internal/query/parser"
	"crm-assistant/internal/query/processor"
)

var ErrRateLimitExceeded = errors.New("RATE_LIMIT_EXCEEDED")

// Config carries the per-session submission budget.
type Config struct {
	MaxQueriesPerWindow int
	Window              time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		MaxQueriesPerWindow: 20,
		Window:              time.Minute,
	}
}

type transcript struct {
	nextTurnID int64
	turns      []*models.ChatTurn
	byID       map[int64]*models.ChatTurn
}

// Controller owns the per-session transcripts. It is safe for concurrent use;
// the transcript map is the only state shared across turns besides the
// limiter's windows.
type Controller struct {
	limiter   ratelimit.Limiter
	processor *processor.Processor
	config    *Config
	obs       *observability.Observability
	logger    logger.Logger

	mu          sync.Mutex
	transcripts map[string]*transcript
}

func NewController(limiter ratelimit.Limiter, proc *processor.Processor, config *Config, obs *observability.Observability, log logger.Logger) *Controller {
	if config == nil {
		config = DefaultConfig()
	}
	return &Controller{
		limiter:     limiter,
		processor:   proc,
		config:      config,
		obs:         obs,
		logger:      log.WithFields(map[string]interface{}{"component": "session"}),
		transcripts: make(map[string]*transcript),
	}
}

// HandleSubmit runs one user turn end to end and returns the terminal turn.
// Every submission has exactly one terminal outcome: a resolved turn, a
// failed turn, or ErrRateLimitExceeded with no turn created.
func (c *Controller) HandleSubmit(ctx context.Context, sessionID, businessID, text string, now time.Time) (*models.ChatTurn, error) {
	allowed, err := c.limiter.TryConsume(ctx, sessionID, c.config.MaxQueriesPerWindow, c.config.Window, now)
	if err != nil {
		// A broken limiter backend must not silently wave queries through.
		return nil, err
	}
	if !allowed {
		if c.obs != nil {
			c.obs.RecordRateLimitDenied(ctx)
		}
		c.logger.Warn("submission rate limited", map[string]interface{}{
			"sessionId": sessionID,
		})
		return nil, ErrRateLimitExceeded
	}

	turnID := c.appendPlaceholder(sessionID, text, now)

	start := time.Now()
	query := parser.Parse(text, now)
	result, procErr := c.processor.Process(ctx, query, businessID, now)

	status := "resolved"
	if procErr != nil {
		status = "failed"
	}
	if c.obs != nil {
		c.obs.RecordQueryProcessed(ctx, string(query.Intent), status)
		c.obs.RecordQueryDuration(ctx, string(query.Intent), float64(time.Since(start).Milliseconds()))
	}

	if procErr != nil {
		c.logger.Error("turn failed", map[string]interface{}{
			"sessionId": sessionID,
			"turnId":    turnID,
			"intent":    string(query.Intent),
			"error":     procErr.Error(),
		})
		return c.resolveTurn(sessionID, turnID, nil,
			"Something went wrong answering that. Please try again."), nil
	}

	return c.resolveTurn(sessionID, turnID, result, ""), nil
}

// HandleSuggestion re-enters the pipeline with a clicked follow-up
// suggestion; it is equivalent to submitting the suggestion as text.
func (c *Controller) HandleSuggestion(ctx context.Context, sessionID, businessID, suggestion string, now time.Time) (*models.ChatTurn, error) {
	return c.HandleSubmit(ctx, sessionID, businessID, suggestion, now)
}

// Transcript returns a snapshot of the session's turns in submission order.
func (c *Controller) Transcript(sessionID string) []models.ChatTurn {
	c.mu.Lock()
	defer c.mu.Unlock()

	tr, ok := c.transcripts[sessionID]
	if !ok {
		return nil
	}

	out := make([]models.ChatTurn, 0, len(tr.turns))
	for _, turn := range tr.turns {
		out = append(out, *turn)
	}
	return out
}

// appendPlaceholder creates the pending turn in submission order and returns
// its id.
func (c *Controller) appendPlaceholder(sessionID, text string, now time.Time) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	tr, ok := c.transcripts[sessionID]
	if !ok {
		tr = &transcript{byID: make(map[int64]*models.ChatTurn)}
		c.transcripts[sessionID] = tr
	}

	tr.nextTurnID++
	turn := &models.ChatTurn{
		ID:          tr.nextTurnID,
		SessionID:   sessionID,
		UserText:    text,
		State:       models.TurnPending,
		SubmittedAt: now,
	}
	tr.turns = append(tr.turns, turn)
	tr.byID[turn.ID] = turn
	return turn.ID
}

// resolveTurn replaces the placeholder identified by turnID. Lookup is by id,
// never by position, so out-of-order resolution cannot touch a sibling turn.
func (c *Controller) resolveTurn(sessionID string, turnID int64, result *models.QueryResult, errorMessage string) *models.ChatTurn {
	c.mu.Lock()
	defer c.mu.Unlock()

	turn := c.transcripts[sessionID].byID[turnID]
	resolvedAt := time.Now()
	turn.ResolvedAt = &resolvedAt
	if errorMessage != "" {
		turn.State = models.TurnFailed
		turn.ErrorMessage = errorMessage
	} else {
		turn.State = models.TurnResolved
		turn.Result = result
	}

	snapshot := *turn
	return &snapshot
}
