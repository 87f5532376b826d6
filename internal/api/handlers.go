// internal/api/handlers.go
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"crm-assistant/internal/chat/session"
	"crm-assistant/internal/common/logger"
	"crm-assistant/internal/common/validation"
	"crm-assistant/internal/segmentation"

	"github.com/google/uuid"
)

const messageRequestSchema = `{
	"type": "object",
	"properties": {
		"sessionId":  {"type": "string", "minLength": 1},
		"businessId": {"type": "string", "minLength": 1},
		"message":    {"type": "string", "minLength": 1, "maxLength": 2000}
	},
	"required": ["businessId", "message"],
	"additionalProperties": false
}`

var messageSchema = validation.MustCompile(messageRequestSchema)

type APIHandler struct {
	controller *session.Controller
	profiles   *segmentation.ProfileService
	logger     logger.Logger
}

func NewAPIHandler(controller *session.Controller, profiles *segmentation.ProfileService, log logger.Logger) *APIHandler {
	return &APIHandler{
		controller: controller,
		profiles:   profiles,
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

type messageRequest struct {
	SessionID  string `json:"sessionId"`
	BusinessID string `json:"businessId"`
	Message    string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PostMessageHandler is the single chat entry point. A clicked follow-up
// suggestion goes through the same handler with the suggestion as message.
func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "unable to read request body")
		return
	}

	if result := messageSchema.ValidateBytes(body); !result.Valid {
		h.logger.Warn("message request failed validation", map[string]interface{}{
			"errors": result.Errors,
		})
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "request does not match schema")
		return
	}

	var req messageRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body")
		return
	}

	// A missing session id starts a fresh session; the client echoes it back
	// on subsequent turns.
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	turn, err := h.controller.HandleSubmit(r.Context(), req.SessionID, req.BusinessID, req.Message, time.Now())
	if errors.Is(err, session.ErrRateLimitExceeded) {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
			"You're sending questions too quickly. Give it a minute and try again.")
		return
	}
	if err != nil {
		h.logger.Error("submit failed", map[string]interface{}{
			"sessionId": req.SessionID,
			"error":     err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": req.SessionID,
		"turn":      turn,
	})
}

// GetTranscriptHandler returns the session's turns in submission order.
func (h *APIHandler) GetTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "sessionId query parameter is required")
		return
	}

	turns := h.controller.Transcript(sessionID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"turns":     turns,
	})
}

// GetSegmentsHandler returns the RFM segment distribution for a business.
func (h *APIHandler) GetSegmentsHandler(w http.ResponseWriter, r *http.Request) {
	businessID := r.URL.Query().Get("businessId")
	if businessID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "businessId query parameter is required")
		return
	}

	distribution, err := h.profiles.SegmentDistribution(r.Context(), businessID, time.Now())
	if err != nil {
		h.logger.Error("segment distribution failed", map[string]interface{}{
			"businessId": businessID,
			"error":      err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to compute segments")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"businessId": businessID,
		"segments":   distribution,
	})
}

// GetProfilesHandler returns the full per-customer score profiles.
func (h *APIHandler) GetProfilesHandler(w http.ResponseWriter, r *http.Request) {
	businessID := r.URL.Query().Get("businessId")
	if businessID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "businessId query parameter is required")
		return
	}

	profiles, err := h.profiles.Profiles(r.Context(), businessID, time.Now())
	if err != nil {
		h.logger.Error("profiles fetch failed", map[string]interface{}{
			"businessId": businessID,
			"error":      err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to compute profiles")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"businessId": businessID,
		"profiles":   profiles,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
