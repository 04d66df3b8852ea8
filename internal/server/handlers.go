// internal/server/handlers.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"loan-review-console/internal/audit"
	"loan-review-console/internal/common/errors"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/common/observability"
	"loan-review-console/internal/common/validation"
	"loan-review-console/internal/listing"
	"loan-review-console/internal/models"
	"loan-review-console/internal/review"
)

// actionRequestSchema describes the POST action body. The action enum is the
// full action vocabulary; whether the action is permitted for the current
// state is decided downstream, not by the schema.
const actionRequestSchema = `{
	"type": "object",
	"properties": {
		"action": {
			"type": "string",
			"enum": ["approve", "reject", "request_more_info", "schedule_meeting", "start_video_verification"]
		}
	},
	"required": ["action"],
	"additionalProperties": false
}`

// HistoryReader serves the decision trail for one application.
type HistoryReader interface {
	History(ctx context.Context, applicationID string) ([]audit.Entry, error)
}

// Handlers holds the HTTP endpoint implementations.
type Handlers struct {
	manager  *review.Manager
	listings *listing.Service
	history  HistoryReader
	obs      *observability.Observability
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandlers(manager *review.Manager, listings *listing.Service, history HistoryReader, obs *observability.Observability, log logger.Logger) *Handlers {
	if obs == nil {
		obs = &observability.Observability{}
	}
	return &Handlers{
		manager:  manager,
		listings: listings,
		history:  history,
		obs:      obs,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListApplications serves the review queue with optional narrowing.
func (h *Handlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	query := listing.Query{
		Search:    r.URL.Query().Get("search"),
		Status:    r.URL.Query().Get("status"),
		RiskLevel: r.URL.Query().Get("risk_level"),
	}

	rows, err := h.listings.List(r.Context(), query)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": rows,
		"count": len(rows),
	})
}

// Stats serves queue-wide counts and risk distribution.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.listings.Stats(r.Context())
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetApplication loads one application and returns the normalized view with
// its permitted actions.
func (h *Handlers) GetApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	view, err := h.manager.Load(r.Context(), id)
	if err != nil {
		h.obs.RecordLoad(r.Context(), "failure")
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	h.obs.RecordLoad(r.Context(), "success")

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"application":      view,
		"permittedActions": h.manager.Controller(id).PermittedActions(),
	})
}

// SubmitAction executes one operator action against an application.
func (h *Handlers) SubmitAction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.errors.HandleHTTPError(w, r, errors.NewValidationFailedError("request body is not valid JSON"))
		return
	}

	if result := validation.ValidateInput(body, actionRequestSchema); !result.Valid {
		h.errors.HandleHTTPError(w, r, errors.NewValidationFailedError(
			strings.Join(result.GetErrorMessages(), "; ")))
		return
	}

	kind, ok := models.ParseActionKind(body["action"].(string))
	if !ok {
		h.errors.HandleHTTPError(w, r, errors.NewValidationFailedError("unknown action"))
		return
	}

	started := time.Now()
	result, err := h.manager.SubmitAction(r.Context(), id, kind)
	h.obs.RecordActionDuration(r.Context(), time.Since(started), string(kind))
	if err != nil {
		h.obs.RecordAction(r.Context(), string(kind), "failure")
		h.errors.HandleHTTPError(w, r, err)
		return
	}
	h.obs.RecordAction(r.Context(), string(kind), "success")

	writeJSON(w, http.StatusOK, result)
}

// History serves the recorded decision trail, newest first.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.history == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"applicationId": id,
			"entries":       []audit.Entry{},
		})
		return
	}

	entries, err := h.history.History(r.Context(), id)
	if err != nil {
		h.errors.HandleHTTPError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applicationId": id,
		"entries":       entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
