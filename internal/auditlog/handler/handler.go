package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"coreport/internal/auditlog"
	"coreport/pkg/domainerrors"
	"coreport/pkg/httputil"
	"coreport/pkg/requestcontext"
)

const defaultLimit = 50
const maxLimit = 500

// Handler exposes the operational audit log over HTTP.
type Handler struct {
	publisher *auditlog.Publisher
	logger    *slog.Logger
}

func New(publisher *auditlog.Publisher, logger *slog.Logger) *Handler {
	return &Handler{publisher: publisher, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/events", h.HandleListEvents)
}

// EventsResponse is the HTTP response for GET /api/audit/events.
type EventsResponse struct {
	Events []auditlog.Event `json:"events"`
	Count  int              `json:"count"`
}

// HandleListEvents handles GET /api/audit/events requests. Events come back
// newest first.
func (h *Handler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLimit {
			httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "limit must be an integer between 1 and 500"))
			return
		}
		limit = parsed
	}

	events, err := h.publisher.ListRecent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit event listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if events == nil {
		events = []auditlog.Event{}
	}

	httputil.WriteJSON(w, http.StatusOK, EventsResponse{Events: events, Count: len(events)})
}
