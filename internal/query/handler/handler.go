package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"coreport/internal/query"
	"coreport/internal/template"
	"coreport/pkg/httputil"
	"coreport/pkg/requestcontext"
)

// Service defines the interface for query processing.
type Service interface {
	Process(ctx context.Context, req query.ProcessRequest) (*query.ProcessResult, error)
}

// Handler wires the query endpoint to the pipeline service.
type Handler struct {
	service  Service
	registry *template.Registry
	logger   *slog.Logger
}

// New constructs a query handler with its dependencies.
func New(service Service, registry *template.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
		logger:   logger,
	}
}

// Register mounts query endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/query", h.HandleQuery)
}

// HandleQuery handles POST /api/query requests.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[QueryRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Process(ctx, query.ProcessRequest{
		Question:     req.Question,
		Scenario:     req.Scenario,
		TemplateType: req.TemplateType,
		Currency:     req.Currency,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "query processing failed",
			"request_id", requestID,
			"template_type", req.TemplateType,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "query processed",
		"request_id", requestID,
		"template_type", req.TemplateType,
		"submission_ready", result.SubmissionReady,
		"fields_populated", result.Population.Record.PopulatedCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result, h.registry.Rows()))
}
