// Package handler serves the static template catalogue: row schema and the
// validation rule set, keyed by template type.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"coreport/internal/template"
	"coreport/internal/validation"
	"coreport/pkg/domainerrors"
	"coreport/pkg/httputil"
)

const templateOwnFunds = "C01"

// Handler exposes the schema registry and rule catalogue over HTTP.
type Handler struct {
	registry *template.Registry
	engine   *validation.Engine
	logger   *slog.Logger
}

func New(registry *template.Registry, engine *validation.Engine, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		engine:   engine,
		logger:   logger,
	}
}

// Register mounts catalogue endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/templates/{templateType}", h.HandleSchema)
	r.Get("/validation-rules/{templateType}", h.HandleRules)
}

// SchemaResponse is the HTTP response for GET /api/templates/{templateType}.
type SchemaResponse struct {
	TemplateType string        `json:"template_type"`
	Name         string        `json:"name"`
	Rows         []RowResponse `json:"rows"`
}

// RowResponse describes one template row.
type RowResponse struct {
	RowID      string   `json:"row_id"`
	Label      string   `json:"label"`
	CRRArticle string   `json:"crr_article,omitempty"`
	Category   string   `json:"category"`
	Kind       string   `json:"kind"`
	Deduction  bool     `json:"deduction"`
	Formula    string   `json:"formula,omitempty"`
	DependsOn  []string `json:"depends_on,omitempty"`
}

// RuleResponse describes one validation rule.
type RuleResponse struct {
	RuleID   string   `json:"rule_id"`
	Name     string   `json:"name"`
	Severity string   `json:"severity"`
	Inspects []string `json:"inspects"`
}

// RulesResponse is the HTTP response for GET /api/validation-rules/{templateType}.
type RulesResponse struct {
	TemplateType string         `json:"template_type"`
	Rules        []RuleResponse `json:"rules"`
}

// HandleSchema handles GET /api/templates/{templateType} requests.
func (h *Handler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	templateType := chi.URLParam(r, "templateType")
	if templateType != templateOwnFunds {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeNotFound, "unknown template type: "+templateType))
		return
	}

	rows := h.registry.Rows()
	resp := SchemaResponse{
		TemplateType: templateOwnFunds,
		Name:         "Own Funds",
		Rows:         make([]RowResponse, 0, len(rows)),
	}
	for _, row := range rows {
		rr := RowResponse{
			RowID:      string(row.ID),
			Label:      row.Label,
			CRRArticle: row.CRRArticle,
			Category:   string(row.Category),
			Kind:       string(row.Kind),
			Deduction:  row.Deduction,
			Formula:    row.FormulaNote,
		}
		for _, dep := range h.registry.Dependencies(row.ID) {
			rr.DependsOn = append(rr.DependsOn, string(dep))
		}
		resp.Rows = append(resp.Rows, rr)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleRules handles GET /api/validation-rules/{templateType} requests.
func (h *Handler) HandleRules(w http.ResponseWriter, r *http.Request) {
	templateType := chi.URLParam(r, "templateType")
	if templateType != templateOwnFunds {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeNotFound, "unknown template type: "+templateType))
		return
	}

	rules := h.engine.Rules()
	resp := RulesResponse{
		TemplateType: templateOwnFunds,
		Rules:        make([]RuleResponse, 0, len(rules)),
	}
	for _, rule := range rules {
		rr := RuleResponse{
			RuleID:   rule.ID,
			Name:     rule.Name,
			Severity: string(rule.Severity),
			Inspects: make([]string, 0, len(rule.Inspects)),
		}
		for _, row := range rule.Inspects {
			rr.Inspects = append(rr.Inspects, string(row))
		}
		resp.Rules = append(resp.Rules, rr)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
