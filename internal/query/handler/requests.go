package handler

import (
	"strings"

	"coreport/pkg/domainerrors"
)

// supported template types; only Own Funds for now.
const templateOwnFunds = "C01"

// QueryRequest is the JSON body for POST /api/query.
type QueryRequest struct {
	Question     string `json:"question"`
	Scenario     string `json:"scenario,omitempty"`
	TemplateType string `json:"template_type,omitempty"`
	Currency     string `json:"currency,omitempty"`
}

// Validate checks required fields and normalizes defaults in place.
func (r *QueryRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	if r.Question == "" {
		return domainerrors.New(domainerrors.CodeBadRequest, "question is required")
	}
	if len(r.Question) > 4000 {
		return domainerrors.New(domainerrors.CodeBadRequest, "question exceeds 4000 characters")
	}

	r.TemplateType = strings.ToUpper(strings.TrimSpace(r.TemplateType))
	if r.TemplateType == "" {
		r.TemplateType = templateOwnFunds
	}
	if r.TemplateType != templateOwnFunds {
		return domainerrors.New(domainerrors.CodeBadRequest, "unsupported template type: "+r.TemplateType)
	}

	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency != "" && len(r.Currency) != 3 {
		return domainerrors.New(domainerrors.CodeBadRequest, "currency must be a 3-letter ISO code")
	}
	return nil
}
