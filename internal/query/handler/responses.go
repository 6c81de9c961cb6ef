package handler

import (
	"time"
	"unicode/utf8"

	"coreport/internal/audittrail"
	"coreport/internal/query"
	"coreport/internal/template"
	"coreport/internal/validation"
)

// QueryResponse is the HTTP response for POST /api/query.
type QueryResponse struct {
	TemplateType      string               `json:"template_type"`
	Currency          string               `json:"currency"`
	TemplateData      map[string]*float64  `json:"template_data"`
	ValidationResults []validation.Result  `json:"validation_results"`
	SubmissionReady   bool                 `json:"submission_ready"`
	AuditTrail        []audittrail.Entry   `json:"audit_trail"`
	RetrievedSources  []SourceResponse     `json:"retrieved_sources"`
	RejectedInputs    []RejectedResponse   `json:"rejected_inputs"`
	OverallReasoning  string               `json:"overall_reasoning,omitempty"`
	Warnings          []string             `json:"warnings"`
	ProcessedAt       time.Time            `json:"processed_at"`
}

// SourceResponse describes one retrieved regulatory passage.
type SourceResponse struct {
	SourceReference string  `json:"source_reference"`
	Article         string  `json:"article,omitempty"`
	Excerpt         string  `json:"excerpt"`
	RelevanceScore  float64 `json:"relevance_score"`
}

// RejectedResponse describes one dropped extraction candidate.
type RejectedResponse struct {
	RowID  string `json:"row_id"`
	Reason string `json:"reason"`
}

// FromResult converts a pipeline result to an HTTP response. Every template
// row appears in template_data, null when unpopulated.
func FromResult(result *query.ProcessResult, rows []template.RowDef) *QueryResponse {
	rec := result.Population.Record

	data := make(map[string]*float64, len(rows))
	for _, row := range rows {
		if v, ok := rec.Value(row.ID); ok {
			val := v
			data[string(row.ID)] = &val
		} else {
			data[string(row.ID)] = nil
		}
	}

	sources := make([]SourceResponse, 0, len(result.RetrievedSources))
	for _, doc := range result.RetrievedSources {
		sources = append(sources, SourceResponse{
			SourceReference: doc.SourceReference,
			Article:         doc.Article,
			Excerpt:         excerpt(doc.Text),
			RelevanceScore:  doc.RelevanceScore,
		})
	}

	rejected := make([]RejectedResponse, 0, len(result.Population.Rejected))
	for _, mc := range result.Population.Rejected {
		rejected = append(rejected, RejectedResponse{RowID: mc.RowID, Reason: mc.Reason})
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	return &QueryResponse{
		TemplateType:      result.TemplateType,
		Currency:          rec.Currency,
		TemplateData:      data,
		ValidationResults: result.ValidationResults,
		SubmissionReady:   result.SubmissionReady,
		AuditTrail:        result.AuditTrail,
		RetrievedSources:  sources,
		RejectedInputs:    rejected,
		OverallReasoning:  result.OverallReasoning,
		Warnings:          warnings,
		ProcessedAt:       result.ProcessedAt,
	}
}

// excerpt trims document content for the response, cutting on a rune
// boundary so multi-byte text never yields invalid UTF-8.
func excerpt(text string) string {
	const max = 280
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
