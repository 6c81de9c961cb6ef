// Package auditlog captures append-only operational events, one per processed
// query, for compliance visibility. It is distinct from the per-field audit
// trail returned to callers.
package auditlog

import (
	"time"

	"github.com/google/uuid"
)

// ActionQueryProcessed is emitted once per completed pipeline run.
const ActionQueryProcessed = "query_processed"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID              uuid.UUID `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	RequestID       string    `json:"request_id,omitempty"`
	Subject         string    `json:"subject,omitempty"`
	Action          string    `json:"action"`
	TemplateType    string    `json:"template_type"`
	Currency        string    `json:"currency"`
	SubmissionReady bool      `json:"submission_ready"`
	FieldsPopulated int       `json:"fields_populated"`
	SourcesUsed     int       `json:"sources_used"`
	FailedErrors    int       `json:"failed_errors"`
}
