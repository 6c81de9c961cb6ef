package validation

import "coreport/internal/template"

// Result is the outcome of one rule for one record.
type Result struct {
	RuleID         string           `json:"rule_id"`
	RuleName       string           `json:"rule_name"`
	Passed         bool             `json:"passed"`
	Severity       Severity         `json:"severity"`
	Message        string           `json:"message"`
	AffectedFields []template.RowID `json:"affected_fields"`
}

// Engine runs the static rule list against populated records. It holds no
// per-query state and is safe for concurrent use.
type Engine struct {
	reg   *template.Registry
	rules []Rule
}

// NewEngine builds the engine with its fixed, ordered rule set.
func NewEngine(reg *template.Registry) *Engine {
	return &Engine{reg: reg, rules: newRules()}
}

// Validate evaluates every rule in declaration order, regardless of earlier
// failures, and returns exactly one result per registered rule.
func (e *Engine) Validate(rec *template.Record) []Result {
	results := make([]Result, 0, len(e.rules))
	for _, rule := range e.rules {
		passed, message, affected := rule.Check(e.reg, rec)
		if passed {
			message = "OK"
		}
		if affected == nil {
			affected = []template.RowID{}
		}
		results = append(results, Result{
			RuleID:         rule.ID,
			RuleName:       rule.Name,
			Passed:         passed,
			Severity:       rule.Severity,
			Message:        message,
			AffectedFields: affected,
		})
	}
	return results
}

// Rules describes the registered rule set for the rule catalogue endpoint.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// SubmissionReady reports whether no ERROR-severity rule failed. WARNINGs
// never block.
func SubmissionReady(results []Result) bool {
	for _, r := range results {
		if r.Severity == SeverityError && !r.Passed {
			return false
		}
	}
	return true
}

// FailedErrors returns the ERROR-severity failures, used by the audit trail
// summary narrative.
func FailedErrors(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Severity == SeverityError && !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
