// Package audittrail builds the field-level provenance record tying every
// populated template row back to a cited regulatory source and a confidence
// rating.
package audittrail

import (
	"fmt"
	"strings"

	"coreport/internal/confidence"
	"coreport/internal/template"
	"coreport/internal/validation"
)

// OverallRow is the sentinel field_row of the aggregate summary entry.
const OverallRow = "OVERALL"

// Indicators carries the confidence signals of an entry. The count fields
// are set only on the OVERALL entry.
type Indicators struct {
	HasSourceReference *bool                `json:"has_source_reference,omitempty"`
	SourceRelevance    confidence.Relevance `json:"source_relevance,omitempty"`
	SourcesUsed        *int                 `json:"sources_used,omitempty"`
	FieldsPopulated    *int                 `json:"fields_populated,omitempty"`
}

// Entry is one provenance record: a populated row, or the final OVERALL
// summary.
type Entry struct {
	FieldRow        string     `json:"field_row"`
	FieldName       string     `json:"field_name"`
	Value           *float64   `json:"value"`
	Currency        string     `json:"currency,omitempty"`
	SourceReference string     `json:"source_reference"`
	Reasoning       string     `json:"reasoning"`
	Confidence      Indicators `json:"confidence_indicators"`
}

// Builder assembles audit trails against the immutable schema registry.
type Builder struct {
	reg *template.Registry
}

// NewBuilder constructs an audit trail builder.
func NewBuilder(reg *template.Registry) *Builder {
	return &Builder{reg: reg}
}

// Build emits one entry per non-null row of the record in canonical row
// order, then exactly one OVERALL summary entry. Validation results inform
// the summary narrative only; they never alter per-field provenance.
func (b *Builder) Build(pop *template.Population, results []validation.Result) []Entry {
	rec := pop.Record
	entries := make([]Entry, 0, rec.PopulatedCount()+1)

	sources := make(map[string]struct{})

	for _, def := range b.reg.Rows() {
		v, ok := rec.Value(def.ID)
		if !ok {
			continue
		}
		value := v

		entry := Entry{
			FieldRow:  string(def.ID),
			FieldName: def.Label,
			Value:     &value,
			Currency:  rec.Currency,
		}

		if def.Kind == template.KindDerived {
			entry.SourceReference = derivedReference(b.reg.Dependencies(def.ID))
			entry.Reasoning = def.FormulaNote
			entry.Confidence = indicators(false, confidence.RelevanceNotApplicable)
		} else {
			winner := pop.Winners[def.ID]
			entry.SourceReference = winner.SourceReference
			entry.Reasoning = winner.Reasoning
			hasRef := confidence.HasSourceReference(winner.SourceReference)
			entry.Confidence = indicators(hasRef, confidence.Score(winner.RelevanceScore))
			if hasRef {
				sources[strings.TrimSpace(winner.SourceReference)] = struct{}{}
			}
		}

		entries = append(entries, entry)
	}

	return append(entries, b.overallEntry(pop, results, len(sources)))
}

func (b *Builder) overallEntry(pop *template.Population, results []validation.Result, sourcesUsed int) Entry {
	fieldsPopulated := pop.Record.PopulatedCount()

	return Entry{
		FieldRow:  OverallRow,
		FieldName: "Analysis Summary",
		Value:     nil,
		Currency:  pop.Record.Currency,
		SourceReference: fmt.Sprintf("Based on %d regulatory sources", sourcesUsed),
		Reasoning:       b.narrative(pop, results),
		Confidence: Indicators{
			SourcesUsed:     &sourcesUsed,
			FieldsPopulated: &fieldsPopulated,
		},
	}
}

// narrative synthesizes the summary reasoning: computed totals, ERROR-level
// findings, and any dropped inputs.
func (b *Builder) narrative(pop *template.Population, results []validation.Result) string {
	rec := pop.Record
	var sb strings.Builder

	fmt.Fprintf(&sb, "Populated %d of %d template rows in %s.", rec.PopulatedCount(), len(b.reg.Rows()), rec.Currency)

	if total, ok := rec.Value(template.Row700); ok {
		t1, _ := rec.Value(template.Row400)
		t2, _ := rec.Value(template.Row600)
		fmt.Fprintf(&sb, " Total own funds %.2f (Tier 1 %.2f, Tier 2 %.2f).", total, t1, t2)
	}

	if failed := validation.FailedErrors(results); len(failed) > 0 {
		ids := make([]string, 0, len(failed))
		for _, r := range failed {
			ids = append(ids, r.RuleID)
		}
		fmt.Fprintf(&sb, " ERROR-level findings: %s.", strings.Join(ids, ", "))
	} else {
		sb.WriteString(" All ERROR-level checks passed.")
	}

	if n := len(pop.Rejected); n > 0 {
		fmt.Fprintf(&sb, " %d candidate input(s) dropped as malformed.", n)
	}

	return sb.String()
}

func derivedReference(deps []template.RowID) string {
	ids := make([]string, 0, len(deps))
	for _, dep := range deps {
		ids = append(ids, string(dep))
	}
	return "Derived: " + strings.Join(ids, ", ")
}

func indicators(hasRef bool, rel confidence.Relevance) Indicators {
	return Indicators{HasSourceReference: &hasRef, SourceRelevance: rel}
}
