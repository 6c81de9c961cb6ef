package template

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v float64) *float64 { return &v }

func value(t *testing.T, rec *Record, id RowID) float64 {
	t.Helper()
	v, ok := rec.Value(id)
	require.True(t, ok, "expected %s to be populated", id)
	return v
}

func TestPopulateWorkedExample(t *testing.T) {
	reg := NewRegistry()

	pop := Populate(reg, []FieldCandidate{
		{RowID: "row_010", Value: amount(1_000_000_000), Currency: "GBP", SourceReference: "CRR Article 26(1)(a)", RelevanceScore: 0.9},
		{RowID: "row_030", Value: amount(200_000_000), SourceReference: "CRR Article 26(1)(c)", RelevanceScore: 0.8},
		{RowID: "row_300", Value: amount(50_000_000), SourceReference: "CRR Article 51", RelevanceScore: 0.7},
		{RowID: "row_500", Value: amount(100_000_000), SourceReference: "CRR Article 62", RelevanceScore: 0.7},
	}, "GBP")

	rec := pop.Record
	assert.Equal(t, "GBP", rec.Currency)
	assert.Equal(t, TemplateTypeC01, rec.TemplateType)
	assert.Empty(t, pop.Rejected)

	assert.InDelta(t, 1_200_000_000, value(t, rec, Row100), 0.01)
	assert.InDelta(t, 1_200_000_000, value(t, rec, Row200), 0.01)
	assert.InDelta(t, 1_250_000_000, value(t, rec, Row400), 0.01)
	assert.InDelta(t, 100_000_000, value(t, rec, Row600), 0.01)
	assert.InDelta(t, 1_350_000_000, value(t, rec, Row700), 0.01)
}

func TestPopulateDeductionPropagates(t *testing.T) {
	reg := NewRegistry()

	pop := Populate(reg, []FieldCandidate{
		{RowID: "row_010", Value: amount(1_000_000_000)},
		{RowID: "row_030", Value: amount(200_000_000)},
		{RowID: "row_080", Value: amount(-50_000_000)},
		{RowID: "row_300", Value: amount(50_000_000)},
		{RowID: "row_500", Value: amount(100_000_000)},
	}, "GBP")

	rec := pop.Record
	assert.InDelta(t, 1_150_000_000, value(t, rec, Row200), 0.01)
	assert.InDelta(t, 1_200_000_000, value(t, rec, Row400), 0.01)
	assert.InDelta(t, 1_300_000_000, value(t, rec, Row700), 0.01)
}

func TestPopulateDuplicateResolution(t *testing.T) {
	reg := NewRegistry()

	t.Run("higher relevance wins", func(t *testing.T) {
		pop := Populate(reg, []FieldCandidate{
			{RowID: "row_010", Value: amount(400), RelevanceScore: 0.4},
			{RowID: "row_010", Value: amount(900), RelevanceScore: 0.9},
		}, "GBP")

		assert.InDelta(t, 900, value(t, pop.Record, Row010), 0.01)
		assert.Equal(t, 0.9, pop.Winners[Row010].RelevanceScore)
	})

	t.Run("ties broken by input order, first wins", func(t *testing.T) {
		pop := Populate(reg, []FieldCandidate{
			{RowID: "row_010", Value: amount(111), RelevanceScore: 0.5},
			{RowID: "row_010", Value: amount(222), RelevanceScore: 0.5},
		}, "GBP")

		assert.InDelta(t, 111, value(t, pop.Record, Row010), 0.01)
	})
}

func TestPopulateDerivedCandidatesIgnored(t *testing.T) {
	reg := NewRegistry()

	// A candidate for the CET1 total row must never override the formula.
	pop := Populate(reg, []FieldCandidate{
		{RowID: "row_010", Value: amount(1_000_000_000)},
		{RowID: "row_200", Value: amount(42), RelevanceScore: 1.0},
	}, "GBP")

	assert.InDelta(t, 1_000_000_000, value(t, pop.Record, Row200), 0.01)
	assert.Empty(t, pop.Rejected)
	assert.NotContains(t, pop.Winners, Row200)
}

func TestPopulateMalformedCandidates(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name   string
		cand   FieldCandidate
		reason string
	}{
		{"unknown row", FieldCandidate{RowID: "row_999", Value: amount(1)}, RejectUnknownRow},
		{"missing value", FieldCandidate{RowID: "row_010"}, RejectNonNumeric},
		{"NaN value", FieldCandidate{RowID: "row_010", Value: amount(math.NaN())}, RejectNonNumeric},
		{"infinite value", FieldCandidate{RowID: "row_010", Value: amount(math.Inf(1))}, RejectNonNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := Populate(reg, []FieldCandidate{tt.cand}, "GBP")
			require.Len(t, pop.Rejected, 1)
			assert.Equal(t, tt.reason, pop.Rejected[0].Reason)
			assert.Equal(t, tt.cand.RowID, pop.Rejected[0].RowID)
		})
	}
}

func TestPopulateCurrencyResolution(t *testing.T) {
	reg := NewRegistry()

	pop := Populate(reg, []FieldCandidate{
		{RowID: "row_010", Value: amount(100), Currency: "EUR"},
		{RowID: "row_030", Value: amount(200), Currency: "USD"},
		{RowID: "row_050", Value: amount(300)},
	}, "GBP")

	// First non-empty currency wins; the disagreeing candidate is dropped.
	assert.Equal(t, "EUR", pop.Record.Currency)
	require.Len(t, pop.Rejected, 1)
	assert.Equal(t, RejectCurrencyMismatch, pop.Rejected[0].Reason)
	assert.True(t, pop.Record.IsNull(Row030))
	assert.InDelta(t, 300, value(t, pop.Record, Row050), 0.01)
}

func TestPopulateRejectedCandidateDoesNotGovernCurrency(t *testing.T) {
	reg := NewRegistry()

	// A hallucinated row carrying a disagreeing currency is dropped; it
	// must not set the record currency and strand every valid candidate
	// behind a currency mismatch.
	pop := Populate(reg, []FieldCandidate{
		{RowID: "row_999", Value: amount(1), Currency: "USD"},
		{RowID: "row_010", Value: amount(100), Currency: "GBP"},
		{RowID: "row_030", Value: amount(50), Currency: "GBP"},
	}, "GBP")

	assert.Equal(t, "GBP", pop.Record.Currency)
	assert.InDelta(t, 100, value(t, pop.Record, Row010), 0.01)
	assert.InDelta(t, 50, value(t, pop.Record, Row030), 0.01)
	require.Len(t, pop.Rejected, 1)
	assert.Equal(t, RejectUnknownRow, pop.Rejected[0].Reason)
}

func TestPopulateMalformedCurrencySourcesIgnored(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name string
		cand FieldCandidate
	}{
		{"unknown row", FieldCandidate{RowID: "row_999", Value: amount(1), Currency: "USD"}},
		{"derived row", FieldCandidate{RowID: "row_200", Value: amount(1), Currency: "USD"}},
		{"non-numeric value", FieldCandidate{RowID: "row_010", Currency: "USD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pop := Populate(reg, []FieldCandidate{
				tt.cand,
				{RowID: "row_030", Value: amount(50), Currency: "EUR"},
			}, "GBP")

			assert.Equal(t, "EUR", pop.Record.Currency)
			assert.InDelta(t, 50, value(t, pop.Record, Row030), 0.01)
		})
	}
}

func TestPopulateEmptyCandidateSet(t *testing.T) {
	reg := NewRegistry()

	pop := Populate(reg, nil, "GBP")

	assert.Equal(t, "GBP", pop.Record.Currency)
	assert.Equal(t, 0, pop.Record.PopulatedCount())
	for _, def := range reg.Rows() {
		assert.True(t, pop.Record.IsNull(def.ID), "expected %s to be null", def.ID)
	}
}

func TestPopulateDerivedNullRules(t *testing.T) {
	reg := NewRegistry()

	// Only a Tier 2 instrument: CET1 rows stay null, but Tier 2 and the
	// total own funds become computable.
	pop := Populate(reg, []FieldCandidate{
		{RowID: "row_500", Value: amount(100)},
	}, "GBP")

	rec := pop.Record
	assert.True(t, rec.IsNull(Row100))
	assert.True(t, rec.IsNull(Row200))
	assert.True(t, rec.IsNull(Row400))
	assert.InDelta(t, 100, value(t, rec, Row600), 0.01)
	assert.InDelta(t, 100, value(t, rec, Row700), 0.01)
}
