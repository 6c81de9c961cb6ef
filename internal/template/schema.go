// Package template holds the C01 Own Funds schema, the populated record, and
// the deterministic populator that reconciles extracted candidates into it.
package template

// TemplateTypeC01 is the only template type this service populates.
const TemplateTypeC01 = "C01"

// RowID identifies one of the 20 canonical C01 rows.
type RowID string

const (
	Row010 RowID = "row_010"
	Row020 RowID = "row_020"
	Row030 RowID = "row_030"
	Row040 RowID = "row_040"
	Row050 RowID = "row_050"
	Row060 RowID = "row_060"
	Row070 RowID = "row_070"
	Row080 RowID = "row_080"
	Row090 RowID = "row_090"
	Row100 RowID = "row_100"
	Row200 RowID = "row_200"
	Row300 RowID = "row_300"
	Row310 RowID = "row_310"
	Row320 RowID = "row_320"
	Row400 RowID = "row_400"
	Row500 RowID = "row_500"
	Row510 RowID = "row_510"
	Row520 RowID = "row_520"
	Row600 RowID = "row_600"
	Row700 RowID = "row_700"
)

// Category groups rows by capital tier for validation and display.
type Category string

const (
	CategoryCET1           Category = "CET1"
	CategoryCET1Deductions Category = "CET1-Deductions"
	CategoryAT1            Category = "AT1"
	CategoryTier1          Category = "Tier1"
	CategoryTier2          Category = "Tier2"
	CategoryTotal          Category = "Total"
)

// Kind separates extractor-supplied inputs from formula-computed totals.
type Kind string

const (
	KindBase    Kind = "BASE"
	KindDerived Kind = "DERIVED"
)

// RowDef describes one canonical row. Deduction rows are stored as
// non-positive magnitudes so summation nets them directly.
type RowDef struct {
	ID         RowID
	Label      string
	CRRArticle string
	Category   Category
	Kind       Kind
	Deduction  bool
	// FormulaNote describes the aggregation formula for derived rows; it
	// feeds the synthesized provenance in the audit trail.
	FormulaNote string
}

// rows is the canonical catalogue in ascending row order. It is package data
// and never mutated after init.
var rows = []RowDef{
	{ID: Row010, Label: "Capital instruments eligible as CET1", CRRArticle: "Article 26(1)(a)", Category: CategoryCET1, Kind: KindBase},
	{ID: Row020, Label: "Share premium related to CET1 instruments", CRRArticle: "Article 26(1)(b)", Category: CategoryCET1, Kind: KindBase},
	{ID: Row030, Label: "Retained earnings", CRRArticle: "Article 26(1)(c)", Category: CategoryCET1, Kind: KindBase},
	{ID: Row040, Label: "Accumulated other comprehensive income", CRRArticle: "Article 26(1)(d)", Category: CategoryCET1, Kind: KindBase},
	{ID: Row050, Label: "Other reserves", CRRArticle: "Article 26(1)(e)", Category: CategoryCET1, Kind: KindBase},
	{ID: Row060, Label: "Minority interests", CRRArticle: "Article 84", Category: CategoryCET1, Kind: KindBase},
	{ID: Row070, Label: "Independent interim/year-end profits", CRRArticle: "Article 26(2)", Category: CategoryCET1, Kind: KindBase},
	{ID: Row080, Label: "(-) Goodwill and other intangible assets", CRRArticle: "Article 36(1)(b)", Category: CategoryCET1Deductions, Kind: KindBase, Deduction: true},
	{ID: Row090, Label: "(-) Deferred tax assets depending on future profitability", CRRArticle: "Article 36(1)(c)", Category: CategoryCET1Deductions, Kind: KindBase, Deduction: true},
	{ID: Row100, Label: "CET1 capital before adjustments", CRRArticle: "Article 26", Category: CategoryCET1, Kind: KindDerived,
		FormulaNote: "Sum of CET1 capital components (rows 010-070) netted against CET1 deductions (rows 080-090)"},
	{ID: Row200, Label: "CET1 capital", CRRArticle: "Article 50", Category: CategoryCET1, Kind: KindDerived,
		FormulaNote: "Equal to CET1 capital before adjustments (row_100)"},
	{ID: Row300, Label: "AT1 instruments", CRRArticle: "Article 51", Category: CategoryAT1, Kind: KindBase},
	{ID: Row310, Label: "Share premium related to AT1 instruments", CRRArticle: "Article 51", Category: CategoryAT1, Kind: KindBase},
	{ID: Row320, Label: "(-) AT1 deductions", CRRArticle: "Article 56", Category: CategoryAT1, Kind: KindBase, Deduction: true},
	{ID: Row400, Label: "Tier 1 capital", CRRArticle: "Article 25", Category: CategoryTier1, Kind: KindDerived,
		FormulaNote: "CET1 capital (row_200) plus AT1 instruments net of AT1 deductions (rows 300-320)"},
	{ID: Row500, Label: "Tier 2 instruments", CRRArticle: "Article 62", Category: CategoryTier2, Kind: KindBase},
	{ID: Row510, Label: "Share premium related to T2 instruments", CRRArticle: "Article 62", Category: CategoryTier2, Kind: KindBase},
	{ID: Row520, Label: "(-) Tier 2 deductions", CRRArticle: "Article 66", Category: CategoryTier2, Kind: KindBase, Deduction: true},
	{ID: Row600, Label: "Tier 2 capital", CRRArticle: "Article 71", Category: CategoryTier2, Kind: KindDerived,
		FormulaNote: "Sum of Tier 2 instruments and share premium netted against Tier 2 deductions (rows 500-520)"},
	{ID: Row700, Label: "TOTAL OWN FUNDS", CRRArticle: "Article 72", Category: CategoryTotal, Kind: KindDerived,
		FormulaNote: "Tier 1 capital (row_400) plus Tier 2 capital (row_600)"},
}

// dependencies lists, per derived row, the rows its formula sums. Evaluation
// follows derivedOrder so derived dependencies are computed before use.
var dependencies = map[RowID][]RowID{
	Row100: {Row010, Row020, Row030, Row040, Row050, Row060, Row070, Row080, Row090},
	Row200: {Row100},
	Row400: {Row200, Row300, Row310, Row320},
	Row600: {Row500, Row510, Row520},
	Row700: {Row400, Row600},
}

var derivedOrder = []RowID{Row100, Row200, Row400, Row600, Row700}

// Registry is the immutable row catalogue, constructed once at startup and
// passed by reference into each component.
type Registry struct {
	rows []RowDef
	byID map[RowID]RowDef
}

// NewRegistry builds the C01 schema registry.
func NewRegistry() *Registry {
	byID := make(map[RowID]RowDef, len(rows))
	for _, def := range rows {
		byID[def.ID] = def
	}
	return &Registry{rows: rows, byID: byID}
}

// Rows returns all row definitions in canonical ascending order.
func (r *Registry) Rows() []RowDef {
	return r.rows
}

// Lookup returns the definition for a row id.
func (r *Registry) Lookup(id RowID) (RowDef, bool) {
	def, ok := r.byID[id]
	return def, ok
}

// BaseRows returns the extractor-suppliable rows in canonical order.
func (r *Registry) BaseRows() []RowDef {
	var base []RowDef
	for _, def := range r.rows {
		if def.Kind == KindBase {
			base = append(base, def)
		}
	}
	return base
}

// DerivedRows returns the formula-computed rows in evaluation order.
func (r *Registry) DerivedRows() []RowDef {
	derived := make([]RowDef, 0, len(derivedOrder))
	for _, id := range derivedOrder {
		derived = append(derived, r.byID[id])
	}
	return derived
}

// Dependencies returns the rows a derived row's formula sums. Nil for base
// rows.
func (r *Registry) Dependencies(id RowID) []RowID {
	return dependencies[id]
}

// DeductionRows returns every row stored under the non-positive sign
// convention, across all tiers.
func (r *Registry) DeductionRows() []RowDef {
	var ded []RowDef
	for _, def := range r.rows {
		if def.Deduction {
			ded = append(ded, def)
		}
	}
	return ded
}
