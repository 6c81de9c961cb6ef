// Package validation evaluates a fixed, ordered battery of consistency and
// completeness checks against a populated template record.
package validation

import (
	"fmt"
	"math"

	"coreport/internal/template"
)

// Epsilon absorbs floating-point rounding in consistency checks. It is not a
// business tolerance.
const Epsilon = 0.01

// Severity classifies a rule. ERROR failures block submission; WARNINGs
// never do.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Rule is a tagged record in the static, explicitly ordered list built at
// initialization. Checks are pure predicates over the record: passed,
// failure message, affected rows.
type Rule struct {
	ID       string
	Name     string
	Severity Severity
	Inspects []template.RowID
	Check    func(reg *template.Registry, rec *template.Record) (bool, string, []template.RowID)
}

// mandatoryRows must be non-null for a submission-ready template.
var mandatoryRows = []template.RowID{template.Row010, template.Row030, template.Row200, template.Row700}

// newRules builds the rule list. Declaration order is evaluation order.
func newRules() []Rule {
	return []Rule{
		{
			ID:       "R-REQUIRED",
			Name:     "Mandatory Fields Present",
			Severity: SeverityError,
			Inspects: mandatoryRows,
			Check:    checkRequired,
		},
		{
			ID:       "R-CET1-CONSISTENCY",
			Name:     "CET1 Total Consistency",
			Severity: SeverityError,
			Inspects: append([]template.RowID{template.Row200}, cet1Components...),
			Check:    checkCET1Consistency,
		},
		{
			ID:       "R-TIER1-CONSISTENCY",
			Name:     "Tier 1 Total Consistency",
			Severity: SeverityError,
			Inspects: []template.RowID{template.Row400, template.Row200, template.Row300, template.Row310, template.Row320},
			Check:    checkTier1Consistency,
		},
		{
			ID:       "R-TOTAL-CONSISTENCY",
			Name:     "Total Own Funds Consistency",
			Severity: SeverityError,
			Inspects: []template.RowID{template.Row700, template.Row400, template.Row600},
			Check:    checkTotalConsistency,
		},
		{
			ID:       "R-NONNEGATIVE-CET1",
			Name:     "Non-Negative CET1 Capital",
			Severity: SeverityError,
			Inspects: []template.RowID{template.Row200},
			Check:    checkNonNegativeCET1,
		},
		{
			ID:       "R-DEDUCTION-SIGN",
			Name:     "Deduction Sign Convention",
			Severity: SeverityWarning,
			Inspects: []template.RowID{template.Row080, template.Row090, template.Row320, template.Row520},
			Check:    checkDeductionSign,
		},
		{
			ID:       "R-NONNEGATIVE-BASE",
			Name:     "Non-Negative Capital Inputs",
			Severity: SeverityWarning,
			Inspects: []template.RowID{template.Row010, template.Row030},
			Check:    checkNonNegativeBase,
		},
		{
			ID:       "R-CET1-COMPONENTS",
			Name:     "CET1 Components Present",
			Severity: SeverityWarning,
			Inspects: cet1Components[:7],
			Check:    checkCET1ComponentsPresent,
		},
		{
			ID:       "R-AT1-RATIO",
			Name:     "AT1 Share of Tier 1",
			Severity: SeverityWarning,
			Inspects: []template.RowID{template.Row300, template.Row310, template.Row320, template.Row400},
			Check:    checkAT1Ratio,
		},
		{
			ID:       "R-TIER2-LIMIT",
			Name:     "Tier 2 Below Tier 1",
			Severity: SeverityWarning,
			Inspects: []template.RowID{template.Row600, template.Row400},
			Check:    checkTier2Limit,
		},
	}
}

var cet1Components = []template.RowID{
	template.Row010, template.Row020, template.Row030, template.Row040,
	template.Row050, template.Row060, template.Row070, template.Row080, template.Row090,
}

func checkRequired(_ *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	var missing []template.RowID
	for _, id := range mandatoryRows {
		if rec.IsNull(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return false, fmt.Sprintf("mandatory rows not populated: %s", joinRows(missing)), missing
	}
	return true, "", nil
}

func checkCET1Consistency(reg *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	expected, expectedOK := sumRows(rec, reg.Dependencies(template.Row100))
	actual, actualOK := rec.Value(template.Row200)

	if !expectedOK && !actualOK {
		return true, "", nil
	}
	affected := append([]template.RowID{template.Row200}, cet1Components...)
	if expectedOK != actualOK || !finite(actual) || math.Abs(actual-expected) > Epsilon {
		return false, fmt.Sprintf("CET1 capital (%.2f) != sum of CET1 components and deductions (%.2f)", actual, expected), affected
	}
	return true, "", nil
}

func checkTier1Consistency(reg *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	expected, expectedOK := sumRows(rec, reg.Dependencies(template.Row400))
	actual, actualOK := rec.Value(template.Row400)

	if !expectedOK && !actualOK {
		return true, "", nil
	}
	affected := []template.RowID{template.Row400, template.Row200, template.Row300, template.Row310, template.Row320}
	if expectedOK != actualOK || !finite(actual) || math.Abs(actual-expected) > Epsilon {
		return false, fmt.Sprintf("Tier 1 capital (%.2f) != CET1 plus net AT1 (%.2f)", actual, expected), affected
	}
	return true, "", nil
}

func checkTotalConsistency(reg *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	expected, expectedOK := sumRows(rec, reg.Dependencies(template.Row700))
	actual, actualOK := rec.Value(template.Row700)

	if !expectedOK && !actualOK {
		return true, "", nil
	}
	affected := []template.RowID{template.Row700, template.Row400, template.Row600}
	if expectedOK != actualOK || !finite(actual) || math.Abs(actual-expected) > Epsilon {
		return false, fmt.Sprintf("total own funds (%.2f) != Tier 1 plus Tier 2 (%.2f)", actual, expected), affected
	}
	return true, "", nil
}

func checkNonNegativeCET1(_ *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	if v, ok := rec.Value(template.Row200); ok && v < 0 {
		return false,
			fmt.Sprintf("CET1 capital is negative (%.2f): deductions exceed capital instruments", v),
			[]template.RowID{template.Row200}
	}
	return true, "", nil
}

func checkDeductionSign(reg *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	var offending []template.RowID
	for _, def := range reg.DeductionRows() {
		if v, ok := rec.Value(def.ID); ok && v > 0 {
			offending = append(offending, def.ID)
		}
	}
	if len(offending) > 0 {
		return false, fmt.Sprintf("deduction rows must be non-positive: %s", joinRows(offending)), offending
	}
	return true, "", nil
}

func checkNonNegativeBase(_ *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	var offending []template.RowID
	for _, id := range []template.RowID{template.Row010, template.Row030} {
		if v, ok := rec.Value(id); ok && v < 0 {
			offending = append(offending, id)
		}
	}
	if len(offending) > 0 {
		return false, fmt.Sprintf("capital input rows must be non-negative: %s", joinRows(offending)), offending
	}
	return true, "", nil
}

func checkCET1ComponentsPresent(_ *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	components := cet1Components[:7]
	for _, id := range components {
		if v, ok := rec.Value(id); ok && v != 0 {
			return true, "", nil
		}
	}
	return false, "no CET1 capital components reported", components
}

func checkAT1Ratio(_ *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	at1, at1OK := sumRows(rec, []template.RowID{template.Row300, template.Row310, template.Row320})
	t1, t1OK := rec.Value(template.Row400)

	if at1OK && t1OK && t1 > 0 && at1 > 0 {
		ratio := at1 / t1
		if ratio > 0.33 {
			return false,
				fmt.Sprintf("AT1 is %.1f%% of Tier 1 (typically should be <=33%%)", ratio*100),
				[]template.RowID{template.Row300, template.Row400}
		}
	}
	return true, "", nil
}

func checkTier2Limit(_ *template.Registry, rec *template.Record) (bool, string, []template.RowID) {
	t1, t1OK := rec.Value(template.Row400)
	t2, t2OK := rec.Value(template.Row600)

	if t1OK && t2OK && t1 > 0 && t2 > t1 {
		return false,
			fmt.Sprintf("Tier 2 (%.2f) exceeds Tier 1 (%.2f)", t2, t1),
			[]template.RowID{template.Row600, template.Row400}
	}
	return true, "", nil
}

// sumRows nets the populated rows in ids; ok is false when every row is null.
func sumRows(rec *template.Record, ids []template.RowID) (float64, bool) {
	sum := 0.0
	populated := false
	for _, id := range ids {
		if v, ok := rec.Value(id); ok {
			sum += v
			populated = true
		}
	}
	return sum, populated
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func joinRows(ids []template.RowID) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += string(id)
	}
	return out
}
