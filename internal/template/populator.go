package template

import "math"

// Population is the populator's full output: the canonical record, the
// candidate that won each base row, and the inputs that were dropped.
type Population struct {
	Record   *Record
	Winners  map[RowID]FieldCandidate
	Rejected []MalformedCandidate
}

// Populate merges extraction candidates into a fresh record and recomputes
// every derived total. The merge is deterministic: for duplicate candidates
// on the same base row the higher relevance score wins, ties broken by input
// order (first wins). Candidates for derived rows are ignored so arithmetic
// correctness is never overridden by upstream extraction.
func Populate(reg *Registry, candidates []FieldCandidate, defaultCurrency string) *Population {
	pop := &Population{
		Winners: make(map[RowID]FieldCandidate),
	}

	currency := resolveCurrency(reg, candidates, defaultCurrency)
	pop.Record = NewRecord(currency)

	for _, cand := range candidates {
		def, known := reg.Lookup(RowID(cand.RowID))
		if !known {
			pop.reject(cand, RejectUnknownRow)
			continue
		}
		if def.Kind == KindDerived {
			// Derived rows are always recomputed below.
			continue
		}
		if cand.Value == nil || math.IsNaN(*cand.Value) || math.IsInf(*cand.Value, 0) {
			pop.reject(cand, RejectNonNumeric)
			continue
		}
		if cand.Currency != "" && cand.Currency != currency {
			pop.reject(cand, RejectCurrencyMismatch)
			continue
		}

		id := def.ID
		if winner, contested := pop.Winners[id]; !contested || cand.RelevanceScore > winner.RelevanceScore {
			pop.Winners[id] = cand
		}
	}

	for id, winner := range pop.Winners {
		pop.Record.set(id, *winner.Value)
	}

	computeDerived(reg, pop.Record)

	return pop
}

// computeDerived evaluates the fixed aggregation formulas in dependency
// order. A null dependency contributes zero; a derived row stays null only
// when every dependency is null.
func computeDerived(reg *Registry, rec *Record) {
	for _, def := range reg.DerivedRows() {
		sum := 0.0
		populated := false
		for _, dep := range reg.Dependencies(def.ID) {
			if v, ok := rec.Value(dep); ok {
				sum += v
				populated = true
			}
		}
		if populated {
			rec.set(def.ID, sum)
		}
	}
}

// resolveCurrency applies the single-currency rule: the first non-empty
// currency carried by a candidate that would survive the merge checks wins;
// later disagreeing candidates are rejected in the main loop so no
// mixed-currency arithmetic is attempted. Candidates that are themselves
// malformed (unknown row, derived row, non-numeric value) never govern the
// record currency.
func resolveCurrency(reg *Registry, candidates []FieldCandidate, fallback string) string {
	for _, cand := range candidates {
		if cand.Currency == "" {
			continue
		}
		def, known := reg.Lookup(RowID(cand.RowID))
		if !known || def.Kind == KindDerived {
			continue
		}
		if cand.Value == nil || math.IsNaN(*cand.Value) || math.IsInf(*cand.Value, 0) {
			continue
		}
		return cand.Currency
	}
	return fallback
}

func (p *Population) reject(cand FieldCandidate, reason string) {
	p.Rejected = append(p.Rejected, MalformedCandidate{RowID: cand.RowID, Reason: reason})
}
