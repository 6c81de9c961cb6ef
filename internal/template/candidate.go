package template

// FieldCandidate is one extracted value proposed for a base row, as produced
// by the extraction collaborator. RowID is kept as a raw string because the
// extractor may reference rows the schema does not know.
type FieldCandidate struct {
	RowID           string
	Value           *float64
	Currency        string
	SourceReference string
	Reasoning       string
	// RelevanceScore is the retrieval/extraction confidence signal in [0,1].
	// Zero means the signal is absent.
	RelevanceScore float64
}

// Rejection reasons for malformed candidates.
const (
	RejectUnknownRow       = "unknown row id"
	RejectNonNumeric       = "non-numeric value"
	RejectCurrencyMismatch = "currency mismatch"
)

// MalformedCandidate records a dropped input candidate. Malformed candidates
// never abort the pipeline; they are reported for audit as unresolved inputs.
type MalformedCandidate struct {
	RowID  string
	Reason string
}
