// Package confidence maps raw retrieval relevance signals into the
// categorical buckets reported on audit entries.
package confidence

import "strings"

// Relevance is the categorical confidence bucket for a cited source.
type Relevance string

const (
	RelevanceHigh          Relevance = "High"
	RelevanceMedium        Relevance = "Medium"
	RelevanceLow           Relevance = "Low"
	RelevanceNotApplicable Relevance = "N/A"
)

// Score buckets a raw relevance score in [0,1]. Absent signals score zero
// and bucket to N/A.
func Score(relevance float64) Relevance {
	switch {
	case relevance >= 0.8:
		return RelevanceHigh
	case relevance >= 0.5:
		return RelevanceMedium
	case relevance > 0:
		return RelevanceLow
	default:
		return RelevanceNotApplicable
	}
}

// HasSourceReference reports whether a citation is present after trimming.
func HasSourceReference(ref string) bool {
	return strings.TrimSpace(ref) != ""
}
