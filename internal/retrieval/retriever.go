// Package retrieval supplies regulatory text passages to the extraction
// step. Scoring lives in the backing store; the pipeline consumes only the
// Retriever interface.
package retrieval

import "context"

// Document is a regulatory passage with its citation and a relevance score
// in [0,1] for the query that retrieved it.
type Document struct {
	Text            string  `json:"text"`
	SourceReference string  `json:"source_reference"`
	Article         string  `json:"article,omitempty"`
	RelevanceScore  float64 `json:"relevance_score"`
}

// Retriever returns the most relevant passages for a query, best first.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Document, error)
}
