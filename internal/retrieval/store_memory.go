package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryStore is a term-overlap corpus used in tests and when no Postgres
// DSN is configured. Scores are the fraction of query terms a passage
// contains, which keeps them in [0,1] like the Postgres ranking.
type InMemoryStore struct {
	mu   sync.RWMutex
	docs []Document
	topK int
}

func NewInMemoryStore(topK int) *InMemoryStore {
	return &InMemoryStore{topK: topK}
}

func (s *InMemoryStore) Add(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, doc)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

func (s *InMemoryStore) Retrieve(_ context.Context, query string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	var scored []Document
	for _, doc := range s.docs {
		text := strings.ToLower(doc.Text + " " + doc.SourceReference)
		matched := 0
		for _, term := range terms {
			if strings.Contains(text, term) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		doc.RelevanceScore = float64(matched) / float64(len(terms))
		scored = append(scored, doc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})
	if s.topK > 0 && len(scored) > s.topK {
		scored = scored[:s.topK]
	}
	return scored, nil
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:?!()\"'")
		if len(f) > 2 {
			terms = append(terms, f)
		}
	}
	return terms
}
