package retrieval

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/regulatory_corpus.json
var corpusJSON []byte

// CorpusStore is a retrieval backend that can also be populated, used by the
// startup seeder.
type CorpusStore interface {
	Retriever
	Add(ctx context.Context, doc Document) error
	Count(ctx context.Context) (int, error)
}

type seedDocument struct {
	Reference string `json:"reference"`
	Article   string `json:"article"`
	Text      string `json:"text"`
}

// Seed loads the embedded sample corpus into an empty store. A non-empty
// store is left untouched so operator-loaded corpora survive restarts.
func Seed(ctx context.Context, store CorpusStore) (int, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	var docs []seedDocument
	if err := json.Unmarshal(corpusJSON, &docs); err != nil {
		return 0, fmt.Errorf("parse embedded corpus: %w", err)
	}

	for _, doc := range docs {
		err := store.Add(ctx, Document{
			Text:            doc.Text,
			SourceReference: doc.Reference,
			Article:         doc.Article,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(docs), nil
}
