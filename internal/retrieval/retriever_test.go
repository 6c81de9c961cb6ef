package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedPopulatesEmptyStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(5)

	n, err := Seed(ctx, store)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)

	// Seeding again is a no-op.
	n2, err := Seed(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, n2)
}

func TestInMemoryRetrieve(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(3)
	_, err := Seed(ctx, store)
	require.NoError(t, err)

	docs, err := store.Retrieve(ctx, "retained earnings Common Equity Tier 1")
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.LessOrEqual(t, len(docs), 3)

	// Best match first, scores in [0,1].
	for i, doc := range docs {
		assert.GreaterOrEqual(t, doc.RelevanceScore, 0.0)
		assert.LessOrEqual(t, doc.RelevanceScore, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, doc.RelevanceScore, docs[i-1].RelevanceScore)
		}
		assert.NotEmpty(t, doc.SourceReference)
	}
}

func TestInMemoryRetrieveNoMatch(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(5)
	require.NoError(t, store.Add(ctx, Document{Text: "Tier 2 subordinated loans", SourceReference: "CRR Article 62"}))

	docs, err := store.Retrieve(ctx, "zzzz qqqq")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
