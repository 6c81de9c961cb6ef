//go:build integration

package retrieval_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"coreport/internal/retrieval"
	"coreport/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *retrieval.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = retrieval.NewPostgresStore(s.postgres.DB, 5)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "regulatory_documents"))
}

func (s *PostgresStoreSuite) seedCorpus(ctx context.Context) {
	docs := []retrieval.Document{
		{SourceReference: "CRR Article 26(1)", Article: "Article 26", Text: "Common Equity Tier 1 items consist of capital instruments, share premium accounts, retained earnings and other reserves."},
		{SourceReference: "CRR Article 62", Article: "Article 62", Text: "Tier 2 items comprise capital instruments and subordinated loans meeting the eligibility conditions."},
		{SourceReference: "CRR Article 36(1)(b)", Article: "Article 36", Text: "Institutions shall deduct goodwill and other intangible assets from Common Equity Tier 1 items."},
	}
	for _, doc := range docs {
		s.Require().NoError(s.store.Add(ctx, doc))
	}
}

func (s *PostgresStoreSuite) TestRetrieveRanksByRelevance() {
	ctx := context.Background()
	s.seedCorpus(ctx)

	docs, err := s.store.Retrieve(ctx, "common equity tier 1 retained earnings")
	s.Require().NoError(err)
	s.Require().NotEmpty(docs)

	s.Equal("CRR Article 26(1)", docs[0].SourceReference)
	for _, doc := range docs {
		s.GreaterOrEqual(doc.RelevanceScore, 0.0)
		s.LessOrEqual(doc.RelevanceScore, 1.0)
	}
	for i := 1; i < len(docs); i++ {
		s.GreaterOrEqual(docs[i-1].RelevanceScore, docs[i].RelevanceScore)
	}
}

func (s *PostgresStoreSuite) TestRetrieveNoMatches() {
	ctx := context.Background()
	s.seedCorpus(ctx)

	docs, err := s.store.Retrieve(ctx, "zebra population dynamics")
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *PostgresStoreSuite) TestSeedOnlyWhenEmpty() {
	ctx := context.Background()

	seeded, err := retrieval.Seed(ctx, s.store)
	s.Require().NoError(err)
	s.Positive(seeded)

	first, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(seeded, first)

	again, err := retrieval.Seed(ctx, s.store)
	s.Require().NoError(err)
	s.Zero(again)

	second, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(first, second)
}

func (s *PostgresStoreSuite) TestRetrieveHonorsContextCancellation() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := s.store.Retrieve(ctx, "capital")
	s.Error(err)
}
