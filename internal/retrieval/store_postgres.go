package retrieval

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore holds the regulatory corpus in PostgreSQL and scores
// passages with full-text ranking. ts_rank_cd with normalization keeps
// scores comparable across documents.
type PostgresStore struct {
	db   *sql.DB
	topK int
}

func NewPostgresStore(db *sql.DB, topK int) *PostgresStore {
	return &PostgresStore{db: db, topK: topK}
}

// EnsureSchema creates the corpus table and its search index when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS regulatory_documents (
			id BIGSERIAL PRIMARY KEY,
			reference TEXT NOT NULL,
			article TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			search TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', content)) STORED
		);
		CREATE INDEX IF NOT EXISTS regulatory_documents_search_idx
			ON regulatory_documents USING GIN (search);
	`)
	if err != nil {
		return fmt.Errorf("ensure regulatory_documents schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Add(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO regulatory_documents (reference, article, content)
		VALUES ($1, $2, $3)
	`, doc.SourceReference, doc.Article, doc.Text)
	if err != nil {
		return fmt.Errorf("insert regulatory document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regulatory_documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count regulatory documents: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Retrieve(ctx context.Context, query string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference, article, content,
		       LEAST(ts_rank_cd(search, q, 32), 1.0) AS score
		FROM regulatory_documents,
		     plainto_tsquery('english', $1) q
		WHERE search @@ q
		ORDER BY score DESC, id
		LIMIT $2
	`, query, s.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve regulatory documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.SourceReference, &doc.Article, &doc.Text, &doc.RelevanceScore); err != nil {
			return nil, fmt.Errorf("scan regulatory document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
