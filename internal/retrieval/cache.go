package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Retriever with a Redis read-through cache keyed by a query
// hash. Cache failures degrade to the underlying retriever, never the
// request.
type Cache struct {
	next   Retriever
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCache(next Retriever, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *Cache) Retrieve(ctx context.Context, query string) ([]Document, error) {
	key := cacheKey(query)

	if payload, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var docs []Document
		if err := json.Unmarshal(payload, &docs); err == nil {
			return docs, nil
		}
	} else if err != redis.Nil && c.logger != nil {
		c.logger.WarnContext(ctx, "retrieval cache read failed", "error", err)
	}

	docs, err := c.next.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(docs); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil && c.logger != nil {
			c.logger.WarnContext(ctx, "retrieval cache write failed", "error", err)
		}
	}
	return docs, nil
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "coreport:retrieval:" + hex.EncodeToString(sum[:])
}
