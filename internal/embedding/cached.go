package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pageza/chefai/backend/internal/metrics"
	"github.com/pageza/chefai/backend/internal/recommend"
)

// ErrCacheMiss is returned by a Cache when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the string key/value store the CachedEmbedder writes through.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Named is implemented by embedders that can identify their model.
type Named interface {
	Name() string
}

// CachedEmbedder serves embeddings from a cache and falls back to the wrapped embedder.
// Cache failures are logged and never fail Encode.
type CachedEmbedder struct {
	inner  recommend.TextEmbedder
	cache  Cache
	model  string
	ttl    time.Duration
	logger zerolog.Logger
}

var _ recommend.TextEmbedder = (*CachedEmbedder)(nil)

//nolint:gocritic // zerolog.Logger is passed by value
func NewCachedEmbedder(inner recommend.TextEmbedder, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedEmbedder {
	model := fmt.Sprintf("%T", inner)
	if n, ok := inner.(Named); ok {
		model = n.Name()
	}
	return &CachedEmbedder{
		inner:  inner,
		cache:  cache,
		model:  model,
		ttl:    ttl,
		logger: logger.With().Str("component", "embedding-cache").Logger(),
	}
}

func (c *CachedEmbedder) Name() string {
	return c.model
}

// Key returns the cache key for text under this embedder's model.
func (c *CachedEmbedder) Key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) Encode(ctx context.Context, text string) ([]float32, error) {
	key := c.Key(text)

	raw, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		vec, decodeErr := decodeVector(raw)
		if decodeErr == nil {
			metrics.EmbeddingCacheHits.Inc()
			return vec, nil
		}
		c.logger.Warn().Err(decodeErr).Str("key", key).Msg("discarding unreadable cached embedding")
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn().Err(err).Msg("embedding cache read failed")
	}
	metrics.EmbeddingCacheMisses.Inc()

	vec, err := c.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}

	encoded, err := encodeVector(vec)
	if err == nil {
		err = c.cache.Set(ctx, key, encoded, c.ttl)
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("embedding cache write failed")
	}
	return vec, nil
}

// encodeVector renders vec in pgvector's text form, e.g. "[1,2,3]".
func encodeVector(vec []float32) (string, error) {
	v, err := pgvector.NewVector(vec).Value()
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected vector encoding %T", v)
	}
	return s, nil
}

func decodeVector(s string) ([]float32, error) {
	var v pgvector.Vector
	if err := v.Scan(s); err != nil {
		return nil, err
	}
	return v.Slice(), nil
}

// RedisCache adapts a Redis client to Cache.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	return val, err
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}
