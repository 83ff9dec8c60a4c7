package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"pdf2docx/internal/infra/logging"
)

const (
	keyPrefix  = "docxcache:"
	opTimeout  = time.Second
	defaultTTL = time.Minute
)

// DocxCache stores converted documents in Redis keyed by the hash of the source PDF.
type DocxCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a cache backed by rdb. A nil client yields a nil cache,
// on which Get always misses and Set does nothing.
func New(rdb *redis.Client, ttl time.Duration) *DocxCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &DocxCache{rdb: rdb, ttl: ttl}
}

// Key derives the cache key for a PDF document.
func Key(pdf []byte) string {
	sum := sha256.Sum256(pdf)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached document for key. Redis errors count as a miss.
func (c *DocxCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.Warn("Redis read failed", "error", err)
		return nil, false
	}
	logging.Info("DOCX cache hit", "key", key)
	return data, true
}

// Set stores data under key for the configured TTL.
func (c *DocxCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logging.Warn("Redis write failed", "error", err)
	}
}
