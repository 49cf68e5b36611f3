package predictions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dermassist/skin-triage-platform/pkg/logging"
)

// CachedResult is what the classifier path stores per image hash. The same
// bytes against the same model version always classify identically, so a hit
// skips the inference round-trip entirely.
type CachedResult struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
	Index       int     `json:"index"`
}

// ResultCache is a Redis-backed idempotency cache keyed by image digest and
// model version. All operations are best-effort; a Redis outage degrades to
// cache misses.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewResultCache creates a cache. Returns nil when client is nil so callers
// can treat caching as optional.
func NewResultCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *ResultCache {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{client: client, ttl: ttl, logger: logger}
}

// Key derives the cache key for an image payload under a model version.
func Key(imageBytes []byte, modelVersion string) string {
	digest := sha256.Sum256(imageBytes)
	return fmt.Sprintf("triage:result:%s:%s", modelVersion, hex.EncodeToString(digest[:]))
}

// Get returns the cached result, or nil on miss or Redis failure.
func (c *ResultCache) Get(ctx context.Context, key string) *CachedResult {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("result cache read failed", "error", err)
		}
		return nil
	}
	var res CachedResult
	if err := json.Unmarshal(raw, &res); err != nil {
		c.logger.Warn("result cache entry corrupt, ignoring", "error", err)
		return nil
	}
	return &res
}

// Put stores the result, logging and swallowing failures.
func (c *ResultCache) Put(ctx context.Context, key string, res CachedResult) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("result cache write failed", "error", err)
	}
}
