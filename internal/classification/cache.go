package classification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-triage/internal/domain"
)

const cacheKeyPrefix = "ticket-triage:classify:"

// ResultCache stores classification results by key. A failed Get is a miss.
type ResultCache interface {
	Get(ctx context.Context, key string) (domain.ClassificationResult, bool)
	Set(ctx context.Context, key string, result domain.ClassificationResult)
}

type cachedResult struct {
	Category *domain.TicketCategory `json:"category"`
	Priority *domain.TicketPriority `json:"priority"`
}

// RedisCache keeps results in Redis with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a nil ResultCache when the client is nil or ttl is
// not positive, which the gateway treats as "no cache".
func NewRedisCache(client *redis.Client, ttl time.Duration) ResultCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (domain.ClassificationResult, bool) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		return domain.ClassificationResult{}, false
	}
	var cached cachedResult
	if err := json.Unmarshal(raw, &cached); err != nil {
		return domain.ClassificationResult{}, false
	}
	// Re-validate so a stale or foreign entry cannot surface an unknown value.
	result := domain.ClassificationResult{}
	if cached.Category != nil && cached.Category.IsValid() {
		result.Category = cached.Category
	}
	if cached.Priority != nil && cached.Priority.IsValid() {
		result.Priority = cached.Priority
	}
	if result.Empty() {
		return domain.ClassificationResult{}, false
	}
	return result, true
}

func (c *RedisCache) Set(ctx context.Context, key string, result domain.ClassificationResult) {
	raw, err := json.Marshal(cachedResult{Category: result.Category, Priority: result.Priority})
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, cacheKeyPrefix+key, raw, c.ttl).Err()
}

// CacheKey derives the cache key for a description under a provider and model.
func CacheKey(provider, model, description string) string {
	sum := sha256.Sum256([]byte(provider + "|" + model + "|" + description))
	return hex.EncodeToString(sum[:])
}
