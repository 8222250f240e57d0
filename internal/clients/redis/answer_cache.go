// Package redis holds the FAQ answer cache. Retrieval answers are
// deterministic for a given question, so caching them saves an embedding
// call and a vector query on repeat questions.
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/smaro-ai/agent-backend/internal/logger"
	"github.com/smaro-ai/agent-backend/internal/utils"
)

type AnswerCache interface {
	// Get returns the cached answer for a question, if any. Cache errors are
	// logged and reported as misses; the cache must never fail a lookup.
	Get(ctx context.Context, question string) (string, bool)
	// Set stores an answer. Failures are logged and ignored.
	Set(ctx context.Context, question, answer string)
	Close() error
}

type answerCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewAnswerCache(log *logger.Logger) (AnswerCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttlSeconds := utils.GetEnvAsInt("FAQ_CACHE_TTL_SECONDS", 3600, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &answerCache{
		log: log.With("client", "AnswerCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func (c *answerCache) Get(ctx context.Context, question string) (string, bool) {
	val, err := c.rdb.Get(ctx, cacheKey(question)).Result()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("answer cache read failed", "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *answerCache) Set(ctx context.Context, question, answer string) {
	if strings.TrimSpace(answer) == "" {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(question), answer, c.ttl).Err(); err != nil {
		c.log.Warn("answer cache write failed", "error", err)
	}
}

func (c *answerCache) Close() error {
	return c.rdb.Close()
}

func cacheKey(question string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return "faq:" + hex.EncodeToString(sum[:])[:16]
}
