package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// labelKeyPrefix namespaces the per-instance label hashes in Redis.
	labelKeyPrefix = "secor:labels:"

	// labelTTL lets hashes of instances that stopped reporting expire.
	labelTTL = 7 * 24 * time.Hour
)

func init() {
	RegisterSink("redis", newRedisSink)
}

// redisSink mirrors labels into a Redis/Valkey hash named
// {prefix}{instance}, one field per label key. Operators can read every
// instance's build revision with HGETALL without scraping each process.
type redisSink struct {
	client *redis.Client
	key    string
}

func newRedisSink(cfg SinkConfig) (Sink, error) {
	if cfg.RedisAddress == "" {
		return nil, fmt.Errorf("stats: redis sink requires an address")
	}
	if cfg.Instance == "" {
		return nil, fmt.Errorf("stats: redis sink requires an instance name")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("stats: redis ping %s: %w", cfg.RedisAddress, err)
	}

	return &redisSink{
		client: client,
		key:    labelKeyPrefix + cfg.Instance,
	}, nil
}

func (s *redisSink) Name() string {
	return "redis"
}

func (s *redisSink) PublishLabel(ctx context.Context, key, value string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key, key, value)
	pipe.Expire(ctx, s.key, labelTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("stats: redis publish %s: %w", key, err)
	}
	return nil
}

func (s *redisSink) Close() error {
	return s.client.Close()
}
