package stats

import (
	"context"
	"errors"
	"os"
	"slices"
	"testing"
	"time"

	"github.com/pinterest/secor-admin/internal/apperrors"
	"github.com/redis/go-redis/v9"
)

func TestRegisteredSinks(t *testing.T) {
	names := RegisteredSinks()
	for _, want := range []string{"noop", "redis"} {
		if !slices.Contains(names, want) {
			t.Errorf("Expected %q in registered sinks %v", want, names)
		}
	}
}

func TestNewSink_Unknown(t *testing.T) {
	_, err := NewSink("kafka", SinkConfig{})
	if !errors.Is(err, &apperrors.ErrUnknownSink{}) {
		t.Fatalf("Expected ErrUnknownSink, got %v", err)
	}
}

func TestNewSink_Noop(t *testing.T) {
	s, err := NewSink("noop", SinkConfig{})
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	defer s.Close()

	if err := s.PublishLabel(context.Background(), "k", "v"); err != nil {
		t.Errorf("Expected noop publish to succeed, got %v", err)
	}
}

func TestRegisterSink_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	RegisterSink("noop", func(SinkConfig) (Sink, error) { return noopSink{}, nil })
}

func TestNewSink_RedisRequiresAddress(t *testing.T) {
	if _, err := NewSink("redis", SinkConfig{Instance: "host"}); err == nil {
		t.Error("Expected an error without a redis address")
	}
}

// TestRedisSink requires a running Redis/Valkey server.
// Set REDIS_ADDRESS (e.g., "localhost:6379") to enable it.
func TestRedisSink_PublishLabel(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("Skipping Redis tests: set REDIS_ADDRESS to enable")
	}

	s, err := NewSink("redis", SinkConfig{Instance: "sink-test", RedisAddress: addr, RedisDB: 15})
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.PublishLabel(ctx, "secor.build_revision", "rev42"); err != nil {
		t.Fatalf("PublishLabel: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()

	got, err := client.HGet(ctx, labelKeyPrefix+"sink-test", "secor.build_revision").Result()
	if err != nil {
		t.Fatalf("HGet: %v", err)
	}
	if got != "rev42" {
		t.Errorf("Expected rev42, got %q", got)
	}
	if ttl := client.TTL(ctx, labelKeyPrefix+"sink-test").Val(); ttl <= 0 {
		t.Errorf("Expected a positive TTL on the label hash, got %v", ttl)
	}
}
