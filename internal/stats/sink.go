package stats

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pinterest/secor-admin/internal/apperrors"
)

// sinkTimeout bounds a single label mirror write.
const sinkTimeout = 2 * time.Second

// Sink receives a copy of every label written to a namespace.
// Implementations may forward labels to an external store.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string

	// PublishLabel stores key=value. Repeated calls overwrite.
	PublishLabel(ctx context.Context, key, value string) error

	// Close releases any resources held by the sink.
	Close() error
}

// SinkConfig holds the configuration needed to create a sink.
type SinkConfig struct {
	// Instance identifies this process among the fleet (usually the hostname).
	Instance string

	// RedisAddress is the Redis/Valkey server address (e.g., "localhost:6379").
	RedisAddress string

	// RedisPassword is the password for the Redis/Valkey server.
	RedisPassword string

	// RedisDB is the Redis/Valkey database number.
	RedisDB int
}

// SinkProvider is a constructor function that creates a Sink from config.
type SinkProvider func(cfg SinkConfig) (Sink, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]SinkProvider)
)

func init() {
	RegisterSink("noop", func(SinkConfig) (Sink, error) { return noopSink{}, nil })
}

// RegisterSink registers a sink provider under the given name.
// It panics if the name is already registered or the provider is nil.
func RegisterSink(name string, p SinkProvider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("stats: RegisterSink provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("stats: sink provider %q already registered", name))
	}
	providers[name] = p
}

// NewSink creates a Sink using the named provider and the given config.
func NewSink(name string, cfg SinkConfig) (Sink, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, &apperrors.ErrUnknownSink{Name: name, Registered: RegisteredSinks()}
	}
	return p(cfg)
}

// RegisteredSinks returns a sorted list of registered provider names.
func RegisteredSinks() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type noopSink struct{}

func (noopSink) Name() string { return "noop" }
func (noopSink) PublishLabel(context.Context, string, string) error { return nil }
func (noopSink) Close() error { return nil }
