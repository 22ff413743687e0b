// Package stats holds the process-wide stats namespace: named labels,
// counters and gauges that the admin service exports.
package stats

import (
	"context"
	"maps"
	"regexp"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Snapshot is a point-in-time copy of a namespace.
type Snapshot struct {
	Counters map[string]int64   `json:"counters"`
	Gauges   map[string]float64 `json:"gauges"`
	Labels   map[string]string  `json:"labels"`
}

// Namespace is a concurrency-safe store of labels, counters and gauges.
// The zero value is not usable; use NewNamespace or Default.
type Namespace struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]float64
	labels   map[string]string

	// last counter values seen by Latch, per period
	latchBase map[time.Duration]map[string]int64
	latched   map[time.Duration]Snapshot

	sinkMu sync.RWMutex
	sinks  []Sink
	logger zerolog.Logger
}

var defaultNamespace = NewNamespace(zerolog.Nop())

// Default returns the process-wide namespace.
func Default() *Namespace {
	return defaultNamespace
}

// NewNamespace creates an empty namespace. Sink failures are reported to logger.
func NewNamespace(logger zerolog.Logger) *Namespace {
	return &Namespace{
		counters:  make(map[string]int64),
		gauges:    make(map[string]float64),
		labels:    make(map[string]string),
		latchBase: make(map[time.Duration]map[string]int64),
		latched:   make(map[time.Duration]Snapshot),
		logger:    logger,
	}
}

// SetLogger replaces the logger used to report sink failures.
func (n *Namespace) SetLogger(logger zerolog.Logger) {
	n.sinkMu.Lock()
	defer n.sinkMu.Unlock()
	n.logger = logger
}

// AddSink registers a sink that mirrors every label write.
func (n *Namespace) AddSink(s Sink) {
	if s == nil {
		return
	}
	n.sinkMu.Lock()
	defer n.sinkMu.Unlock()
	n.sinks = append(n.sinks, s)
}

// SetLabel binds key to value, overwriting any previous value, and mirrors
// the write to the registered sinks.
func (n *Namespace) SetLabel(key, value string) {
	n.mu.Lock()
	n.labels[key] = value
	n.mu.Unlock()

	n.sinkMu.RLock()
	sinks := n.sinks
	logger := n.logger
	n.sinkMu.RUnlock()

	for _, s := range sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		err := s.PublishLabel(ctx, key, value)
		cancel()
		if err != nil {
			logger.Error().Err(err).Str("key", key).Str("sink", s.Name()).Msg("Failed to mirror stats label")
		}
	}
}

// Label returns the value bound to key.
func (n *Namespace) Label(key string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.labels[key]
	return v, ok
}

// Labels returns a copy of all labels.
func (n *Namespace) Labels() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return maps.Clone(n.labels)
}

// Incr adds delta to the named counter and returns the new value.
func (n *Namespace) Incr(name string, delta int64) int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counters[name] += delta
	return n.counters[name]
}

// SetGauge sets the named gauge.
func (n *Namespace) SetGauge(name string, value float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gauges[name] = value
}

// Snapshot returns a copy of the current values.
func (n *Namespace) Snapshot() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return Snapshot{
		Counters: maps.Clone(n.counters),
		Gauges:   maps.Clone(n.gauges),
		Labels:   maps.Clone(n.labels),
	}
}

// Latch records the current values for period. Counters in the latched
// snapshot are the increase since the previous Latch call for the same period.
func (n *Namespace) Latch(period time.Duration) Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()

	base := n.latchBase[period]
	deltas := make(map[string]int64, len(n.counters))
	for name, v := range n.counters {
		deltas[name] = v - base[name]
	}
	n.latchBase[period] = maps.Clone(n.counters)

	snap := Snapshot{
		Counters: deltas,
		Gauges:   maps.Clone(n.gauges),
		Labels:   maps.Clone(n.labels),
	}
	n.latched[period] = snap
	return snap
}

// Latched returns the last snapshot recorded for period.
func (n *Namespace) Latched(period time.Duration) (Snapshot, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	snap, ok := n.latched[period]
	return snap, ok
}

// Filter returns a copy of snap without the entries whose names match any of filters.
func Filter(snap Snapshot, filters []*regexp.Regexp) Snapshot {
	if len(filters) == 0 {
		return snap
	}
	excluded := func(name string) bool {
		for _, re := range filters {
			if re.MatchString(name) {
				return true
			}
		}
		return false
	}

	out := Snapshot{
		Counters: make(map[string]int64),
		Gauges:   make(map[string]float64),
		Labels:   make(map[string]string),
	}
	for k, v := range snap.Counters {
		if !excluded(k) {
			out.Counters[k] = v
		}
	}
	for k, v := range snap.Gauges {
		if !excluded(k) {
			out.Gauges[k] = v
		}
	}
	for k, v := range snap.Labels {
		if !excluded(k) {
			out.Labels[k] = v
		}
	}
	return out
}
