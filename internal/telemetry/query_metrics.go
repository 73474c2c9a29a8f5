// Package telemetry collects in-process query metrics: which retrieval
// stage answered, how long it took, and how often queries come back
// empty. Everything stays in memory; nothing is reported anywhere.
package telemetry

import (
	"sync"
	"time"
)

// defaultCapacity bounds the retained event window.
const defaultCapacity = 256

// QueryEvent describes one completed retrieval.
type QueryEvent struct {
	DocumentID  string
	Stage       string
	Widened     bool
	ResultCount int
	Latency     time.Duration
	Timestamp   time.Time
}

// IsZeroResult reports whether the query found nothing.
func (e QueryEvent) IsZeroResult() bool {
	return e.ResultCount == 0
}

// ringBuffer keeps the most recent items up to a fixed capacity.
type ringBuffer[T any] struct {
	items []T
	next  int
	full  bool
}

func newRingBuffer[T any](capacity int) *ringBuffer[T] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &ringBuffer[T]{items: make([]T, 0, capacity)}
}

func (b *ringBuffer[T]) add(item T) {
	if !b.full {
		b.items = append(b.items, item)
		if len(b.items) == cap(b.items) {
			b.full = true
		}
		return
	}
	b.items[b.next] = item
	b.next = (b.next + 1) % len(b.items)
}

// ordered returns the retained items, oldest first.
func (b *ringBuffer[T]) ordered() []T {
	out := make([]T, 0, len(b.items))
	if b.full {
		out = append(out, b.items[b.next:]...)
		out = append(out, b.items[:b.next]...)
		return out
	}
	return append(out, b.items...)
}

// Snapshot is an aggregate view over the retained event window.
type Snapshot struct {
	TotalQueries int
	ZeroResults  int
	Widened      int
	StageCounts  map[string]int
	AvgLatency   time.Duration
	Events       []QueryEvent
}

// ZeroResultRate returns the fraction of retained queries that found
// nothing.
func (s Snapshot) ZeroResultRate() float64 {
	if s.TotalQueries == 0 {
		return 0
	}
	return float64(s.ZeroResults) / float64(s.TotalQueries)
}

// QueryMetrics is a concurrency-safe collector of recent query events.
type QueryMetrics struct {
	mu     sync.Mutex
	events *ringBuffer[QueryEvent]
}

// NewQueryMetrics creates a collector retaining the given number of
// events; zero gets a default.
func NewQueryMetrics(capacity int) *QueryMetrics {
	return &QueryMetrics{events: newRingBuffer[QueryEvent](capacity)}
}

// Record adds one event.
func (m *QueryMetrics) Record(event QueryEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events.add(event)
}

// Snapshot aggregates the retained window.
func (m *QueryMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	events := m.events.ordered()
	m.mu.Unlock()

	snap := Snapshot{
		TotalQueries: len(events),
		StageCounts:  make(map[string]int),
		Events:       events,
	}

	var totalLatency time.Duration
	for _, e := range events {
		if e.IsZeroResult() {
			snap.ZeroResults++
		}
		if e.Widened {
			snap.Widened++
		}
		if e.Stage != "" {
			snap.StageCounts[e.Stage]++
		}
		totalLatency += e.Latency
	}
	if len(events) > 0 {
		snap.AvgLatency = totalLatency / time.Duration(len(events))
	}
	return snap
}
