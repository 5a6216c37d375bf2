package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	MessagesSent              map[string]uint64
	GenerationFailures        map[string]uint64
	GenerationDurationCount   uint64
	GenerationDurationTotalNs int64
	ConversationsCreated      uint64
	ConversationsDeleted      uint64
	UsageEventsPublished      map[string]uint64
	UsageEventsProcessed      map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu                        sync.Mutex
	messagesSent              map[string]uint64
	generationFailures        map[string]uint64
	usageEventsPublished      map[string]uint64
	usageEventsProcessed      map[string]uint64
	generationDurationCount   uint64
	generationDurationTotalNs int64
	conversationsCreated      uint64
	conversationsDeleted      uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		messagesSent:         make(map[string]uint64),
		generationFailures:   make(map[string]uint64),
		usageEventsPublished: make(map[string]uint64),
		usageEventsProcessed: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		MessagesSent:              copyCounters(m.messagesSent),
		GenerationFailures:        copyCounters(m.generationFailures),
		GenerationDurationCount:   atomic.LoadUint64(&m.generationDurationCount),
		GenerationDurationTotalNs: atomic.LoadInt64(&m.generationDurationTotalNs),
		ConversationsCreated:      atomic.LoadUint64(&m.conversationsCreated),
		ConversationsDeleted:      atomic.LoadUint64(&m.conversationsDeleted),
		UsageEventsPublished:      copyCounters(m.usageEventsPublished),
		UsageEventsProcessed:      copyCounters(m.usageEventsProcessed),
	}
}

// IncMessageSent increments the per-provider sent counter.
func (m *InMemoryRecorder) IncMessageSent(provider string) {
	m.mu.Lock()
	m.messagesSent[provider]++
	m.mu.Unlock()
}

// IncGenerationFailure increments the per-provider failure counter.
func (m *InMemoryRecorder) IncGenerationFailure(provider string) {
	m.mu.Lock()
	m.generationFailures[provider]++
	m.mu.Unlock()
}

// ObserveGenerationDuration records how long a provider round-trip took.
func (m *InMemoryRecorder) ObserveGenerationDuration(provider string, duration time.Duration) {
	atomic.AddUint64(&m.generationDurationCount, 1)
	atomic.AddInt64(&m.generationDurationTotalNs, duration.Nanoseconds())
}

// IncConversationCreated increments the conversation created counter.
func (m *InMemoryRecorder) IncConversationCreated() {
	atomic.AddUint64(&m.conversationsCreated, 1)
}

// IncConversationDeleted increments the conversation deleted counter.
func (m *InMemoryRecorder) IncConversationDeleted() {
	atomic.AddUint64(&m.conversationsDeleted, 1)
}

// IncUsageEventPublished increments the publish counter for a status.
func (m *InMemoryRecorder) IncUsageEventPublished(status string) {
	m.mu.Lock()
	m.usageEventsPublished[status]++
	m.mu.Unlock()
}

// IncUsageEventProcessed increments the processed counter for a status.
func (m *InMemoryRecorder) IncUsageEventProcessed(status string) {
	m.mu.Lock()
	m.usageEventsProcessed[status]++
	m.mu.Unlock()
}

// ObserveUsageBatchSize is recorded only by exporting implementations.
func (m *InMemoryRecorder) ObserveUsageBatchSize(size int) {}

// ObserveUsageBatchDuration is recorded only by exporting implementations.
func (m *InMemoryRecorder) ObserveUsageBatchDuration(duration time.Duration) {}

// SetUsageQueueDepth is recorded only by exporting implementations.
func (m *InMemoryRecorder) SetUsageQueueDepth(depth int64) {}

func copyCounters(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
