// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Chat metrics
	IncMessageSent(provider string)
	IncGenerationFailure(provider string)
	ObserveGenerationDuration(provider string, duration time.Duration)

	// Conversation management metrics
	IncConversationCreated()
	IncConversationDeleted()

	// Usage pipeline metrics
	IncUsageEventPublished(status string) // status: "success" or "dropped"
	IncUsageEventProcessed(status string) // status: "success", "failed", "skipped"
	ObserveUsageBatchSize(size int)
	ObserveUsageBatchDuration(duration time.Duration)
	SetUsageQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
