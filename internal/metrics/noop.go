package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncMessageSent is a no-op.
func (n *NoopRecorder) IncMessageSent(provider string) {}

// IncGenerationFailure is a no-op.
func (n *NoopRecorder) IncGenerationFailure(provider string) {}

// ObserveGenerationDuration is a no-op.
func (n *NoopRecorder) ObserveGenerationDuration(provider string, duration time.Duration) {}

// IncConversationCreated is a no-op.
func (n *NoopRecorder) IncConversationCreated() {}

// IncConversationDeleted is a no-op.
func (n *NoopRecorder) IncConversationDeleted() {}

// IncUsageEventPublished is a no-op.
func (n *NoopRecorder) IncUsageEventPublished(status string) {}

// IncUsageEventProcessed is a no-op.
func (n *NoopRecorder) IncUsageEventProcessed(status string) {}

// ObserveUsageBatchSize is a no-op.
func (n *NoopRecorder) ObserveUsageBatchSize(size int) {}

// ObserveUsageBatchDuration is a no-op.
func (n *NoopRecorder) ObserveUsageBatchDuration(duration time.Duration) {}

// SetUsageQueueDepth is a no-op.
func (n *NoopRecorder) SetUsageQueueDepth(depth int64) {}
