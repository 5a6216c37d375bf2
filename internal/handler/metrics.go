package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/chatforge/chatforge/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeCounterByLabel(w, "chatforge_messages_sent_total", "provider", snap.MessagesSent)
	writeCounterByLabel(w, "chatforge_generation_failures_total", "provider", snap.GenerationFailures)
	writeMetric(w, "chatforge_generation_duration_seconds_count %d\n", snap.GenerationDurationCount)
	writeMetric(w, "chatforge_generation_duration_seconds_sum %.6f\n", float64(snap.GenerationDurationTotalNs)/1e9)

	writeMetric(w, "chatforge_conversations_created_total %d\n", snap.ConversationsCreated)
	writeMetric(w, "chatforge_conversations_deleted_total %d\n", snap.ConversationsDeleted)

	writeCounterByLabel(w, "chatforge_usage_events_published_total", "status", snap.UsageEventsPublished)
	writeCounterByLabel(w, "chatforge_usage_events_processed_total", "status", snap.UsageEventsProcessed)
}

// writeCounterByLabel emits one series per label value in stable order.
func writeCounterByLabel(w http.ResponseWriter, name, label string, values map[string]uint64) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeMetric(w, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
