package handler

import (
	"fmt"
	"net/http"

	"github.com/expentra/expentra/internal/metrics"
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

	writeMetric(w, "expentra_auth_cache_hits_total %d\n", snap.AuthCacheHits)
	writeMetric(w, "expentra_auth_cache_misses_total %d\n", snap.AuthCacheMisses)
	writeMetric(w, "expentra_auth_duration_seconds_count %d\n", snap.AuthDurationCount)
	writeMetric(w, "expentra_auth_duration_seconds_sum %.6f\n", float64(snap.AuthDurationTotalNs)/1e9)

	writeMetric(w, "expentra_expenses_created_total %d\n", snap.ExpensesCreated)
	writeMetric(w, "expentra_expenses_updated_total %d\n", snap.ExpensesUpdated)
	writeMetric(w, "expentra_expenses_deactivated_total %d\n", snap.ExpensesDeactivated)
	writeMetric(w, "expentra_expenses_activated_total %d\n", snap.ExpensesActivated)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
