// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncAuthCacheHit()
	IncAuthCacheMiss()
	ObserveAuthDuration(duration time.Duration)

	// Expense lifecycle metrics
	IncExpenseCreated()
	IncExpenseUpdated()
	IncExpenseDeactivated()
	IncExpenseActivated()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
