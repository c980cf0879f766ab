package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthCacheHits       uint64 `json:"auth_cache_hits"`
	AuthCacheMisses     uint64 `json:"auth_cache_misses"`
	AuthDurationCount   uint64 `json:"auth_duration_count"`
	AuthDurationTotalNs int64  `json:"auth_duration_total_ns"`
	ExpensesCreated     uint64 `json:"expenses_created"`
	ExpensesUpdated     uint64 `json:"expenses_updated"`
	ExpensesDeactivated uint64 `json:"expenses_deactivated"`
	ExpensesActivated   uint64 `json:"expenses_activated"`
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	authCacheHits       uint64
	authCacheMisses     uint64
	authDurationCount   uint64
	authDurationTotalNs int64
	expensesCreated     uint64
	expensesUpdated     uint64
	expensesDeactivated uint64
	expensesActivated   uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		AuthCacheHits:       atomic.LoadUint64(&m.authCacheHits),
		AuthCacheMisses:     atomic.LoadUint64(&m.authCacheMisses),
		AuthDurationCount:   atomic.LoadUint64(&m.authDurationCount),
		AuthDurationTotalNs: atomic.LoadInt64(&m.authDurationTotalNs),
		ExpensesCreated:     atomic.LoadUint64(&m.expensesCreated),
		ExpensesUpdated:     atomic.LoadUint64(&m.expensesUpdated),
		ExpensesDeactivated: atomic.LoadUint64(&m.expensesDeactivated),
		ExpensesActivated:   atomic.LoadUint64(&m.expensesActivated),
	}
}

// IncAuthCacheHit increments the auth cache hit counter.
func (m *InMemoryRecorder) IncAuthCacheHit() {
	atomic.AddUint64(&m.authCacheHits, 1)
}

// IncAuthCacheMiss increments the auth cache miss counter.
func (m *InMemoryRecorder) IncAuthCacheMiss() {
	atomic.AddUint64(&m.authCacheMisses, 1)
}

// ObserveAuthDuration records token verification duration.
func (m *InMemoryRecorder) ObserveAuthDuration(duration time.Duration) {
	atomic.AddUint64(&m.authDurationCount, 1)
	atomic.AddInt64(&m.authDurationTotalNs, duration.Nanoseconds())
}

// IncExpenseCreated increments the expense created counter.
func (m *InMemoryRecorder) IncExpenseCreated() {
	atomic.AddUint64(&m.expensesCreated, 1)
}

// IncExpenseUpdated increments the expense updated counter.
func (m *InMemoryRecorder) IncExpenseUpdated() {
	atomic.AddUint64(&m.expensesUpdated, 1)
}

// IncExpenseDeactivated increments the expense deactivated counter.
func (m *InMemoryRecorder) IncExpenseDeactivated() {
	atomic.AddUint64(&m.expensesDeactivated, 1)
}

// IncExpenseActivated increments the expense activated counter.
func (m *InMemoryRecorder) IncExpenseActivated() {
	atomic.AddUint64(&m.expensesActivated, 1)
}
