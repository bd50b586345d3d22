// Package metrics collects observability counters for the snippet executor,
// the async poller, and the presentation builder.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics records timing and outcome counters across mdslide's subsystems.
type Metrics interface {
	// RecordSnippetExecution records one snippet run.
	RecordSnippetExecution(snippetID string, duration time.Duration, success bool)
	// RecordPoll records one async-poller tick.
	RecordPoll(pending int, duration time.Duration)
	// RecordBuild records one presentation build (full parse-to-slides pass).
	RecordBuild(slideCount int, duration time.Duration, success bool)
	// GetSnapshot returns the current metrics snapshot.
	GetSnapshot() Snapshot
	// Reset clears all metrics. Useful for tests and HardReload.
	Reset()
}

// Snapshot is a point-in-time view of collected metrics.
type Snapshot struct {
	SnippetExecutions ExecutionMetrics
	Builds            ExecutionMetrics
	TotalPolls        int64
	LastPollTime      time.Time
	LastBuildTime     time.Time
}

// ExecutionMetrics tracks counted operations of a single kind.
type ExecutionMetrics struct {
	Total     int64
	Success   int64
	Failed    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// NoOpMetrics discards everything. The default for headless export runs.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordSnippetExecution(string, time.Duration, bool) {}
func (NoOpMetrics) RecordPoll(int, time.Duration)                      {}
func (NoOpMetrics) RecordBuild(int, time.Duration, bool)               {}
func (NoOpMetrics) GetSnapshot() Snapshot                              { return Snapshot{} }
func (NoOpMetrics) Reset()                                             {}

// InMemoryMetrics is a thread-safe in-memory metrics collector.
type InMemoryMetrics struct {
	mu            sync.RWMutex
	snippets      ExecutionMetrics
	builds        ExecutionMetrics
	totalPolls    int64
	lastPollTime  time.Time
	lastBuildTime time.Time

	snippetMin atomic.Int64
	snippetMax atomic.Int64
	buildMin   atomic.Int64
	buildMax   atomic.Int64
}

// NewInMemoryMetrics builds a ready-to-use in-memory collector.
func NewInMemoryMetrics() *InMemoryMetrics {
	m := &InMemoryMetrics{}
	m.snippetMin.Store(int64(time.Hour))
	m.buildMin.Store(int64(time.Hour))
	return m
}

func (m *InMemoryMetrics) RecordSnippetExecution(_ string, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snippets.Total++
	if success {
		m.snippets.Success++
	} else {
		m.snippets.Failed++
	}
	m.snippets.TotalTime += duration
	updateMinMax(&m.snippetMin, &m.snippetMax, duration)
}

func (m *InMemoryMetrics) RecordPoll(_ int, _ time.Duration) {
	atomic.AddInt64(&m.totalPolls, 1)
	m.mu.Lock()
	m.lastPollTime = time.Now()
	m.mu.Unlock()
}

func (m *InMemoryMetrics) RecordBuild(_ int, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.builds.Total++
	if success {
		m.builds.Success++
	} else {
		m.builds.Failed++
	}
	m.builds.TotalTime += duration
	m.lastBuildTime = time.Now()
	updateMinMax(&m.buildMin, &m.buildMax, duration)
}

func updateMinMax(min, max *atomic.Int64, d time.Duration) {
	nanos := int64(d)
	for {
		old := min.Load()
		if nanos >= old || min.CompareAndSwap(old, nanos) {
			break
		}
	}
	for {
		old := max.Load()
		if nanos <= old || max.CompareAndSwap(old, nanos) {
			break
		}
	}
}

func (m *InMemoryMetrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{
		SnippetExecutions: m.snippets,
		Builds:            m.builds,
		TotalPolls:        atomic.LoadInt64(&m.totalPolls),
		LastPollTime:      m.lastPollTime,
		LastBuildTime:     m.lastBuildTime,
	}
	snap.SnippetExecutions.MinTime = time.Duration(m.snippetMin.Load())
	snap.SnippetExecutions.MaxTime = time.Duration(m.snippetMax.Load())
	snap.Builds.MinTime = time.Duration(m.buildMin.Load())
	snap.Builds.MaxTime = time.Duration(m.buildMax.Load())
	if snap.SnippetExecutions.Total == 0 {
		snap.SnippetExecutions.MinTime, snap.SnippetExecutions.MaxTime = 0, 0
	}
	if snap.Builds.Total == 0 {
		snap.Builds.MinTime, snap.Builds.MaxTime = 0, 0
	}
	return snap
}

func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snippets = ExecutionMetrics{}
	m.builds = ExecutionMetrics{}
	atomic.StoreInt64(&m.totalPolls, 0)
	m.lastPollTime = time.Time{}
	m.lastBuildTime = time.Time{}
	m.snippetMin.Store(int64(time.Hour))
	m.snippetMax.Store(0)
	m.buildMin.Store(int64(time.Hour))
	m.buildMax.Store(0)
}
