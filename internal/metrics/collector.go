// Package metrics collects process-wide counters about API traffic, tool
// calls and aggregations for the server_status tool.
// file: internal/metrics/collector.go
package metrics

import (
	"runtime"
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the collected metrics.
type Snapshot struct {
	StartTime     time.Time     `json:"start_time"`
	Uptime        time.Duration `json:"uptime"`
	GoVersion     string        `json:"go_version"`
	NumGoroutines int           `json:"num_goroutines"`

	MemoryAllocated uint64 `json:"memory_allocated"`
	MemoryGCCount   uint32 `json:"memory_gc_count"`

	APICallCount    int `json:"api_call_count"`
	APIErrorCount   int `json:"api_error_count"`
	APIAvgLatencyMs int `json:"api_avg_latency_ms"`

	ToolCalls       map[string]int `json:"tool_calls"`
	ToolErrors      int            `json:"tool_errors"`
	ToolLatenciesMs map[string]int `json:"tool_latencies_ms"`

	Aggregations       int `json:"aggregations"`
	AggregatedProjects int `json:"aggregated_projects"`
	AggregatedItems    int `json:"aggregated_items"`
	FailedProjects     int `json:"failed_projects"`
	LastAggregationMs  int `json:"last_aggregation_ms"`

	LastErrors []ErrorInfo `json:"last_errors,omitempty"`
}

// ErrorInfo describes a recorded error.
type ErrorInfo struct {
	Timestamp time.Time `json:"timestamp"`
	Component string    `json:"component"`
	Message   string    `json:"message"`
}

// Collector accumulates metrics. It is safe for concurrent use.
type Collector struct {
	mu          sync.Mutex
	snap        Snapshot
	apiLatency  time.Duration
	errorBuffer []ErrorInfo
	bufferSize  int
}

// NewCollector keeps the last errorBufferSize errors.
func NewCollector(errorBufferSize int) *Collector {
	if errorBufferSize < 1 {
		errorBufferSize = 1
	}
	return &Collector{
		snap: Snapshot{
			StartTime:       time.Now(),
			GoVersion:       runtime.Version(),
			ToolCalls:       make(map[string]int),
			ToolLatenciesMs: make(map[string]int),
		},
		errorBuffer: make([]ErrorInfo, 0, errorBufferSize),
		bufferSize:  errorBufferSize,
	}
}

// RecordAPICall records one Basecamp HTTP round trip.
func (c *Collector) RecordAPICall(latency time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.APICallCount++
	c.apiLatency += latency
	c.snap.APIAvgLatencyMs = int(c.apiLatency.Milliseconds() / int64(c.snap.APICallCount))
	if err != nil {
		c.snap.APIErrorCount++
		c.recordErrorLocked("basecamp", err)
	}
}

// RecordToolCall records one tool invocation.
func (c *Collector) RecordToolCall(tool string, latency time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.ToolCalls[tool]++
	ms := int(latency.Milliseconds())
	if existing, ok := c.snap.ToolLatenciesMs[tool]; ok {
		c.snap.ToolLatenciesMs[tool] = (existing + ms) / 2
	} else {
		c.snap.ToolLatenciesMs[tool] = ms
	}
	if failed {
		c.snap.ToolErrors++
	}
}

// RecordAggregation records one completed aggregation.
func (c *Collector) RecordAggregation(projects, items, failures int, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Aggregations++
	c.snap.AggregatedProjects += projects
	c.snap.AggregatedItems += items
	c.snap.FailedProjects += failures
	c.snap.LastAggregationMs = int(d.Milliseconds())
}

// RecordError keeps err in the recent errors ring.
func (c *Collector) RecordError(component string, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recordErrorLocked(component, err)
}

func (c *Collector) recordErrorLocked(component string, err error) {
	info := ErrorInfo{Timestamp: time.Now(), Component: component, Message: err.Error()}
	if len(c.errorBuffer) >= c.bufferSize {
		c.errorBuffer = append(c.errorBuffer[1:], info)
		return
	}
	c.errorBuffer = append(c.errorBuffer, info)
}

// Snapshot returns a copy of the current metrics.
func (c *Collector) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.snap
	s.Uptime = time.Since(s.StartTime)
	s.NumGoroutines = runtime.NumGoroutine()
	s.MemoryAllocated = mem.Alloc
	s.MemoryGCCount = mem.NumGC
	s.ToolCalls = copyMap(c.snap.ToolCalls)
	s.ToolLatenciesMs = copyMap(c.snap.ToolLatenciesMs)
	if len(c.errorBuffer) > 0 {
		s.LastErrors = append([]ErrorInfo(nil), c.errorBuffer...)
	}
	return s
}

func copyMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
