package models

import "time"

// ProbeResult is the outcome of a single health probe attempt. One probe is
// one attempt; retries are the caller's business.
type ProbeResult struct {
	Target     string        `json:"target"`
	TS         time.Time     `json:"timestamp"`
	Succeeded  bool          `json:"succeeded"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
	Reason     string        `json:"reason,omitempty"`
}

func (r ProbeResult) LatencyMS() float64 {
	return float64(r.Latency) / float64(time.Millisecond)
}

type ProcessUsage struct {
	PID    int     `json:"pid"`
	Name   string  `json:"name"`
	CPUPct float64 `json:"cpu_pct"`
}

// ResourceSample is a point-in-time read of host utilization. Percentages are
// always within [0,100].
type ResourceSample struct {
	TS           time.Time      `json:"timestamp"`
	CPUPct       float64        `json:"cpu_pct"`
	MemPct       float64        `json:"mem_pct"`
	DiskPct      float64        `json:"disk_pct"`
	TopProcesses []ProcessUsage `json:"top_processes,omitempty"`
}

// Alert records a single threshold violation. Immutable once created.
type Alert struct {
	ID        string    `json:"id"`
	TS        time.Time `json:"timestamp"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
}

// Thresholds are the limits that turn a raw sample into alerts. A value is
// violating only when it is strictly above its threshold.
type Thresholds struct {
	CPUPct  float64
	MemPct  float64
	DiskPct float64
}
