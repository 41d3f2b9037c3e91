package monitor

import (
	"context"
	"time"
)

// Process is a live handle to one OS process.
type Process interface {
	// CPUPercent blocks for window and returns the share of that wall-clock
	// time the process spent on CPU, in percent (100 = one full core).
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	// RSS returns the resident set size in bytes.
	RSS(ctx context.Context) (uint64, error)
}

// ProcessInfo is the identity of a running process used for name resolution.
type ProcessInfo struct {
	PID     int32
	Name    string
	Cmdline []string
}

// ProcessSource is the process enumeration and accounting facility.
type ProcessSource interface {
	// List returns every visible process.
	List(ctx context.Context) ([]ProcessInfo, error)
	// Open returns a handle for pid.
	Open(ctx context.Context, pid int32) (Process, error)
	// SelfPID is the PID of the running monitor.
	SelfPID() int32
}

// GPUMetrics contains usage information for one GPU (typically from nvidia-smi).
type GPUMetrics struct {
	Index       int
	Name        string
	// Load is the utilization as a fraction in [0, 1].
	Load        float64
	MemoryUsed  int64
	MemoryTotal int64
	Temperature int
	PowerWatts  int
}

// GPUQuerier is the GPU query facility. An empty slice with a nil error
// means the host has no GPU.
type GPUQuerier interface {
	Query(ctx context.Context) ([]GPUMetrics, error)
}

// TrackedProcess pairs a display name with the process it was resolved to.
// Handle is nil when the name matched nothing at startup.
type TrackedProcess struct {
	DisplayName string
	PID         int32
	Handle      Process
	// ResolveErr explains why Handle is nil.
	ResolveErr error
}

// GPUReading is the system-wide GPU load for one tick.
type GPUReading struct {
	Percent   float64
	Available bool
}

// SampleRow is one process's metrics for a single tick.
type SampleRow struct {
	DisplayName string
	PID         int32
	CPUPercent  float64
	MemoryMB    float64
	GPU         GPUReading
	// Err is set when CPU or memory could not be read for this row.
	Err error
}

// Sample is the full result of one tick: rows in tracked order plus the
// single GPU reading every row carries.
type Sample struct {
	Rows []SampleRow
	GPU  GPUReading
	At   time.Time
	// Took is how long the measurement blocked.
	Took time.Duration
}

// bytesPerMB converts bytes to megabytes (MiB).
const bytesPerMB = 1024 * 1024
