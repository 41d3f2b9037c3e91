// Package testing provides test doubles for the monitor package.
package testing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/auth-xyz/process-info/internal/monitor"
)

// ErrNoSuchProcess is returned by a FakeProcess after Kill.
var ErrNoSuchProcess = errors.New("process does not exist")

// FakeProcess is a controllable monitor.Process.
type FakeProcess struct {
	mu    sync.Mutex
	cpu   float64
	rss   uint64
	dead  bool
	block bool // honor the CPU window instead of returning at once

	// Tracking for assertions
	CPUCalls int
	Windows  []time.Duration
}

// NewFakeProcess creates a live process with the given readings.
func NewFakeProcess(cpu float64, rss uint64) *FakeProcess {
	return &FakeProcess{cpu: cpu, rss: rss}
}

// Blocking makes CPUPercent sleep for the requested window.
func (p *FakeProcess) Blocking() *FakeProcess {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.block = true
	return p
}

// Set changes the readings returned by later calls.
func (p *FakeProcess) Set(cpu float64, rss uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cpu, p.rss = cpu, rss
}

// Kill makes every later read fail with ErrNoSuchProcess.
func (p *FakeProcess) Kill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dead = true
}

func (p *FakeProcess) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	p.mu.Lock()
	p.CPUCalls++
	p.Windows = append(p.Windows, window)
	block := p.block
	p.mu.Unlock()

	if block {
		select {
		case <-time.After(window):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return 0, ErrNoSuchProcess
	}
	return p.cpu, nil
}

func (p *FakeProcess) RSS(ctx context.Context) (uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return 0, ErrNoSuchProcess
	}
	return p.rss, nil
}

// FakeSource is a controllable monitor.ProcessSource.
type FakeSource struct {
	mu       sync.Mutex
	procs    []monitor.ProcessInfo
	handles  map[int32]*FakeProcess
	self     int32
	listErr  error
	openErrs map[int32]error

	// Tracking for assertions
	ListCalls int
	Opened    []int32
}

// NewFakeSource creates an empty process table whose own PID is self.
func NewFakeSource(self int32) *FakeSource {
	return &FakeSource{
		handles:  make(map[int32]*FakeProcess),
		openErrs: make(map[int32]error),
		self:     self,
	}
}

// AddProcess registers a running process and the handle Open returns for it.
func (s *FakeSource) AddProcess(info monitor.ProcessInfo, handle *FakeProcess) *FakeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs = append(s.procs, info)
	s.handles[info.PID] = handle
	return s
}

// FailList makes List return err.
func (s *FakeSource) FailList(err error) *FakeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listErr = err
	return s
}

// FailOpen makes Open(pid) return err.
func (s *FakeSource) FailOpen(pid int32, err error) *FakeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErrs[pid] = err
	return s
}

// Handle returns the fake registered for pid.
func (s *FakeSource) Handle(pid int32) *FakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[pid]
}

func (s *FakeSource) List(ctx context.Context) ([]monitor.ProcessInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]monitor.ProcessInfo, len(s.procs))
	copy(out, s.procs)
	return out, nil
}

func (s *FakeSource) Open(ctx context.Context, pid int32) (monitor.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Opened = append(s.Opened, pid)
	if err := s.openErrs[pid]; err != nil {
		return nil, err
	}
	h, ok := s.handles[pid]
	if !ok {
		// Unknown PIDs behave like a process that already exited.
		h = NewFakeProcess(0, 0)
		h.dead = true
		s.handles[pid] = h
	}
	return h, nil
}

func (s *FakeSource) SelfPID() int32 {
	return s.self
}

// FakeGPU is a controllable monitor.GPUQuerier.
type FakeGPU struct {
	mu   sync.Mutex
	gpus []monitor.GPUMetrics
	err  error

	// Tracking for assertions
	Calls int
}

// NewFakeGPU creates a querier that reports the given GPUs.
func NewFakeGPU(gpus ...monitor.GPUMetrics) *FakeGPU {
	return &FakeGPU{gpus: gpus}
}

// SetLoads replaces the reported GPUs with one per load fraction.
func (g *FakeGPU) SetLoads(loads ...float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gpus = g.gpus[:0]
	for i, l := range loads {
		g.gpus = append(g.gpus, monitor.GPUMetrics{Index: i, Load: l})
	}
}

// Fail makes Query return err (nil clears it).
func (g *FakeGPU) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *FakeGPU) Query(ctx context.Context) ([]monitor.GPUMetrics, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	if g.err != nil {
		return nil, g.err
	}
	out := make([]monitor.GPUMetrics, len(g.gpus))
	copy(out, g.gpus)
	return out, nil
}

// StaticSampler returns the same sample every tick and counts calls.
type StaticSampler struct {
	mu     sync.Mutex
	sample monitor.Sample
	delay  time.Duration

	Calls int
}

// NewStaticSampler creates a RowSampler that returns sample, optionally
// blocking for delay first.
func NewStaticSampler(sample monitor.Sample, delay time.Duration) *StaticSampler {
	return &StaticSampler{sample: sample, delay: delay}
}

func (s *StaticSampler) Sample(ctx context.Context, targets []monitor.TrackedProcess) monitor.Sample {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls++
	return s.sample
}

// CallCount returns how many samples were taken.
func (s *StaticSampler) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls
}
