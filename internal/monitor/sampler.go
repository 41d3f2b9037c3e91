package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/auth-xyz/process-info/internal/errors"
	"github.com/auth-xyz/process-info/internal/logger"
)

// DefaultCPUWindow is the blocking observation window for CPU readings.
const DefaultCPUWindow = time.Second

// Sampler measures tracked processes. A single Sample call blocks for about
// one CPU window: targets are measured concurrently and joined before the
// rows are returned, unless the sampler is sequential, in which case the
// call blocks for one window per target.
type Sampler struct {
	gpu        GPUQuerier
	window     time.Duration
	sequential bool
	log        logger.Logger
	now        func() time.Time

	mu         sync.Mutex
	lastGPUErr string
	lastRowErr map[int]string
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithCPUWindow sets the CPU observation window.
func WithCPUWindow(d time.Duration) SamplerOption {
	return func(s *Sampler) { s.window = d }
}

// WithSequential measures one target at a time.
func WithSequential(sequential bool) SamplerOption {
	return func(s *Sampler) { s.sequential = sequential }
}

// WithLogger sets the logger used for GPU and per-row failures.
func WithLogger(l logger.Logger) SamplerOption {
	return func(s *Sampler) { s.log = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) SamplerOption {
	return func(s *Sampler) { s.now = now }
}

// NewSampler creates a sampler. gpu may be nil, in which case every reading
// is unavailable.
func NewSampler(gpu GPUQuerier, opts ...SamplerOption) *Sampler {
	s := &Sampler{
		gpu:        gpu,
		window:     DefaultCPUWindow,
		log:        logger.Noop(),
		now:        time.Now,
		lastRowErr: make(map[int]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sample measures every target and returns one row per target in the same
// order. It never fails: per-target problems are stored in SampleRow.Err and
// GPU problems surface as an unavailable reading.
func (s *Sampler) Sample(ctx context.Context, targets []TrackedProcess) Sample {
	start := s.now()
	rows := make([]SampleRow, len(targets))

	var gpu GPUReading
	var wg sync.WaitGroup

	// The GPU query runs alongside the CPU windows rather than after them.
	wg.Add(1)
	go func() {
		defer wg.Done()
		gpu = s.ReadGPU(ctx)
	}()

	if s.sequential {
		for i, t := range targets {
			rows[i] = s.measure(ctx, t)
		}
	} else {
		for i, t := range targets {
			wg.Add(1)
			go func(i int, t TrackedProcess) {
				defer wg.Done()
				rows[i] = s.measure(ctx, t)
			}(i, t)
		}
	}
	wg.Wait()

	for i := range rows {
		rows[i].GPU = gpu
		s.reportRow(i, rows[i])
	}

	end := s.now()
	return Sample{
		Rows: rows,
		GPU:  gpu,
		At:   end,
		Took: end.Sub(start),
	}
}

// measure reads CPU and memory for one target.
func (s *Sampler) measure(ctx context.Context, t TrackedProcess) SampleRow {
	row := SampleRow{DisplayName: t.DisplayName, PID: t.PID}

	if t.Handle == nil {
		row.Err = t.ResolveErr
		if row.Err == nil {
			row.Err = errors.New(errors.ErrProcess,
				fmt.Sprintf("No process for '%s'", t.DisplayName), "")
		}
		return row
	}

	cpu, err := t.Handle.CPUPercent(ctx, s.window)
	if err != nil {
		row.Err = errors.Wrap(err, fmt.Sprintf("Couldn't read CPU for PID %d", t.PID))
		return row
	}

	rss, err := t.Handle.RSS(ctx)
	if err != nil {
		row.Err = errors.Wrap(err, fmt.Sprintf("Couldn't read memory for PID %d", t.PID))
		return row
	}

	row.CPUPercent = cpu
	row.MemoryMB = float64(rss) / bytesPerMB
	return row
}

// ReadGPU queries the GPU facility and returns the first GPU's load.
// Absence of a GPU is normal and not logged above debug level.
func (s *Sampler) ReadGPU(ctx context.Context) GPUReading {
	if s.gpu == nil {
		return GPUReading{}
	}

	gpus, err := s.gpu.Query(ctx)
	if err != nil {
		s.mu.Lock()
		msg := err.Error()
		if msg != s.lastGPUErr {
			s.log.Warn("gpu query failed: %s", errors.Short(err))
			s.lastGPUErr = msg
		}
		s.mu.Unlock()
		return GPUReading{}
	}

	s.mu.Lock()
	s.lastGPUErr = ""
	s.mu.Unlock()

	if len(gpus) == 0 {
		s.log.Debug("no gpu detected")
		return GPUReading{}
	}

	return GPUReading{Percent: gpus[0].Load * 100, Available: true}
}

// reportRow logs a row error the first time it appears for a target, and
// notes when the target recovers.
func (s *Sampler) reportRow(i int, row SampleRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.lastRowErr[i]
	if row.Err == nil {
		if prev != "" {
			s.log.Info("%s: readings resumed", row.DisplayName)
			delete(s.lastRowErr, i)
		}
		return
	}

	msg := errors.Short(row.Err)
	if msg != prev {
		s.log.Warn("%s: %s", row.DisplayName, msg)
		s.lastRowErr[i] = msg
	}
}
