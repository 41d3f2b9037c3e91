package monitor_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/auth-xyz/process-info/internal/errors"
	"github.com/auth-xyz/process-info/internal/logger"
	"github.com/auth-xyz/process-info/internal/monitor"
	mtesting "github.com/auth-xyz/process-info/internal/monitor/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracked(name string, pid int32, p monitor.Process) monitor.TrackedProcess {
	return monitor.TrackedProcess{DisplayName: name, PID: pid, Handle: p}
}

func TestSampler_OneRowPerTargetInOrder(t *testing.T) {
	targets := []monitor.TrackedProcess{
		tracked("zeta", 30, mtesting.NewFakeProcess(1, 1024)),
		tracked("alpha", 10, mtesting.NewFakeProcess(2, 2048)),
		tracked("mid", 20, mtesting.NewFakeProcess(3, 4096)),
		tracked("alpha", 10, mtesting.NewFakeProcess(4, 8192)),
	}
	s := monitor.NewSampler(mtesting.NewFakeGPU())

	for tick := 0; tick < 3; tick++ {
		sample := s.Sample(context.Background(), targets)

		require.Len(t, sample.Rows, len(targets))
		for i, row := range sample.Rows {
			assert.Equal(t, targets[i].DisplayName, row.DisplayName)
			assert.Equal(t, targets[i].PID, row.PID)
		}
		assert.Equal(t, 4.0, sample.Rows[3].CPUPercent)
	}
}

func TestSampler_MemoryInMegabytes(t *testing.T) {
	targets := []monitor.TrackedProcess{
		tracked("a", 1, mtesting.NewFakeProcess(0, 3*1024*1024/2)),
		tracked("b", 2, mtesting.NewFakeProcess(0, 512*1024*1024)),
	}

	sample := monitor.NewSampler(nil).Sample(context.Background(), targets)

	assert.InDelta(t, 1.5, sample.Rows[0].MemoryMB, 1e-9)
	assert.InDelta(t, 512.0, sample.Rows[1].MemoryMB, 1e-9)
}

func TestSampler_PassesCPUWindow(t *testing.T) {
	p := mtesting.NewFakeProcess(5, 0)
	s := monitor.NewSampler(nil, monitor.WithCPUWindow(250*time.Millisecond))

	s.Sample(context.Background(), []monitor.TrackedProcess{tracked("a", 1, p)})

	require.Equal(t, 1, p.CPUCalls)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, p.Windows)
}

func TestSampler_DefaultCPUWindowIsOneSecond(t *testing.T) {
	p := mtesting.NewFakeProcess(5, 0)

	monitor.NewSampler(nil).Sample(context.Background(), []monitor.TrackedProcess{tracked("a", 1, p)})

	assert.Equal(t, []time.Duration{time.Second}, p.Windows)
}

func TestSampler_GPUSharedAcrossRows(t *testing.T) {
	gpu := mtesting.NewFakeGPU()
	gpu.SetLoads(0.42, 0.99)
	targets := []monitor.TrackedProcess{
		tracked("a", 1, mtesting.NewFakeProcess(0, 0)),
		tracked("b", 2, mtesting.NewFakeProcess(0, 0)),
		tracked("c", 3, nil),
	}
	s := monitor.NewSampler(gpu)

	sample := s.Sample(context.Background(), targets)

	assert.Equal(t, 1, gpu.Calls, "one GPU query per tick")
	require.True(t, sample.GPU.Available)
	assert.InDelta(t, 42.0, sample.GPU.Percent, 1e-9, "first GPU only")
	for _, row := range sample.Rows {
		assert.Equal(t, sample.GPU, row.GPU)
	}

	gpu.SetLoads(0.10)
	next := s.Sample(context.Background(), targets)
	assert.InDelta(t, 10.0, next.GPU.Percent, 1e-9)
	for _, row := range next.Rows {
		assert.Equal(t, next.GPU, row.GPU)
	}
}

func TestSampler_NoGPU(t *testing.T) {
	targets := []monitor.TrackedProcess{tracked("a", 1, mtesting.NewFakeProcess(0, 0))}

	t.Run("no devices", func(t *testing.T) {
		sample := monitor.NewSampler(mtesting.NewFakeGPU()).Sample(context.Background(), targets)
		assert.False(t, sample.GPU.Available)
		assert.False(t, sample.Rows[0].GPU.Available)
	})

	t.Run("nil querier", func(t *testing.T) {
		sample := monitor.NewSampler(nil).Sample(context.Background(), targets)
		assert.False(t, sample.GPU.Available)
	})
}

func TestSampler_GPUFailureIsLoggedNotFatal(t *testing.T) {
	log := logger.NewBufferLogger()
	gpu := mtesting.NewFakeGPU()
	gpu.Fail(stderrors.New("driver not loaded"))
	targets := []monitor.TrackedProcess{tracked("a", 1, mtesting.NewFakeProcess(7, 0))}
	s := monitor.NewSampler(gpu, monitor.WithLogger(log))

	for i := 0; i < 3; i++ {
		sample := s.Sample(context.Background(), targets)
		assert.False(t, sample.GPU.Available)
		assert.NoError(t, sample.Rows[0].Err, "GPU failure must not mark the row")
		assert.Equal(t, 7.0, sample.Rows[0].CPUPercent)
	}
	assert.Equal(t, 1, log.Count("warn"), "repeated identical failure logged once")

	gpu.Fail(nil)
	gpu.SetLoads(0.5)
	s.Sample(context.Background(), targets)
	gpu.Fail(stderrors.New("driver not loaded"))
	s.Sample(context.Background(), targets)
	assert.Equal(t, 2, log.Count("warn"), "failure after recovery is logged again")
}

func TestSampler_DeadProcessKeepsOtherRows(t *testing.T) {
	log := logger.NewBufferLogger()
	alive := mtesting.NewFakeProcess(12.5, 10*1024*1024)
	doomed := mtesting.NewFakeProcess(3, 1024*1024)
	targets := []monitor.TrackedProcess{
		tracked("alive", 1, alive),
		tracked("doomed", 2, doomed),
		tracked("also-alive", 3, mtesting.NewFakeProcess(1, 0)),
	}
	s := monitor.NewSampler(nil, monitor.WithLogger(log))

	first := s.Sample(context.Background(), targets)
	for _, row := range first.Rows {
		assert.NoError(t, row.Err)
	}

	doomed.Kill()
	for i := 0; i < 2; i++ {
		sample := s.Sample(context.Background(), targets)
		require.Len(t, sample.Rows, 3)
		assert.NoError(t, sample.Rows[0].Err)
		assert.Equal(t, 12.5, sample.Rows[0].CPUPercent)
		require.Error(t, sample.Rows[1].Err)
		assert.True(t, errors.IsCode(sample.Rows[1].Err, errors.ErrProcess))
		assert.ErrorIs(t, sample.Rows[1].Err, mtesting.ErrNoSuchProcess)
		assert.NoError(t, sample.Rows[2].Err)
	}
	assert.Equal(t, 1, log.Count("warn"), "dead process logged once")
}

func TestSampler_UnresolvedTarget(t *testing.T) {
	resolveErr := errors.New(errors.ErrProcess, "No running process named 'ghost'", "")
	targets := []monitor.TrackedProcess{
		{DisplayName: "ghost", ResolveErr: resolveErr},
		{DisplayName: "bare"},
	}

	sample := monitor.NewSampler(nil).Sample(context.Background(), targets)

	assert.Equal(t, resolveErr, sample.Rows[0].Err)
	assert.Error(t, sample.Rows[1].Err)
}

func TestSampler_ConcurrentMeasurementJoinsBeforeReturn(t *testing.T) {
	const window = 150 * time.Millisecond
	procs := []*mtesting.FakeProcess{
		mtesting.NewFakeProcess(1, 0).Blocking(),
		mtesting.NewFakeProcess(2, 0).Blocking(),
		mtesting.NewFakeProcess(3, 0).Blocking(),
		mtesting.NewFakeProcess(4, 0).Blocking(),
	}
	targets := make([]monitor.TrackedProcess, len(procs))
	for i, p := range procs {
		targets[i] = tracked("p", int32(i+1), p)
	}

	start := time.Now()
	sample := monitor.NewSampler(nil, monitor.WithCPUWindow(window)).Sample(context.Background(), targets)
	took := time.Since(start)

	assert.GreaterOrEqual(t, took, window, "must wait for the window")
	assert.Less(t, took, 3*window, "targets measured in parallel")
	for i, row := range sample.Rows {
		assert.Equal(t, float64(i+1), row.CPUPercent, "order kept after join")
	}
	assert.GreaterOrEqual(t, sample.Took, window)
}

func TestSampler_Sequential(t *testing.T) {
	const window = 60 * time.Millisecond
	targets := []monitor.TrackedProcess{
		tracked("a", 1, mtesting.NewFakeProcess(1, 0).Blocking()),
		tracked("b", 2, mtesting.NewFakeProcess(2, 0).Blocking()),
		tracked("c", 3, mtesting.NewFakeProcess(3, 0).Blocking()),
	}

	start := time.Now()
	sample := monitor.NewSampler(nil,
		monitor.WithCPUWindow(window),
		monitor.WithSequential(true),
	).Sample(context.Background(), targets)

	assert.GreaterOrEqual(t, time.Since(start), 3*window)
	assert.Equal(t, 3.0, sample.Rows[2].CPUPercent)
}

func TestSampler_Clock(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	calls := 0
	clock := func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Second)
	}

	sample := monitor.NewSampler(nil, monitor.WithClock(clock)).Sample(context.Background(), nil)

	assert.Empty(t, sample.Rows)
	assert.Equal(t, time.Second, sample.Took)
	assert.Equal(t, base.Add(2*time.Second), sample.At)
}
