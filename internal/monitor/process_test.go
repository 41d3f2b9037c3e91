package monitor_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/auth-xyz/process-info/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemSource_Self(t *testing.T) {
	ctx := context.Background()
	src := monitor.NewSystemSource()

	require.Equal(t, int32(os.Getpid()), src.SelfPID())

	p, err := src.Open(ctx, src.SelfPID())
	require.NoError(t, err)

	rss, err := p.RSS(ctx)
	require.NoError(t, err)
	assert.Greater(t, rss, uint64(0))

	cpu, err := p.CPUPercent(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cpu, 0.0)
}

func TestSystemSource_ListIncludesSelf(t *testing.T) {
	src := monitor.NewSystemSource()

	procs, err := src.List(context.Background())
	require.NoError(t, err)

	found := false
	for _, p := range procs {
		if p.PID == src.SelfPID() {
			found = true
			assert.NotEmpty(t, p.Name)
		}
	}
	assert.True(t, found, "own PID should be listed")
}

func TestSystemSource_ResolveSelfEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("takes one CPU window")
	}
	ctx := context.Background()
	targets, err := monitor.Resolve(ctx, monitor.NewSystemSource(), []string{"self", "self"}, nil)
	require.NoError(t, err)

	sample := monitor.NewSampler(nil, monitor.WithCPUWindow(100*time.Millisecond)).Sample(ctx, targets)

	require.Len(t, sample.Rows, 2)
	for _, row := range sample.Rows {
		assert.NoError(t, row.Err)
		assert.Greater(t, row.MemoryMB, 0.0)
		assert.Equal(t, monitor.NotAvailable, monitor.FormatGPU(row.GPU))
	}
}
