package monitor_test

import (
	stderrors "errors"
	"testing"

	"github.com/auth-xyz/process-info/internal/monitor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12.3456, "12.35"},
		{0, "0.00"},
		{42, "42.00"},
		{100, "100.00"},
		{99.999, "100.00"},
		{1536.5, "1536.50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, monitor.FormatNumber(tt.in), "FormatNumber(%v)", tt.in)
	}
}

func TestFormatGPU(t *testing.T) {
	assert.Equal(t, monitor.NotAvailable, monitor.FormatGPU(monitor.GPUReading{}))
	assert.Equal(t, "42.00", monitor.FormatGPU(monitor.GPUReading{Percent: 42, Available: true}))
	assert.Equal(t, "0.00", monitor.FormatGPU(monitor.GPUReading{Available: true}))
}

func TestFormatRow(t *testing.T) {
	gpu := monitor.GPUReading{Percent: 42, Available: true}

	t.Run("healthy row", func(t *testing.T) {
		row := monitor.SampleRow{DisplayName: "self", CPUPercent: 12.3456, MemoryMB: 20.5, GPU: gpu}
		assert.Equal(t, []string{"self", "12.35", "20.50", "42.00"}, monitor.FormatRow(row))
	})

	t.Run("failed row keeps shared GPU", func(t *testing.T) {
		row := monitor.SampleRow{DisplayName: "gone", CPUPercent: 99, GPU: gpu, Err: stderrors.New("exited")}
		assert.Equal(t, []string{"gone", "N/A", "N/A", "42.00"}, monitor.FormatRow(row))
	})

	t.Run("no GPU", func(t *testing.T) {
		row := monitor.SampleRow{DisplayName: "self", CPUPercent: 1, MemoryMB: 2}
		assert.Equal(t, []string{"self", "1.00", "2.00", "N/A"}, monitor.FormatRow(row))
	})
}

func TestBuildTable(t *testing.T) {
	sample := monitor.Sample{
		Rows: []monitor.SampleRow{
			{DisplayName: "b", CPUPercent: 1},
			{DisplayName: "a", CPUPercent: 2},
			{DisplayName: "b", CPUPercent: 3},
		},
	}

	table := monitor.BuildTable(sample)

	assert.Equal(t, monitor.Title, table.Title)
	assert.Equal(t, []string{"Process Name", "CPU Usage (%)", "Memory Usage (MB)", "GPU Usage (%)"}, table.Columns)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "b", table.Rows[0][0])
	assert.Equal(t, "a", table.Rows[1][0])
	assert.Equal(t, "3.00", table.Rows[2][1])
}

func TestBuildTable_Empty(t *testing.T) {
	table := monitor.BuildTable(monitor.Sample{})

	assert.Empty(t, table.Rows)
	assert.Len(t, table.Columns, 4)
}
