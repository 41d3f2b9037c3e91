package monitor

import "fmt"

// Title is shown above the table.
const Title = "Process Monitor (Press Ctrl+C to exit)"

// NotAvailable marks a value that couldn't be measured.
const NotAvailable = "N/A"

// Column headers, in display order.
const (
	ColumnName   = "Process Name"
	ColumnCPU    = "CPU Usage (%)"
	ColumnMemory = "Memory Usage (MB)"
	ColumnGPU    = "GPU Usage (%)"
)

// Columns returns the fixed column headers.
func Columns() []string {
	return []string{ColumnName, ColumnCPU, ColumnMemory, ColumnGPU}
}

// Table is the render-ready model for one tick. It is replaced, never
// edited, when a new sample arrives.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}

// BuildTable formats a sample. Rows keep the sample's order.
func BuildTable(s Sample) Table {
	rows := make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = FormatRow(r)
	}
	return Table{
		Title:   Title,
		Columns: Columns(),
		Rows:    rows,
	}
}

// FormatRow renders one row's cells. A row error blanks CPU and memory with
// N/A; the GPU column still shows the tick's shared reading.
func FormatRow(r SampleRow) []string {
	cpu, mem := NotAvailable, NotAvailable
	if r.Err == nil {
		cpu = FormatNumber(r.CPUPercent)
		mem = FormatNumber(r.MemoryMB)
	}
	return []string{r.DisplayName, cpu, mem, FormatGPU(r.GPU)}
}

// FormatNumber renders a value with exactly two decimal places.
func FormatNumber(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatGPU renders a GPU reading, or N/A when unavailable.
func FormatGPU(g GPUReading) string {
	if !g.Available {
		return NotAvailable
	}
	return FormatNumber(g.Percent)
}
