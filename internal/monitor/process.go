package monitor

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// systemSource implements ProcessSource with gopsutil.
type systemSource struct{}

// NewSystemSource returns the ProcessSource backed by the host OS.
func NewSystemSource() ProcessSource {
	return systemSource{}
}

func (systemSource) List(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		// Processes can exit between listing and inspection; a missing name
		// just means the entry can't match anything.
		name, _ := p.NameWithContext(ctx)
		cmdline, _ := p.CmdlineSliceWithContext(ctx)
		infos = append(infos, ProcessInfo{
			PID:     p.Pid,
			Name:    name,
			Cmdline: cmdline,
		})
	}
	return infos, nil
}

func (systemSource) Open(ctx context.Context, pid int32) (Process, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, err
	}
	return &osProcess{proc: p}, nil
}

func (systemSource) SelfPID() int32 {
	return int32(os.Getpid())
}

// osProcess adapts a gopsutil process to Process.
type osProcess struct {
	proc *process.Process
}

func (p *osProcess) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	return p.proc.PercentWithContext(ctx, window)
}

func (p *osProcess) RSS(ctx context.Context) (uint64, error) {
	mem, err := p.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return mem.RSS, nil
}
