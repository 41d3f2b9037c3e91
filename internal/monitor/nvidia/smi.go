// Package nvidia queries NVIDIA GPUs through the nvidia-smi tool.
package nvidia

import (
	"context"
	stderrors "errors"
	"os/exec"
	"time"

	"github.com/auth-xyz/process-info/internal/errors"
	"github.com/auth-xyz/process-info/internal/monitor"
	"github.com/auth-xyz/process-info/internal/monitor/parsers"
)

// DefaultBinary is looked up on PATH.
const DefaultBinary = "nvidia-smi"

// DefaultTimeout bounds one nvidia-smi invocation.
const DefaultTimeout = 2 * time.Second

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// SMI implements monitor.GPUQuerier on top of nvidia-smi.
type SMI struct {
	binary  string
	run     Runner
	timeout time.Duration
}

// Option configures SMI.
type Option func(*SMI)

// WithBinary overrides the nvidia-smi path.
func WithBinary(path string) Option {
	return func(s *SMI) { s.binary = path }
}

// WithRunner replaces command execution, for tests.
func WithRunner(r Runner) Option {
	return func(s *SMI) { s.run = r }
}

// WithTimeout bounds each query.
func WithTimeout(d time.Duration) Option {
	return func(s *SMI) { s.timeout = d }
}

// New creates an nvidia-smi querier.
func New(opts ...Option) *SMI {
	s := &SMI{
		binary:  DefaultBinary,
		run:     ExecRunner,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ monitor.GPUQuerier = (*SMI)(nil)

// Query returns every GPU nvidia-smi reports, in index order. A missing
// nvidia-smi binary means no NVIDIA GPU and is not an error.
func (s *SMI) Query(ctx context.Context) ([]monitor.GPUMetrics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.run(ctx, s.binary,
		"--query-gpu="+parsers.NvidiaSMIQuery,
		"--format=csv,noheader,nounits")
	if err != nil {
		if stderrors.Is(err, exec.ErrNotFound) {
			return nil, nil
		}

		// nvidia-smi exits non-zero with "No devices were found" on
		// machines that have the driver but no card.
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			gpus, parseErr := parsers.ParseNvidiaSMI(string(out))
			if parseErr == nil && len(gpus) == 0 {
				return nil, nil
			}
			if parseErr != nil {
				return nil, parseErr
			}
		}

		if ctx.Err() != nil {
			return nil, errors.WrapWithCode(ctx.Err(), errors.ErrGPU,
				"nvidia-smi did not answer in time", "")
		}
		return nil, errors.WrapWithCode(err, errors.ErrGPU,
			"Couldn't run nvidia-smi", "")
	}

	return parsers.ParseNvidiaSMI(string(out))
}
