package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auth-xyz/process-info/internal/config"
	"github.com/auth-xyz/process-info/internal/errors"
	"github.com/auth-xyz/process-info/internal/logger"
	"github.com/auth-xyz/process-info/internal/monitor"
	"github.com/auth-xyz/process-info/internal/monitor/nvidia"
	"github.com/auth-xyz/process-info/internal/ui"
	"github.com/auth-xyz/process-info/internal/util"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// processSource is swapped out in tests.
var processSource = monitor.NewSystemSource

// gpuQuerier is swapped out in tests.
var gpuQuerier = func() monitor.GPUQuerier { return nvidia.New() }

// monitorCommand runs the dashboard until the watch bound elapses or the
// user stops it. The final frame stays on out.
func monitorCommand(ctx context.Context, cfg *config.RunConfig, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := config.LoadOrDefault()
	if err != nil {
		return err
	}

	logFile, err := setupLogging(settings.LogFile)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	interactive := isTerminal(out) && isTerminal(os.Stdin)
	if settings.NoColor || !isTerminal(out) {
		ui.DisableColors()
	}

	// runCtx outlives the first signal so the sample in flight can finish.
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	targets, err := monitor.Resolve(runCtx, processSource(), cfg.ProcessNames, logger.NewEnvLogger("[resolve]"))
	if err != nil {
		return err
	}
	warnUnresolved(os.Stderr, targets)
	log.Printf("tracking %s", util.JoinOrNone(cfg.ProcessNames))

	sampler := monitor.NewSampler(gpuQuerier(),
		monitor.WithCPUWindow(settings.CPUWindow),
		monitor.WithSequential(settings.Sequential),
		monitor.WithLogger(logger.NewEnvLogger("[sampler]")),
	)

	model := monitor.NewModel(runCtx, sampler, targets, monitor.Options{
		Watch:     cfg.WatchDuration,
		TickSleep: tickSleep(settings.TickSleep),
	})

	opts := []tea.ProgramOption{
		tea.WithContext(runCtx),
		tea.WithOutput(out),
		tea.WithFPS(settings.RefreshPerSecond),
		tea.WithoutSignalHandler(),
	}
	if !interactive {
		opts = append(opts, tea.WithInput(nil))
	}

	p := tea.NewProgram(model, opts...)

	done := make(chan struct{})
	defer close(done)
	go forwardStop(ctx, p, cancel, done)

	final, err := p.Run()
	if err != nil {
		if stderrors.Is(err, tea.ErrProgramKilled) {
			log.Printf("dashboard cancelled after a second interrupt")
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrTerminal,
			"Dashboard exited unexpectedly",
			"Try running in a different terminal, or set log_file to capture details")
	}

	if m, ok := final.(monitor.Model); ok {
		_, reason := m.Stopped()
		log.Printf("dashboard stopped: %s after %d ticks", reason, m.Ticks())
	}
	return nil
}

// forwardStop turns the first cancellation of ctx into a graceful StopMsg and
// a second signal into a hard cancel.
func forwardStop(ctx context.Context, p *tea.Program, cancel context.CancelFunc, done <-chan struct{}) {
	select {
	case <-ctx.Done():
	case <-done:
		return
	}

	// Register before sending so a quick second Ctrl+C isn't lost.
	again := make(chan os.Signal, 1)
	signal.Notify(again, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(again)

	p.Send(monitor.StopMsg{})

	select {
	case <-again:
		cancel()
	case <-done:
	}
}

// setupLogging sends the standard logger to path, or discards it. The
// dashboard owns the terminal, so log lines must never reach it.
func setupLogging(path string) (*os.File, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return nil, nil
	}
	f, err := tea.LogToFile(path, "procinfo")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't open log file %s", path),
			"Check the directory exists and is writable, or unset log_file")
	}
	return f, nil
}

// tickSleep maps the settings value to the model's convention, where zero
// means the default pause and a negative value means none.
func tickSleep(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

func warnUnresolved(w io.Writer, targets []monitor.TrackedProcess) {
	for _, t := range targets {
		if t.Handle == nil && t.ResolveErr != nil {
			fmt.Fprintf(w, "⚠ %s (shown as %s)\n", errors.Short(t.ResolveErr), monitor.NotAvailable)
		}
	}
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
