package monitor

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTickSleep is the pause between a render and the next tick.
const DefaultTickSleep = time.Second

// RowSampler produces the rows for one tick. *Sampler implements it.
type RowSampler interface {
	Sample(ctx context.Context, targets []TrackedProcess) Sample
}

// StopReason records why the dashboard stopped.
type StopReason int

const (
	StopNone StopReason = iota
	StopWatchElapsed
	StopInterrupted
)

// String returns a human-readable reason.
func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "running"
	case StopWatchElapsed:
		return "watch duration elapsed"
	case StopInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Options configures the dashboard loop.
type Options struct {
	// Watch bounds the run. Zero runs until interrupted.
	Watch time.Duration
	// TickSleep is the pause after each render. Zero means DefaultTickSleep;
	// use a negative value for no pause.
	TickSleep time.Duration
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Model is the Bubble Tea model for the process dashboard.
type Model struct {
	ctx       context.Context
	sampler   RowSampler
	targets   []TrackedProcess
	watch     time.Duration
	tickSleep time.Duration
	now       func() time.Time

	start      time.Time
	table      Table
	last       Sample
	ticks      int
	width      int
	collecting bool

	// stopRequested holds an interrupt that arrived mid-sample.
	stopRequested bool
	quitting      bool
	reason        StopReason
}

// tickMsg marks the top of a tick.
type tickMsg time.Time

// samplesMsg carries a completed sample.
type samplesMsg struct {
	sample Sample
}

// StopMsg asks the dashboard to stop as if the user pressed Ctrl+C. The CLI
// sends it when the process receives SIGINT or SIGTERM.
type StopMsg struct{}

// NewModel creates the dashboard. The watch clock starts here.
func NewModel(ctx context.Context, sampler RowSampler, targets []TrackedProcess, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	sleep := opts.TickSleep
	switch {
	case sleep == 0:
		sleep = DefaultTickSleep
	case sleep < 0:
		sleep = 0
	}

	return Model{
		ctx:       ctx,
		sampler:   sampler,
		targets:   targets,
		watch:     opts.Watch,
		tickSleep: sleep,
		now:       now,
		start:     now(),
		table:     Table{Title: Title, Columns: Columns()},
	}
}

// Init fires the first tick immediately.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return tickMsg(m.now()) }
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case StopMsg:
		return m, m.requestStop()

	case tickMsg:
		return m, m.startTick(time.Time(msg))

	case samplesMsg:
		m.collecting = false
		m.last = msg.sample
		m.table = BuildTable(msg.sample)
		m.ticks++

		if m.stopRequested {
			return m, m.stop(StopInterrupted)
		}
		return m, m.sleepCmd()
	}

	return m, nil
}

// startTick checks the watch bound, then launches a sample.
func (m *Model) startTick(at time.Time) tea.Cmd {
	if m.quitting || m.collecting {
		return nil
	}
	if m.watch > 0 && at.Sub(m.start) > m.watch {
		return m.stop(StopWatchElapsed)
	}
	m.collecting = true
	return m.sampleCmd()
}

// requestStop quits now if idle, or after the in-flight sample lands.
func (m *Model) requestStop() tea.Cmd {
	if m.quitting {
		return nil
	}
	if m.collecting {
		m.stopRequested = true
		return nil
	}
	return m.stop(StopInterrupted)
}

func (m *Model) stop(reason StopReason) tea.Cmd {
	m.quitting = true
	m.reason = reason
	return tea.Quit
}

// sampleCmd runs the sampler off the update loop. It blocks for the CPU window.
func (m Model) sampleCmd() tea.Cmd {
	ctx, sampler, targets := m.ctx, m.sampler, m.targets
	return func() tea.Msg {
		return samplesMsg{sample: sampler.Sample(ctx, targets)}
	}
}

// sleepCmd schedules the next tick after the fixed pause.
func (m Model) sleepCmd() tea.Cmd {
	if m.tickSleep <= 0 {
		return func() tea.Msg { return tickMsg(m.now()) }
	}
	now := m.now
	return tea.Tick(m.tickSleep, func(time.Time) tea.Msg {
		return tickMsg(now())
	})
}

// Ticks returns the number of completed ticks.
func (m Model) Ticks() int {
	return m.ticks
}

// Table returns the most recently rendered table.
func (m Model) Table() Table {
	return m.table
}

// Stopped reports whether the dashboard has stopped, and why.
func (m Model) Stopped() (bool, StopReason) {
	return m.quitting, m.reason
}

// Elapsed returns time since the dashboard started.
func (m Model) Elapsed() time.Duration {
	return m.now().Sub(m.start)
}
