// Package monitor implements the live process dashboard.
//
// The dashboard shows CPU, resident memory, and GPU utilization for a fixed,
// ordered list of processes, refreshed in place once per tick.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View):
//
//   - Model: tracked processes, the current table, tick count, stop state
//   - Update: tick events, sample results, keystrokes, stop requests
//   - View: title, table, and status footer
//
// # Key Components
//
//	Sampler        - Measures every tracked process and the GPU once per tick
//	ProcessSource  - Process enumeration and accounting (gopsutil in production)
//	GPUQuerier     - System-wide GPU load (nvidia-smi in production)
//	Resolve        - Maps display names to live processes at startup
//
// # Message Flow
//
//  1. tickMsg fires; if the watch duration has elapsed the program quits
//  2. sampleCmd() runs the Sampler, which blocks for one CPU window
//  3. samplesMsg arrives; the table is replaced wholesale
//  4. a fixed pause (TickSleep) is scheduled before the next tickMsg
//
// The effective cadence is therefore the CPU window plus the pause, about
// two seconds with defaults. The pause is not shortened to compensate.
//
// Stop requests (q, Ctrl+C, or StopMsg from a signal) that arrive while a
// sample is in flight take effect once that sample returns, so a tick is
// never cut short.
package monitor
