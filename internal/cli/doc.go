// Package cli implements the procinfo command-line interface.
//
// The root command takes a single comma-separated list of process names and
// an optional --watch bound, validates both, and hands off to the dashboard:
//
//	procinfo nginx,postgres
//	procinfo self,1234 --watch 60s
//	procinfo version
//
// # Startup
//
// monitorCommand performs the startup phases in order:
//
//  1. Load ambient settings (config file and PROCINFO_* env vars)
//  2. Point the standard logger at log_file, or discard it
//  3. Resolve display names to live processes
//  4. Build the sampler and the Bubble Tea model, then run the program
//
// Argument and settings errors are returned before the terminal is touched.
//
// # Signals
//
// Execute installs a SIGINT/SIGTERM-aware context. The first signal is turned
// into a monitor.StopMsg, which lets an in-flight sample finish. A second
// signal cancels the program outright.
package cli
