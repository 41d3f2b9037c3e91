package config

import "time"

// Settings holds the ambient knobs read from the optional config file and
// PROCINFO_* environment variables. None of them change what is measured,
// only how the dashboard paces and draws itself.
type Settings struct {
	// RefreshPerSecond is the terminal repaint rate. It never controls how
	// often samples are taken.
	RefreshPerSecond int `mapstructure:"refresh_per_second"`

	// CPUWindow is the blocking observation window for each CPU reading.
	CPUWindow time.Duration `mapstructure:"cpu_window"`

	// TickSleep is the pause after a table is rendered and before the next
	// tick. The effective cadence is CPUWindow + TickSleep.
	TickSleep time.Duration `mapstructure:"tick_sleep"`

	// LogFile receives log output while the dashboard is running. Empty
	// discards it.
	LogFile string `mapstructure:"log_file"`

	// Sequential measures tracked processes one at a time instead of
	// fanning out.
	Sequential bool `mapstructure:"sequential"`

	// NoColor disables ANSI styling.
	NoColor bool `mapstructure:"no_color"`
}

// RunConfig is the parsed command line. It is immutable after parsing.
type RunConfig struct {
	// ProcessNames is the ordered list of display names; it fixes row order.
	ProcessNames []string

	// WatchDuration bounds the run when Watch is true.
	WatchDuration time.Duration
	Watch         bool
}

// Defaults
const (
	DefaultRefreshPerSecond = 4
	DefaultCPUWindow        = time.Second
	DefaultTickSleep        = time.Second
)

// DefaultSettings returns the settings used when no file or env override is present.
func DefaultSettings() *Settings {
	return &Settings{
		RefreshPerSecond: DefaultRefreshPerSecond,
		CPUWindow:        DefaultCPUWindow,
		TickSleep:        DefaultTickSleep,
	}
}
