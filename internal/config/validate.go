package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/auth-xyz/process-info/internal/errors"
)

// Bounds for settings
const (
	MinRefreshPerSecond = 1
	MaxRefreshPerSecond = 60
	MinCPUWindow        = 100 * time.Millisecond
	MaxCPUWindow        = 10 * time.Second
)

// maxWatchSeconds keeps the watch duration representable as a time.Duration.
const maxWatchSeconds = math.MaxInt64 / int64(time.Second)

// ValidateSettings checks ambient settings and returns a CONFIG error for the first bad value.
func ValidateSettings(s *Settings) error {
	if s.RefreshPerSecond < MinRefreshPerSecond || s.RefreshPerSecond > MaxRefreshPerSecond {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("refresh_per_second must be between %d and %d, got %d",
				MinRefreshPerSecond, MaxRefreshPerSecond, s.RefreshPerSecond),
			"The default of 4 repaints per second is plenty for a 2s sample cadence")
	}
	if s.CPUWindow < MinCPUWindow || s.CPUWindow > MaxCPUWindow {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("cpu_window must be between %s and %s, got %s", MinCPUWindow, MaxCPUWindow, s.CPUWindow),
			"Shorter windows give noisy CPU figures; 1s matches top and ps")
	}
	if s.TickSleep < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("tick_sleep can't be negative, got %s", s.TickSleep),
			"Use 0s to sample back to back")
	}
	return nil
}

// ParseProcessList splits the positional processes argument on commas.
// Names are trimmed; an empty list or an empty entry is a usage error.
func ParseProcessList(arg string) ([]string, error) {
	if strings.TrimSpace(arg) == "" {
		return nil, errors.New(errors.ErrUsage,
			"No process names given",
			"Pass a comma-separated list, e.g. procinfo nginx,postgres")
	}

	parts := strings.Split(arg, ",")
	names := make([]string, 0, len(parts))
	for i, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			return nil, errors.New(errors.ErrUsage,
				fmt.Sprintf("Process name %d in '%s' is empty", i+1, arg),
				"Remove the stray comma")
		}
		names = append(names, name)
	}
	return names, nil
}

// ParseWatch parses a --watch value. The only accepted form is a positive
// whole number of seconds followed by "s", such as 60s.
func ParseWatch(arg string) (time.Duration, error) {
	invalid := func(cause error) error {
		return errors.WrapWithCode(cause, errors.ErrUsage,
			fmt.Sprintf("Invalid --watch value '%s'", arg),
			"Use whole seconds with an s suffix, like 60s")
	}

	if !strings.HasSuffix(arg, "s") {
		return 0, invalid(fmt.Errorf("missing 's' suffix"))
	}
	digits := strings.TrimSuffix(arg, "s")
	if digits == "" {
		return 0, invalid(fmt.Errorf("missing number of seconds"))
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, invalid(fmt.Errorf("'%s' is not a whole number", digits))
		}
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > maxWatchSeconds {
		return 0, invalid(fmt.Errorf("'%s' is too large", digits))
	}
	if n == 0 {
		return 0, invalid(fmt.Errorf("duration must be at least 1s"))
	}
	return time.Duration(n) * time.Second, nil
}

// NewRunConfig validates the command line. watchSet reports whether
// --watch was given at all, so that an explicit empty value is rejected
// rather than treated as unbounded.
func NewRunConfig(processes, watch string, watchSet bool) (*RunConfig, error) {
	names, err := ParseProcessList(processes)
	if err != nil {
		return nil, err
	}

	cfg := &RunConfig{ProcessNames: names}
	if watchSet {
		d, err := ParseWatch(watch)
		if err != nil {
			return nil, err
		}
		cfg.Watch = true
		cfg.WatchDuration = d
	}
	return cfg, nil
}
