package monitor

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/auth-xyz/process-info/internal/errors"
	"github.com/auth-xyz/process-info/internal/logger"
)

// SelfName is the display name that tracks the monitor's own process.
const SelfName = "self"

// Resolve maps each display name to a live process, preserving order.
//
// A name is resolved as follows:
//   - "self" is the monitor's own process
//   - a positive integer is taken as a PID
//   - anything else matches the lowest-PID process whose executable name
//     equals it, or whose first command-line word has it as base name
//
// Names that resolve to nothing still produce a TrackedProcess with a nil
// Handle so the dashboard can show the row as unavailable. The only error
// returned is a failure to enumerate processes at all.
func Resolve(ctx context.Context, src ProcessSource, names []string, log logger.Logger) ([]TrackedProcess, error) {
	if log == nil {
		log = logger.Noop()
	}

	var listing []ProcessInfo
	listed := false

	targets := make([]TrackedProcess, 0, len(names))
	for _, name := range names {
		t := TrackedProcess{DisplayName: name}

		pid, byPID := parsePID(name)
		switch {
		case name == SelfName:
			t.PID = src.SelfPID()
		case byPID:
			t.PID = pid
		default:
			if !listed {
				var err error
				listing, err = src.List(ctx)
				if err != nil {
					return nil, errors.WrapWithCode(err, errors.ErrProcess,
						"Couldn't list running processes",
						"Check that the process table is readable (on Linux, /proc must be mounted)")
				}
				sort.Slice(listing, func(i, j int) bool { return listing[i].PID < listing[j].PID })
				listed = true
			}

			info, ok := findByName(listing, name)
			if !ok {
				t.ResolveErr = errors.New(errors.ErrProcess,
					fmt.Sprintf("No running process named '%s'", name),
					"Check the name with ps, or pass a PID instead")
				log.Warn("%s: not found", name)
				targets = append(targets, t)
				continue
			}
			t.PID = info.PID
		}

		handle, err := src.Open(ctx, t.PID)
		if err != nil {
			t.ResolveErr = errors.Wrap(err, fmt.Sprintf("Couldn't open PID %d", t.PID))
			log.Warn("%s: open pid %d: %v", name, t.PID, err)
		} else {
			t.Handle = handle
			log.Debug("%s: tracking pid %d", name, t.PID)
		}
		targets = append(targets, t)
	}

	return targets, nil
}

func parsePID(name string) (int32, bool) {
	n, err := strconv.ParseInt(name, 10, 32)
	if err != nil || n <= 0 {
		return 0, false
	}
	return int32(n), true
}

// findByName expects listing sorted by PID.
func findByName(listing []ProcessInfo, name string) (ProcessInfo, bool) {
	for _, info := range listing {
		if info.Name == name {
			return info, true
		}
	}
	for _, info := range listing {
		if len(info.Cmdline) > 0 && filepath.Base(info.Cmdline[0]) == name {
			return info, true
		}
	}
	return ProcessInfo{}, false
}
