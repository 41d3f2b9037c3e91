// Package parsers turns GPU tool output into monitor metrics.
package parsers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/auth-xyz/process-info/internal/errors"
	"github.com/auth-xyz/process-info/internal/monitor"
)

// NvidiaSMIQuery is the field list ParseNvidiaSMI expects, in order.
const NvidiaSMIQuery = "name,utilization.gpu,memory.used,memory.total,temperature.gpu,power.draw"

// nvidiaSMIFields is the number of comma-separated fields per GPU line.
const nvidiaSMIFields = 6

// ParseNvidiaSMI parses GPU metrics from nvidia-smi CSV output, one GPU per line.
// Expected input is from: nvidia-smi --query-gpu=<NvidiaSMIQuery> --format=csv,noheader,nounits
//
// Returns nil, nil when the host has no GPU (empty output or "No devices were found").
// Driver failure messages are returned as ErrGPU errors.
func ParseNvidiaSMI(output string) ([]monitor.GPUMetrics, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	lowerOutput := strings.ToLower(output)
	if strings.Contains(lowerOutput, "no devices") {
		return nil, nil
	}
	if strings.Contains(lowerOutput, "failed") ||
		strings.Contains(lowerOutput, "error") ||
		strings.Contains(lowerOutput, "not found") {
		return nil, errors.New(errors.ErrGPU,
			"nvidia-smi reported a failure: "+firstLine(output),
			"Check the NVIDIA driver is loaded")
	}

	var gpus []monitor.GPUMetrics
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		gpu, err := parseNvidiaSMILine(line)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrGPU,
				fmt.Sprintf("Couldn't parse nvidia-smi output for GPU %d", len(gpus)), "")
		}
		gpu.Index = len(gpus)
		gpus = append(gpus, gpu)
	}
	return gpus, nil
}

// parseNvidiaSMILine parses: name, utilization.gpu, memory.used, memory.total, temperature.gpu, power.draw
// Example: "NVIDIA GeForce RTX 3080, 45, 2048, 10240, 65, 220"
func parseNvidiaSMILine(line string) (monitor.GPUMetrics, error) {
	metrics := monitor.GPUMetrics{}

	fields := strings.Split(line, ",")
	if len(fields) < nvidiaSMIFields {
		return metrics, fmt.Errorf("nvidia-smi output has insufficient fields: expected %d, got %d", nvidiaSMIFields, len(fields))
	}

	metrics.Name = strings.TrimSpace(fields[0])

	if utilStr, ok := value(fields[1]); ok {
		util, err := strconv.ParseFloat(utilStr, 64)
		if err != nil {
			return metrics, fmt.Errorf("failed to parse GPU utilization '%s': %w", utilStr, err)
		}
		metrics.Load = util / 100
	}

	if memUsedStr, ok := value(fields[2]); ok {
		memUsed, err := strconv.ParseInt(memUsedStr, 10, 64)
		if err != nil {
			return metrics, fmt.Errorf("failed to parse GPU memory used '%s': %w", memUsedStr, err)
		}
		metrics.MemoryUsed = memUsed * 1024 * 1024
	}

	if memTotalStr, ok := value(fields[3]); ok {
		memTotal, err := strconv.ParseInt(memTotalStr, 10, 64)
		if err != nil {
			return metrics, fmt.Errorf("failed to parse GPU memory total '%s': %w", memTotalStr, err)
		}
		metrics.MemoryTotal = memTotal * 1024 * 1024
	}

	if tempStr, ok := value(fields[4]); ok {
		temp, err := strconv.Atoi(tempStr)
		if err != nil {
			return metrics, fmt.Errorf("failed to parse GPU temperature '%s': %w", tempStr, err)
		}
		metrics.Temperature = temp
	}

	if powerStr, ok := value(fields[5]); ok {
		// Power has decimal places, truncated to whole watts
		power, err := strconv.ParseFloat(powerStr, 64)
		if err != nil {
			return metrics, fmt.Errorf("failed to parse GPU power '%s': %w", powerStr, err)
		}
		metrics.PowerWatts = int(power)
	}

	return metrics, nil
}

// value trims a field and reports whether it holds a reading.
func value(field string) (string, bool) {
	s := strings.TrimSpace(field)
	if s == "" || s == "[N/A]" || s == "[Not Supported]" {
		return "", false
	}
	return s, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
