package memory

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"jukebox/internal/logging"
)

// DefaultMemoryRatio is the share of the container limit handed to the
// Go heap. The remainder is left for the SQLite page cache, goroutine
// stacks and cgo allocations the runtime cannot see.
const DefaultMemoryRatio = 0.85

// ConfigResult reports what ConfigureFromEnv decided.
type ConfigResult struct {
	Configured     bool
	Source         string // "GOMEMLIMIT", "MEMORY_LIMIT" or "none"
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv derives the Go soft memory limit from the
// environment. An explicit GOMEMLIMIT wins and is left alone; otherwise
// MEMORY_LIMIT (a byte count, typically injected through the Kubernetes
// Downward API) scaled by MEMORY_RATIO is applied.
func ConfigureFromEnv() ConfigResult {
	if env := os.Getenv("GOMEMLIMIT"); env != "" {
		return reportRuntimeLimit(env)
	}

	container, ok := containerLimit()
	if !ok {
		return ConfigResult{Source: "none"}
	}

	ratio := ratioFromEnv()
	goLimit := int64(float64(container) * ratio)
	debug.SetMemoryLimit(goLimit)
	logging.Info("Soft memory limit %s (%.0f%% of the %s container limit)",
		formatBytes(goLimit), ratio*100, formatBytes(container))

	return ConfigResult{
		Configured:     true,
		Source:         "MEMORY_LIMIT",
		ContainerLimit: container,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

// reportRuntimeLimit reads back the limit the runtime already parsed
// from GOMEMLIMIT.
func reportRuntimeLimit(env string) ConfigResult {
	r := ConfigResult{Source: "GOMEMLIMIT"}
	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
		r.Configured = true
		r.GoMemLimit = limit
	}
	logging.Info("GOMEMLIMIT already set: %s", env)
	return r
}

// containerLimit reads MEMORY_LIMIT as a byte count.
func containerLimit() (int64, bool) {
	s := os.Getenv("MEMORY_LIMIT")
	if s == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving the Go memory limit alone")
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		logging.Warn("Ignoring unusable MEMORY_LIMIT %q", s)
		return 0, false
	}
	return n, true
}

// ratioFromEnv reads MEMORY_RATIO, falling back to the default when the
// value is missing, unparseable or outside (0, 1].
func ratioFromEnv() float64 {
	s := os.Getenv("MEMORY_RATIO")
	if s == "" {
		return DefaultMemoryRatio
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r <= 0 || r > 1 {
		logging.Warn("Ignoring MEMORY_RATIO %q, using %.2f", s, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return r
}

// formatBytes renders a byte count in IEC units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
