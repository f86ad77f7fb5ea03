package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var (
	// Set via TENSORSTAT_DEBUG in the environment
	Debug bool
	// Set via TENSORSTAT_WORKERS in the environment
	Workers int
	// Set via TENSORSTAT_NOPROGRESS in the environment
	NoProgress bool
)

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"TENSORSTAT_DEBUG":      {"TENSORSTAT_DEBUG", Debug, "Show additional debug information (e.g. TENSORSTAT_DEBUG=1)"},
		"TENSORSTAT_WORKERS":    {"TENSORSTAT_WORKERS", Workers, "Number of concurrent compression workers (default: number of CPUs)"},
		"TENSORSTAT_NOPROGRESS": {"TENSORSTAT_NOPROGRESS", NoProgress, "Do not render progress bars"},
	}
}

func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Clean quotes and spaces from the value
func clean(key string) string {
	return strings.Trim(os.Getenv(key), "\"' ")
}

func init() {
	LoadConfig()
}

func LoadConfig() {
	Debug = false
	if debug := clean("TENSORSTAT_DEBUG"); debug != "" {
		d, err := strconv.ParseBool(debug)
		if err == nil {
			Debug = d
		} else {
			Debug = true
		}
	}

	Workers = 0
	if workers := clean("TENSORSTAT_WORKERS"); workers != "" {
		w, err := strconv.Atoi(workers)
		if err != nil || w <= 0 {
			slog.Error("invalid setting must be greater than zero", "TENSORSTAT_WORKERS", workers, "error", err)
		} else {
			Workers = w
		}
	}

	NoProgress = false
	if noprogress := clean("TENSORSTAT_NOPROGRESS"); noprogress != "" {
		NoProgress = true
	}
}
