// Package cmd assembles the tensorstat command line interface.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tensorstat/tensorstat/envconfig"
	"github.com/tensorstat/tensorstat/logutil"
	"github.com/tensorstat/tensorstat/version"
)

// ErrExitFailure marks a failure that has already been reported to the
// user; the process exits nonzero without printing it again.
var ErrExitFailure = errors.New("exit failure")

func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "tensorstat",
		Short:         "Inspect and recompress safetensors checkpoints",
		Version:       version.Version,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true

			level := slog.LevelInfo
			if envconfig.Debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(logutil.NewLogger(os.Stderr, level))
			slog.Debug("environment", "config", envconfig.Values())
		},
	}

	rootCmd.AddCommand(
		NewAnalyzeCmd(),
		NewTensorsCmd(),
		NewStatsCmd(),
		NewCompressCmd(),
		NewDecompressCmd(),
	)

	appendEnvDocs(rootCmd, envconfig.AsMap())

	return rootCmd
}

func appendEnvDocs(cmd *cobra.Command, vars map[string]envconfig.EnvVar) {
	if len(vars) == 0 {
		return
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	envUsage := "\nEnvironment Variables:\n"
	for _, k := range keys {
		envUsage += fmt.Sprintf("      %-24s   %s\n", vars[k].Name, vars[k].Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}
