package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tensorstat/tensorstat/envconfig"
	"github.com/tensorstat/tensorstat/progress"
	"github.com/tensorstat/tensorstat/stz"
)

func NewCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress INPUT OUTPUT",
		Short: "Recompress a safetensors file into an stz container",
		Args:  cobra.ExactArgs(2),
		RunE:  CompressHandler,
	}

	cmd.Flags().IntP("level", "l", stz.DefaultLevel, "zstd compression level (1-22)")

	return cmd
}

func CompressHandler(cmd *cobra.Command, args []string) error {
	level, err := cmd.Flags().GetInt("level")
	if err != nil {
		return err
	}

	in, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	finfo, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer out.Close()

	fmt.Printf("Compressing %s (level %d)\n", args[0], level)
	slog.Debug("compress", "input", args[0], "output", args[1], "level", level, "workers", envconfig.Workers)

	opts := stz.Options{Level: level, Workers: envconfig.Workers}

	var p *progress.Progress
	if !envconfig.NoProgress {
		p = progress.NewProgress(os.Stderr)
		bar := progress.NewBar("compressing", finfo.Size(), 0)
		p.Add(bar)
		opts.Progress = bar.Set
	}

	stats, err := stz.Compress(cmd.Context(), in, out, opts)
	if p != nil {
		p.Stop()
	}
	if err != nil {
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	fmt.Printf("Done in %.2fs\n", stats.Elapsed.Seconds())
	fmt.Printf("Ratio: %.2fx (%d -> %d bytes)\n", stats.Ratio(), stats.BytesIn, stats.BytesOut)

	return nil
}
