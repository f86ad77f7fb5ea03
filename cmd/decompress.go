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

func NewDecompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decompress INPUT OUTPUT",
		Short: "Restore a safetensors file from an stz container",
		Args:  cobra.ExactArgs(2),
		RunE:  DecompressHandler,
	}
}

func DecompressHandler(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("Decompressing %s\n", args[0])
	slog.Debug("decompress", "input", args[0], "output", args[1])

	var opts stz.Options

	var p *progress.Progress
	if !envconfig.NoProgress {
		p = progress.NewProgress(os.Stderr)
		bar := progress.NewBar("decompressing", finfo.Size(), 0)
		p.Add(bar)
		opts.Progress = bar.Set
	}

	stats, err := stz.Decompress(cmd.Context(), in, out, opts)
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

	return nil
}
