package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tensorstat/tensorstat/envconfig"
	"github.com/tensorstat/tensorstat/progress"
	"github.com/tensorstat/tensorstat/safetensors"
)

func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Summarize tensor payload values (F32, F16 and BF16 only)",
		Args:  cobra.ExactArgs(1),
		RunE:  StatsHandler,
	}
}

func StatsHandler(cmd *cobra.Command, args []string) error {
	f, err := safetensors.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var p *progress.Progress
	if !envconfig.NoProgress {
		p = progress.NewProgress(os.Stderr)
		p.Add(progress.NewSpinner("decoding tensors"))
	}

	var data [][]string
	var skipped int

	for _, t := range f.Header.Tensors {
		st, err := f.TensorStats(t)
		if err != nil {
			slog.Debug("skipping tensor", "name", t.Name, "dtype", t.DataType, "error", err)
			skipped++
			continue
		}

		data = append(data, []string{
			t.Name,
			t.DataType,
			fmt.Sprintf("%.4g", st.Min),
			fmt.Sprintf("%.4g", st.Max),
			fmt.Sprintf("%.4g", st.Mean),
			fmt.Sprintf("%.4g", st.Std),
		})
	}

	if p != nil {
		p.StopAndClear()
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"NAME", "TYPE", "MIN", "MAX", "MEAN", "STD"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	if skipped > 0 {
		fmt.Printf("\n%d tensors skipped (no data offsets or undecodable dtype)\n", skipped)
	}

	return nil
}
