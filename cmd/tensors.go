package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/tensorstat/tensorstat/format"
	"github.com/tensorstat/tensorstat/safetensors"
)

func NewTensorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tensors FILE",
		Short: "List the tensors declared in a safetensors header",
		Args:  cobra.ExactArgs(1),
		RunE:  TensorsHandler,
	}
}

func TensorsHandler(cmd *cobra.Command, args []string) error {
	f, err := safetensors.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var data [][]string
	var elements, payload int64

	for _, t := range f.Header.Tensors {
		if len(t.Offsets) == 2 {
			if err := f.ValidateOffsets(t); err != nil {
				return err
			}
		}

		data = append(data, []string{
			t.Name,
			t.DataType,
			t.Shape.String(),
			format.HumanNumber(uint64(t.Elements())),
			format.HumanBytes(f.TensorSize(t)),
		})
		elements += t.Elements()
		payload += f.TensorSize(t)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"NAME", "TYPE", "SHAPE", "ELEMENTS", "SIZE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	fmt.Printf("\n%d tensors, %s elements, %s payload, header %s\n",
		len(f.Header.Tensors),
		format.HumanNumber(uint64(elements)),
		format.HumanBytes(payload),
		format.HumanBytes(int64(f.HeaderSize)))

	return nil
}
