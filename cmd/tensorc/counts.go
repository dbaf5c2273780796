package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/augustjohansson/ffcx/form"
	"github.com/augustjohansson/ffcx/tensorgen"
)

const (
	countWidth   = 8
	defaultWidth = 80
	minNameWidth = 12
)

var countsCmd = &cobra.Command{
	Use:   "counts [flags] form_file",
	Short: "print operation counts of each integral at every optimisation level.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := form.Load(args[0])
		if err != nil {
			return err
		}
		rows, err := countOps(f, GetFloat64(cmd, "epsilon"))
		if err != nil {
			return err
		}
		width := int(GetUint(cmd, "textwidth"))
		if width == 0 {
			width = terminalWidth()
		}
		printCounts(cmd.OutOrStdout(), rows, width, GetFlag(cmd, "split"))
		return nil
	},
}

type countRow struct {
	Name string
	Ops  []tensorgen.Ops // by level
}

func countOps(f *form.Form, eps float64) ([]countRow, error) {
	irs, err := f.IRs()
	if err != nil {
		return nil, err
	}
	rows := make([]countRow, len(irs))
	for level := tensorgen.Expanded; level <= tensorgen.MaxLevel; level++ {
		params := tensorgen.DefaultParameters()
		params.Epsilon = eps
		params.OptimizeLevel = level
		codes, err := tensorgen.GenerateAll(irs, f.Prefix, params, 0)
		if err != nil {
			return nil, fmt.Errorf("level %s: %w", level, err)
		}
		for k, code := range codes {
			rows[k].Name = code.ClassName
			rows[k].Ops = append(rows[k].Ops, code.Ops)
		}
	}
	return rows, nil
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// printCounts writes one row per integral and one column per level. Names
// are cut to fit the width; split prints jacobian+geometry+contraction.
func printCounts(w io.Writer, rows []countRow, width int, split bool) {
	cols := int(tensorgen.MaxLevel) + 1
	cell := countWidth
	if split {
		cell = 2 * countWidth
	}
	nameWidth := max(width-cols*cell, minNameWidth)

	fmt.Fprintf(w, "%-*s", nameWidth, "integral")
	for level := 0; level < cols; level++ {
		fmt.Fprintf(w, "%*s", cell, fmt.Sprintf("O%d", level))
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		name := row.Name
		if len(name) >= nameWidth {
			name = name[:nameWidth-2] + "~"
		}
		fmt.Fprintf(w, "%-*s", nameWidth, name)
		for _, ops := range row.Ops {
			if split {
				fmt.Fprintf(w, "%*s", cell, fmt.Sprintf("%d+%d+%d", ops.Jacobian, ops.Geometry, ops.Contraction))
			} else {
				fmt.Fprintf(w, "%*d", cell, ops.Total())
			}
		}
		fmt.Fprintln(w)
	}
}

func init() {
	rootCmd.AddCommand(countsCmd)
	countsCmd.Flags().Float64("epsilon", tensorgen.DefaultParameters().Epsilon, "magnitude below which reference tensor entries are zero")
	countsCmd.Flags().Uint("textwidth", 0, "maximum width of the table (0 for the terminal width)")
	countsCmd.Flags().Bool("split", false, "show Jacobian, geometry and contraction counts separately")
}
