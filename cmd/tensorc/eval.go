package main

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/augustjohansson/ffcx/form"
	"github.com/augustjohansson/ffcx/kernel"
	"github.com/augustjohansson/ffcx/occa"
	"github.com/augustjohansson/ffcx/tensorgen"
)

var evalCmd = &cobra.Command{
	Use:   "eval [flags] form_file",
	Short: "evaluate the element tensor of one integral on one cell.",
	Long: `Generate the code of one integral and execute it on the given cell. The
	interpreter runs the syntax tree directly; with --occa the code is compiled
	as an OCCA kernel and run for --cells copies of the cell.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := getParameters(cmd)
		if err != nil {
			return err
		}
		f, err := form.Load(args[0])
		if err != nil {
			return err
		}
		in, err := getInputs(cmd)
		if err != nil {
			return err
		}
		ev := evaluation{
			index:  GetInt(cmd, "integral"),
			params: params,
			in:     in,
			device: GetFlag(cmd, "occa"),
			props:  GetString(cmd, "device"),
			cells:  GetInt(cmd, "cells"),
		}
		return ev.run(cmd.OutOrStdout(), f)
	},
}

func getInputs(cmd *cobra.Command) (kernel.Inputs, error) {
	var in kernel.Inputs
	for _, s := range GetStringArray(cmd, "coordinates") {
		x, err := parseFloats(s)
		if err != nil {
			return in, err
		}
		in.Coordinates = append(in.Coordinates, x)
	}
	for _, s := range GetStringArray(cmd, "w") {
		w, err := parseFloats(s)
		if err != nil {
			return in, err
		}
		in.W = append(in.W, w)
	}
	in.Facets = GetIntSlice(cmd, "facet")
	if len(in.Coordinates) == 0 {
		return in, fmt.Errorf("no vertex coordinates given")
	}
	return in, nil
}

type evaluation struct {
	index  int
	params tensorgen.Parameters
	in     kernel.Inputs
	device bool
	props  string
	cells  int
}

func (ev evaluation) run(w io.Writer, f *form.Form) error {
	if ev.index < 0 || ev.index >= len(f.Integrals) {
		return fmt.Errorf("integral %d out of range, the form has %d", ev.index, len(f.Integrals))
	}
	integral := f.Integrals[ev.index]
	ir, err := integral.IR()
	if err != nil {
		return err
	}
	code, err := tensorgen.GenerateIntegralCode(ir, f.Prefix, ev.params)
	if err != nil {
		return err
	}

	var A []float64
	if ev.device {
		layout := occa.NewLayout(ir, integral.Coefficients)
		cells := make([]kernel.Inputs, max(ev.cells, 1))
		for k := range cells {
			cells[k] = ev.in
		}
		out, err := runDevice(ev.props, code.ClassName, code.Body, layout, cells)
		if err != nil {
			return err
		}
		A = out[0]
		for k := 1; k < len(out); k++ {
			if !floats.EqualApprox(A, out[k], 1e-14) {
				return fmt.Errorf("cell %d of the batch differs from cell 0", k)
			}
		}
	} else if A, err = kernel.Run(code.Body, ir.TensorSize(), ev.in); err != nil {
		return err
	}
	log.Debugf("%s: %d operations", code.ClassName, code.Ops.Total())

	dims := ir.CaseTerms()[0].A0.Primary.Dims()
	fmt.Fprintf(w, "%s =\n%s\n", code.ClassName, formatTensor(A, dims))
	return nil
}

// formatTensor prints rank 0 tensors as a number and others as a matrix
// with the leading index along the rows
func formatTensor(A []float64, dims []int) string {
	if len(dims) == 0 {
		return fmt.Sprintf("%.15g", A[0])
	}
	rows := dims[0]
	m := mat.NewDense(rows, len(A)/rows, A)
	if len(dims) == 1 {
		m = mat.NewDense(1, len(A), A)
	}
	return fmt.Sprintf("%v", mat.Formatted(m, mat.Squeeze()))
}

func init() {
	rootCmd.AddCommand(evalCmd)
	addGenerationFlags(evalCmd)
	evalCmd.Flags().Int("integral", 0, "index of the integral in the form file")
	evalCmd.Flags().StringArray("coordinates", nil, "vertex coordinates x0,y0,x1,y1,... (repeat for the second cell of an interior facet)")
	evalCmd.Flags().StringArray("w", nil, "values of the next coefficient, comma separated (repeat per coefficient)")
	evalCmd.Flags().IntSlice("facet", nil, "local facet number(s)")
	evalCmd.Flags().Bool("occa", false, "run the code as an OCCA kernel")
	evalCmd.Flags().String("device", "", "OCCA device properties, e.g. {\"mode\": \"Serial\"}")
	evalCmd.Flags().Int("cells", 1, "number of copies of the cell in the OCCA batch")
}
