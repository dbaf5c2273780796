package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/augustjohansson/ffcx/factorization"
	"github.com/augustjohansson/ffcx/form"
)

var factorizeCmd = &cobra.Command{
	Use:   "factorize [flags] form_file",
	Short: "split the expressions of a form file into argument factors.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := form.Load(args[0])
		if err != nil {
			return err
		}
		return factorize(cmd.OutOrStdout(), f, GetString(cmd, "name"))
	},
}

func factorize(w io.Writer, f *form.Form, name string) error {
	var names []string
	for n := range f.Expressions {
		names = append(names, n)
	}
	slices.Sort(names)
	if name != "" {
		if _, ok := f.Expressions[name]; !ok {
			return fmt.Errorf("no expression %q in the form file", name)
		}
		names = []string{name}
	}

	for _, n := range names {
		res, err := factorization.FromExpr(f.Expressions[n])
		if err != nil {
			return fmt.Errorf("%s: %w", n, err)
		}
		fmt.Fprintf(w, "%s: rank %d\n", n, res.Rank())
		fmt.Fprint(w, res)
		fmt.Fprintf(w, "%s = %s\n", n, res.Expr())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(factorizeCmd)
	factorizeCmd.Flags().String("name", "", "only factorize the named expression")
}
