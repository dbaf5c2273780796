package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/form"
	"github.com/augustjohansson/ffcx/occa"
	"github.com/augustjohansson/ffcx/tensorgen"
	"github.com/augustjohansson/ffcx/ufc"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] form_file",
	Short: "generate integral code for a form file.",
	Long: `Generate the integral classes of every integral in a form file. The ufc
	dialect writes a C++ header of UFC integral classes, the okl dialect one
	OCCA kernel per integral evaluating a batch of cells.`,
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
		out, err := compile(f, params, GetInt(cmd, "jobs"))
		if err != nil {
			return err
		}
		output := GetString(cmd, "output")
		if output == "" {
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		}
		log.Infof("writing %d integrals to %s", len(f.Integrals), output)
		return os.WriteFile(output, []byte(out), 0o644)
	},
}

func compile(f *form.Form, params tensorgen.Parameters, jobs int) (string, error) {
	irs, err := f.IRs()
	if err != nil {
		return "", err
	}
	codes, err := tensorgen.GenerateAll(irs, f.Prefix, params, jobs)
	if err != nil {
		return "", err
	}

	if params.Dialect == codegen.OKL {
		sources := make([]string, len(codes))
		for k, code := range codes {
			layout := occa.NewLayout(irs[k], f.Integrals[k].Coefficients)
			if sources[k], err = occa.Source(code.ClassName, code.Body, layout); err != nil {
				return "", err
			}
		}
		return strings.Join(sources, "\n"), nil
	}

	classes := make([]string, len(codes))
	for k, code := range codes {
		if classes[k], err = ufc.Integral(code, irs[k].DomainType); err != nil {
			return "", err
		}
	}
	return ufc.Header(f.Prefix, classes)
}

func init() {
	rootCmd.AddCommand(compileCmd)
	addGenerationFlags(compileCmd)
	compileCmd.Flags().StringP("output", "o", "", "write to file instead of standard output")
	compileCmd.Flags().IntP("jobs", "j", 0, "integrals generated in parallel (0 for all cores)")
}
