package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/augustjohansson/ffcx/codegen"
	"github.com/augustjohansson/ffcx/tensorgen"
)

// GetFlag returns a boolean flag, exiting on a flag lookup error
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func GetInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func GetFloat64(cmd *cobra.Command, flag string) float64 {
	r, err := cmd.Flags().GetFloat64(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

func GetIntSlice(cmd *cobra.Command, flag string) []int {
	r, err := cmd.Flags().GetIntSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	return r
}

// addGenerationFlags registers the code generation parameters
func addGenerationFlags(cmd *cobra.Command) {
	def := tensorgen.DefaultParameters()
	cmd.Flags().UintP("opt", "O", uint(def.OptimizeLevel), "set optimisation level (0-5)")
	cmd.Flags().Float64("epsilon", def.Epsilon, "magnitude below which reference tensor entries are zero")
	cmd.Flags().String("dialect", def.Dialect.String(), "output dialect (ufc or okl)")
}

// getParameters reads the flags registered by addGenerationFlags
func getParameters(cmd *cobra.Command) (tensorgen.Parameters, error) {
	params := tensorgen.DefaultParameters()
	params.OptimizeLevel = tensorgen.Level(GetUint(cmd, "opt"))
	params.Epsilon = GetFloat64(cmd, "epsilon")
	dialect, err := codegen.ParseDialect(GetString(cmd, "dialect"))
	if err != nil {
		return params, err
	}
	params.Dialect = dialect
	if params.OptimizeLevel > tensorgen.MaxLevel {
		return params, fmt.Errorf("%d: %w", params.OptimizeLevel, tensorgen.ErrLevel)
	}
	return params, nil
}

// parseFloats reads a comma separated list of numbers. The empty string is
// the empty list.
func parseFloats(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for k, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed number %q in %q", p, s)
		}
		out[k] = v
	}
	return out, nil
}
