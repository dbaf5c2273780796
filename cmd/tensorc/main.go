// Command tensorc compiles form files into tabulate_tensor code in tensor
// representation.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set by the linker in release builds
var Version string

var rootCmd = &cobra.Command{
	Use:   "tensorc",
	Short: "A tensor representation form compiler.",
	Long: `Compile integrals of variational forms into element tensor code using
	the tensor representation A = A0:GK.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if !GetFlag(cmd, "version") {
			fmt.Fprintln(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		fmt.Fprint(cmd.OutOrStdout(), "tensorc ")
		if Version != "" {
			fmt.Fprint(cmd.OutOrStdout(), Version)
		} else if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprint(cmd.OutOrStdout(), info.Main.Version)
		} else {
			fmt.Fprint(cmd.OutOrStdout(), "(unknown version)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
