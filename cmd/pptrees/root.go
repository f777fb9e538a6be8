package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/consensys/pptrees"
	"github.com/consensys/pptrees/logger"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pptrees",
	Short: "A generator for parallel prefix circuits.",
	Long: `A generator (and general toolbox) for parallel prefix circuits: adders and
prefix scans, picked from the Catalan-indexed space of tree shapes and written
out as netlists, Verilog or VHDL.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getBool(cmd, "verbose") {
			logger.Set(logger.Logger().Level(zerolog.DebugLevel))
		} else {
			logger.Set(logger.Logger().Level(zerolog.InfoLevel))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if getBool(cmd, "version") {
			fmt.Printf("pptrees %s\n", pptrees.Version)
			return
		}
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
