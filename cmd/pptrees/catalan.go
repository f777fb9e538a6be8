package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/consensys/pptrees/prefix"
)

var catalanCmd = &cobra.Command{
	Use:   "catalan [flags] width(s)",
	Short: "count the tree shapes available at given widths.",
	Long: `A width-w prefix tree has catalan(w-1) distinct shapes; structure indexes
passed to generate --index must lie below that count.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, arg := range args {
			width, err := strconv.Atoi(arg)
			if err != nil || width < 1 {
				fmt.Printf("invalid width %q\n", arg)
				os.Exit(2)
			}
			fmt.Printf("%d: %s\n", width, prefix.Catalan(width-1))
		}
	},
}

func init() {
	rootCmd.AddCommand(catalanCmd)
}
