package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/consensys/pptrees/io"
	"github.com/consensys/pptrees/netlist"
)

var infoCmd = &cobra.Command{
	Use:   "info [flags] netlist_file",
	Short: "print statistics of a serialized netlist.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var nl netlist.Netlist
		exitOn(io.ReadFile(args[0], &nl))

		fmt.Printf("name:       %s\n", nl.Name)
		fmt.Printf("library:    %s\n", nl.Library().Name())
		fmt.Printf("width:      %d\n", nl.Width)
		fmt.Printf("carry-in:   %v\n", nl.CarryIn)
		fmt.Printf("instances:  %d\n", len(nl.Instances))
		fmt.Printf("wires:      %d\n", nl.NbWires)
		fmt.Printf("depth:      %d\n", nl.Depth())
		if cp, err := nl.CriticalPath(); err == nil {
			fmt.Printf("delay:      %.1f\n", cp)
		}

		counts := nl.CountByCell()
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Println("cells:")
		for _, name := range names {
			fmt.Printf("  %-18s %d\n", name, counts[name])
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
