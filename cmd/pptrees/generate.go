package main

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/consensys/pptrees/hdl"
	"github.com/consensys/pptrees/netlist"
	"github.com/consensys/pptrees/prefix"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "generate a prefix circuit and write it out.",
	Long: `Generate builds the prefix forest of an operation at a given width, picks the
tree shapes from a named topology or from explicit structure indexes, and
writes the linearized circuit as Verilog, VHDL or a binary netlist.`,
	Run: func(cmd *cobra.Command, args []string) {
		width := getInt(cmd, "width")

		var fopts []prefix.ForestOption
		if indexes := getStringArray(cmd, "index"); len(indexes) > 0 {
			parsed := make([]*big.Int, len(indexes))
			for i, s := range indexes {
				v, ok := new(big.Int).SetString(s, 10)
				if !ok {
					fmt.Printf("invalid structure index %q\n", s)
					os.Exit(2)
				}
				parsed[i] = v
			}
			fopts = append(fopts, prefix.WithIndexes(parsed))
		} else {
			fopts = append(fopts, prefix.WithForestAlias(getString(cmd, "topology")))
		}
		if getBool(cmd, "carry-in") {
			fopts = append(fopts, prefix.WithCarryIn())
		}
		if getBool(cmd, "unshared") {
			fopts = append(fopts, prefix.WithUnshared())
		}

		f, err := prefix.NewForest(width, fopts...)
		exitOn(err)

		if degree := getInt(cmd, "sparsify"); degree > 0 {
			exitOn(f.Sparsify(degree))
		}
		if getBool(cmd, "optimize-cells") {
			f.OptimizeCells()
		}

		var nopts []netlist.Option
		if name := getString(cmd, "name"); name != "" {
			nopts = append(nopts, netlist.WithName(name))
		}
		nl, err := netlist.Build(f, stockLibrary(getString(cmd, "operation")), nopts...)
		exitOn(err)

		out, closeOut := openOutput(getString(cmd, "output"))
		defer closeOut()

		switch format := getString(cmd, "format"); format {
		case "verilog":
			var hopts []hdl.Option
			if banner := getString(cmd, "banner"); banner != "" {
				hopts = append(hopts, hdl.WithBanner(banner))
			}
			exitOn(hdl.WriteVerilog(out, nl, hopts...))
		case "vhdl":
			var hopts []hdl.Option
			if banner := getString(cmd, "banner"); banner != "" {
				hopts = append(hopts, hdl.WithBanner(banner))
			}
			exitOn(hdl.WriteVHDL(out, nl, hopts...))
		case "netlist":
			_, err := nl.WriteTo(out)
			exitOn(err)
		default:
			fmt.Printf("unknown output format %q (want verilog, vhdl or netlist)\n", format)
			os.Exit(2)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntP("width", "w", 0, "operand width in bits")
	generateCmd.Flags().StringP("topology", "t", "sklansky", fmt.Sprintf("tree topology (%s)", strings.Join(prefix.Aliases(), ", ")))
	generateCmd.Flags().StringArray("index", []string{}, "structure index per member tree, overrides --topology")
	generateCmd.Flags().String("operation", "adder", "operation to generate (adder, or)")
	generateCmd.Flags().Bool("carry-in", false, "add an incoming carry below bit 0")
	generateCmd.Flags().Bool("unshared", false, "keep member trees private, duplicating shared nodes")
	generateCmd.Flags().Int("sparsify", 0, "keep one root in every group of this size, recompute the rest")
	generateCmd.Flags().Bool("optimize-cells", false, "demote combines to grey and buffer cells where propagate is unused")
	generateCmd.Flags().StringP("format", "f", "verilog", "output format (verilog, vhdl, netlist)")
	generateCmd.Flags().StringP("output", "o", "", "output file, stdout if empty")
	generateCmd.Flags().String("name", "", "top module name, defaults to <library>_<width>")
	generateCmd.Flags().String("banner", "", "banner comment for hdl outputs")
	generateCmd.MarkFlagRequired("width")
}
