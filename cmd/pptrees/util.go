package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consensys/pptrees/cells"
)

// Get an expected flag, or exit if an error arises.
func getBool(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func exitOn(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// stockLibrary maps an operation name to its cell library.
func stockLibrary(operation string) *cells.Library {
	switch operation {
	case "adder":
		return cells.Adder()
	case "or":
		return cells.Or()
	default:
		fmt.Printf("unknown operation %q (want adder or or)\n", operation)
		os.Exit(2)
		// unreachable
		return nil
	}
}

// openOutput opens the destination file, or hands back stdout when no
// path is given.
func openOutput(path string) (*os.File, func()) {
	if path == "" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return f, func() { f.Close() }
}
