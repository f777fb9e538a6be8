// Package main times forest construction and linearization across
// widths and topologies.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/consensys/pptrees/cells"
	"github.com/consensys/pptrees/netlist"
	"github.com/consensys/pptrees/prefix"
	"github.com/consensys/pptrees/profile"
)

const benchCount = 5

var widths = []int{32, 64, 128, 256}

// /!\ internal use /!\
// running it with "profile" additionally writes a pptrees.pprof of
// cell placements; default prints average build times in csv format
func main() {
	mode := "time"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	var p *profile.Profile
	if mode == "profile" {
		p = profile.Start(profile.WithPath("pptrees.pprof"))
	}

	fmt.Println("topology,width,instances,avg_us")
	for _, width := range widths {
		for _, alias := range []string{"serial", "sklansky", "brent-kung", "kogge-stone"} {
			nbInstances, avg := run(width, alias)
			fmt.Printf("%s,%d,%d,%d\n", alias, width, nbInstances, avg.Microseconds())
		}
	}

	if p != nil {
		p.Stop()
	}
}

func run(width int, alias string) (int, time.Duration) {
	runtime.GC()
	var nbInstances int
	start := time.Now()
	for i := 0; i < benchCount; i++ {
		f, err := prefix.NewForest(width, prefix.WithForestAlias(alias))
		if err != nil {
			panic(err)
		}
		nl, err := netlist.Build(f, cells.Adder())
		if err != nil {
			panic(err)
		}
		nbInstances = len(nl.Instances)
	}
	return nbInstances, time.Since(start) / benchCount
}
