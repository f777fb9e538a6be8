// Package pptrees generates parallel-prefix arithmetic circuits from
// binary tree descriptions.
//
// A prefix tree computes one bit of an associative scan; a forest of
// them, one tree per output bit and deduplicated across trees, is the
// prefix graph of an adder, a comparator or any scan-shaped operation.
// Tree shapes are indexed by Catalan numbers, so the whole design
// space is enumerable: the serial (ripple) chain, Sklansky,
// Kogge-Stone and Brent-Kung all sit at known points of it, and local
// rebalancing rewrites move between neighbouring shapes.
//
// The subpackages split the pipeline:
//   - prefix: trees, forests, the shape bijection and the rewrites
//   - cells: node kind to gate template libraries
//   - netlist: linearization, simulation and serialization
//   - hdl: Verilog and VHDL emission
package pptrees

import (
	"github.com/blang/semver/v4"
)

// Version of the pptrees module, recorded in serialized netlists.
var Version = semver.MustParse("0.9.0")
