// Package cells maps abstract prefix-tree node kinds to concrete gate
// templates. A Library is the lookup table the netlist linearizer
// consults: for every node kind a tree or forest can emit, it names the
// cell, its port shapes, the HDL bodies and the boolean function used
// in simulation.
//
// Cell bodies are structural over a small fixed primitive set (xor2,
// and2, or2, ao21, buf1, tie0) whose behavioral definitions the hdl
// package emits once per output file.
package cells
