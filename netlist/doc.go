// Package netlist linearizes prefix forests into flat cell instance
// lists. Shared nodes are emitted exactly once, children always ahead
// of their consumers, post cells last, so the instance order is a
// valid topological order of the circuit and a single forward pass
// simulates it.
//
// Netlists serialize to a compact binary form (a CBOR header followed
// by integer-compressed instance sections) and feed the hdl package's
// Verilog and VHDL writers.
package netlist
