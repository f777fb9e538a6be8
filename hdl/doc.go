// Package hdl renders netlists as synthesizable Verilog or VHDL. The
// output is self contained: behavioral definitions of the gate
// primitives, one module per used cell, then the top module wiring
// every instance over flat w<id> nets. Emission is deterministic, so
// regenerating an unchanged circuit reproduces the file byte for
// byte.
package hdl
