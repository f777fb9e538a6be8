package netlist

import (
	"fmt"

	"github.com/consensys/pptrees/cells"
)

// Simulate evaluates the netlist over the given input vectors, one
// slice per named circuit input with the least significant bit first,
// and returns the output vectors the same way. The instance order is
// topological, so a single forward pass settles every wire.
func (nl *Netlist) Simulate(inputs map[string][]bool) (map[string][]bool, error) {
	want := make(map[string]int)
	for _, t := range nl.Inputs {
		if t.Pos+1 > want[t.Name] {
			want[t.Name] = t.Pos + 1
		}
	}
	if len(inputs) != len(want) {
		return nil, fmt.Errorf("%w: got %d input vectors, want %d", ErrBadInput, len(inputs), len(want))
	}
	for name, w := range want {
		vec, ok := inputs[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing input %s", ErrBadInput, name)
		}
		if len(vec) != w {
			return nil, fmt.Errorf("%w: input %s has %d bits, want %d", ErrBadInput, name, len(vec), w)
		}
	}

	values := make([]bool, nl.NbWires)
	for _, t := range nl.Inputs {
		values[t.Wire] = inputs[t.Name][t.Pos]
	}

	in := make([]bool, 0, 8)
	for i := range nl.Instances {
		inst := &nl.Instances[i]
		c, err := nl.lib.Cell(inst.Kind)
		if err != nil {
			return nil, err
		}
		in = in[:0]
		for _, a := range inst.Args {
			in = append(in, values[a])
		}
		out := c.Eval(in)
		if len(out) != len(inst.Outs) {
			return nil, fmt.Errorf("%w: %s returned %d bits, want %d", cells.ErrBadCell, c.Name, len(out), len(inst.Outs))
		}
		for j, o := range inst.Outs {
			values[o] = out[j]
		}
	}

	outputs := make(map[string][]bool)
	for _, t := range nl.Outputs {
		vec := outputs[t.Name]
		for len(vec) <= t.Pos {
			vec = append(vec, false)
		}
		vec[t.Pos] = values[t.Wire]
		outputs[t.Name] = vec
	}
	return outputs, nil
}
