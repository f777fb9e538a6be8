package test

import (
	"bytes"
	"math/rand"

	"github.com/consensys/pptrees/netlist"
)

// input spaces up to 2^exhaustiveBits vectors are enumerated in full
const exhaustiveBits = 12

// CircuitComputes checks the netlist against a reference function,
// enumerating the input space when it is small enough and sampling it
// otherwise. Unless disabled, it finishes with a serialization round
// trip.
func (assert *Assert) CircuitComputes(nl *netlist.Netlist, oracle func(map[string][]bool) map[string][]bool, opts ...TestingOption) {
	opt := assert.options(opts...)

	names, widths, bits := inputShape(nl)
	assert.forEachInput(names, widths, bits, opt, func(in map[string][]bool) {
		got, err := nl.Simulate(in)
		assert.NoError(err)
		assert.Equal(oracle(in), got, "inputs %v", in)
	})

	if !opt.skipSerialization {
		assert.SerializationRoundTrip(nl)
	}
}

// EquivalentCircuits checks that two netlists with the same input
// shape compute the same function.
func (assert *Assert) EquivalentCircuits(a, b *netlist.Netlist, opts ...TestingOption) {
	opt := assert.options(opts...)

	names, widths, bits := inputShape(a)
	namesB, widthsB, _ := inputShape(b)
	assert.Equal(names, namesB)
	assert.Equal(widths, widthsB)

	assert.forEachInput(names, widths, bits, opt, func(in map[string][]bool) {
		want, err := a.Simulate(in)
		assert.NoError(err)
		got, err := b.Simulate(in)
		assert.NoError(err)
		assert.Equal(want, got, "inputs %v", in)
	})
}

// AddsCorrectly checks a netlist built from the adder library against
// integer addition.
func (assert *Assert) AddsCorrectly(nl *netlist.Netlist, opts ...TestingOption) {
	assert.LessOrEqual(nl.Width, 63, "width too large for the uint64 reference")
	w := uint(nl.Width)
	oracle := func(in map[string][]bool) map[string][]bool {
		total := toUint(in["a_in"]) + toUint(in["b_in"])
		if cin, ok := in["cin"]; ok && cin[0] {
			total++
		}
		return map[string][]bool{
			"sum":  toVec(total, nl.Width),
			"cout": {total>>w == 1},
		}
	}
	assert.CircuitComputes(nl, oracle, opts...)
}

// OrScansCorrectly checks a netlist built from the prefix OR library:
// output bit i must OR together input bits 0 through i.
func (assert *Assert) OrScansCorrectly(nl *netlist.Netlist, opts ...TestingOption) {
	oracle := func(in map[string][]bool) map[string][]bool {
		acc := false
		if cin, ok := in["cin"]; ok {
			acc = cin[0]
		}
		sum := make([]bool, nl.Width)
		for i, b := range in["a_in"] {
			acc = acc || b
			sum[i] = acc
		}
		return map[string][]bool{"sum": sum, "cout": {acc}}
	}
	assert.CircuitComputes(nl, oracle, opts...)
}

// SerializationRoundTrip checks that WriteTo and ReadFrom reproduce
// the netlist and that re-serialization is byte identical. The decode
// side resolves the library through cells.Stock, so this applies to
// netlists of stock libraries.
func (assert *Assert) SerializationRoundTrip(nl *netlist.Netlist) {
	var buf bytes.Buffer
	n, err := nl.WriteTo(&buf)
	assert.NoError(err)
	assert.Equal(int64(buf.Len()), n)

	var back netlist.Netlist
	m, err := back.ReadFrom(bytes.NewReader(buf.Bytes()))
	assert.NoError(err)
	assert.Equal(n, m)
	assert.Equal(nl.Name, back.Name)
	assert.Equal(nl.Instances, back.Instances)
	assert.Equal(nl.Inputs, back.Inputs)
	assert.Equal(nl.Outputs, back.Outputs)

	var again bytes.Buffer
	_, err = back.WriteTo(&again)
	assert.NoError(err)
	assert.Equal(buf.Bytes(), again.Bytes())
}

func (assert *Assert) forEachInput(names []string, widths map[string]int, bits int, opt testingConfig, check func(map[string][]bool)) {
	if bits <= exhaustiveBits {
		for v := uint64(0); v < 1<<uint(bits); v++ {
			check(unflatten(names, widths, v))
		}
		return
	}
	rng := rand.New(rand.NewSource(opt.seed))
	for i := 0; i < opt.samples; i++ {
		in := make(map[string][]bool, len(names))
		for _, name := range names {
			vec := make([]bool, widths[name])
			for j := range vec {
				vec[j] = rng.Intn(2) == 1
			}
			in[name] = vec
		}
		check(in)
	}
}

// inputShape folds the input terminals into named vectors. Terminals
// arrive sorted by name, so the name list is sorted too.
func inputShape(nl *netlist.Netlist) ([]string, map[string]int, int) {
	widths := make(map[string]int)
	var names []string
	for _, t := range nl.Inputs {
		if _, ok := widths[t.Name]; !ok {
			names = append(names, t.Name)
		}
		if t.Pos+1 > widths[t.Name] {
			widths[t.Name] = t.Pos + 1
		}
	}
	bits := 0
	for _, n := range names {
		bits += widths[n]
	}
	return names, widths, bits
}

func unflatten(names []string, widths map[string]int, v uint64) map[string][]bool {
	in := make(map[string][]bool, len(names))
	for _, name := range names {
		vec := make([]bool, widths[name])
		for j := range vec {
			vec[j] = v&1 == 1
			v >>= 1
		}
		in[name] = vec
	}
	return in
}

func toUint(vec []bool) uint64 {
	var v uint64
	for i, b := range vec {
		if b {
			v |= 1 << uint(i)
		}
	}
	return v
}

func toVec(v uint64, width int) []bool {
	vec := make([]bool, width)
	for i := range vec {
		vec[i] = v>>uint(i)&1 == 1
	}
	return vec
}
