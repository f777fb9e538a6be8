package cells

import (
	"testing"

	"github.com/consensys/pptrees/prefix"
	"github.com/stretchr/testify/require"
)

func TestVerso(t *testing.T) {
	require.Equal(t, "gout", Verso("gin"))
	require.Equal(t, "pout", Verso("pin"))
}

func TestLibraryCoverage(t *testing.T) {
	all := []prefix.Kind{
		prefix.Pre, prefix.PreCin,
		prefix.Cocycle, prefix.Cocycle3, prefix.Grey,
		prefix.Buffer, prefix.BufferGrey,
		prefix.Post, prefix.PostSmall,
	}
	for _, lib := range []*Library{Adder(), Or()} {
		for _, k := range all {
			c, err := lib.Cell(k)
			require.NoError(t, err, "library %s kind %s", lib.Name(), k)
			require.Equal(t, k, c.Kind)

			// the eval function must agree with the declared port widths
			out := c.Eval(make([]bool, c.InBits()))
			require.Equal(t, c.OutBits(), len(out), "cell %s", c.Name)
			require.NotEmpty(t, c.Verilog, "cell %s", c.Name)
			require.NotEmpty(t, c.VHDL, "cell %s", c.Name)
		}
		require.Len(t, lib.Kinds(), len(all))
	}
}

func TestLibraryUnknownKind(t *testing.T) {
	lib, err := NewLibrary("partial", []Cell{
		{
			Name: "leaf",
			Kind: prefix.Pre,
			Ins:  []Port{{Name: "a_in", Bits: 1, External: true}},
			Outs: []Port{{Name: "gout", Bits: 1}},
			Eval: func(in []bool) []bool { return in },
		},
	})
	require.NoError(t, err)
	_, err = lib.Cell(prefix.Cocycle)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestLibraryValidate(t *testing.T) {
	require.NoError(t, Adder().Validate())
	require.NoError(t, Or().Validate())

	// a library missing kinds is unusable as a whole even though every
	// cell it does carry is fine
	partial, err := NewLibrary("partial", []Cell{
		{
			Name: "leaf",
			Kind: prefix.Pre,
			Ins:  []Port{{Name: "a_in", Bits: 1, External: true}},
			Outs: []Port{{Name: "gout", Bits: 1}},
			Eval: func(in []bool) []bool { return in },
		},
	})
	require.NoError(t, err)
	require.ErrorIs(t, partial.Validate(), ErrUnknownKind)
}

func TestLibraryValidateVerso(t *testing.T) {
	eval := func(in []bool) []bool { return []bool{false} }
	cc := make([]Cell, 0, len(allKinds))
	for _, k := range allKinds {
		c := Cell{Name: "c_" + k.String(), Kind: k, Eval: eval, Outs: []Port{{Name: "gout", Bits: 1}}}
		if k.IsLeaf() {
			c.Ins = []Port{{Name: "a_in", Bits: 1, External: true}}
		} else {
			arity := kindArity[k]
			split := make([]int, arity)
			for i := range split {
				split[i] = 1
			}
			c.Ins = []Port{{Name: "xin", Bits: arity, Split: split}}
		}
		cc = append(cc, c)
	}
	lib, err := NewLibrary("verso", cc)
	require.NoError(t, err)

	// xin wants an xout that no cell produces
	require.ErrorIs(t, lib.Validate(), ErrBadCell)
}

func TestAdderCarryOperator(t *testing.T) {
	lib := Adder()
	black, err := lib.Cell(prefix.Cocycle)
	require.NoError(t, err)

	// inputs are g0, g1, p0, p1 with index 1 the high-order child
	for mask := 0; mask < 16; mask++ {
		in := []bool{mask&1 != 0, mask&2 != 0, mask&4 != 0, mask&8 != 0}
		out := black.Eval(in)
		g0, g1, p0, p1 := in[0], in[1], in[2], in[3]
		require.Equal(t, g1 || (p1 && g0), out[0], "gout for mask %04b", mask)
		require.Equal(t, p1 && p0, out[1], "pout for mask %04b", mask)
	}
}

func TestAdderFusedCarryOperator(t *testing.T) {
	lib := Adder()
	black3, err := lib.Cell(prefix.Cocycle3)
	require.NoError(t, err)
	black, err := lib.Cell(prefix.Cocycle)
	require.NoError(t, err)

	// a fused cell must behave like two chained binary combines
	for mask := 0; mask < 64; mask++ {
		in := make([]bool, 6)
		for i := range in {
			in[i] = mask&(1<<i) != 0
		}
		g0, g1, g2, p0, p1, p2 := in[0], in[1], in[2], in[3], in[4], in[5]
		low := black.Eval([]bool{g0, g1, p0, p1})
		want := black.Eval([]bool{low[0], g2, low[1], p2})
		require.Equal(t, want, black3.Eval(in), "mask %06b", mask)
	}
}

func TestAdderGreyDropsPropagate(t *testing.T) {
	lib := Adder()
	grey, err := lib.Cell(prefix.Grey)
	require.NoError(t, err)

	for mask := 0; mask < 8; mask++ {
		in := []bool{mask&1 != 0, mask&2 != 0, mask&4 != 0}
		g0, g1, p1 := in[0], in[1], in[2]
		out := grey.Eval(in)
		require.Len(t, out, 1)
		require.Equal(t, g1 || (p1 && g0), out[0], "mask %03b", mask)
	}
}

func TestAdderLeafAndSum(t *testing.T) {
	lib := Adder()
	pre, err := lib.Cell(prefix.Pre)
	require.NoError(t, err)
	post, err := lib.Cell(prefix.Post)
	require.NoError(t, err)

	for mask := 0; mask < 4; mask++ {
		a, b := mask&1 != 0, mask&2 != 0
		out := pre.Eval([]bool{a, b})
		require.Equal(t, []bool{a != b, a && b}, out, "pre mask %02b", mask)
		require.Equal(t, []bool{a != b}, post.Eval([]bool{a, b}), "post mask %02b", mask)
	}

	cin, err := lib.Cell(prefix.PreCin)
	require.NoError(t, err)
	require.Equal(t, []bool{false, true}, cin.Eval([]bool{true}))
	require.Equal(t, []bool{false, false}, cin.Eval([]bool{false}))
}

func TestOrScanCells(t *testing.T) {
	lib := Or()
	comb, err := lib.Cell(prefix.Cocycle)
	require.NoError(t, err)
	require.Equal(t, []bool{true}, comb.Eval([]bool{true, false}))
	require.Equal(t, []bool{false}, comb.Eval([]bool{false, false}))

	// grey and plain combines share one module body
	grey, err := lib.Cell(prefix.Grey)
	require.NoError(t, err)
	require.Equal(t, comb.Name, grey.Name)
	require.Equal(t, comb.Verilog, grey.Verilog)
}

func TestOutOffset(t *testing.T) {
	pre, err := Adder().Cell(prefix.Pre)
	require.NoError(t, err)

	off, ok := pre.OutOffset("pout")
	require.True(t, ok)
	require.Equal(t, 0, off)
	off, ok = pre.OutOffset("gout")
	require.True(t, ok)
	require.Equal(t, 1, off)
	_, ok = pre.OutOffset("sum")
	require.False(t, ok)
}

func TestNewLibraryRejectsBadCells(t *testing.T) {
	eval := func(in []bool) []bool { return in }

	cases := []struct {
		name string
		cell Cell
	}{
		{
			"split sum mismatch",
			Cell{
				Name: "bad",
				Kind: prefix.Cocycle,
				Ins:  []Port{{Name: "gin", Bits: 2, Split: []int{1}}},
				Outs: []Port{{Name: "gout", Bits: 1}},
				Eval: eval,
			},
		},
		{
			"external with split",
			Cell{
				Name: "bad",
				Kind: prefix.Pre,
				Ins:  []Port{{Name: "a_in", Bits: 1, External: true, Split: []int{1}}},
				Outs: []Port{{Name: "gout", Bits: 1}},
				Eval: eval,
			},
		},
		{
			"missing eval",
			Cell{
				Name: "bad",
				Kind: prefix.Pre,
				Ins:  []Port{{Name: "a_in", Bits: 1, External: true}},
				Outs: []Port{{Name: "gout", Bits: 1}},
			},
		},
		{
			"duplicate port name",
			Cell{
				Name: "bad",
				Kind: prefix.Cocycle,
				Ins: []Port{
					{Name: "gin", Bits: 1, Split: []int{1}},
					{Name: "gin", Bits: 1, Split: []int{1}},
				},
				Outs: []Port{{Name: "gout", Bits: 1}},
				Eval: eval,
			},
		},
		{
			"uneven child counts",
			Cell{
				Name: "bad",
				Kind: prefix.Cocycle,
				Ins: []Port{
					{Name: "gin", Bits: 2, Split: []int{1, 1}},
					{Name: "pin", Bits: 1, Split: []int{1}},
				},
				Outs: []Port{{Name: "gout", Bits: 1}},
				Eval: eval,
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLibrary("t", []Cell{tc.cell})
			require.ErrorIs(t, err, ErrBadCell)
		})
	}

	_, err := NewLibrary("t", []Cell{
		{
			Name: "one",
			Kind: prefix.Pre,
			Ins:  []Port{{Name: "a_in", Bits: 1, External: true}},
			Outs: []Port{{Name: "gout", Bits: 1}},
			Eval: eval,
		},
		{
			Name: "two",
			Kind: prefix.Pre,
			Ins:  []Port{{Name: "a_in", Bits: 1, External: true}},
			Outs: []Port{{Name: "gout", Bits: 1}},
			Eval: eval,
		},
	})
	require.ErrorIs(t, err, ErrBadCell)
}
