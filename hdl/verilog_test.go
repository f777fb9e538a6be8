package hdl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/consensys/pptrees/cells"
	"github.com/consensys/pptrees/netlist"
	"github.com/consensys/pptrees/prefix"
)

func buildNetlist(t *testing.T, lib *cells.Library, width int, opts ...prefix.ForestOption) *netlist.Netlist {
	t.Helper()
	f, err := prefix.NewForest(width, opts...)
	require.NoError(t, err)
	nl, err := netlist.Build(f, lib)
	require.NoError(t, err)
	return nl
}

// The two bit adder is small enough to pin the generated top module
// down to the byte. Wires w0, w1, w4 and w5 are the input pins, so
// only the instance driven nets get declarations.
const verilogTop2 = `module ppa_2(a_in, b_in, sum, cout);
	input [1:0] a_in;
	input [1:0] b_in;
	output [1:0] sum;
	output cout;

	wire w2, w3, w6, w7, w8, w9, w10, w11;

	ppa_pre U0(.a_in(a_in[0]), .b_in(b_in[0]), .pout(w2), .gout(w3));
	ppa_pre U1(.a_in(a_in[1]), .b_in(b_in[1]), .pout(w6), .gout(w7));
	ppa_black U2(.gin({w7, w3}), .pin({w6, w2}), .gout(w8), .pout(w9));
	ppa_post_small U3(.pin(w2), .sum(w10));
	ppa_post U4(.gin(w3), .pin(w6), .sum(w11));

	assign sum[0] = w10;
	assign sum[1] = w11;
	assign cout = w8;
endmodule
`

func TestVerilogTopModule(t *testing.T) {
	nl := buildNetlist(t, cells.Adder(), 2)

	var buf bytes.Buffer
	require.NoError(t, WriteVerilog(&buf, nl))
	got := buf.String()

	i := strings.Index(got, "module ppa_2(")
	require.NotEqual(t, -1, i, "top module missing:\n%s", got)
	if diff := cmp.Diff(verilogTop2, got[i:]); diff != "" {
		t.Fatalf("top module mismatch (-want +got):\n%s", diff)
	}
}

func TestVerilogPreamble(t *testing.T) {
	lib := cells.Adder()
	nl := buildNetlist(t, lib, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteVerilog(&buf, nl))
	got := buf.String()

	for _, kind := range []prefix.Kind{prefix.Pre, prefix.Cocycle, prefix.Post, prefix.PostSmall} {
		c, err := lib.Cell(kind)
		require.NoError(t, err)
		require.Contains(t, got, c.Verilog)
		require.Equal(t, 1, strings.Count(got, "module "+c.Name+"("))
	}
	require.Contains(t, got, verilogPrimitives["and2"])
	require.Contains(t, got, verilogPrimitives["xor2"])
	require.Contains(t, got, verilogPrimitives["ao21"])

	// no carry-in leaf and no buffers, so their gates stay out
	require.NotContains(t, got, "module tie0(")
	require.NotContains(t, got, "module buf1(")
	require.NotContains(t, got, "module or2(")

	require.Equal(t, 8, strings.Count(got, "endmodule"))
}

func TestVerilogCarryIn(t *testing.T) {
	nl := buildNetlist(t, cells.Adder(), 2, prefix.WithCarryIn())

	var buf bytes.Buffer
	require.NoError(t, WriteVerilog(&buf, nl))
	got := buf.String()

	require.Contains(t, got, "module ppa_2(a_in, b_in, cin, sum, cout);")
	require.Contains(t, got, "\tinput cin;\n")
	require.Contains(t, got, ".cin(cin)")
	require.Contains(t, got, verilogPrimitives["tie0"])
	require.Contains(t, got, verilogPrimitives["buf1"])
}

func TestVerilogOrScan(t *testing.T) {
	nl := buildNetlist(t, cells.Or(), 3)

	var buf bytes.Buffer
	require.NoError(t, WriteVerilog(&buf, nl))
	got := buf.String()

	require.Contains(t, got, "module pos_3(a_in, sum, cout);")
	require.Contains(t, got, verilogPrimitives["or2"])
	require.Contains(t, got, verilogPrimitives["buf1"])
	require.NotContains(t, got, "module and2(")
	require.NotContains(t, got, "module xor2(")
	require.NotContains(t, got, "module ao21(")
}

func TestVerilogOptions(t *testing.T) {
	nl := buildNetlist(t, cells.Adder(), 3)

	var buf bytes.Buffer
	require.NoError(t, WriteVerilog(&buf, nl, WithBanner("3-bit ripple adder"), WithModuleName("adder3")))
	got := buf.String()

	require.True(t, strings.HasPrefix(got, "// 3-bit ripple adder\n\n"))
	require.Contains(t, got, "module adder3(")
	require.NotContains(t, got, "module ppa_3(")

	err := WriteVerilog(&buf, nl, WithModuleName(""))
	require.ErrorContains(t, err, "empty module name")
}

func TestVerilogDeterministic(t *testing.T) {
	nl := buildNetlist(t, cells.Adder(), 8, prefix.WithForestAlias("brent-kung"))

	var first, second bytes.Buffer
	require.NoError(t, WriteVerilog(&first, nl))
	require.NoError(t, WriteVerilog(&second, nl))
	require.Equal(t, first.String(), second.String())

	// one instance line per record
	require.Equal(t, len(nl.Instances), strings.Count(first.String(), "\tppa_"))
}
