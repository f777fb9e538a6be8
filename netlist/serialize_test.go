package netlist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/consensys/pptrees/cells"
	"github.com/consensys/pptrees/prefix"
)

func TestSerializeRoundTrip(t *testing.T) {
	f, err := prefix.NewForest(8, prefix.WithCarryIn())
	require.NoError(t, err)
	require.NoError(t, f.Sparsify(2))
	f.OptimizeCells()

	nl, err := Build(f, cells.Adder(), WithName("csa8"))
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := nl.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	var got Netlist
	m, err := got.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, n, m)

	require.Equal(t, nl.Name, got.Name)
	require.Equal(t, nl.Width, got.Width)
	require.Equal(t, nl.CarryIn, got.CarryIn)
	require.Equal(t, nl.NbWires, got.NbWires)
	require.Equal(t, nl.Instances, got.Instances)
	require.Equal(t, nl.Inputs, got.Inputs)
	require.Equal(t, nl.Outputs, got.Outputs)
	require.Equal(t, "ppa", got.Library().Name())

	// deterministic encoding round-trips byte for byte
	var buf2 bytes.Buffer
	_, err = got.WriteTo(&buf2)
	require.NoError(t, err)
	require.Equal(t, buf.Bytes(), buf2.Bytes())

	for a := uint64(0); a < 16; a++ {
		requireAdds(t, &got, a, 255-a, 1)
	}
}

func TestSerializeOrScan(t *testing.T) {
	f, err := prefix.NewForest(5)
	require.NoError(t, err)
	nl, err := Build(f, cells.Or())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = nl.WriteTo(&buf)
	require.NoError(t, err)

	var got Netlist
	_, err = got.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, "pos", got.Library().Name())

	out, err := got.Simulate(map[string][]bool{"a_in": toBits(0b00100, 5)})
	require.NoError(t, err)
	require.Equal(t, uint64(0b11100), fromBits(out["sum"]))
}

func TestSerializeUnknownLibrary(t *testing.T) {
	cc := make([]cells.Cell, 0, 16)
	for _, c := range cells.Adder().Cells() {
		cc = append(cc, c)
	}
	lib, err := cells.NewLibrary("custom", cc)
	require.NoError(t, err)

	f, err := prefix.NewForest(3)
	require.NoError(t, err)
	nl, err := Build(f, lib)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = nl.WriteTo(&buf)
	require.NoError(t, err)

	var got Netlist
	_, err = got.ReadFrom(&buf)
	require.ErrorContains(t, err, "no stock library")
}

func TestSerializeTruncated(t *testing.T) {
	f, err := prefix.NewForest(4)
	require.NoError(t, err)
	nl, err := Build(f, cells.Adder())
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = nl.WriteTo(&buf)
	require.NoError(t, err)
	data := buf.Bytes()

	for _, cut := range []int{4, len(data) / 2, len(data) - 3} {
		var got Netlist
		_, err = got.ReadFrom(bytes.NewReader(data[:cut]))
		require.Error(t, err, "cut=%d", cut)
	}
}
