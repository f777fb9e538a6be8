package prefix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTopology(t *testing.T) {
	tr, err := NewTree(8)
	require.NoError(t, err)
	require.NoError(t, tr.Validate())
	require.Equal(t, 3, tr.Height())
	require.Equal(t, "(((0 1) (2 3)) ((4 5) (6 7)))", tr.String())
}

func TestWidthOne(t *testing.T) {
	tr, err := NewTree(1)
	require.NoError(t, err)
	require.True(t, tr.Root().IsLeaf())
	require.Equal(t, 0, tr.Height())
	require.Equal(t, "0", tr.String())

	idx, err := tr.StructureIndex()
	require.NoError(t, err)
	require.Zero(t, idx.Sign())

	_, err = NewTree(1, WithIndexInt64(1))
	require.ErrorIs(t, err, ErrIndexRange)
	_, err = NewTree(1, WithAlias("nonsense"))
	require.ErrorIs(t, err, ErrUnknownAlias)
}

func TestConstructionErrors(t *testing.T) {
	_, err := NewTree(0)
	require.ErrorIs(t, err, ErrInvalidWidth)
	_, err = NewTree(-3)
	require.ErrorIs(t, err, ErrInvalidWidth)
	_, err = NewTree(8, WithAlias("sklanski"))
	require.ErrorIs(t, err, ErrUnknownAlias)
	_, err = NewTree(8, WithIndex(nil))
	require.ErrorIs(t, err, ErrIndexRange)
}

func TestAliasOverridesIndex(t *testing.T) {
	tr, err := NewTree(6, WithIndexInt64(17), WithAlias("serial"))
	require.NoError(t, err)
	require.Equal(t, "(((((0 1) 2) 3) 4) 5)", tr.String())
}

func TestClassicTopologies(t *testing.T) {
	cases := []struct {
		alias string
		width int
		shape string
	}{
		{"serial", 8, "(((((((0 1) 2) 3) 4) 5) 6) 7)"},
		{"ripple", 4, "(((0 1) 2) 3)"},
		{"ripple-carry", 4, "(((0 1) 2) 3)"},

		{"sklansky", 2, "(0 1)"},
		{"sklansky", 5, "(((0 1) (2 3)) 4)"},
		{"sklansky", 6, "(((0 1) (2 3)) (4 5))"},
		{"sklansky", 7, "(((0 1) (2 3)) ((4 5) 6))"},
		{"sklansky", 8, "(((0 1) (2 3)) ((4 5) (6 7)))"},

		{"kogge-stone", 5, "(''0 ((1 2) (3 4)))"},
		{"kogge-stone", 6, "('(0 1) ((2 3) (4 5)))"},
		{"kogge-stone", 7, "(('0 (1 2)) ((3 4) (5 6)))"},
		{"kogge-stone", 8, "(((0 1) (2 3)) ((4 5) (6 7)))"},
		{"kogge-stone", 9, "('''0 (((1 2) (3 4)) ((5 6) (7 8))))"},

		{"brent-kung", 5, "(((0 1) (2 3)) 4)"},
		{"brent-kung", 6, "(((0 1) (2 3)) (4 5))"},
		{"brent-kung", 7, "((((0 1) (2 3)) (4 5)) 6)"},
		{"brent-kung", 8, "(((0 1) (2 3)) ((4 5) (6 7)))"},
	}
	for _, tc := range cases {
		t.Run(tc.alias, func(t *testing.T) {
			tr, err := NewTree(tc.width, WithAlias(tc.alias))
			require.NoError(t, err)
			require.NoError(t, tr.Validate())
			require.Equal(t, tc.shape, tr.String(), "width %d", tc.width)
		})
	}
}

func TestAliasesList(t *testing.T) {
	for _, a := range Aliases() {
		tr, err := NewTree(6, WithAlias(a))
		require.NoError(t, err, "alias %s", a)
		require.NoError(t, tr.Validate())
	}
}

func TestLeavesAscending(t *testing.T) {
	tr, err := NewTree(9, WithAlias("brent-kung"))
	require.NoError(t, err)
	leaves := tr.Leaves()
	require.Len(t, leaves, 9)
	for i, l := range leaves {
		require.True(t, l.IsLeaf())
		require.Equal(t, BitRange{Lo: i, Hi: i}, l.Span)
	}
}

func TestValidateCatchesCorruption(t *testing.T) {
	tr, err := NewTree(4, WithAlias("sklansky"))
	require.NoError(t, err)

	// swapping children breaks the range ordering
	root := tr.Root()
	root.Left, root.Right = root.Right, root.Left
	require.ErrorIs(t, tr.Validate(), ErrInconsistent)
	root.Left, root.Right = root.Right, root.Left
	require.NoError(t, tr.Validate())

	// a leaf covering two positions is malformed
	leaf := lowestLeaf(root)
	leaf.Span.Hi = 1
	require.ErrorIs(t, tr.Validate(), ErrInconsistent)
}
