package prefix

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerialForestCollapsesToOneChain(t *testing.T) {
	f, err := NewForest(9, WithForestAlias("serial"))
	require.NoError(t, err)
	require.NoError(t, f.Validate())

	// all nine member trees are prefixes of a single carry chain
	counts := f.CountByKind()
	require.Equal(t, 9, counts[Pre])
	require.Equal(t, 8, counts[Cocycle])
	require.Equal(t, 8, counts[Post])
	require.Equal(t, 1, counts[PostSmall])
	require.Equal(t, 26, f.CountNodes())
}

func TestTextbookCombineCounts(t *testing.T) {
	cases := []struct {
		alias    string
		combines int
	}{
		{"serial", 7},
		{"sklansky", 12},
		{"brent-kung", 11},
		{"kogge-stone", 17},
	}
	for _, tc := range cases {
		t.Run(tc.alias, func(t *testing.T) {
			f, err := NewForest(8, WithForestAlias(tc.alias))
			require.NoError(t, err)
			require.NoError(t, f.Validate())
			require.Equal(t, tc.combines, f.CountByKind()[Cocycle])
			require.Equal(t, 8, f.CountByKind()[Pre])
		})
	}
}

func TestForestWidthOne(t *testing.T) {
	f, err := NewForest(1)
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	require.True(t, f.CarryOut().IsLeaf())
	require.Equal(t, 2, f.CountNodes())
	require.Equal(t, PostSmall, f.Posts()[0].Kind)
}

func TestForestWithCarryIn(t *testing.T) {
	f, err := NewForest(4, WithCarryIn())
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	require.True(t, f.HasCarryIn())
	require.Len(t, f.Trees(), 5)

	counts := f.CountByKind()
	require.Equal(t, 1, counts[PreCin])
	require.Equal(t, 4, counts[Pre])
	require.Equal(t, 0, counts[PostSmall])
	require.Equal(t, 4, counts[Post])

	// the incoming carry is the lone leaf of the bottom tree
	require.Equal(t, PreCin, f.Trees()[0].Root().Kind)
	// one more scan position than the plain width-4 forest
	require.Equal(t, 5, counts[Cocycle])
}

func TestForestWidthOneWithCarryIn(t *testing.T) {
	f, err := NewForest(1, WithCarryIn())
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	require.Equal(t, 1, f.CountByKind()[Cocycle])
	require.Equal(t, Post, f.Posts()[0].Kind)
	require.Equal(t, Cocycle, f.CarryOut().Kind)
}

func TestForestWithIndexes(t *testing.T) {
	idx := []*big.Int{big.NewInt(0), big.NewInt(0), big.NewInt(1)}
	f, err := NewForest(3, WithIndexes(idx))
	require.NoError(t, err)
	require.NoError(t, f.Validate())
	require.Equal(t, "(0 (1 2))", f.Trees()[2].String())
	require.Equal(t, "(0 1)", f.Trees()[1].String())

	_, err = NewForest(3, WithIndexes(idx[:2]))
	require.ErrorIs(t, err, ErrIndexRange)
}

func TestUnsharedForestDuplicates(t *testing.T) {
	shared, err := NewForest(6, WithForestAlias("serial"))
	require.NoError(t, err)
	flat, err := NewForest(6, WithForestAlias("serial"), WithUnshared())
	require.NoError(t, err)
	require.NoError(t, flat.Validate())

	require.Equal(t, 5, shared.CountByKind()[Cocycle])
	// each tree keeps its private copy of the chain below it
	require.Equal(t, 15, flat.CountByKind()[Cocycle])
	require.Equal(t, 21, flat.CountByKind()[Pre])

	require.Error(t, flat.Sparsify(2))
}

func TestSparsifyHalvesThePostRowFanOut(t *testing.T) {
	f, err := NewForest(8, WithForestAlias("sklansky"))
	require.NoError(t, err)
	require.Equal(t, 12, f.CountByKind()[Cocycle])

	require.NoError(t, f.Sparsify(2))
	require.NoError(t, f.Validate())

	// the backbone reuses existing blocks, two rebuilt trees appear
	require.Equal(t, 10, f.CountByKind()[Cocycle])
	for _, span := range []BitRange{{0, 1}, {0, 3}, {0, 5}, {0, 7}} {
		require.NotNil(t, f.Shared[span], "span %s", span)
	}

	// odd-position trees now run through the backbone chain; the top
	// tree pays one extra level for it
	require.Equal(t, 4, f.Trees()[7].Height())
}

func TestSparsifyAtIrregularPattern(t *testing.T) {
	f, err := NewForest(8, WithForestAlias("sklansky"))
	require.NoError(t, err)
	require.NoError(t, f.SparsifyAt([]int{2, 6}))
	require.NoError(t, f.Validate())
	require.NotNil(t, f.Shared[BitRange{0, 2}])
	require.NotNil(t, f.Shared[BitRange{0, 6}])
}

func TestSparsifyRejectsBadPatterns(t *testing.T) {
	f, err := NewForest(8)
	require.NoError(t, err)

	require.ErrorIs(t, f.Sparsify(1), ErrInvalidWidth)
	require.ErrorIs(t, f.Sparsify(9), ErrInvalidWidth)
	require.ErrorIs(t, f.SparsifyAt(nil), ErrInvalidWidth)
	require.ErrorIs(t, f.SparsifyAt([]int{3, 1}), ErrInvalidWidth)
	require.ErrorIs(t, f.SparsifyAt([]int{1, 1}), ErrInvalidWidth)
	require.ErrorIs(t, f.SparsifyAt([]int{8}), ErrInvalidWidth)
	require.ErrorIs(t, f.SparsifyAt([]int{-1}), ErrInvalidWidth)
}

func TestOptimizeCellsRippleTurnsAllGrey(t *testing.T) {
	f, err := NewForest(5, WithForestAlias("serial"))
	require.NoError(t, err)

	require.Equal(t, 4, f.OptimizeCells())
	counts := f.CountByKind()
	require.Equal(t, 4, counts[Grey])
	require.Zero(t, counts[Cocycle])
}

func TestOptimizeCellsSklansky(t *testing.T) {
	f, err := NewForest(4, WithForestAlias("sklansky"))
	require.NoError(t, err)

	require.Equal(t, 3, f.OptimizeCells())
	counts := f.CountByKind()
	require.Equal(t, 3, counts[Grey])
	// the [2,3] block still feeds its propagate into the top carry
	require.Equal(t, 1, counts[Cocycle])
	require.Equal(t, Cocycle, f.CarryOut().Right.Kind)
}

func TestOptimizeCellsDemotesBuffers(t *testing.T) {
	f, err := NewForest(5, WithForestAlias("kogge-stone"))
	require.NoError(t, err)
	before := f.CountByKind()
	require.Positive(t, before[Buffer])

	require.Positive(t, f.OptimizeCells())
	after := f.CountByKind()
	require.Equal(t, before[Buffer]+before[BufferGrey], after[Buffer]+after[BufferGrey])
}

func TestForestEachVisitsChildrenFirst(t *testing.T) {
	f, err := NewForest(6, WithForestAlias("brent-kung"))
	require.NoError(t, err)

	seen := make(map[*Node]bool)
	f.Each(func(n *Node) {
		for _, c := range []*Node{n.Left, n.Mid, n.Right} {
			if c != nil {
				require.True(t, seen[c], "child %s after parent %s", c, n)
			}
		}
		require.False(t, seen[n])
		seen[n] = true
	})
	require.Equal(t, f.CountNodes(), len(seen))
}
