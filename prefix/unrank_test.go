package prefix

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestIndexRoundTripExhaustive(t *testing.T) {
	for width := 1; width <= 8; width++ {
		nb, err := NbShapes(width)
		require.NoError(t, err)
		for i := int64(0); i < nb.Int64(); i++ {
			tr, err := NewTree(width, WithIndexInt64(i))
			require.NoError(t, err, "width %d index %d", width, i)
			require.NoError(t, tr.Validate())
			got, err := tr.StructureIndex()
			require.NoError(t, err)
			require.Equal(t, i, got.Int64(), "width %d", width)
		}
	}
}

func TestIndexZeroIsSerial(t *testing.T) {
	tr, err := NewTree(5, WithIndexInt64(0))
	require.NoError(t, err)
	require.Equal(t, "((((0 1) 2) 3) 4)", tr.String())
	require.Equal(t, 4, tr.Height())
}

func TestLastIndexIsRightChain(t *testing.T) {
	tr, err := NewTree(5, WithIndexInt64(13))
	require.NoError(t, err)
	require.Equal(t, "(0 (1 (2 (3 4))))", tr.String())
}

func TestIndexOutOfRange(t *testing.T) {
	// width 4 has only 5 shapes
	_, err := NewTree(4, WithIndexInt64(5))
	require.ErrorIs(t, err, ErrIndexRange)
	_, err = NewTree(4, WithIndexInt64(-1))
	require.ErrorIs(t, err, ErrIndexRange)
}

func TestRankIgnoresBuffers(t *testing.T) {
	tr, err := NewTree(4, WithIndexInt64(3))
	require.NoError(t, err)
	_, err = tr.InsertBuffer(tr.Root().Left)
	require.NoError(t, err)
	require.NoError(t, tr.Validate())

	idx, err := tr.StructureIndex()
	require.NoError(t, err)
	require.EqualValues(t, 3, idx.Int64())
}

func TestRankAfterFusionFails(t *testing.T) {
	tr, err := NewTree(6, WithAlias("serial"))
	require.NoError(t, err)
	require.Positive(t, tr.OptimizeFanIn())

	_, err = tr.StructureIndex()
	require.ErrorIs(t, err, ErrFinalized)
}

func TestIndexRoundTripWide(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 60
	properties := gopter.NewProperties(parameters)

	properties.Property("unrank then rank is the identity", prop.ForAll(
		func(width int, seed int64) bool {
			nb, err := NbShapes(width)
			if err != nil {
				return false
			}
			idx := new(big.Int).Rand(rand.New(rand.NewSource(seed)), nb)
			tr, err := NewTree(width, WithIndex(idx))
			if err != nil {
				return false
			}
			got, err := tr.StructureIndex()
			return err == nil && got.Cmp(idx) == 0 && tr.Validate() == nil
		},
		gen.IntRange(2, 24),
		gen.Int64(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
