package prefix

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShapeRoundTrip(t *testing.T) {
	for width := 1; width <= 7; width++ {
		nb, err := NbShapes(width)
		require.NoError(t, err)
		for i := int64(0); i < nb.Int64(); i++ {
			tr, err := NewTree(width, WithIndexInt64(i))
			require.NoError(t, err)

			raw, err := tr.MarshalShape()
			require.NoError(t, err)
			back, err := UnmarshalShape(raw)
			require.NoError(t, err)
			require.Equal(t, tr.String(), back.String(), "width %d index %d", width, i)
			require.Equal(t, tr.Width(), back.Width())
		}
	}
}

func TestShapeBytesAreCanonical(t *testing.T) {
	// buffers are transparent, so a padded tree encodes like its bare
	// shape
	padded, err := NewTree(6, WithAlias("kogge-stone"))
	require.NoError(t, err)
	bare, err := NewTree(6, WithIndexInt64(25))
	require.NoError(t, err)
	require.Equal(t, "('(0 1) ((2 3) (4 5)))", padded.String())
	require.Equal(t, "((0 1) ((2 3) (4 5)))", bare.String())

	a, err := padded.MarshalShape()
	require.NoError(t, err)
	b, err := bare.MarshalShape()
	require.NoError(t, err)
	require.Equal(t, b, a)

	back, err := UnmarshalShape(a)
	require.NoError(t, err)
	require.Equal(t, bare.String(), back.String())
}

func TestShapeDecodeErrors(t *testing.T) {
	_, err := UnmarshalShape(nil)
	require.Error(t, err)

	_, err = UnmarshalShape([]byte{0})
	require.ErrorIs(t, err, ErrInvalidWidth)

	// a single leaf bit cannot cover three positions
	_, err = UnmarshalShape([]byte{3, 0})
	require.ErrorIs(t, err, ErrInconsistent)
}

func TestShapeEncodeFusedFails(t *testing.T) {
	tr, err := NewTree(6, WithAlias("serial"))
	require.NoError(t, err)
	require.Positive(t, tr.OptimizeFanIn())

	_, err = tr.MarshalShape()
	require.ErrorIs(t, err, ErrFinalized)
}
