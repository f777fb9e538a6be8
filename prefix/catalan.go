package prefix

import (
	"fmt"
	"math/big"
)

// Catalan returns the n-th Catalan number C(n) as an exact big integer.
// C(0) = 1 and C(n) = C(n-1) * (4n-2) / (n+1); the sequence starts
// 1, 1, 2, 5, 14, 42, 132, ... and counts the shapes of a binary tree
// with n internal nodes, hence the width-(n+1) tree shapes.
//
// The division is exact at every step, so no rounding occurs. int64
// would overflow at n == 36 already; structure indices are big.Int
// throughout for the same reason.
func Catalan(n int) *big.Int {
	if n < 0 {
		panic(fmt.Sprintf("catalan: negative argument %d", n))
	}
	c := big.NewInt(1)
	var t big.Int
	for i := 1; i <= n; i++ {
		t.SetInt64(int64(4*i - 2))
		c.Mul(c, &t)
		t.SetInt64(int64(i + 1))
		c.Div(c, &t)
	}
	return c
}

// NbShapes returns the number of distinct width-w tree shapes, that is
// catalan(w-1). Widths below 1 are invalid.
func NbShapes(width int) (*big.Int, error) {
	if width < 1 {
		return nil, fmt.Errorf("%w: width %d", ErrInvalidWidth, width)
	}
	return Catalan(width - 1), nil
}
