package prefix

import (
	"fmt"
	"math/big"
)

// nodeFactory builds tree vertices during construction. The plain
// factory allocates fresh nodes and maintains parent links; the forest
// factory hash-conses instead, so identical subtrees over identical
// spans collapse to a single node and parent links stay unset.
type nodeFactory interface {
	leaf(pos int) *Node
	combine(left, right *Node) *Node
}

type allocFactory struct{}

func (allocFactory) leaf(pos int) *Node {
	return &Node{Kind: Pre, Span: BitRange{Lo: pos, Hi: pos}}
}

func (allocFactory) combine(l, r *Node) *Node {
	n := &Node{Kind: Cocycle, Span: l.Span.Union(r.Span), Left: l, Right: r}
	l.Parent = n
	r.Parent = n
	return n
}

// catalanTable returns C(0) through C(n).
func catalanTable(n int) []*big.Int {
	t := make([]*big.Int, n+1)
	t[0] = big.NewInt(1)
	var x big.Int
	for i := 1; i <= n; i++ {
		t[i] = new(big.Int).Set(t[i-1])
		t[i].Mul(t[i], x.SetInt64(int64(4*i-2)))
		t[i].Div(t[i], x.SetInt64(int64(i+1)))
	}
	return t
}

// unrankShape builds the shape with the given index over leaf positions
// lo..hi. Shapes are enumerated by the split position of the root: with
// n internal nodes total, the left subtree takes k of them (k+1 leaves),
// k descending from n-1 to 0, so index 0 is the fully left-leaning
// serial chain. Each split owns a contiguous block of C(k)*C(n-1-k)
// indices, ordered left-subtree-major within the block. The same
// enumeration read backwards is rankShape, which makes the pair a
// bijection by construction.
func unrankShape(f nodeFactory, idx *big.Int, lo, hi int, cats []*big.Int) (*Node, error) {
	if lo == hi {
		return f.leaf(lo), nil
	}
	n := hi - lo
	var rem, block big.Int
	rem.Set(idx)
	for k := n - 1; k >= 0; k-- {
		rightShapes := cats[n-1-k]
		block.Mul(cats[k], rightShapes)
		if rem.Cmp(&block) < 0 {
			var lIdx, rIdx big.Int
			lIdx.QuoRem(&rem, rightShapes, &rIdx)
			left, err := unrankShape(f, &lIdx, lo, lo+k, cats)
			if err != nil {
				return nil, err
			}
			right, err := unrankShape(f, &rIdx, lo+k+1, hi, cats)
			if err != nil {
				return nil, err
			}
			return f.combine(left, right), nil
		}
		rem.Sub(&rem, &block)
	}
	return nil, fmt.Errorf("%w: %s exceeds the %d-leaf shape space", ErrIndexRange, idx, n+1)
}

// rankShape recomputes the structure index of the subtree under node.
// Buffers are transparent: they pad depth without changing the shape.
// Fused 3-input nodes have no place in the binary shape space.
func rankShape(node *Node, cats []*big.Int) (*big.Int, error) {
	node = skipBuffers(node)
	if node.IsLeaf() {
		return new(big.Int), nil
	}
	if node.Mid != nil {
		return nil, fmt.Errorf("%w: %s is a fused 3-input node", ErrFinalized, node)
	}
	left := skipBuffers(node.Left)
	right := skipBuffers(node.Right)

	n := node.Span.Width() - 1
	k := left.Span.Width() - 1

	lRank, err := rankShape(left, cats)
	if err != nil {
		return nil, err
	}
	rRank, err := rankShape(right, cats)
	if err != nil {
		return nil, err
	}

	idx := new(big.Int)
	var block big.Int
	for kk := n - 1; kk > k; kk-- {
		idx.Add(idx, block.Mul(cats[kk], cats[n-1-kk]))
	}
	lRank.Mul(lRank, cats[n-1-k])
	idx.Add(idx, lRank)
	idx.Add(idx, rRank)
	return idx, nil
}

// skipBuffers returns the first non-buffer descendant reached by
// following single-child links.
func skipBuffers(n *Node) *Node {
	for n != nil && n.Kind.IsBuffer() {
		n = n.Left
	}
	return n
}
