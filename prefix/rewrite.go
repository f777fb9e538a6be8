package prefix

import (
	"fmt"
)

// Direction selects the side a rebalance shifts work toward.
type Direction uint8

const (
	DirLeft Direction = iota
	DirRight
)

func (d Direction) String() string {
	if d == DirLeft {
		return "left"
	}
	return "right"
}

// Rebalance locally restructures the subtree rooted at n, rotating its
// children to shift work toward the given side. Rotating a node whose
// children are both leaves is a no-op, not an error. The risen child
// now occupying n's position is returned. Repeated rebalances reach
// every shape of the index space.
func (t *Tree) Rebalance(n *Node, dir Direction) (*Node, error) {
	if n == nil || n.IsLeaf() {
		return n, nil
	}
	if n.Mid != nil {
		return nil, fmt.Errorf("%w: cannot rebalance a fused node", ErrFinalized)
	}
	riser := n.Right
	if dir == DirRight {
		riser = n.Left
	}
	if riser == nil || riser.IsLeaf() {
		return n, nil
	}
	if dir == DirRight {
		return t.RotateRight(riser)
	}
	return t.RotateLeft(riser)
}

// RotateRight raises n, which must be its parent's left child: the
// parent becomes n's right child and n's old right child reattaches as
// the parent's left child. The leaf sequence is untouched. On an
// ordering violation the rotation is undone and a consistency error
// returned.
func (t *Tree) RotateRight(n *Node) (*Node, error) {
	p, err := t.rotatePre(n)
	if err != nil {
		return nil, err
	}
	if p.Left != n {
		return nil, fmt.Errorf("can only right-rotate a left child, %s is not one", n)
	}
	t.rotateRightRaw(n)
	if !p.ordered() || !n.ordered() {
		t.rotateLeftRaw(p)
		return nil, inconsistency("rotation at %s broke range ordering", n)
	}
	return n, nil
}

// RotateLeft is the mirror of [Tree.RotateRight]: n must be its
// parent's right child and rises in its place.
func (t *Tree) RotateLeft(n *Node) (*Node, error) {
	p, err := t.rotatePre(n)
	if err != nil {
		return nil, err
	}
	if p.Right != n {
		return nil, fmt.Errorf("can only left-rotate a right child, %s is not one", n)
	}
	t.rotateLeftRaw(n)
	if !p.ordered() || !n.ordered() {
		t.rotateRightRaw(p)
		return nil, inconsistency("rotation at %s broke range ordering", n)
	}
	return n, nil
}

func (t *Tree) rotatePre(n *Node) (*Node, error) {
	if n == nil || n.IsLeaf() || n.Left == nil || n.Right == nil {
		return nil, fmt.Errorf("can only rotate internal nodes with both children, got %s", n)
	}
	if n.Mid != nil {
		return nil, fmt.Errorf("%w: cannot rotate a fused node", ErrFinalized)
	}
	p := n.Parent
	if p == nil {
		return nil, fmt.Errorf("cannot rotate the root %s", n)
	}
	if p.Kind.IsBuffer() {
		return nil, fmt.Errorf("cannot rotate through buffer %s", p)
	}
	if p.Mid != nil {
		return nil, fmt.Errorf("%w: cannot rotate under a fused node", ErrFinalized)
	}
	return p, nil
}

// rotateRightRaw performs the pointer surgery without checks. n takes
// its parent's place; spans are re-derived bottom-up on the two pivots
// only, all ancestor spans are unchanged.
func (t *Tree) rotateRightRaw(n *Node) {
	p := n.Parent
	g := p.Parent
	moved := n.Right

	p.Left = moved
	moved.Parent = p
	n.Right = p
	p.Parent = n
	n.Parent = g
	t.replaceChild(g, p, n)

	p.resetSpan()
	n.resetSpan()
}

func (t *Tree) rotateLeftRaw(n *Node) {
	p := n.Parent
	g := p.Parent
	moved := n.Left

	p.Right = moved
	moved.Parent = p
	n.Left = p
	p.Parent = n
	n.Parent = g
	t.replaceChild(g, p, n)

	p.resetSpan()
	n.resetSpan()
}

// replaceChild rewires g's edge from old to repl; a nil g means old was
// the root.
func (t *Tree) replaceChild(g, old, repl *Node) {
	if g == nil {
		t.root = repl
		return
	}
	switch old {
	case g.Left:
		g.Left = repl
	case g.Mid:
		g.Mid = repl
	default:
		g.Right = repl
	}
}

// ShiftRight bubbles n upward toward the high side until one
// right-ward rotation succeeds. Returns nil once n sits on the right
// spine and cannot leave its subtree anymore.
func (t *Tree) ShiftRight(n *Node) (*Node, error) {
	if t.onRightSpine(n) {
		return nil, nil
	}
	if n.Parent != nil && n.Parent.Left == n {
		return t.RotateRight(n)
	}
	if _, err := t.RotateLeft(n); err != nil {
		return nil, err
	}
	return t.ShiftRight(n)
}

// ShiftLeft is the mirror of [Tree.ShiftRight], bubbling n toward the
// low side.
func (t *Tree) ShiftLeft(n *Node) (*Node, error) {
	if t.onLeftSpine(n) {
		return nil, nil
	}
	if n.Parent != nil && n.Parent.Right == n {
		return t.RotateLeft(n)
	}
	if _, err := t.RotateRight(n); err != nil {
		return nil, err
	}
	return t.ShiftLeft(n)
}

// InsertBuffer splices a buffer between n and its parent and returns
// it. Buffers pad a path by one level; they cannot sit above the root.
func (t *Tree) InsertBuffer(n *Node) (*Node, error) {
	p := n.Parent
	if p == nil {
		return nil, fmt.Errorf("cannot insert a buffer above the root %s", n)
	}
	b := &Node{Kind: Buffer, Span: n.Span, Left: n, Parent: p}
	t.replaceChild(p, n, b)
	n.Parent = b
	return b, nil
}

// RemoveBuffer unsplices b, reattaching its child to b's parent, and
// returns the child.
func (t *Tree) RemoveBuffer(b *Node) (*Node, error) {
	if b == nil || !b.Kind.IsBuffer() {
		return nil, fmt.Errorf("%s is not a buffer", b)
	}
	child := b.Left
	child.Parent = b.Parent
	t.replaceChild(b.Parent, b, child)
	b.Left = nil
	b.Parent = nil
	return child, nil
}

// slot identifies a tree position independently of its occupant, so a
// recursive rewrite can re-find the subtree it works on after
// rotations replaced the node standing there.
type slot struct {
	parent *Node
	side   uint8
}

func (t *Tree) slotOf(n *Node) slot {
	p := n.Parent
	if p == nil {
		return slot{}
	}
	switch n {
	case p.Left:
		return slot{parent: p, side: 0}
	case p.Mid:
		return slot{parent: p, side: 1}
	default:
		return slot{parent: p, side: 2}
	}
}

func (s slot) occupant(t *Tree) *Node {
	if s.parent == nil {
		return t.root
	}
	switch s.side {
	case 0:
		return s.parent.Left
	case 1:
		return s.parent.Mid
	default:
		return s.parent.Right
	}
}

// ReduceHeight lowers the subtree at n by one level where feasible,
// shifting leaves across the split. Buffers in the subtree are
// destroyed. Returns the node now occupying n's position, or nil when
// the subtree is already as shallow as its leaf count permits.
func (t *Tree) ReduceHeight(n *Node) (*Node, error) {
	if n == nil || n.IsLeaf() {
		return nil, nil
	}
	s := t.slotOf(n)
	if err := t.stripBuffers(n); err != nil {
		return nil, err
	}
	n = s.occupant(t)
	if n.IsLeaf() {
		return nil, nil
	}
	return t.reduceTo(n, heightOf(n)-1, s, 0)
}

func (t *Tree) stripBuffers(n *Node) error {
	var buffers []*Node
	n.each(func(m *Node) {
		if m.Kind.IsBuffer() {
			buffers = append(buffers, m)
		}
	})
	for _, b := range buffers {
		if _, err := t.RemoveBuffer(b); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tree) reduceTo(n *Node, target int, s slot, pass int) (*Node, error) {
	if n.IsLeaf() {
		return nil, nil
	}
	if n.Mid != nil {
		return nil, fmt.Errorf("%w: cannot reshape a fused node", ErrFinalized)
	}
	h := heightOf(n)
	if target >= h {
		return n, nil
	}
	// a subtree of height target holds at most 2^target leaves
	if 1<<target < n.Span.Width() {
		return nil, nil
	}
	if pass > 4*t.width+16 {
		return nil, inconsistency("height reduction at %s made no progress", n)
	}

	half := 1 << (target - 1)
	switch {
	case n.Left.Span.Width() > half:
		// too many leaves on the low side; move the boundary up one
		if _, err := t.ShiftRight(highestLeaf(n.Left).Parent); err != nil {
			return nil, err
		}
	case n.Right.Span.Width() > half:
		if _, err := t.ShiftLeft(lowestLeaf(n.Right).Parent); err != nil {
			return nil, err
		}
	default:
		// both sides fit in half the slots; pull each deep child down
		// a level, then re-check the root height
		for _, c := range [2]*Node{n.Left, n.Right} {
			if c.IsLeaf() || heightOf(c) <= target-1 {
				continue
			}
			if _, err := t.reduceTo(c, target-1, t.slotOf(c), 0); err != nil {
				return nil, err
			}
		}
	}
	return t.reduceTo(s.occupant(t), target, s, pass+1)
}

// Balance reduces the subtree at n to its minimum height, then
// balances each child. The result is as shallow as possible but not
// necessarily complete; see [Tree.BalanceLeft] and
// [Tree.BalanceRight] for the directional variants.
func (t *Tree) Balance(n *Node) (*Node, error) {
	if n == nil || n.IsLeaf() {
		return n, nil
	}
	s := t.slotOf(n)
	for {
		m, err := t.ReduceHeight(n)
		if err != nil {
			return nil, err
		}
		if m == nil {
			break
		}
		n = m
	}
	n = s.occupant(t)
	for _, c := range [2]*Node{n.Left, n.Right} {
		if c == nil {
			continue
		}
		if _, err := t.Balance(c); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// BalanceLeft balances the subtree at n into the complete tree filled
// from the low side: every split puts the largest power-of-two block
// on the left. Buffers in the subtree are destroyed. This is the
// Sklansky profile.
func (t *Tree) BalanceLeft(n *Node) (*Node, error) {
	return t.balanceDir(n, DirLeft)
}

// BalanceRight is the mirror of [Tree.BalanceLeft], filling from the
// high side: the Kogge-Stone profile before depth equalization.
func (t *Tree) BalanceRight(n *Node) (*Node, error) {
	return t.balanceDir(n, DirRight)
}

func (t *Tree) balanceDir(n *Node, dir Direction) (*Node, error) {
	if n == nil || n.IsLeaf() {
		return n, nil
	}
	s := t.slotOf(n)
	n, err := t.Balance(n)
	if err != nil {
		return nil, err
	}
	if isPerfect(n) {
		return n, nil
	}

	full := 1 << (heightOf(n) - 1)
	leftLeaves := n.Left.Span.Width()
	rightLeaves := n.Right.Span.Width()

	if dir == DirLeft && leftLeaves < full && rightLeaves > 1 {
		// the filled side is short a leaf; pull one over from the other
		// child and go again
		if _, err := t.ShiftLeft(lowestLeaf(n.Right).Parent); err != nil {
			return nil, err
		}
		return t.balanceDir(s.occupant(t), dir)
	}
	if dir == DirRight && rightLeaves < full && leftLeaves > 1 {
		if _, err := t.ShiftRight(highestLeaf(n.Left).Parent); err != nil {
			return nil, err
		}
		return t.balanceDir(s.occupant(t), dir)
	}

	// high child first in both directions, re-reading the live child
	// after each step since rotations swap slot occupants
	cur := s.occupant(t)
	if _, err := t.Balance(cur.Right); err != nil {
		return nil, err
	}
	if _, err := t.balanceDir(cur.Right, dir); err != nil {
		return nil, err
	}
	if _, err := t.balanceDir(cur.Left, dir); err != nil {
		return nil, err
	}
	return s.occupant(t), nil
}

// EqualizeDepths pads the shallow branches under n with buffers until
// every leaf sits at the subtree's full depth. The highest branch of
// each node carries no buffers; it is already the deep side in the
// profiles this finishes (Kogge-Stone).
func (t *Tree) EqualizeDepths(n *Node) (*Node, error) {
	if n == nil || n.IsLeaf() {
		return nil, nil
	}
	return t.equalize(n, heightOf(n))
}

func (t *Tree) equalize(n *Node, desired int) (*Node, error) {
	h := heightOf(n)
	if h == 0 {
		return nil, nil
	}

	// pad above n itself unless n fills its parent's deep slot, then
	// the remaining depth to distribute is n's own height
	if p := n.Parent; p != nil && p.Right != n {
		for i := 0; i < desired-h; i++ {
			if _, err := t.InsertBuffer(n); err != nil {
				return nil, err
			}
		}
		if desired > h {
			desired = h
		}
	}

	for _, c := range [2]*Node{n.Left, n.Right} {
		if c == nil {
			continue
		}
		ch := heightOf(c)
		if isPerfect(c) {
			if n.Right != c {
				for i := 0; i < desired-ch-1; i++ {
					if _, err := t.InsertBuffer(c); err != nil {
						return nil, err
					}
				}
			}
			continue
		}
		if _, err := t.equalize(c, desired-1); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// OptimizeFanIn fuses combines whose left child is itself a combine
// into single 3-input nodes, walking bottom-up so a serial chain
// collapses into a radix-3 chain of half the depth. The tree leaves
// the binary shape space: the structure index is no longer defined
// afterwards. Returns the number of fusions.
func (t *Tree) OptimizeFanIn() int {
	var fused int
	t.root.each(func(n *Node) {
		if n.Kind != Cocycle || n.Mid != nil {
			return
		}
		l := n.Left
		if l.Kind != Cocycle || l.Mid != nil {
			return
		}
		n.Left = l.Left
		n.Mid = l.Right
		n.Left.Parent = n
		n.Mid.Parent = n
		n.Kind = Cocycle3
		l.Left, l.Right, l.Parent = nil, nil, nil
		fused++
	})
	return fused
}

// highestLeaf returns the top-position leaf of the subtree.
func highestLeaf(n *Node) *Node {
	for !n.IsLeaf() {
		if n.Right != nil {
			n = n.Right
		} else {
			n = n.Left
		}
	}
	return n
}

// lowestLeaf returns the bottom-position leaf of the subtree.
func lowestLeaf(n *Node) *Node {
	for !n.IsLeaf() {
		n = n.Left
	}
	return n
}
