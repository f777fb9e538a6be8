package prefix

import (
	"errors"
	"fmt"

	"github.com/consensys/pptrees/debug"
)

var (
	// ErrInvalidWidth is returned when a width below 1 is requested.
	ErrInvalidWidth = errors.New("invalid width")

	// ErrIndexRange is returned when a structure index falls outside
	// [0, catalan(width-1)).
	ErrIndexRange = errors.New("structure index out of range")

	// ErrUnknownAlias is returned when a topology alias is not recognized.
	ErrUnknownAlias = errors.New("unknown topology alias")

	// ErrFinalized is returned by operations that need the pure shape
	// space (structure index, rotations) once fan-in or cell
	// optimization rewrote nodes out of it.
	ErrFinalized = errors.New("tree is finalized")

	// ErrInconsistent signals an internal invariant breach: span ordering
	// violated after a rewrite, a leaf set changed by a leaf-preserving
	// operation, or a cycle in the sharing graph. The offending operation
	// rolls back before returning it.
	ErrInconsistent = errors.New("inconsistent tree state")
)

// inconsistency wraps ErrInconsistent with a formatted detail and, when
// built with -tags=debug, the call stack.
func inconsistency(format string, args ...any) error {
	err := fmt.Errorf("%w: "+format, append([]any{ErrInconsistent}, args...)...)
	if debug.Debug {
		err = fmt.Errorf("%w\n%s", err, debug.Stack())
	}
	return err
}

// BitRange is the inclusive interval [Lo, Hi] of input bit positions a
// node's output summarizes. A leaf covers a single position (Lo == Hi).
type BitRange struct {
	Lo, Hi int
}

// Width returns the number of bit positions covered.
func (r BitRange) Width() int { return r.Hi - r.Lo + 1 }

// Valid reports whether the interval is well formed (0 <= Lo <= Hi).
func (r BitRange) Valid() bool { return r.Lo >= 0 && r.Lo <= r.Hi }

// Contains reports whether r covers every position of s.
func (r BitRange) Contains(s BitRange) bool { return r.Lo <= s.Lo && s.Hi <= r.Hi }

// AdjacentBelow reports whether r ends exactly one position below s,
// so that merging them yields a contiguous interval.
func (r BitRange) AdjacentBelow(s BitRange) bool { return r.Hi+1 == s.Lo }

// Union returns the convex hull of r and s.
func (r BitRange) Union(s BitRange) BitRange {
	u := r
	if s.Lo < u.Lo {
		u.Lo = s.Lo
	}
	if s.Hi > u.Hi {
		u.Hi = s.Hi
	}
	return u
}

func (r BitRange) String() string {
	if r.Lo == r.Hi {
		return fmt.Sprintf("[%d]", r.Lo)
	}
	return fmt.Sprintf("[%d:%d]", r.Lo, r.Hi)
}

// Kind identifies the logical role of a node. The cell library maps each
// kind to a concrete gate template at netlist build time.
type Kind uint8

const (
	// Pre is a leaf: the pre-processing node of one input position,
	// producing that position's (generate, propagate) pair.
	Pre Kind = iota

	// PreCin is the carry-in leaf sitting below position 0 when a forest
	// is built with an incoming carry.
	PreCin

	// Cocycle is the 2-input combine implementing the associative scan
	// operator over two adjacent ranges.
	Cocycle

	// Cocycle3 is the fused 3-input combine produced by fan-in
	// optimization; it never arises from the shape bijection.
	Cocycle3

	// Grey is a combine whose propagate output is demoted because no
	// consumer needs it; produced by cell optimization.
	Grey

	// Post is the post-processing node producing one output bit from a
	// leaf's propagate and the designated root below it.
	Post

	// PostSmall is the single-operand post-processing variant for output
	// bit 0, which has no root below it.
	PostSmall

	// Buffer forwards its child's outputs unchanged; inserted to equalize
	// path depths.
	Buffer

	// BufferGrey is a buffer whose propagate output is demoted; produced
	// by cell optimization alongside Grey.
	BufferGrey
)

func (k Kind) String() string {
	switch k {
	case Pre:
		return "pre"
	case PreCin:
		return "pre_cin"
	case Cocycle:
		return "cocycle"
	case Cocycle3:
		return "cocycle3"
	case Grey:
		return "grey"
	case Post:
		return "post"
	case PostSmall:
		return "post_small"
	case Buffer:
		return "buffer"
	case BufferGrey:
		return "buffer_grey"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsLeaf reports whether the kind is an input-side node with no tree
// children.
func (k Kind) IsLeaf() bool { return k == Pre || k == PreCin }

// IsCombine reports whether the kind merges two or more adjacent ranges
// with the scan operator.
func (k Kind) IsCombine() bool { return k == Cocycle || k == Cocycle3 || k == Grey }

// IsBuffer reports whether the kind is a depth-padding passthrough.
func (k Kind) IsBuffer() bool { return k == Buffer || k == BufferGrey }

// Node is one vertex of a prefix tree. Nodes are linked by pointers;
// pointer identity is the sharing mechanism, so a node referenced by
// several trees of a forest is emitted once at linearization.
//
// For strict binary nodes Mid is nil. Fan-in optimization produces
// 3-input nodes where Mid holds the middle child. Buffers and PostSmall
// have only Left. Parent is a non-owning back-reference used by the
// rewrite walks; it is meaningless on nodes shared across trees and is
// not maintained there.
type Node struct {
	Kind   Kind
	Span   BitRange
	Left   *Node
	Mid    *Node
	Right  *Node
	Parent *Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return n.Kind.IsLeaf() }

// Children returns the non-nil children in low-to-high range order.
func (n *Node) Children() []*Node {
	cc := make([]*Node, 0, 3)
	for _, c := range []*Node{n.Left, n.Mid, n.Right} {
		if c != nil {
			cc = append(cc, c)
		}
	}
	return cc
}

// resetSpan re-derives n's span from its children. Leaves keep theirs.
func (n *Node) resetSpan() {
	if n.IsLeaf() {
		return
	}
	if n.Left != nil {
		n.Span = n.Left.Span
		if n.Mid != nil {
			n.Span = n.Span.Union(n.Mid.Span)
		}
		if n.Right != nil {
			n.Span = n.Span.Union(n.Right.Span)
		}
	}
}

// ordered reports whether n's children cover adjacent, increasing
// ranges whose union is contiguous.
func (n *Node) ordered() bool {
	if n.IsLeaf() {
		return n.Span.Valid() && n.Span.Lo == n.Span.Hi
	}
	prev := n.Left
	if prev == nil {
		return false
	}
	for _, c := range []*Node{n.Mid, n.Right} {
		if c == nil {
			continue
		}
		if !prev.Span.AdjacentBelow(c.Span) {
			return false
		}
		prev = c
	}
	return true
}

// each calls f on every node of the subtree, children before parents.
func (n *Node) each(f func(*Node)) {
	if n == nil {
		return
	}
	n.Left.each(f)
	n.Mid.each(f)
	n.Right.each(f)
	f(n)
}

func (n *Node) String() string {
	return fmt.Sprintf("%s%s", n.Kind, n.Span)
}
