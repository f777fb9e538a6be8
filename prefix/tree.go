package prefix

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/consensys/pptrees/logger"
)

// Tree is the prefix scan structure for one output bit: width leaves,
// one per input position, merged by width-1 combine nodes. The shape is
// identified by a structure index in [0, catalan(width-1)); rewrites
// change the index, never the leaf set.
type Tree struct {
	width int
	root  *Node
}

// TreeOption alters tree construction. See [WithIndex] and [WithAlias].
type TreeOption func(*treeConfig) error

type treeConfig struct {
	index *big.Int
	alias string
}

// WithIndex selects the tree shape by its structure index in
// [0, catalan(width-1)). Index 0 is the serial (ripple) chain.
func WithIndex(index *big.Int) TreeOption {
	return func(cfg *treeConfig) error {
		if index == nil {
			return fmt.Errorf("%w: nil index", ErrIndexRange)
		}
		cfg.index = index
		return nil
	}
}

// WithIndexInt64 is [WithIndex] for small indices.
func WithIndexInt64(index int64) TreeOption {
	return WithIndex(big.NewInt(index))
}

// WithAlias selects a classic topology by name: "serial" (also
// "ripple", "ripple-carry"), "sklansky", "kogge-stone" or
// "brent-kung". An alias overrides any index option, matching the
// historical behaviour of structure aliases.
func WithAlias(name string) TreeOption {
	return func(cfg *treeConfig) error {
		cfg.alias = name
		return nil
	}
}

// NewTree builds a width-w prefix tree. Without options the shape is
// the balanced reference topology (Sklansky), itself a reachable point
// of the index space.
func NewTree(width int, opts ...TreeOption) (*Tree, error) {
	log := logger.Logger()

	var cfg treeConfig
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	t, err := buildTree(width, cfg)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("width", width).Msg("built prefix tree")
	return t, nil
}

func buildTree(width int, cfg treeConfig) (*Tree, error) {
	if width < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	if cfg.alias == "" && cfg.index == nil {
		cfg.alias = "sklansky"
	}
	if cfg.alias != "" && !aliasKnown(cfg.alias) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlias, cfg.alias)
	}

	// width 1 has no internal structure; the sole shape is the leaf.
	if width == 1 {
		if cfg.index != nil && cfg.index.Sign() != 0 {
			return nil, fmt.Errorf("%w: %s for width 1", ErrIndexRange, cfg.index)
		}
		return &Tree{width: 1, root: allocFactory{}.leaf(0)}, nil
	}

	cats := catalanTable(width - 1)
	index := cfg.index
	if cfg.alias != "" {
		index = new(big.Int)
	}
	if index.Sign() < 0 || index.Cmp(cats[width-1]) >= 0 {
		return nil, fmt.Errorf("%w: %s not in [0, %s) for width %d",
			ErrIndexRange, index, cats[width-1], width)
	}

	root, err := unrankShape(allocFactory{}, index, 0, width-1, cats)
	if err != nil {
		return nil, err
	}
	t := &Tree{width: width, root: root}

	if cfg.alias != "" {
		if err := t.applyAlias(cfg.alias); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// applyAlias reshapes the freshly unranked serial chain into the named
// classic topology. Widths up to 2 have a single shape, so every alias
// is already in place there.
func (t *Tree) applyAlias(name string) error {
	switch name {
	case "serial", "ripple", "ripple-carry":
		return nil
	case "sklansky":
		if t.width <= 2 {
			return nil
		}
		_, err := t.BalanceLeft(t.root)
		return err
	case "kogge-stone":
		if t.width <= 2 {
			return nil
		}
		if _, err := t.BalanceRight(t.root); err != nil {
			return err
		}
		_, err := t.EqualizeDepths(t.root)
		return err
	case "brent-kung":
		if t.width <= 2 {
			return nil
		}
		if _, err := t.BalanceLeft(t.root); err != nil {
			return err
		}
		// fold the high subtree back onto the backbone until it is a
		// perfect block
		for !isPerfect(t.root.Right) {
			if _, err := t.RotateLeft(t.root.Right); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAlias, name)
	}
}

// Aliases returns the recognized topology alias names.
func Aliases() []string {
	return []string{"serial", "ripple", "ripple-carry", "sklansky", "kogge-stone", "brent-kung"}
}

func aliasKnown(name string) bool {
	for _, a := range Aliases() {
		if a == name {
			return true
		}
	}
	return false
}

// Width returns the number of input positions the tree covers.
func (t *Tree) Width() int { return t.width }

// Root returns the top combine node (the leaf itself at width 1).
func (t *Tree) Root() *Node { return t.root }

// Leaves returns the width leaves in increasing bit order. This is a
// derived view; mutating the slice does not affect the tree.
func (t *Tree) Leaves() []*Node {
	leaves := make([]*Node, 0, t.width)
	t.root.each(func(n *Node) {
		if n.IsLeaf() {
			leaves = append(leaves, n)
		}
	})
	return leaves
}

// Each visits every node of the tree, children before parents.
func (t *Tree) Each(visit func(*Node)) {
	t.root.each(visit)
}

// Height returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Height() int { return heightOf(t.root) }

func heightOf(n *Node) int {
	if n == nil || n.IsLeaf() {
		return 0
	}
	h := heightOf(n.Left)
	if hh := heightOf(n.Mid); hh > h {
		h = hh
	}
	if hh := heightOf(n.Right); hh > h {
		h = hh
	}
	return h + 1
}

// isPerfect reports whether the subtree is a perfect binary tree, with
// all leaves at equal depth. Buffers count as levels, matching their
// effect on the physical path.
func isPerfect(n *Node) bool {
	return n.Span.Width() == 1<<heightOf(n)
}

// StructureIndex recomputes the canonical index of the current shape
// within [0, catalan(width-1)). It is derived from the live structure
// on every call, never cached. Buffers are transparent; a tree taken
// out of the binary shape space by fan-in fusion reports ErrFinalized.
func (t *Tree) StructureIndex() (*big.Int, error) {
	if t.width == 1 {
		return new(big.Int), nil
	}
	return rankShape(t.root, catalanTable(t.width-1))
}

// Validate walks the whole tree and checks the structural invariants:
// child spans adjacent and increasing, parent spans the exact union,
// every input position covered by exactly one leaf, parent links
// consistent where maintained. A failure is a consistency error.
func (t *Tree) Validate() error {
	if t.root == nil {
		return inconsistency("nil root")
	}
	want := BitRange{Lo: 0, Hi: t.width - 1}
	if t.root.Span != want {
		return inconsistency("root covers %s, want %s", t.root.Span, want)
	}
	return validateSubtree(t.root, t.width)
}

func validateSubtree(root *Node, width int) error {
	seen := bitset.New(uint(width))
	var vErr error
	root.each(func(n *Node) {
		if vErr != nil {
			return
		}
		switch {
		case n.IsLeaf():
			if n.Left != nil || n.Mid != nil || n.Right != nil {
				vErr = inconsistency("leaf %s has children", n)
				return
			}
			pos := uint(n.Span.Lo)
			if seen.Test(pos) {
				vErr = inconsistency("position %d covered twice", n.Span.Lo)
				return
			}
			seen.Set(pos)
		case n.Kind.IsBuffer() || n.Kind == PostSmall:
			if n.Left == nil || n.Mid != nil || n.Right != nil {
				vErr = inconsistency("%s must have a single child", n)
				return
			}
		default:
			if n.Left == nil || n.Right == nil {
				vErr = inconsistency("combine %s missing a child", n)
				return
			}
		}
		if !n.ordered() {
			vErr = inconsistency("%s child ranges out of order", n)
			return
		}
		for _, c := range []*Node{n.Left, n.Mid, n.Right} {
			if c != nil && c.Parent != nil && c.Parent != n {
				vErr = inconsistency("%s has a stale parent link", c)
				return
			}
		}
	})
	if vErr != nil {
		return vErr
	}
	if got := seen.Count(); got != uint(root.Span.Width()) {
		return inconsistency("%d of %d positions covered", got, root.Span.Width())
	}
	return nil
}

// String renders the shape as nested parentheses over bit positions,
// with buffers marked by a leading apostrophe.
func (t *Tree) String() string {
	var sb strings.Builder
	writeShape(&sb, t.root)
	return sb.String()
}

func writeShape(sb *strings.Builder, n *Node) {
	switch {
	case n.IsLeaf():
		fmt.Fprintf(sb, "%d", n.Span.Lo)
	case n.Kind.IsBuffer():
		sb.WriteByte('\'')
		writeShape(sb, n.Left)
	default:
		sb.WriteByte('(')
		writeShape(sb, n.Left)
		if n.Mid != nil {
			sb.WriteByte(' ')
			writeShape(sb, n.Mid)
		}
		sb.WriteByte(' ')
		writeShape(sb, n.Right)
		sb.WriteByte(')')
	}
}

// onLeftSpine reports whether n sits on the low-side spine, covering
// position 0.
func (t *Tree) onLeftSpine(n *Node) bool { return n.Span.Lo == 0 }

// onRightSpine reports whether n sits on the high-side spine, covering
// the top position.
func (t *Tree) onRightSpine(n *Node) bool { return n.Span.Hi == t.width-1 }
