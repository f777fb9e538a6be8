package prefix

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/consensys/pptrees/internal/algos"
	"github.com/consensys/pptrees/logger"
)

// Forest holds one prefix tree per scan position plus the post row
// producing the output bits. Tree i covers positions [0, i]; with a
// carry-in there is one extra position below bit 0, so operand bit b
// lives at position b+1.
//
// By default identical subtrees are deduplicated across member trees,
// so a serial forest collapses to one carry chain and the classic
// topologies collapse to their textbook prefix graphs. Sparsification
// additionally rebuilds non-anchor trees on top of a shared backbone,
// registered in Shared.
type Forest struct {
	width   int
	carryIn bool

	trees []*Tree
	posts []*Node

	// Shared maps a bit range to the canonical backbone node reused by
	// the trees above it; populated by sparsification.
	Shared map[BitRange]*Node

	// memo is the uniqueness table of the node DAG; nil for unshared
	// forests.
	memo map[nodeKey]*Node
}

// nodeKey identifies a node up to sharing: leaves by their position,
// internal nodes by kind and canonical children. Two subtrees with the
// same key compute the same value over the same range.
type nodeKey struct {
	kind             Kind
	span             BitRange
	left, mid, right *Node
}

// ForestOption alters forest construction.
type ForestOption func(*forestConfig) error

type forestConfig struct {
	alias    string
	indexes  []*big.Int
	carryIn  bool
	unshared bool
}

// WithForestAlias shapes every member tree after the named classic
// topology ("serial", "sklansky", "kogge-stone", "brent-kung").
func WithForestAlias(name string) ForestOption {
	return func(cfg *forestConfig) error {
		cfg.alias = name
		return nil
	}
}

// WithIndexes selects each member tree's shape by structure index, one
// per tree. Tree i has width i+1, so indexes[i] must lie in
// [0, catalan(i)).
func WithIndexes(indexes []*big.Int) ForestOption {
	return func(cfg *forestConfig) error {
		cfg.indexes = indexes
		return nil
	}
}

// WithCarryIn adds an incoming-carry leaf below position 0. Output bit
// b then taps position b+1 and every post is a full two-operand cell.
func WithCarryIn() ForestOption {
	return func(cfg *forestConfig) error {
		cfg.carryIn = true
		return nil
	}
}

// WithUnshared keeps every member tree private, duplicating identical
// subtrees instead of deduplicating them. This reproduces the
// duplicated per-bit hardware of flat emitters; fan-out is minimal and
// area maximal. Unshared forests cannot be sparsified.
func WithUnshared() ForestOption {
	return func(cfg *forestConfig) error {
		cfg.unshared = true
		return nil
	}
}

// NewForest builds the forest for a width-w operation: one tree per
// scan position and a post row of w output bits. Member trees are
// constructed concurrently; the deduplication table is filled in a
// single pass afterwards.
func NewForest(width int, opts ...ForestOption) (*Forest, error) {
	log := logger.Logger()
	start := time.Now()

	if width < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	var cfg forestConfig
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	f := &Forest{
		width:   width,
		carryIn: cfg.carryIn,
		Shared:  make(map[BitRange]*Node),
	}
	positions := width
	if cfg.carryIn {
		positions++
	}
	if cfg.indexes != nil && len(cfg.indexes) != positions {
		return nil, fmt.Errorf("%w: %d indexes for %d trees", ErrIndexRange, len(cfg.indexes), positions)
	}

	// independent tree constructions in parallel (shared state appears
	// only in the interning pass below)
	f.trees = make([]*Tree, positions)
	var g errgroup.Group
	for i := 0; i < positions; i++ {
		g.Go(func() error {
			tcfg := treeConfig{alias: cfg.alias}
			if cfg.indexes != nil {
				tcfg.index = cfg.indexes[i]
			}
			t, err := buildTree(i+1, tcfg)
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			f.trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if cfg.carryIn {
		for i, t := range f.trees {
			retagCarryLeaf(t.root)
			if err := t.Validate(); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
	}

	if !cfg.unshared {
		f.memo = make(map[nodeKey]*Node, 4*positions)
		for i, t := range f.trees {
			f.trees[i] = &Tree{width: t.width, root: f.intern(t.root)}
		}
	}

	f.buildPosts()

	log.Debug().Int("width", width).Bool("carryIn", cfg.carryIn).
		Int("nbNodes", f.CountNodes()).Dur("took", time.Since(start)).
		Msg("built prefix forest")
	return f, nil
}

// retagCarryLeaf marks position 0 as the incoming-carry leaf.
func retagCarryLeaf(root *Node) {
	n := lowestLeaf(root)
	n.Kind = PreCin
}

// intern folds the subtree into the uniqueness table bottom-up and
// returns the canonical node. Canonical nodes carry no parent links;
// several trees may reference them.
func (f *Forest) intern(n *Node) *Node {
	if n == nil {
		return nil
	}
	k := nodeKey{
		kind:  n.Kind,
		left:  f.intern(n.Left),
		mid:   f.intern(n.Mid),
		right: f.intern(n.Right),
	}
	if n.IsLeaf() {
		k.span = n.Span
	}
	if c, ok := f.memo[k]; ok {
		return c
	}
	c := &Node{Kind: n.Kind, Span: n.Span, Left: k.left, Mid: k.mid, Right: k.right}
	f.memo[k] = c
	return c
}

// buildPosts derives the post row from the current tree roots. Output
// bit b pairs its operand leaf's propagate with the generate of the
// designated root just below it; bit 0 of a no-carry forest has no
// root below and uses the single-operand variant.
func (f *Forest) buildPosts() {
	top := f.trees[len(f.trees)-1]
	leaves := top.Leaves()

	f.posts = make([]*Node, f.width)
	for b := 0; b < f.width; b++ {
		pos := b
		if f.carryIn {
			pos = b + 1
		}
		leaf := leaves[pos]
		if pos == 0 {
			f.posts[b] = &Node{Kind: PostSmall, Span: leaf.Span, Left: leaf}
			continue
		}
		below := f.trees[pos-1].root
		f.posts[b] = &Node{
			Kind: Post,
			Span: below.Span.Union(leaf.Span),
			Left: below, Right: leaf,
		}
	}
}

// Width returns the operand width (output bits, excluding carry-out).
func (f *Forest) Width() int { return f.width }

// HasCarryIn reports whether an incoming-carry leaf sits below bit 0.
func (f *Forest) HasCarryIn() bool { return f.carryIn }

// Trees returns the member trees; tree i covers positions [0, i].
func (f *Forest) Trees() []*Tree { return f.trees }

// Posts returns the post row, one node per output bit.
func (f *Forest) Posts() []*Node { return f.posts }

// CarryOut returns the designated root producing the outgoing carry.
func (f *Forest) CarryOut() *Node { return f.trees[len(f.trees)-1].root }

// Roots returns each member tree's designated root node.
func (f *Forest) Roots() []*Node {
	roots := make([]*Node, len(f.trees))
	for i, t := range f.trees {
		roots[i] = t.root
	}
	return roots
}

// Each visits every distinct node of the forest exactly once, children
// before parents, post row last.
func (f *Forest) Each(visit func(*Node)) {
	seen := make(map[*Node]struct{})
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		walk(n.Left)
		walk(n.Mid)
		walk(n.Right)
		visit(n)
	}
	for _, t := range f.trees {
		walk(t.root)
	}
	for _, p := range f.posts {
		walk(p)
	}
}

// CountNodes returns the number of distinct nodes, posts included.
func (f *Forest) CountNodes() int {
	var n int
	f.Each(func(*Node) { n++ })
	return n
}

// CountByKind returns the number of distinct nodes per kind.
func (f *Forest) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	f.Each(func(n *Node) { counts[n.Kind]++ })
	return counts
}

// Validate re-derives every member tree's coverage and ordering, then
// checks the post row taps. Sharing keeps member trees internally
// tree-shaped (no node repeats within one tree), so the per-tree walk
// applies unchanged.
func (f *Forest) Validate() error {
	for i, t := range f.trees {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
		if t.width != i+1 {
			return inconsistency("tree %d has width %d", i, t.width)
		}
	}
	for b, p := range f.posts {
		pos := b
		if f.carryIn {
			pos = b + 1
		}
		switch p.Kind {
		case PostSmall:
			if pos != 0 || p.Left == nil || !p.Left.IsLeaf() {
				return inconsistency("malformed post for bit %d", b)
			}
		case Post:
			if p.Left != f.trees[pos-1].root || p.Right == nil || !p.Right.IsLeaf() ||
				p.Right.Span.Lo != pos {
				return inconsistency("malformed post for bit %d", b)
			}
		default:
			return inconsistency("post for bit %d has kind %s", b, p.Kind)
		}
	}
	return nil
}

// Sparsify rebuilds the forest with a carry backbone at every position
// a where (a+1) mod degree == 0. Anchor trees chain through each other
// (nested sharing); every non-anchor tree above the first anchor is
// rebuilt as one combine over the backbone below it and its local
// block. Inputs feeding each node never change, only how many trees
// point at it.
func (f *Forest) Sparsify(degree int) error {
	if degree < 2 {
		return fmt.Errorf("%w: sparsification degree %d, need at least 2", ErrInvalidWidth, degree)
	}
	positions := len(f.trees)
	var anchors []int
	for a := 0; a < positions; a++ {
		if (a+1)%degree == 0 {
			anchors = append(anchors, a)
		}
	}
	if len(anchors) == 0 {
		return fmt.Errorf("%w: degree %d leaves no anchors below width %d", ErrInvalidWidth, degree, positions)
	}
	return f.SparsifyAt(anchors)
}

// SparsifyAt is Sparsify with an explicit, strictly increasing anchor
// pattern, allowing irregular spacing.
func (f *Forest) SparsifyAt(anchors []int) error {
	log := logger.Logger()

	if f.memo == nil {
		return fmt.Errorf("cannot sparsify an unshared forest")
	}
	if len(anchors) == 0 {
		return fmt.Errorf("%w: empty anchor pattern", ErrInvalidWidth)
	}
	positions := len(f.trees)
	if !sort.IntsAreSorted(anchors) {
		return fmt.Errorf("%w: anchor pattern must be increasing", ErrInvalidWidth)
	}
	for i, a := range anchors {
		if a < 0 || a >= positions {
			return fmt.Errorf("%w: anchor %d outside [0, %d)", ErrInvalidWidth, a, positions)
		}
		if i > 0 && a == anchors[i-1] {
			return fmt.Errorf("%w: duplicate anchor %d", ErrInvalidWidth, a)
		}
	}

	// chain the backbone: each anchor combines the previous backbone
	// node with its local block
	prev := -1
	var backbone *Node
	for _, a := range anchors {
		block := f.buildRange(prev+1, a)
		if backbone == nil {
			backbone = block
		} else {
			backbone = f.internCombine(backbone, block)
		}
		f.trees[a] = &Tree{width: a + 1, root: backbone}
		f.Shared[BitRange{Lo: 0, Hi: a}] = backbone
		prev = a
	}

	// rebuild the non-anchor trees above the first anchor on top of the
	// backbone below them
	for i := anchors[0] + 1; i < positions; i++ {
		if f.Shared[BitRange{Lo: 0, Hi: i}] != nil && f.trees[i].root == f.Shared[BitRange{Lo: 0, Hi: i}] {
			continue
		}
		below := largestAnchorBelow(anchors, i)
		base := f.Shared[BitRange{Lo: 0, Hi: below}]
		local := f.buildRange(below+1, i)
		f.trees[i] = &Tree{width: i + 1, root: f.internCombine(base, local)}
	}

	f.buildPosts()
	if err := f.Validate(); err != nil {
		return err
	}

	log.Debug().Ints("anchors", anchors).Int("nbNodes", f.CountNodes()).
		Msg("sparsified forest")
	return nil
}

func largestAnchorBelow(anchors []int, i int) int {
	if n := algos.Search(anchors, i); n > 0 {
		return anchors[n-1]
	}
	return anchors[0]
}

// buildRange returns the canonical balanced subtree over positions
// [lo, hi], reusing any part of it already in the table.
func (f *Forest) buildRange(lo, hi int) *Node {
	if lo == hi {
		return f.internLeaf(lo)
	}
	// largest power-of-two block on the low side, like the default
	// topology, so blocks collapse with existing subtrees
	w := hi - lo + 1
	split := 1
	for split*2 < w {
		split *= 2
	}
	left := f.buildRange(lo, lo+split-1)
	right := f.buildRange(lo+split, hi)
	return f.internCombine(left, right)
}

func (f *Forest) internLeaf(pos int) *Node {
	kind := Pre
	if f.carryIn && pos == 0 {
		kind = PreCin
	}
	k := nodeKey{kind: kind, span: BitRange{Lo: pos, Hi: pos}}
	if c, ok := f.memo[k]; ok {
		return c
	}
	c := &Node{Kind: kind, Span: k.span}
	f.memo[k] = c
	return c
}

func (f *Forest) internCombine(l, r *Node) *Node {
	k := nodeKey{kind: Cocycle, left: l, right: r}
	if c, ok := f.memo[k]; ok {
		return c
	}
	c := &Node{Kind: Cocycle, Span: l.Span.Union(r.Span), Left: l, Right: r}
	f.memo[k] = c
	return c
}

// OptimizeCells demotes every node whose propagate output has no
// consumer left: tree roots feed only the post row, so they turn Grey,
// and the demotion cascades down low-side chains until a node's
// propagate is still consumed by some tree. Buffers demote to their
// grey variant the same way. Returns the number of demotions.
//
// Like fan-in fusion this is a finalization pass: the shapes stay
// intact, but cell kinds no longer match what the bijection produces.
func (f *Forest) OptimizeCells() int {
	var demoted int
	for {
		changed := false
		needP := f.propagateConsumers()
		f.Each(func(n *Node) {
			if needP[n] {
				return
			}
			switch n.Kind {
			case Cocycle:
				n.Kind = Grey
			case Buffer:
				n.Kind = BufferGrey
			default:
				return
			}
			demoted++
			changed = true
		})
		if !changed {
			return demoted
		}
	}
}

// propagateConsumers marks every node whose propagate output some
// other node still reads. Combines read both children's propagate
// while they produce one themselves; greys read only the high child's;
// posts read only their leaf's.
func (f *Forest) propagateConsumers() map[*Node]bool {
	needP := make(map[*Node]bool)
	f.Each(func(n *Node) {
		switch n.Kind {
		case Cocycle, Cocycle3:
			for _, c := range []*Node{n.Left, n.Mid, n.Right} {
				if c != nil {
					needP[c] = true
				}
			}
		case Grey:
			needP[n.Right] = true
		case Buffer:
			needP[n.Left] = true
		case Post:
			needP[n.Right] = true
		case PostSmall:
			needP[n.Left] = true
		}
	})
	return needP
}
