package netlist

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/consensys/pptrees/cells"
	"github.com/consensys/pptrees/logger"
	"github.com/consensys/pptrees/prefix"
	"github.com/consensys/pptrees/profile"
)

var (
	// ErrMalformed signals an instance list that is not a valid
	// topological order: an instance reads a wire nothing drives, a wire
	// is driven twice or never, or a terminal points outside the wire
	// range.
	ErrMalformed = errors.New("netlist: malformed netlist")

	// ErrBadInput is returned by Simulate when the provided input
	// vectors do not match the netlist's input terminals.
	ErrBadInput = errors.New("netlist: input vector mismatch")
)

// Instance is one placed cell. Args lists the wires feeding its input
// ports and Outs the wires it drives, both flat in port order. Level
// is the logic level: the length of the longest instance chain from a
// primary input, leaves at level 0.
type Instance struct {
	ID    int
	Cell  string
	Kind  prefix.Kind
	Span  prefix.BitRange
	Args  []int
	Outs  []int
	Level int
}

// Terminal binds one bit of a named circuit port to a wire.
type Terminal struct {
	Name string
	Pos  int
	Wire int
}

// Netlist is a linearized circuit: cell instances in topological
// order over a flat wire namespace. Inputs are sorted by name then
// position; Outputs hold the sum bits in position order followed by
// the carry-out.
type Netlist struct {
	Name      string
	Width     int
	CarryIn   bool
	Instances []Instance
	Inputs    []Terminal
	Outputs   []Terminal
	NbWires   int

	lib *cells.Library
}

// Library returns the cell library the netlist was built against.
func (nl *Netlist) Library() *cells.Library { return nl.lib }

// Option alters netlist construction.
type Option func(*config) error

type config struct {
	name string
}

// WithName overrides the netlist's name, which becomes the top module
// name in HDL output.
func WithName(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return errors.New("empty netlist name")
		}
		cfg.name = name
		return nil
	}
}

// Build linearizes a forest against a cell library. Every distinct
// node becomes one instance, children ahead of their consumers, so
// shared nodes are emitted once no matter how many trees point at
// them. The post row instances come last; their sum wires and the top
// root's generate wire form the outputs.
func Build(f *prefix.Forest, lib *cells.Library, opts ...Option) (*Netlist, error) {
	log := logger.Logger()
	start := time.Now()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	cfg := config{name: fmt.Sprintf("%s_%d", lib.Name(), f.Width())}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	b := newBuilder(lib, f.HasCarryIn())
	b.nl.Name = cfg.name
	b.nl.Width = f.Width()
	b.nl.CarryIn = f.HasCarryIn()

	var walkErr error
	f.Each(func(n *prefix.Node) {
		if walkErr != nil {
			return
		}
		walkErr = b.place(n)
	})
	if walkErr != nil {
		return nil, walkErr
	}

	for bit, p := range f.Posts() {
		w, err := b.outWire(p, "sum")
		if err != nil {
			return nil, err
		}
		b.nl.Outputs = append(b.nl.Outputs, Terminal{Name: "sum", Pos: bit, Wire: w})
	}
	w, err := b.outWire(f.CarryOut(), "gout")
	if err != nil {
		return nil, err
	}
	b.nl.Outputs = append(b.nl.Outputs, Terminal{Name: "cout", Pos: 0, Wire: w})

	b.bindInputs()
	nl := b.nl
	if err := nl.check(); err != nil {
		return nil, err
	}

	log.Debug().Str("name", nl.Name).Int("nbInstances", len(nl.Instances)).
		Int("nbWires", nl.NbWires).Int("depth", nl.Depth()).
		Dur("took", time.Since(start)).Msg("linearized forest")
	return nl, nil
}

// BuildTree linearizes a single tree, exposing the root's output
// ports instead of a post row. Useful to inspect one scan in
// isolation.
func BuildTree(t *prefix.Tree, lib *cells.Library, opts ...Option) (*Netlist, error) {
	log := logger.Logger()
	start := time.Now()

	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := lib.Validate(); err != nil {
		return nil, err
	}
	cfg := config{name: fmt.Sprintf("%s_tree_%d", lib.Name(), t.Width())}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	b := newBuilder(lib, false)
	b.nl.Name = cfg.name
	b.nl.Width = t.Width()

	var walkErr error
	t.Each(func(n *prefix.Node) {
		if walkErr != nil {
			return
		}
		walkErr = b.place(n)
	})
	if walkErr != nil {
		return nil, walkErr
	}

	root := t.Root()
	c, err := lib.Cell(root.Kind)
	if err != nil {
		return nil, err
	}
	outs := b.wires[root]
	for _, p := range c.Outs {
		off, _ := c.OutOffset(p.Name)
		for i := 0; i < p.Bits; i++ {
			b.nl.Outputs = append(b.nl.Outputs, Terminal{Name: p.Name, Pos: i, Wire: outs[off+i]})
		}
	}

	b.bindInputs()
	nl := b.nl
	if err := nl.check(); err != nil {
		return nil, err
	}

	log.Debug().Str("name", nl.Name).Int("nbInstances", len(nl.Instances)).
		Int("nbWires", nl.NbWires).Int("depth", nl.Depth()).
		Dur("took", time.Since(start)).Msg("linearized tree")
	return nl, nil
}

type pinKey struct {
	name string
	pos  int
}

type builder struct {
	nl      *Netlist
	lib     *cells.Library
	carryIn bool

	wires  map[*prefix.Node][]int
	pins   map[pinKey]int
	levels []int
}

func newBuilder(lib *cells.Library, carryIn bool) *builder {
	return &builder{
		nl:      &Netlist{lib: lib},
		lib:     lib,
		carryIn: carryIn,
		wires:   make(map[*prefix.Node][]int),
		pins:    make(map[pinKey]int),
	}
}

// place emits the instance for a node, wiring every input port bit to
// a primary input pin or to the matching output of a child instance.
// Children are placed before parents by the forest walk, so all child
// wires exist.
func (b *builder) place(n *prefix.Node) error {
	if _, done := b.wires[n]; done {
		return nil
	}
	c, err := b.lib.Cell(n.Kind)
	if err != nil {
		return err
	}
	children := n.Children()
	inst := Instance{
		ID:   len(b.nl.Instances),
		Cell: c.Name,
		Kind: n.Kind,
		Span: n.Span,
		Args: make([]int, 0, c.InBits()),
	}
	for _, p := range c.Ins {
		if p.External {
			pos := n.Span.Lo
			if b.carryIn && n.Kind != prefix.PreCin {
				// operand bit of a carry-in forest sits one scan
				// position above its index
				pos--
			}
			for i := 0; i < p.Bits; i++ {
				inst.Args = append(inst.Args, b.pin(p.Name, pos+i))
			}
			continue
		}
		if len(p.Split) != len(children) {
			return fmt.Errorf("%w: %s port %s splits over %d children, node %s has %d",
				cells.ErrBadCell, c.Name, p.Name, len(p.Split), n, len(children))
		}
		from := cells.Verso(p.Name)
		for ci, nb := range p.Split {
			if nb == 0 {
				continue
			}
			child := children[ci]
			cc, err := b.lib.Cell(child.Kind)
			if err != nil {
				return err
			}
			off, ok := cc.OutOffset(from)
			if !ok || off+nb > len(b.wires[child]) {
				return fmt.Errorf("%w: %s port %s draws %s from %s",
					cells.ErrBadCell, c.Name, p.Name, from, cc.Name)
			}
			for i := 0; i < nb; i++ {
				inst.Args = append(inst.Args, b.wires[child][off+i])
			}
		}
	}

	lvl := -1
	for _, a := range inst.Args {
		if b.levels[a] > lvl {
			lvl = b.levels[a]
		}
	}
	inst.Level = lvl + 1

	outs := make([]int, c.OutBits())
	for i := range outs {
		outs[i] = b.newWire(inst.Level)
	}
	inst.Outs = outs
	b.wires[n] = outs
	b.nl.Instances = append(b.nl.Instances, inst)
	profile.RecordCell()
	return nil
}

// pin returns the wire of a primary input bit, allocating it on first
// use. Position is the operand bit index, not the scan position.
func (b *builder) pin(name string, pos int) int {
	k := pinKey{name: name, pos: pos}
	if w, ok := b.pins[k]; ok {
		return w
	}
	w := b.newWire(-1)
	b.pins[k] = w
	return w
}

func (b *builder) newWire(level int) int {
	w := b.nl.NbWires
	b.nl.NbWires++
	b.levels = append(b.levels, level)
	return w
}

// outWire returns the wire of a node's named output port.
func (b *builder) outWire(n *prefix.Node, port string) (int, error) {
	c, err := b.lib.Cell(n.Kind)
	if err != nil {
		return 0, err
	}
	off, ok := c.OutOffset(port)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no output %s", cells.ErrBadCell, c.Name, port)
	}
	return b.wires[n][off], nil
}

func (b *builder) bindInputs() {
	ins := make([]Terminal, 0, len(b.pins))
	for k, w := range b.pins {
		ins = append(ins, Terminal{Name: k.name, Pos: k.pos, Wire: w})
	}
	sort.Slice(ins, func(i, j int) bool {
		if ins[i].Name != ins[j].Name {
			return ins[i].Name < ins[j].Name
		}
		return ins[i].Pos < ins[j].Pos
	})
	b.nl.Inputs = ins
}

// check verifies the netlist invariants: instances match their cells,
// the instance order is topological, every wire is driven exactly
// once, levels are consistent and terminals stay in range.
func (nl *Netlist) check() error {
	driven := bitset.New(uint(nl.NbWires))
	level := make([]int, nl.NbWires)
	for _, t := range nl.Inputs {
		if t.Wire < 0 || t.Wire >= nl.NbWires {
			return fmt.Errorf("%w: input %s[%d] bound to wire %d of %d", ErrMalformed, t.Name, t.Pos, t.Wire, nl.NbWires)
		}
		if driven.Test(uint(t.Wire)) {
			return fmt.Errorf("%w: wire %d driven twice", ErrMalformed, t.Wire)
		}
		driven.Set(uint(t.Wire))
		level[t.Wire] = -1
	}
	for i := range nl.Instances {
		inst := &nl.Instances[i]
		if inst.ID != i {
			return fmt.Errorf("%w: instance %d carries id %d", ErrMalformed, i, inst.ID)
		}
		c, err := nl.lib.Cell(inst.Kind)
		if err != nil {
			return err
		}
		if c.Name != inst.Cell || len(inst.Args) != c.InBits() || len(inst.Outs) != c.OutBits() {
			return fmt.Errorf("%w: instance %d does not match cell %s", ErrMalformed, i, c.Name)
		}
		lvl := -1
		for _, a := range inst.Args {
			if a < 0 || a >= nl.NbWires || !driven.Test(uint(a)) {
				return fmt.Errorf("%w: instance %d reads undriven wire %d", ErrMalformed, i, a)
			}
			if level[a] > lvl {
				lvl = level[a]
			}
		}
		if inst.Level != lvl+1 {
			return fmt.Errorf("%w: instance %d at level %d, expected %d", ErrMalformed, i, inst.Level, lvl+1)
		}
		for _, o := range inst.Outs {
			if o < 0 || o >= nl.NbWires {
				return fmt.Errorf("%w: instance %d drives wire %d of %d", ErrMalformed, i, o, nl.NbWires)
			}
			if driven.Test(uint(o)) {
				return fmt.Errorf("%w: wire %d driven twice", ErrMalformed, o)
			}
			driven.Set(uint(o))
			level[o] = inst.Level
		}
	}
	if n := driven.Count(); int(n) != nl.NbWires {
		return fmt.Errorf("%w: %d of %d wires never driven", ErrMalformed, nl.NbWires-int(n), nl.NbWires)
	}
	for _, t := range nl.Outputs {
		if t.Wire < 0 || t.Wire >= nl.NbWires {
			return fmt.Errorf("%w: output %s[%d] bound to wire %d of %d", ErrMalformed, t.Name, t.Pos, t.Wire, nl.NbWires)
		}
	}
	return nil
}

// Depth returns the number of logic levels, pre and post rows
// included.
func (nl *Netlist) Depth() int {
	d := 0
	for i := range nl.Instances {
		if nl.Instances[i].Level+1 > d {
			d = nl.Instances[i].Level + 1
		}
	}
	return d
}

// Levels groups instance IDs by logic level, level 0 first. Instances
// of one level only read wires produced below it, so each group can
// be evaluated or placed concurrently.
func (nl *Netlist) Levels() [][]int {
	if len(nl.Instances) == 0 {
		return nil
	}
	levels := make([][]int, nl.Depth())
	for i := range nl.Instances {
		inst := &nl.Instances[i]
		levels[inst.Level] = append(levels[inst.Level], inst.ID)
	}
	return levels
}

// CountByCell returns the number of placed instances per cell name.
func (nl *Netlist) CountByCell() map[string]int {
	counts := make(map[string]int, 8)
	for i := range nl.Instances {
		counts[nl.Instances[i].Cell]++
	}
	return counts
}

// CriticalPath returns the largest accumulated cell delay from any
// input to any output terminal, in the library's delay units.
func (nl *Netlist) CriticalPath() (float64, error) {
	arrival := make([]float64, nl.NbWires)
	for i := range nl.Instances {
		inst := &nl.Instances[i]
		c, err := nl.lib.Cell(inst.Kind)
		if err != nil {
			return 0, err
		}
		var t float64
		for _, a := range inst.Args {
			if arrival[a] > t {
				t = arrival[a]
			}
		}
		t += c.Delay
		for _, o := range inst.Outs {
			arrival[o] = t
		}
	}
	var worst float64
	for _, out := range nl.Outputs {
		if arrival[out.Wire] > worst {
			worst = arrival[out.Wire]
		}
	}
	return worst, nil
}
