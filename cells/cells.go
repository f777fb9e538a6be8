package cells

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/consensys/pptrees/prefix"
)

var (
	// ErrBadCell is returned by Validate when a cell's ports, split
	// annotations and evaluation function disagree with each other.
	ErrBadCell = errors.New("cells: inconsistent cell definition")

	// ErrUnknownKind is returned when a library has no cell for a
	// node kind it is asked to map.
	ErrUnknownKind = errors.New("cells: no cell for node kind")
)

// Port describes one named bundle of wires on a cell boundary.
//
// Input ports are either External, in which case the linearizer binds
// them to the circuit's primary inputs at the node's bit position, or
// internal, in which case their bits are drawn from the outputs of the
// node's children. For internal ports Split lists how many bits each
// child contributes, in child order from the low-order child up; the
// contributed bits are taken from the child's output port of the verso
// name (gin draws from gout, pin from pout).
type Port struct {
	Name     string
	Bits     int
	External bool
	Split    []int
}

// Verso returns the output port name an input port draws from.
func Verso(in string) string {
	return strings.TrimSuffix(in, "in") + "out"
}

// Cell binds a node kind to a gate template. Eval computes the cell's
// boolean function over the concatenation of its input ports' bits, in
// port order, and returns the output ports' bits in port order; the
// netlist simulator drives it. Verilog and VHDL hold structural bodies
// over the primitive set the hdl package predefines. Delay is the
// cell's parasitic delay in logical effort units and weighs the
// critical path estimate.
type Cell struct {
	Name    string
	Kind    prefix.Kind
	Ins     []Port
	Outs    []Port
	Verilog string
	VHDL    string
	Eval    func(ins []bool) []bool
	Delay   float64
}

// InBits returns the total width of the cell's input ports, which is
// the length of the slice Eval expects.
func (c Cell) InBits() int {
	n := 0
	for _, p := range c.Ins {
		n += p.Bits
	}
	return n
}

// OutBits returns the total width of the cell's output ports.
func (c Cell) OutBits() int {
	n := 0
	for _, p := range c.Outs {
		n += p.Bits
	}
	return n
}

// OutOffset returns the flat offset of the named output port within
// the cell's output vector.
func (c Cell) OutOffset(name string) (int, bool) {
	off := 0
	for _, p := range c.Outs {
		if p.Name == name {
			return off, true
		}
		off += p.Bits
	}
	return 0, false
}

func (c Cell) validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty name", ErrBadCell)
	}
	if c.Eval == nil {
		return fmt.Errorf("%w: %s has no eval function", ErrBadCell, c.Name)
	}
	if len(c.Outs) == 0 {
		return fmt.Errorf("%w: %s has no outputs", ErrBadCell, c.Name)
	}
	seen := make(map[string]struct{})
	arity := -1
	for _, p := range c.Ins {
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: %s duplicates port %s", ErrBadCell, c.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Bits <= 0 {
			return fmt.Errorf("%w: %s port %s has width %d", ErrBadCell, c.Name, p.Name, p.Bits)
		}
		if p.External {
			if len(p.Split) != 0 {
				return fmt.Errorf("%w: %s external port %s carries a split", ErrBadCell, c.Name, p.Name)
			}
			continue
		}
		sum := 0
		for _, s := range p.Split {
			if s < 0 {
				return fmt.Errorf("%w: %s port %s has negative split", ErrBadCell, c.Name, p.Name)
			}
			sum += s
		}
		if sum != p.Bits {
			return fmt.Errorf("%w: %s port %s split sums to %d, width is %d", ErrBadCell, c.Name, p.Name, sum, p.Bits)
		}
		if arity == -1 {
			arity = len(p.Split)
		} else if len(p.Split) != arity {
			return fmt.Errorf("%w: %s ports disagree on child count", ErrBadCell, c.Name)
		}
	}
	for _, p := range c.Outs {
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: %s duplicates port %s", ErrBadCell, c.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Bits <= 0 {
			return fmt.Errorf("%w: %s port %s has width %d", ErrBadCell, c.Name, p.Name, p.Bits)
		}
	}
	return nil
}

// Library maps every node kind an operation's forests can emit to its
// cell. Libraries are immutable once built; the stock ones come from
// Adder and Or.
type Library struct {
	name  string
	cells map[prefix.Kind]Cell
}

// NewLibrary builds a library from a cell list and validates it.
func NewLibrary(name string, cc []Cell) (*Library, error) {
	l := &Library{name: name, cells: make(map[prefix.Kind]Cell, len(cc))}
	for _, c := range cc {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if prev, dup := l.cells[c.Kind]; dup {
			return nil, fmt.Errorf("%w: %s and %s both map kind %s", ErrBadCell, prev.Name, c.Name, c.Kind)
		}
		l.cells[c.Kind] = c
	}
	return l, nil
}

func mustLibrary(name string, cc []Cell) *Library {
	l, err := NewLibrary(name, cc)
	if err != nil {
		panic(err)
	}
	return l
}

var allKinds = []prefix.Kind{
	prefix.Pre, prefix.PreCin, prefix.Cocycle, prefix.Cocycle3, prefix.Grey,
	prefix.Post, prefix.PostSmall, prefix.Buffer, prefix.BufferGrey,
}

// children per combining kind, matching the node shapes the prefix
// package produces
var kindArity = map[prefix.Kind]int{
	prefix.Cocycle:    2,
	prefix.Cocycle3:   3,
	prefix.Grey:       2,
	prefix.Post:       2,
	prefix.PostSmall:  1,
	prefix.Buffer:     1,
	prefix.BufferGrey: 1,
}

// Validate checks the library as a whole: every node kind a forest can
// emit has a cell, leaf cells bind external inputs only, internal
// input ports can draw their verso output from some cell of the
// library, and split annotations agree with each kind's child count.
// The netlist builder runs this before placing anything.
func (l *Library) Validate() error {
	for _, k := range allKinds {
		if _, ok := l.cells[k]; !ok {
			return fmt.Errorf("%w: %s in library %s", ErrUnknownKind, k, l.name)
		}
	}
	produced := make(map[string]struct{})
	for _, c := range l.cells {
		for _, p := range c.Outs {
			produced[p.Name] = struct{}{}
		}
	}
	for _, k := range allKinds {
		c := l.cells[k]
		for _, p := range c.Ins {
			if k.IsLeaf() {
				if !p.External {
					return fmt.Errorf("%w: leaf cell %s draws internal port %s", ErrBadCell, c.Name, p.Name)
				}
				continue
			}
			if p.External {
				return fmt.Errorf("%w: %s binds %s to a primary input above the leaf row", ErrBadCell, c.Name, p.Name)
			}
			if _, ok := produced[Verso(p.Name)]; !ok {
				return fmt.Errorf("%w: nothing in library %s outputs %s for %s.%s", ErrBadCell, l.name, Verso(p.Name), c.Name, p.Name)
			}
			if len(p.Split) != kindArity[k] {
				return fmt.Errorf("%w: %s port %s splits over %d children, kind %s has %d", ErrBadCell, c.Name, p.Name, len(p.Split), k, kindArity[k])
			}
		}
	}
	return nil
}

// Name returns the library's name, used in HDL module prefixes.
func (l *Library) Name() string { return l.name }

// Cell returns the cell mapped to a node kind.
func (l *Library) Cell(k prefix.Kind) (Cell, error) {
	c, ok := l.cells[k]
	if !ok {
		return Cell{}, fmt.Errorf("%w: %s in library %s", ErrUnknownKind, k, l.name)
	}
	return c, nil
}

// Kinds returns the node kinds the library covers, in kind order.
func (l *Library) Kinds() []prefix.Kind {
	kk := make([]prefix.Kind, 0, len(l.cells))
	for k := range l.cells {
		kk = append(kk, k)
	}
	sort.Slice(kk, func(i, j int) bool { return kk[i] < kk[j] })
	return kk
}

// Cells returns the library's cells keyed by kind. The map is a copy.
func (l *Library) Cells() map[prefix.Kind]Cell {
	out := make(map[prefix.Kind]Cell, len(l.cells))
	for k, c := range l.cells {
		out[k] = c
	}
	return out
}
