package hdl

import (
	"errors"
	"fmt"
	"io"

	"github.com/consensys/pptrees/cells"
	"github.com/consensys/pptrees/internal/algos"
	"github.com/consensys/pptrees/netlist"
)

// wiresPerLine caps how many nets share one declaration line.
const wiresPerLine = 8

// Option alters HDL emission.
type Option func(*config) error

type config struct {
	name   string
	banner string
}

// WithModuleName overrides the name of the top module, which defaults
// to the netlist name.
func WithModuleName(name string) Option {
	return func(cfg *config) error {
		if name == "" {
			return errors.New("empty module name")
		}
		cfg.name = name
		return nil
	}
}

// WithBanner prepends a one line comment to the output.
func WithBanner(text string) Option {
	return func(cfg *config) error {
		cfg.banner = text
		return nil
	}
}

func newConfig(nl *netlist.Netlist, opts []Option) (config, error) {
	cfg := config{name: nl.Name}
	for _, o := range opts {
		if err := o(&cfg); err != nil {
			return cfg, fmt.Errorf("apply option: %w", err)
		}
	}
	return cfg, nil
}

// emitter wraps an io.Writer with a sticky error so emission code can
// chain prints and check once at the end.
type emitter struct {
	w   io.Writer
	err error
}

func (e *emitter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// usedCells lists the distinct cells the netlist instantiates, in
// first appearance order.
func usedCells(nl *netlist.Netlist) ([]cells.Cell, error) {
	seen := make(map[string]struct{})
	var cc []cells.Cell
	for i := range nl.Instances {
		inst := &nl.Instances[i]
		if _, ok := seen[inst.Cell]; ok {
			continue
		}
		seen[inst.Cell] = struct{}{}
		c, err := nl.Library().Cell(inst.Kind)
		if err != nil {
			return nil, err
		}
		cc = append(cc, c)
	}
	return cc, nil
}

type port struct {
	name string
	bits int
}

// groupPorts folds terminals into named ports, keeping first
// appearance order. A port's width is its highest position plus one.
func groupPorts(tt []netlist.Terminal) []port {
	var pp []port
	idx := make(map[string]int)
	for _, t := range tt {
		i, ok := idx[t.Name]
		if !ok {
			i = len(pp)
			idx[t.Name] = i
			pp = append(pp, port{name: t.Name})
		}
		pp[i].bits = algos.Max(pp[i].bits, t.Pos+1)
	}
	return pp
}

func portWidths(pp []port) map[string]int {
	ww := make(map[string]int, len(pp))
	for _, p := range pp {
		ww[p.name] = p.bits
	}
	return ww
}

// wireNames maps every wire to its textual reference. Input wires
// resolve to their port bit through bitRef, everything else to a
// fresh w<id> net.
func wireNames(nl *netlist.Netlist, bitRef func(name string, pos, bits int) string) []string {
	names := algos.MapRange(0, nl.NbWires, func(w int) string {
		return fmt.Sprintf("w%d", w)
	})
	widths := portWidths(groupPorts(nl.Inputs))
	for _, t := range nl.Inputs {
		names[t.Wire] = bitRef(t.Name, t.Pos, widths[t.Name])
	}
	return names
}

// internalWires lists the wires needing a local declaration, in id
// order: every wire not bound to an input port.
func internalWires(nl *netlist.Netlist) []int {
	bound := make([]bool, nl.NbWires)
	for _, t := range nl.Inputs {
		bound[t.Wire] = true
	}
	var ww []int
	for w := 0; w < nl.NbWires; w++ {
		if !bound[w] {
			ww = append(ww, w)
		}
	}
	return ww
}
