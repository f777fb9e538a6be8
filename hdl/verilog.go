package hdl

import (
	"fmt"
	"io"
	"strings"

	"github.com/consensys/pptrees/netlist"
)

// WriteVerilog emits the netlist as structural Verilog: behavioral
// definitions of the gate primitives, one module per used cell, then
// the top module instantiating every record over w<id> nets.
func WriteVerilog(w io.Writer, nl *netlist.Netlist, opts ...Option) error {
	cfg, err := newConfig(nl, opts)
	if err != nil {
		return err
	}
	used, err := usedCells(nl)
	if err != nil {
		return err
	}

	e := &emitter{w: w}
	if cfg.banner != "" {
		e.printf("// %s\n\n", cfg.banner)
	}

	bodies := make([]string, len(used))
	for i, c := range used {
		bodies[i] = c.Verilog
	}
	for _, p := range usedPrimitives(bodies) {
		e.printf("%s\n\n", verilogPrimitives[p])
	}
	for _, c := range used {
		e.printf("%s\n\n", c.Verilog)
	}

	names := wireNames(nl, func(name string, pos, bits int) string {
		if bits == 1 {
			return name
		}
		return fmt.Sprintf("%s[%d]", name, pos)
	})
	ins := groupPorts(nl.Inputs)
	outs := groupPorts(nl.Outputs)

	e.printf("module %s(", cfg.name)
	for i, p := range ins {
		if i > 0 {
			e.printf(", ")
		}
		e.printf("%s", p.name)
	}
	for _, p := range outs {
		e.printf(", %s", p.name)
	}
	e.printf(");\n")
	for _, p := range ins {
		e.printf("\tinput %s%s;\n", verilogRange(p.bits), p.name)
	}
	for _, p := range outs {
		e.printf("\toutput %s%s;\n", verilogRange(p.bits), p.name)
	}

	e.printf("\n")
	ww := internalWires(nl)
	for i := 0; i < len(ww); i += wiresPerLine {
		end := i + wiresPerLine
		if end > len(ww) {
			end = len(ww)
		}
		refs := make([]string, 0, end-i)
		for _, id := range ww[i:end] {
			refs = append(refs, names[id])
		}
		e.printf("\twire %s;\n", strings.Join(refs, ", "))
	}

	e.printf("\n")
	for i := range nl.Instances {
		inst := &nl.Instances[i]
		c, err := nl.Library().Cell(inst.Kind)
		if err != nil {
			return err
		}
		var conns []string
		args := inst.Args
		for _, p := range c.Ins {
			conns = append(conns, fmt.Sprintf(".%s(%s)", p.Name, verilogConn(names, args[:p.Bits])))
			args = args[p.Bits:]
		}
		wires := inst.Outs
		for _, p := range c.Outs {
			conns = append(conns, fmt.Sprintf(".%s(%s)", p.Name, verilogConn(names, wires[:p.Bits])))
			wires = wires[p.Bits:]
		}
		e.printf("\t%s U%d(%s);\n", c.Name, inst.ID, strings.Join(conns, ", "))
	}

	e.printf("\n")
	widths := portWidths(outs)
	for _, t := range nl.Outputs {
		if widths[t.Name] == 1 {
			e.printf("\tassign %s = %s;\n", t.Name, names[t.Wire])
		} else {
			e.printf("\tassign %s[%d] = %s;\n", t.Name, t.Pos, names[t.Wire])
		}
	}
	e.printf("endmodule\n")
	return e.err
}

func verilogRange(bits int) string {
	if bits == 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0] ", bits-1)
}

// verilogConn renders one port connection, concatenating multi bit
// ports high bit first.
func verilogConn(names []string, wires []int) string {
	if len(wires) == 1 {
		return names[wires[0]]
	}
	refs := make([]string, len(wires))
	for i, w := range wires {
		refs[len(wires)-1-i] = names[w]
	}
	return "{" + strings.Join(refs, ", ") + "}"
}
