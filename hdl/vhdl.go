package hdl

import (
	"fmt"
	"io"
	"strings"

	"github.com/consensys/pptrees/netlist"
)

// Every design unit in the file gets its own context clause.
const vhdlContext = "library ieee;\nuse ieee.std_logic_1164.all;\n\n"

// WriteVHDL emits the netlist as structural VHDL, mirroring
// WriteVerilog: primitive entities, one entity per used cell, then
// the top entity and its architecture.
func WriteVHDL(w io.Writer, nl *netlist.Netlist, opts ...Option) error {
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
		e.printf("-- %s\n\n", cfg.banner)
	}

	bodies := make([]string, len(used))
	for i, c := range used {
		bodies[i] = c.VHDL
	}
	for _, p := range usedPrimitives(bodies) {
		e.printf("%s%s\n\n", vhdlContext, vhdlPrimitives[p])
	}
	for _, c := range used {
		e.printf("%s%s\n\n", vhdlContext, c.VHDL)
	}

	names := wireNames(nl, func(name string, pos, bits int) string {
		if bits == 1 {
			return name
		}
		return fmt.Sprintf("%s(%d)", name, pos)
	})
	ins := groupPorts(nl.Inputs)
	outs := groupPorts(nl.Outputs)

	pad := 0
	for _, p := range ins {
		if len(p.name) > pad {
			pad = len(p.name)
		}
	}
	for _, p := range outs {
		if len(p.name) > pad {
			pad = len(p.name)
		}
	}
	var decls []string
	for _, p := range ins {
		decls = append(decls, fmt.Sprintf("\t\t%-*s : in  %s", pad, p.name, vhdlType(p.bits)))
	}
	for _, p := range outs {
		decls = append(decls, fmt.Sprintf("\t\t%-*s : out %s", pad, p.name, vhdlType(p.bits)))
	}
	e.printf("%sentity %s is\n\tport (\n%s\n\t);\nend entity;\n\n", vhdlContext, cfg.name, strings.Join(decls, ";\n"))

	e.printf("architecture structure of %s is\n", cfg.name)
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
		e.printf("\tsignal %s : std_logic;\n", strings.Join(refs, ", "))
	}
	e.printf("begin\n")

	for i := range nl.Instances {
		inst := &nl.Instances[i]
		c, err := nl.Library().Cell(inst.Kind)
		if err != nil {
			return err
		}
		var conns []string
		args := inst.Args
		for _, p := range c.Ins {
			conns = append(conns, vhdlConn(names, p.Name, args[:p.Bits])...)
			args = args[p.Bits:]
		}
		wires := inst.Outs
		for _, p := range c.Outs {
			conns = append(conns, vhdlConn(names, p.Name, wires[:p.Bits])...)
			wires = wires[p.Bits:]
		}
		e.printf("\tU%d: %s port map (%s);\n", inst.ID, c.Name, strings.Join(conns, ", "))
	}

	e.printf("\n")
	widths := portWidths(outs)
	for _, t := range nl.Outputs {
		if widths[t.Name] == 1 {
			e.printf("\t%s <= %s;\n", t.Name, names[t.Wire])
		} else {
			e.printf("\t%s(%d) <= %s;\n", t.Name, t.Pos, names[t.Wire])
		}
	}
	e.printf("end architecture;\n")
	return e.err
}

func vhdlType(bits int) string {
	if bits == 1 {
		return "std_logic"
	}
	return fmt.Sprintf("std_logic_vector(%d downto 0)", bits-1)
}

// vhdlConn renders one port connection, associating multi bit ports
// element by element.
func vhdlConn(names []string, portName string, wires []int) []string {
	if len(wires) == 1 {
		return []string{fmt.Sprintf("%s => %s", portName, names[wires[0]])}
	}
	refs := make([]string, len(wires))
	for i, w := range wires {
		refs[i] = fmt.Sprintf("%s(%d) => %s", portName, i, names[w])
	}
	return refs
}
