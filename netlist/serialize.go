package netlist

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/blang/semver/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/consensys/pptrees"
	"github.com/consensys/pptrees/cells"
	"github.com/consensys/pptrees/internal/ioutils"
	"github.com/consensys/pptrees/logger"
	"github.com/consensys/pptrees/prefix"
)

// header carries everything needed to rebuild a netlist except the
// instances themselves, which follow as integer-compressed sections.
type header struct {
	Version string
	Name    string
	Library string
	Width   int
	CarryIn bool
	NbWires int
	NbInst  int
	Inputs  []Terminal
	Outputs []Terminal
}

// WriteTo serializes the netlist: a length-prefixed CBOR header, then
// six compressed []uint32 sections (kinds, span bounds, levels, then
// the flat arg and out wires). Kinds and spans repeat heavily and the
// wire lists are near-sequential, so both compress well.
func (nl *Netlist) WriteTo(w io.Writer) (int64, error) {
	_w := ioutils.WriterCounter{W: w}

	h := header{
		Version: pptrees.Version.String(),
		Name:    nl.Name,
		Library: nl.lib.Name(),
		Width:   nl.Width,
		CarryIn: nl.CarryIn,
		NbWires: nl.NbWires,
		NbInst:  len(nl.Instances),
		Inputs:  nl.Inputs,
		Outputs: nl.Outputs,
	}
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return _w.N, err
	}
	hdr, err := enc.Marshal(&h)
	if err != nil {
		return _w.N, err
	}
	if err := binary.Write(&_w, binary.LittleEndian, uint64(len(hdr))); err != nil {
		return _w.N, err
	}
	if _, err := _w.Write(hdr); err != nil {
		return _w.N, err
	}

	var buf32 []uint32
	for _, s := range nl.toUints32() {
		if buf32, err = ioutils.CompressAndWriteUints32(&_w, s, buf32); err != nil {
			return _w.N, err
		}
	}
	return _w.N, nil
}

// ReadFrom deserializes a netlist written by WriteTo, restores its
// cell library from the stock set and verifies the result.
func (nl *Netlist) ReadFrom(r io.Reader) (int64, error) {
	_r := ioutils.ReaderCounter{R: r}

	var hdrLen uint64
	if err := binary.Read(&_r, binary.LittleEndian, &hdrLen); err != nil {
		return _r.N, err
	}
	hdr := make([]byte, hdrLen)
	if _, err := io.ReadFull(&_r, hdr); err != nil {
		return _r.N, err
	}
	dm, err := cbor.DecOptions{
		MaxArrayElements: 2147483647,
		MaxMapPairs:      2147483647,
	}.DecMode()
	if err != nil {
		return _r.N, err
	}
	var h header
	if err := dm.Unmarshal(hdr, &h); err != nil {
		return _r.N, err
	}
	if err := h.check(); err != nil {
		return _r.N, err
	}
	lib, err := cells.Stock(h.Library)
	if err != nil {
		return _r.N, err
	}

	sections := make([][]uint32, 6)
	for i := range sections {
		if _, sections[i], err = ioutils.ReadAndDecompressUints32(&_r); err != nil {
			return _r.N, err
		}
	}

	nl.Name = h.Name
	nl.Width = h.Width
	nl.CarryIn = h.CarryIn
	nl.NbWires = h.NbWires
	nl.Inputs = h.Inputs
	nl.Outputs = h.Outputs
	nl.lib = lib
	if err := nl.fromUints32(h.NbInst, sections); err != nil {
		return _r.N, err
	}
	if err := nl.check(); err != nil {
		return _r.N, err
	}
	return _r.N, nil
}

// check parses the version header and warns on a mismatch; the binary
// layout is stable within a major version.
func (h *header) check() error {
	objectVersion, err := semver.Parse(h.Version)
	if err != nil {
		return fmt.Errorf("when parsing netlist version: %w", err)
	}
	if pptrees.Version.Compare(objectVersion) != 0 {
		log := logger.Logger()
		log.Warn().Str("binary", pptrees.Version.String()).Str("object", objectVersion.String()).
			Msg("version mismatch with serialized netlist. there are no guarantees on compatibility")
	}
	if h.Width < 1 || h.NbWires < 0 || h.NbInst < 0 {
		return fmt.Errorf("%w: header out of range", ErrMalformed)
	}
	return nil
}

func (nl *Netlist) toUints32() [][]uint32 {
	n := len(nl.Instances)
	kinds := make([]uint32, n)
	spanLo := make([]uint32, n)
	spanHi := make([]uint32, n)
	levels := make([]uint32, n)
	var args, outs []uint32
	for i := range nl.Instances {
		inst := &nl.Instances[i]
		kinds[i] = uint32(inst.Kind)
		spanLo[i] = uint32(inst.Span.Lo)
		spanHi[i] = uint32(inst.Span.Hi)
		levels[i] = uint32(inst.Level)
		for _, a := range inst.Args {
			args = append(args, uint32(a))
		}
		for _, o := range inst.Outs {
			outs = append(outs, uint32(o))
		}
	}
	return [][]uint32{kinds, spanLo, spanHi, levels, args, outs}
}

// fromUints32 rebuilds the instances. Arg and out counts per instance
// are not serialized; the cell mapped to each kind fixes them.
func (nl *Netlist) fromUints32(nbInst int, sections [][]uint32) error {
	kinds, spanLo, spanHi, levels := sections[0], sections[1], sections[2], sections[3]
	args, outs := sections[4], sections[5]
	if len(kinds) != nbInst || len(spanLo) != nbInst || len(spanHi) != nbInst || len(levels) != nbInst {
		return fmt.Errorf("%w: truncated instance sections", ErrMalformed)
	}
	nl.Instances = make([]Instance, nbInst)
	var ai, oi int
	for i := 0; i < nbInst; i++ {
		kind := prefix.Kind(kinds[i])
		c, err := nl.lib.Cell(kind)
		if err != nil {
			return err
		}
		na, no := c.InBits(), c.OutBits()
		if ai+na > len(args) || oi+no > len(outs) {
			return fmt.Errorf("%w: truncated wire sections", ErrMalformed)
		}
		inst := Instance{
			ID:    i,
			Cell:  c.Name,
			Kind:  kind,
			Span:  prefix.BitRange{Lo: int(spanLo[i]), Hi: int(spanHi[i])},
			Args:  make([]int, na),
			Outs:  make([]int, no),
			Level: int(levels[i]),
		}
		for j := 0; j < na; j++ {
			inst.Args[j] = int(args[ai+j])
		}
		for j := 0; j < no; j++ {
			inst.Outs[j] = int(outs[oi+j])
		}
		ai += na
		oi += no
		nl.Instances[i] = inst
	}
	if ai != len(args) || oi != len(outs) {
		return fmt.Errorf("%w: trailing wire data", ErrMalformed)
	}
	return nil
}
