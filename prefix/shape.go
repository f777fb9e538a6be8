package prefix

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/icza/bitio"
)

// MarshalShape serializes the tree's structure as its width followed
// by a pre-order bit walk, one bit per vertex, with combines written
// as 1 and leaves as 0. Buffers are transparent and fused combines
// cannot be encoded. The encoding is canonical, so two trees of equal
// structure marshal to identical bytes.
func (t *Tree) MarshalShape() ([]byte, error) {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte
	buf.Write(tmp[:binary.PutUvarint(tmp[:], uint64(t.width))])

	w := bitio.NewWriter(&buf)
	if err := writeShapeBits(w, t.root); err != nil {
		return nil, fmt.Errorf("prefix: encode shape: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("prefix: encode shape: %w", err)
	}
	return buf.Bytes(), nil
}

func writeShapeBits(w *bitio.Writer, n *Node) error {
	n = skipBuffers(n)
	if n.Kind == Cocycle3 {
		return ErrFinalized
	}
	if n.IsLeaf() {
		return w.WriteBool(false)
	}
	if err := w.WriteBool(true); err != nil {
		return err
	}
	if err := writeShapeBits(w, n.Left); err != nil {
		return err
	}
	return writeShapeBits(w, n.Right)
}

// UnmarshalShape rebuilds a tree from MarshalShape bytes.
func UnmarshalShape(data []byte) (*Tree, error) {
	rd := bytes.NewReader(data)
	uw, err := binary.ReadUvarint(rd)
	if err != nil {
		return nil, fmt.Errorf("prefix: decode shape: %w", err)
	}
	if uw == 0 {
		return nil, fmt.Errorf("prefix: decode shape: %w", ErrInvalidWidth)
	}
	width := int(uw)

	r := bitio.NewReader(rd)
	next := 0
	root, err := readShapeBits(r, allocFactory{}, &next)
	if err != nil {
		return nil, fmt.Errorf("prefix: decode shape: %w", err)
	}
	if next != width {
		return nil, inconsistency("decode shape: %d leaves for width %d", next, width)
	}
	t := &Tree{width: width, root: root}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func readShapeBits(r *bitio.Reader, f nodeFactory, next *int) (*Node, error) {
	combine, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !combine {
		n := f.leaf(*next)
		*next++
		return n, nil
	}
	left, err := readShapeBits(r, f, next)
	if err != nil {
		return nil, err
	}
	right, err := readShapeBits(r, f, next)
	if err != nil {
		return nil, err
	}
	return f.combine(left, right), nil
}
