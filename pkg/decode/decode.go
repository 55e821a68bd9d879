// Package decode implements the instruction decoder: a prefix tree
// that resolves a 32-bit instruction word to a cpu.Executer by
// masking successive bit-fields, and the RV32IM + Zicsr + M-mode
// table that populates it.
//
// This generalizes a flat opcode switch one level further, into a
// tree, since the RV32 encoding needs funct3/funct7 disambiguation
// that a single-level opcode dispatch can't express.
package decode

import (
	"errors"

	"github.com/rv32mcu/rv32mcu/pkg/cpu"
)

// Construction-time errors. These surface only while building the
// tree; a populated tree never returns them.
var (
	ErrAmbiguousMask          = errors.New("decode: mask conflicts with an existing node")
	ErrAmbiguousNextStep      = errors.New("decode: value already names a node or a leaf")
	ErrNoDecodingMaskSpecified = errors.New("decode: mask/value list must be non-empty")
)

// ErrMissingNextStep is a runtime dispatch failure: no entry in the
// tree matches this instruction word. The platform maps this to
// IllegalInstruction.
var ErrMissingNextStep = errors.New("decode: no matching entry for instruction")

// MaskValue is one (mask, value) pair consumed from the root down
// while inserting or walking the tree.
type MaskValue struct {
	Mask  uint32
	Value uint32
}

// node is one level of the tree: a fixed mask and the children
// reached by masking an instruction word with it.
type node struct {
	mask     uint32
	hasMask  bool
	children map[uint32]*entry
}

// entry is a tagged union: exactly one of next/executer is set.
type entry struct {
	next     *node
	executer cpu.Executer
}

// Tree is a prefix-tree instruction decoder.
type Tree struct {
	root *node
}

// New returns an empty decoder tree.
func New() *Tree {
	return &Tree{root: &node{children: make(map[uint32]*entry)}}
}

// Insert grafts path onto the tree, with exec as the leaf reached at
// the end of path. Insertion is atomic: on any error the tree is
// left exactly as it was.
func (t *Tree) Insert(path []MaskValue, exec cpu.Executer) error {
	if len(path) == 0 {
		return ErrNoDecodingMaskSpecified
	}
	if err := t.checkInsert(t.root, path, exec); err != nil {
		return err
	}
	t.doInsert(t.root, path, exec)
	return nil
}

// checkInsert walks path against the existing tree without mutating
// it, verifying every step is legal.
func (t *Tree) checkInsert(n *node, path []MaskValue, exec cpu.Executer) error {
	mv := path[0]
	if n.hasMask && n.mask != mv.Mask {
		return ErrAmbiguousMask
	}
	e, ok := n.children[mv.Value]
	if !ok {
		return nil // fresh branch: always legal from here down
	}
	if len(path) == 1 {
		// Must land on nothing pre-existing at all: a value can point
		// to a node or a leaf, never both, and re-inserting the same
		// leaf is still a conflict (ambiguous next step).
		return ErrAmbiguousNextStep
	}
	if e.executer != nil {
		return ErrAmbiguousNextStep
	}
	return t.checkInsert(e.next, path[1:], exec)
}

func (t *Tree) doInsert(n *node, path []MaskValue, exec cpu.Executer) {
	mv := path[0]
	n.mask = mv.Mask
	n.hasMask = true
	if len(path) == 1 {
		n.children[mv.Value] = &entry{executer: exec}
		return
	}
	e, ok := n.children[mv.Value]
	if !ok {
		e = &entry{next: &node{children: make(map[uint32]*entry)}}
		n.children[mv.Value] = e
	}
	t.doInsert(e.next, path[1:], exec)
}

// Dispatch walks the tree against instr and returns the executer at
// the leaf reached. ErrMissingNextStep if no path matches.
func (t *Tree) Dispatch(instr uint32) (cpu.Executer, error) {
	n := t.root
	for {
		if !n.hasMask {
			return nil, ErrMissingNextStep
		}
		e, ok := n.children[instr&n.mask]
		if !ok {
			return nil, ErrMissingNextStep
		}
		if e.executer != nil {
			return e.executer, nil
		}
		n = e.next
	}
}
