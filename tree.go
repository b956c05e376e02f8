// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/octforest/octforest/internal/octerr"
)

// Tree holds one coarse-topology root's local leaves, kept sorted in
// Morton order (Compare), plus the bookkeeping p8est_tree_t carries:
// first/last descendant bounds and a per-level leaf count. Grounded on
// original_source/src/p8est.h's p8est_tree_t and spec.md §3.
type Tree struct {
	Leaves   []Octant
	payloads [][]byte

	FirstDesc Octant
	LastDesc  Octant

	QuadrantsPerLevel [MaxLevel + 1]int
}

// newTree builds an empty tree rooted at the given coarse-topology
// root cell (level 0, the whole [0, RootLen)^3 cube).
func newTree() *Tree {
	root := Octant{Level: 0}
	return &Tree{
		FirstDesc: root.FirstDescendant(),
		LastDesc:  root.LastDescendant(),
	}
}

// Len reports the number of local leaves.
func (t *Tree) Len() int { return len(t.Leaves) }

// IsSorted reports whether the tree's leaves are in strict ascending
// Morton order with no duplicates or nesting — invariant I1 of
// spec.md §8.
func (t *Tree) IsSorted() bool {
	for i := 1; i < len(t.Leaves); i++ {
		if Compare(t.Leaves[i-1], t.Leaves[i]) >= 0 || t.Leaves[i-1].IsAncestor(t.Leaves[i]) {
			return false
		}
	}
	return true
}

// IsComplete reports whether the tree's leaves tile its root cell
// exactly once each — no gaps, no overlaps — invariant I2 of spec.md
// §8. It walks the sorted leaf sequence and checks that each leaf's
// span of finest-level cells picks up exactly where the previous one
// left off, starting at the root's first corner and ending at its
// last.
func (t *Tree) IsComplete() bool {
	if len(t.Leaves) == 0 {
		return false
	}
	first := Octant{Level: 0}.FirstDescendant()
	last := Octant{Level: 0}.LastDescendant()

	if t.Leaves[0].FirstDescendant() != first {
		return false
	}
	for i := 1; i < len(t.Leaves); i++ {
		if nextCell(t.Leaves[i-1].LastDescendant()) != t.Leaves[i].FirstDescendant() {
			return false
		}
	}
	return t.Leaves[len(t.Leaves)-1].LastDescendant() == last
}

// nextCell returns the QMaxLevel cell immediately following last in
// Morton order, used by IsComplete to detect gaps.
func nextCell(last Octant) Octant {
	// QMaxLevel cells have coordinate bit 0 clear, so one cell step is
	// one step of the bit-1 triple of the node-level code: 1<<3.
	code := mortonCode(last) + 1<<3
	return octantFromMortonCode(code, QMaxLevel)
}

// octantFromMortonCode is the inverse of mortonCode at a fixed level:
// it de-interleaves the low 3*(MaxLevel+1) bits back into x/y/z.
func octantFromMortonCode(code uint64, level uint8) Octant {
	var x, y, z int32
	for bit := 0; bit <= MaxLevel; bit++ {
		x |= int32((code>>uint(3*bit))&1) << uint(bit)
		y |= int32((code>>uint(3*bit+1))&1) << uint(bit)
		z |= int32((code>>uint(3*bit+2))&1) << uint(bit)
	}
	return Octant{X: x, Y: y, Z: z, Level: level}
}

// insert adds a leaf (already known not to duplicate or nest with an
// existing leaf) at its sorted position and records its payload slab.
func (t *Tree) insert(o Octant, payload []byte) {
	i := sort.Search(len(t.Leaves), func(i int) bool { return Compare(t.Leaves[i], o) >= 0 })
	t.Leaves = append(t.Leaves, Octant{})
	copy(t.Leaves[i+1:], t.Leaves[i:])
	t.Leaves[i] = o

	t.payloads = append(t.payloads, nil)
	copy(t.payloads[i+1:], t.payloads[i:])
	t.payloads[i] = payload

	t.QuadrantsPerLevel[o.Level]++
}

// removeAt deletes the leaf at sorted index i, returning its payload.
func (t *Tree) removeAt(i int) []byte {
	p := t.payloads[i]
	t.QuadrantsPerLevel[t.Leaves[i].Level]--
	t.Leaves = append(t.Leaves[:i], t.Leaves[i+1:]...)
	t.payloads = append(t.payloads[:i], t.payloads[i+1:]...)
	return p
}

// Payload returns the payload slab of the leaf at sorted index i.
func (t *Tree) Payload(i int) []byte { return t.payloads[i] }

// Find returns the sorted index of o, or -1 if o is not a local leaf.
func (t *Tree) Find(o Octant) int {
	i := sort.Search(len(t.Leaves), func(i int) bool { return Compare(t.Leaves[i], o) >= 0 })
	if i < len(t.Leaves) && t.Leaves[i] == o {
		return i
	}
	return -1
}

// FindAncestorOrSelf returns the sorted index of the local leaf that
// covers position p — either p itself or its coarsest local ancestor —
// or -1 if no local leaf covers it. Used by the iterator engine and by
// Balance to resolve a neighbor position against the actual mesh.
func (t *Tree) FindAncestorOrSelf(p Octant) int {
	i := sort.Search(len(t.Leaves), func(i int) bool { return Compare(t.Leaves[i], p) > 0 }) - 1
	if i < 0 {
		return -1
	}
	leaf := t.Leaves[i]
	if leaf == p || leaf.IsAncestor(p) {
		return i
	}
	return -1
}

// dirtySet returns a fresh bitset sized to the tree's current leaf
// count, one bit per leaf, for "visited this pass" marking. Balance
// does not call it; nothing in this package does. Grounded on the
// teacher's use of
// github.com/bits-and-blooms/bitset for compact presence tracking in
// node.go's prefixCBTree/childTree.
func (t *Tree) dirtySet() *bitset.BitSet {
	return bitset.New(uint(len(t.Leaves)))
}

// checkInvariants panics (via octerr.Invariant) if the tree's leaves
// are not sorted (IsSorted). It does not check that the leaves tile the
// root, and no mutating operation calls it.
func (t *Tree) checkInvariants() {
	octerr.Invariant(t.IsSorted(), "octforest: tree leaves not sorted")
}
