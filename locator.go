// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

// locate resolves position pos within tree ti to the leaf that
// actually covers it in the mesh: a local leaf (isLocal true, idx its
// sorted index), a ghost leaf mirroring exactly pos (isLocal false,
// only possible when ghost is non-nil), or neither (position not present
// on any rank the caller knows about, e.g. a physical boundary or an
// unresolved cross-tree edge/corner). Used by the iterator engine to
// turn a purely geometric neighbor position into an actual
// participant. Grounded on spec.md §4.5's iterator engine needing to
// distinguish a same-size, coarser, or absent neighbor.
func (f *Forest) locate(ti int, pos Octant, ghost *GhostLayer) (idx int, isLocal bool, found bool) {
	if ti < 0 || ti >= len(f.trees) {
		return 0, false, false
	}
	tree := f.trees[ti]
	if i := tree.FindAncestorOrSelf(pos); i >= 0 {
		return i, true, true
	}
	if ghost != nil {
		if _, ok := ghost.Find(ti, pos); ok {
			return 0, false, true
		}
	}
	return 0, false, false
}
