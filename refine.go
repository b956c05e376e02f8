// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

// Refine replaces every local leaf for which predicate returns true
// with its eight children, re-running initCB on each new child's
// payload. When recursive is true, freshly created children are
// themselves offered to predicate (down to QMaxLevel); when false,
// only the original leaves are tested, one split each. Grounded on
// spec.md §6 and p8est_refine's recursive-vs-single-pass distinction.
func (f *Forest) Refine(recursive bool, predicate RefineCB, initCB InitCB) {
	f.refine(recursive, predicate, initCB, nil, QMaxLevel)
}

// RefineLevel behaves like Refine but additionally refuses to split
// any octant already at maxLevel, even if predicate would approve it —
// used to cap local refinement depth independently of QMaxLevel.
// Grounded on spec.md §6 ("refine_level" operation).
func (f *Forest) RefineLevel(recursive bool, predicate RefineCB, initCB InitCB, maxLevel int) {
	f.refine(recursive, predicate, initCB, nil, maxLevel)
}

func (f *Forest) refine(recursive bool, predicate RefineCB, initCB InitCB, userData any, maxLevel int) {
	for ti, tree := range f.trees {
		i := 0
		for i < tree.Len() {
			leaf := tree.Leaves[i]
			if int(leaf.Level) >= maxLevel || !predicate(f, ti, leaf, tree.Payload(i), userData) {
				i++
				continue
			}

			oldPayload := tree.removeAt(i)
			f.pool.Put(oldPayload)

			children := leaf.Children()
			for _, c := range children {
				p := f.pool.Get()
				if initCB != nil {
					initCB(f, ti, c, p, userData)
				}
				tree.insert(c, p)
			}

			if !recursive {
				i += 8
			}
			// when recursive, leave i where it is so the newly
			// inserted children (which sort at or after i) are
			// re-examined by the same loop.
		}
	}
	f.rebuildPartitionTable()
}
