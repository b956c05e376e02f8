// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

// Coarsen scans each tree's sorted leaves for maximal runs of eight
// consecutive siblings forming a complete family (IsFamily) and, for
// each run where family returns true, replaces the eight leaves with
// their common parent, re-running initCB on the parent's payload. When
// recursive is true, a newly created parent is itself offered for
// further coarsening against its own siblings in a subsequent pass;
// when false, only one level of merging happens per call. Grounded on
// spec.md §6 and p8est_coarsen's family-at-a-time scan.
func (f *Forest) Coarsen(recursive bool, family CoarsenCB, initCB InitCB) {
	for {
		anyMerged := false
		for ti, tree := range f.trees {
			i := 0
			for i+8 <= tree.Len() {
				var fam [8]Octant
				var pays [8][]byte
				ok := true
				for k := 0; k < 8; k++ {
					fam[k] = tree.Leaves[i+k]
					pays[k] = tree.Payload(i + k)
				}
				if fam[0].Level == 0 || !IsFamily(fam) {
					ok = false
				}
				if ok && family != nil && !family(f, ti, fam, pays[:], nil) {
					ok = false
				}
				if !ok {
					i++
					continue
				}

				parent := fam[0].Parent()
				for k := 0; k < 8; k++ {
					f.pool.Put(tree.removeAt(i))
				}
				p := f.pool.Get()
				if initCB != nil {
					initCB(f, ti, parent, p, nil)
				}
				tree.insert(parent, p)
				anyMerged = true
				// when recursive, don't advance i: the parent may now
				// complete a new family with the leaves that follow it.
				// Otherwise skip it so it is not merged again this call.
				if !recursive {
					i++
				}
			}
		}
		if !recursive || !anyMerged {
			break
		}
	}
	f.rebuildPartitionTable()
}
