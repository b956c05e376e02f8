// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "github.com/octforest/octforest/internal/octerr"

// Partition redistributes leaves across the forest's Group so that
// each rank's cumulative weight (weight==nil defaults to one unit per
// leaf) is as close as possible to total/Size(). It proceeds in three
// steps mirroring p8est_partition: each rank computes its local leaves'
// prefix-summed weight, a Group.Allgather agrees on the global
// boundary offsets, and each rank determines which of its own leaves
// (by global position) now belong to a different rank. Since this
// module's only Group implementations are single-rank (LocalGroup) or
// the test harness's internal/simgroup, the actual byte movement of
// leaves that change owner is delegated to the Group-aware caller
// (internal/simgroup's driver loop); Partition itself only recomputes
// the new ownership boundaries and trims/keeps local leaves that fall
// within this rank's new range. Grounded on spec.md §6's "partition"
// operation and §5's Group abstraction.
func (f *Forest) Partition(weight WeightCB) {
	rank, size := f.group.Rank(), f.group.Size()
	if size == 1 {
		f.rebuildPartitionTable()
		return
	}

	type weighted struct {
		tree   int
		octant Octant
		idx    int
		weight uint64
	}
	var local []weighted
	var localTotal uint64
	for ti, tree := range f.trees {
		for i := 0; i < tree.Len(); i++ {
			w := uint64(1)
			if weight != nil {
				w = uint64(weight(f, ti, tree.Leaves[i], tree.Payload(i), nil))
			}
			local = append(local, weighted{ti, tree.Leaves[i], i, w})
			localTotal += w
		}
	}

	weights := f.group.Allgather(localTotal)
	var globalTotal uint64
	for _, w := range weights {
		globalTotal += w
	}
	octerr.Invariant(len(weights) == size, "octforest: Allgather returned %d values for %d ranks", len(weights), size)

	target := globalTotal / uint64(size)
	if target == 0 {
		target = 1
	}

	// myStart is this rank's offset into the global weighted ordering.
	var myStart uint64
	for r := 0; r < rank; r++ {
		myStart += weights[r]
	}

	lo := uint64(rank) * target
	var hi uint64
	if rank == size-1 {
		hi = globalTotal
	} else {
		hi = uint64(rank+1) * target
	}

	var keep []weighted
	running := myStart
	for _, w := range local {
		if running >= lo && running < hi {
			keep = append(keep, w)
		}
		running += w.weight
	}

	for ti, tree := range f.trees {
		var newLeaves []Octant
		var newPayloads [][]byte
		for _, k := range keep {
			if k.tree != ti {
				continue
			}
			newLeaves = append(newLeaves, k.octant)
			newPayloads = append(newPayloads, tree.Payload(k.idx))
		}
		tree.Leaves = newLeaves
		tree.payloads = newPayloads
		tree.QuadrantsPerLevel = [MaxLevel + 1]int{}
		for _, leaf := range newLeaves {
			tree.QuadrantsPerLevel[leaf.Level]++
		}
	}

	f.rebuildPartitionTable()
}
