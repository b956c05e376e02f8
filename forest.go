// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "github.com/octforest/octforest/internal/octerr"

// Group models the message-passing communicator a real deployment
// would back with MPI: a fixed set of ranks that can learn their size
// and position, synchronize at a barrier, and exchange small per-rank
// summaries (used by Partition to agree on a new leaf distribution and
// by every mutating driver to rebuild the partition table). No
// network transport is implemented in this module; Group is an
// abstract seam so the core can be exercised and tested single-process
// via LocalGroup. Grounded on spec.md §5's "appear to the core as
// atomic fences" framing.
type Group interface {
	Size() int
	Rank() int
	Barrier()
	// Allgather exchanges one uint64 per rank and returns the full
	// vector, index i holding the value contributed by rank i.
	Allgather(value uint64) []uint64
}

// LocalGroup is a single-rank Group, used for tests and for library
// consumers that do not need real distribution. Grounded on the
// teacher's pattern (bart has no transport, but its example tests run
// entirely single-process; LocalGroup extends that pattern to satisfy
// Group's contract trivially).
type LocalGroup struct{}

func (LocalGroup) Size() int    { return 1 }
func (LocalGroup) Rank() int    { return 0 }
func (LocalGroup) Barrier()     {}
func (LocalGroup) Allgather(v uint64) []uint64 { return []uint64{v} }

// Forest is a distributed collection of octrees sharing one
// Connectivity, partitioned across the ranks of a Group. Grounded on
// spec.md §3 and original_source/src/p8est.h's p8est_t.
type Forest struct {
	group Group
	conn  *Connectivity

	trees []*Tree

	payloadSize int
	pool        *payloadPool

	// globalFirstQuadrant[r] is the global index of the first local
	// quadrant owned by rank r, with globalFirstQuadrant[Size()] set
	// to the total quadrant count — the exclusive-prefix partition
	// table carried across Save/Load and consulted by Partition.
	globalFirstQuadrant []uint64

	firstLocalTree int
	lastLocalTree  int
}

// Connectivity returns the forest's (read-only) coarse topology.
func (f *Forest) Connectivity() *Connectivity { return f.conn }

// Group returns the forest's transport.
func (f *Forest) Group() Group { return f.group }

// NumLocalTrees reports how many of the connectivity's trees have at
// least one local leaf on this rank.
func (f *Forest) NumLocalTrees() int {
	if f.firstLocalTree > f.lastLocalTree {
		return 0
	}
	return f.lastLocalTree - f.firstLocalTree + 1
}

// Tree returns the local tree structure for connectivity tree index t.
func (f *Forest) Tree(t int) *Tree {
	octerr.Invariant(t >= 0 && t < len(f.trees), "octforest: tree %d out of range", t)
	return f.trees[t]
}

// LocalNumQuadrants reports the total number of local leaves across
// all local trees.
func (f *Forest) LocalNumQuadrants() int {
	n := 0
	for _, t := range f.trees {
		n += t.Len()
	}
	return n
}

// GlobalNumQuadrants reports the forest's total leaf count across all
// ranks, read from the partition table's last entry.
func (f *Forest) GlobalNumQuadrants() uint64 {
	return f.globalFirstQuadrant[len(f.globalFirstQuadrant)-1]
}

// New builds a forest over conn with one root octant per tree, all
// placed on rank 0 (every other rank starts with no leaves), and a
// payload slab of payloadSize bytes per leaf, initialized by initCB.
// minLeavesPerRank is accepted for signature parity with the external
// interface (§6) but has no effect before any refinement has happened:
// a freshly built forest has exactly NumTrees leaves in total.
// Grounded on spec.md §6 and p8est_new's single-root-per-tree start
// state.
func New(group Group, conn *Connectivity, minLeavesPerRank int, payloadSize int, initCB InitCB, userData any) *Forest {
	octerr.Invariant(group != nil, "octforest: New requires a non-nil Group")
	octerr.Invariant(conn != nil, "octforest: New requires a non-nil Connectivity")
	octerr.Invariant(payloadSize >= 0, "octforest: negative payloadSize")
	_ = minLeavesPerRank

	f := &Forest{
		group:       group,
		conn:        conn,
		trees:       make([]*Tree, conn.NumTrees),
		payloadSize: payloadSize,
		pool:        newPayloadPool(payloadSize),
	}

	rank, size := group.Rank(), group.Size()
	for t := 0; t < conn.NumTrees; t++ {
		tree := newTree()
		if rank == 0 || size == 1 {
			root := Octant{Level: 0}
			payload := f.pool.Get()
			if initCB != nil {
				initCB(f, t, root, payload, userData)
			}
			tree.insert(root, payload)
		}
		f.trees[t] = tree
	}

	if conn.NumTrees == 0 {
		f.firstLocalTree, f.lastLocalTree = 0, -1
	} else if rank == 0 || size == 1 {
		f.firstLocalTree, f.lastLocalTree = 0, conn.NumTrees-1
	} else {
		f.firstLocalTree, f.lastLocalTree = 0, -1
	}

	f.rebuildPartitionTable()
	return f
}

// rebuildPartitionTable recomputes globalFirstQuadrant from the
// group's current Allgather of each rank's local leaf count.
func (f *Forest) rebuildPartitionTable() {
	local := uint64(f.LocalNumQuadrants())
	counts := f.group.Allgather(local)
	table := make([]uint64, len(counts)+1)
	var running uint64
	for i, c := range counts {
		table[i] = running
		running += c
	}
	table[len(counts)] = running
	f.globalFirstQuadrant = table
}

// Destroy releases a forest's payload slabs back to its pool. After
// Destroy, f must not be used again. Go's garbage collector reclaims
// everything else; Destroy exists to mirror the external interface of
// spec.md §6 (a C API that must free explicitly) and to return payload
// slabs to the pool promptly rather than waiting on GC finalizers.
func (f *Forest) Destroy() {
	for _, tree := range f.trees {
		for i := 0; i < tree.Len(); i++ {
			f.pool.Put(tree.Payload(i))
		}
		tree.Leaves = nil
		tree.payloads = nil
	}
	f.trees = nil
}

// Copy returns a deep copy of f: same connectivity and group (shared,
// read-only collaborators), independent trees and, when copyData is
// true, independent payload slabs populated by copying the source
// bytes; when copyData is false the new forest's payloads are freshly
// zeroed slabs of the same size. Grounded on p8est_copy and the
// teacher's cloner.go Cloner[V] pattern (clone-or-zero policy chosen
// by a boolean flag).
func (f *Forest) Copy(copyData bool) *Forest {
	nf := &Forest{
		group:       f.group,
		conn:        f.conn,
		trees:       make([]*Tree, len(f.trees)),
		payloadSize: f.payloadSize,
		pool:        newPayloadPool(f.payloadSize),

		firstLocalTree: f.firstLocalTree,
		lastLocalTree:  f.lastLocalTree,
	}
	for ti, tree := range f.trees {
		nt := newTree()
		nt.FirstDesc, nt.LastDesc = tree.FirstDesc, tree.LastDesc
		nt.QuadrantsPerLevel = tree.QuadrantsPerLevel
		nt.Leaves = append([]Octant(nil), tree.Leaves...)
		nt.payloads = make([][]byte, tree.Len())
		for i := range nt.payloads {
			p := nf.pool.Get()
			if copyData && tree.Payload(i) != nil {
				copy(p, tree.Payload(i))
			}
			nt.payloads[i] = p
		}
		nf.trees[ti] = nt
	}
	nf.globalFirstQuadrant = append([]uint64(nil), f.globalFirstQuadrant...)
	return nf
}

// ResetData replaces every leaf's payload with a freshly sized slab,
// re-running initCB on each. Used when a forest's per-leaf data layout
// changes between solver passes. Grounded on p8est_reset_data.
func (f *Forest) ResetData(payloadSize int, initCB InitCB, userData any) {
	octerr.Invariant(payloadSize >= 0, "octforest: negative payloadSize")
	oldPool := f.pool
	f.payloadSize = payloadSize
	f.pool = newPayloadPool(payloadSize)

	for ti, tree := range f.trees {
		for i := 0; i < tree.Len(); i++ {
			oldPool.Put(tree.Payload(i))
			p := f.pool.Get()
			if initCB != nil {
				initCB(f, ti, tree.Leaves[i], p, userData)
			}
			tree.payloads[i] = p
		}
	}
}
