// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "github.com/bits-and-blooms/bitset"

// VolumeInfo describes one leaf visited by the volume pass.
type VolumeInfo struct {
	Forest *Forest
	Tree   int
	Octant Octant
	Local  bool
}

// VolumeCB is called once per participating leaf during the volume
// pass, before any face/edge/corner callback fires.
type VolumeCB func(info VolumeInfo, userData any)

// QuadRef names one leaf's appearance on a face/edge/corner side: its
// octant, whether it is local to this rank, and which tree it belongs
// to.
type QuadRef struct {
	Tree   int
	Octant Octant
	Local  bool
}

// FaceSide is one tree's contribution to a face: either a single
// same-size (or coarser) leaf (Full set, Hanging nil) or the four
// finer leaves hanging off the other side (Hanging set, Full the
// zero value). Grounded on p8est_iter_face_side_t's full/hanging
// union.
type FaceSide struct {
	Full    *QuadRef
	Hanging []QuadRef
}

// FaceInfo describes one face shared by one or two leaves (two, unless
// the face is a physical boundary, which the face pass never visits).
type FaceInfo struct {
	Orientation int
	Sides       [2]FaceSide
}

// FaceCB is called once per interior (non-boundary) face after every
// volume callback has fired, per spec.md §4.5 rule 2.
type FaceCB func(info FaceInfo, userData any)

// EdgeSide is one leaf's contribution to an edge.
type EdgeSide struct {
	QuadRef
	Edge int
}

// EdgeInfo describes one edge by the two leaves diagonally across it:
// the leaf being scanned and the leaf covering its same-size edge
// neighbor. The two leaves that share only a face with each of these
// across the edge are not listed.
type EdgeInfo struct {
	Sides []EdgeSide
}

// EdgeCB is called once per interior edge after every face callback
// involving its participants has fired, per spec.md §4.5 rule 3.
type EdgeCB func(info EdgeInfo, userData any)

// CornerSide is one leaf's contribution to a corner.
type CornerSide struct {
	QuadRef
	Corner int
}

// CornerInfo describes one corner by the two leaves diagonally across
// it: the leaf being scanned and the leaf covering its same-size corner
// neighbor. The other six leaves meeting at the corner are not listed.
type CornerInfo struct {
	Sides []CornerSide
}

// CornerCB is called once per interior corner after every edge
// callback involving its participants has fired, per spec.md §4.5
// rule 4.
type CornerCB func(info CornerInfo, userData any)

// Iterate walks the forest's local leaves (and, where ghost is
// non-nil, the leaves it mirrors) and invokes volume, face, edge, and
// corner callbacks in four strict sequential passes: every volume
// callback fires, then every face callback, then every edge callback,
// then every corner callback. Any of the four callbacks may be nil to
// skip that pass entirely. Grounded on spec.md §4.5 and
// original_source/src/p8est_iterate.h's ordering rules 1-4; see
// DESIGN.md for why this implementation uses four sequential passes
// rather than the interleaved frame-stack recursion the original
// describes (a valid, more conservative refinement of the same
// ordering contract — rule 6 permits but does not require
// interleaving).
func (f *Forest) Iterate(ghost *GhostLayer, userData any, volume VolumeCB, face FaceCB, edge EdgeCB, corner CornerCB) {
	if volume != nil {
		f.iterateVolume(volume, userData)
	}
	if face != nil {
		f.iterateFace(ghost, face, userData)
	}
	if edge != nil {
		f.iterateEdge(ghost, edge, userData)
	}
	if corner != nil {
		f.iterateCorner(ghost, corner, userData)
	}
}

func (f *Forest) iterateVolume(cb VolumeCB, userData any) {
	for ti, tree := range f.trees {
		for _, leaf := range tree.Leaves {
			cb(VolumeInfo{Forest: f, Tree: ti, Octant: leaf, Local: true}, userData)
		}
	}
}

// relationSeen is per-tree scratch marking which (leaf index,
// relation index) pairs have already produced a callback, so each
// interior face/edge/corner is visited exactly once regardless of
// which of its participants the scan reaches first. Grounded on the
// teacher's use of github.com/bits-and-blooms/bitset for compact
// presence tracking (node.go's prefixCBTree/childTree), repurposed
// here from "which children exist" to "which relation already fired".
type relationSeen struct {
	perTree []*bitset.BitSet
	arity   uint
}

func newRelationSeen(f *Forest, arity uint) *relationSeen {
	rs := &relationSeen{perTree: make([]*bitset.BitSet, len(f.trees)), arity: arity}
	for i, tree := range f.trees {
		rs.perTree[i] = bitset.New(uint(tree.Len()) * arity)
	}
	return rs
}

// markFirst reports whether (tree, leafIdx, relation) is the first time
// this relation is seen, setting it seen as a side effect.
func (rs *relationSeen) markFirst(tree, leafIdx, relation int) bool {
	bit := uint(leafIdx)*rs.arity + uint(relation)
	if rs.perTree[tree].Test(bit) {
		return false
	}
	rs.perTree[tree].Set(bit)
	return true
}

func (f *Forest) iterateFace(ghost *GhostLayer, cb FaceCB, userData any) {
	seen := newRelationSeen(f, 6)
	for ti, tree := range f.trees {
		for li, leaf := range tree.Leaves {
			for face := 0; face < 6; face++ {
				nt, npos, ok := f.conn.FaceNeighborExtra(ti, leaf, face)
				if !ok {
					continue // physical boundary, no face callback
				}
				opposite := face ^ 1

				if oIdx, oLocal, found := f.locate(nt, npos, nil); found && oLocal && nt == ti {
					if !seen.markFirst(ti, li, face) {
						continue
					}
					seen.markFirst(nt, oIdx, opposite)
				} else if !seen.markFirst(ti, li, face) {
					continue
				}

				mySide := FaceSide{Full: &QuadRef{Tree: ti, Octant: leaf, Local: true}}

				var otherSide FaceSide
				if idx, local, found := f.locate(nt, npos, ghost); found {
					if local {
						oTree := f.trees[nt]
						otherSide = FaceSide{Full: &QuadRef{Tree: nt, Octant: oTree.Leaves[idx], Local: true}}
					} else {
						otherSide = FaceSide{Full: &QuadRef{Tree: nt, Octant: npos, Local: false}}
					}
				} else if int(leaf.Level) < QMaxLevel {
					half := leaf.HalfFaceNeighbors(face)
					var hanging []QuadRef
					for _, h := range half {
						if idx := tree.Find(h); idx >= 0 {
							hanging = append(hanging, QuadRef{Tree: ti, Octant: h, Local: true})
						}
					}
					if len(hanging) == 0 {
						continue
					}
					otherSide = FaceSide{Hanging: hanging}
				} else {
					continue
				}

				cb(FaceInfo{Sides: [2]FaceSide{mySide, otherSide}}, userData)
			}
		}
	}
}

func (f *Forest) iterateEdge(ghost *GhostLayer, cb EdgeCB, userData any) {
	seen := newRelationSeen(f, 12)
	for ti, tree := range f.trees {
		for li, leaf := range tree.Leaves {
			for e := 0; e < 12; e++ {
				n := leaf.EdgeNeighbor(e)
				if n.X < 0 || n.X >= RootLen || n.Y < 0 || n.Y >= RootLen || n.Z < 0 || n.Z >= RootLen {
					continue
				}

				if oIdx, oLocal, found := f.locate(ti, n, nil); found && oLocal {
					if !seen.markFirst(ti, li, e) {
						continue
					}
					seen.markFirst(ti, oIdx, e^3)
				} else if !seen.markFirst(ti, li, e) {
					continue
				}

				sides := []EdgeSide{{QuadRef: QuadRef{Tree: ti, Octant: leaf, Local: true}, Edge: e}}
				if idx, local, found := f.locate(ti, n, ghost); found {
					if local {
						sides = append(sides, EdgeSide{QuadRef: QuadRef{Tree: ti, Octant: tree.Leaves[idx], Local: true}, Edge: e ^ 3})
					} else {
						sides = append(sides, EdgeSide{QuadRef: QuadRef{Tree: ti, Octant: n, Local: false}, Edge: e ^ 3})
					}
					cb(EdgeInfo{Sides: sides}, userData)
				}
			}
		}
	}
}

func (f *Forest) iterateCorner(ghost *GhostLayer, cb CornerCB, userData any) {
	seen := newRelationSeen(f, 8)
	for ti, tree := range f.trees {
		for li, leaf := range tree.Leaves {
			qh := QLen(int(leaf.Level))
			for c := 0; c < 8; c++ {
				dx, dy, dz := cornerOffset(c)
				n := Octant{X: leaf.X + dx*qh, Y: leaf.Y + dy*qh, Z: leaf.Z + dz*qh, Level: leaf.Level}
				if n.X < 0 || n.X >= RootLen || n.Y < 0 || n.Y >= RootLen || n.Z < 0 || n.Z >= RootLen {
					continue
				}

				if oIdx, oLocal, found := f.locate(ti, n, nil); found && oLocal {
					if !seen.markFirst(ti, li, c) {
						continue
					}
					seen.markFirst(ti, oIdx, 7-c)
				} else if !seen.markFirst(ti, li, c) {
					continue
				}

				idx, local, found := f.locate(ti, n, ghost)
				if !found {
					continue
				}
				sides := []CornerSide{{QuadRef: QuadRef{Tree: ti, Octant: leaf, Local: true}, Corner: c}}
				if local {
					sides = append(sides, CornerSide{QuadRef: QuadRef{Tree: ti, Octant: tree.Leaves[idx], Local: true}, Corner: 7 - c})
				} else {
					sides = append(sides, CornerSide{QuadRef: QuadRef{Tree: ti, Octant: n, Local: false}, Corner: 7 - c})
				}
				cb(CornerInfo{Sides: sides}, userData)
			}
		}
	}
}

// cornerOffset returns the +/-1 offset along each axis for corner
// index c (Morton convention: bit 0 selects x, bit 1 y, bit 2 z).
func cornerOffset(c int) (dx, dy, dz int32) {
	sign := func(bit int) int32 {
		if c&(1<<bit) != 0 {
			return 1
		}
		return -1
	}
	return sign(0), sign(1), sign(2)
}
