// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "github.com/octforest/octforest/internal/octerr"

// EdgeCone records one tree touching a given edge of the connectivity
// graph: which tree, which of its own edges coincides with this one,
// and whether traversal direction is flipped relative to the edge's
// canonical orientation.
type EdgeCone struct {
	Tree int32
	Edge uint8
	Flip bool
}

// CornerCone records one tree touching a given corner of the
// connectivity graph: which tree, and which of its own corners
// coincides with this one.
type CornerCone struct {
	Tree   int32
	Corner uint8
}

// FaceLink records the neighbor across one face of one tree: which
// tree (or -1 if the face is a physical boundary) and, when it exists,
// the orientation needed to build a FaceTransform.
type FaceLink struct {
	Tree        int32 // -1 if boundary
	Face        uint8
	Orientation uint8
}

// Connectivity is a read-only view of the coarse topology: for each
// tree, which trees border it across each of its 6 faces and which
// trees share each of its 12 edges and 8 corners. It owns no mutable
// state past construction and is never modified by the forest.
// Grounded on spec.md §4.2 and the tree-adjacency fields sketched by
// p8est.h's connectivity struct comments.
type Connectivity struct {
	NumTrees int

	// faceNeighbors[t][f] is the link across face f of tree t.
	faceNeighbors [][6]FaceLink

	// edgeCones[t][e] lists every tree (including t itself, for a
	// corner/edge interior to one tree when periodic) sharing edge e
	// of tree t, in canonical edge order.
	edgeCones [][12][]EdgeCone

	// cornerCones[t][c] lists every tree sharing corner c of tree t.
	cornerCones [][8][]CornerCone

	// faceTransforms[t][f] is populated only for a non-boundary face
	// and describes how to map an octant from tree t's face f frame
	// into the neighbor's frame.
	faceTransforms [][6]FaceTransform
}

// FaceNeighbor returns the neighbor link across face `face` of tree
// `tree`, or ok==false if that face is a physical boundary.
func (c *Connectivity) FaceNeighbor(tree, face int) (FaceLink, bool) {
	octerr.Invariant(tree >= 0 && tree < c.NumTrees, "octforest: tree %d out of range", tree)
	octerr.Invariant(face >= 0 && face < 6, "octforest: face %d out of range", face)
	link := c.faceNeighbors[tree][face]
	return link, link.Tree >= 0
}

// FindFaceTransform returns the FaceTransform needed to map an octant
// touching face `face` of tree `tree` into its neighbor's frame.
// Grounded on p8est's find_face_transform.
func (c *Connectivity) FindFaceTransform(tree, face int) (FaceTransform, bool) {
	_, ok := c.FaceNeighbor(tree, face)
	if !ok {
		return FaceTransform{}, false
	}
	return c.faceTransforms[tree][face], true
}

// FaceNeighborExtra resolves o's same-size neighbor across face,
// across a tree boundary when necessary: if face is a physical
// boundary it returns ok==false; otherwise it transforms o into the
// neighboring tree's frame and reports that tree's id alongside the
// transformed octant. Grounded on p8est's face-neighbor-plus-transform
// composition used throughout p8est_balance/p8est_iterate.
func (c *Connectivity) FaceNeighborExtra(tree int, o Octant, face int) (neighborTree int, neighbor Octant, ok bool) {
	same := o.FaceNeighbor(face)
	if same.IsValid() {
		// neighbor lies within the same tree's coordinate frame: no
		// cross-tree transform needed, whatever the tree's face link.
		return tree, same, true
	}
	link, exists := c.FaceNeighbor(tree, face)
	if !exists {
		return 0, Octant{}, false
	}
	ft, _ := c.FindFaceTransform(tree, face)
	return int(link.Tree), TransformFace(same, ft), true
}

// FindEdgeTransform returns the EdgeCone list recorded for edge `edge`
// of tree `tree`, as stored: entries naming the tree itself are not
// filtered out, and no EdgeTransform is built from them. Grounded on
// p8est_find_edge_transform.
func (c *Connectivity) FindEdgeTransform(tree, edge int) []EdgeCone {
	octerr.Invariant(tree >= 0 && tree < c.NumTrees, "octforest: tree %d out of range", tree)
	octerr.Invariant(edge >= 0 && edge < 12, "octforest: edge %d out of range", edge)
	return c.edgeCones[tree][edge]
}

// FindCornerCones returns every CornerCone sharing corner `corner` of
// tree `tree`.
func (c *Connectivity) FindCornerCones(tree, corner int) []CornerCone {
	octerr.Invariant(tree >= 0 && tree < c.NumTrees, "octforest: tree %d out of range", tree)
	octerr.Invariant(corner >= 0 && corner < 8, "octforest: corner %d out of range", corner)
	return c.cornerCones[tree][corner]
}

// NewUnitConnectivity builds a single-tree connectivity whose faces,
// edges and corners are all physical boundaries: the simplest possible
// topology, used as the default in tests and the demo binary. Grounded
// on p8est_connectivity_new_unitsquare's 3-D analogue (a single brick).
func NewUnitConnectivity() *Connectivity {
	c := &Connectivity{
		NumTrees:       1,
		faceNeighbors:  make([][6]FaceLink, 1),
		edgeCones:      make([][12][]EdgeCone, 1),
		cornerCones:    make([][8][]CornerCone, 1),
		faceTransforms: make([][6]FaceTransform, 1),
	}
	for f := 0; f < 6; f++ {
		c.faceNeighbors[0][f] = FaceLink{Tree: -1}
	}
	return c
}

// identityFaceTransform returns the transform used when a single tree
// is glued to a mirror image of itself across an axis: the in-plane
// axes pass through unchanged and the normal axis is reflected
// (NormalCase 0, the "mh-m" case of TransformFace). Self-inverse.
func identityFaceTransform(face int) FaceTransform {
	axis := faceAxis[face]
	u, v := (axis+1)%3, (axis+2)%3
	return FaceTransform{
		MyAxis:     [3]int{u, v, axis},
		TargetAxis: [3]int{u, v, axis},
		NormalCase: 0,
	}
}

// periodicFaceTransform returns the transform used when a single tree
// wraps around to itself across an axis (true toroidal periodicity):
// the in-plane axes pass through unchanged and the normal axis shifts
// by a full RootLen so that exiting one side re-enters at the other,
// rather than mirroring. Grounded on p8est_connectivity_new_periodic,
// which glues opposite faces of the same brick by translation, not
// reflection.
func periodicFaceTransform(face int) FaceTransform {
	axis := faceAxis[face]
	u, v := (axis+1)%3, (axis+2)%3
	nc := uint8(1) // exiting the low side: shift positive, m + RootLen
	if faceSign(face) > 0 {
		nc = 2 // exiting the high side: shift negative, m - RootLen
	}
	return FaceTransform{
		MyAxis:     [3]int{u, v, axis},
		TargetAxis: [3]int{u, v, axis},
		NormalCase: nc,
	}
}

// NewPeriodicConnectivity builds a single-tree connectivity that wraps
// to itself across all three axes: every face links tree 0 to tree 0,
// every edge and corner cone lists tree 0 once per participating
// orientation. Grounded on p8est_connectivity_new_periodic.
func NewPeriodicConnectivity() *Connectivity {
	c := &Connectivity{
		NumTrees:       1,
		faceNeighbors:  make([][6]FaceLink, 1),
		edgeCones:      make([][12][]EdgeCone, 1),
		cornerCones:    make([][8][]CornerCone, 1),
		faceTransforms: make([][6]FaceTransform, 1),
	}
	for f := 0; f < 6; f++ {
		opposite := f ^ 1
		c.faceNeighbors[0][f] = FaceLink{Tree: 0, Face: uint8(opposite), Orientation: 0}
		c.faceTransforms[0][f] = periodicFaceTransform(f)
	}
	for e := 0; e < 12; e++ {
		opposite := e ^ 3
		c.edgeCones[0][e] = []EdgeCone{{Tree: 0, Edge: uint8(opposite), Flip: false}}
	}
	for k := 0; k < 8; k++ {
		opposite := k ^ 7
		c.cornerCones[0][k] = []CornerCone{{Tree: 0, Corner: uint8(opposite)}}
	}
	return c
}
