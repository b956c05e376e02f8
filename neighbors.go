// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "github.com/octforest/octforest/internal/octerr"

// Face index convention, matching p8est: faces 0/1 are -x/+x, 2/3 are
// -y/+y, 4/5 are -z/+z. Edge index convention: edges 0-3 run parallel
// to x, 4-7 parallel to y, 8-11 parallel to z; within each group of
// four the two low bits select which of the other two axes is at its
// high extreme.
var faceAxis = [6]int{0, 0, 1, 1, 2, 2}

// faceSign returns -1 for a "low" face (even index) and +1 for a
// "high" face (odd index).
func faceSign(face int) int32 {
	if face&1 == 0 {
		return -1
	}
	return 1
}

// FaceNeighbor returns the same-size octant adjacent to o across the
// given face (0..5), without regard for whether that neighbor lies
// inside the root (callers needing cross-tree resolution use
// Connectivity.FaceNeighborExtra instead).
func (o Octant) FaceNeighbor(face int) Octant {
	octerr.Invariant(face >= 0 && face < 6, "octforest: face %d out of range", face)
	qh := QLen(int(o.Level))
	n := o
	switch faceAxis[face] {
	case 0:
		n.X = o.X + faceSign(face)*qh
	case 1:
		n.Y = o.Y + faceSign(face)*qh
	case 2:
		n.Z = o.Z + faceSign(face)*qh
	}
	return n
}

// HalfFaceNeighbors returns the four same-size-as-child octants that
// touch o across face, one level finer than o — the "hanging" face
// neighbors used when the actual neighbors across that face are smaller
// than o. Grounded on p4est_quadrant_half_face_neighbors.
func (o Octant) HalfFaceNeighbors(face int) [4]Octant {
	octerr.Invariant(face >= 0 && face < 6, "octforest: face %d out of range", face)
	octerr.Invariant(int(o.Level) < QMaxLevel, "octforest: HalfFaceNeighbors at QMaxLevel")

	level := o.Level + 1
	qh := QLen(int(level))
	full := QLen(int(o.Level))

	// anchor: the corner of o on the far side of `face`, at the child level
	anchor := o
	switch faceAxis[face] {
	case 0:
		if faceSign(face) > 0 {
			anchor.X = o.X + full
		} else {
			anchor.X = o.X - qh
		}
	case 1:
		if faceSign(face) > 0 {
			anchor.Y = o.Y + full
		} else {
			anchor.Y = o.Y - qh
		}
	case 2:
		if faceSign(face) > 0 {
			anchor.Z = o.Z + full
		} else {
			anchor.Z = o.Z - qh
		}
	}
	anchor.Level = level

	var out [4]Octant
	i := 0
	for db := int32(0); db < 2; db++ {
		for da := int32(0); da < 2; da++ {
			n := anchor
			switch faceAxis[face] {
			case 0:
				n.Y += da * qh
				n.Z += db * qh
			case 1:
				n.X += da * qh
				n.Z += db * qh
			case 2:
				n.X += da * qh
				n.Y += db * qh
			}
			out[i] = n
			i++
		}
	}
	return out
}

// AllFaceNeighbors reports the neighbor positions of o across face at
// every possible relative size: sameSize is the same-size neighbor,
// half holds the four half-size neighbors (HalfFaceNeighbors; zero
// values when o is at QMaxLevel), and sameSizeIsParent reports whether
// the same-size neighbor lies outside o's parent, so that its parent
// (a neighbor of twice o's size) can exist in a balanced forest; it is
// false for the root. This mirrors p4est_quadrant_all_face_neighbors;
// callers combine it with the tree's own leaf lookup to decide which of
// same/half/double actually appears in the mesh.
func (o Octant) AllFaceNeighbors(face int) (sameSize Octant, half [4]Octant, sameSizeIsParent bool) {
	octerr.Invariant(face >= 0 && face < 6, "octforest: face %d out of range", face)
	sameSize = o.FaceNeighbor(face)
	if int(o.Level) < QMaxLevel {
		half = o.HalfFaceNeighbors(face)
	}
	if o.Level > 0 {
		qcid := o.ChildID()
		sameSizeIsParent = ((qcid >> uint(faceAxis[face])) & 1) == int(faceSign(face)+1)/2
	}
	return sameSize, half, sameSizeIsParent
}

// edgeAxis returns the axis the edge runs parallel to (0=x,1=y,2=z)
// and the signs along the other two axes (in increasing axis order)
// that select which of the four parallel edges `edge` is.
func edgeAxis(edge int) (axis int, sign0, sign1 int32) {
	group := edge / 4
	bits := edge % 4
	s0 := int32(-1)
	if bits&1 != 0 {
		s0 = 1
	}
	s1 := int32(-1)
	if bits&2 != 0 {
		s1 = 1
	}
	return group, s0, s1
}

// EdgeNeighbor returns the same-size octant sharing edge `edge` (0..11)
// with o, diagonally across both of the two axes transverse to the
// edge. Grounded on p8est_quadrant_edge_neighbor.
func (o Octant) EdgeNeighbor(edge int) Octant {
	octerr.Invariant(edge >= 0 && edge < 12, "octforest: edge %d out of range", edge)
	axis, s0, s1 := edgeAxis(edge)
	qh := QLen(int(o.Level))
	n := o
	switch axis {
	case 0:
		n.Y = o.Y + s0*qh
		n.Z = o.Z + s1*qh
	case 1:
		n.X = o.X + s0*qh
		n.Z = o.Z + s1*qh
	case 2:
		n.X = o.X + s0*qh
		n.Y = o.Y + s1*qh
	}
	return n
}

// IsOutsideEdge reports whether o (admitted as an extended octant, one
// ring outside the root) lies diagonally outside the root across an
// edge rather than a face, and if so returns that edge's index.
// Grounded on p8est_quadrant_is_outside_edge /
// p8est_quadrant_is_outside_edge_extra: exactly two of the three axes
// must be outside [0, RootLen), each by the same one-sided amount, and
// that amount must equal QLen(o.Level) (the coordinate sits one full
// cell outside).
func (o Octant) IsOutsideEdge() (edge int, ok bool) {
	qh := QLen(int(o.Level))
	outside := func(v int32) (int32, bool) {
		switch {
		case v < 0:
			return -1, true
		case v >= RootLen:
			return 1, true
		default:
			return 0, false
		}
	}
	sx, ox := outside(o.X)
	sy, oy := outside(o.Y)
	sz, oz := outside(o.Z)

	contactX := ox && (o.X == -qh || o.X == RootLen)
	contactY := oy && (o.Y == -qh || o.Y == RootLen)
	contactZ := oz && (o.Z == -qh || o.Z == RootLen)

	n := 0
	if contactX {
		n++
	}
	if contactY {
		n++
	}
	if contactZ {
		n++
	}
	if n != 2 {
		return 0, false
	}

	switch {
	case !contactX:
		edge = edgeIndex(0, sy, sz)
	case !contactY:
		edge = edgeIndex(1, sx, sz)
	case !contactZ:
		edge = edgeIndex(2, sx, sy)
	}
	return edge, true
}

// edgeIndex reconstructs an edge number from its axis group and the
// two transverse signs, inverse of edgeAxis.
func edgeIndex(group int, s0, s1 int32) int {
	bits := 0
	if s0 > 0 {
		bits |= 1
	}
	if s1 > 0 {
		bits |= 2
	}
	return group*4 + bits
}

// TouchesEdge reports whether o (a valid, in-root octant) has a corner
// or face lying on the given edge line of the root cube. Grounded on
// p8est_quadrant_touches_edge.
func (o Octant) TouchesEdge(edge int) bool {
	octerr.Invariant(edge >= 0 && edge < 12, "octforest: edge %d out of range", edge)
	axis, s0, s1 := edgeAxis(edge)
	qh := QLen(int(o.Level))

	var c0, c1 int32
	switch axis {
	case 0:
		c0, c1 = o.Y, o.Z
	case 1:
		c0, c1 = o.X, o.Z
	case 2:
		c0, c1 = o.X, o.Y
	}

	var want0, want1 int32
	if s0 < 0 {
		want0 = 0
	} else {
		want0 = RootLen - qh
	}
	if s1 < 0 {
		want1 = 0
	} else {
		want1 = RootLen - qh
	}
	return c0 == want0 && c1 == want1
}
