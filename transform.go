// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "github.com/octforest/octforest/internal/octerr"

// FaceTransform describes how coordinates on one tree's face map onto
// the neighboring tree's matching face, as stored per-tree-per-face in
// a Connectivity. MyAxis/TargetAxis give, for each of the three local
// axes (in-plane u, in-plane v, normal), which axis of the target tree
// it corresponds to. TangentFlip flags whether the two in-plane axes
// (u, v) run in the opposite direction across the join. NormalCase
// selects among the four ways the normal axis can relate two trees
// glued across a face, exactly the edge_reverse[2] encoding of
// spec.md §4.1: 0 mirrors (mh-m), 1 shifts positive (m+RootLen), 2
// shifts negative (m-RootLen), 3 mirrors-and-shifts
// (2*RootLen-QLen(level)-m). Grounded on the ftransform layout built
// by p8est_connectivity's face-transform machinery and consumed by
// p8est_quadrant_transform_face.
type FaceTransform struct {
	MyAxis      [3]int
	TargetAxis  [3]int
	TangentFlip [2]bool
	NormalCase  uint8
}

// TransformFace maps octant o, expressed in the coordinate frame of
// the face it is touching, into the coordinate frame of the
// neighboring tree across that face, using ft. Grounded on
// p8est_quadrant_transform_face.
func TransformFace(o Octant, ft FaceTransform) Octant {
	qh := QLen(int(o.Level))
	mh := RootLen - qh
	coords := [3]int32{o.X, o.Y, o.Z}

	var my [3]int32
	for i := 0; i < 2; i++ {
		my[i] = coords[ft.MyAxis[i]]
		if ft.TangentFlip[i] {
			my[i] = mh - my[i]
		}
	}

	m := coords[ft.MyAxis[2]]
	switch ft.NormalCase {
	case 0:
		my[2] = mh - m
	case 1:
		my[2] = m + RootLen
	case 2:
		my[2] = m - RootLen
	case 3:
		my[2] = 2*RootLen - qh - m
	default:
		octerr.Invariant(false, "octforest: invalid face-transform normal case %d", ft.NormalCase)
	}

	var out [3]int32
	for i := 0; i < 3; i++ {
		out[ft.TargetAxis[i]] = my[i]
	}

	return Octant{X: out[0], Y: out[1], Z: out[2], Level: o.Level}
}

// EdgeTransform describes how an octant touching a particular edge of
// one tree maps onto the coordinate frame of a neighboring tree that
// shares that edge, including a possible flip of direction along the
// edge. Grounded on p8est_edge_transform_t / p8est_edge_info_t.
type EdgeTransform struct {
	NeighborEdge int
	Flip         bool
}

// TransformEdge maps o, which touches edge `sourceEdge` of its own
// tree, into the coordinate frame of a neighbor across et. Grounded on
// p8est_quadrant_transform_edge: the along-edge coordinate either
// passes through unchanged or is reflected (RootLen - len - coord)
// when et.Flip is set; the two transverse coordinates collapse to the
// neighbor edge's fixed corner.
func TransformEdge(o Octant, sourceEdge int, et EdgeTransform) Octant {
	srcAxis, _, _ := edgeAxis(sourceEdge)
	dstAxis, s0, s1 := edgeAxis(et.NeighborEdge)
	qh := QLen(int(o.Level))

	var along int32
	switch srcAxis {
	case 0:
		along = o.X
	case 1:
		along = o.Y
	default:
		along = o.Z
	}
	if et.Flip {
		along = RootLen - qh - along
	}

	var fixed0, fixed1 int32
	if s0 < 0 {
		fixed0 = 0
	} else {
		fixed0 = RootLen - qh
	}
	if s1 < 0 {
		fixed1 = 0
	} else {
		fixed1 = RootLen - qh
	}

	var out Octant
	out.Level = o.Level
	switch dstAxis {
	case 0:
		out.X, out.Y, out.Z = along, fixed0, fixed1
	case 1:
		out.Y, out.X, out.Z = along, fixed0, fixed1
	case 2:
		out.Z, out.X, out.Y = along, fixed0, fixed1
	}
	return out
}

// ShiftEdge climbs from o to the root, ancestor by ancestor, and
// returns the child id of o and of each ancestor above level 0, finest
// first. The edge argument is only range-checked and does not affect
// the result; no shifted or clamped octant is computed. Grounded on
// p8est_quadrant_shift_edge's iterative ancestor-climbing loop.
func ShiftEdge(o Octant, edge int) []int {
	octerr.Invariant(edge >= 0 && edge < 12, "octforest: edge %d out of range", edge)

	var sids []int
	cur := o
	for cur.Level > 0 {
		cid := cur.ChildID()
		sids = append(sids, cid)
		cur = cur.Parent()
	}
	return sids
}
