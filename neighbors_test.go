// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "testing"

func TestFaceNeighborInvolution(t *testing.T) {
	o := Octant{X: QLen(3), Y: QLen(3), Z: QLen(3), Level: 3}
	for face := 0; face < 6; face++ {
		n := o.FaceNeighbor(face)
		back := n.FaceNeighbor(face ^ 1)
		if back != o {
			t.Errorf("face %d: FaceNeighbor round trip failed, got %+v want %+v", face, back, o)
		}
	}
}

func TestHalfFaceNeighborsCoverFace(t *testing.T) {
	o := Octant{X: QLen(2), Y: QLen(2), Z: QLen(2), Level: 2}
	for face := 0; face < 6; face++ {
		half := o.HalfFaceNeighbors(face)
		seen := map[Octant]bool{}
		for _, h := range half {
			if !h.IsValid() {
				t.Errorf("face %d: half-face neighbor %+v not valid", face, h)
			}
			if h.Level != o.Level+1 {
				t.Errorf("face %d: half-face neighbor at level %d, want %d", face, h.Level, o.Level+1)
			}
			seen[h] = true
		}
		if len(seen) != 4 {
			t.Errorf("face %d: expected 4 distinct half-face neighbors, got %d", face, len(seen))
		}
	}
}

func TestEdgeNeighborInvolution(t *testing.T) {
	o := Octant{X: QLen(3), Y: QLen(3), Z: QLen(3), Level: 3}
	for edge := 0; edge < 12; edge++ {
		n := o.EdgeNeighbor(edge)
		back := n.EdgeNeighbor(edge ^ 3)
		if back != o {
			t.Errorf("edge %d: EdgeNeighbor round trip failed, got %+v want %+v", edge, back, o)
		}
	}
}

func TestIsOutsideEdge(t *testing.T) {
	level := uint8(2)
	qh := QLen(int(level))

	// sits diagonally outside the root across the x=0,y=0 edge (edge 8 group: axis z)
	o := Octant{X: -qh, Y: -qh, Z: QLen(2), Level: level}
	edge, ok := o.IsOutsideEdge()
	if !ok {
		t.Fatal("expected octant to be outside an edge")
	}
	if edge < 8 || edge >= 12 {
		t.Errorf("expected a z-parallel edge (8..11), got %d", edge)
	}

	inside := Octant{X: 0, Y: 0, Z: QLen(2), Level: level}
	if _, ok := inside.IsOutsideEdge(); ok {
		t.Fatal("in-root octant should not be reported outside an edge")
	}
}

func TestTouchesEdge(t *testing.T) {
	level := uint8(1)
	corner := Octant{X: 0, Y: 0, Z: 0, Level: level}
	// edge 8 runs parallel to z at (x=0, y=0): corner touches it.
	if !corner.TouchesEdge(8) {
		t.Fatal("corner octant should touch the z-parallel edge at the origin")
	}
	// edge 11 runs parallel to z at (x=max, y=max): corner should not touch it.
	if corner.TouchesEdge(11) {
		t.Fatal("corner octant should not touch the far z-parallel edge")
	}
}
