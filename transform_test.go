// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "testing"

func TestTransformFaceIdentityIsSelfInverse(t *testing.T) {
	o := Octant{X: QLen(3), Y: QLen(3) * 2, Z: QLen(3) * 3, Level: 3}
	ft := identityFaceTransform(1)
	mapped := TransformFace(o, ft)
	back := TransformFace(mapped, ft)
	if back != o {
		t.Errorf("TransformFace applied twice with the identity transform should return the original octant, got %+v want %+v", back, o)
	}
}

func TestTransformFacePositiveShift(t *testing.T) {
	// spec.md §8 scenario S3: ftransform = ([0,1,2],[1,0,2],[0,0,1]),
	// q=(1,2,3,l) maps to r=(2,1,3+RootLen,l).
	ft := FaceTransform{
		MyAxis:     [3]int{0, 1, 2},
		TargetAxis: [3]int{1, 0, 2},
		NormalCase: 1,
	}
	q := Octant{X: 1, Y: 2, Z: 3, Level: 5}
	r := TransformFace(q, ft)
	want := Octant{X: 2, Y: 1, Z: 3 + RootLen, Level: 5}
	if r != want {
		t.Errorf("TransformFace(%+v, %+v) = %+v, want %+v", q, ft, r, want)
	}
}

func TestTransformFaceNegativeShift(t *testing.T) {
	ft := FaceTransform{MyAxis: [3]int{0, 1, 2}, TargetAxis: [3]int{0, 1, 2}, NormalCase: 2}
	q := Octant{X: 1, Y: 2, Z: RootLen, Level: 5}
	r := TransformFace(q, ft)
	if r.Z != 0 {
		t.Errorf("negative-shift TransformFace Z = %d, want 0", r.Z)
	}
}

func TestTransformFaceMirroredShift(t *testing.T) {
	level := 4
	qh := QLen(level)
	ft := FaceTransform{MyAxis: [3]int{0, 1, 2}, TargetAxis: [3]int{0, 1, 2}, NormalCase: 3}
	q := Octant{X: 0, Y: 0, Z: -qh, Level: uint8(level)}
	r := TransformFace(q, ft)
	want := 2*RootLen - qh - (-qh)
	if r.Z != want {
		t.Errorf("mirrored-shift TransformFace Z = %d, want %d", r.Z, want)
	}
}

func TestPeriodicFaceTransformWrapsRoundTrip(t *testing.T) {
	conn := NewPeriodicConnectivity()
	q := Octant{X: RootLen - QLen(3), Y: QLen(3), Z: QLen(3) * 2, Level: 3}
	_, r, ok := conn.FaceNeighborExtra(0, q, 1) // +x face, exits the high side
	if !ok {
		t.Fatalf("FaceNeighborExtra on a periodic connectivity must never hit a boundary")
	}
	if !r.IsValid() {
		t.Fatalf("periodic wraparound neighbor %+v is not a valid in-root octant", r)
	}
	if r.X != 0 || r.Y != q.Y || r.Z != q.Z {
		t.Errorf("periodic wraparound neighbor = %+v, want X=0 with Y,Z unchanged", r)
	}
}

func TestTransformEdgeFlip(t *testing.T) {
	o := Octant{X: 0, Y: 0, Z: QLen(2), Level: 2}
	et := EdgeTransform{NeighborEdge: 11, Flip: true}
	mapped := TransformEdge(o, 8, et)
	if mapped.Level != o.Level {
		t.Errorf("TransformEdge should preserve level, got %d want %d", mapped.Level, o.Level)
	}
	// neighbor edge 11 (group 2 = z axis, s0=+1, s1=+1) fixes x and y
	// at RootLen-qh each; flip reflects the along-edge (z) coordinate.
	qh := QLen(int(o.Level))
	wantFixed := RootLen - qh
	if mapped.X != wantFixed || mapped.Y != wantFixed {
		t.Errorf("TransformEdge fixed coords = (%d,%d), want (%d,%d)", mapped.X, mapped.Y, wantFixed, wantFixed)
	}
	wantZ := RootLen - qh - o.Z
	if mapped.Z != wantZ {
		t.Errorf("TransformEdge flipped along-edge coord = %d, want %d", mapped.Z, wantZ)
	}
}

func TestShiftEdgeReachesRoot(t *testing.T) {
	o := Octant{X: QLen(3), Y: QLen(3), Z: QLen(3), Level: 3}
	sids := ShiftEdge(o, 8)
	if len(sids) != 3 {
		t.Fatalf("ShiftEdge from level 3 should climb 3 steps to the root, got %d", len(sids))
	}
	cur := o
	for range sids {
		cur = cur.Parent()
	}
	if cur.Level != 0 {
		t.Fatalf("climbing ShiftEdge's step count should reach the root, ended at level %d", cur.Level)
	}
}
