// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "testing"

func TestIterateVolumeVisitsEveryLeafOnce(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 0, nil, nil)
	defer f.Destroy()
	f.RefineLevel(true, func(*Forest, int, Octant, []byte, any) bool { return true }, nil, 2)

	seen := map[Octant]int{}
	f.Iterate(nil, nil, func(info VolumeInfo, userData any) {
		seen[info.Octant]++
	}, nil, nil, nil)

	if len(seen) != f.LocalNumQuadrants() {
		t.Fatalf("volume pass visited %d distinct leaves, want %d", len(seen), f.LocalNumQuadrants())
	}
	for o, n := range seen {
		if n != 1 {
			t.Errorf("leaf %+v visited %d times, want 1", o, n)
		}
	}
}

func TestIterateFaceOnlyInteriorFaces(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 0, nil, nil)
	defer f.Destroy()
	f.RefineLevel(false, func(*Forest, int, Octant, []byte, any) bool { return true }, nil, 1)

	var faceCalls int
	f.Iterate(nil, nil, nil, func(info FaceInfo, userData any) {
		faceCalls++
		if info.Sides[0].Full == nil && len(info.Sides[0].Hanging) == 0 {
			t.Error("face side 0 should have at least a Full or Hanging participant")
		}
	}, nil, nil)

	if faceCalls == 0 {
		t.Fatal("expected at least one interior face among 8 sibling children")
	}
}

func TestIterateOrderingVolumeBeforeFace(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 0, nil, nil)
	defer f.Destroy()
	f.RefineLevel(false, func(*Forest, int, Octant, []byte, any) bool { return true }, nil, 1)

	var volumeDone, faceStarted bool
	f.Iterate(nil, nil,
		func(info VolumeInfo, userData any) { volumeDone = true },
		func(info FaceInfo, userData any) {
			faceStarted = true
			if !volumeDone {
				t.Error("face callback fired before any volume callback")
			}
		}, nil, nil)

	if !faceStarted {
		t.Fatal("expected at least one face callback")
	}
}
