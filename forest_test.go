// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "testing"

func TestNewSingleRankForest(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 4, nil, nil)
	defer f.Destroy()

	if got := f.LocalNumQuadrants(); got != 1 {
		t.Fatalf("LocalNumQuadrants() = %d, want 1", got)
	}
	if got := f.GlobalNumQuadrants(); got != 1 {
		t.Fatalf("GlobalNumQuadrants() = %d, want 1", got)
	}
}

func TestRefineAndCoarsenRoundTrip(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 0, nil, nil)
	defer f.Destroy()

	f.RefineLevel(false, func(*Forest, int, Octant, []byte, any) bool { return true }, nil, 1)
	if got := f.LocalNumQuadrants(); got != 8 {
		t.Fatalf("after one refine, LocalNumQuadrants() = %d, want 8", got)
	}
	if !f.Tree(0).IsComplete() {
		t.Fatal("tree should remain complete after refine")
	}

	f.Coarsen(false, nil, nil)
	if got := f.LocalNumQuadrants(); got != 1 {
		t.Fatalf("after coarsen, LocalNumQuadrants() = %d, want 1", got)
	}
}

func TestResetDataReinitializesPayloads(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 4, nil, nil)
	defer f.Destroy()

	var seen int
	f.ResetData(8, func(forest *Forest, tree int, o Octant, payload []byte, userData any) {
		seen++
		payload[0] = 0xAB
	}, nil)

	if seen != 1 {
		t.Fatalf("initCB should run once per leaf, ran %d times", seen)
	}
	if f.Tree(0).Payload(0)[0] != 0xAB {
		t.Fatal("ResetData should run initCB on the new payload")
	}
}

func TestCopyIndependence(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 1, func(forest *Forest, tree int, o Octant, payload []byte, userData any) {
		payload[0] = 7
	}, nil)
	defer f.Destroy()

	cp := f.Copy(true)
	defer cp.Destroy()

	cp.Tree(0).Payload(0)[0] = 9
	if f.Tree(0).Payload(0)[0] != 7 {
		t.Fatal("mutating the copy's payload should not affect the original")
	}
}

func TestBalanceEnforcesTwoToOne(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 0, nil, nil)
	defer f.Destroy()

	root := Octant{Level: 0}
	corner := root.Children()[0]
	f.Refine(true, func(forest *Forest, tree int, o Octant, payload []byte, userData any) bool {
		return o == corner || o.IsAncestor(corner)
	}, nil)
	f.Refine(true, func(forest *Forest, tree int, o Octant, payload []byte, userData any) bool {
		return o == corner.Children()[0]
	}, nil)

	f.Balance(BalanceFace, nil)

	tree := f.Tree(0)
	for i, leaf := range tree.Leaves {
		for j := i + 1; j < len(tree.Leaves); j++ {
			other := tree.Leaves[j]
			if adjacentAcrossFace(leaf, other) {
				diff := int(leaf.Level) - int(other.Level)
				if diff > 1 || diff < -1 {
					t.Errorf("balanced leaves %+v and %+v differ by more than one level", leaf, other)
				}
			}
		}
	}
}

// adjacentAcrossFace reports whether a and b are face-adjacent at
// possibly different levels, used only to check the balance
// invariant in tests.
func adjacentAcrossFace(a, b Octant) bool {
	aLo, aHi := a.X, a.X+QLen(int(a.Level))
	bLo, bHi := b.X, b.X+QLen(int(b.Level))
	xTouch := aHi == bLo || bHi == aLo
	xOverlap := aLo < bHi && bLo < aHi

	aYLo, aYHi := a.Y, a.Y+QLen(int(a.Level))
	bYLo, bYHi := b.Y, b.Y+QLen(int(b.Level))
	yTouch := aYHi == bYLo || bYHi == aYLo
	yOverlap := aYLo < bYHi && bYLo < aYHi

	aZLo, aZHi := a.Z, a.Z+QLen(int(a.Level))
	bZLo, bZHi := b.Z, b.Z+QLen(int(b.Level))
	zTouch := aZHi == bZLo || bZHi == aZLo
	zOverlap := aZLo < bZHi && bZLo < aZHi

	faceX := xTouch && yOverlap && zOverlap
	faceY := yTouch && xOverlap && zOverlap
	faceZ := zTouch && xOverlap && yOverlap
	return faceX || faceY || faceZ
}
