// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "testing"

func TestChecksumStableAcrossCopy(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 0, nil, nil)
	defer f.Destroy()
	f.RefineLevel(true, func(*Forest, int, Octant, []byte, any) bool { return true }, nil, 2)

	cp := f.Copy(false)
	defer cp.Destroy()

	if f.Checksum() != cp.Checksum() {
		t.Fatal("checksum should be identical for two forests with the same leaf set")
	}
}

func TestChecksumChangesWithLeafSet(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 0, nil, nil)
	defer f.Destroy()
	before := f.Checksum()

	f.RefineLevel(false, func(*Forest, int, Octant, []byte, any) bool { return true }, nil, 1)
	after := f.Checksum()

	if before == after {
		t.Fatal("checksum should change after refining the forest")
	}
}

func TestChecksumInvariantUnderLeafOrder(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 0, nil, nil)
	defer f.Destroy()
	f.RefineLevel(true, func(*Forest, int, Octant, []byte, any) bool { return true }, nil, 1)

	want := f.Checksum()

	tree := f.Tree(0)
	tree.Leaves[0], tree.Leaves[len(tree.Leaves)-1] = tree.Leaves[len(tree.Leaves)-1], tree.Leaves[0]
	tree.payloads[0], tree.payloads[len(tree.payloads)-1] = tree.payloads[len(tree.payloads)-1], tree.payloads[0]

	if got := f.Checksum(); got != want {
		t.Fatalf("Checksum() = %x after reordering leaves, want %x (order-independent)", got, want)
	}
}
