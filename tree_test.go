// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import "testing"

func TestNewTreeIsSortedAndComplete(t *testing.T) {
	tree := newTree()
	tree.insert(Octant{Level: 0}, nil)
	if !tree.IsSorted() {
		t.Fatal("single-root tree should be sorted")
	}
	if !tree.IsComplete() {
		t.Fatal("single-root tree should be complete")
	}
}

func TestTreeInsertKeepsSortedAfterSplit(t *testing.T) {
	tree := newTree()
	root := Octant{Level: 0}
	for _, c := range root.Children() {
		tree.insert(c, nil)
	}
	if !tree.IsSorted() {
		t.Fatal("tree of 8 children should be sorted")
	}
	if !tree.IsComplete() {
		t.Fatal("tree of 8 children should tile the root exactly")
	}
	if tree.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", tree.Len())
	}
}

func TestTreeFindAncestorOrSelf(t *testing.T) {
	tree := newTree()
	root := Octant{Level: 0}
	children := root.Children()
	tree.insert(children[2], nil)

	if idx := tree.FindAncestorOrSelf(children[2]); idx < 0 {
		t.Fatal("exact leaf should be found")
	}
	grandchild := children[2].Children()[1]
	if idx := tree.FindAncestorOrSelf(grandchild); idx < 0 {
		t.Fatal("descendant position should resolve to its ancestor leaf")
	}
	if idx := tree.FindAncestorOrSelf(children[5]); idx >= 0 {
		t.Fatal("position outside the only leaf should not resolve")
	}
}

func TestTreeRemoveAt(t *testing.T) {
	tree := newTree()
	root := Octant{Level: 0}
	for _, c := range root.Children() {
		tree.insert(c, []byte{byte(c.ChildID())})
	}
	removed := tree.removeAt(3)
	if len(removed) != 1 || removed[0] != 3 {
		t.Fatalf("removeAt should return the removed leaf's payload, got %v", removed)
	}
	if tree.Len() != 7 {
		t.Fatalf("Len() after removeAt = %d, want 7", tree.Len())
	}
	if !tree.IsSorted() {
		t.Fatal("tree should remain sorted after removeAt")
	}
}
