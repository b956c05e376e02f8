// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Fprint writes a human-readable, indented dump of every tree's
// leaves to w, one line per leaf, trees separated by a header line.
// Grounded on the teacher's dumper.go recursive indented tree dump,
// adapted from a trie's prefix/child-fanout shape to a flat sorted
// leaf list per tree.
func (f *Forest) Fprint(w io.Writer) error {
	for ti, tree := range f.trees {
		if _, err := fmt.Fprintf(w, "tree %d (%d leaves):\n", ti, tree.Len()); err != nil {
			return err
		}
		for i, leaf := range tree.Leaves {
			indent := strings.Repeat("  ", int(leaf.Level)+1)
			if _, err := fmt.Fprintf(w, "%s#%d (%d,%d,%d) L%d\n", indent, i, leaf.X, leaf.Y, leaf.Z, leaf.Level); err != nil {
				return err
			}
		}
	}
	return nil
}

// dumpLeaf is the JSON-visible shape of one leaf, used by MarshalJSON.
type dumpLeaf struct {
	X     int32 `json:"x"`
	Y     int32 `json:"y"`
	Z     int32 `json:"z"`
	Level uint8 `json:"level"`
}

type dumpTree struct {
	Leaves []dumpLeaf `json:"leaves"`
}

type dumpForest struct {
	Trees []dumpTree `json:"trees"`
}

// MarshalJSON renders the forest's local leaves as JSON, one object
// per tree holding its sorted leaf array — used in tests to compare a
// forest's shape structurally and for manual inspection. Grounded on
// the teacher's MarshalJSON/dumper.go pairing (human dump plus a
// machine-readable twin).
func (f *Forest) MarshalJSON() ([]byte, error) {
	out := dumpForest{Trees: make([]dumpTree, len(f.trees))}
	for ti, tree := range f.trees {
		leaves := make([]dumpLeaf, tree.Len())
		for i, leaf := range tree.Leaves {
			leaves[i] = dumpLeaf{X: leaf.X, Y: leaf.Y, Z: leaf.Z, Level: leaf.Level}
		}
		out.Trees[ti] = dumpTree{Leaves: leaves}
	}
	return json.Marshal(out)
}
