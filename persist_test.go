// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	conn := NewUnitConnectivity()
	f := New(LocalGroup{}, conn, 0, 4, func(forest *Forest, tree int, o Octant, payload []byte, userData any) {
		payload[0] = byte(o.Level)
	}, nil)
	defer f.Destroy()
	f.RefineLevel(true, func(*Forest, int, Octant, []byte, any) bool { return true }, nil, 2)

	path := filepath.Join(t.TempDir(), "forest.oct")
	if err := Save(path, f, true); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _, err := Load(path, LocalGroup{}, 4, true, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer loaded.Destroy()

	if loaded.LocalNumQuadrants() != f.LocalNumQuadrants() {
		t.Fatalf("loaded leaf count = %d, want %d", loaded.LocalNumQuadrants(), f.LocalNumQuadrants())
	}
	if loaded.Checksum() != f.Checksum() {
		t.Fatal("loaded forest checksum should match the saved forest")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.oct")
	if err := os.WriteFile(path, []byte("not an octforest file"), 0o644); err != nil {
		t.Fatalf("writing bad file: %v", err)
	}

	if _, _, err := Load(path, LocalGroup{}, 0, false, nil); err == nil {
		t.Fatal("Load should reject a file with bad magic")
	}
}
