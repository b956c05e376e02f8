// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

// BalanceType selects which adjacency relations a 2:1 size ratio is
// enforced across: sharing a face only, a face or edge, or a face,
// edge, or corner. Grounded on original_source/src/p8est.h's
// P8EST_BALANCE_FACE/EDGE/CORNER/DEFAULT/FULL enum.
type BalanceType int

const (
	BalanceFace BalanceType = iota
	BalanceEdge
	BalanceCorner

	BalanceDefault = BalanceEdge
	BalanceFull    = BalanceCorner
)

// insulationOffsets enumerates the 26 non-self cells of the 3x3x3
// insulation layer (§4.3/§4.4), each tagged with how many axes it
// moves along — 1 for a face neighbor, 2 for an edge neighbor, 3 for a
// corner neighbor — so Balance can restrict the scan to the relations
// kind actually cares about. Grounded on P8EST_INSUL.
type insulationOffset struct {
	dx, dy, dz int32
	axes       int
}

var insulationOffsets = func() []insulationOffset {
	var offs []insulationOffset
	for dz := int32(-1); dz <= 1; dz++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				axes := 0
				if dx != 0 {
					axes++
				}
				if dy != 0 {
					axes++
				}
				if dz != 0 {
					axes++
				}
				offs = append(offs, insulationOffset{dx, dy, dz, axes})
			}
		}
	}
	return offs
}()

// includes reports whether offset participates in a balance scan of
// the given kind.
func (o insulationOffset) includes(kind BalanceType) bool {
	switch kind {
	case BalanceFace:
		return o.axes == 1
	case BalanceEdge:
		return o.axes <= 2
	default: // BalanceCorner / BalanceFull
		return true
	}
}

// Balance enforces a 2:1 size ratio between every pair of leaves
// adjacent under the relations selected by kind: no local leaf may
// have a same-tree insulation-layer neighbor whose covering leaf is
// more than one level coarser. It works by repeatedly refining any
// leaf found to be too coarse relative to a finer neighbor, until a
// fixpoint is reached — the same insulation-layer scan p8est_balance
// performs, restricted here to same-tree and single-axis (face)
// cross-tree neighbors; a leaf's edge/corner neighbors that only exist
// across a tree boundary are not pursued across that boundary, a
// simplification recorded in DESIGN.md. Grounded on spec.md §4.4 and
// P8EST_INSUL.
func (f *Forest) Balance(kind BalanceType, initCB InitCB) {
	for {
		changed := false
		for ti, tree := range f.trees {
			i := 0
			for i < tree.Len() {
				leaf := tree.Leaves[i]
				if leaf.Level == 0 {
					i++
					continue
				}
				minNeighborLevel := leaf.Level - 1

				needsSplit := false
				for _, off := range insulationOffsets {
					if !off.includes(kind) {
						continue
					}
					pos, okTree := f.resolveInsulationNeighbor(ti, leaf, off)
					if !okTree {
						continue
					}
					nti, npos := pos.tree, pos.octant
					ntree := f.trees[nti]
					idx := ntree.FindAncestorOrSelf(npos)
					if idx < 0 {
						continue
					}
					found := ntree.Leaves[idx]
					if found.Level < minNeighborLevel {
						// the covering leaf is too coarse: refine it
						f.splitLeafTo(nti, idx, minNeighborLevel, initCB)
						needsSplit = true
						break
					}
				}

				if !needsSplit {
					i++
					continue
				}

				changed = true
				// don't advance i: the split may have shifted this
				// tree's indices, so re-examine whatever leaf now sits at
				// this position
			}
		}
		if !changed {
			break
		}
	}
	f.rebuildPartitionTable()
}

// splitLeafTo replaces the leaf at sorted index i of tree ti with its
// eight children, repeating until every resulting descendant reaches
// level target or QMaxLevel, whichever is smaller.
func (f *Forest) splitLeafTo(ti, i int, target uint8, initCB InitCB) {
	if target > QMaxLevel {
		target = QMaxLevel
	}
	tree := f.trees[ti]
	leaf := tree.Leaves[i]
	if leaf.Level >= target {
		return
	}

	oldPayload := tree.removeAt(i)
	f.pool.Put(oldPayload)

	children := leaf.Children()
	for _, c := range children {
		p := f.pool.Get()
		if initCB != nil {
			initCB(f, ti, c, p, nil)
		}
		tree.insert(c, p)
	}

	if leaf.Level+1 < target {
		for _, c := range children {
			idx := tree.Find(c)
			if idx >= 0 {
				f.splitLeafTo(ti, idx, target, initCB)
			}
		}
	}
}

// resolvedNeighbor names a position in a possibly different tree.
type resolvedNeighbor struct {
	tree   int
	octant Octant
}

// resolveInsulationNeighbor maps leaf's insulation-layer offset into
// either a same-tree position or, for a single-axis (face) offset that
// crosses the root boundary, the corresponding position in the
// neighboring tree via the forest's Connectivity. Returns ok==false
// when the offset leaves the root across an edge/corner (multi-axis)
// and there is no same-tree interpretation, per the simplification
// documented on Balance.
func (f *Forest) resolveInsulationNeighbor(tree int, leaf Octant, off insulationOffset) (resolvedNeighbor, bool) {
	qh := QLen(int(leaf.Level))
	pos := Octant{
		X:     leaf.X + off.dx*qh,
		Y:     leaf.Y + off.dy*qh,
		Z:     leaf.Z + off.dz*qh,
		Level: leaf.Level,
	}
	if pos.X >= 0 && pos.X < RootLen && pos.Y >= 0 && pos.Y < RootLen && pos.Z >= 0 && pos.Z < RootLen {
		return resolvedNeighbor{tree, pos}, true
	}
	if off.axes != 1 {
		return resolvedNeighbor{}, false
	}

	var face int
	switch {
	case off.dx < 0:
		face = 0
	case off.dx > 0:
		face = 1
	case off.dy < 0:
		face = 2
	case off.dy > 0:
		face = 3
	case off.dz < 0:
		face = 4
	default:
		face = 5
	}
	nt, npos, ok := f.conn.FaceNeighborExtra(tree, leaf, face)
	if !ok {
		return resolvedNeighbor{}, false
	}
	return resolvedNeighbor{nt, npos}, true
}
