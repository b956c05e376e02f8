// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import (
	"encoding/binary"
	"hash/crc32"
)

// Checksum returns a digest of the forest's local leaves that is
// invariant under Partition: rather than folding a single sequential
// hash over the (partition-dependent) leaf order, each leaf's own
// hash is computed independently (the CRC32 of its (tree, x, y, level)
// tuple XOR the CRC32 of its z) and the results are combined with XOR,
// an operation insensitive to combination order. When the Group has
// more than one rank, each rank's partial XOR is exchanged with
// Allgather and folded here, so every rank returns the forest-wide
// value. Grounded on
// spec.md §4.6 and testable property 9 (checksum invariant under
// partition); see DESIGN.md for why a stream hash was replaced with
// this order-independent fold.
func (f *Forest) Checksum() uint32 {
	var acc uint32
	var buf [13]byte
	for ti, tree := range f.trees {
		for _, leaf := range tree.Leaves {
			binary.LittleEndian.PutUint32(buf[0:4], uint32(ti))
			binary.LittleEndian.PutUint32(buf[4:8], uint32(leaf.X))
			binary.LittleEndian.PutUint32(buf[8:12], uint32(leaf.Y))
			buf[12] = leaf.Level
			h := crc32.ChecksumIEEE(buf[:])
			// fold in Z separately so the buffer stays fixed-size
			var zbuf [4]byte
			binary.LittleEndian.PutUint32(zbuf[:], uint32(leaf.Z))
			h ^= crc32.ChecksumIEEE(zbuf[:])
			acc ^= h
		}
	}

	if f.group.Size() > 1 {
		parts := f.group.Allgather(uint64(acc))
		acc = 0
		for _, p := range parts {
			acc ^= uint32(p)
		}
	}
	return acc
}
