// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package octforest

import (
	"sync"
	"sync/atomic"
)

// InitCB initializes the payload for a freshly created leaf (from
// New, Refine's split, or Coarsen's merge). userData is the opaque
// value supplied to the triggering call, threaded through unchanged.
type InitCB func(forest *Forest, tree int, octant Octant, payload []byte, userData any)

// RefineCB reports whether octant should be split into its eight
// children.
type RefineCB func(forest *Forest, tree int, octant Octant, payload []byte, userData any) bool

// CoarsenCB reports whether the eight sibling octants in family (in
// Morton order) should be merged into their common parent.
type CoarsenCB func(forest *Forest, tree int, family [8]Octant, payloads [][]byte, userData any) bool

// WeightCB returns the repartitioning weight of a leaf; Partition
// distributes leaves across ranks so that the cumulative weight per
// rank is as even as possible.
type WeightCB func(forest *Forest, tree int, octant Octant, payload []byte, userData any) int

// payloadPool hands out and reclaims fixed-size []byte slabs for leaf
// user data, avoiding per-leaf allocation churn during Refine/Coarsen.
// Adapted directly from the teacher's sync.Pool wrapper in pool.go,
// generalized from a typed node pool to a raw byte-slab pool sized at
// construction time, with the same live/total atomic bookkeeping.
type payloadPool struct {
	size  int
	pool  sync.Pool
	total atomic.Int64
	live  atomic.Int64
}

func newPayloadPool(size int) *payloadPool {
	p := &payloadPool{size: size}
	p.pool.New = func() any {
		p.total.Add(1)
		return make([]byte, p.size)
	}
	return p
}

// Get returns a zeroed slab of the pool's configured size. When size
// is 0 it returns nil, matching a forest with no payload.
func (p *payloadPool) Get() []byte {
	if p.size == 0 {
		return nil
	}
	p.live.Add(1)
	b := p.pool.Get().([]byte)
	clear(b)
	return b
}

// Put returns a slab to the pool for reuse. Callers must not retain b
// after calling Put.
func (p *payloadPool) Put(b []byte) {
	if b == nil {
		return
	}
	p.live.Add(-1)
	p.pool.Put(b) //nolint:staticcheck // slice backing array is reused intentionally
}

// Stats reports the pool's lifetime allocation count and the number of
// slabs currently checked out, mirroring the teacher's pool.Stats.
func (p *payloadPool) Stats() (totalAllocated, currentLive int64) {
	return p.total.Load(), p.live.Load()
}
