// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Command octforest-demo builds a single-tree forest, refines it
// around the root's center point, balances it, and logs leaf/partition
// statistics — a small sequential exerciser of the library end to end,
// in the same spirit as the teacher's own cmd/main.go driver.
package main

import (
	"bytes"
	"flag"
	"log"
	"time"

	"github.com/octforest/octforest"
)

func main() {
	log.SetFlags(log.Lmicroseconds)

	depth := flag.Int("depth", 4, "max refinement level")
	periodic := flag.Bool("periodic", false, "use a periodic unit connectivity instead of a bounded one")
	flag.Parse()

	var conn *octforest.Connectivity
	if *periodic {
		conn = octforest.NewPeriodicConnectivity()
	} else {
		conn = octforest.NewUnitConnectivity()
	}

	group := octforest.LocalGroup{}
	ts := time.Now()
	forest := octforest.New(group, conn, 0, 8, initZero, nil)
	log.Printf("New: %v, leaves: %d", time.Since(ts), forest.LocalNumQuadrants())

	ts = time.Now()
	forest.RefineLevel(true, refineNearCenter, initZero, *depth)
	log.Printf("RefineLevel(%d): %v, leaves: %d", *depth, time.Since(ts), forest.LocalNumQuadrants())

	ts = time.Now()
	forest.Balance(octforest.BalanceFace, initZero)
	log.Printf("Balance: %v, leaves: %d", time.Since(ts), forest.LocalNumQuadrants())

	var buf bytes.Buffer
	if err := forest.Fprint(&buf); err != nil {
		log.Fatalf("Fprint: %v", err)
	}
	log.Printf("checksum: %08x", forest.Checksum())
	log.Printf("dump:\n%s", buf.String())

	forest.Destroy()
}

func initZero(f *octforest.Forest, tree int, o octforest.Octant, payload []byte, userData any) {
	for i := range payload {
		payload[i] = 0
	}
}

// refineNearCenter splits any octant whose cell still straddles the
// root's center point, producing a mesh refined toward the middle.
func refineNearCenter(f *octforest.Forest, tree int, o octforest.Octant, payload []byte, userData any) bool {
	const center = octforest.RootLen / 2
	qh := octforest.QLen(int(o.Level))
	return o.X <= center && center < o.X+qh &&
		o.Y <= center && center < o.Y+qh &&
		o.Z <= center && center < o.Z+qh
}
