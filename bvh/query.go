package bvh

import (
	"github.com/aock/mantis/simd"
	"github.com/aock/mantis/types"
)

// childDistSq computes, for all four children of node at once, the squared
// distance from q to each child's box (0 if q is inside it) - spec.md
// §4.C's per-node SIMD distance test.
func childDistSq(node *Node, q types.Vec3) simd.F32 {
	zero := simd.DupF32(0)
	qx, qy, qz := simd.DupF32(q[0]), simd.DupF32(q[1]), simd.DupF32(q[2])

	dx := simd.Max(simd.Max(simd.Sub(node.MinX, qx), simd.Sub(qx, node.MaxX)), zero)
	dy := simd.Max(simd.Max(simd.Sub(node.MinY, qy), simd.Sub(qy, node.MaxY)), zero)
	dz := simd.Max(simd.Max(simd.Sub(node.MinZ, qz), simd.Sub(qz, node.MaxZ)), zero)

	return simd.Add(simd.Add(simd.Mul(dx, dx), simd.Mul(dy, dy)), simd.Mul(dz, dz))
}

// sortChildOrder returns the indices 0..3 ordered by ascending dist, using
// the fixed 5-comparator compare-swap network (0,1)(2,3)(0,2)(1,3)(1,2) -
// sufficient to fully sort four elements with the same comparator sequence
// for every input.
func sortChildOrder(dist simd.F32) [4]int {
	order := [4]int{0, 1, 2, 3}
	d := dist
	swap := func(i, j int) {
		if d[j] < d[i] {
			d[i], d[j] = d[j], d[i]
			order[i], order[j] = order[j], order[i]
		}
	}
	swap(0, 1)
	swap(2, 3)
	swap(0, 2)
	swap(1, 3)
	swap(1, 2)
	return order
}

const maxStackDepth = 64

type stackEntry struct {
	ref    int32
	distSq float32
}

// Nearest returns the index (as stored via VertexVolume.Idx at build time)
// and squared distance of the vertex in b closest to q. ok is false only
// for an empty tree.
func (b *BVH) Nearest(q types.Vec3) (idx uint32, distSq float32, ok bool) {
	if b.Root == noChild {
		return 0, 0, false
	}

	var stack [maxStackDepth]stackEntry
	sp := 0
	stack[sp] = stackEntry{ref: b.Root, distSq: 0}
	sp++

	best := float32(-1)
	var bestIdx uint32
	found := false

	for sp > 0 {
		sp--
		entry := stack[sp]
		if found && entry.distSq > best {
			continue
		}

		if entry.ref >= 0 {
			node := &b.Nodes[entry.ref]
			dist := childDistSq(node, q)
			order := sortChildOrder(dist)
			// Push in far-to-near order so the nearest child is popped
			// (and therefore explored) first.
			for k := 3; k >= 0; k-- {
				i := order[k]
				if node.Child.Get(i) == noChild {
					continue
				}
				if found && dist.Get(i) > best {
					continue
				}
				if sp >= maxStackDepth {
					continue
				}
				stack[sp] = stackEntry{ref: node.Child.Get(i), distSq: dist.Get(i)}
				sp++
			}
			continue
		}

		leaf := &b.Leaves[^entry.ref]
		for pk := int32(0); pk < leaf.NumPackets; pk++ {
			packet := &b.Packets[leaf.PacketStart+pk]
			for i := 0; i < simd.Width; i++ {
				vi := packet.Idx.Get(i)
				if vi < 0 {
					continue
				}
				dx := packet.X.Get(i) - q[0]
				dy := packet.Y.Get(i) - q[1]
				dz := packet.Z.Get(i) - q[2]
				d := dx*dx + dy*dy + dz*dz
				if !found || d < best {
					found = true
					best = d
					bestIdx = uint32(vi)
				}
			}
		}
	}

	return bestIdx, best, found
}
