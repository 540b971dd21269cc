// Package bvh implements the 4-ary SIMD bounding volume hierarchy used for
// O(log n) nearest-vertex lookup (spec component 4.C).
//
// Construction follows spec.md §4.C literally: at depth d the primary axis
// is d1 = d mod 3, the secondary axis d2 = (d1+1) mod 3; the item range is
// split by its median on d1 into two halves, each half split by its median
// on d2 into a quarter, and the four quarters recurse with depth+2 to
// become this node's four children. The teacher's own BVH builder
// (asset/compiler/bvh/bvh_builder.go) instead scores a surface-area
// heuristic over many candidate split points per axis and only ever
// produces a binary tree; that SAH machinery doesn't generalize to a
// spec-mandated median split (there is no "best" point to score - the
// split point *is* the median), so this builder keeps the teacher's
// top-level shape (recursive range partition over a flat index slice, node
// index reserved before recursion) but replaces the split rule itself with
// the spec's fixed two-axis median scheme.
package bvh

import (
	"math"
	"sort"

	"github.com/aock/mantis/simd"
	"github.com/aock/mantis/types"
)

// BoundedVolume is implemented by anything the builder can partition -
// unchanged in shape from the teacher's asset/compiler/bvh.BoundedVolume.
type BoundedVolume interface {
	BBox() types.AABB
	Center() types.Vec3
}

// VertexVolume adapts a single mesh vertex into a BoundedVolume, the only
// primitive this package's builder ever sees (spec.md §4.C builds one BVH
// over the mesh's vertex set).
type VertexVolume struct {
	Pos types.Vec3
	Idx uint32
}

func (v VertexVolume) BBox() types.AABB   { return types.AABB{Min: v.Pos, Max: v.Pos} }
func (v VertexVolume) Center() types.Vec3 { return v.Pos }

// noChild marks an unused child slot in a Node (a node with fewer than four
// live children pads the rest with this sentinel, plus an empty box that
// can never win a distance comparison).
const noChild = int32(math.MinInt32)

// Node is one 4-ary level of the hierarchy: three SIMD registers of child
// box minimums, three of maximums, and one of child indices. A non-negative
// Child[i] indexes Nodes; a negative one encodes leaf index ^Child[i]
// (bitwise complement, so -1 -> leaf 0, -2 -> leaf 1, ...); noChild marks a
// padding slot.
type Node struct {
	MinX, MinY, MinZ simd.F32
	MaxX, MaxY, MaxZ simd.F32
	Child            simd.I32
}

// Packet is one W-wide lane group inside a leaf's packet run. Unused lanes
// hold math.MaxFloat32 positions and index -1, so they never win a nearest query and
// decode unambiguously (spec.md §3's leaf packing rule).
type Packet struct {
	X, Y, Z simd.F32
	Idx     simd.I32
}

// Leaf is "a contiguous run of W-wide packets" (spec.md §3): PacketStart
// indexes into BVH.Packets, NumPackets gives the run length. Splitting a
// leaf into multiple packets rather than one fixed-size block is what lets
// a leaf hold up to packetsPerLeaf*simd.Width items instead of only
// simd.Width.
type Leaf struct {
	PacketStart int32
	NumPackets  int32
}

// BVH is the built hierarchy: a flat node array, a flat packet array, and a
// flat leaf array indexing runs of packets. Root uses the same encoding as
// Node.Child.
type BVH struct {
	Nodes   []Node
	Packets []Packet
	Leaves  []Leaf
	Root    int32
}

// packetsPerLeaf is spec.md §4.C's default leaf capacity in packets; a leaf
// holds up to packetsPerLeaf*simd.Width items before the builder splits
// again.
const packetsPerLeaf = 8

// Build partitions items (vertices) into a 4-ary SIMD BVH.
func Build(items []BoundedVolume) *BVH {
	if len(items) == 0 {
		return &BVH{Root: noChild}
	}

	b := &BVH{}
	b.Root = b.build(append([]BoundedVolume(nil), items...), 0)
	return b
}

// build implements spec.md §4.C's construction: below the leaf threshold,
// emit a packed leaf; otherwise median-split on the primary axis, then on
// the secondary axis within each half, and recurse on the resulting four
// quarters with depth+2. The node's own slot is appended (and so its index
// fixed) before the children recurse, matching the spec's "node index is
// assigned before recursion" requirement.
func (b *BVH) build(items []BoundedVolume, depth int) int32 {
	if len(items) <= packetsPerLeaf*simd.Width {
		return b.emitLeaf(items)
	}

	d1 := depth % 3
	d2 := (d1 + 1) % 3

	lowerHalf, upperHalf := medianSplit(items, d1)
	quarters := [4][]BoundedVolume{}
	quarters[0], quarters[1] = medianSplit(lowerHalf, d2)
	quarters[2], quarters[3] = medianSplit(upperHalf, d2)

	nodeIdx := int32(len(b.Nodes))
	b.Nodes = append(b.Nodes, Node{Child: simd.I32{noChild, noChild, noChild, noChild}})

	// Children append to the shared Nodes/Packets/Leaves slices, so they
	// are built one at a time; the parallel fan-out the teacher's builder
	// uses is for independent split-score evaluation (no shared mutable
	// output), which this construction has no equivalent of - the
	// recursion itself is the thing spec.md §4.C describes, and it
	// mutates shared flat arrays at every level.
	node := Node{}
	for i := 0; i < 4; i++ {
		box := boundsOf(quarters[i])
		ref := b.buildChild(quarters[i], depth+2)
		node.MinX.Set(i, box.Min[0])
		node.MinY.Set(i, box.Min[1])
		node.MinZ.Set(i, box.Min[2])
		node.MaxX.Set(i, box.Max[0])
		node.MaxY.Set(i, box.Max[1])
		node.MaxZ.Set(i, box.Max[2])
		node.Child.Set(i, ref)
	}
	b.Nodes[nodeIdx] = node
	return nodeIdx
}

// buildChild turns an empty quarter into a degenerate empty leaf. build
// only splits ranges larger than packetsPerLeaf*simd.Width and medianSplit
// divides by count, so every quarter it produces holds at least a quarter
// of the range and this guard is not reached from build.
func (b *BVH) buildChild(items []BoundedVolume, depth int) int32 {
	if len(items) == 0 {
		return b.emitLeaf(nil)
	}
	return b.build(items, depth)
}

// medianSplit sorts a copy of items by their center coordinate on axis and
// splits it at the median, giving the lower and upper halves spec.md §4.C's
// "partition by median" step calls for.
func medianSplit(items []BoundedVolume, axis int) (lower, upper []BoundedVolume) {
	sorted := append([]BoundedVolume(nil), items...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Center()[axis] < sorted[j].Center()[axis]
	})
	mid := len(sorted) / 2
	return sorted[:mid], sorted[mid:]
}

func boundsOf(items []BoundedVolume) types.AABB {
	box := types.EmptyAABB()
	for _, it := range items {
		box = box.ExtendBox(it.BBox())
	}
	return box
}

// emitLeaf writes items into ⌈n/W⌉ packets, padding the final packet's
// unused lanes with (MaxFloat32, MaxFloat32, MaxFloat32, -1).
func (b *BVH) emitLeaf(items []BoundedVolume) int32 {
	numPackets := (len(items) + simd.Width - 1) / simd.Width
	if numPackets == 0 {
		numPackets = 1
	}

	start := int32(len(b.Packets))
	for p := 0; p < numPackets; p++ {
		packet := Packet{
			X:   simd.DupF32(math.MaxFloat32),
			Y:   simd.DupF32(math.MaxFloat32),
			Z:   simd.DupF32(math.MaxFloat32),
			Idx: simd.DupI32(-1),
		}
		for lane := 0; lane < simd.Width; lane++ {
			i := p*simd.Width + lane
			if i >= len(items) {
				break
			}
			v := items[i].(VertexVolume)
			packet.X.Set(lane, v.Pos[0])
			packet.Y.Set(lane, v.Pos[1])
			packet.Z.Set(lane, v.Pos[2])
			packet.Idx.Set(lane, int32(v.Idx))
		}
		b.Packets = append(b.Packets, packet)
	}

	leafIdx := int32(len(b.Leaves))
	b.Leaves = append(b.Leaves, Leaf{PacketStart: start, NumPackets: int32(numPackets)})
	return ^leafIdx
}
