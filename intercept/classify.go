// Package intercept implements the Voronoi-based interception classifier
// (spec component 4.D): for every edge and every face it runs the BFS
// described in spec.md §4.D against the prebuilt Voronoi cell of each
// candidate vertex, producing the vertex-keyed (primitive, box) lists that
// package arena packs into its SIMD scan records.
//
// The fan-out style mirrors the teacher's recursive dispatch in
// asset/compiler/compiler.go (one task per input item, independent of the
// others, immutable shared state), parallelized through package
// parallelfor per spec.md §5's "fan-out parallel across primitives."
package intercept

import (
	"math"

	"github.com/aock/mantis/mesh"
	"github.com/aock/mantis/parallelfor"
	"github.com/aock/mantis/types"
	"github.com/aock/mantis/voronoi"
)

// EdgeHit and FaceHit are one vertex's contribution to an edge's or face's
// intercepting-vertex list: the primitive's local id plus the axis-aligned
// box bounding the portion of the vertex's clipped Voronoi cell that is
// strictly closer to the primitive than to the vertex.
type EdgeHit struct {
	EdgeID uint32
	Box    types.AABB
}

type FaceHit struct {
	FaceID uint32
	Box    types.AABB
}

// primitive abstracts over edges and faces for the shared BFS driver: the
// vertices to seed the queue from, the support planes to clip a candidate
// vertex's Voronoi cell by, and the squared distance from a point to the
// primitive's supporting line/plane.
type primitive interface {
	seedVertices() []uint32
	planes() []types.PlaneD
	distSq(p types.Vec3d) float64
}

type edgePrimitive struct {
	seeds []uint32
	a     types.Vec3d
	dir   types.Vec3d
	pl    []types.PlaneD
}

func (e *edgePrimitive) seedVertices() []uint32  { return e.seeds }
func (e *edgePrimitive) planes() []types.PlaneD  { return e.pl }
func (e *edgePrimitive) distSq(p types.Vec3d) float64 {
	ap := p.Sub(e.a)
	t := ap.Dot(e.dir)
	return ap.LenSq() - t*t
}

type facePrimitive struct {
	seeds []uint32
	plane types.PlaneD
	pl    []types.PlaneD
}

func (f *facePrimitive) seedVertices() []uint32 { return f.seeds }
func (f *facePrimitive) planes() []types.PlaneD { return f.pl }
func (f *facePrimitive) distSq(p types.Vec3d) float64 {
	d := f.plane.Eval(p)
	return d * d
}

type vertexHit struct {
	vertex uint32
	box    types.AABB
}

// Classify runs the full build-time classification pass and returns
// vertex-keyed intercept lists (length nbPoints), one list of edges and
// one of faces per vertex, ready for package arena to pack.
func Classify(topo *mesh.Topology, tess voronoi.Tessellator, nbPoints int) (vertexEdges [][]EdgeHit, vertexFaces [][]FaceHit) {
	pointAt := func(v uint32) types.Vec3d { return topo.Points[v] }
	cellAt := func(v uint32) voronoi.ConvexCell { return tess.CopyCell(int(v)) }
	neighborsAt := func(v uint32) []int { return tess.GetNeighbors(int(v)) }

	edgeResults := parallelfor.Collect(len(topo.Edges), func(i int) []vertexHit {
		e := topo.Edges[i]
		prim := &edgePrimitive{
			seeds: []uint32{e.A, e.B},
			a:     topo.Points[e.A],
			dir:   e.Dir(topo.Points),
			pl:    e.Planes[:e.PlaneCount],
		}
		return classifyPrimitive(prim, pointAt, cellAt, neighborsAt, nbPoints)
	})

	faceResults := parallelfor.Collect(len(topo.Faces), func(i int) []vertexHit {
		f := topo.Faces[i]
		prim := &facePrimitive{
			seeds: []uint32{f.V[0], f.V[1], f.V[2]},
			plane: f.Plane,
			pl:    f.EdgePlanes[:],
		}
		return classifyPrimitive(prim, pointAt, cellAt, neighborsAt, nbPoints)
	})

	vertexEdges = make([][]EdgeHit, nbPoints)
	for ei, hits := range edgeResults {
		for _, h := range hits {
			vertexEdges[h.vertex] = append(vertexEdges[h.vertex], EdgeHit{EdgeID: uint32(ei), Box: h.box})
		}
	}

	vertexFaces = make([][]FaceHit, nbPoints)
	for fi, hits := range faceResults {
		for _, h := range hits {
			vertexFaces[h.vertex] = append(vertexFaces[h.vertex], FaceHit{FaceID: uint32(fi), Box: h.box})
		}
	}

	return vertexEdges, vertexFaces
}

// classifyPrimitive runs the BFS of spec.md §4.D for a single primitive.
func classifyPrimitive(
	prim primitive,
	pointAt func(uint32) types.Vec3d,
	cellAt func(uint32) voronoi.ConvexCell,
	neighborsAt func(uint32) []int,
	nbPoints int,
) []vertexHit {
	visited := make(map[uint32]bool, 8)
	queue := make([]uint32, 0, 8)
	for _, v := range prim.seedVertices() {
		if !visited[v] {
			visited[v] = true
			queue = append(queue, v)
		}
	}

	planes := prim.planes()
	var hits []vertexHit

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		cell := cellAt(v)
		for _, pl := range planes {
			cell.ClipByPlane(pl, -1)
		}
		cell.ComputeGeometry()
		if cell.Empty() {
			continue
		}

		triangles := walkTriangles(&cell)
		if len(triangles) == 0 {
			continue
		}

		pv := pointAt(v)
		inside := make(map[int]bool, len(triangles))
		box := types.EmptyAABBd()
		intercepts := false

		for _, t := range triangles {
			p := cell.TrianglePoint(t)
			isIn := prim.distSq(p) < p.DistSq(pv)
			inside[t] = isIn
			if isIn {
				intercepts = true
				box = box.Extend(p)
			}
		}

		if !intercepts {
			continue
		}

		seen := make(map[[2]int]bool)
		for _, t := range triangles {
			for k := 0; k < 3; k++ {
				adj := cell.TriangleAdjacent(t, k)
				if adj == voronoi.EndOfList {
					continue
				}
				key := undirectedKey(t, adj)
				if seen[key] {
					continue
				}
				seen[key] = true
				if inside[t] != inside[adj] {
					mid := bisect(cell.TrianglePoint(t), cell.TrianglePoint(adj), prim, pv)
					box = box.Extend(mid)
				}
			}
		}

		hits = append(hits, vertexHit{vertex: v, box: box.Float32()})

		for _, nb := range neighborsAt(v) {
			if nb < 0 || nb >= nbPoints {
				continue
			}
			nv := uint32(nb)
			if !visited[nv] {
				visited[nv] = true
				queue = append(queue, nv)
			}
		}
	}

	return hits
}

func undirectedKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

// bisect implements spec.md §4.D's bisection: a and b straddle the
// inside/outside boundary (dist(·,X)² compared to ‖·−pv‖²); T halvings
// bring the bracket to within τ=1e-5 of world units.
func bisect(a, b types.Vec3d, prim primitive, pv types.Vec3d) types.Vec3d {
	const tau = 1e-5
	classify := func(p types.Vec3d) bool { return prim.distSq(p) < p.DistSq(pv) }

	aInside := classify(a)
	length := a.Sub(b).Len()
	steps := 1
	if length > tau {
		steps = int(math.Ceil(math.Log2(length / tau)))
		if steps < 1 {
			steps = 1
		}
	}

	for i := 0; i < steps; i++ {
		mid := a.Add(b).Mul(0.5)
		if classify(mid) == aInside {
			a = mid
		} else {
			b = mid
		}
	}
	return a.Add(b).Mul(0.5)
}
