package mantis

import (
	"math"

	"github.com/aock/mantis/arena"
	"github.com/aock/mantis/types"
)

// bruteClosest is the O(n) exhaustive reference scan of spec.md §8's
// invariant 1: the exact minimum squared distance from q to every vertex,
// every edge segment and every face triangle of s.
func bruteClosest(s *Structure, q types.Vec3) arena.Result {
	best := arena.Result{SquaredDistance: math.MaxFloat32}

	for i, p := range s.positions {
		if d := p.DistSq(q); d < best.SquaredDistance {
			best = arena.Result{SquaredDistance: d, ClosestPoint: p, PrimitiveIndex: uint32(i), Type: arena.Vertex}
		}
	}

	for i, e := range s.topo.Edges {
		a, b := s.positions[e.A], s.positions[e.B]
		dir := b.Sub(a)
		lenSq := dir.Dot(dir)
		t := q.Sub(a).Dot(dir) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		proj := a.Add(dir.Mul(t))
		if d := proj.DistSq(q); d < best.SquaredDistance {
			best = arena.Result{SquaredDistance: d, ClosestPoint: proj, PrimitiveIndex: uint32(i), Type: arena.Edge}
		}
	}

	for i, f := range s.topo.Faces {
		proj, d, ok := closestPointOnTriangle(s.positions[f.V[0]], s.positions[f.V[1]], s.positions[f.V[2]], q)
		if ok && d < best.SquaredDistance {
			best = arena.Result{SquaredDistance: d, ClosestPoint: proj, PrimitiveIndex: uint32(i), Type: arena.Face}
		}
	}

	return best
}

// closestPointOnTriangle projects q onto the triangle's plane and reports
// ok=false when the projection falls outside the triangle (the edge/vertex
// cases are already covered by the edge and vertex scans above, so
// bruteClosest only needs the strictly-interior face case here).
func closestPointOnTriangle(a, b, c, q types.Vec3) (types.Vec3, float32, bool) {
	ab := b.Sub(a)
	ac := c.Sub(a)
	normal := ab.Cross(ac).Normalize()
	if normal.LenSq() == 0 {
		return types.Vec3{}, 0, false
	}

	d := normal.Dot(q.Sub(a))
	proj := q.Sub(normal.Mul(d))

	// Barycentric inside-test via sub-triangle cross products.
	edges := [3][2]types.Vec3{{a, b}, {b, c}, {c, a}}
	for _, e := range edges {
		edgeDir := e[1].Sub(e[0])
		toProj := proj.Sub(e[0])
		if edgeDir.Cross(toProj).Dot(normal) < 0 {
			return types.Vec3{}, 0, false
		}
	}

	return proj, proj.DistSq(q), true
}
