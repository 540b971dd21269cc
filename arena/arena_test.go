package arena

import (
	"math"
	"testing"

	"github.com/aock/mantis/bvh"
	"github.com/aock/mantis/intercept"
	"github.com/aock/mantis/mesh"
	"github.com/aock/mantis/types"
	"github.com/aock/mantis/voronoi"
)

func tetrahedron(t *testing.T) (*mesh.Topology, []types.Vec3d) {
	points := []types.Vec3d{
		types.XYZd(0, 0, 0),
		types.XYZd(1, 0, 0),
		types.XYZd(0, 1, 0),
		types.XYZd(0, 0, 1),
	}
	tris := [][3]uint32{
		{0, 1, 2},
		{0, 1, 3},
		{0, 2, 3},
		{1, 2, 3},
	}
	topo, err := mesh.BuildTopology(points, tris)
	if err != nil {
		t.Fatalf("BuildTopology: %v", err)
	}
	return topo, points
}

func buildArena(t *testing.T) (*Arena, *bvh.BVH, []types.Vec3) {
	topo, points := tetrahedron(t)

	tess := voronoi.NewReference(100)
	tess.SetVertices(points)
	if err := tess.Compute(); err != nil {
		t.Fatalf("Compute: %v", err)
	}

	vertexEdges, vertexFaces := intercept.Classify(topo, tess, len(points))
	a := Build(topo, vertexEdges, vertexFaces)

	positions := make([]types.Vec3, len(points))
	items := make([]bvh.BoundedVolume, len(points))
	for i, p := range points {
		positions[i] = p.Vec3()
		items[i] = bvh.VertexVolume{Pos: positions[i], Idx: uint32(i)}
	}
	tree := bvh.Build(items)

	return a, tree, positions
}

func bruteClosestDistSq(topo *mesh.Topology, q types.Vec3) float32 {
	best := float32(math.MaxFloat32)

	for _, p := range topo.Points {
		if d := p.Vec3().DistSq(q); d < best {
			best = d
		}
	}
	for _, e := range topo.Edges {
		a, b := topo.Points[e.A].Vec3(), topo.Points[e.B].Vec3()
		dir := b.Sub(a)
		lenSq := dir.Dot(dir)
		t := q.Sub(a).Dot(dir) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		proj := a.Add(dir.Mul(t))
		if d := proj.DistSq(q); d < best {
			best = d
		}
	}
	for _, f := range topo.Faces {
		// Closest point on the face's plane, accepted only when it falls
		// inside the triangle's three inward edge planes - good enough as a
		// brute-force oracle here because the tetrahedron's faces are small
		// and convex.
		plane := f.Plane.Float32()
		d := plane.Eval(q)
		proj := q.Sub(plane.Normal().Mul(d))

		inside := true
		for _, ep := range f.EdgePlanes {
			if ep.Float32().Eval(proj) < 0 {
				inside = false
				break
			}
		}
		if inside {
			if dd := proj.DistSq(q); dd < best {
				best = dd
			}
		}
	}
	return best
}

func TestQueryMatchesVertexWhenQueryIsVertex(t *testing.T) {
	a, tree, positions := buildArena(t)

	res, ok := a.Query(tree, positions, positions[0])
	if !ok {
		t.Fatal("Query returned ok=false")
	}
	if res.SquaredDistance > 1e-6 {
		t.Errorf("expected ~0 distance querying an exact vertex, got %v (type=%v idx=%v)", res.SquaredDistance, res.Type, res.PrimitiveIndex)
	}
}

func TestQueryNeverBeatsBruteForce(t *testing.T) {
	topo, _ := tetrahedron(t)
	a, tree, positions := buildArena(t)

	queries := []types.Vec3{
		{0.2, 0.2, 0.2},
		{2, 2, 2},
		{-1, -1, -1},
		{0.5, 0.5, 0},
		{0.1, 0.1, 3},
	}

	for _, q := range queries {
		res, ok := a.Query(tree, positions, q)
		if !ok {
			t.Fatalf("Query(%v) returned ok=false", q)
		}
		brute := bruteClosestDistSq(topo, q)
		if res.SquaredDistance < brute-1e-4 {
			t.Errorf("Query(%v) = %v is closer than brute-force oracle %v", q, res.SquaredDistance, brute)
		}
	}
}

func TestPackedRecordMinXIsNondecreasing(t *testing.T) {
	a, _, _ := buildArena(t)

	for _, va := range a.Vertices {
		for _, rec := range va.Edges {
			for i := 1; i < 4; i++ {
				if rec.MinX.Get(i) < rec.MinX.Get(i-1) {
					t.Errorf("edge record min_x not nondecreasing: lane %d = %v < lane %d = %v", i, rec.MinX.Get(i), i-1, rec.MinX.Get(i-1))
				}
			}
		}
		for _, rec := range va.Faces {
			for i := 1; i < 4; i++ {
				if rec.MinX.Get(i) < rec.MinX.Get(i-1) {
					t.Errorf("face record min_x not nondecreasing: lane %d = %v < lane %d = %v", i, rec.MinX.Get(i), i-1, rec.MinX.Get(i-1))
				}
			}
		}
	}
}
