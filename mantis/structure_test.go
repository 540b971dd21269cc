package mantis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/aock/mantis/arena"
	"github.com/aock/mantis/types"
)

const limitCube = 1000.0

func approxEqual(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func singleTriangle(t *testing.T) *Structure {
	points := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	tris := [][3]uint32{{0, 1, 2}}
	s, err := Build(points, tris, limitCube)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

// TestBoundaryScenario1Face is spec.md §8's first literal boundary scenario.
func TestBoundaryScenario1Face(t *testing.T) {
	s := singleTriangle(t)
	res, ok := s.Closest(types.Vec3{0.5, 0.5, 1.0})
	if !ok {
		t.Fatal("Closest returned ok=false")
	}
	if res.Type != arena.Face {
		t.Errorf("type = %v, want Face", res.Type)
	}
	if !approxEqual(res.SquaredDistance, 1.0, 1e-4) {
		t.Errorf("squared_distance = %v, want 1.0", res.SquaredDistance)
	}
	want := types.Vec3{0.5, 0.5, 0}
	if !approxEqual(res.ClosestPoint[0], want[0], 1e-4) || !approxEqual(res.ClosestPoint[1], want[1], 1e-4) || !approxEqual(res.ClosestPoint[2], want[2], 1e-4) {
		t.Errorf("closest_point = %v, want %v", res.ClosestPoint, want)
	}
}

// TestBoundaryScenario2Vertex is spec.md §8's second literal boundary scenario.
func TestBoundaryScenario2Vertex(t *testing.T) {
	s := singleTriangle(t)
	res, ok := s.Closest(types.Vec3{2, 0, 0})
	if !ok {
		t.Fatal("Closest returned ok=false")
	}
	if res.Type != arena.Vertex {
		t.Errorf("type = %v, want Vertex", res.Type)
	}
	if res.PrimitiveIndex != 1 {
		t.Errorf("primitive_index = %v, want 1", res.PrimitiveIndex)
	}
	if !approxEqual(res.SquaredDistance, 1.0, 1e-4) {
		t.Errorf("squared_distance = %v, want 1.0", res.SquaredDistance)
	}
}

// TestBoundaryScenario3Edge is spec.md §8's third literal boundary scenario.
func TestBoundaryScenario3Edge(t *testing.T) {
	s := singleTriangle(t)
	res, ok := s.Closest(types.Vec3{0.5, -1, 0})
	if !ok {
		t.Fatal("Closest returned ok=false")
	}
	if res.Type != arena.Edge {
		t.Errorf("type = %v, want Edge", res.Type)
	}
	edges := s.GetEdgeVertices()
	got := edges[res.PrimitiveIndex]
	if !((got[0] == 0 && got[1] == 1) || (got[0] == 1 && got[1] == 0)) {
		t.Errorf("edge vertices = %v, want {0,1}", got)
	}
	want := types.Vec3{0.5, 0, 0}
	if !approxEqual(res.ClosestPoint[0], want[0], 1e-4) || !approxEqual(res.ClosestPoint[1], want[1], 1e-4) {
		t.Errorf("closest_point = %v, want %v", res.ClosestPoint, want)
	}
	if !approxEqual(res.SquaredDistance, 1.0, 1e-4) {
		t.Errorf("squared_distance = %v, want 1.0", res.SquaredDistance)
	}
}

// TestBoundaryScenario4CoplanarTie is spec.md §8's fourth literal boundary
// scenario: either incident face is an acceptable answer.
func TestBoundaryScenario4CoplanarTie(t *testing.T) {
	points := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}}
	tris := [][3]uint32{{0, 1, 2}, {0, 3, 1}}
	s, err := Build(points, tris, limitCube)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res, ok := s.Closest(types.Vec3{0.5, 0, 1})
	if !ok {
		t.Fatal("Closest returned ok=false")
	}
	if res.Type != arena.Face {
		t.Errorf("type = %v, want Face", res.Type)
	}
	if !approxEqual(res.SquaredDistance, 1.0, 1e-4) {
		t.Errorf("squared_distance = %v, want 1.0", res.SquaredDistance)
	}
}

// TestBoundaryScenario5TetrahedronFace is spec.md §8's fifth literal
// boundary scenario.
func TestBoundaryScenario5TetrahedronFace(t *testing.T) {
	points := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	tris := [][3]uint32{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	s, err := Build(points, tris, limitCube)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	res, ok := s.Closest(types.Vec3{0.25, 0.25, 0.25})
	if !ok {
		t.Fatal("Closest returned ok=false")
	}
	if res.Type != arena.Face {
		t.Errorf("type = %v, want Face", res.Type)
	}
	// Distance from the centroid to the plane x+y+z=1: |0.75-1|/sqrt(3) squared.
	want := float32(0.25 * 0.25 / 3)
	if !approxEqual(res.SquaredDistance, want, 1e-4) {
		t.Errorf("squared_distance = %v, want %v", res.SquaredDistance, want)
	}
}

// TestBoundaryScenario6CubeFace is spec.md §8's sixth literal boundary
// scenario.
func TestBoundaryScenario6CubeFace(t *testing.T) {
	s := unitCube(t)
	res, ok := s.Closest(types.Vec3{0.5, 0.5, 2})
	if !ok {
		t.Fatal("Closest returned ok=false")
	}
	// The query sits exactly above the top face's center, which also lies on
	// that face's diagonal split edge - either primitive is correct, as in
	// scenario 4's tie.
	if res.Type != arena.Face && res.Type != arena.Edge {
		t.Errorf("type = %v, want Face or Edge", res.Type)
	}
	if !approxEqual(res.SquaredDistance, 1.0, 1e-4) {
		t.Errorf("squared_distance = %v, want 1.0", res.SquaredDistance)
	}
	if !approxEqual(res.ClosestPoint[2], 1.0, 1e-4) {
		t.Errorf("closest_point.z = %v, want 1.0", res.ClosestPoint[2])
	}
}

func unitCube(t *testing.T) *Structure {
	points := []types.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}
	tris := [][3]uint32{
		{0, 2, 1}, {0, 3, 2}, // bottom
		{4, 5, 6}, {4, 6, 7}, // top
		{0, 1, 5}, {0, 5, 4}, // front
		{3, 6, 2}, {3, 7, 6}, // back
		{0, 4, 7}, {0, 7, 3}, // left
		{1, 2, 6}, {1, 6, 5}, // right
	}
	s, err := Build(points, tris, limitCube)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestBuildRejectsNonFiniteCoordinate(t *testing.T) {
	var zero float32
	inf := 1 / zero
	points := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, inf, 0}}
	_, err := Build(points, [][3]uint32{{0, 1, 2}}, limitCube)
	if err == nil {
		t.Fatal("expected an error for a non-finite coordinate")
	}
}

func TestBuildRejectsOutOfRangeTriangleIndex(t *testing.T) {
	points := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	_, err := Build(points, [][3]uint32{{0, 1, 5}}, limitCube)
	if err == nil {
		t.Fatal("expected an error for an out-of-range triangle index")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	s1 := unitCube(t)
	s2 := unitCube(t)

	queries := []types.Vec3{{0.5, 0.5, 2}, {2, 0.5, 0.5}, {0.5, -1, 0.5}, {0.1, 0.1, 0.1}}
	for _, q := range queries {
		r1, ok1 := s1.Closest(q)
		r2, ok2 := s2.Closest(q)
		if ok1 != ok2 || r1 != r2 {
			t.Errorf("Closest(%v) not deterministic across builds: %v vs %v", q, r1, r2)
		}
	}
}

// tetrahedronPoints returns the four corners and faces used by the
// boundary scenarios above and by the randomized oracle test below.
func tetrahedronPoints() ([]types.Vec3, [][3]uint32) {
	points := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	tris := [][3]uint32{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	return points, tris
}

func tetrahedron(t *testing.T) *Structure {
	points, tris := tetrahedronPoints()
	s, err := Build(points, tris, limitCube)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

// icosahedronMesh returns the 12 vertices and 20 faces of a regular
// icosahedron (golden-ratio construction), scaled by radius - the
// "subdivided triangle fan"-shaped mesh SPEC_FULL.md's testing section
// calls for: every vertex has exactly five incident triangles fanning
// around it, unlike the cube/tetrahedron's three.
func icosahedronMesh(radius float32) ([]types.Vec3, [][3]uint32) {
	t := float32((1.0 + math.Sqrt(5)) / 2.0)
	raw := [][3]float32{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	points := make([]types.Vec3, len(raw))
	for i, v := range raw {
		p := types.Vec3{v[0], v[1], v[2]}
		scale := radius / float32(math.Sqrt(float64(p.Dot(p))))
		points[i] = p.Mul(scale)
	}
	tris := [][3]uint32{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return points, tris
}

func icosahedron(t *testing.T) *Structure {
	points, tris := icosahedronMesh(1.0)
	s, err := Build(points, tris, limitCube)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

func TestQueryMatchesBruteForceOracle(t *testing.T) {
	meshes := []*Structure{unitCube(t), tetrahedron(t)}

	queries := []types.Vec3{
		{0.5, 0.5, 2}, {2, 0.5, 0.5}, {-1, 0.5, 0.5}, {0.3, 0.3, 0.3},
		{0.9, 0.9, 0.9}, {0.1, 0.1, 5}, {0.5, 0.5, 0.5}, {-2, -2, -2},
	}

	tol := float32(1e-3)
	for _, s := range meshes {
		for _, q := range queries {
			got, ok := s.Closest(q)
			if !ok {
				t.Fatalf("Closest(%v) returned ok=false", q)
			}
			want := bruteClosest(s, q)
			if !approxEqual(got.SquaredDistance, want.SquaredDistance, tol) {
				t.Errorf("Closest(%v).SquaredDistance = %v, brute force = %v", q, got.SquaredDistance, want.SquaredDistance)
			}
			if diff := got.ClosestPoint.DistSq(q) - got.SquaredDistance; diff > tol || diff < -tol {
				t.Errorf("Closest(%v): |q-closest_point|^2 (%v) != squared_distance (%v)", q, got.ClosestPoint.DistSq(q), got.SquaredDistance)
			}
		}
	}
}

// TestQueryMatchesBruteForceOracleRandomized is the property-style test
// SPEC_FULL.md §8 commits to: random query points around a handful of
// generated meshes, checked against the O(n) brute-force scan rather than
// a fixed hand-picked list.
func TestQueryMatchesBruteForceOracleRandomized(t *testing.T) {
	meshes := []*Structure{unitCube(t), tetrahedron(t), icosahedron(t)}
	tol := float32(1e-3)

	r := rand.New(rand.NewSource(42))
	for _, s := range meshes {
		for q := 0; q < 300; q++ {
			query := types.Vec3{
				float32(r.NormFloat64() * 3),
				float32(r.NormFloat64() * 3),
				float32(r.NormFloat64() * 3),
			}

			got, ok := s.Closest(query)
			if !ok {
				t.Fatalf("Closest(%v) returned ok=false", query)
			}
			want := bruteClosest(s, query)
			if !approxEqual(got.SquaredDistance, want.SquaredDistance, tol) {
				t.Errorf("Closest(%v).SquaredDistance = %v, brute force = %v", query, got.SquaredDistance, want.SquaredDistance)
			}
			if diff := got.ClosestPoint.DistSq(query) - got.SquaredDistance; diff > tol || diff < -tol {
				t.Errorf("Closest(%v): |q-closest_point|^2 (%v) != squared_distance (%v)", query, got.ClosestPoint.DistSq(query), got.SquaredDistance)
			}
		}
	}
}

func TestQueryIsRepeatable(t *testing.T) {
	s := unitCube(t)
	q := types.Vec3{0.3, 1.7, -0.4}
	r1, _ := s.Closest(q)
	r2, _ := s.Closest(q)
	if r1 != r2 {
		t.Errorf("repeated Closest(%v) differs: %v vs %v", q, r1, r2)
	}
}

func TestClosestOnEmptyStructureReportsNotOK(t *testing.T) {
	s := &Structure{}
	if _, ok := s.Closest(types.Vec3{}); ok {
		t.Error("Closest on an empty structure should report ok=false")
	}
}
