// Package mantis is the top-level callable surface (spec.md §6.1): Build
// wires together topology, tessellation, the nearest-vertex BVH,
// interception classification and arena packing into an immutable
// Structure; Closest runs the query-time scan against it.
//
// The thin-wrapper-over-a-pipeline shape mirrors the teacher's
// renderer/renderer.go (a narrow public interface backed by a
// defaultRenderer struct that owns everything the interface needs).
package mantis

import (
	"github.com/aock/mantis/arena"
	"github.com/aock/mantis/bvh"
	"github.com/aock/mantis/intercept"
	"github.com/aock/mantis/log"
	"github.com/aock/mantis/mesh"
	"github.com/aock/mantis/types"
	"github.com/aock/mantis/voronoi"
)

var logger = log.New("mantis")

// PrimitiveType re-exports package arena's result tag so callers never need
// to import arena directly.
type PrimitiveType = arena.PrimitiveType

const (
	Vertex = arena.Vertex
	Edge   = arena.Edge
	Face   = arena.Face
)

// Result is the decoded outcome of Closest, matching spec.md §6.1's
// closest(q) return shape.
type Result = arena.Result

// Structure is the built, immutable acceleration structure. Queries are
// safe to run concurrently from multiple goroutines (spec.md §5: "queries
// are single-threaded; concurrent queries ... are safe because the built
// structure is immutable").
type Structure struct {
	topo      *mesh.Topology
	bvh       *bvh.BVH
	arena     *arena.Arena
	positions []types.Vec3
}

// Build runs the full build pipeline of spec.md §2 over points and
// triangles: dedup, topology derivation, Voronoi tessellation,
// nearest-vertex BVH construction, interception classification and arena
// packing. limitCubeLen fixes the half-extent of the auxiliary bounding
// cube (spec.md §6.1) and must exceed the mesh's world extent.
func Build(points []types.Vec3, triangles [][3]uint32, limitCubeLen float32) (*Structure, error) {
	if limitCubeLen <= 0 {
		return nil, invalidInput("limit_cube_len must be positive, got %v", limitCubeLen)
	}
	if l2 := float64(limitCubeLen) * float64(limitCubeLen); l2 >= 1e18 {
		return nil, invalidInput("limit_cube_len squared (%v) overflows the single-precision-safe range", l2)
	}

	pointsD := make([]types.Vec3d, len(points))
	for i, p := range points {
		pointsD[i] = types.Vec3dFromVec3(p)
	}

	// mesh.Dedup validates finiteness and triangle index bounds.
	dedupPoints, dedupTriangles, err := mesh.Dedup(pointsD, triangles, 1e-9)
	if err != nil {
		return nil, invalidInput("dedup: %v", err)
	}

	topo, err := mesh.BuildTopology(dedupPoints, dedupTriangles)
	if err != nil {
		return nil, invalidInput("topology: %v", err)
	}
	logger.Infof("built topology: %d vertices, %d edges, %d faces", topo.NumVertices(), topo.NumEdges(), topo.NumFaces())

	tess := voronoi.NewReference(float64(limitCubeLen))
	tess.SetVertices(topo.Points)
	if err := tess.Compute(); err != nil {
		return nil, &TessellatorError{Err: err}
	}

	bvhItems := make([]bvh.BoundedVolume, len(topo.Points))
	positions := make([]types.Vec3, len(topo.Points))
	for i, p := range topo.Points {
		pos := p.Vec3()
		positions[i] = pos
		bvhItems[i] = bvh.VertexVolume{Pos: pos, Idx: uint32(i)}
	}
	tree := bvh.Build(bvhItems)

	vertexEdges, vertexFaces := intercept.Classify(topo, tess, len(topo.Points))
	logger.Debugf("classified interception lists for %d vertices", len(topo.Points))

	a := arena.Build(topo, vertexEdges, vertexFaces)

	return &Structure{
		topo:      topo,
		bvh:       tree,
		arena:     a,
		positions: positions,
	}, nil
}

// Closest runs the query-time scan of spec.md §4.E against q. On an empty
// structure Closest reports ok=false rather than panicking. q is not
// checked for finiteness; the result for a non-finite q is unspecified.
func (s *Structure) Closest(q types.Vec3) (Result, bool) {
	if len(s.positions) == 0 {
		return Result{}, false
	}
	return s.arena.Query(s.bvh, s.positions, q)
}

func (s *Structure) NumVertices() int { return s.topo.NumVertices() }
func (s *Structure) NumEdges() int    { return s.topo.NumEdges() }
func (s *Structure) NumFaces() int    { return s.topo.NumFaces() }

// GetPositions returns every vertex position in single precision.
func (s *Structure) GetPositions() []types.Vec3 {
	out := make([]types.Vec3, len(s.positions))
	copy(out, s.positions)
	return out
}

// GetFaces returns each face's three vertex indices, in triangle order.
func (s *Structure) GetFaces() [][3]uint32 {
	out := make([][3]uint32, len(s.topo.Faces))
	for i, f := range s.topo.Faces {
		out[i] = f.V
	}
	return out
}

// GetEdgeVertices returns each edge's two endpoint vertex indices.
func (s *Structure) GetEdgeVertices() [][2]uint32 {
	out := make([][2]uint32, len(s.topo.Edges))
	for i, e := range s.topo.Edges {
		out[i] = [2]uint32{e.A, e.B}
	}
	return out
}

// GetFaceEdges returns the three edge ids per face, in the triangle's
// vertex order (spec.md §6.1).
func (s *Structure) GetFaceEdges() [][3]uint32 {
	out := make([][3]uint32, len(s.topo.Faces))
	for i, f := range s.topo.Faces {
		out[i] = f.EdgeIDs
	}
	return out
}

// bboxDiagSq returns the squared diagonal length of the mesh's bounding
// box, the scale of spec.md §8's "tolerance ~1e-5 * bbox_diag^2". The
// tests in this package use a fixed absolute tolerance and do not call it.
func (s *Structure) bboxDiagSq() float32 {
	box := types.EmptyAABB()
	for _, p := range s.positions {
		box = box.Extend(p)
	}
	diag := box.Diag()
	return diag * diag
}
