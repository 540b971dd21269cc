// Package mesh implements the topology builder (spec component 4.B):
// vertex deduplication, unique-edge enumeration, and the per-face and
// per-edge support planes the interception classifier (package intercept)
// clips Voronoi cells against.
package mesh

import (
	"fmt"

	"github.com/aock/mantis/types"
)

// Edge is an unordered pair (A, B) with A < B, carrying up to four inward
// clipping planes: two end caps plus up to two side planes borrowed from
// incident faces (spec.md §3).
type Edge struct {
	A, B uint32

	// Planes holds the clipping planes; only the first PlaneCount entries
	// are meaningful. PlaneCount is in {2,3,4} - 3 for a boundary edge with
	// a single incident face, 4 for an interior (two-sided) edge. A
	// non-manifold edge (more than two incident faces) caps extra side
	// planes silently, per spec.md §9's "open question" resolution.
	Planes     [4]types.PlaneD
	PlaneCount int
}

// Dir returns the unit direction from A to B in double precision.
func (e Edge) Dir(points []types.Vec3d) types.Vec3d {
	return points[e.B].Sub(points[e.A]).Normalize()
}

// Face is an ordered triple of vertex indices plus its derived plane and
// three inward edge planes (spec.md §3).
type Face struct {
	V [3]uint32

	// Plane is the face's supporting plane, oriented so the triangle's
	// interior lies in its positive half-space along with everything in
	// front of the face.
	Plane types.PlaneD

	// EdgePlanes[i] is the inward plane over the edge opposite vertex i
	// (i.e. the edge connecting V[(i+1)%3] and V[(i+2)%3]); together the
	// three bound the infinite triangular prism over the face.
	EdgePlanes [3]types.PlaneD

	// EdgeIDs[i] indexes Topology.Edges for the same opposite-vertex edge.
	EdgeIDs [3]uint32
}

// edgeOfFace returns the two vertex indices of the face edge opposite
// vertex i, and the vertex index itself (the "third" vertex for that
// edge).
func edgeOfFace(f [3]uint32, i int) (a, b, opposite uint32) {
	j, k := (i+1)%3, (i+2)%3
	return f[j], f[k], f[i]
}

// Topology is the immutable build-time output of the mesh topology
// builder: deduplicated points plus derived faces and edges.
type Topology struct {
	Points []types.Vec3d
	Faces  []Face
	Edges  []Edge
}

type edgeKey struct{ a, b uint32 }

func normalizedKey(a, b uint32) edgeKey {
	if a < b {
		return edgeKey{a, b}
	}
	return edgeKey{b, a}
}

// BuildTopology derives faces and edges from a deduplicated point array and
// a triangle index array, per spec.md §4.B. Callers must dedup points
// first (package mesh's own Dedup, or an equivalent upstream step) - this
// function only validates index bounds and triangle degeneracy.
func BuildTopology(points []types.Vec3d, triangles [][3]uint32) (*Topology, error) {
	topo := &Topology{
		Points: points,
		Faces:  make([]Face, len(triangles)),
	}

	edgeIndex := make(map[edgeKey]int, len(triangles)*3/2)

	// First pass: validate, compute face planes, and gather unique edges
	// with their end-cap planes, inserting under the normalized key as
	// described in spec.md §4.B.
	for fi, tri := range triangles {
		for _, idx := range tri {
			if int(idx) >= len(points) {
				return nil, fmt.Errorf("mesh: triangle %d references out-of-range vertex %d", fi, idx)
			}
		}
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[0] == tri[2] {
			return nil, fmt.Errorf("mesh: triangle %d is degenerate (repeated vertex)", fi)
		}

		p0, p1, p2 := points[tri[0]], points[tri[1]], points[tri[2]]
		e1 := p1.Sub(p0)
		e2 := p2.Sub(p0)
		normal := e1.Cross(e2)
		if normal.LenSq() < 1e-20 {
			return nil, fmt.Errorf("mesh: triangle %d is degenerate (collinear vertices)", fi)
		}
		normal = normal.Normalize()

		face := Face{V: tri, Plane: types.NewPlaneD(normal, p0)}

		for i := 0; i < 3; i++ {
			a, b, opp := edgeOfFace(tri, i)
			key := normalizedKey(a, b)

			ei, exists := edgeIndex[key]
			if !exists {
				ei = len(topo.Edges)
				edgeIndex[key] = ei
				pa, pb := points[key.a], points[key.b]
				dir := pb.Sub(pa).Normalize()
				topo.Edges = append(topo.Edges, Edge{
					A: key.a,
					B: key.b,
					Planes: [4]types.PlaneD{
						types.NewPlaneD(dir, pa),
						types.NewPlaneD(dir.Mul(-1), pb),
					},
					PlaneCount: 2,
				})
			}
			face.EdgeIDs[i] = uint32(ei)

			// Inward edge-plane opposite the third vertex: normal
			// perpendicular to the face normal and to the edge, oriented
			// so the opposite vertex lies on the positive side - computed
			// by sign-correcting a candidate cross product rather than
			// relying on a fixed winding convention, since clip_by_plane
			// correctness only depends on the resulting orientation.
			edgeDir := points[b].Sub(points[a])
			cand := edgeDir.Cross(normal).Normalize()
			plane := types.NewPlaneD(cand, points[a])
			if plane.Eval(points[opp]) < 0 {
				plane = plane.Neg()
			}
			face.EdgePlanes[i] = plane
		}

		topo.Faces[fi] = face
	}

	// Second pass: each face contributes its negated opposite-vertex edge
	// plane as a side plane to that edge, capped at four planes total
	// (spec.md §4.B, §9).
	for _, face := range topo.Faces {
		for i := 0; i < 3; i++ {
			ei := face.EdgeIDs[i]
			edge := &topo.Edges[ei]
			if edge.PlaneCount >= len(edge.Planes) {
				continue
			}
			edge.Planes[edge.PlaneCount] = face.EdgePlanes[i].Neg()
			edge.PlaneCount++
		}
	}

	return topo, nil
}

// NumVertices, NumEdges, NumFaces are small introspection helpers mirrored
// by the top-level mantis.Structure accessors (spec.md §6.1).
func (t *Topology) NumVertices() int { return len(t.Points) }
func (t *Topology) NumEdges() int    { return len(t.Edges) }
func (t *Topology) NumFaces() int    { return len(t.Faces) }
