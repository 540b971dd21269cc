// Package voronoi implements the external Voronoi/Laguerre tessellator
// contract spec.md §6.2 treats as a black box, plus a self-contained
// reference implementation behind the same interface (SPEC_FULL.md §6.2).
//
// ConvexCell mirrors the triangulated-boundary convex polyhedron interface
// spec.md §6.2 names (nb_v/vertex_triangle/triangle_point/
// triangle_adjacent/triangle_find_vertex/END_OF_LIST): each "triangle" is a
// vertex of the polyhedron, identified by the three clipping planes whose
// mutual intersection produced it, and triangles adjacent across a shared
// edge point at each other the way geogram/voro++'s dual representation
// does. The cell/vertex accessor shape (offset-style lookups by index) is
// the one `2dChan-s2voronoi`'s Cell type uses for its own diagram.
//
// Where this reference implementation differs from a production
// tessellator: ComputeGeometry rebuilds the triangle list from scratch by
// brute-force enumeration of feasible plane triples rather than
// incrementally re-triangulating only the region a new plane actually
// cuts. See DESIGN.md - spec.md explicitly scopes tessellator performance
// and robustness as a non-goal, only its external contract is load-bearing.
package voronoi

import "github.com/aock/mantis/types"

// EndOfList is the VBW::END_OF_LIST sentinel from spec.md §4 - returned by
// any adjacency/lookup accessor that has no answer.
const EndOfList = -1

// clipPlane is one of a cell's bounding half-spaces. NeighborSite is the
// site on the other side of the plane ("Voronoi neighbor"); the cell's
// initial bounding-cube planes use a NeighborSite at or past the tracked
// site count so callers can filter them out exactly like spec.md §4's
// auxiliary-corner-site policy.
type clipPlane struct {
	Plane        types.PlaneD
	NeighborSite int
}

// Triangle is one vertex of the clipped polyhedron: P holds the three
// plane indices whose intersection it is, Adj[k] is the triangle sharing
// the edge opposite P[k] (the edge lying on planes P[(k+1)%3] and
// P[(k+2)%3]), or EndOfList if that edge borders nothing (shouldn't happen
// for a closed, non-empty cell).
type Triangle struct {
	P     [3]int
	Adj   [3]int
	Point types.Vec3d
}

// ConvexCell is a single site's Laguerre/Voronoi cell under construction.
type ConvexCell struct {
	planes    []clipPlane
	triangles []Triangle
	dirty     bool
	empty     bool
}

func newBoundingCube(site types.Vec3d, halfExtent float64, auxNeighborBase int) *ConvexCell {
	c := &ConvexCell{dirty: true}
	face := func(normal types.Vec3d, offset types.Vec3d, aux int) clipPlane {
		return clipPlane{Plane: types.NewPlaneD(normal, site.Add(offset)), NeighborSite: auxNeighborBase + aux}
	}
	h := halfExtent
	c.planes = []clipPlane{
		face(types.XYZd(-1, 0, 0), types.XYZd(h, 0, 0), 0),
		face(types.XYZd(1, 0, 0), types.XYZd(-h, 0, 0), 1),
		face(types.XYZd(0, -1, 0), types.XYZd(0, h, 0), 2),
		face(types.XYZd(0, 1, 0), types.XYZd(0, -h, 0), 3),
		face(types.XYZd(0, 0, -1), types.XYZd(0, 0, h), 4),
		face(types.XYZd(0, 0, 1), types.XYZd(0, 0, -h), 5),
	}
	return c
}

// ClipByPlane intersects the cell with plane's positive half-space,
// recording neighborSite as the site that produced it (spec.md §6.2's
// `ConvexCell.clip_by_plane(plane)`). Geometry is recomputed lazily, on the
// next call that needs it.
func (c *ConvexCell) ClipByPlane(plane types.PlaneD, neighborSite int) {
	c.planes = append(c.planes, clipPlane{Plane: plane, NeighborSite: neighborSite})
	c.dirty = true
}

// ComputeGeometry rebuilds the triangle (vertex) list and its adjacency
// from the current plane set. A clipping pass that leaves no feasible
// vertex marks the cell Empty, matching spec.md §9's "a clipping that
// yields an empty cell contributes nothing."
func (c *ConvexCell) ComputeGeometry() {
	if !c.dirty {
		return
	}
	c.dirty = false

	const eps = 1e-9
	n := len(c.planes)
	c.triangles = c.triangles[:0]

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := j + 1; k < n; k++ {
				p, ok := intersect3(c.planes[i].Plane, c.planes[j].Plane, c.planes[k].Plane)
				if !ok {
					continue
				}
				feasible := true
				for m := 0; m < n; m++ {
					if m == i || m == j || m == k {
						continue
					}
					if c.planes[m].Plane.Eval(p) < -eps {
						feasible = false
						break
					}
				}
				if feasible {
					c.triangles = append(c.triangles, Triangle{P: [3]int{i, j, k}, Point: p, Adj: [3]int{EndOfList, EndOfList, EndOfList}})
				}
			}
		}
	}

	for a := range c.triangles {
		for k := 0; k < 3; k++ {
			q1 := c.triangles[a].P[(k+1)%3]
			q2 := c.triangles[a].P[(k+2)%3]
			for b := range c.triangles {
				if b == a {
					continue
				}
				if hasPlane(c.triangles[b], q1) && hasPlane(c.triangles[b], q2) {
					c.triangles[a].Adj[k] = b
					break
				}
			}
		}
	}

	c.empty = len(c.triangles) == 0
}

func hasPlane(t Triangle, plane int) bool {
	return t.P[0] == plane || t.P[1] == plane || t.P[2] == plane
}

// intersect3 solves for the point common to three planes via Cramer's
// rule expressed with cross products; ok is false if the planes are
// (near-)parallel and have no unique intersection.
func intersect3(p1, p2, p3 types.PlaneD) (types.Vec3d, bool) {
	n2xn3 := p2.N.Cross(p3.N)
	det := p1.N.Dot(n2xn3)
	if det > -1e-12 && det < 1e-12 {
		return types.Vec3d{}, false
	}
	n3xn1 := p3.N.Cross(p1.N)
	n1xn2 := p1.N.Cross(p2.N)
	sum := n2xn3.Mul(p1.D).Add(n3xn1.Mul(p2.D)).Add(n1xn2.Mul(p3.D))
	return sum.Mul(1.0 / det), true
}

// NbV is spec.md §6.2's `nb_v()`: the number of active bounding planes
// ("global vertices" in VBW's Delaunay-dual terminology).
func (c *ConvexCell) NbV() int {
	c.ComputeGeometry()
	return len(c.planes)
}

// VertexTriangle is `vertex_triangle(v)`: some triangle incident to plane
// v, usable as a walk seed via TriangleAdjacent, or EndOfList if v borders
// no surviving vertex.
func (c *ConvexCell) VertexTriangle(v int) int {
	c.ComputeGeometry()
	for t := range c.triangles {
		if hasPlane(c.triangles[t], v) {
			return t
		}
	}
	return EndOfList
}

// TrianglePoint is `triangle_point(t)`: the 3D position of vertex t.
func (c *ConvexCell) TrianglePoint(t int) types.Vec3d {
	c.ComputeGeometry()
	return c.triangles[t].Point
}

// TriangleAdjacent is `triangle_adjacent(t, k)`.
func (c *ConvexCell) TriangleAdjacent(t, k int) int {
	c.ComputeGeometry()
	return c.triangles[t].Adj[k]
}

// TriangleFindVertex is `triangle_find_vertex(t, v)`: the local index
// (0..2) of plane v within triangle t's defining triple, or EndOfList.
func (c *ConvexCell) TriangleFindVertex(t, v int) int {
	c.ComputeGeometry()
	for k, p := range c.triangles[t].P {
		if p == v {
			return k
		}
	}
	return EndOfList
}

// NeighborSite returns the site that produced plane v (a value >= the
// tessellator's site count marks an auxiliary bounding plane).
func (c *ConvexCell) NeighborSite(v int) int {
	return c.planes[v].NeighborSite
}

// Empty is `empty()`.
func (c *ConvexCell) Empty() bool {
	c.ComputeGeometry()
	return c.empty
}
