package voronoi

import (
	"sort"

	"github.com/aock/mantis/types"
)

// Tessellator is the external black-box contract spec.md §6.2 requires:
// set the site set, compute the diagram, then read back per-site cells and
// neighbor lists. The interception classifier (package intercept) is the
// only consumer.
type Tessellator interface {
	SetVertices(points []types.Vec3d)
	Compute() error
	CopyCell(v int) ConvexCell
	GetNeighbors(v int) []int
}

// Reference is a self-contained, unweighted substitute for the
// numerically-robust weighted tessellator spec.md §6.2 treats as a
// black box (SPEC_FULL.md §6.2) - every site's cell is built by clipping a
// bounding cube against the perpendicular bisector planes of successively
// farther sites, stopping once the next candidate's bisector plane can no
// longer reach the cell's current extent (the same triangle-inequality
// pruning `23skdu-longbow`'s VP-tree uses for radius search, applied here
// to half-space clipping instead of point membership).
type Reference struct {
	halfExtent float64

	sites     []types.Vec3d
	cells     []ConvexCell
	neighbors [][]int
}

// NewReference constructs a tessellator that seeds every cell with a cube
// of the given half-extent, which must exceed the mesh's world extent
// (spec.md §6.1's `limit_cube_len`) so no real bisector plane ever reaches
// the cube's own faces.
func NewReference(halfExtent float64) *Reference {
	return &Reference{halfExtent: halfExtent}
}

func (r *Reference) SetVertices(points []types.Vec3d) {
	r.sites = points
}

// Compute builds every site's cell. It never fails in this implementation
// (a production tessellator's Compute can; the error return is part of the
// black-box contract so callers don't special-case this one).
func (r *Reference) Compute() error {
	n := len(r.sites)
	r.cells = make([]ConvexCell, n)
	r.neighbors = make([][]int, n)

	type candidate struct {
		idx  int
		dist2 float64
	}

	for i, site := range r.sites {
		cell := newBoundingCube(site, r.halfExtent, n)

		candidates := make([]candidate, 0, n-1)
		for j, other := range r.sites {
			if j == i {
				continue
			}
			candidates = append(candidates, candidate{j, site.DistSq(other)})
		}
		sort.Slice(candidates, func(a, b int) bool { return candidates[a].dist2 < candidates[b].dist2 })

		var nbrs []int
		for ci, cand := range candidates {
			other := r.sites[cand.idx]
			mid := site.Add(other).Mul(0.5)
			normal := site.Sub(other).Normalize()
			plane := types.NewPlaneD(normal, mid)

			cell.ClipByPlane(plane, cand.idx)
			cell.ComputeGeometry()
			if cell.empty {
				break
			}
			nbrs = append(nbrs, cand.idx)

			if ci+1 >= len(candidates) {
				break
			}
			maxR2 := 0.0
			for _, tri := range cell.triangles {
				if d2 := tri.Point.DistSq(site); d2 > maxR2 {
					maxR2 = d2
				}
			}
			// The next candidate's bisector sits at distance
			// sqrt(nextDist2)/2 from site; once that exceeds the cell's
			// current bounding radius, nothing farther can cut it.
			if candidates[ci+1].dist2 >= 4*maxR2 {
				break
			}
		}

		r.cells[i] = *cell
		r.neighbors[i] = nbrs
	}
	return nil
}

// CopyCell returns an independent snapshot of site v's cell: the plane and
// triangle slices are copied so a caller's subsequent ClipByPlane calls
// (package intercept clips a fresh copy per BFS visit) can never grow into
// - and corrupt - the stored original's backing array.
func (r *Reference) CopyCell(v int) ConvexCell {
	src := r.cells[v]
	return ConvexCell{
		planes:    append([]clipPlane(nil), src.planes...),
		triangles: append([]Triangle(nil), src.triangles...),
		dirty:     src.dirty,
		empty:     src.empty,
	}
}

func (r *Reference) GetNeighbors(v int) []int { return r.neighbors[v] }
