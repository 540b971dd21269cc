// Package arena implements the SIMD-packed per-vertex primitive arenas and
// the query scan built on top of them (spec component 4.E): each vertex's
// intercepting edges and faces are packed into SIMD-width records sorted
// ascending by box-minimum x, so a query can early-exit the scan the
// moment a record's first lane's min_x exceeds the query point's x.
//
// The "pre-size the output, then fill it in index order" packing shape
// mirrors the teacher's asset/compiler/compiler.go VertexList/NormalList
// construction.
package arena

import (
	"sort"

	"github.com/aock/mantis/intercept"
	"github.com/aock/mantis/mesh"
	"github.com/aock/mantis/simd"
	"github.com/aock/mantis/types"
)

// EdgeRecord packs simd.Width edges: a segment's origin, direction,
// squared direction length, and global primitive index per lane.
type EdgeRecord struct {
	MinX                   simd.F32
	StartX, StartY, StartZ simd.F32
	DirX, DirY, DirZ       simd.F32
	DirLenSq               simd.F32
	PrimitiveIdx           simd.I32
}

// FaceRecord packs simd.Width faces: the face plane, its three inward edge
// planes, and global primitive index per lane.
type FaceRecord struct {
	MinX                           simd.F32
	PlaneNx, PlaneNy, PlaneNz, PlaneD simd.F32
	Edge0Nx, Edge0Ny, Edge0Nz, Edge0D simd.F32
	Edge1Nx, Edge1Ny, Edge1Nz, Edge1D simd.F32
	Edge2Nx, Edge2Ny, Edge2Nz, Edge2D simd.F32
	PrimitiveIdx                      simd.I32
}

// VertexArena holds one vertex's packed edge and face records.
type VertexArena struct {
	Edges []EdgeRecord
	Faces []FaceRecord
}

// Arena is the complete build output: one VertexArena per mesh vertex,
// plus the offsets needed to decode a global primitive index at query
// time (spec.md §6.1's "already offset-decoded" local index).
type Arena struct {
	Vertices []VertexArena
	NbPoints int
	NbEdges  int
	NbFaces  int
}

// Build packs the vertex-keyed intercept lists produced by package
// intercept into SIMD records.
func Build(topo *mesh.Topology, vertexEdges [][]intercept.EdgeHit, vertexFaces [][]intercept.FaceHit) *Arena {
	nbPoints := len(topo.Points)
	a := &Arena{
		Vertices: make([]VertexArena, nbPoints),
		NbPoints: nbPoints,
		NbEdges:  len(topo.Edges),
		NbFaces:  len(topo.Faces),
	}

	for v := 0; v < nbPoints; v++ {
		a.Vertices[v].Edges = packEdges(topo, vertexEdges[v], nbPoints)
		a.Vertices[v].Faces = packFaces(topo, vertexFaces[v], nbPoints, len(topo.Edges))
	}
	return a
}

func packEdges(topo *mesh.Topology, hits []intercept.EdgeHit, nbPoints int) []EdgeRecord {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Box.Min[0] < hits[j].Box.Min[0] })

	type lane struct {
		minX                   float32
		startX, startY, startZ float32
		dirX, dirY, dirZ       float32
		dirLenSq               float32
		primIdx                int32
	}
	lanes := make([]lane, 0, len(hits))
	for _, h := range hits {
		e := topo.Edges[h.EdgeID]
		start := topo.Points[e.A].Vec3()
		dir := topo.Points[e.B].Sub(topo.Points[e.A]).Vec3()
		lanes = append(lanes, lane{
			minX:   h.Box.Min[0],
			startX: start[0], startY: start[1], startZ: start[2],
			dirX: dir[0], dirY: dir[1], dirZ: dir[2],
			dirLenSq: dir.Dot(dir),
			primIdx:  int32(nbPoints) + int32(h.EdgeID),
		})
	}
	return packLanes(lanes, func(out *EdgeRecord, i int, l lane) {
		out.MinX.Set(i, l.minX)
		out.StartX.Set(i, l.startX)
		out.StartY.Set(i, l.startY)
		out.StartZ.Set(i, l.startZ)
		out.DirX.Set(i, l.dirX)
		out.DirY.Set(i, l.dirY)
		out.DirZ.Set(i, l.dirZ)
		out.DirLenSq.Set(i, l.dirLenSq)
		out.PrimitiveIdx.Set(i, l.primIdx)
	})
}

func packFaces(topo *mesh.Topology, hits []intercept.FaceHit, nbPoints, nbEdges int) []FaceRecord {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Box.Min[0] < hits[j].Box.Min[0] })

	type lane struct {
		minX    float32
		plane   types.Plane
		edges   [3]types.Plane
		primIdx int32
	}
	lanes := make([]lane, 0, len(hits))
	for _, h := range hits {
		f := topo.Faces[h.FaceID]
		lanes = append(lanes, lane{
			minX:  h.Box.Min[0],
			plane: f.Plane.Float32(),
			edges: [3]types.Plane{f.EdgePlanes[0].Float32(), f.EdgePlanes[1].Float32(), f.EdgePlanes[2].Float32()},
			primIdx: int32(nbPoints) + int32(nbEdges) + int32(h.FaceID),
		})
	}
	return packLanes(lanes, func(out *FaceRecord, i int, l lane) {
		out.MinX.Set(i, l.minX)
		out.PlaneNx.Set(i, l.plane[0])
		out.PlaneNy.Set(i, l.plane[1])
		out.PlaneNz.Set(i, l.plane[2])
		out.PlaneD.Set(i, l.plane[3])
		out.Edge0Nx.Set(i, l.edges[0][0])
		out.Edge0Ny.Set(i, l.edges[0][1])
		out.Edge0Nz.Set(i, l.edges[0][2])
		out.Edge0D.Set(i, l.edges[0][3])
		out.Edge1Nx.Set(i, l.edges[1][0])
		out.Edge1Ny.Set(i, l.edges[1][1])
		out.Edge1Nz.Set(i, l.edges[1][2])
		out.Edge1D.Set(i, l.edges[1][3])
		out.Edge2Nx.Set(i, l.edges[2][0])
		out.Edge2Ny.Set(i, l.edges[2][1])
		out.Edge2Nz.Set(i, l.edges[2][2])
		out.Edge2D.Set(i, l.edges[2][3])
		out.PrimitiveIdx.Set(i, l.primIdx)
	})
}

// packLanes groups lanes into ⌈n/W⌉ records, replicating the last lane's
// values into any padding lanes of the final record so min_x stays
// nondecreasing (spec.md §4.E).
func packLanes[L any, R any](lanes []L, set func(out *R, i int, l L)) []R {
	if len(lanes) == 0 {
		return nil
	}
	n := (len(lanes) + simd.Width - 1) / simd.Width
	out := make([]R, n)
	for i, l := range lanes {
		rec, lane := i/simd.Width, i%simd.Width
		set(&out[rec], lane, l)
	}
	last := len(lanes) - 1
	for i := len(lanes); i < n*simd.Width; i++ {
		rec, lane := i/simd.Width, i%simd.Width
		set(&out[rec], lane, lanes[last])
	}
	return out
}
