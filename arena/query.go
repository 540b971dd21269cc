package arena

import (
	"github.com/aock/mantis/bvh"
	"github.com/aock/mantis/simd"
	"github.com/aock/mantis/types"
)

// PrimitiveType distinguishes which primitive kind a Result refers to.
type PrimitiveType int

const (
	Vertex PrimitiveType = iota
	Edge
	Face
)

// Result is the decoded outcome of a Query: the closest point found, its
// squared distance from the query point, and which primitive (and its
// type-local index) it belongs to - spec.md §6.1's closest(q) return shape.
type Result struct {
	SquaredDistance float32
	ClosestPoint    types.Vec3
	PrimitiveIndex  uint32
	Type            PrimitiveType
}

// Query runs the full query-time algorithm of spec.md §4.E: a BVH
// nearest-vertex lookup seeds the SIMD-wide best distance, then the
// seed vertex's packed edge and face records are scanned (each gated by
// the early box-min_x exit), and the final horizontal min across lanes
// decodes to a Vertex, Edge or Face result.
func (a *Arena) Query(tree *bvh.BVH, positions []types.Vec3, q types.Vec3) (Result, bool) {
	seedIdx, seedDistSq, ok := tree.Nearest(q)
	if !ok {
		return Result{}, false
	}

	best := simd.DupF32(seedDistSq)
	bestIdx := simd.DupI32(int32(seedIdx))
	seedPos := positions[seedIdx]
	bestPX, bestPY, bestPZ := simd.DupF32(seedPos[0]), simd.DupF32(seedPos[1]), simd.DupF32(seedPos[2])

	v := &a.Vertices[seedIdx]
	best, bestIdx, bestPX, bestPY, bestPZ = scanEdges(v.Edges, q, best, bestIdx, bestPX, bestPY, bestPZ)
	best, bestIdx, bestPX, bestPY, bestPZ = scanFaces(v.Faces, q, best, bestIdx, bestPX, bestPY, bestPZ)

	dist, lane := simd.HorizontalMin(best)
	point := types.Vec3{bestPX.Get(lane), bestPY.Get(lane), bestPZ.Get(lane)}
	return decode(a, point, dist, bestIdx.Get(lane)), true
}

func decode(a *Arena, point types.Vec3, distSq float32, primIdx int32) Result {
	idx := uint32(primIdx)
	switch {
	case idx < uint32(a.NbPoints):
		return Result{SquaredDistance: distSq, ClosestPoint: point, PrimitiveIndex: idx, Type: Vertex}
	case idx < uint32(a.NbPoints+a.NbEdges):
		return Result{SquaredDistance: distSq, ClosestPoint: point, PrimitiveIndex: idx - uint32(a.NbPoints), Type: Edge}
	default:
		return Result{SquaredDistance: distSq, ClosestPoint: point, PrimitiveIndex: idx - uint32(a.NbPoints+a.NbEdges), Type: Face}
	}
}

// scanEdges implements spec.md §4.E step 3: for each record, project q onto
// the segment's line, mask lanes where the parametric t falls in [0,1],
// combine with the "candidate beats current best" mask, and blend the
// running best distance/index/point - all as whole-record SIMD lane ops.
func scanEdges(records []EdgeRecord, q types.Vec3, best simd.F32, bestIdx simd.I32, bestPX, bestPY, bestPZ simd.F32) (simd.F32, simd.I32, simd.F32, simd.F32, simd.F32) {
	qx, qy, qz := simd.DupF32(q[0]), simd.DupF32(q[1]), simd.DupF32(q[2])
	zero, one := simd.DupF32(0), simd.DupF32(1)

	for _, rec := range records {
		if rec.MinX.Get(0) > q[0] {
			break
		}

		dx := simd.Sub(qx, rec.StartX)
		dy := simd.Sub(qy, rec.StartY)
		dz := simd.Sub(qz, rec.StartZ)
		dot := simd.Add(simd.Add(simd.Mul(dx, rec.DirX), simd.Mul(dy, rec.DirY)), simd.Mul(dz, rec.DirZ))
		t := simd.Div(dot, rec.DirLenSq)
		maskT := simd.And(simd.Geq(t, zero), simd.Leq(t, one))

		projX := simd.Fma(t, rec.DirX, rec.StartX)
		projY := simd.Fma(t, rec.DirY, rec.StartY)
		projZ := simd.Fma(t, rec.DirZ, rec.StartZ)

		ddx := simd.Sub(qx, projX)
		ddy := simd.Sub(qy, projY)
		ddz := simd.Sub(qz, projZ)
		candidate := simd.Add(simd.Add(simd.Mul(ddx, ddx), simd.Mul(ddy, ddy)), simd.Mul(ddz, ddz))

		mask := simd.And(maskT, simd.Leq(candidate, best))
		best = simd.SelectFloat(mask, candidate, best)
		bestIdx = simd.SelectInt(mask, rec.PrimitiveIdx, bestIdx)
		bestPX = simd.SelectFloat(mask, projX, bestPX)
		bestPY = simd.SelectFloat(mask, projY, bestPY)
		bestPZ = simd.SelectFloat(mask, projZ, bestPZ)
	}
	return best, bestIdx, bestPX, bestPY, bestPZ
}

// scanFaces implements spec.md §4.E step 4: for each record, evaluate the
// three inward edge planes as an inside-prism mask, then the face plane's
// squared distance, combined identically to scanEdges.
func scanFaces(records []FaceRecord, q types.Vec3, best simd.F32, bestIdx simd.I32, bestPX, bestPY, bestPZ simd.F32) (simd.F32, simd.I32, simd.F32, simd.F32, simd.F32) {
	qx, qy, qz := simd.DupF32(q[0]), simd.DupF32(q[1]), simd.DupF32(q[2])
	zero := simd.DupF32(0)

	evalPlane := func(nx, ny, nz, d simd.F32) simd.F32 {
		return simd.Sub(simd.Add(simd.Add(simd.Mul(nx, qx), simd.Mul(ny, qy)), simd.Mul(nz, qz)), d)
	}

	for _, rec := range records {
		if rec.MinX.Get(0) > q[0] {
			break
		}

		s0 := evalPlane(rec.Edge0Nx, rec.Edge0Ny, rec.Edge0Nz, rec.Edge0D)
		s1 := evalPlane(rec.Edge1Nx, rec.Edge1Ny, rec.Edge1Nz, rec.Edge1D)
		s2 := evalPlane(rec.Edge2Nx, rec.Edge2Ny, rec.Edge2Nz, rec.Edge2D)
		maskInside := simd.And(simd.And(simd.Geq(s0, zero), simd.Geq(s1, zero)), simd.Geq(s2, zero))

		d := evalPlane(rec.PlaneNx, rec.PlaneNy, rec.PlaneNz, rec.PlaneD)
		candidate := simd.Mul(d, d)

		mask := simd.And(maskInside, simd.Leq(candidate, best))
		best = simd.SelectFloat(mask, candidate, best)
		bestIdx = simd.SelectInt(mask, rec.PrimitiveIdx, bestIdx)
		bestPX = simd.SelectFloat(mask, simd.Sub(qx, simd.Mul(d, rec.PlaneNx)), bestPX)
		bestPY = simd.SelectFloat(mask, simd.Sub(qy, simd.Mul(d, rec.PlaneNy)), bestPY)
		bestPZ = simd.SelectFloat(mask, simd.Sub(qz, simd.Mul(d, rec.PlaneNz)), bestPZ)
	}
	return best, bestIdx, bestPX, bestPY, bestPZ
}
