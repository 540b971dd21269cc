package types

import "math"

// AABB is an axis-aligned bounding box in single precision, used for BVH
// nodes and packed-arena box-minimum sorting.
type AABB struct {
	Min Vec3
	Max Vec3
}

// EmptyAABB returns a box with inverted extents such that the first Extend
// call establishes real bounds, mirroring the teacher's
// math.MaxFloat32/-math.MaxFloat32 node-bbox initialization in
// asset/compiler/bvh/bvh_builder.go.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Empty reports whether the box has never been extended.
func (b AABB) Empty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend widens the box to include point.
func (b AABB) Extend(point Vec3) AABB {
	return AABB{
		Min: MinVec3(b.Min, point),
		Max: MaxVec3(b.Max, point),
	}
}

// ExtendBox widens the box to include other.
func (b AABB) ExtendBox(other AABB) AABB {
	return AABB{
		Min: MinVec3(b.Min, other.Min),
		Max: MaxVec3(b.Max, other.Max),
	}
}

// Center returns the box midpoint.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Diag returns the box's diagonal length, used to scale query-accuracy
// tolerances (spec.md §8: "tolerance ~1e-5 * bbox_diag^2").
func (b AABB) Diag() float32 {
	return b.Max.Sub(b.Min).Len()
}

// DistSq returns the squared distance from point to the closest point of
// the box (0 if point is inside), used by BVH traversal.
func (b AABB) DistSq(point Vec3) float32 {
	var d float32
	for i := 0; i < 3; i++ {
		v := point[i]
		if v < b.Min[i] {
			d += (b.Min[i] - v) * (b.Min[i] - v)
		} else if v > b.Max[i] {
			d += (v - b.Max[i]) * (v - b.Max[i])
		}
	}
	return d
}

// AABBd is the double precision analog of AABB, used while clipping
// Voronoi cells and deriving build-time bounds.
type AABBd struct {
	Min Vec3d
	Max Vec3d
}

func EmptyAABBd() AABBd {
	return AABBd{
		Min: Vec3d{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64},
		Max: Vec3d{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64},
	}
}

func (b AABBd) Extend(point Vec3d) AABBd {
	return AABBd{
		Min: MinVec3d(b.Min, point),
		Max: MaxVec3d(b.Max, point),
	}
}

func (b AABBd) Float32() AABB {
	return AABB{Min: b.Min.Vec3(), Max: b.Max.Vec3()}
}
