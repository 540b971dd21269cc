package types

// Plane is a homogeneous plane (n, d): the set of points p with n.Dot(p) == d.
// It is stored as a Vec4 so it packs directly into the SIMD arenas in package
// arena, mirroring the teacher's TriNormal/TriEdge plane-as-Vec4 convention.
type Plane Vec4

// NewPlane builds a plane from a unit normal and a point it passes through.
func NewPlane(normal Vec3, pointOnPlane Vec3) Plane {
	return Plane(normal.Vec4(normal.Dot(pointOnPlane)))
}

// Normal returns the plane's normal vector.
func (p Plane) Normal() Vec3 {
	return Vec3{p[0], p[1], p[2]}
}

// Dist returns the plane's offset d (n.Dot(x) for any point x on the
// plane); for a unit normal this is the plane's signed distance from the
// origin along n.
func (p Plane) Dist() float32 {
	return p[3]
}

// Eval returns n.Dot(point) - d: positive on the plane's positive
// (inward) half-space, zero on the plane, negative outside.
func (p Plane) Eval(point Vec3) float32 {
	return p[0]*point[0] + p[1]*point[1] + p[2]*point[2] - p[3]
}

// PlaneD is the double precision analog of Plane, used while building
// topology and clipping Voronoi cells.
type PlaneD struct {
	N Vec3d
	D float64
}

func NewPlaneD(normal Vec3d, pointOnPlane Vec3d) PlaneD {
	return PlaneD{N: normal, D: normal.Dot(pointOnPlane)}
}

func (p PlaneD) Eval(point Vec3d) float64 {
	return p.N.Dot(point) - p.D
}

// Neg returns the plane with the opposite orientation (same surface, flipped
// inward half-space). Used when an edge borrows a face's inward edge-plane
// and must flip it to point toward the other incident face (spec.md §3).
func (p PlaneD) Neg() PlaneD {
	return PlaneD{N: p.N.Mul(-1), D: -p.D}
}

func (p Plane) Neg() Plane {
	return Plane{-p[0], -p[1], -p[2], -p[3]}
}

// Float32 down-casts a PlaneD to single precision for packing.
func (p PlaneD) Float32() Plane {
	return Plane(p.N.Vec3().Vec4(float32(p.D)))
}
