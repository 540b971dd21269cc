package types

import "math"

// Vec3d is a double precision 3 component vector used during build-time
// topology and Voronoi computations, where single precision is not enough
// to keep clipped-cell vertices from drifting onto the wrong side of a
// support plane.
type Vec3d [3]float64

// Define a 3 component double precision vector.
func XYZd(x, y, z float64) Vec3d {
	return Vec3d{x, y, z}
}

// Vec3 down-casts to single precision, used once a build result is ready
// to be packed into query-time structures.
func (v Vec3d) Vec3() Vec3 {
	return Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Vec3dFromVec3 up-casts a single precision vector to double precision.
func Vec3dFromVec3(v Vec3) Vec3d {
	return Vec3d{float64(v[0]), float64(v[1]), float64(v[2])}
}

func (v Vec3d) Add(v2 Vec3d) Vec3d {
	return Vec3d{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

func (v Vec3d) Sub(v2 Vec3d) Vec3d {
	return Vec3d{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

func (v Vec3d) Mul(s float64) Vec3d {
	return Vec3d{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vec3d) Dot(v2 Vec3d) float64 {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

func (v Vec3d) Cross(v2 Vec3d) Vec3d {
	return Vec3d{
		v[1]*v2[2] - v[2]*v2[1],
		v[2]*v2[0] - v[0]*v2[2],
		v[0]*v2[1] - v[1]*v2[0],
	}
}

func (v Vec3d) LenSq() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

func (v Vec3d) Len() float64 {
	return math.Sqrt(v.LenSq())
}

func (v Vec3d) Normalize() Vec3d {
	l := v.Len()
	if l < floatCmpEpsilon {
		return Vec3d{}
	}
	inv := 1.0 / l
	return Vec3d{v[0] * inv, v[1] * inv, v[2] * inv}
}

func (v Vec3d) DistSq(v2 Vec3d) float64 {
	return v.Sub(v2).LenSq()
}

// IsFinite reports whether all components are finite (no NaN/Inf).
func (v Vec3d) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// MinVec3d and MaxVec3d mirror MinVec3/MaxVec3 in double precision.
func MinVec3d(v1, v2 Vec3d) Vec3d {
	out := v1
	for i := 0; i < 3; i++ {
		if v2[i] < out[i] {
			out[i] = v2[i]
		}
	}
	return out
}

func MaxVec3d(v1, v2 Vec3d) Vec3d {
	out := v1
	for i := 0; i < 3; i++ {
		if v2[i] > out[i] {
			out[i] = v2[i]
		}
	}
	return out
}
