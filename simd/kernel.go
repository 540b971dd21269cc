// Package simd provides the N-wide float/int lane kernel that the BVH
// (package bvh) and the packed primitive arenas (package arena) are built
// on top of, per spec component 4.A.
//
// Lane width is fixed at 4 (see DESIGN.md "SIMD lane width"): the BVH
// mandates a 4-ary, 4-wide node layout, and reusing the same width for the
// packed arenas avoids maintaining two kernel types. The arithmetic lane
// ops (Add/Sub/Mul/Min/Max/Fma) are routed through the third-party generic
// SIMD library go-highway, mirroring the Load/ProcessWithTail/Store dance
// every *_hwy.go file in the pack uses, so real vector instructions get
// issued on platforms the library targets. Comparison, blend and integer
// lane ops are implemented with plain per-lane Go: no example in the pack
// ever stores a go-highway mask value outside the generic function that
// produced it (GreaterEqual/IfThenElse are always consumed inline), and
// go-highway's demonstrated surface is generic only over hwy.Floats, with
// no int-lane entry point - see DESIGN.md.
package simd

import (
	"github.com/ajroetker/go-highway/hwy"
)

// Width is the fixed lane count used throughout the acceleration structure.
const Width = 4

// F32 is a 4-wide float32 lane vector.
type F32 [Width]float32

// I32 is a 4-wide int32 lane vector, used for primitive/child indices.
type I32 [Width]int32

// Mask is a 4-wide boolean lane mask produced by comparisons.
type Mask [Width]bool

// DupF32 broadcasts a scalar to every lane.
func DupF32(v float32) F32 {
	var out F32
	for i := range out {
		out[i] = v
	}
	return out
}

// DupI32 broadcasts a scalar to every lane.
func DupI32(v int32) I32 {
	var out I32
	for i := range out {
		out[i] = v
	}
	return out
}

// Get/Set provide per-lane scalar access, used by BVH node construction
// and leaf padding.
func (v F32) Get(lane int) float32       { return v[lane] }
func (v *F32) Set(lane int, val float32) { v[lane] = val }
func (v I32) Get(lane int) int32         { return v[lane] }
func (v *I32) Set(lane int, val int32)   { v[lane] = val }

// Add is the lane-wise float addition kernel from spec.md §4.A.
func Add(a, b F32) F32 {
	var out F32
	hwy.ProcessWithTail[float32](Width,
		func(offset int) {
			hwy.Store(hwy.Add(hwy.Load(a[offset:]), hwy.Load(b[offset:])), out[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float32](count)
			va := hwy.MaskLoad(mask, a[offset:])
			vb := hwy.MaskLoad(mask, b[offset:])
			hwy.MaskStore(mask, hwy.Add(va, vb), out[offset:])
		},
	)
	return out
}

// Sub is the lane-wise float subtraction kernel.
func Sub(a, b F32) F32 {
	var out F32
	hwy.ProcessWithTail[float32](Width,
		func(offset int) {
			hwy.Store(hwy.Sub(hwy.Load(a[offset:]), hwy.Load(b[offset:])), out[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float32](count)
			va := hwy.MaskLoad(mask, a[offset:])
			vb := hwy.MaskLoad(mask, b[offset:])
			hwy.MaskStore(mask, hwy.Sub(va, vb), out[offset:])
		},
	)
	return out
}

// Mul is the lane-wise float multiplication kernel.
func Mul(a, b F32) F32 {
	var out F32
	hwy.ProcessWithTail[float32](Width,
		func(offset int) {
			hwy.Store(hwy.Mul(hwy.Load(a[offset:]), hwy.Load(b[offset:])), out[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float32](count)
			va := hwy.MaskLoad(mask, a[offset:])
			vb := hwy.MaskLoad(mask, b[offset:])
			hwy.MaskStore(mask, hwy.Mul(va, vb), out[offset:])
		},
	)
	return out
}

// Min is the lane-wise float minimum kernel.
func Min(a, b F32) F32 {
	var out F32
	hwy.ProcessWithTail[float32](Width,
		func(offset int) {
			hwy.Store(hwy.Min(hwy.Load(a[offset:]), hwy.Load(b[offset:])), out[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float32](count)
			va := hwy.MaskLoad(mask, a[offset:])
			vb := hwy.MaskLoad(mask, b[offset:])
			hwy.MaskStore(mask, hwy.Min(va, vb), out[offset:])
		},
	)
	return out
}

// Max is the lane-wise float maximum kernel.
func Max(a, b F32) F32 {
	var out F32
	hwy.ProcessWithTail[float32](Width,
		func(offset int) {
			hwy.Store(hwy.Max(hwy.Load(a[offset:]), hwy.Load(b[offset:])), out[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float32](count)
			va := hwy.MaskLoad(mask, a[offset:])
			vb := hwy.MaskLoad(mask, b[offset:])
			hwy.MaskStore(mask, hwy.Max(va, vb), out[offset:])
		},
	)
	return out
}

// Fma computes a*b+c per lane.
func Fma(a, b, c F32) F32 {
	var out F32
	hwy.ProcessWithTail[float32](Width,
		func(offset int) {
			hwy.Store(hwy.FMA(hwy.Load(a[offset:]), hwy.Load(b[offset:]), hwy.Load(c[offset:])), out[offset:])
		},
		func(offset, count int) {
			mask := hwy.TailMask[float32](count)
			va := hwy.MaskLoad(mask, a[offset:])
			vb := hwy.MaskLoad(mask, b[offset:])
			vc := hwy.MaskLoad(mask, c[offset:])
			hwy.MaskStore(mask, hwy.FMA(va, vb, vc), out[offset:])
		},
	)
	return out
}

// Div has no evidenced go-highway entry point in the pack (division
// semantics are target-sensitive and no *_hwy.go file exercises one); it
// is implemented lane-wise.
func Div(a, b F32) F32 {
	var out F32
	for i := range out {
		out[i] = a[i] / b[i]
	}
	return out
}

// Leq and Geq are the comparison kernels from spec.md §4.A. NaN lanes
// compare false in either direction, as required ("NaN comparisons
// return false") since Go's <=/>= on NaN already do that.
func Leq(a, b F32) Mask {
	var out Mask
	for i := range out {
		out[i] = a[i] <= b[i]
	}
	return out
}

func Geq(a, b F32) Mask {
	var out Mask
	for i := range out {
		out[i] = a[i] >= b[i]
	}
	return out
}

// And is the logical_and kernel over masks.
func And(a, b Mask) Mask {
	var out Mask
	for i := range out {
		out[i] = a[i] && b[i]
	}
	return out
}

// SelectFloat and SelectInt are the two blend kernels from spec.md §4.A.
func SelectFloat(mask Mask, t, f F32) F32 {
	var out F32
	for i := range out {
		if mask[i] {
			out[i] = t[i]
		} else {
			out[i] = f[i]
		}
	}
	return out
}

func SelectInt(mask Mask, t, f I32) I32 {
	var out I32
	for i := range out {
		if mask[i] {
			out[i] = t[i]
		} else {
			out[i] = f[i]
		}
	}
	return out
}

// Any reports whether any lane of the mask is set.
func (m Mask) Any() bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

// HorizontalMin returns the smallest lane value together with its lane
// index - the first lane to reach the minimum wins ties, per spec.md
// §4.C's tie-break rule.
func HorizontalMin(v F32) (min float32, lane int) {
	min = v[0]
	lane = 0
	for i := 1; i < Width; i++ {
		if v[i] < min {
			min = v[i]
			lane = i
		}
	}
	return min, lane
}
