package mesh

import (
	"fmt"
	"math"

	"github.com/aock/mantis/types"
)

// quantKey buckets a point into an integer grid cell at the given
// resolution, so that points falling in the same cell collide to the same
// key; two close points on opposite sides of a cell boundary get different
// keys. It is the same "snap to a grid cell, dedup by
// map lookup" idiom the teacher uses for texture-cache keys in
// asset/compiler/compiler.go's texIndexCache, generalized from a string key
// to a 3-int key.
type quantKey struct{ x, y, z int64 }

func quantize(p types.Vec3d, cellSize float64) quantKey {
	return quantKey{
		x: int64(math.Floor(p[0]/cellSize + 0.5)),
		y: int64(math.Floor(p[1]/cellSize + 0.5)),
		z: int64(math.Floor(p[2]/cellSize + 0.5)),
	}
}

// Dedup collapses points that round to the same epsilon-sized grid cell
// into a single representative (the first one seen) and remaps triangle
// indices accordingly; points closer than epsilon that round to
// neighbouring cells are kept as separate vertices. This is the
// deduplication step behind spec.md §4.B's "Inputs: a deduplicated vertex
// array".
// It also rejects non-finite coordinates up front, since every later stage
// assumes finite build-time geometry.
func Dedup(points []types.Vec3d, triangles [][3]uint32, epsilon float64) ([]types.Vec3d, [][3]uint32, error) {
	if epsilon <= 0 {
		return nil, nil, fmt.Errorf("mesh: dedup epsilon must be positive, got %v", epsilon)
	}

	remap := make([]uint32, len(points))
	buckets := make(map[quantKey]uint32, len(points))
	var unique []types.Vec3d

	for i, p := range points {
		if !p.IsFinite() {
			return nil, nil, fmt.Errorf("mesh: vertex %d has a non-finite coordinate", i)
		}

		key := quantize(p, epsilon)
		if existing, ok := buckets[key]; ok {
			remap[i] = existing
			continue
		}
		idx := uint32(len(unique))
		unique = append(unique, p)
		buckets[key] = idx
		remap[i] = idx
	}

	remapped := make([][3]uint32, len(triangles))
	for ti, tri := range triangles {
		for j, idx := range tri {
			if int(idx) >= len(points) {
				return nil, nil, fmt.Errorf("mesh: triangle %d references out-of-range vertex %d", ti, idx)
			}
			remapped[ti][j] = remap[idx]
		}
	}

	return unique, remapped, nil
}
