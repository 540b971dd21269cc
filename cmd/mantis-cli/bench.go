package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/aock/mantis/mantis"
	"github.com/aock/mantis/types"
	"github.com/urfave/cli"
)

// gridMesh builds an n x n grid of unit squares in the z=0 plane, each
// split into two triangles - a synthetic mesh large enough to exercise
// the "high query throughput" purpose spec.md §1 states, without needing
// an external mesh-loading collaborator.
func gridMesh(n int) ([]types.Vec3, [][3]uint32) {
	points := make([]types.Vec3, 0, (n+1)*(n+1))
	index := func(x, y int) uint32 { return uint32(y*(n+1) + x) }

	for y := 0; y <= n; y++ {
		for x := 0; x <= n; x++ {
			points = append(points, types.Vec3{float32(x), float32(y), 0})
		}
	}

	tris := make([][3]uint32, 0, n*n*2)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a, b, c, d := index(x, y), index(x+1, y), index(x+1, y+1), index(x, y+1)
			tris = append(tris, [3]uint32{a, b, c}, [3]uint32{a, c, d})
		}
	}
	return points, tris
}

// Bench builds a synthetic grid mesh and reports query throughput over a
// batch of uniformly sampled random queries.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)

	n := ctx.Int("grid")
	if n <= 0 {
		n = 64
	}
	numQueries := ctx.Int("queries")
	if numQueries <= 0 {
		numQueries = 100000
	}

	points, tris := gridMesh(n)

	buildStart := time.Now()
	s, err := mantis.Build(points, tris, float32(n)*100)
	if err != nil {
		logger.Error(err)
		return err
	}
	buildElapsed := time.Since(buildStart)
	logger.Noticef("built %dx%d grid: %d vertices, %d edges, %d faces in %v",
		n, n, s.NumVertices(), s.NumEdges(), s.NumFaces(), buildElapsed)

	rng := rand.New(rand.NewSource(1))
	queries := make([]types.Vec3, numQueries)
	for i := range queries {
		queries[i] = types.Vec3{
			rng.Float32() * float32(n),
			rng.Float32() * float32(n),
			rng.Float32()*4 - 2,
		}
	}

	queryStart := time.Now()
	for _, q := range queries {
		s.Closest(q)
	}
	queryElapsed := time.Since(queryStart)

	throughput := float64(numQueries) / queryElapsed.Seconds()
	fmt.Printf("build: %v\n", buildElapsed)
	fmt.Printf("queries: %d in %v (%.0f queries/sec)\n", numQueries, queryElapsed, throughput)

	return nil
}
