package cmd

import (
	"fmt"

	"github.com/aock/mantis/mantis"
	"github.com/aock/mantis/types"
	"github.com/urfave/cli"
)

// demoMeshes mirrors spec.md §8's boundary-scenario meshes - a single
// triangle, a tetrahedron and a closed unit cube - so the demo output is directly
// comparable against the literal expected values in the specification.
func demoMeshes() map[string]func() (*mantis.Structure, error) {
	return map[string]func() (*mantis.Structure, error){
		"triangle": func() (*mantis.Structure, error) {
			points := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
			return mantis.Build(points, [][3]uint32{{0, 1, 2}}, 1000)
		},
		"tetrahedron": func() (*mantis.Structure, error) {
			points := []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
			tris := [][3]uint32{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
			return mantis.Build(points, tris, 1000)
		},
		"cube": func() (*mantis.Structure, error) {
			points := []types.Vec3{
				{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
				{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
			}
			tris := [][3]uint32{
				{0, 2, 1}, {0, 3, 2},
				{4, 5, 6}, {4, 6, 7},
				{0, 1, 5}, {0, 5, 4},
				{3, 6, 2}, {3, 7, 6},
				{0, 4, 7}, {0, 7, 3},
				{1, 2, 6}, {1, 6, 5},
			}
			return mantis.Build(points, tris, 1000)
		},
	}
}

var demoQueries = []types.Vec3{
	{0.5, 0.5, 1.0},
	{2, 0, 0},
	{0.5, -1, 0},
	{2, 2, 2},
	{-1, -1, -1},
	{0.25, 0.25, 0.25},
}

// Demo builds one of the built-in meshes and runs the sample queries,
// printing each result - a manual-verification analog of the teacher's
// cmd/debug.go rendering a single debug frame.
func Demo(ctx *cli.Context) error {
	setupLogging(ctx)

	name := ctx.Args().First()
	if name == "" {
		name = "cube"
	}

	build, ok := demoMeshes()[name]
	if !ok {
		return fmt.Errorf("unknown demo mesh %q (choices: triangle, tetrahedron, cube)", name)
	}

	s, err := build()
	if err != nil {
		logger.Error(err)
		return err
	}
	logger.Noticef("built %q: %d vertices, %d edges, %d faces", name, s.NumVertices(), s.NumEdges(), s.NumFaces())

	for _, q := range demoQueries {
		res, ok := s.Closest(q)
		if !ok {
			fmt.Printf("query %v: no result (empty structure)\n", q)
			continue
		}
		fmt.Printf("query %-24v -> type=%-5v primitive=%-4d squared_distance=%-10.6f closest_point=%v\n",
			q, typeName(res.Type), res.PrimitiveIndex, res.SquaredDistance, res.ClosestPoint)
	}

	return nil
}

func typeName(t mantis.PrimitiveType) string {
	switch t {
	case mantis.Vertex:
		return "Vertex"
	case mantis.Edge:
		return "Edge"
	case mantis.Face:
		return "Face"
	default:
		return "?"
	}
}
