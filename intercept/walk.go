package intercept

import "github.com/aock/mantis/voronoi"

// walkTriangles enumerates every triangle (polyhedron vertex) of a clipped
// Voronoi cell by walking TriangleAdjacent from some seed - the classifier
// only ever touches the cell through the exported accessor set spec.md
// §6.2 defines (copy_cell's triangulated-boundary contract), never its
// internal representation.
func walkTriangles(cell *voronoi.ConvexCell) []int {
	nbv := cell.NbV()
	start := voronoi.EndOfList
	for v := 0; v < nbv; v++ {
		if t := cell.VertexTriangle(v); t != voronoi.EndOfList {
			start = t
			break
		}
	}
	if start == voronoi.EndOfList {
		return nil
	}

	visited := map[int]bool{start: true}
	queue := []int{start}
	order := []int{start}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		for k := 0; k < 3; k++ {
			adj := cell.TriangleAdjacent(t, k)
			if adj == voronoi.EndOfList || visited[adj] {
				continue
			}
			visited[adj] = true
			queue = append(queue, adj)
			order = append(order, adj)
		}
	}

	return order
}
