package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CountTiles counts the cells holding a specific tile code
func CountTiles(g *Grid, code TileCode) int {
	count := 0
	for _, c := range g.cells {
		if c == code {
			count++
		}
	}
	return count
}

// OpenCells lists every non-wall cell in row-major order
func OpenCells(g *Grid) []Position {
	var out []Position
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] != Wall {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// FloodFill returns every non-wall cell 4-connected to from
func FloodFill(g *Grid, from Position) map[Position]bool {
	seen := make(map[Position]bool)
	if g.IsWall(from.X, from.Y) {
		return seen
	}
	queue := []Position{from}
	seen[from] = true
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range neighborOffsets {
			n := Position{X: p.X + d.X, Y: p.Y + d.Y}
			if seen[n] || g.IsWall(n.X, n.Y) {
				continue
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return seen
}

// DeadEnds counts open cells with exactly one open neighbour
func DeadEnds(g *Grid) int {
	count := 0
	for _, p := range OpenCells(g) {
		open := 0
		for _, d := range neighborOffsets {
			if !g.IsWall(p.X+d.X, p.Y+d.Y) {
				open++
			}
		}
		if open == 1 {
			count++
		}
	}
	return count
}
