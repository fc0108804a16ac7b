package engine

// ObstructionFunc reports whether a cell blocks movement. Implementations must
// return true for cells outside the grid.
type ObstructionFunc func(Position) bool

var neighborOffsets = [4]Position{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// FindPath runs A* with a Manhattan heuristic and unit edge costs over the
// 4-connected neighbourhood. The result runs from start to goal inclusive and is
// nil when the goal cannot be reached.
func FindPath(isObstructed ObstructionFunc, start, goal Position) []Position {
	if start == goal {
		return []Position{start}
	}

	open := newOpenSet()
	open.insert(start, -1, 0, ManhattanDistance(start, goal))

	for open.Len() > 0 {
		cur := open.popMin()
		node := open.nodes[cur]
		if node.pos == goal {
			return open.path(cur)
		}
		open.nodes[cur].closed = true

		for _, d := range neighborOffsets {
			next := Position{X: node.pos.X + d.X, Y: node.pos.Y + d.Y}
			tentative := node.g + 1

			if idx, ok := open.lookup(next); ok {
				n := &open.nodes[idx]
				if n.closed || tentative >= n.g {
					continue
				}
				open.relax(idx, cur, tentative)
				continue
			}
			if isObstructed(next) {
				continue
			}
			open.insert(next, cur, tentative, ManhattanDistance(next, goal))
		}
	}
	return nil
}

// PathLength returns the number of steps in a path
func PathLength(path []Position) int {
	if len(path) == 0 {
		return 0
	}
	return len(path) - 1
}
