package engine

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrGridTooSmall     = errors.New("grid too small for exit placement")
	ErrNoOpenBorderCell = errors.New("no open cell on exit candidate line")
)

// maxExitAttempts caps random sampling in PlaceExit before falling back to a scan
const maxExitAttempts = 1024

// carveFrame is one entry of the generator's arena; parent is an index into the arena
type carveFrame struct {
	pos    Position
	parent int
}

type frontier struct {
	cell      Position
	partition Position
}

// GenerateMaze carves a spanning-tree maze into g starting at start.
// The grid is expected to be filled with Wall beforehand. Cells are visited in
// steps of two so parallel corridors keep a one-cell wall between them.
func GenerateMaze(g *Grid, start Position, rng *rand.Rand) error {
	if !g.InBounds(start.X, start.Y) {
		return fmt.Errorf("maze start %v: %w", start, ErrOutOfBounds)
	}

	visited := make([]bool, g.width*g.height)
	frames := []carveFrame{{pos: start, parent: -1}}
	visited[start.Y*g.width+start.X] = true
	g.set(start.X, start.Y, Open)

	current := 0
	var candidates [4]frontier
	for current >= 0 {
		pos := frames[current].pos
		candidates = [4]frontier{
			{Position{pos.X - 2, pos.Y}, Position{pos.X - 1, pos.Y}},
			{Position{pos.X + 2, pos.Y}, Position{pos.X + 1, pos.Y}},
			{Position{pos.X, pos.Y - 2}, Position{pos.X, pos.Y - 1}},
			{Position{pos.X, pos.Y + 2}, Position{pos.X, pos.Y + 1}},
		}
		// Fisher-Yates
		for i := len(candidates) - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			candidates[i], candidates[j] = candidates[j], candidates[i]
		}

		next := -1
		for i, c := range candidates {
			if !g.InBounds(c.cell.X, c.cell.Y) || visited[c.cell.Y*g.width+c.cell.X] {
				continue
			}
			next = i
			break
		}
		if next < 0 {
			current = frames[current].parent
			continue
		}

		c := candidates[next]
		g.set(c.cell.X, c.cell.Y, Open)
		g.set(c.partition.X, c.partition.Y, Open)
		visited[c.cell.Y*g.width+c.cell.X] = true
		frames = append(frames, carveFrame{pos: c.cell, parent: current})
		current = len(frames) - 1
	}
	return nil
}

// ClearBorders opens the full top row and left column so odd-sized grids stay
// traversable and every exit candidate line has an open cell
func ClearBorders(g *Grid) {
	for x := 0; x < g.width; x++ {
		if g.cells[x] == Wall {
			g.set(x, 0, Open)
		}
	}
	for y := 0; y < g.height; y++ {
		if g.cells[y*g.width] == Wall {
			g.set(0, y, Open)
		}
	}
}

// PlaceExit picks the bottom or right border by coin flip, finds an open cell on
// the line just inside it and marks that cell and its border neighbour as Exit.
// Neither cell may be the Start tile. When the chosen border has no candidate
// the other one is tried. It returns the border cell.
func PlaceExit(g *Grid, rng *rand.Rand) (Position, error) {
	if g.width < 2 || g.height < 2 {
		return Position{}, fmt.Errorf("%w: %dx%d", ErrGridTooSmall, g.width, g.height)
	}

	bottom := rng.Intn(2) == 0

	for side := 0; side < 2; side++ {
		// line(i) is the i-th cell of the interior candidate line, border(i) its edge neighbour
		var length int
		var line, border func(i int) Position
		if bottom {
			length = g.width
			line = func(i int) Position { return Position{i, g.height - 2} }
			border = func(i int) Position { return Position{i, g.height - 1} }
		} else {
			length = g.height
			line = func(i int) Position { return Position{g.width - 2, i} }
			border = func(i int) Position { return Position{g.width - 1, i} }
		}

		candidate := func(i int) bool {
			in, out := line(i), border(i)
			if g.IsWall(in.X, in.Y) {
				return false
			}
			inCode, _ := g.At(in.X, in.Y)
			outCode, _ := g.At(out.X, out.Y)
			return inCode != Start && outCode != Start
		}

		pick := -1
		for attempt := 0; attempt < maxExitAttempts; attempt++ {
			if i := rng.Intn(length - 1); candidate(i) {
				pick = i
				break
			}
		}
		if pick < 0 {
			for i := 0; i < length-1; i++ {
				if candidate(i) {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			bottom = !bottom
			continue
		}

		inner, edge := line(pick), border(pick)
		g.set(inner.X, inner.Y, Exit)
		g.set(edge.X, edge.Y, Exit)
		return edge, nil
	}
	return Position{}, ErrNoOpenBorderCell
}
