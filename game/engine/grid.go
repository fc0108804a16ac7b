package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
	ErrOutOfBounds       = errors.New("coordinate out of grid bounds")
	ErrInvalidTile       = errors.New("invalid tile code")
)

// Grid is a fixed-size 2D array of tile codes stored row-major
type Grid struct {
	width  int
	height int
	cells  []TileCode
}

// NewGrid allocates a grid with every cell Open
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]TileCode, width*height),
	}, nil
}

// Width returns the number of columns
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows
func (g *Grid) Height() int { return g.height }

// InBounds checks whether x,y addresses a cell
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At returns the tile at x,y; ok is false outside the grid
func (g *Grid) At(x, y int) (TileCode, bool) {
	if !g.InBounds(x, y) {
		return Wall, false
	}
	return g.cells[y*g.width+x], true
}

// Set writes a tile code
func (g *Grid) Set(x, y int, code TileCode) error {
	if !code.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTile, code)
	}
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	g.cells[y*g.width+x] = code
	return nil
}

// set is the unchecked writer used by the generator after its own bounds checks
func (g *Grid) set(x, y int, code TileCode) {
	g.cells[y*g.width+x] = code
}

// Fill overwrites every cell
func (g *Grid) Fill(code TileCode) error {
	if !code.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTile, code)
	}
	for i := range g.cells {
		g.cells[i] = code
	}
	return nil
}

// IsWall treats anything outside the grid as a wall
func (g *Grid) IsWall(x, y int) bool {
	code, ok := g.At(x, y)
	return !ok || code == Wall
}

// IsObstructed is the obstruction predicate handed to FindPath
func (g *Grid) IsObstructed(p Position) bool {
	return g.IsWall(p.X, p.Y)
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	cells := make([]TileCode, len(g.cells))
	copy(cells, g.cells)
	return &Grid{width: g.width, height: g.height, cells: cells}
}

// WithRoute returns a copy of the grid with the route stamped as RouteMark.
// Start and Exit cells keep their codes.
func (g *Grid) WithRoute(route []Position) *Grid {
	out := g.Clone()
	for _, p := range route {
		code, ok := out.At(p.X, p.Y)
		if !ok || code == Start || code == Exit || code == Wall {
			continue
		}
		out.set(p.X, p.Y, RouteMark)
	}
	return out
}

// Rows renders the grid one string per row using tile glyphs
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	buf := make([]byte, g.width)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			buf[x] = g.cells[y*g.width+x].Glyph()
		}
		rows[y] = string(buf)
	}
	return rows
}

// ParseGrid builds a grid from glyph rows, the inverse of Rows
func ParseGrid(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}
	g, err := NewGrid(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidDimensions, y, len(row), g.width)
		}
		for x := 0; x < len(row); x++ {
			code, ok := TileFromGlyph(row[x])
			if !ok {
				return nil, fmt.Errorf("%w: glyph %q at (%d,%d)", ErrInvalidTile, row[x], x, y)
			}
			g.set(x, y, code)
		}
	}
	return g, nil
}
