package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// CollisionMargin keeps a resolved edge this far from the obstructing tile
const CollisionMargin = 0.01

var (
	ErrDiagonalMove = errors.New("single-axis move called with both deltas nonzero")
	ErrBoxTooLarge  = errors.New("box half extent must be smaller than half a tile")
	ErrBoxTooSmall  = errors.New("box half extent must be positive")
)

// Axis selects the direction a single-axis move is resolved along
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Box is an axis-aligned rectangle in tile units
type Box struct {
	CenterX    float64 `json:"center_x"`
	CenterY    float64 `json:"center_y"`
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
}

// Validate checks the half extents
func (b Box) Validate() error {
	for _, h := range []float64{b.HalfWidth, b.HalfHeight} {
		if h <= 0 || math.IsNaN(h) {
			return fmt.Errorf("%w: %v", ErrBoxTooSmall, h)
		}
		if h >= MaxHalfExtent {
			return fmt.Errorf("%w: %v", ErrBoxTooLarge, h)
		}
	}
	return nil
}

// Bound returns the box as an orb.Bound (X in [0], Y in [1])
func (b Box) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.CenterX - b.HalfWidth, b.CenterY - b.HalfHeight},
		Max: orb.Point{b.CenterX + b.HalfWidth, b.CenterY + b.HalfHeight},
	}
}

// Translate returns the box moved by dx,dy
func (b Box) Translate(dx, dy float64) Box {
	b.CenterX += dx
	b.CenterY += dy
	return b
}

// Tile returns the tile containing the box center
func (b Box) Tile() Position {
	return Position{X: int(math.Floor(b.CenterX)), Y: int(math.Floor(b.CenterY))}
}

// OverlapsWall reports whether any tile the box covers is a wall or off-grid
func (b Box) OverlapsWall(g *Grid) bool {
	x0, x1 := tileSpan(b.CenterX-b.HalfWidth, b.CenterX+b.HalfWidth)
	y0, y1 := tileSpan(b.CenterY-b.HalfHeight, b.CenterY+b.HalfHeight)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if g.IsWall(x, y) {
				return true
			}
		}
	}
	return false
}

// tileSpan converts a continuous interval into the inclusive range of tiles it
// overlaps. An edge resting exactly on a tile boundary does not enter that tile.
func tileSpan(lo, hi float64) (int, int) {
	first := int(math.Floor(lo))
	last := int(math.Ceil(hi)) - 1
	if last < first {
		last = first
	}
	return first, last
}

// ResolveAxisMove returns delta corrected so the box does not enter a wall tile
// when moved along axis. The swept region between the current and proposed
// positions is scanned in the direction of motion and the first obstruction
// clamps the leading edge to the tile boundary less CollisionMargin.
func ResolveAxisMove(g *Grid, box Box, delta float64, axis Axis) float64 {
	if delta == 0 {
		return 0
	}

	var proposed Box
	if axis == AxisX {
		proposed = box.Translate(delta, 0)
	} else {
		proposed = box.Translate(0, delta)
	}
	swept := box.Bound().Union(proposed.Bound())

	// a is the axis of motion, b the perpendicular one
	a, b := 0, 1
	if axis == AxisY {
		a, b = 1, 0
	}
	a0, a1 := tileSpan(swept.Min[a], swept.Max[a])
	b0, b1 := tileSpan(swept.Min[b], swept.Max[b])

	blocked := func(i int) bool {
		for j := b0; j <= b1; j++ {
			x, y := i, j
			if axis == AxisY {
				x, y = j, i
			}
			if g.IsWall(x, y) {
				return true
			}
		}
		return false
	}

	current := box.Bound()
	if delta > 0 {
		for i := a0; i <= a1; i++ {
			if blocked(i) {
				return float64(i) - CollisionMargin - current.Max[a]
			}
		}
		return delta
	}
	for i := a1; i >= a0; i-- {
		if blocked(i) {
			return float64(i) + 1 + CollisionMargin - current.Min[a]
		}
	}
	return delta
}

// ResolveMove resolves a single-axis displacement. Passing both deltas nonzero
// is a usage error; callers decompose diagonal intent with MoveBox.
func ResolveMove(g *Grid, box Box, dx, dy float64) (float64, float64, error) {
	if dx != 0 && dy != 0 {
		return 0, 0, fmt.Errorf("resolve move (%v,%v): %w", dx, dy, ErrDiagonalMove)
	}
	if dx != 0 {
		return ResolveAxisMove(g, box, dx, AxisX), 0, nil
	}
	return 0, ResolveAxisMove(g, box, dy, AxisY), nil
}

// MoveBox applies dx then dy, each corrected against the grid
func MoveBox(g *Grid, box Box, dx, dy float64) Box {
	box.CenterX += ResolveAxisMove(g, box, dx, AxisX)
	box.CenterY += ResolveAxisMove(g, box, dy, AxisY)
	return box
}
