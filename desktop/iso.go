package main

import (
	"math"
	"sort"
)

const (
	tileWidth      = 64
	tileHeight     = 32
	halfTileWidth  = tileWidth / 2
	halfTileHeight = tileHeight / 2
	wallHeight     = 20
)

// point is a screen or map coordinate in float pixels or cells
type point struct {
	X, Y float64
}

// isoFromCartesian projects map coordinates (cells, fractional allowed) onto
// the isometric plane. Cell (0,0)'s top corner sits at the origin.
func isoFromCartesian(x, y float64) point {
	return point{
		X: (x - y) * halfTileWidth,
		Y: (x + y) * halfTileHeight,
	}
}

// mapFromScreen is the inverse of isoFromCartesian, floored to the cell under
// the projected point
func mapFromScreen(sx, sy float64) (int, int) {
	u := sx / halfTileWidth
	v := sy / halfTileHeight
	return int(math.Floor((u + v) / 2)), int(math.Floor((v - u) / 2))
}

// tileDiamond returns the four projected corners of a cell: top, right, bottom, left
func tileDiamond(x, y int) [4]point {
	fx, fy := float64(x), float64(y)
	return [4]point{
		isoFromCartesian(fx, fy),
		isoFromCartesian(fx+1, fy),
		isoFromCartesian(fx+1, fy+1),
		isoFromCartesian(fx, fy+1),
	}
}

type spriteKind int

const (
	spriteWall spriteKind = iota
	spriteFollower
	spritePlayer
)

// sprite is one depth-sorted drawable. X,Y are map coordinates.
type sprite struct {
	Kind  spriteKind
	X, Y  float64
	Depth float64
	Label string
}

// wallSprite is keyed on the cell's bottom corner so blocks drawn later sit in front
func wallSprite(kind spriteKind, x, y int) sprite {
	return sprite{Kind: kind, X: float64(x), Y: float64(y), Depth: float64(x+y) + 2}
}

// agentSprite is keyed on the footprint's bottom corner
func agentSprite(kind spriteKind, x, y, halfW, halfH float64, label string) sprite {
	return sprite{Kind: kind, X: x, Y: y, Depth: x + halfW + y + halfH, Label: label}
}

// sortSprites orders sprites back to front. Ties keep insertion order, which
// puts agents after the tiles they share a depth with.
func sortSprites(sprites []sprite) {
	sort.SliceStable(sprites, func(i, j int) bool {
		return sprites[i].Depth < sprites[j].Depth
	})
}

// visibleCells returns the map rectangle that can appear in a w x h viewport
// whose top-left corner is at screen offset (ox, oy) on the isometric plane
func visibleCells(ox, oy float64, w, h int, gridW, gridH int) (minX, minY, maxX, maxY int) {
	corners := [4]point{
		{ox, oy},
		{ox + float64(w), oy},
		{ox, oy + float64(h) + wallHeight},
		{ox + float64(w), oy + float64(h) + wallHeight},
	}
	minX, minY = math.MaxInt, math.MaxInt
	maxX, maxY = math.MinInt, math.MinInt
	for _, c := range corners {
		x, y := mapFromScreen(c.X, c.Y)
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	minX, minY = max(minX-1, 0), max(minY-1, 0)
	maxX, maxY = min(maxX+1, gridW-1), min(maxY+1, gridH-1)
	return
}
