package engine

import (
	"errors"
	"testing"
)

func TestNewGrid(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr bool
	}{
		{"valid", 5, 3, false},
		{"single cell", 1, 1, false},
		{"zero width", 0, 3, true},
		{"negative height", 3, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGrid(tt.width, tt.height)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDimensions) {
					t.Errorf("Expected ErrInvalidDimensions, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if g.Width() != tt.width || g.Height() != tt.height {
				t.Errorf("Expected %dx%d, got %dx%d", tt.width, tt.height, g.Width(), g.Height())
			}
			if CountTiles(g, Open) != tt.width*tt.height {
				t.Errorf("Expected all cells open")
			}
		})
	}
}

func TestGridSetRejectsInvalidWrites(t *testing.T) {
	g, _ := NewGrid(3, 3)

	if err := g.Set(1, 1, TileCode(9)); !errors.Is(err, ErrInvalidTile) {
		t.Errorf("Expected ErrInvalidTile, got %v", err)
	}
	if err := g.Set(3, 0, Wall); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
	if err := g.Fill(TileCode(-1)); !errors.Is(err, ErrInvalidTile) {
		t.Errorf("Expected ErrInvalidTile from Fill, got %v", err)
	}
	if err := g.Set(2, 2, Exit); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if code, ok := g.At(2, 2); !ok || code != Exit {
		t.Errorf("Expected exit at (2,2), got %v (ok=%v)", code, ok)
	}
}

func TestGridOutOfRangeIsWall(t *testing.T) {
	g, _ := NewGrid(2, 2)

	for _, p := range []Position{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if !g.IsObstructed(p) {
			t.Errorf("Expected %v to be obstructed", p)
		}
		if _, ok := g.At(p.X, p.Y); ok {
			t.Errorf("Expected At(%v) to report out of bounds", p)
		}
	}
	if g.IsObstructed(Position{1, 1}) {
		t.Errorf("Expected open cell to be unobstructed")
	}
}

func TestParseGridRows(t *testing.T) {
	rows := []string{
		"S.#",
		"#.E",
	}
	g, err := ParseGrid(rows)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	got := g.Rows()
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("Row %d: expected %q, got %q", i, rows[i], got[i])
		}
	}

	if _, err := ParseGrid([]string{"..", "."}); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ragged rows to fail, got %v", err)
	}
	if _, err := ParseGrid([]string{".x"}); !errors.Is(err, ErrInvalidTile) {
		t.Errorf("Expected unknown glyph to fail, got %v", err)
	}
}

func TestWithRouteLeavesGridUntouched(t *testing.T) {
	g, _ := ParseGrid([]string{
		"S...E",
	})
	route := []Position{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}

	marked := g.WithRoute(route)

	if got := marked.Rows()[0]; got != "S***E" {
		t.Errorf("Expected S***E, got %s", got)
	}
	if got := g.Rows()[0]; got != "S...E" {
		t.Errorf("Original grid was modified: %s", got)
	}
}
