package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsoFromCartesian(t *testing.T) {
	tests := []struct {
		x, y float64
		want point
	}{
		{0, 0, point{0, 0}},
		{1, 0, point{halfTileWidth, halfTileHeight}},
		{0, 1, point{-halfTileWidth, halfTileHeight}},
		{1, 1, point{0, tileHeight}},
		{3.5, 5.5, point{-64, 144}},
	}
	for _, tt := range tests {
		if got := isoFromCartesian(tt.x, tt.y); got != tt.want {
			t.Errorf("isoFromCartesian(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestMapFromScreen_RoundTrip(t *testing.T) {
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			center := isoFromCartesian(float64(x)+0.5, float64(y)+0.5)
			gx, gy := mapFromScreen(center.X, center.Y)
			if gx != x || gy != y {
				t.Fatalf("cell (%d,%d) round-tripped to (%d,%d)", x, y, gx, gy)
			}
		}
	}
}

func TestMapFromScreen_NegativeFloors(t *testing.T) {
	center := isoFromCartesian(-0.5, -0.5)
	x, y := mapFromScreen(center.X, center.Y)
	if x != -1 || y != -1 {
		t.Errorf("Expected (-1,-1), got (%d,%d)", x, y)
	}
}

func TestTileDiamond(t *testing.T) {
	d := tileDiamond(0, 0)
	want := [4]point{{0, 0}, {32, 16}, {0, 32}, {-32, 16}}
	if d != want {
		t.Errorf("tileDiamond(0,0) = %v, want %v", d, want)
	}
}

func TestSortSprites(t *testing.T) {
	sprites := []sprite{
		wallSprite(spriteWall, 2, 2),
		agentSprite(spritePlayer, 2.5, 3.5, 0.45, 0.45, ""),
		agentSprite(spriteFollower, 2.5, 2.5, 0.3, 0.3, "1"),
		wallSprite(spriteWall, 0, 0),
	}
	sortSprites(sprites)

	order := []spriteKind{spriteWall, spriteFollower, spriteWall, spritePlayer}
	for i, kind := range order {
		if sprites[i].Kind != kind {
			t.Fatalf("position %d: got kind %d, want %d (%+v)", i, sprites[i].Kind, kind, sprites)
		}
	}
	if sprites[0].X != 0 {
		t.Errorf("Expected the (0,0) wall first, got %+v", sprites[0])
	}
}

func TestVisibleCells_Clamped(t *testing.T) {
	// A viewport centred on a 5x5 grid sees all of it
	c := isoFromCartesian(2.5, 2.5)
	minX, minY, maxX, maxY := visibleCells(c.X-screenWidth/2, c.Y-screenHeight/2, screenWidth, screenHeight, 5, 5)
	if minX != 0 || minY != 0 || maxX != 4 || maxY != 4 {
		t.Errorf("Expected full grid, got (%d,%d)-(%d,%d)", minX, minY, maxX, maxY)
	}
}

func TestGameApply(t *testing.T) {
	g := &Game{}
	g.apply([]byte(`{"event":"snapshot","snapshot":{"world_id":"w1","tick":4,"width":3,"height":3,"rows":["S..","###","..E"]},"events":[{"type":"player_escaped","message":"out"}]}`))

	if g.snapshot == nil || g.snapshot.Tick != 4 {
		t.Fatalf("Expected snapshot at tick 4, got %+v", g.snapshot)
	}
	if g.status != "out" {
		t.Errorf("Expected status from event, got %q", g.status)
	}

	g.apply([]byte(`{"event":"camera","data":{"x":12,"y":-3}}`))
	if g.camera.X != 12 || g.camera.Y != -3 {
		t.Errorf("Expected camera (12,-3), got %+v", g.camera)
	}

	g.panning = true
	g.apply([]byte(`{"event":"camera","data":{"x":0,"y":0}}`))
	if g.camera.X != 12 {
		t.Error("Camera events should not override a pan in progress")
	}

	g.apply([]byte(`not json`))
	if g.snapshot.Tick != 4 {
		t.Error("Bad frames should be ignored")
	}
}

func TestAPIClient_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no active world"}`))
	}))
	defer server.Close()

	_, err := NewAPIClient(server.URL + "/").GetWorld()
	if err == nil {
		t.Fatal("Expected error")
	}
	if err.Error() != "GET /api/world: no active world" {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestAPIClient_SetCamera(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.Write([]byte(`{"x":1,"y":2}`))
	}))
	defer server.Close()

	if err := NewAPIClient(server.URL).SetCamera(Camera{X: 1, Y: 2}); err != nil {
		t.Fatalf("SetCamera failed: %v", err)
	}
	if gotMethod != "PUT" || gotPath != "/api/camera" {
		t.Errorf("Expected PUT /api/camera, got %s %s", gotMethod, gotPath)
	}
}
