// Command desktop is an isometric viewer for a running isomaze server.
// Arrow keys steer the player, WASD pans the camera, N starts a new maze.
package main

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	screenWidth    = 1024
	screenHeight   = 576
	defaultBaseURL = "http://localhost:8080"
	moveSpeed      = 0.05
	panSpeed       = moveSpeed * 50 // pixels per frame
	reconnectDelay = 2 * time.Second
)

var (
	colorBackground = color.RGBA{0, 0, 0, 255}
	colorFloor      = color.RGBA{60, 60, 70, 255}
	colorStart      = color.RGBA{70, 110, 200, 255}
	colorExit       = color.RGBA{80, 200, 100, 255}
	colorRoute      = color.RGBA{200, 180, 60, 255}
	colorOutline    = color.RGBA{30, 30, 35, 255}
	colorWallTop    = color.RGBA{150, 150, 160, 255}
	colorWallLeft   = color.RGBA{110, 110, 120, 255}
	colorWallRight  = color.RGBA{90, 90, 100, 255}
	colorPlayer     = color.RGBA{255, 210, 60, 255}
	colorFollower   = color.RGBA{190, 100, 255, 255}
)

// Game is the ebiten game driving the viewer
type Game struct {
	api *APIClient

	mu       sync.RWMutex
	snapshot *Snapshot
	camera   Camera
	status   string

	lastInput Input
	panning   bool
	white     *ebiten.Image
}

// NewGame creates the viewer and starts the snapshot listener
func NewGame(api *APIClient) *Game {
	g := &Game{api: api}

	if cam, err := api.GetCamera(); err != nil {
		log.Printf("Failed to load camera: %v", err)
	} else {
		g.camera = cam
	}
	g.refreshWorld()

	go g.listen()
	return g
}

func (g *Game) setStatus(format string, args ...interface{}) {
	g.mu.Lock()
	g.status = fmt.Sprintf(format, args...)
	g.mu.Unlock()
}

func (g *Game) refreshWorld() {
	info, err := g.api.GetWorld()
	if err != nil {
		g.setStatus("No world: %v", err)
		return
	}
	g.mu.Lock()
	g.snapshot = info.Snapshot
	g.status = fmt.Sprintf("World %s (%s, seed %d)", info.ID, info.ConfigName, info.Seed)
	g.mu.Unlock()
}

// listen keeps a WebSocket open and applies every pushed snapshot
func (g *Game) listen() {
	for {
		conn, err := g.api.DialSnapshots()
		if err != nil {
			log.Printf("WebSocket connect failed: %v (retrying in %s)", err, reconnectDelay)
			time.Sleep(reconnectDelay)
			continue
		}
		log.Printf("WebSocket connected")
		g.refreshWorld()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Printf("WebSocket read error: %v", err)
				break
			}
			g.apply(message)
		}
		conn.Close()
		time.Sleep(reconnectDelay)
	}
}

// apply handles one WebSocket frame
func (g *Game) apply(message []byte) {
	var msg WSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("WebSocket JSON parse error: %v", err)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if msg.Snapshot != nil {
		g.snapshot = msg.Snapshot
	}
	for _, ev := range msg.Events {
		if ev.Message != "" {
			g.status = ev.Message
		}
	}
	if msg.Event == "camera" && !g.panning && len(msg.Data) > 0 {
		var cam Camera
		if err := json.Unmarshal(msg.Data, &cam); err == nil {
			g.camera = cam
		}
	}
}

func heldInput() Input {
	return Input{
		Up:    ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:  ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:  ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right: ebiten.IsKeyPressed(ebiten.KeyArrowRight),
	}
}

// Update is called every frame
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// The server samples held input on its own tick; only changes are sent
	if in := heldInput(); in != g.lastInput {
		g.lastInput = in
		go func() {
			if err := g.api.SetInput(in); err != nil {
				g.setStatus("Input error: %v", err)
			}
		}()
	}

	var dx, dy float64
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		dy -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		dy += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		dx -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		dx += panSpeed
	}

	g.mu.Lock()
	moving := dx != 0 || dy != 0
	g.camera.X += dx
	g.camera.Y += dy
	persist := g.panning && !moving
	g.panning = moving
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.camera = Camera{}
		persist = true
	}
	cam := g.camera
	g.mu.Unlock()

	if persist {
		go func() {
			if err := g.api.SetCamera(cam); err != nil {
				g.setStatus("Camera error: %v", err)
			}
		}()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		go func() {
			info, err := g.api.NewWorld("")
			if err != nil {
				g.setStatus("New world failed: %v", err)
				return
			}
			g.mu.Lock()
			g.snapshot = info.Snapshot
			g.status = fmt.Sprintf("New world, seed %d", info.Seed)
			g.mu.Unlock()
		}()
	}
	return nil
}

// origin returns the isometric-plane point drawn at the top-left of the screen
func origin(snap *Snapshot, cam Camera) point {
	center := isoFromCartesian(snap.Player.X, snap.Player.Y)
	return point{
		X: center.X + cam.X - screenWidth/2,
		Y: center.Y + cam.Y - screenHeight/2,
	}
}

// Draw is called every frame
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	g.mu.RLock()
	snap := g.snapshot
	status := g.status
	cam := g.camera
	g.mu.RUnlock()

	if snap == nil {
		ebitenutil.DebugPrint(screen, "Waiting for a world...\n"+status)
		return
	}

	o := origin(snap, cam)
	minX, minY, maxX, maxY := visibleCells(o.X, o.Y, screenWidth, screenHeight, snap.Width, len(snap.Rows))

	// Floors never occlude anything, so they go down first
	var sprites []sprite
	for y := minY; y <= maxY; y++ {
		row := snap.Rows[y]
		for x := minX; x <= maxX && x < len(row); x++ {
			switch row[x] {
			case '#':
				sprites = append(sprites, wallSprite(spriteWall, x, y))
			case 'S':
				g.drawFloor(screen, o, x, y, colorStart)
			case 'E':
				g.drawFloor(screen, o, x, y, colorExit)
			case '*':
				g.drawFloor(screen, o, x, y, colorRoute)
			default:
				g.drawFloor(screen, o, x, y, colorFloor)
			}
		}
	}

	for i, f := range snap.Followers {
		sprites = append(sprites, agentSprite(spriteFollower, f.X, f.Y, f.HalfWidth, f.HalfHeight, fmt.Sprint(i+1)))
	}
	p := snap.Player
	sprites = append(sprites, agentSprite(spritePlayer, p.X, p.Y, p.HalfWidth, p.HalfHeight, ""))

	sortSprites(sprites)
	for _, s := range sprites {
		switch s.Kind {
		case spriteWall:
			g.drawWall(screen, o, int(s.X), int(s.Y))
		case spritePlayer:
			drawAgent(screen, o, s, p.HalfWidth, colorPlayer)
		case spriteFollower:
			drawAgent(screen, o, s, 0.3, colorFollower)
		}
	}

	drawHUD(screen, snap, cam, status)
}

func (g *Game) drawFloor(screen *ebiten.Image, o point, x, y int, clr color.RGBA) {
	d := tileDiamond(x, y)
	pts := make([]point, 4)
	for i, c := range d {
		pts[i] = point{c.X - o.X, c.Y - o.Y}
	}
	g.fillPolygon(screen, pts, clr)
	strokePolygon(screen, pts, colorOutline)
}

// drawWall draws a raised block: two side faces and the lifted top
func (g *Game) drawWall(screen *ebiten.Image, o point, x, y int) {
	d := tileDiamond(x, y)
	var base, top [4]point
	for i, c := range d {
		base[i] = point{c.X - o.X, c.Y - o.Y}
		top[i] = point{base[i].X, base[i].Y - wallHeight}
	}
	// corners: 0 top, 1 right, 2 bottom, 3 left
	g.fillPolygon(screen, []point{base[3], base[2], top[2], top[3]}, colorWallLeft)
	g.fillPolygon(screen, []point{base[2], base[1], top[1], top[2]}, colorWallRight)
	g.fillPolygon(screen, top[:], colorWallTop)
	strokePolygon(screen, top[:], colorOutline)
}

func drawAgent(screen *ebiten.Image, o point, s sprite, halfWidth float64, clr color.RGBA) {
	c := isoFromCartesian(s.X, s.Y)
	cx, cy := float32(c.X-o.X), float32(c.Y-o.Y)
	r := float32(halfWidth * halfTileWidth * 0.6)
	vector.DrawFilledCircle(screen, cx, cy-r, r, clr, true)
	vector.StrokeCircle(screen, cx, cy-r, r, 1, colorOutline, true)
	if s.Label != "" {
		ebitenutil.DebugPrintAt(screen, s.Label, int(cx)-3, int(cy-2*r)-16)
	}
}

func drawHUD(screen *ebiten.Image, snap *Snapshot, cam Camera, status string) {
	line := fmt.Sprintf("tick %d  seed %d  player (%.2f, %.2f) %s  camera (%.0f, %.0f)",
		snap.Tick, snap.Seed, snap.Player.X, snap.Player.Y, snap.Player.State, cam.X, cam.Y)
	if snap.Escaped {
		line += "  ESCAPED"
	}
	ebitenutil.DebugPrintAt(screen, line, 10, 10)

	msg := status
	if snap.Message != "" {
		msg = snap.Message
	}
	ebitenutil.DebugPrintAt(screen, msg, 10, 26)
	ebitenutil.DebugPrintAt(screen, "Arrows: Move | WASD: Pan | C: Center | N: New Maze | ESC: Quit", 10, screenHeight-20)
}

// fillPolygon fills a convex polygon given in screen pixels
func (g *Game) fillPolygon(screen *ebiten.Image, pts []point, clr color.RGBA) {
	if g.white == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(color.White)
		g.white = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}

	var path vector.Path
	path.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		path.LineTo(float32(p.X), float32(p.Y))
	}
	path.Close()

	vs, is := path.AppendVerticesAndIndicesForFilling(nil, nil)
	r, gr, b, a := float32(clr.R)/255, float32(clr.G)/255, float32(clr.B)/255, float32(clr.A)/255
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = r
		vs[i].ColorG = gr
		vs[i].ColorB = b
		vs[i].ColorA = a
	}
	screen.DrawTriangles(vs, is, g.white, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func strokePolygon(screen *ebiten.Image, pts []point, clr color.RGBA) {
	for i := range pts {
		a, b := pts[i], pts[(i+1)%len(pts)]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 1, clr, true)
	}
}

// Layout returns the logical screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	baseURL := defaultBaseURL
	if env := os.Getenv("ISOMAZE_URL"); env != "" {
		baseURL = env
	}
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	game := NewGame(NewAPIClient(baseURL))

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("isomaze")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
