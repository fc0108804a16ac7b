package tui

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/isomaze/game/engine"
	"github.com/wricardo/isomaze/game/service"
)

const (
	// Terminals report key presses and repeats but never releases, so a
	// direction stays held for this long after its last press.
	DefaultKeyHold = 150 * time.Millisecond

	// CameraCellPixels converts the persisted pixel camera into cell offsets
	CameraCellPixels = 32.0
)

var (
	styleDefault  = tcell.StyleDefault
	styleWall     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFloor    = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	styleStart    = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleExit     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	stylePlayer   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleFollower = tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	styleStatus   = tcell.StyleDefault.Reverse(true)
)

// Options configures a terminal Player
type Options struct {
	ConfigID string
	TickRate int
	KeyHold  time.Duration
}

type direction int

const (
	dirUp direction = iota
	dirDown
	dirLeft
	dirRight
)

// Player drives the active world from a terminal
type Player struct {
	screen tcell.Screen
	svc    service.GameService
	opts   Options

	held     [4]time.Time
	camera   service.Camera
	snapshot *engine.Snapshot
	status   string
}

// New creates a terminal player. The screen must already be initialized.
func New(screen tcell.Screen, svc service.GameService, opts Options) *Player {
	if opts.KeyHold <= 0 {
		opts.KeyHold = DefaultKeyHold
	}
	return &Player{
		screen: screen,
		svc:    svc,
		opts:   opts,
	}
}

// Input returns the directions still inside their hold window at now
func (p *Player) Input(now time.Time) engine.Input {
	return engine.Input{
		Up:    now.Before(p.held[dirUp]),
		Down:  now.Before(p.held[dirDown]),
		Left:  now.Before(p.held[dirLeft]),
		Right: now.Before(p.held[dirRight]),
	}
}

func (p *Player) press(d direction, now time.Time) {
	p.held[d] = now.Add(p.opts.KeyHold)
	// Opposite keys cancel so a quick reversal does not stall the player
	switch d {
	case dirUp:
		p.held[dirDown] = time.Time{}
	case dirDown:
		p.held[dirUp] = time.Time{}
	case dirLeft:
		p.held[dirRight] = time.Time{}
	case dirRight:
		p.held[dirLeft] = time.Time{}
	}
}

// HandleEvent applies one terminal event. It returns false when the player asked to quit.
func (p *Player) HandleEvent(ctx context.Context, ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			p.press(dirUp, now)
		case tcell.KeyDown:
			p.press(dirDown, now)
		case tcell.KeyLeft:
			p.press(dirLeft, now)
		case tcell.KeyRight:
			p.press(dirRight, now)
		case tcell.KeyRune:
			return p.handleRune(ctx, ev.Rune())
		}

	case *tcell.EventResize:
		p.screen.Sync()
	}
	return true
}

func (p *Player) handleRune(ctx context.Context, r rune) bool {
	switch r {
	case 'q', 'Q':
		return false
	case 'w':
		p.pan(ctx, 0, -CameraCellPixels)
	case 's':
		p.pan(ctx, 0, CameraCellPixels)
	case 'a':
		p.pan(ctx, -CameraCellPixels, 0)
	case 'd':
		p.pan(ctx, CameraCellPixels, 0)
	case 'c':
		cam, err := p.svc.SetCamera(ctx, service.Camera{})
		p.report(err)
		p.camera = cam
	case 'n':
		info, err := p.svc.NewWorld(ctx, p.opts.ConfigID, 0)
		if err != nil {
			p.report(err)
			return true
		}
		p.held = [4]time.Time{}
		p.snapshot = info.Snapshot
		p.status = fmt.Sprintf("New world, seed %d", info.Seed)
	}
	return true
}

func (p *Player) pan(ctx context.Context, dx, dy float64) {
	cam, err := p.svc.PanCamera(ctx, dx, dy)
	if err != nil {
		p.report(err)
		return
	}
	p.camera = cam
}

func (p *Player) report(err error) {
	if err != nil {
		p.status = "error: " + err.Error()
		log.Printf("[TUI] %v", err)
	}
}

// Step advances the world one tick with the current held keys and redraws
func (p *Player) Step(ctx context.Context, now time.Time) error {
	in := p.Input(now)
	result, err := p.svc.Tick(ctx, 1, &in)
	if err != nil {
		return err
	}
	p.snapshot = result.Snapshot
	for _, ev := range result.Events {
		if ev.Message != "" {
			p.status = ev.Message
		}
	}
	p.Draw()
	return nil
}

// Run loops until ctx ends or the player quits
func (p *Player) Run(ctx context.Context) error {
	cam, err := p.svc.GetCamera(ctx)
	if err != nil {
		return err
	}
	p.camera = cam

	tickRate := p.opts.TickRate
	if tickRate <= 0 {
		if info, err := p.svc.GetWorld(ctx); err == nil && info.WorldConfig != nil {
			tickRate = info.WorldConfig.TickRate
		}
	}
	ticker := time.NewTicker(service.TickRateInterval(tickRate))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)
	go pollEvents(p.screen, events, done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !p.HandleEvent(ctx, ev, time.Now()) {
				return nil
			}
		case now := <-ticker.C:
			if err := p.Step(ctx, now); err != nil {
				return err
			}
		}
	}
}

// pollEvents forwards screen events until the screen is finalized or done closes
func pollEvents(screen tcell.Screen, events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			// Screen finalized
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// origin returns the grid cell drawn at the top-left of the map area
func (p *Player) origin(width, height int) (int, int) {
	var cx, cy int
	if p.snapshot != nil {
		cx, cy = p.snapshot.Player.Tile.X, p.snapshot.Player.Tile.Y
	}
	cx += int(p.camera.X / CameraCellPixels)
	cy += int(p.camera.Y / CameraCellPixels)
	return cx - width/2, cy - height/2
}

func tileStyle(c byte) tcell.Style {
	switch c {
	case '#':
		return styleWall
	case 'S':
		return styleStart
	case 'E':
		return styleExit
	case '*':
		return styleExit
	}
	return styleFloor
}

// Draw renders the last snapshot: status line, map, help line
func (p *Player) Draw() {
	p.screen.Clear()
	width, height := p.screen.Size()
	mapHeight := height - 2
	if width <= 0 || mapHeight <= 0 {
		p.screen.Show()
		return
	}

	snap := p.snapshot
	if snap != nil {
		ox, oy := p.origin(width, mapHeight)
		for sy := 0; sy < mapHeight; sy++ {
			gy := oy + sy
			if gy < 0 || gy >= len(snap.Rows) {
				continue
			}
			row := snap.Rows[gy]
			for sx := 0; sx < width; sx++ {
				gx := ox + sx
				if gx < 0 || gx >= len(row) {
					continue
				}
				c := row[gx]
				p.screen.SetContent(sx, sy+1, rune(c), nil, tileStyle(c))
			}
		}

		put := func(tile engine.Position, r rune, style tcell.Style) {
			sx, sy := tile.X-ox, tile.Y-oy
			if sx >= 0 && sx < width && sy >= 0 && sy < mapHeight {
				p.screen.SetContent(sx, sy+1, r, nil, style)
			}
		}
		for _, f := range snap.Followers {
			put(f.Tile, 'F', styleFollower)
		}
		put(snap.Player.Tile, 'P', stylePlayer)
	}

	p.drawLine(0, p.statusLine(), styleStatus)
	p.drawLine(height-1, "arrows move  wasd pan  c center  n new maze  q quit", styleDefault)
	p.screen.Show()
}

func (p *Player) statusLine() string {
	if p.snapshot == nil {
		return " isomaze"
	}
	line := fmt.Sprintf(" tick %d  pos (%.2f, %.2f)", p.snapshot.Tick, p.snapshot.Player.X, p.snapshot.Player.Y)
	if p.snapshot.Escaped {
		line += "  ESCAPED"
	}
	msg := p.status
	if msg == "" {
		msg = p.snapshot.Message
	}
	if msg != "" {
		line += "  | " + msg
	}
	return line
}

func (p *Player) drawLine(y int, text string, style tcell.Style) {
	width, _ := p.screen.Size()
	x := 0
	for _, r := range text {
		if x >= width {
			return
		}
		p.screen.SetContent(x, y, r, nil, style)
		x++
	}
	for ; x < width; x++ {
		p.screen.SetContent(x, y, ' ', nil, style)
	}
}
