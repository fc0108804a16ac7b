package tui

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/isomaze/game/config"
	"github.com/wricardo/isomaze/game/engine"
	"github.com/wricardo/isomaze/game/service"
	"github.com/wricardo/isomaze/game/session"
)

func newTestPlayer(t *testing.T) (*Player, tcell.SimulationScreen, service.GameService) {
	t.Helper()

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewGameService(session.NewManager(), configs)
	if _, err := svc.NewWorld(context.Background(), "", 11); err != nil {
		t.Fatalf("Failed to start world: %v", err)
	}

	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	screen.SetSize(40, 20)
	t.Cleanup(screen.Fini)

	return New(screen, svc, Options{}), screen, svc
}

func cellAt(screen tcell.SimulationScreen, x, y int) rune {
	cells, width, _ := screen.GetContents()
	c := cells[y*width+x]
	if len(c.Runes) == 0 {
		return ' '
	}
	return c.Runes[0]
}

func TestKeyHoldWindow(t *testing.T) {
	p := New(nil, nil, Options{KeyHold: 100 * time.Millisecond})
	now := time.Unix(1000, 0)

	p.HandleEvent(context.Background(), tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), now)

	if in := p.Input(now.Add(50 * time.Millisecond)); !in.Right || in.Left || in.Up || in.Down {
		t.Errorf("Expected right held inside the window, got %+v", in)
	}
	if in := p.Input(now.Add(150 * time.Millisecond)); !in.Idle() {
		t.Errorf("Expected key released after the window, got %+v", in)
	}
}

func TestOppositeKeysCancel(t *testing.T) {
	p := New(nil, nil, Options{})
	now := time.Unix(1000, 0)
	ctx := context.Background()

	p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), now)
	p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), now)
	p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), now)

	in := p.Input(now)
	if in.Left {
		t.Error("Pressing right should release left")
	}
	if !in.Right || !in.Up {
		t.Errorf("Expected up+right held, got %+v", in)
	}
}

func TestQuitKeys(t *testing.T) {
	p := New(nil, nil, Options{})
	ctx := context.Background()
	now := time.Now()

	quits := []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl),
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
	}
	for _, ev := range quits {
		if p.HandleEvent(ctx, ev, now) {
			t.Errorf("Expected %v to quit", ev.Name())
		}
	}

	if !p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), now) {
		t.Error("Arrow keys should not quit")
	}
}

func TestStepDrawsPlayerAtCenter(t *testing.T) {
	p, screen, _ := newTestPlayer(t)

	if err := p.Step(context.Background(), time.Now()); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	// 40x20 screen: map area is 18 rows starting at row 1
	if got := cellAt(screen, 20, 1+9); got != 'P' {
		t.Errorf("Expected player at screen center, got %q", got)
	}
	if got := cellAt(screen, 1, 0); got != 't' {
		t.Errorf("Expected status line to start with tick, got %q", got)
	}
}

func TestStepMovesPlayer(t *testing.T) {
	p, _, svc := newTestPlayer(t)
	ctx := context.Background()

	before, err := svc.GetSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	for i := 0; i < 5; i++ {
		p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), now)
		if err := p.Step(ctx, now); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}

	after, _ := svc.GetSnapshot(ctx)
	if after.Tick != before.Tick+5 {
		t.Errorf("Expected 5 ticks, got %d -> %d", before.Tick, after.Tick)
	}
	// Row 0 is always open, the default start is (0,0), so moving right is free
	if after.Player.X <= before.Player.X {
		t.Errorf("Expected player to move right, x %.2f -> %.2f", before.Player.X, after.Player.X)
	}
}

func TestPanShiftsView(t *testing.T) {
	p, screen, svc := newTestPlayer(t)
	ctx := context.Background()
	now := time.Now()

	p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), now)
	p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), now)

	cam, _ := svc.GetCamera(ctx)
	if cam.X != 2*CameraCellPixels || cam.Y != 0 {
		t.Errorf("Expected camera (%.0f,0), got %+v", 2*CameraCellPixels, cam)
	}

	if err := p.Step(ctx, now); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	// View moved two cells right, so the player is drawn two cells left of center
	if got := cellAt(screen, 18, 1+9); got != 'P' {
		t.Errorf("Expected player two cells left of center, got %q", got)
	}

	p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone), now)
	cam, _ = svc.GetCamera(ctx)
	if cam != (service.Camera{}) {
		t.Errorf("Expected camera reset, got %+v", cam)
	}
}

func TestNewWorldKey(t *testing.T) {
	p, _, svc := newTestPlayer(t)
	ctx := context.Background()

	old, _ := svc.GetWorld(ctx)
	p.HandleEvent(ctx, tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone), time.Now())

	current, _ := svc.GetWorld(ctx)
	if current.ID == old.ID {
		t.Error("Expected a new world after pressing n")
	}
	if p.snapshot == nil || p.snapshot.WorldID != current.ID {
		t.Error("Player should show the new world's snapshot")
	}
}

func TestDrawWithoutSnapshot(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(20, 5)

	p := New(screen, nil, Options{})
	p.Draw()

	if got := cellAt(screen, 1, 0); got != 'i' {
		t.Errorf("Expected idle status line, got %q", got)
	}
}

func TestTileStyle(t *testing.T) {
	if tileStyle('#') != styleWall {
		t.Error("walls should use the wall style")
	}
	if tileStyle('E') != styleExit {
		t.Error("exit should use the exit style")
	}
	if tileStyle(engine.Open.Glyph()) != styleFloor {
		t.Error("open floor should use the floor style")
	}
}

func TestRunReturnsOnQuit(t *testing.T) {
	p, screen, _ := newTestPlayer(t)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	errc := make(chan error, 1)
	go func() { errc <- p.Run(context.Background()) }()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after quit key")
	}
}

func TestPollEventsStopsWhenDone(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	defer screen.Fini()

	// nobody reads events, so the forwarder can only leave through done
	events := make(chan tcell.Event)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		pollEvents(screen, events, done)
		close(exited)
	}()

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	close(done)

	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		t.Fatal("pollEvents blocked on send after done closed")
	}
}
