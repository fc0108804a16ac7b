package engine

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotEnoughSpace = errors.New("not enough open cells to spawn followers")
	ErrNoExit         = errors.New("world has no exit")
	ErrInvalidGoal    = errors.New("invalid follower goal")
)

// Engine provides the main interface for world operations
type Engine interface {
	// Simulation
	Step(in Input) StepResult
	Snapshot() *Snapshot
	Tick() uint64
	Escaped() bool

	// Queries
	Route(from, to Position) []Position
	RouteRows(from, to Position) []string
	DescribeTile(x, y int) TileInfo

	// Followers
	RetargetFollowers(goal FollowerGoal) error

	GetConfig() *WorldConfig
}

var _ Engine = (*World)(nil)

type followerSlot struct {
	agent     *Agent
	announced bool
}

// World owns the grid, the agents, the RNG and the tick counter
type World struct {
	ID     string
	Seed   int64
	config *WorldConfig

	grid      *Grid
	rng       *rand.Rand
	start     Position
	exit      *Position
	player    *Agent
	followers []*followerSlot
	goal      FollowerGoal

	tick    uint64
	escaped bool
	message string
}

// NewWorld generates a maze from cfg and spawns the agents. A zero seed falls
// back to cfg.Seed and then to the clock; the seed used is kept on the world.
func NewWorld(cfg *WorldConfig, seed int64) (*World, error) {
	if err := ValidateWorldConfig(cfg); err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = cfg.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	w := &World{
		ID:      uuid.NewString(),
		Seed:    seed,
		config:  cfg,
		rng:     rand.New(rand.NewSource(seed)),
		start:   cfg.Start,
		goal:    cfg.FollowerGoal,
		message: cfg.Messages.Welcome,
	}

	grid, err := NewGrid(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	if err := grid.Fill(Wall); err != nil {
		return nil, err
	}
	if err := GenerateMaze(grid, cfg.Start, w.rng); err != nil {
		return nil, fmt.Errorf("generate maze: %w", err)
	}
	ClearBorders(grid)
	grid.set(cfg.Start.X, cfg.Start.Y, Start)
	if cfg.PlaceExit {
		exit, err := PlaceExit(grid, w.rng)
		if err != nil {
			return nil, fmt.Errorf("place exit: %w", err)
		}
		w.exit = &exit
	}
	w.grid = grid

	w.player, err = NewAgent("player", KindPlayer, float64(cfg.Start.X)+0.5, float64(cfg.Start.Y)+0.5, cfg.Player)
	if err != nil {
		return nil, err
	}

	if err := w.spawnFollowers(cfg.Followers); err != nil {
		return nil, err
	}
	if err := w.routeFollowers(w.goal); err != nil {
		return nil, err
	}

	log.Printf("[WORLD] Generated %dx%d world %s (config=%s seed=%d followers=%d)",
		cfg.Width, cfg.Height, w.ID, cfg.Name, seed, len(w.followers))
	return w, nil
}

func (w *World) spawnFollowers(n int) error {
	if n == 0 {
		return nil
	}
	var candidates []Position
	for _, p := range OpenCells(w.grid) {
		if code, _ := w.grid.At(p.X, p.Y); code == Open {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) < n {
		return fmt.Errorf("%w: need %d, have %d", ErrNotEnoughSpace, n, len(candidates))
	}
	w.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for i := 0; i < n; i++ {
		p := candidates[i]
		a, err := NewAgent(fmt.Sprintf("follower-%d", i+1), KindFollower, float64(p.X)+0.5, float64(p.Y)+0.5, w.config.Follower)
		if err != nil {
			return err
		}
		w.followers = append(w.followers, &followerSlot{agent: a})
	}
	return nil
}

func (w *World) goalCell(goal FollowerGoal) (Position, error) {
	switch goal {
	case GoalExit:
		if w.exit == nil {
			return Position{}, ErrNoExit
		}
		return *w.exit, nil
	case GoalStart:
		return w.start, nil
	case GoalPlayer:
		return w.player.Tile(), nil
	}
	return Position{}, fmt.Errorf("%w: '%s'", ErrInvalidGoal, goal)
}

func (w *World) routeFollowers(goal FollowerGoal) error {
	if len(w.followers) == 0 {
		return nil
	}
	target, err := w.goalCell(goal)
	if err != nil {
		return err
	}
	for _, f := range w.followers {
		path := FindPath(w.grid.IsObstructed, f.agent.Tile(), target)
		if len(path) > 1 {
			f.agent.SetRoute(path[1:])
		} else {
			if path == nil {
				log.Printf("[PATH] No route for %s from %v to %v", f.agent.ID, f.agent.Tile(), target)
			}
			f.agent.SetRoute(nil)
		}
		f.announced = false
	}
	return nil
}

// RetargetFollowers recomputes every follower's route from its current tile
func (w *World) RetargetFollowers(goal FollowerGoal) error {
	if !goal.Valid() {
		return fmt.Errorf("%w: '%s'", ErrInvalidGoal, goal)
	}
	if err := w.routeFollowers(goal); err != nil {
		return err
	}
	w.goal = goal
	return nil
}

// Step runs one tick: input, follower updates, integration, then events
func (w *World) Step(in Input) StepResult {
	w.tick++
	result := StepResult{Tick: w.tick}

	pdx, pdy := intentFromInput(in, w.player.MoveSpeed)

	type intent struct{ dx, dy float64 }
	intents := make([]intent, len(w.followers))
	for i, f := range w.followers {
		intents[i].dx, intents[i].dy = f.agent.Update()
	}

	w.player.Integrate(w.grid, pdx, pdy)
	for i, f := range w.followers {
		f.agent.Integrate(w.grid, intents[i].dx, intents[i].dy)
	}

	for _, f := range w.followers {
		if f.announced || !f.agent.Arrived() {
			continue
		}
		f.announced = true
		ev := Event{Type: EventFollowerArrived, AgentID: f.agent.ID, Tile: f.agent.Tile(), Tick: w.tick}
		if tmpl := w.config.Messages.FollowerArrived; tmpl != "" {
			ev.Message = fmt.Sprintf(tmpl, f.agent.ID)
			w.message = ev.Message
		}
		result.Events = append(result.Events, ev)
	}

	if !w.escaped {
		tile := w.player.Tile()
		if code, ok := w.grid.At(tile.X, tile.Y); ok && code == Exit {
			w.escaped = true
			w.message = w.config.Messages.Escaped
			result.Events = append(result.Events, Event{
				Type:    EventPlayerEscaped,
				AgentID: w.player.ID,
				Tile:    tile,
				Tick:    w.tick,
				Message: w.message,
			})
		}
	}

	return result
}

// Snapshot returns the observable world state
func (w *World) Snapshot() *Snapshot {
	s := &Snapshot{
		WorldID:   w.ID,
		Seed:      w.Seed,
		Tick:      w.tick,
		Width:     w.grid.Width(),
		Height:    w.grid.Height(),
		Rows:      w.grid.Rows(),
		Start:     w.start,
		Player:    w.player.View(),
		Followers: make([]AgentView, 0, len(w.followers)),
		Escaped:   w.escaped,
		Message:   w.message,
	}
	if w.exit != nil {
		exit := *w.exit
		s.Exit = &exit
	}
	for _, f := range w.followers {
		s.Followers = append(s.Followers, f.agent.View())
	}
	return s
}

// Route returns the shortest path between two cells, nil if unreachable
func (w *World) Route(from, to Position) []Position {
	return FindPath(w.grid.IsObstructed, from, to)
}

// RouteRows renders the grid with the route between two cells marked
func (w *World) RouteRows(from, to Position) []string {
	return w.grid.WithRoute(w.Route(from, to)).Rows()
}

// DescribeTile reports what occupies a cell
func (w *World) DescribeTile(x, y int) TileInfo {
	code, ok := w.grid.At(x, y)
	return TileInfo{
		X:        x,
		Y:        y,
		Code:     code,
		Name:     code.String(),
		Glyph:    string(code.Glyph()),
		InBounds: ok,
		Passable: ok && code.Passable(),
	}
}

// Tile returns the code at x,y. Cells outside the grid read as Wall.
func (w *World) Tile(x, y int) TileCode {
	code, _ := w.grid.At(x, y)
	return code
}

// Grid returns the world's grid. It must be treated as read-only.
func (w *World) Grid() *Grid { return w.grid }

// Tick returns the number of steps taken
func (w *World) Tick() uint64 { return w.tick }

// Escaped reports whether the player has reached the exit
func (w *World) Escaped() bool { return w.escaped }

// Player returns the player agent
func (w *World) Player() *Agent { return w.player }

// Followers returns the follower agents in spawn order
func (w *World) Followers() []*Agent {
	out := make([]*Agent, len(w.followers))
	for i, f := range w.followers {
		out[i] = f.agent
	}
	return out
}

// StartCell returns the spawn cell
func (w *World) StartCell() Position { return w.start }

// ExitCell returns the border exit cell if one was placed
func (w *World) ExitCell() (Position, bool) {
	if w.exit == nil {
		return Position{}, false
	}
	return *w.exit, true
}

// Goal returns the current follower goal
func (w *World) Goal() FollowerGoal { return w.goal }

// GetConfig returns the configuration the world was built from
func (w *World) GetConfig() *WorldConfig { return w.config }
