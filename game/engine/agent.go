package engine

import (
	"fmt"
	"math"
)

const (
	// ArrivalEpsilon is the squared distance at which a waypoint counts as reached
	ArrivalEpsilon = 0.01
	// waypointBias nudges waypoint targets off exact tile boundaries
	waypointBias = 0.001
)

// AgentState is the route-following state of an agent
type AgentState int

const (
	Idle AgentState = iota
	Seeking
	Approaching
)

func (s AgentState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Seeking:
		return "seeking"
	case Approaching:
		return "approaching"
	}
	return "unknown"
}

// Agent is a box-shaped mover that either follows a route or takes direct input
type Agent struct {
	ID        string
	Kind      AgentKind
	Box       Box
	MoveSpeed float64

	// route is stored reversed so the next waypoint pops off the end
	route    []Position
	waypoint *Position
	hadRoute bool
}

// NewAgent places an agent centered on (x, y)
func NewAgent(id string, kind AgentKind, x, y float64, cfg AgentConfig) (*Agent, error) {
	box := Box{CenterX: x, CenterY: y, HalfWidth: cfg.HalfWidth, HalfHeight: cfg.HalfHeight}
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("agent %s: %w", id, err)
	}
	return &Agent{ID: id, Kind: kind, Box: box, MoveSpeed: cfg.MoveSpeed}, nil
}

// SetRoute replaces the current route. An empty route leaves the agent Idle.
func (a *Agent) SetRoute(route []Position) {
	a.waypoint = nil
	if len(route) == 0 {
		a.route = nil
		a.hadRoute = false
		return
	}
	a.route = make([]Position, len(route))
	for i, p := range route {
		a.route[len(route)-1-i] = p
	}
	a.hadRoute = true
}

// State derives the route-following state
func (a *Agent) State() AgentState {
	if a.route == nil {
		return Idle
	}
	if a.waypoint == nil {
		return Seeking
	}
	return Approaching
}

// Arrived reports whether the agent consumed a whole route
func (a *Agent) Arrived() bool {
	return a.hadRoute && a.route == nil
}

// Waypoint returns the cell the agent is heading to
func (a *Agent) Waypoint() (Position, bool) {
	if a.waypoint == nil {
		return Position{}, false
	}
	return *a.waypoint, true
}

// RemainingRoute counts waypoints not yet popped
func (a *Agent) RemainingRoute() int {
	return len(a.route)
}

// Tile returns the cell under the agent's center
func (a *Agent) Tile() Position {
	return a.Box.Tile()
}

// Update advances the route state machine and returns the velocity intent for this tick
func (a *Agent) Update() (float64, float64) {
	if a.route == nil {
		return 0, 0
	}

	if a.waypoint != nil {
		tx, ty := waypointTarget(*a.waypoint)
		dx, dy := tx-a.Box.CenterX, ty-a.Box.CenterY
		if dx*dx+dy*dy < ArrivalEpsilon {
			a.waypoint = nil
		}
	}

	if a.waypoint == nil {
		if len(a.route) == 0 {
			a.route = nil
			return 0, 0
		}
		next := a.route[len(a.route)-1]
		a.route = a.route[:len(a.route)-1]
		a.waypoint = &next
	}

	tx, ty := waypointTarget(*a.waypoint)
	dx, dy := tx-a.Box.CenterX, ty-a.Box.CenterY
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return 0, 0
	}
	return dx / dist * a.MoveSpeed, dy / dist * a.MoveSpeed
}

// Integrate moves the agent by the intent, X then Y, against the grid
func (a *Agent) Integrate(g *Grid, dx, dy float64) {
	a.Box = MoveBox(g, a.Box, dx, dy)
}

// View returns the rendering view of the agent
func (a *Agent) View() AgentView {
	v := AgentView{
		ID:             a.ID,
		Kind:           a.Kind,
		X:              a.Box.CenterX,
		Y:              a.Box.CenterY,
		HalfWidth:      a.Box.HalfWidth,
		HalfHeight:     a.Box.HalfHeight,
		Tile:           a.Tile(),
		State:          a.State().String(),
		RemainingRoute: a.RemainingRoute(),
	}
	if wp, ok := a.Waypoint(); ok {
		v.Waypoint = &wp
	}
	return v
}

func waypointTarget(p Position) (float64, float64) {
	return float64(p.X) + 0.5 + waypointBias, float64(p.Y) + 0.5 + waypointBias
}

// intentFromInput converts held keys into a per-axis displacement
func intentFromInput(in Input, speed float64) (float64, float64) {
	var dx, dy float64
	if in.Left {
		dx -= speed
	}
	if in.Right {
		dx += speed
	}
	if in.Up {
		dy -= speed
	}
	if in.Down {
		dy += speed
	}
	return dx, dy
}
