package engine

// TileCode is the integer stored per grid cell
type TileCode int

const (
	Open      TileCode = 0
	Wall      TileCode = 1
	Start     TileCode = 2
	Exit      TileCode = 3
	RouteMark TileCode = 4

	// Validation constants
	MinGridSize        = 3
	MaxGridSize        = 201
	MaxFollowers       = 32
	MinTickRate        = 1
	MaxTickRate        = 240
	MaxTicksPerRequest = 600
	MaxMoveSpeed       = 1.0
	MaxHalfExtent      = 0.5
)

// Valid reports whether the code belongs to the fixed tile enumeration
func (t TileCode) Valid() bool {
	return t >= Open && t <= RouteMark
}

// Passable reports whether an agent may occupy a tile with this code
func (t TileCode) Passable() bool {
	return t.Valid() && t != Wall
}

// Glyph returns the single character used for the tile in snapshots and text views
func (t TileCode) Glyph() byte {
	switch t {
	case Open:
		return '.'
	case Wall:
		return '#'
	case Start:
		return 'S'
	case Exit:
		return 'E'
	case RouteMark:
		return '*'
	}
	return '?'
}

// String returns the tile name
func (t TileCode) String() string {
	switch t {
	case Open:
		return "open"
	case Wall:
		return "wall"
	case Start:
		return "start"
	case Exit:
		return "exit"
	case RouteMark:
		return "route"
	}
	return "unknown"
}

// TileFromGlyph maps a snapshot character back to its tile code
func TileFromGlyph(c byte) (TileCode, bool) {
	switch c {
	case '.':
		return Open, true
	case '#':
		return Wall, true
	case 'S':
		return Start, true
	case 'E':
		return Exit, true
	case '*':
		return RouteMark, true
	}
	return 0, false
}

// Position represents x,y tile coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Input is the held-key state sampled once per tick for the player
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Idle reports whether no direction is held
func (in Input) Idle() bool {
	return !in.Up && !in.Down && !in.Left && !in.Right
}

// AgentKind distinguishes the player from autonomous followers
type AgentKind string

const (
	KindPlayer   AgentKind = "player"
	KindFollower AgentKind = "follower"
)

// AgentView is the read-only rendering view of an agent
type AgentView struct {
	ID             string    `json:"id"`
	Kind           AgentKind `json:"kind"`
	X              float64   `json:"x"`
	Y              float64   `json:"y"`
	HalfWidth      float64   `json:"half_width"`
	HalfHeight     float64   `json:"half_height"`
	Tile           Position  `json:"tile"`
	State          string    `json:"state"`
	Waypoint       *Position `json:"waypoint,omitempty"`
	RemainingRoute int       `json:"remaining_route"`
}

// Snapshot represents the complete observable world state
type Snapshot struct {
	WorldID   string      `json:"world_id"`
	Seed      int64       `json:"seed"`
	Tick      uint64      `json:"tick"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Rows      []string    `json:"rows"`
	Start     Position    `json:"start"`
	Exit      *Position   `json:"exit,omitempty"`
	Player    AgentView   `json:"player"`
	Followers []AgentView `json:"followers"`
	Escaped   bool        `json:"escaped"`
	Message   string      `json:"message"`
}

// Event types raised by World.Step
const (
	EventFollowerArrived = "follower_arrived"
	EventPlayerEscaped   = "player_escaped"
)

// Event is something notable that happened during a tick
type Event struct {
	Type    string   `json:"type"`
	AgentID string   `json:"agent_id,omitempty"`
	Tile    Position `json:"tile"`
	Tick    uint64   `json:"tick"`
	Message string   `json:"message,omitempty"`
}

// StepResult summarizes a single tick
type StepResult struct {
	Tick   uint64  `json:"tick"`
	Events []Event `json:"events,omitempty"`
}

// TileInfo describes a single grid cell
type TileInfo struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Code     TileCode `json:"code"`
	Name     string   `json:"name"`
	Glyph    string   `json:"glyph"`
	InBounds bool     `json:"in_bounds"`
	Passable bool     `json:"passable"`
}
