package service

import (
	"time"

	"github.com/wricardo/isomaze/game/engine"
)

// Camera is the persisted view offset in screen pixels
type Camera struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorldInfo provides information about the active world
type WorldInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	Seed           int64               `json:"seed"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	Input          engine.Input        `json:"input"`
	Snapshot       *engine.Snapshot    `json:"snapshot"`
	WorldConfig    *engine.WorldConfig `json:"world_config"`
}

// TickResult contains the result of advancing the simulation
type TickResult struct {
	Ticks     int              `json:"ticks"`
	Tick      uint64           `json:"tick"`
	Events    []engine.Event   `json:"events,omitempty"`
	Escaped   bool             `json:"escaped"`
	Snapshot  *engine.Snapshot `json:"snapshot"`
	LocalView []string         `json:"local_view,omitempty"`
	Truncated bool             `json:"truncated,omitempty"`
	Limit     int              `json:"limit,omitempty"`
}

// PathResult is the answer to a route query
type PathResult struct {
	From   engine.Position   `json:"from"`
	To     engine.Position   `json:"to"`
	Found  bool              `json:"found"`
	Length int               `json:"length"`
	Path   []engine.Position `json:"path"`
	Rows   []string          `json:"rows,omitempty"`
}

// ConfigInfo provides information about a world configuration
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use when starting a world
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Followers   int    `json:"followers"`
	PlaceExit   bool   `json:"place_exit"`
}
