package service

import (
	"context"
	"time"

	"github.com/wricardo/isomaze/game/engine"
)

// GameService defines all world-related operations
type GameService interface {
	// World lifecycle
	NewWorld(ctx context.Context, configName string, seed int64) (*WorldInfo, error)
	GetWorld(ctx context.Context) (*WorldInfo, error)
	GetSnapshot(ctx context.Context) (*engine.Snapshot, error)

	// Simulation
	SetInput(ctx context.Context, in engine.Input) (engine.Input, error)
	// Tick returns the partial result with ctx's error when cancelled after some steps ran
	Tick(ctx context.Context, n int, in *engine.Input) (*TickResult, error)

	// Queries
	FindPath(ctx context.Context, from, to engine.Position) (*PathResult, error)
	RetargetFollowers(ctx context.Context, goal engine.FollowerGoal) (*engine.Snapshot, error)
	DescribeTile(ctx context.Context, x, y int) (*engine.TileInfo, error)

	// Camera
	GetCamera(ctx context.Context) (Camera, error)
	SetCamera(ctx context.Context, cam Camera) (Camera, error)
	PanCamera(ctx context.Context, dx, dy float64) (Camera, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.WorldConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.WorldConfig) error
}

// SessionManager owns the single active world and the camera
type SessionManager interface {
	Start(configID string, config *engine.WorldConfig, seed int64) (*Session, error)
	Current() (*Session, error)
	UpdateLastAccessed() error
	Camera() Camera
	SetCamera(cam Camera) error
}

// ConfigManager handles world configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.WorldConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.WorldConfig
	SaveConfig(name string, config *engine.WorldConfig) error
}

// Session represents the active world
type Session struct {
	ID             string
	World          *engine.World
	ConfigID       string
	Config         *engine.WorldConfig
	Input          engine.Input
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
