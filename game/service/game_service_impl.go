package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/wricardo/isomaze/game/engine"
)

var (
	ErrInvalidTickCount = errors.New("tick count must be positive")
	ErrOutOfGrid        = errors.New("position outside the grid")
	ErrConfigNotFound   = errors.New("configuration not found")
)

// localViewRadius is the half-size of the text window returned with tick results
const localViewRadius = 2

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.Mutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// getConfigID returns the config_id for a given config display name
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// NewWorld generates a new world, replacing the current one
func (s *gameServiceImpl) NewWorld(ctx context.Context, configName string, seed int64) (*WorldInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.startLocked(configName, seed)
}

func (s *gameServiceImpl) startLocked(configName string, seed int64) (*WorldInfo, error) {
	var config *engine.WorldConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	sess, err := s.sessions.Start(configID, config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to start world: %w", err)
	}
	return worldInfo(sess), nil
}

// current returns the active session, starting the default world when none exists
func (s *gameServiceImpl) current() (*Session, error) {
	sess, err := s.sessions.Current()
	if err == nil {
		s.sessions.UpdateLastAccessed()
		return sess, nil
	}
	log.Printf("[WORLD] No active world, starting default")
	if _, err := s.startLocked("", 0); err != nil {
		return nil, err
	}
	return s.sessions.Current()
}

// GetWorld returns information about the active world
func (s *gameServiceImpl) GetWorld(ctx context.Context) (*WorldInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	return worldInfo(sess), nil
}

// GetSnapshot returns the current world snapshot
func (s *gameServiceImpl) GetSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	return sess.World.Snapshot(), nil
}

// SetInput replaces the held keys sampled by subsequent ticks
func (s *gameServiceImpl) SetInput(ctx context.Context, in engine.Input) (engine.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return engine.Input{}, err
	}
	sess.Input = in
	return sess.Input, nil
}

// Tick advances the world n steps. A non-nil input replaces the held keys first.
func (s *gameServiceImpl) Tick(ctx context.Context, n int, in *engine.Input) (*TickResult, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTickCount, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	if in != nil {
		sess.Input = *in
	}

	result := &TickResult{}
	if n > engine.MaxTicksPerRequest {
		result.Truncated = true
		result.Limit = engine.MaxTicksPerRequest
		n = engine.MaxTicksPerRequest
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			if result.Ticks == 0 {
				return nil, err
			}
			// the applied steps stay applied, so report them alongside the cancellation
			return finishTick(result, sess.World), err
		}
		step := sess.World.Step(sess.Input)
		result.Ticks++
		for _, ev := range step.Events {
			log.Printf("[TICK] %d %s %s", ev.Tick, ev.Type, ev.AgentID)
		}
		result.Events = append(result.Events, step.Events...)
	}

	return finishTick(result, sess.World), nil
}

func finishTick(result *TickResult, w *engine.World) *TickResult {
	result.Tick = w.Tick()
	result.Escaped = w.Escaped()
	result.Snapshot = w.Snapshot()
	result.LocalView = LocalView(result.Snapshot, result.Snapshot.Player.Tile, localViewRadius)
	return result
}

// FindPath answers a shortest-path query on the active world
func (s *gameServiceImpl) FindPath(ctx context.Context, from, to engine.Position) (*PathResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	grid := sess.World.Grid()
	for _, p := range []engine.Position{from, to} {
		if !grid.InBounds(p.X, p.Y) {
			return nil, fmt.Errorf("%w: (%d,%d)", ErrOutOfGrid, p.X, p.Y)
		}
	}

	path := sess.World.Route(from, to)
	result := &PathResult{
		From:   from,
		To:     to,
		Found:  len(path) > 0,
		Length: engine.PathLength(path),
		Path:   path,
	}
	if result.Found {
		result.Rows = grid.WithRoute(path).Rows()
	}
	log.Printf("[PATH] %v -> %v found=%v length=%d", from, to, result.Found, result.Length)
	return result, nil
}

// RetargetFollowers sends every follower toward a new goal
func (s *gameServiceImpl) RetargetFollowers(ctx context.Context, goal engine.FollowerGoal) (*engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	if err := sess.World.RetargetFollowers(goal); err != nil {
		return nil, err
	}
	return sess.World.Snapshot(), nil
}

// DescribeTile reports the tile at x,y
func (s *gameServiceImpl) DescribeTile(ctx context.Context, x, y int) (*engine.TileInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.current()
	if err != nil {
		return nil, err
	}
	info := sess.World.DescribeTile(x, y)
	return &info, nil
}

// GetCamera returns the camera offset
func (s *gameServiceImpl) GetCamera(ctx context.Context) (Camera, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Camera(), nil
}

// SetCamera replaces and persists the camera offset
func (s *gameServiceImpl) SetCamera(ctx context.Context, cam Camera) (Camera, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.SetCamera(cam); err != nil {
		return Camera{}, err
	}
	return s.sessions.Camera(), nil
}

// PanCamera shifts the camera offset by dx,dy
func (s *gameServiceImpl) PanCamera(ctx context.Context, dx, dy float64) (Camera, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cam := s.sessions.Camera()
	cam.X += dx
	cam.Y += dy
	if err := s.sessions.SetCamera(cam); err != nil {
		return Camera{}, err
	}
	return cam, nil
}

// ListConfigs returns all available configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.WorldConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a configuration
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.WorldConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func worldInfo(sess *Session) *WorldInfo {
	return &WorldInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		Seed:           sess.World.Seed,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Input:          sess.Input,
		Snapshot:       sess.World.Snapshot(),
		WorldConfig:    sess.Config,
	}
}

// LocalView renders a small text window around a cell: P for the player,
// F for followers, tile glyphs elsewhere and # outside the grid
func LocalView(snap *engine.Snapshot, center engine.Position, radius int) []string {
	if snap == nil {
		return nil
	}
	agents := map[engine.Position]byte{snap.Player.Tile: 'P'}
	for _, f := range snap.Followers {
		if _, taken := agents[f.Tile]; !taken {
			agents[f.Tile] = 'F'
		}
	}

	lines := make([]string, 0, 2*radius+1)
	for dy := -radius; dy <= radius; dy++ {
		var row strings.Builder
		for dx := -radius; dx <= radius; dx++ {
			p := engine.Position{X: center.X + dx, Y: center.Y + dy}
			if c, ok := agents[p]; ok {
				row.WriteByte(c)
				continue
			}
			if p.Y < 0 || p.Y >= len(snap.Rows) || p.X < 0 || p.X >= len(snap.Rows[p.Y]) {
				row.WriteByte('#')
				continue
			}
			row.WriteByte(snap.Rows[p.Y][p.X])
		}
		lines = append(lines, row.String())
	}
	return lines
}
