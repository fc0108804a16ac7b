package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FollowerGoal names what followers path toward
type FollowerGoal string

const (
	GoalExit   FollowerGoal = "exit"
	GoalStart  FollowerGoal = "start"
	GoalPlayer FollowerGoal = "player"
)

// Valid reports whether the goal is one of the known targets
func (g FollowerGoal) Valid() bool {
	switch g {
	case GoalExit, GoalStart, GoalPlayer:
		return true
	}
	return false
}

// MaxFollowerSpeed keeps followers from overshooting a waypoint's arrival radius
const MaxFollowerSpeed = 0.2

// AgentConfig holds box extents and speed for an agent kind
type AgentConfig struct {
	HalfWidth  float64 `json:"half_width"`
	HalfHeight float64 `json:"half_height"`
	MoveSpeed  float64 `json:"move_speed"`
}

// WorldConfig represents a world definition loaded from JSON
type WorldConfig struct {
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Width        int          `json:"width"`
	Height       int          `json:"height"`
	Start        Position     `json:"start"`
	PlaceExit    bool         `json:"place_exit"`
	Seed         int64        `json:"seed,omitempty"`
	Followers    int          `json:"followers"`
	FollowerGoal FollowerGoal `json:"follower_goal"`
	Player       AgentConfig  `json:"player"`
	Follower     AgentConfig  `json:"follower"`
	TickRate     int          `json:"tick_rate"`
	Messages     struct {
		Welcome         string `json:"welcome"`
		Escaped         string `json:"escaped"`
		FollowerArrived string `json:"follower_arrived"`
	} `json:"messages"`
}

// DefaultWorldConfig returns the built-in world used when no config file is available
func DefaultWorldConfig() *WorldConfig {
	cfg := &WorldConfig{
		Name:         "default",
		Description:  "Built-in 21x21 maze with one follower heading for the exit",
		Width:        21,
		Height:       21,
		Start:        Position{X: 0, Y: 0},
		PlaceExit:    true,
		Followers:    1,
		FollowerGoal: GoalExit,
		Player:       AgentConfig{HalfWidth: 0.45, HalfHeight: 0.45, MoveSpeed: 0.05},
		Follower:     AgentConfig{HalfWidth: 0.3, HalfHeight: 0.3, MoveSpeed: 0.05},
		TickRate:     60,
	}
	cfg.Messages.Welcome = "Find the exit. Arrow keys move, followers know the way."
	cfg.Messages.Escaped = "You escaped the maze!"
	cfg.Messages.FollowerArrived = "Follower %s reached its goal"
	return cfg
}

// ApplyDefaults fills optional fields left empty in a config file
func (c *WorldConfig) ApplyDefaults() {
	d := DefaultWorldConfig()
	if c.FollowerGoal == "" {
		c.FollowerGoal = d.FollowerGoal
	}
	if c.Player == (AgentConfig{}) {
		c.Player = d.Player
	}
	if c.Follower == (AgentConfig{}) {
		c.Follower = d.Follower
	}
	if c.TickRate == 0 {
		c.TickRate = d.TickRate
	}
}

// ValidateWorldConfig validates a world configuration for correctness and playability
func ValidateWorldConfig(config *WorldConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Width < MinGridSize || config.Width > MaxGridSize {
		return fmt.Errorf("config validation: width must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Width)
	}
	if config.Height < MinGridSize || config.Height > MaxGridSize {
		return fmt.Errorf("config validation: height must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.Height)
	}
	if config.Start.X < 0 || config.Start.Y < 0 || config.Start.X >= config.Width || config.Start.Y >= config.Height {
		return fmt.Errorf("config validation: start (%d,%d) is outside the %dx%d grid",
			config.Start.X, config.Start.Y, config.Width, config.Height)
	}

	if config.Followers < 0 || config.Followers > MaxFollowers {
		return fmt.Errorf("config validation: followers must be between 0 and %d, got %d", MaxFollowers, config.Followers)
	}
	if !config.FollowerGoal.Valid() {
		return fmt.Errorf("config validation: follower_goal must be one of exit, start, player, got '%s'", config.FollowerGoal)
	}
	if config.FollowerGoal == GoalExit && config.Followers > 0 && !config.PlaceExit {
		return fmt.Errorf("config validation: follower_goal 'exit' requires place_exit")
	}

	if err := validateAgentConfig("player", config.Player, MaxMoveSpeed); err != nil {
		return err
	}
	if err := validateAgentConfig("follower", config.Follower, MaxFollowerSpeed); err != nil {
		return err
	}

	if config.TickRate < MinTickRate || config.TickRate > MaxTickRate {
		return fmt.Errorf("config validation: tick_rate must be between %d and %d, got %d", MinTickRate, MaxTickRate, config.TickRate)
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.PlaceExit && config.Messages.Escaped == "" {
		return fmt.Errorf("config validation: messages.escaped is required when place_exit is true")
	}
	if config.Messages.FollowerArrived != "" && !strings.Contains(config.Messages.FollowerArrived, "%s") {
		return fmt.Errorf("config validation: messages.follower_arrived must contain %%s for the follower id")
	}

	return nil
}

func validateAgentConfig(name string, c AgentConfig, maxSpeed float64) error {
	box := Box{HalfWidth: c.HalfWidth, HalfHeight: c.HalfHeight}
	if err := box.Validate(); err != nil {
		return fmt.Errorf("config validation: %s: %w", name, err)
	}
	if c.MoveSpeed <= 0 || c.MoveSpeed > maxSpeed {
		return fmt.Errorf("config validation: %s.move_speed must be in (0, %g], got %g", name, maxSpeed, c.MoveSpeed)
	}
	return nil
}

// LoadWorldConfig loads a world configuration from a JSON file
func LoadWorldConfig(filename string) (*WorldConfig, error) {
	// CONFIG_DIR overrides the "configs/" prefix
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config WorldConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}
	config.ApplyDefaults()

	if err := ValidateWorldConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
