// Package config provides world configuration management for isomaze.
//
// The config package handles:
//   - Loading world configurations from JSON files
//   - Validation through engine.ValidateWorldConfig
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// World configurations are JSON files in the configs directory. Each one sets
// the maze dimensions, the start cell, whether an exit is cut into the border,
// the follower count and goal, agent box sizes and speeds, the tick rate, and
// the messages shown on events. Optional fields that are left out are filled
// from engine.DefaultWorldConfig.
//
// Default Selection:
//
// classic.json is preferred. When it is missing or invalid the first loadable
// file in name order is used, and an empty directory falls back to the
// built-in world.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	worldConfig, err := manager.LoadConfig("labyrinth")
//	configs, err := manager.ListConfigs()
package config
