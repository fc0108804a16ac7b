// Package engine provides the core simulation for the isomaze grid world.
//
// The engine package implements:
//   - Maze generation by randomized spanning-tree carve on a tile grid
//   - A* shortest-path search over an obstruction predicate
//   - Per-axis swept collision of box-shaped movers against wall tiles
//   - Route-following followers and an input-driven player
//   - World configuration loading and validation
//
// Core Types:
//
// Grid holds the tile codes. World owns a Grid, the agents and the tick
// counter, and implements the Engine interface. WorldConfig defines the maze
// dimensions, agent sizes and messages and is loaded from JSON files.
//
// Usage:
//
//	cfg, err := engine.LoadWorldConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	world, err := engine.NewWorld(cfg, 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Hold "right" for one tick
//	result := world.Step(engine.Input{Right: true})
//	snap := world.Snapshot()
//
// Simulation Rules:
//
// Each tick samples the player's held keys, lets every follower pick its next
// waypoint, integrates the player and then the followers through MoveBox, and
// finally reports follower arrivals and the player's escape. The grid is
// read-only once NewWorld returns.
package engine
