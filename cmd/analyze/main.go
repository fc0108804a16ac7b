// Command analyze prints quick, human-readable statistics about the mazes each
// config in the configs directory generates: open ratio, dead ends, the length
// of the start to exit route and how long generation takes.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wricardo/isomaze/game/config"
	"github.com/wricardo/isomaze/game/engine"
)

// Samples is the number of seeds generated per config
const Samples = 10

// MazeStats summarizes one generated world
type MazeStats struct {
	Seed      int64
	Open      int
	Cells     int
	DeadEnds  int
	Route     int // -1 when there is no exit or it cannot be reached
	Generated time.Duration
}

// OpenRatio is the share of cells that are not walls
func (s MazeStats) OpenRatio() float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.Open) / float64(s.Cells)
}

// analyzeWorld generates one world and measures it
func analyzeWorld(cfg *engine.WorldConfig, seed int64) (MazeStats, error) {
	begin := time.Now()
	world, err := engine.NewWorld(cfg, seed)
	if err != nil {
		return MazeStats{}, err
	}
	elapsed := time.Since(begin)

	grid := world.Grid()
	stats := MazeStats{
		Seed:      world.Seed,
		Open:      len(engine.OpenCells(grid)),
		Cells:     grid.Width() * grid.Height(),
		DeadEnds:  engine.DeadEnds(grid),
		Route:     -1,
		Generated: elapsed,
	}
	if exit, ok := world.ExitCell(); ok {
		if route := world.Route(world.StartCell(), exit); route != nil {
			stats.Route = engine.PathLength(route)
		}
	}
	return stats, nil
}

func analyzeConfig(w io.Writer, cfg *engine.WorldConfig, samples int) error {
	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", cfg.Width, cfg.Height)
	fmt.Fprintf(w, "Start: (%d, %d)\n", cfg.Start.X, cfg.Start.Y)
	fmt.Fprintf(w, "Followers: %d (goal: %s)\n", cfg.Followers, cfg.FollowerGoal)

	var ratio float64
	var deadEnds, routeSum, routes, longest int
	shortest := -1
	var elapsed time.Duration
	for seed := int64(1); seed <= int64(samples); seed++ {
		stats, err := analyzeWorld(cfg, seed)
		if err != nil {
			return fmt.Errorf("seed %d: %w", seed, err)
		}
		ratio += stats.OpenRatio()
		deadEnds += stats.DeadEnds
		elapsed += stats.Generated
		if stats.Route >= 0 {
			routeSum += stats.Route
			routes++
			if stats.Route > longest {
				longest = stats.Route
			}
			if shortest < 0 || stats.Route < shortest {
				shortest = stats.Route
			}
		}
	}
	if samples <= 0 {
		return nil
	}

	fmt.Fprintf(w, "Open ratio: %.1f%%\n", 100*ratio/float64(samples))
	fmt.Fprintf(w, "Dead ends: %d on average\n", deadEnds/samples)
	fmt.Fprintf(w, "Generation: %s on average\n", elapsed/time.Duration(samples))
	switch {
	case !cfg.PlaceExit:
		fmt.Fprintf(w, "Exit: none\n")
	case routes < samples:
		fmt.Fprintf(w, "⚠️  WARNING: exit unreachable in %d/%d seeds\n", samples-routes, samples)
	default:
		fmt.Fprintf(w, "✅ Route to exit: %d avg, %d min, %d max steps\n", routeSum/routes, shortest, longest)
	}
	return nil
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	manager, err := config.NewManager(configDir)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		fmt.Printf("Error listing configs: %v\n", err)
		os.Exit(1)
	}

	for _, info := range infos {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Filename)
		cfg, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			continue
		}
		if err := analyzeConfig(os.Stdout, cfg, Samples); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}
