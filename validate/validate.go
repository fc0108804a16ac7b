// Command validate checks the world configuration JSON files in ../configs
// (or the directory given as the first argument). For every file it checks:
//   - JSON structure and the config rules enforced when a world is started
//   - Generated mazes over a range of seeds: grid size, start cell, exit on the border
//   - Connectivity: every open cell, and the exit, is reachable from the start
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/isomaze/game/engine"
)

// SeedsPerConfig is how many seeds each config is generated with
const SeedsPerConfig = 16

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages holds informational lines; otherwise it
// accumulates the errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Messages = append(r.Messages, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads a config file, applies the loader's defaults, runs the
// config rules and then generates worlds for seeds 1..seeds
func validateConfig(filePath string, seeds int) ValidationResult {
	result := ValidationResult{
		File:     filepath.Base(filePath),
		Valid:    true,
		Messages: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.WorldConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	config.ApplyDefaults()

	if err := engine.ValidateWorldConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	var openTotal, routeTotal, routes int
	for seed := int64(1); seed <= int64(seeds); seed++ {
		world, err := engine.NewWorld(&config, seed)
		if err != nil {
			result.fail("Seed %d: %v", seed, err)
			continue
		}
		for _, problem := range checkWorld(world) {
			result.fail("Seed %d: %s", seed, problem)
		}

		openTotal += len(engine.OpenCells(world.Grid()))
		if exit, ok := world.ExitCell(); ok {
			if route := world.Route(world.StartCell(), exit); route != nil {
				routeTotal += engine.PathLength(route)
				routes++
			}
		}
	}

	if result.Valid {
		result.info("Name: %s", config.Name)
		result.info("Grid: %dx%d, start (%d,%d)", config.Width, config.Height, config.Start.X, config.Start.Y)
		result.info("Followers: %d heading for %s", config.Followers, config.FollowerGoal)
		result.info("Seeds checked: %d", seeds)
		if seeds > 0 {
			result.info("Average open cells: %d", openTotal/seeds)
		}
		if routes > 0 {
			result.info("Average start to exit route: %d steps", routeTotal/routes)
		}
	}
	return result
}

// checkWorld returns every structural problem found in a generated world
func checkWorld(world *engine.World) []string {
	var problems []string
	grid := world.Grid()
	config := world.GetConfig()

	if grid.Width() != config.Width || grid.Height() != config.Height {
		problems = append(problems, fmt.Sprintf("grid is %dx%d, expected %dx%d",
			grid.Width(), grid.Height(), config.Width, config.Height))
	}

	start := world.StartCell()
	if code, _ := grid.At(start.X, start.Y); code != engine.Start {
		problems = append(problems, fmt.Sprintf("start cell (%d,%d) holds %s", start.X, start.Y, code))
	}

	reachable := engine.FloodFill(grid, start)
	open := engine.OpenCells(grid)
	if len(reachable) != len(open) {
		problems = append(problems, fmt.Sprintf("connectivity failure: %d/%d open cells unreachable from start",
			len(open)-len(reachable), len(open)))
	}

	exit, hasExit := world.ExitCell()
	switch {
	case config.PlaceExit && !hasExit:
		problems = append(problems, "no exit placed")
	case hasExit:
		onBorder := exit.X == grid.Width()-1 || exit.Y == grid.Height()-1
		if !onBorder {
			problems = append(problems, fmt.Sprintf("exit (%d,%d) is not on the bottom or right border", exit.X, exit.Y))
		}
		if !reachable[exit] {
			problems = append(problems, fmt.Sprintf("exit (%d,%d) unreachable from start", exit.X, exit.Y))
		}
		if n := engine.CountTiles(grid, engine.Exit); n != 2 {
			problems = append(problems, fmt.Sprintf("expected 2 exit tiles, found %d", n))
		}
	}

	if n := len(world.Followers()); n != config.Followers {
		problems = append(problems, fmt.Sprintf("spawned %d followers, expected %d", n, config.Followers))
	}
	return problems
}

// main validates every *.json file in the config directory, printing a concise
// report and exiting with non-zero status if any are invalid
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file, SeedsPerConfig)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Messages {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, msg := range result.Messages {
				if !strings.HasPrefix(msg, "✓") {
					fmt.Println("  ❌ " + msg)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
