// Command isomaze generates mazes and runs the world they host.
//
// Subcommands:
//  1. "serve" runs the HTTP server (REST API, WebSocket snapshots, /mcp endpoint) and the fixed-rate tick loop
//  2. "mcp" runs an MCP stdio server, reusing a running API or starting an internal one
//  3. "play" plays a maze in the terminal
//  4. "render" prints a generated maze, optionally with the start to exit route
//  5. "version" prints the version
//
// Settings can come from flags, environment variables, or a .env file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/isomaze/game/config"
	"github.com/wricardo/isomaze/game/service"
	"github.com/wricardo/isomaze/game/session"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "isomaze"
)

// Options shared by every subcommand
type Options struct {
	ConfigDir     string
	DataDir       string
	PersistCamera bool
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    AppName,
		Usage:   "generate mazes, steer a player out, watch followers find the way",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing world configurations",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "directory where camera.json is stored",
				Sources: cli.EnvVars("DATA_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("ISOMAZE_DEBUG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			playCommand(),
			renderCommand(),
			{
				Name:  "version",
				Usage: "print the version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
		DefaultCommand: "serve",
	}
}

func optionsFrom(cmd *cli.Command) Options {
	return Options{
		ConfigDir:     cmd.String("config-dir"),
		DataDir:       cmd.String("data-dir"),
		PersistCamera: true,
	}
}

// initializeServices wires the config manager, the session manager with camera
// persistence, and the game service
func initializeServices(opts Options) (service.GameService, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	sessionManager := session.NewManager()
	if opts.PersistCamera {
		persistence, err := session.NewFilePersistence(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create camera persistence: %w", err)
		}
		sessionManager = session.NewManagerWithPersistence(persistence)

		if err := sessionManager.LoadPersistedCamera(); err != nil {
			log.Printf("Warning: Failed to load persisted camera: %v", err)
		}
	}

	return service.NewGameService(sessionManager, configManager), nil
}
