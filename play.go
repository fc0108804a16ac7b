package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/isomaze/game/config"
	"github.com/wricardo/isomaze/game/engine"
	"github.com/wricardo/isomaze/transport/tui"
)

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "play a maze in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "world config to play (default: classic)"},
			&cli.IntFlag{Name: "seed", Usage: "maze seed (0 = random)"},
			&cli.IntFlag{Name: "tick-rate", Usage: "override the config tick rate (Hz)"},
			&cli.StringFlag{Name: "log-file", Value: "isomaze.log", Usage: "where logs go while the terminal is in use"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// The screen owns stdout while playing
			logFile, err := os.OpenFile(cmd.String("log-file"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file: %w", err)
			}
			defer logFile.Close()
			log.SetOutput(logFile)
			defer log.SetOutput(os.Stderr)

			gameService, err := initializeServices(optionsFrom(cmd))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}

			configID := cmd.String("config")
			if _, err := gameService.NewWorld(ctx, configID, int64(cmd.Int("seed"))); err != nil {
				return err
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("failed to create screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("failed to initialize screen: %w", err)
			}
			defer screen.Fini()

			player := tui.New(screen, gameService, tui.Options{
				ConfigID: configID,
				TickRate: int(cmd.Int("tick-rate")),
			})
			return player.Run(ctx)
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "print a generated maze",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: config.DefaultConfigName, Usage: "world config to generate"},
			&cli.IntFlag{Name: "seed", Usage: "maze seed (0 = random)"},
			&cli.BoolFlag{Name: "route", Usage: "mark the shortest route from start to exit"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			configManager, err := config.NewManager(cmd.String("config-dir"))
			if err != nil {
				return err
			}
			cfg, err := configManager.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			return renderWorld(os.Stdout, cfg, int64(cmd.Int("seed")), cmd.Bool("route"))
		},
	}
}

// renderWorld writes the maze rows for cfg and seed, followed by a summary line
func renderWorld(w io.Writer, cfg *engine.WorldConfig, seed int64, withRoute bool) error {
	world, err := engine.NewWorld(cfg, seed)
	if err != nil {
		return err
	}

	rows := world.Snapshot().Rows
	exit, hasExit := world.ExitCell()
	routeLen := -1
	if hasExit {
		route := world.Route(world.StartCell(), exit)
		if route != nil {
			routeLen = engine.PathLength(route)
		}
		if withRoute {
			rows = world.RouteRows(world.StartCell(), exit)
		}
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%s %dx%d seed=%d start=(%d,%d)",
		cfg.Name, world.Grid().Width(), world.Grid().Height(), world.Seed,
		world.StartCell().X, world.StartCell().Y)
	if hasExit {
		summary += fmt.Sprintf(" exit=(%d,%d) route=%d", exit.X, exit.Y, routeLen)
	}
	_, err = fmt.Fprintln(w, summary)
	return err
}
