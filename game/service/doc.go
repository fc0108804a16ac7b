// Package service provides the business logic layer for isomaze.
//
// The service package implements:
//   - Single active world lifecycle (start, replace, query)
//   - Held-input tracking and fixed-step ticking
//   - Route queries and follower retargeting
//   - Camera offset handling
//   - Configuration listing and loading
//
// Core Interfaces:
//
// GameService is the main service interface used by the HTTP API, the MCP
// proxy and the terminal client. SessionManager owns the active world and
// the camera. ConfigManager loads world configurations.
//
// Architecture:
//
// The engine world holds no locks, so every GameService call serializes on a
// single mutex. RunTicker drives the world at the configured tick rate in
// server mode while handlers read snapshots between ticks.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.NewWorld(ctx, "classic", 0)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Tick(ctx, 10, &engine.Input{Right: true})
package service
