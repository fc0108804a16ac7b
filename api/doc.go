// Package api provides the REST API for isomaze.
//
// The api package implements:
//   - World lifecycle (generate, inspect, snapshot)
//   - Held input and tick stepping
//   - Route queries, follower retargeting and tile inspection
//   - Camera offset storage
//   - Configuration listing, loading and saving
//
// API Endpoints:
//
// World:
//   - GET  /api/world                   - Active world info (starts the default world if none)
//   - POST /api/world                   - New world {config_id, seed}
//   - GET  /api/world/snapshot          - Current snapshot
//   - PUT  /api/world/input             - Held keys {up, down, left, right}
//   - POST /api/world/tick              - Advance {ticks, input}
//   - GET  /api/world/path?from=x,y&to=x,y
//   - PUT  /api/world/followers/goal    - Retarget followers {goal}
//   - GET  /api/world/tiles/{x}/{y}     - Describe one tile
//
// Camera:
//   - GET  /api/camera
//   - PUT  /api/camera                  - {x, y}
//   - POST /api/camera/pan              - {dx, dy}
//
// Configuration:
//   - GET  /api/configs
//   - POST /api/configs                 - Save a world config {config_id, ...config}
//   - GET  /api/configs/{name}
//
// WebSocket:
//   - /ws - Snapshot stream, mounted when a hub is supplied
//
// Errors are returned as {"error": "..."} with 400 for bad input, 404 for
// unknown configs and 500 otherwise.
package api
