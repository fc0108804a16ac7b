// Package mcp exposes isomaze to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call becomes a request against the REST
// API, and the JSON answer is rendered as text an agent can read. The server
// process owns the world; the MCP process holds no game state.
//
// MCP Tools:
//   - new_world, world_state
//   - set_input, tick
//   - find_path, retarget_followers, describe_tile
//   - get_camera, pan_camera
//   - list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
