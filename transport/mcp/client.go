package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/isomaze/game/engine"
	"github.com/wricardo/isomaze/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"isomaze",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`isomaze - MCP Interface

This is a thin client that proxies all requests to the REST API server.

OBJECTIVE:
Steer the player (P) out of the maze through the exit (E). Followers (F)
walk shortest routes on their own.

AVAILABLE TOOLS:
- new_world: Generate a new maze (optional config_id and seed)
- world_state: Current snapshot with the grid drawn as text
- set_input: Hold or release arrow keys
- tick: Advance the simulation, optionally replacing the held keys
- find_path: Shortest route between two cells
- retarget_followers: Send followers to exit, start or player
- describe_tile: Inspect one cell
- get_camera / pan_camera: Viewer camera offset
- list_configs: Available world configurations
- game_instructions: Rules and coordinate conventions`),
	)

	c.registerTools()
}

func boolProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": description}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": description}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_world",
		Description: "Generate a new maze, replacing the current one",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use (see list_configs). Defaults to classic.",
				},
				"seed": intProp("Generation seed. 0 or omitted picks one at random."),
			},
		},
	}, c.handleNewWorld)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "world_state",
		Description: "Get the current world snapshot",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleWorldState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_input",
		Description: "Set which arrow keys are held. Held keys apply on every following tick.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"up":    boolProp("Hold up (y decreases)"),
				"down":  boolProp("Hold down (y increases)"),
				"left":  boolProp("Hold left (x decreases)"),
				"right": boolProp("Hold right (x increases)"),
			},
		},
	}, c.handleSetInput)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tick",
		Description: "Advance the simulation. Passing any direction replaces the held keys first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"ticks": intProp(fmt.Sprintf("Number of ticks (1-%d, default 1)", engine.MaxTicksPerRequest)),
				"up":    boolProp("Hold up"),
				"down":  boolProp("Hold down"),
				"left":  boolProp("Hold left"),
				"right": boolProp("Hold right"),
			},
		},
	}, c.handleTick)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Shortest 4-connected route between two cells",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"from_x": intProp("Start column"),
				"from_y": intProp("Start row"),
				"to_x":   intProp("Goal column"),
				"to_y":   intProp("Goal row"),
			},
			Required: []string{"from_x", "from_y", "to_x", "to_y"},
		},
	}, c.handleFindPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "retarget_followers",
		Description: "Re-route every follower toward a new goal",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"goal": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.GoalExit), string(engine.GoalStart), string(engine.GoalPlayer)},
					"description": "Where followers should go",
				},
			},
			Required: []string{"goal"},
		},
	}, c.handleRetarget)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get detailed info about a single grid cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"x": intProp("Column (0-based)"),
				"y": intProp("Row (0-based)"),
			},
			Required: []string{"x", "y"},
		},
	}, c.handleDescribeTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_camera",
		Description: "Get the viewer camera offset",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGetCamera)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "pan_camera",
		Description: "Shift the viewer camera offset",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"dx": numberProp("Horizontal shift in pixels"),
				"dy": numberProp("Vertical shift in pixels"),
			},
		},
	}, c.handlePanCamera)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available world configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Rules, legend and coordinate conventions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// inputFromArgs returns nil when no direction argument was supplied
func inputFromArgs(request mcp.CallToolRequest) *engine.Input {
	args := request.GetArguments()
	touched := false
	for _, key := range []string{"up", "down", "left", "right"} {
		if _, ok := args[key]; ok {
			touched = true
		}
	}
	if !touched {
		return nil
	}
	return &engine.Input{
		Up:    request.GetBool("up", false),
		Down:  request.GetBool("down", false),
		Left:  request.GetBool("left", false),
		Right: request.GetBool("right", false),
	}
}

// Tool handlers

func (c *Client) handleNewWorld(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{}
	if configID := request.GetString("config_id", ""); configID != "" {
		body["config_id"] = configID
	}
	if seed := request.GetInt("seed", 0); seed != 0 {
		body["seed"] = seed
	}

	var info service.WorldInfo
	if err := c.apiCall(ctx, "POST", "/api/world", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("New world %s\nConfig: %s  Seed: %d\n\n", info.ID, info.ConfigName, info.Seed)
	result += formatSnapshot(info.Snapshot)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleWorldState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", "/api/world/snapshot", nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSnapshot(&snap)), nil
}

func (c *Client) handleSetInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in := inputFromArgs(request)
	if in == nil {
		in = &engine.Input{}
	}

	var held engine.Input
	if err := c.apiCall(ctx, "PUT", "/api/world/input", in, &held); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Held keys: " + formatInput(held)), nil
}

func (c *Client) handleTick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]interface{}{
		"ticks": request.GetInt("ticks", 1),
	}
	if in := inputFromArgs(request); in != nil {
		body["input"] = in
	}

	var result service.TickResult
	if err := c.apiCall(ctx, "POST", "/api/world/tick", body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTickResult(&result)), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := url.Values{}
	query.Set("from", fmt.Sprintf("%d,%d", request.GetInt("from_x", 0), request.GetInt("from_y", 0)))
	query.Set("to", fmt.Sprintf("%d,%d", request.GetInt("to_x", 0), request.GetInt("to_y", 0)))

	var result service.PathResult
	if err := c.apiCall(ctx, "GET", "/api/world/path?"+query.Encode(), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPathResult(&result)), nil
}

func (c *Client) handleRetarget(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	goal, err := request.RequireString("goal")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "PUT", "/api/world/followers/goal", map[string]string{"goal": goal}, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Followers now heading for %s\n", goal)
	for _, f := range snap.Followers {
		fmt.Fprintf(&b, "  %s at (%d,%d) %s, %d steps left\n", f.ID, f.Tile.X, f.Tile.Y, f.State, f.RemainingRoute)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x := request.GetInt("x", 0)
	y := request.GetInt("y", 0)

	var info engine.TileInfo
	if err := c.apiCall(ctx, "GET", fmt.Sprintf("/api/world/tiles/%d/%d", x, y), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTileInfo(&info)), nil
}

func (c *Client) handleGetCamera(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var cam service.Camera
	if err := c.apiCall(ctx, "GET", "/api/camera", nil, &cam); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Camera: (%.1f, %.1f)", cam.X, cam.Y)), nil
}

func (c *Client) handlePanCamera(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body := map[string]float64{
		"dx": request.GetFloat("dx", 0),
		"dy": request.GetFloat("dy", 0),
	}

	var cam service.Camera
	if err := c.apiCall(ctx, "POST", "/api/camera/pan", body, &cam); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Camera: (%.1f, %.1f)", cam.X, cam.Y)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []*service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, cfg := range configs {
		exit := "no exit"
		if cfg.PlaceExit {
			exit = "exit"
		}
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Followers: %d, %s\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Width, cfg.Height, cfg.Followers, exit)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `isomaze - Instructions

OBJECTIVE:
Move the player out of the maze. The exit (E) is cut into the bottom or right
border. Reaching the exit tile ends the run with an "escaped" message.

COORDINATES:
• x is the column, y is the row, (0,0) is the top-left cell
• up decreases y, down increases y
• Agents have continuous centers; a cell (x,y) spans [x,x+1) by [y,y+1)

GRID LEGEND:
• . - open floor
• # - wall
• S - start cell
• E - exit
• P - player (in world_state output)
• F - follower (in world_state output)
• * - route cell (in find_path output)

MOVEMENT:
• set_input holds keys; the player moves move_speed cells per tick per held axis
• Diagonals are allowed; each axis is resolved separately, so the player
  slides along walls instead of sticking
• tick advances the world; pass directions to tick to change keys in one call

FOLLOWERS:
• Each follower walks a shortest route to its goal (exit, start or player)
• retarget_followers recomputes routes from where they stand now
• A follower that cannot reach its goal stays idle

STRATEGY:
• find_path from the player's tile to the exit gives a route to follow
• Every cell on row 0 and column 0 is open, so the top and left edges are
  always a corridor`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatInput(in engine.Input) string {
	var keys []string
	if in.Up {
		keys = append(keys, "up")
	}
	if in.Down {
		keys = append(keys, "down")
	}
	if in.Left {
		keys = append(keys, "left")
	}
	if in.Right {
		keys = append(keys, "right")
	}
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, "+")
}

// overlayRows draws agents over the tile rows
func overlayRows(snap *engine.Snapshot) []string {
	rows := make([][]byte, len(snap.Rows))
	for i, r := range snap.Rows {
		rows[i] = []byte(r)
	}
	put := func(p engine.Position, c byte) {
		if p.Y >= 0 && p.Y < len(rows) && p.X >= 0 && p.X < len(rows[p.Y]) {
			rows[p.Y][p.X] = c
		}
	}
	for _, f := range snap.Followers {
		put(f.Tile, 'F')
	}
	put(snap.Player.Tile, 'P')

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = string(r)
	}
	return out
}

func formatSnapshot(snap *engine.Snapshot) string {
	if snap == nil {
		return "No snapshot available\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tick: %d  Size: %dx%d\n", snap.Tick, snap.Width, snap.Height)
	fmt.Fprintf(&b, "Player: (%.2f, %.2f) tile (%d,%d)\n", snap.Player.X, snap.Player.Y, snap.Player.Tile.X, snap.Player.Tile.Y)
	fmt.Fprintf(&b, "Start: (%d,%d)", snap.Start.X, snap.Start.Y)
	if snap.Exit != nil {
		fmt.Fprintf(&b, "  Exit: (%d,%d)", snap.Exit.X, snap.Exit.Y)
	}
	b.WriteString("\n")

	for _, f := range snap.Followers {
		fmt.Fprintf(&b, "Follower %s: tile (%d,%d) %s", f.ID, f.Tile.X, f.Tile.Y, f.State)
		if f.Waypoint != nil {
			fmt.Fprintf(&b, " -> (%d,%d)", f.Waypoint.X, f.Waypoint.Y)
		}
		fmt.Fprintf(&b, ", %d steps left\n", f.RemainingRoute)
	}

	if snap.Escaped {
		b.WriteString("🎉 ESCAPED!\n")
	}
	if snap.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", snap.Message)
	}

	b.WriteString("\n")
	for _, row := range overlayRows(snap) {
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func formatTickResult(result *service.TickResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Advanced %d ticks (now at tick %d)\n", result.Ticks, result.Tick)
	if result.Truncated {
		fmt.Fprintf(&b, "⚠️ Request truncated to %d ticks\n", result.Limit)
	}

	for _, ev := range result.Events {
		switch ev.Type {
		case engine.EventPlayerEscaped:
			fmt.Fprintf(&b, "• tick %d: player escaped at (%d,%d)\n", ev.Tick, ev.Tile.X, ev.Tile.Y)
		default:
			fmt.Fprintf(&b, "• tick %d: %s %s at (%d,%d)\n", ev.Tick, ev.Type, ev.AgentID, ev.Tile.X, ev.Tile.Y)
		}
	}

	if snap := result.Snapshot; snap != nil {
		fmt.Fprintf(&b, "Player: (%.2f, %.2f) tile (%d,%d)\n", snap.Player.X, snap.Player.Y, snap.Player.Tile.X, snap.Player.Tile.Y)
	}
	if result.Escaped {
		b.WriteString("🎉 ESCAPED!\n")
	}

	if len(result.LocalView) > 0 {
		b.WriteString("\nAround the player:\n")
		for _, row := range result.LocalView {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatPathResult(result *service.PathResult) string {
	if !result.Found {
		return fmt.Sprintf("No route from (%d,%d) to (%d,%d)\n", result.From.X, result.From.Y, result.To.X, result.To.Y)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Route from (%d,%d) to (%d,%d): %d steps\n", result.From.X, result.From.Y, result.To.X, result.To.Y, result.Length)

	steps := make([]string, len(result.Path))
	for i, p := range result.Path {
		steps[i] = fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	b.WriteString(strings.Join(steps, " "))
	b.WriteString("\n")

	if len(result.Rows) > 0 {
		b.WriteString("\n")
		for _, row := range result.Rows {
			b.WriteString(row)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatTileInfo(info *engine.TileInfo) string {
	if !info.InBounds {
		return fmt.Sprintf("Cell (%d,%d) is outside the grid and counts as wall\n", info.X, info.Y)
	}
	passable := "blocked"
	if info.Passable {
		passable = "passable"
	}
	return fmt.Sprintf("Cell (%d,%d): %s '%s', %s\n", info.X, info.Y, info.Name, info.Glyph, passable)
}
