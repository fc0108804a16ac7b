package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Position is a cell coordinate
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// AgentView mirrors the server's agent rendering view
type AgentView struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	HalfWidth  float64  `json:"half_width"`
	HalfHeight float64  `json:"half_height"`
	Tile       Position `json:"tile"`
	State      string   `json:"state"`
}

// Snapshot mirrors the server's world snapshot
type Snapshot struct {
	WorldID   string      `json:"world_id"`
	Seed      int64       `json:"seed"`
	Tick      uint64      `json:"tick"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Rows      []string    `json:"rows"`
	Start     Position    `json:"start"`
	Exit      *Position   `json:"exit,omitempty"`
	Player    AgentView   `json:"player"`
	Followers []AgentView `json:"followers"`
	Escaped   bool        `json:"escaped"`
	Message   string      `json:"message"`
}

// Event is a notable tick event
type Event struct {
	Type    string `json:"type"`
	AgentID string `json:"agent_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Camera is the persisted pixel offset
type Camera struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Input is the held direction state
type Input struct {
	Up    bool `json:"up"`
	Down  bool `json:"down"`
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// WSMessage is the WebSocket message wrapper
type WSMessage struct {
	WorldID  string          `json:"world_id,omitempty"`
	Event    string          `json:"event"`
	Snapshot *Snapshot       `json:"snapshot,omitempty"`
	Events   []Event         `json:"events,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// WorldInfo is the subset of GET /api/world the viewer needs
type WorldInfo struct {
	ID         string    `json:"id"`
	ConfigName string    `json:"config_name"`
	Seed       int64     `json:"seed"`
	Snapshot   *Snapshot `json:"snapshot"`
}

// APIClient talks to the isomaze REST API
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the server at baseURL
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *APIClient) do(method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
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

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to parse JSON: %v (body: %s)", err, string(data))
	}
	return nil
}

// GetWorld fetches the active world
func (c *APIClient) GetWorld() (*WorldInfo, error) {
	var info WorldInfo
	if err := c.do("GET", "/api/world", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// NewWorld starts a world with the given config (empty means default) and a random seed
func (c *APIClient) NewWorld(configID string) (*WorldInfo, error) {
	payload := map[string]interface{}{}
	if configID != "" {
		payload["config_id"] = configID
	}
	var info WorldInfo
	if err := c.do("POST", "/api/world", payload, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SetInput replaces the held input the server ticks with
func (c *APIClient) SetInput(in Input) error {
	return c.do("PUT", "/api/world/input", in, nil)
}

// GetCamera fetches the persisted camera
func (c *APIClient) GetCamera() (Camera, error) {
	var cam Camera
	err := c.do("GET", "/api/camera", nil, &cam)
	return cam, err
}

// SetCamera persists the camera
func (c *APIClient) SetCamera(cam Camera) error {
	return c.do("PUT", "/api/camera", cam, nil)
}

// DialSnapshots opens the snapshot WebSocket
func (c *APIClient) DialSnapshots() (*websocket.Conn, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	return conn, err
}
