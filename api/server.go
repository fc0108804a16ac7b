package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wricardo/isomaze/game/config"
	"github.com/wricardo/isomaze/game/engine"
	"github.com/wricardo/isomaze/game/service"
	"github.com/wricardo/isomaze/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// World lifecycle
	api.HandleFunc("/world", s.handleGetWorld).Methods("GET")
	api.HandleFunc("/world", s.handleNewWorld).Methods("POST")
	api.HandleFunc("/world/snapshot", s.handleGetSnapshot).Methods("GET")

	// Simulation
	api.HandleFunc("/world/input", s.handleSetInput).Methods("PUT")
	api.HandleFunc("/world/tick", s.handleTick).Methods("POST")

	// Queries
	api.HandleFunc("/world/path", s.handleFindPath).Methods("GET")
	api.HandleFunc("/world/followers/goal", s.handleRetarget).Methods("PUT")
	api.HandleFunc("/world/tiles/{x}/{y}", s.handleDescribeTile).Methods("GET")

	// Camera
	api.HandleFunc("/camera", s.handleGetCamera).Methods("GET")
	api.HandleFunc("/camera", s.handleSetCamera).Methods("PUT")
	api.HandleFunc("/camera/pan", s.handlePanCamera).Methods("POST")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidTickCount),
		errors.Is(err, service.ErrOutOfGrid),
		errors.Is(err, engine.ErrInvalidGoal),
		errors.Is(err, engine.ErrNoExit),
		errors.Is(err, engine.ErrNotEnoughSpace),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) broadcast(snap *engine.Snapshot, events []engine.Event) {
	if s.hub != nil {
		s.hub.BroadcastSnapshot(snap, events)
	}
}

// World Handlers

func (s *Server) handleGetWorld(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.GetWorld(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleNewWorld(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id,omitempty"`
		Seed     int64  `json:"seed,omitempty"`
	}

	// An empty body starts the default config with a random seed
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	info, err := s.service.NewWorld(r.Context(), req.ConfigID, req.Seed)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	log.Printf("[WORLD] New world %s config=%s seed=%d", info.ID, info.ConfigName, info.Seed)
	if s.hub != nil {
		s.hub.BroadcastEvent(info.ID, websocket.EventNewWorld, info.WorldConfig)
	}
	s.broadcast(info.Snapshot, nil)

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.GetSnapshot(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// Simulation Handlers

func (s *Server) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var in engine.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	held, err := s.service.SetInput(r.Context(), in)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, held)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ticks int           `json:"ticks"`
		Input *engine.Input `json:"input,omitempty"`
	}

	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if req.Ticks == 0 {
		req.Ticks = 1
	}

	result, err := s.service.Tick(r.Context(), req.Ticks, req.Input)
	if err != nil {
		// steps applied before a cancellation still reach the viewers
		if result != nil {
			s.broadcast(result.Snapshot, result.Events)
		}
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.broadcast(result.Snapshot, result.Events)

	log.Printf("[TICK] advanced=%d tick=%d events=%d escaped=%v",
		result.Ticks, result.Tick, len(result.Events), result.Escaped)

	respondJSON(w, http.StatusOK, result)
}

// Query Handlers

// parsePosition reads "x,y"
func parsePosition(value string) (engine.Position, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return engine.Position{}, fmt.Errorf("expected x,y but got %q", value)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid x in %q", value)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return engine.Position{}, fmt.Errorf("invalid y in %q", value)
	}
	return engine.Position{X: x, Y: y}, nil
}

func (s *Server) handleFindPath(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from, err := parsePosition(query.Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "from: "+err.Error())
		return
	}
	to, err := parsePosition(query.Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "to: "+err.Error())
		return
	}

	result, err := s.service.FindPath(r.Context(), from, to)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRetarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Goal engine.FollowerGoal `json:"goal"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snap, err := s.service.RetargetFollowers(r.Context(), req.Goal)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.broadcast(snap, nil)
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDescribeTile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	x, errX := strconv.Atoi(vars["x"])
	y, errY := strconv.Atoi(vars["y"])
	if errX != nil || errY != nil {
		respondError(w, http.StatusBadRequest, "Tile coordinates must be integers")
		return
	}

	info, err := s.service.DescribeTile(r.Context(), x, y)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, info)
}

// Camera Handlers

func (s *Server) handleGetCamera(w http.ResponseWriter, r *http.Request) {
	cam, err := s.service.GetCamera(r.Context())
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	respondJSON(w, http.StatusOK, cam)
}

func (s *Server) handleSetCamera(w http.ResponseWriter, r *http.Request) {
	var cam service.Camera
	if err := json.NewDecoder(r.Body).Decode(&cam); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := s.service.SetCamera(r.Context(), cam)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	if s.hub != nil {
		s.hub.BroadcastEvent("", websocket.EventCamera, saved)
	}
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handlePanCamera(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cam, err := s.service.PanCamera(r.Context(), req.DX, req.DY)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}
	if s.hub != nil {
		s.hub.BroadcastEvent("", websocket.EventCamera, cam)
	}
	respondJSON(w, http.StatusOK, cam)
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	cfg, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.WorldConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	configID := req.ConfigID
	if configID == "" {
		configID = req.Name
	}
	if configID == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	cfg := req.WorldConfig
	if err := s.service.SaveConfig(r.Context(), configID, &cfg); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
