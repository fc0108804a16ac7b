package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/isomaze/game/engine"
	"github.com/wricardo/isomaze/game/service"
)

var (
	ErrNoActiveWorld  = errors.New("no active world")
	ErrCameraNotFound = errors.New("camera not persisted")
)

// Manager owns the single active world and the camera offset
type Manager struct {
	current     *service.Session
	camera      service.Camera
	persistence CameraPersistence
	mu          sync.RWMutex
}

var _ service.SessionManager = (*Manager)(nil)

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{}
}

// NewManagerWithPersistence creates a session manager that autosaves the camera
func NewManagerWithPersistence(persistence CameraPersistence) *Manager {
	return &Manager{persistence: persistence}
}

// Start generates a world and makes it the active one, replacing any previous world
func (m *Manager) Start(configID string, config *engine.WorldConfig, seed int64) (*service.Session, error) {
	world, err := engine.NewWorld(config, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create world: %w", err)
	}

	now := time.Now()
	session := &service.Session{
		ID:             world.ID,
		World:          world,
		ConfigID:       configID,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.mu.Lock()
	previous := m.current
	m.current = session
	m.mu.Unlock()

	if previous != nil {
		log.Printf("[WORLD] Replaced world %s with %s", previous.ID, session.ID)
	}
	return session, nil
}

// Current returns the active session
func (m *Manager) Current() (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrNoActiveWorld
	}
	return m.current, nil
}

// UpdateLastAccessed updates the last accessed time of the active session
func (m *Manager) UpdateLastAccessed() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return ErrNoActiveWorld
	}
	m.current.LastAccessedAt = time.Now()
	return nil
}

// Camera returns the camera offset
func (m *Manager) Camera() service.Camera {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.camera
}

// SetCamera replaces the camera offset, saving it when persistence is configured
func (m *Manager) SetCamera(cam service.Camera) error {
	m.mu.Lock()
	m.camera = cam
	m.mu.Unlock()

	if m.persistence != nil {
		if err := m.persistence.SaveCamera(cam); err != nil {
			return fmt.Errorf("failed to persist camera: %w", err)
		}
	}
	return nil
}

// LoadPersistedCamera restores the camera saved by a previous run
func (m *Manager) LoadPersistedCamera() error {
	if m.persistence == nil || !m.persistence.Exists() {
		return nil
	}

	cam, err := m.persistence.LoadCamera()
	if err != nil {
		return fmt.Errorf("failed to load persisted camera: %w", err)
	}

	m.mu.Lock()
	m.camera = cam
	m.mu.Unlock()

	log.Printf("[CAMERA] Restored camera (%.1f, %.1f)", cam.X, cam.Y)
	return nil
}
