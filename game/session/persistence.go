package session

import (
	"time"

	"github.com/wricardo/isomaze/game/service"
)

// CameraPersistence defines the interface for persisting the camera offset.
// The camera is the only state that survives a restart.
type CameraPersistence interface {
	// LoadCamera retrieves the stored camera
	LoadCamera() (service.Camera, error)

	// SaveCamera stores the camera
	SaveCamera(cam service.Camera) error

	// Exists checks if a camera has been stored
	Exists() bool
}

// PersistedCamera represents the JSON structure of camera.json
type PersistedCamera struct {
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	SavedAt time.Time `json:"saved_at,omitempty"`
}
