package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wricardo/isomaze/game/service"
)

// CameraFileName is the file written inside the data directory
const CameraFileName = "camera.json"

// FilePersistence implements CameraPersistence using file system storage
type FilePersistence struct {
	dataDir string
}

// NewFilePersistence creates a new file-based camera persistence layer
func NewFilePersistence(dataDir string) (*FilePersistence, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FilePersistence{dataDir: dataDir}, nil
}

// SaveCamera writes the camera to camera.json
func (fp *FilePersistence) SaveCamera(cam service.Camera) error {
	data := PersistedCamera{
		X:       cam.X,
		Y:       cam.Y,
		SavedAt: time.Now(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal camera: %w", err)
	}

	// Write through a temp file so a crash never leaves a truncated camera.json
	tmp := fp.getFilePath() + ".tmp"
	if err := os.WriteFile(tmp, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write camera file: %w", err)
	}
	if err := os.Rename(tmp, fp.getFilePath()); err != nil {
		return fmt.Errorf("failed to replace camera file: %w", err)
	}

	return nil
}

// LoadCamera reads camera.json
func (fp *FilePersistence) LoadCamera() (service.Camera, error) {
	jsonData, err := os.ReadFile(fp.getFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return service.Camera{}, ErrCameraNotFound
		}
		return service.Camera{}, fmt.Errorf("failed to read camera file: %w", err)
	}

	var data PersistedCamera
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return service.Camera{}, fmt.Errorf("failed to unmarshal camera: %w", err)
	}

	return service.Camera{X: data.X, Y: data.Y}, nil
}

// Exists checks if camera.json exists
func (fp *FilePersistence) Exists() bool {
	_, err := os.Stat(fp.getFilePath())
	return err == nil
}

// Path returns the location of camera.json
func (fp *FilePersistence) Path() string {
	return fp.getFilePath()
}

func (fp *FilePersistence) getFilePath() string {
	return filepath.Join(fp.dataDir, CameraFileName)
}
