package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/isomaze/game/service"
)

func TestFilePersistence(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "camera_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	t.Run("Load Before Save", func(t *testing.T) {
		if persistence.Exists() {
			t.Error("Camera file should not exist yet")
		}
		if _, err := persistence.LoadCamera(); !errors.Is(err, ErrCameraNotFound) {
			t.Errorf("Expected ErrCameraNotFound, got %v", err)
		}
	})

	t.Run("Save and Load Camera", func(t *testing.T) {
		cam := service.Camera{X: 4.5, Y: -1.25}
		if err := persistence.SaveCamera(cam); err != nil {
			t.Fatalf("Failed to save camera: %v", err)
		}

		if !persistence.Exists() {
			t.Error("Camera file should exist after save")
		}

		loaded, err := persistence.LoadCamera()
		if err != nil {
			t.Fatalf("Failed to load camera: %v", err)
		}
		if loaded != cam {
			t.Errorf("Expected %+v, got %+v", cam, loaded)
		}
	})

	t.Run("Overwrite Camera", func(t *testing.T) {
		if err := persistence.SaveCamera(service.Camera{X: 10, Y: 10}); err != nil {
			t.Fatalf("Failed to save camera: %v", err)
		}
		loaded, _ := persistence.LoadCamera()
		if loaded.X != 10 || loaded.Y != 10 {
			t.Errorf("Expected (10,10), got %+v", loaded)
		}

		if _, err := os.Stat(persistence.Path() + ".tmp"); !os.IsNotExist(err) {
			t.Error("Temp file should not be left behind")
		}
	})

	t.Run("Corrupt File", func(t *testing.T) {
		if err := os.WriteFile(persistence.Path(), []byte("{not json"), 0644); err != nil {
			t.Fatalf("Failed to write corrupt file: %v", err)
		}
		if _, err := persistence.LoadCamera(); err == nil {
			t.Error("Expected error loading corrupt camera file")
		}
	})
}

func TestFilePersistenceFileStructure(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "camera_structure_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dataDir := filepath.Join(tempDir, "nested", "data")
	persistence, err := NewFilePersistence(dataDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	if err := persistence.SaveCamera(service.Camera{X: 2, Y: 3}); err != nil {
		t.Fatalf("Failed to save camera: %v", err)
	}

	expected := filepath.Join(dataDir, CameraFileName)
	if persistence.Path() != expected {
		t.Errorf("Expected path %s, got %s", expected, persistence.Path())
	}

	data, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Failed to read camera file: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Camera file is not valid JSON: %v", err)
	}

	for _, field := range []string{"x", "y", "saved_at"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("Missing field %q in camera file", field)
		}
	}
	if raw["x"].(float64) != 2 || raw["y"].(float64) != 3 {
		t.Errorf("Unexpected camera values: %v", raw)
	}
}
