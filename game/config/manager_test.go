package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/isomaze/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.WorldConfig {
	cfg := engine.DefaultWorldConfig()
	cfg.Name = "Test Config"
	cfg.Description = "Test configuration"
	cfg.Width = 11
	cfg.Height = 9
	cfg.Followers = 2
	return cfg
}

func writeConfigFile(t *testing.T, dir, name string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Classic" {
			t.Errorf("Expected classic as default, got %s", got)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		if _, err := NewManager("/non/existent/path"); err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory falls back to built-in", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed without config files, got: %v", err)
		}

		def := manager.GetDefault()
		if def == nil {
			t.Fatal("Expected default config to be available")
		}
		if def.Name != engine.DefaultWorldConfig().Name {
			t.Errorf("Expected built-in default, got %s", def.Name)
		}
		if err := engine.ValidateWorldConfig(def); err != nil {
			t.Errorf("Built-in default should validate: %v", err)
		}
	})

	t.Run("first file used when classic missing", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		b := createValidConfig()
		b.Name = "Bravo"
		writeConfigFile(t, dir, "bravo", b)
		a := createValidConfig()
		a.Name = "Alpha"
		writeConfigFile(t, dir, "alpha", a)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Alpha" {
			t.Errorf("Expected Alpha as default, got %s", got)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "classic", createValidConfig())

	// Minimal file relying on defaults for agents, goal and tick rate
	writeConfigFile(t, dir, "sparse", map[string]interface{}{
		"name":        "Sparse",
		"description": "Only the required fields",
		"width":       7,
		"height":      7,
		"place_exit":  true,
		"followers":   1,
		"messages": map[string]string{
			"welcome": "hi",
			"escaped": "bye",
		},
	})

	invalid := createValidConfig()
	invalid.Width = 1
	writeConfigFile(t, dir, "invalid", invalid)

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name      string
		config    string
		wantErr   error
		anyErr    bool
		wantWidth int
	}{
		{name: "load existing", config: "classic", wantWidth: 11},
		{name: "with json extension", config: "classic.json", wantWidth: 11},
		{name: "defaults applied", config: "sparse", wantWidth: 7},
		{name: "missing", config: "nope", wantErr: ErrConfigNotFound},
		{name: "invalid", config: "invalid", wantErr: ErrInvalidConfig},
		{name: "unparseable", config: "broken", anyErr: true},
		{name: "path traversal", config: "../classic", wantErr: ErrInvalidName},
		{name: "empty name", config: "", wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := manager.LoadConfig(tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if tt.anyErr {
				if err == nil {
					t.Error("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.Width != tt.wantWidth {
				t.Errorf("Expected width %d, got %d", tt.wantWidth, cfg.Width)
			}
		})
	}

	sparse, _ := manager.LoadConfig("sparse")
	if sparse.FollowerGoal != engine.GoalExit {
		t.Errorf("Expected default follower goal, got %s", sparse.FollowerGoal)
	}
	if sparse.TickRate != engine.DefaultWorldConfig().TickRate {
		t.Errorf("Expected default tick rate, got %d", sparse.TickRate)
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	small := createValidConfig()
	small.Name = "Small"
	small.Width, small.Height = 5, 5
	writeConfigFile(t, dir, "small", small)

	open := createValidConfig()
	open.Name = "Open"
	open.PlaceExit = false
	open.Followers = 0
	open.Messages.Escaped = ""
	writeConfigFile(t, dir, "open", open)

	invalid := createValidConfig()
	invalid.Height = 0
	writeConfigFile(t, dir, "zz_invalid", invalid)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}

	if configs[0].ConfigID != "open" || configs[1].ConfigID != "small" {
		t.Errorf("Expected sorted [open small], got [%s %s]", configs[0].ConfigID, configs[1].ConfigID)
	}
	if configs[0].PlaceExit {
		t.Error("open should report place_exit false")
	}
	if configs[1].Width != 5 || configs[1].Height != 5 || configs[1].Followers != 2 {
		t.Errorf("Unexpected small info: %+v", configs[1])
	}
	if configs[1].Filename != "small.json" || configs[1].Name != "Small" {
		t.Errorf("Unexpected small names: %+v", configs[1])
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	cfg := createValidConfig()
	cfg.Name = "Saved"
	if err := manager.SaveConfig("saved", cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected saved.json on disk: %v", err)
	}

	// A fresh manager reads it back from disk
	fresh, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	loaded, err := fresh.LoadConfig("saved")
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Name != "Saved" || loaded.Width != cfg.Width {
		t.Errorf("Round trip mismatch: %+v", loaded)
	}

	bad := createValidConfig()
	bad.TickRate = engine.MaxTickRate + 1
	if err := manager.SaveConfig("bad", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
		t.Error("Invalid config should not be written")
	}

	if err := manager.SaveConfig("../escape", cfg); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}
	if err := manager.SaveConfig("nil", nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil, got %v", err)
	}
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	classic := createValidConfig()
	classic.Name = "Classic"
	writeConfigFile(t, dir, "classic", classic)
	other := createValidConfig()
	other.Name = "Other"
	writeConfigFile(t, dir, "other", other)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if manager.GetDefault().Name != "Other" {
		t.Error("Expected Other as default")
	}
	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}

	// Edit on disk, then refresh
	classic.Name = "Classic v2"
	writeConfigFile(t, dir, "classic", classic)

	cached, _ := manager.LoadConfig("classic")
	if cached.Name != "Classic" {
		t.Errorf("Expected cached value before refresh, got %s", cached.Name)
	}

	done := make(chan struct{})
	go func() {
		manager.RefreshCache()
		close(done)
	}()
	<-done

	if manager.GetDefault().Name != "Classic v2" {
		t.Errorf("Expected refreshed default, got %s", manager.GetDefault().Name)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected only the default cached after refresh, got %d", manager.Count())
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	for _, name := range []string{"classic", "a", "b", "c"} {
		writeConfigFile(t, dir, name, createValidConfig())
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names := []string{"classic", "a", "b", "c"}
			if _, err := manager.LoadConfig(names[i%len(names)]); err != nil {
				errs <- err
			}
			if i%10 == 0 {
				if _, err := manager.ListConfigs(); err != nil {
					errs <- err
				}
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent access error: %v", err)
	}
	if manager.Count() != 4 {
		t.Errorf("Expected 4 cached configs, got %d", manager.Count())
	}
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "classic", createValidConfig())

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	first, _ := manager.LoadConfig("classic")
	second, _ := manager.LoadConfig("classic")
	if first != second {
		t.Error("Expected cached config pointer to be reused")
	}
}
