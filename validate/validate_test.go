package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/isomaze/game/engine"
)

const validConfig = `{
	"name": "Test Config",
	"description": "Test configuration",
	"width": 11,
	"height": 9,
	"start": {"x": 0, "y": 0},
	"place_exit": true,
	"followers": 2,
	"follower_goal": "exit",
	"tick_rate": 60,
	"messages": {
		"welcome": "Welcome!",
		"escaped": "Out!",
		"follower_arrived": "Follower %s arrived"
	}
}`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func hasMessage(result ValidationResult, substr string) bool {
	for _, msg := range result.Messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeConfig(t, validConfig)

	result := validateConfig(path, 8)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Messages)
	}
	if result.File != "test_config.json" {
		t.Errorf("Expected file name test_config.json, got %s", result.File)
	}
	if !hasMessage(result, "Seeds checked: 8") {
		t.Errorf("Expected seed count in report: %v", result.Messages)
	}
	if !hasMessage(result, "start to exit route") {
		t.Errorf("Expected route summary in report: %v", result.Messages)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, `{"name": "test", invalid json}`)

	result := validateConfig(path, 1)
	if result.Valid {
		t.Error("Expected invalid config due to bad JSON")
	}
	if !hasMessage(result, "Invalid JSON") {
		t.Error("Expected 'Invalid JSON' error")
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig("/non/existent/file.json", 1)
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasMessage(result, "Failed to read file") {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateConfig_RuleViolations(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantMsg string
	}{
		{"grid too small", `"width": 11`, `"width": 2`, "width must be between"},
		{"start outside grid", `"start": {"x": 0, "y": 0}`, `"start": {"x": 20, "y": 0}`, "outside"},
		{"exit goal without exit", `"place_exit": true`, `"place_exit": false`, "requires place_exit"},
		{"unknown goal", `"follower_goal": "exit"`, `"follower_goal": "treasure"`, "follower_goal must be"},
		{"missing welcome", `"welcome": "Welcome!",`, ``, "messages.welcome"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validConfig, tt.from, tt.to, 1)
			result := validateConfig(writeConfig(t, content), 1)
			if result.Valid {
				t.Fatal("Expected invalid config")
			}
			if !hasMessage(result, tt.wantMsg) {
				t.Errorf("Expected error containing %q, got %v", tt.wantMsg, result.Messages)
			}
		})
	}
}

func TestCheckWorld_GeneratedMazes(t *testing.T) {
	cfg := engine.DefaultWorldConfig()
	for seed := int64(1); seed <= 20; seed++ {
		world, err := engine.NewWorld(cfg, seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if problems := checkWorld(world); len(problems) > 0 {
			t.Errorf("seed %d: unexpected problems %v", seed, problems)
		}
	}
}

func TestCheckWorld_OddStart(t *testing.T) {
	cfg := engine.DefaultWorldConfig()
	cfg.Width, cfg.Height = 15, 13
	cfg.Start = engine.Position{X: 1, Y: 1}
	cfg.Followers = 3

	world, err := engine.NewWorld(cfg, 99)
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}
	if problems := checkWorld(world); len(problems) > 0 {
		t.Errorf("unexpected problems %v", problems)
	}
}

func TestValidateConfig_BundledConfigs(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "configs", "*.json"))
	if err != nil || len(files) == 0 {
		t.Skip("Skipping test - configs directory not found")
	}

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			result := validateConfig(file, 4)
			if !result.Valid {
				t.Errorf("Bundled config is invalid: %v", result.Messages)
			}
		})
	}
}
