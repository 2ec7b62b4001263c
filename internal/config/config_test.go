package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test window defaults
	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}

	// Test picking defaults
	if cfg.Picking.Backend != BackendIDBuffer {
		t.Errorf("expected backend idbuffer, got %s", cfg.Picking.Backend)
	}
	if cfg.Picking.DragThreshold != 3 {
		t.Errorf("expected drag threshold 3, got %f", cfg.Picking.DragThreshold)
	}
	if cfg.Picking.SphereRadius != 0.5 {
		t.Errorf("expected sphere radius 0.5, got %f", cfg.Picking.SphereRadius)
	}
	if cfg.Picking.WaitTimeout != 2*time.Second {
		t.Errorf("expected wait timeout 2s, got %v", cfg.Picking.WaitTimeout)
	}

	// Test manipulator defaults
	if cfg.Manipulator.AxisLength != 1 {
		t.Errorf("expected axis length 1, got %f", cfg.Manipulator.AxisLength)
	}
	if cfg.Manipulator.AxisThickness != 0.05 {
		t.Errorf("expected axis thickness 0.05, got %f", cfg.Manipulator.AxisThickness)
	}
	if cfg.Manipulator.DragScale != 0.1 {
		t.Errorf("expected drag scale 0.1, got %f", cfg.Manipulator.DragScale)
	}

	// Test scene defaults
	if cfg.Scene.ObjectCount != 10 {
		t.Errorf("expected 10 objects, got %d", cfg.Scene.ObjectCount)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

picking:
  backend: raycast
  drag_threshold: 5
  wait_timeout: 500ms
  use_acceleration: true

manipulator:
  axis_length: 2
  axis_thickness: 0.1

scene:
  object_count: 64
  seed: 42
  spread: 10

logging:
  level: "debug"
  log_file: "pick.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Picking.Backend != BackendRayCast {
		t.Errorf("expected backend raycast, got %s", cfg.Picking.Backend)
	}
	if cfg.Picking.DragThreshold != 5 {
		t.Errorf("expected drag threshold 5, got %f", cfg.Picking.DragThreshold)
	}
	if cfg.Picking.WaitTimeout != 500*time.Millisecond {
		t.Errorf("expected wait timeout 500ms, got %v", cfg.Picking.WaitTimeout)
	}
	if !cfg.Picking.UseAcceleration {
		t.Error("expected use_acceleration to be true")
	}
	// Keys absent from the file keep their defaults.
	if cfg.Picking.SphereRadius != 0.5 {
		t.Errorf("expected default sphere radius 0.5, got %f", cfg.Picking.SphereRadius)
	}

	if cfg.Manipulator.AxisLength != 2 {
		t.Errorf("expected axis length 2, got %f", cfg.Manipulator.AxisLength)
	}
	if cfg.Scene.ObjectCount != 64 || cfg.Scene.Seed != 42 {
		t.Errorf("expected 64 objects seed 42, got %d seed %d", cfg.Scene.ObjectCount, cfg.Scene.Seed)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "pick.log" {
		t.Errorf("expected log file 'pick.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
window:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "typo.yaml")

	if err := os.WriteFile(configPath, []byte("picking:\n  backnd: raycast\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error for unknown key, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Picking.Backend = "optix" },
			wantErr: "unknown picking backend",
		},
		{
			name:    "zero width",
			mutate:  func(c *Config) { c.Window.Width = 0 },
			wantErr: "window size",
		},
		{
			name:    "too many objects",
			mutate:  func(c *Config) { c.Scene.ObjectCount = 1 << 24 },
			wantErr: "object_count",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.Picking.WaitTimeout = 0 },
			wantErr: "wait_timeout",
		},
		{
			name:    "far before near",
			mutate:  func(c *Config) { c.Camera.Far = 0.01 },
			wantErr: "near/far",
		},
		{
			name:    "flat gizmo",
			mutate:  func(c *Config) { c.Manipulator.AxisThickness = 0 },
			wantErr: "axis_thickness",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
	if filepath.Base(dir) != "objpick" {
		t.Errorf("ConfigDir should end in objpick, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "objpick.yaml")
	if err := os.WriteFile(configPath, []byte("window:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find objpick.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "backend flag",
			setup: func() {
				*flagBackend = BackendRayCast
			},
			verify: func(cfg *Config) {
				if cfg.Picking.Backend != BackendRayCast {
					t.Errorf("expected backend raycast, got %s", cfg.Picking.Backend)
				}
			},
			teardown: func() {
				*flagBackend = ""
			},
		},
		{
			name: "objects flag allows zero",
			setup: func() {
				*flagObjects = 0
			},
			verify: func(cfg *Config) {
				if cfg.Scene.ObjectCount != 0 {
					t.Errorf("expected 0 objects, got %d", cfg.Scene.ObjectCount)
				}
			},
			teardown: func() {
				*flagObjects = -1
			},
		},
		{
			name: "accel and seed flags",
			setup: func() {
				*flagAccel = true
				*flagSeed = 7
			},
			verify: func(cfg *Config) {
				if !cfg.Picking.UseAcceleration {
					t.Error("expected acceleration enabled")
				}
				if cfg.Scene.Seed != 7 {
					t.Errorf("expected seed 7, got %d", cfg.Scene.Seed)
				}
			},
			teardown: func() {
				*flagAccel = false
				*flagSeed = 0
			},
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 1024
				*flagHeight = 768
			},
			verify: func(cfg *Config) {
				if cfg.Window.Width != 1024 {
					t.Errorf("expected width 1024, got %d", cfg.Window.Width)
				}
				if cfg.Window.Height != 768 {
					t.Errorf("expected height 768, got %d", cfg.Window.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
picking:
  backend: raycast
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 800
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Flag should override file
	if cfg.Window.Width != 800 {
		t.Errorf("expected width 800 (from flag), got %d", cfg.Window.Width)
	}
	// File value should remain where no flag is set
	if cfg.Window.Height != 1080 {
		t.Errorf("expected height 1080 (from file), got %d", cfg.Window.Height)
	}
	if cfg.Picking.Backend != BackendRayCast {
		t.Errorf("expected backend raycast (from file), got %s", cfg.Picking.Backend)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Picking.Backend = BackendRayCast
	cfg.Picking.WaitTimeout = 750 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Picking.Backend != BackendRayCast {
		t.Errorf("expected backend raycast, got %s", loaded.Picking.Backend)
	}
	if loaded.Picking.WaitTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", loaded.Picking.WaitTimeout)
	}
}

func TestSaveWritesDefaultPath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only drives ConfigDir on linux")
	}
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg := Default()
	cfg.Scene.ObjectCount = 42
	path, err := cfg.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	want := filepath.Join(tmpDir, "objpick", "config.yaml")
	if path != want {
		t.Errorf("Save wrote %s, want %s", path, want)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Scene.ObjectCount != 42 {
		t.Errorf("expected object_count 42, got %d", loaded.Scene.ObjectCount)
	}
}

func TestSaveHonorsConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	*flagConfig = path
	defer func() { *flagConfig = "" }()

	got, err := Default().Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got != path {
		t.Errorf("Save wrote %s, want %s", got, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not written: %v", err)
	}
}
