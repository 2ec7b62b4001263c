// Package config handles application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Picking backends.
const (
	BackendIDBuffer = "idbuffer"
	BackendRayCast  = "raycast"
)

// maxObjects is the largest object count whose ids fit in a 24-bit id color.
const maxObjects = 1<<24 - 1

// Config holds all settings.
type Config struct {
	Window      WindowConfig      `yaml:"window"`
	Camera      CameraConfig      `yaml:"camera"`
	Picking     PickingConfig     `yaml:"picking"`
	Manipulator ManipulatorConfig `yaml:"manipulator"`
	Scene       SceneConfig       `yaml:"scene"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// CameraConfig holds the orbit camera's projection and starting pose.
type CameraConfig struct {
	FOVDegrees float32 `yaml:"fov_degrees"`
	Near       float32 `yaml:"near"`
	Far        float32 `yaml:"far"`
	Distance   float32 `yaml:"distance"`
	Pitch      float32 `yaml:"pitch"` // radians
	Yaw        float32 `yaml:"yaw"`   // radians
}

// PickingConfig holds pick backend settings.
type PickingConfig struct {
	Backend         string        `yaml:"backend"`
	DragThreshold   float32       `yaml:"drag_threshold"` // pixels
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
	SphereRadius    float32       `yaml:"sphere_radius"`
	UseAcceleration bool          `yaml:"use_acceleration"`
}

// ManipulatorConfig holds gizmo geometry and drag tuning.
type ManipulatorConfig struct {
	AxisLength    float32 `yaml:"axis_length"`
	AxisThickness float32 `yaml:"axis_thickness"`
	DragScale     float32 `yaml:"drag_scale"`
	JitterPixels  float32 `yaml:"jitter_pixels"`
}

// SceneConfig controls the generated demo scene.
type SceneConfig struct {
	ObjectCount int     `yaml:"object_count"`
	Seed        int64   `yaml:"seed"` // 0 picks a time-based seed
	Spread      float32 `yaml:"spread"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "objpick",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: CameraConfig{
			FOVDegrees: 60,
			Near:       0.1,
			Far:        512,
			Distance:   15,
			Pitch:      0.35,
		},
		Picking: PickingConfig{
			Backend:       BackendIDBuffer,
			DragThreshold: 3,
			WaitTimeout:   2 * time.Second,
			SphereRadius:  0.5,
		},
		Manipulator: ManipulatorConfig{
			AxisLength:    1,
			AxisThickness: 0.05,
			DragScale:     0.1,
			JitterPixels:  1,
		},
		Scene: SceneConfig{
			ObjectCount: 10,
			Spread:      5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports settings the application cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	switch c.Picking.Backend {
	case BackendIDBuffer, BackendRayCast:
	default:
		errs = append(errs, fmt.Errorf("unknown picking backend %q", c.Picking.Backend))
	}
	if c.Picking.WaitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("picking wait_timeout %v must be positive", c.Picking.WaitTimeout))
	}
	if c.Picking.SphereRadius <= 0 {
		errs = append(errs, fmt.Errorf("picking sphere_radius %v must be positive", c.Picking.SphereRadius))
	}
	if c.Manipulator.AxisLength <= 0 || c.Manipulator.AxisThickness <= 0 {
		errs = append(errs, errors.New("manipulator axis_length and axis_thickness must be positive"))
	}
	if c.Scene.ObjectCount < 0 || c.Scene.ObjectCount > maxObjects {
		errs = append(errs, fmt.Errorf("scene object_count %d outside [0, %d]", c.Scene.ObjectCount, maxObjects))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera near/far %v/%v invalid", c.Camera.Near, c.Camera.Far))
	}

	return errors.Join(errs...)
}
