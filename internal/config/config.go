// Package config loads and saves simulation scenarios.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/body"
)

const (
	DefaultDt            = 0.01
	DefaultStepsPerFrame = 10
	DefaultMethod        = "verlet"
	DefaultG             = 6.674e-11
	DefaultScaleFactor   = 1.0
)

type Config struct {
	Bodies  []body.Spec `yaml:"bodies"`
	Physics Physics     `yaml:"physics"`
	Display Display     `yaml:"display"`
}

// Physics is the engine configuration block.
type Physics struct {
	G             float64 `yaml:"g"`
	Dt            float64 `yaml:"dt"`
	ScaleFactor   float64 `yaml:"scale_factor"`
	StepsPerFrame int     `yaml:"steps_per_frame"`
	Method        string  `yaml:"method"`
}

// Display is opaque passthrough for the rendering boundary; the engine
// never reads it.
type Display struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background [3]int `yaml:"background_color"`
	TrailAlpha int    `yaml:"trail_alpha"`
}

// Default returns the classic sun-and-two-planets scenario.
func Default() *Config {
	return &Config{
		Bodies: []body.Spec{
			{Mass: 1.0e6, Position: [2]float64{0, 0}, Velocity: [2]float64{0, 0}, Radius: 10, Color: [3]int{255, 255, 0}, TrailLength: 500},
			{Mass: 1.0e4, Position: [2]float64{100, 0}, Velocity: [2]float64{0, 40}, Radius: 5, Color: [3]int{0, 255, 0}, TrailLength: 500},
			{Mass: 1.0e4, Position: [2]float64{-100, 0}, Velocity: [2]float64{0, -40}, Radius: 5, Color: [3]int{0, 0, 255}, TrailLength: 500},
		},
		Physics: Physics{
			G:             DefaultG,
			Dt:            DefaultDt,
			ScaleFactor:   DefaultScaleFactor,
			StepsPerFrame: DefaultStepsPerFrame,
			Method:        DefaultMethod,
		},
		Display: Display{
			Width:      800,
			Height:     600,
			Background: [3]int{0, 0, 0},
			TrailAlpha: 150,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.Bodies) == 0 {
		cfg.Bodies = Default().Bodies
	}
	return cfg, cfg.Validate()
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks engine-relevant fields; display values are not
// interpreted here.
func (c *Config) Validate() error {
	if c.Physics.Dt <= 0 {
		return fmt.Errorf("config: dt must be positive, got %v", c.Physics.Dt)
	}
	if c.Physics.StepsPerFrame <= 0 {
		return fmt.Errorf("config: steps_per_frame must be positive, got %d", c.Physics.StepsPerFrame)
	}
	for i, s := range c.Bodies {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("config: body %d: %w", i, err)
		}
	}
	return nil
}
