package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/physics"
)

const (
	DefaultModel  = "simple_harmonic"
	DefaultMethod = "euler-cromer"
	DefaultDt     = 0.1
	DefaultStart  = 0.0
	DefaultEnd    = 60.0
	DefaultX      = 0.2
	DefaultV      = 0.0
)

type Config struct {
	Model    string             `yaml:"model"`
	Method   string             `yaml:"method"`
	Dt       float64            `yaml:"dt"`
	Start    float64            `yaml:"start"`
	End      float64            `yaml:"end"`
	Init     InitStateConfig    `yaml:"init_state"`
	Params   map[string]float64 `yaml:"params,omitempty"`
	Adaptive AdaptiveConfig     `yaml:"adaptive"`
	// Bound is the sanity bound for the divergence check; 0 only checks finiteness.
	Bound float64 `yaml:"bound,omitempty"`
}

type InitStateConfig struct {
	X float64 `yaml:"x"`
	V float64 `yaml:"v"`
}

type AdaptiveConfig struct {
	RelTol   float64 `yaml:"rtol"`
	AbsTol   float64 `yaml:"atol"`
	MinStep  float64 `yaml:"min_step,omitempty"`
	MaxStep  float64 `yaml:"max_step,omitempty"`
	MaxSteps int     `yaml:"max_steps"`
}

func DefaultConfig() *Config {
	opts := integrators.DefaultAdaptiveOptions()
	return &Config{
		Model:  DefaultModel,
		Method: DefaultMethod,
		Dt:     DefaultDt,
		Start:  DefaultStart,
		End:    DefaultEnd,
		Init: InitStateConfig{
			X: DefaultX,
			V: DefaultV,
		},
		Adaptive: AdaptiveConfig{
			RelTol:   opts.RelTol,
			AbsTol:   opts.AbsTol,
			MinStep:  opts.MinStep,
			MaxSteps: opts.MaxSteps,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate resolves every name in the config without running anything.
func (c *Config) Validate() error {
	if _, err := c.ForceLaw(); err != nil {
		return err
	}
	if _, err := integrators.ParseMethod(c.Method); err != nil {
		return err
	}
	if _, err := c.Grid(); err != nil {
		return err
	}
	return c.AdaptiveOptions().Validate()
}

// Grid builds the uniform time grid [Start, End) with step Dt.
func (c *Config) Grid() (dynamo.TimeGrid, error) {
	return dynamo.NewTimeGrid(c.Start, c.End, c.Dt)
}

// ForceLaw resolves the model with the configured overrides applied.
func (c *Config) ForceLaw() (*physics.ForceLaw, error) {
	return physics.NewWithParams(c.Model, c.Params)
}

func (c *Config) InitialState() dynamo.State {
	return dynamo.NewState(c.Init.X, c.Init.V)
}

func (c *Config) AdaptiveOptions() integrators.AdaptiveOptions {
	return integrators.AdaptiveOptions{
		RelTol:   c.Adaptive.RelTol,
		AbsTol:   c.Adaptive.AbsTol,
		MinStep:  c.Adaptive.MinStep,
		MaxStep:  c.Adaptive.MaxStep,
		MaxSteps: c.Adaptive.MaxSteps,
	}
}

// Clone returns a deep copy, so presets can be handed out safely.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}
