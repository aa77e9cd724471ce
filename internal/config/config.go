package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbody/internal/sim"
)

const (
	DefaultDt         = 0.01
	DefaultTMax       = 100.0
	DefaultG          = 1.0
	DefaultOutputs    = 100
	DefaultIntegrator = "leapfrog"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid problem")

// Config describes one n-body problem: constants, integrator, bodies and how
// to run it. Active counts the bodies acting as gravity sources; zero means
// all of them.
type Config struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Integrator  string       `yaml:"integrator"`
	G           float64      `yaml:"g"`
	Dt          float64      `yaml:"dt"`
	Softening   float64      `yaml:"softening,omitempty"`
	Active      int          `yaml:"active,omitempty"`
	Tolerance   float64      `yaml:"tolerance,omitempty"`
	Seed        int64        `yaml:"seed,omitempty"`
	Flags       *FlagsConfig `yaml:"flags,omitempty"`

	CenterOfMomentum bool    `yaml:"center_of_momentum,omitempty"`
	MegnoDelta       float64 `yaml:"megno_delta,omitempty"`

	// Script is inline Lua source; ScriptFile is a path to it.
	Script     string `yaml:"script,omitempty"`
	ScriptFile string `yaml:"script_file,omitempty"`

	Bodies []BodyConfig `yaml:"bodies"`
	Run    RunConfig    `yaml:"run"`
}

type FlagsConfig struct {
	ManualSync          bool `yaml:"manual_sync"`
	PersistentParticles bool `yaml:"persistent_particles"`
	VelocityDependent   bool `yaml:"velocity_dependent"`
}

// BodyConfig is a particle given either in Cartesian coordinates or, when
// Orbit is set, by planar orbital elements around an earlier body.
type BodyConfig struct {
	Name  string       `yaml:"name,omitempty"`
	M     float64      `yaml:"m"`
	Pos   [3]float64   `yaml:"pos,flow"`
	Vel   [3]float64   `yaml:"vel,flow"`
	Orbit *OrbitConfig `yaml:"orbit,omitempty"`
}

type OrbitConfig struct {
	Primary int     `yaml:"primary"`
	A       float64 `yaml:"a"`
	E       float64 `yaml:"e"`
	Omega   float64 `yaml:"omega"`
	F       float64 `yaml:"f"`
}

type RunConfig struct {
	TMax             float64 `yaml:"tmax"`
	Outputs          int     `yaml:"outputs"`
	ExactFinish      bool    `yaml:"exact_finish"`
	KeepSynchronized bool    `yaml:"keep_synchronized,omitempty"`
	MaxRadius        float64 `yaml:"max_radius,omitempty"`
	MinDistance      float64 `yaml:"min_distance,omitempty"`
}

// Options converts the run section to driving-loop options.
func (r RunConfig) Options() sim.IntegrateOptions {
	return sim.IntegrateOptions{
		ExactFinish:      r.ExactFinish,
		KeepSynchronized: r.KeepSynchronized,
		MaxRadius:        r.MaxRadius,
		MinDistance:      r.MinDistance,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "custom",
		Integrator: DefaultIntegrator,
		G:          DefaultG,
		Dt:         DefaultDt,
		Run: RunConfig{
			TMax:        DefaultTMax,
			Outputs:     DefaultOutputs,
			ExactFinish: true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

// Validate checks the problem for values the simulation cannot use.
func (c *Config) Validate() error {
	if c.Dt == 0 {
		return fmt.Errorf("%w: dt must be non-zero", ErrInvalidConfig)
	}
	if len(c.Bodies) == 0 {
		return fmt.Errorf("%w: no bodies", ErrInvalidConfig)
	}
	if c.Run.Outputs < 0 {
		return fmt.Errorf("%w: outputs must be non-negative, got %d", ErrInvalidConfig, c.Run.Outputs)
	}
	if c.Script != "" && c.ScriptFile != "" {
		return fmt.Errorf("%w: script and script_file are exclusive", ErrInvalidConfig)
	}
	for i, b := range c.Bodies {
		if b.M < 0 {
			return fmt.Errorf("%w: body %d has negative mass", ErrInvalidConfig, i)
		}
		if o := b.Orbit; o != nil {
			if o.Primary < 0 || o.Primary >= i {
				return fmt.Errorf("%w: body %d orbits %d, which is not an earlier body", ErrInvalidConfig, i, o.Primary)
			}
			if o.A <= 0 || o.E < 0 || o.E >= 1 {
				return fmt.Errorf("%w: body %d needs a > 0 and 0 <= e < 1", ErrInvalidConfig, i)
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		cp.Bodies[i] = b
		if b.Orbit != nil {
			o := *b.Orbit
			cp.Bodies[i].Orbit = &o
		}
	}
	if c.Flags != nil {
		f := *c.Flags
		cp.Flags = &f
	}
	return &cp
}
