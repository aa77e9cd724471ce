package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds overrides read from the environment. Zero values leave the
// problem untouched.
type Env struct {
	Dt         float64 `env:"NBODY_DT"`
	Integrator string  `env:"NBODY_INTEGRATOR"`
	TMax       float64 `env:"NBODY_TMAX"`
	DataDir    string  `env:"NBODY_DATA_DIR" envDefault:"data"`
}

func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply overrides the problem's settings with any values that are set.
func (e Env) Apply(c *Config) {
	if e.Dt != 0 {
		c.Dt = e.Dt
	}
	if e.Integrator != "" {
		c.Integrator = e.Integrator
	}
	if e.TMax != 0 {
		c.Run.TMax = e.TMax
	}
}
