package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/experiment"
	"github.com/san-kum/nbody/internal/sim"
	"github.com/san-kum/nbody/internal/storage"
)

var ErrEmptyStep = errors.New("automation: step names neither a preset nor a config file")

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset or problem file plus overrides. Zero
// overrides keep the problem's own values.
type ScenarioStep struct {
	Preset     string  `yaml:"preset"`
	Config     string  `yaml:"config"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	TMax       float64 `yaml:"tmax"`
	Outputs    int     `yaml:"outputs"`
	Seed       int64   `yaml:"seed"`
	SaveAs     string  `yaml:"save_as"`
}

type StepResult struct {
	Step  int
	RunID string
	*experiment.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &scenario, nil
}

func (st ScenarioStep) problem() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case st.Config != "":
		c, err := config.Load(st.Config)
		if err != nil {
			return nil, err
		}
		cfg = c
	case st.Preset != "":
		cfg = config.GetPreset(st.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", st.Preset)
		}
	default:
		return nil, ErrEmptyStep
	}

	if st.Integrator != "" {
		cfg.Integrator = st.Integrator
	}
	if st.Dt != 0 {
		cfg.Dt = st.Dt
	}
	if st.TMax != 0 {
		cfg.Run.TMax = st.TMax
	}
	if st.Outputs != 0 {
		cfg.Run.Outputs = st.Outputs
	}
	if st.Seed != 0 {
		cfg.Seed = st.Seed
	}
	return cfg, cfg.Validate()
}

// Run executes the steps in order, saving each run to store when it is not
// nil. It stops at the first failing step.
func (sc *Scenario) Run(ctx context.Context, store *storage.Store, log *slog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		cfg, err := step.problem()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Info("scenario step", "step", i+1, "of", len(sc.Steps), "problem", cfg.Name, "integrator", cfg.Integrator)

		exp := experiment.New(cfg)
		if err := exp.Setup(nil, sim.WithLogger(log)); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		res, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: i + 1, Result: res}
		if store != nil {
			meta := exp.Metadata(res)
			meta.ID = step.SaveAs
			id, err := store.Save(meta, res.Snapshots)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		results = append(results, sr)
	}

	return results, nil
}

// MonteCarlo integrates copies of a problem whose positions and velocities
// are scaled by independent factors drawn from [1-Perturbation,
// 1+Perturbation].
type MonteCarlo struct {
	Config       *config.Config
	Perturbation float64
	Trials       int
	Seed         int64
	Workers      int
}

type TrialResult struct {
	sim.Result
	Stable bool
}

func (mc *MonteCarlo) perturbed(trial int) (*sim.Simulation, error) {
	rng := rand.New(rand.NewSource(mc.Seed + int64(trial)))
	jitter := func() float64 { return 1 + (rng.Float64()-0.5)*2*mc.Perturbation }

	ps := mc.Config.Particles()
	for i := range ps {
		ps[i].Pos.X *= jitter()
		ps[i].Pos.Y *= jitter()
		ps[i].Pos.Z *= jitter()
		ps[i].Vel.X *= jitter()
		ps[i].Vel.Y *= jitter()
		ps[i].Vel.Z *= jitter()
	}

	s, err := mc.Config.Build(sim.WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		return nil, err
	}
	s.ReplaceAll(ps)
	return s, nil
}

// Run integrates every trial to the problem's TMax. A trial is stable when
// it finishes without an escape or close encounter.
func (mc *MonteCarlo) Run(ctx context.Context) ([]TrialResult, error) {
	ens := sim.NewEnsemble(mc.perturbed, mc.Trials)
	ens.Workers = mc.Workers

	results, err := ens.Run(ctx, mc.Config.Run.TMax, mc.Config.Run.Options())
	if err != nil {
		return nil, err
	}

	out := make([]TrialResult, len(results))
	for i, r := range results {
		out[i] = TrialResult{Result: r, Stable: r.Status == sim.StatusOK}
	}
	return out, nil
}

func MonteCarloStats(results []TrialResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
