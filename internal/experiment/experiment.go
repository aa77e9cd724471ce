package experiment

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/metrics"
	"github.com/san-kum/nbody/internal/sim"
	"github.com/san-kum/nbody/internal/storage"
)

var ErrNotSetup = errors.New("experiment: not set up")

// Result is a finished run: the snapshots taken at each output time and the
// final metric values.
type Result struct {
	Status    sim.Status
	Snapshots []storage.Snapshot
	Metrics   map[string]float64
	Elapsed   time.Duration
}

// Experiment runs one configured problem, sampling it Run.Outputs times.
type Experiment struct {
	cfg     *config.Config
	sim     *sim.Simulation
	metrics []metrics.Metric
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the simulation and attaches ms, or the default metric set
// when ms is empty.
func (e *Experiment) Setup(ms []metrics.Metric, opts ...sim.Option) error {
	if len(ms) == 0 {
		ms = metrics.Default()
	}
	s, err := e.cfg.Build(opts...)
	if err != nil {
		return err
	}
	// metrics see the initial state before the first step
	for _, m := range ms {
		m.Observe(s)
	}
	s.AddObserver(metrics.Observer(ms...))

	e.sim = s
	e.metrics = ms
	return nil
}

// Simulation returns the underlying simulation for adding observers.
func (e *Experiment) Simulation() *sim.Simulation { return e.sim }

// Run integrates to Run.TMax. Cancellation is checked between outputs; a
// cancelled run returns what it has so far along with ctx's error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.sim == nil {
		return nil, ErrNotSetup
	}

	outputs := max(e.cfg.Run.Outputs, 1)
	tmax := e.cfg.Run.TMax
	opts := e.cfg.Run.Options()
	t0 := e.sim.Time()

	res := &Result{Snapshots: make([]storage.Snapshot, 0, outputs+1)}
	res.Snapshots = append(res.Snapshots, storage.Capture(e.sim))

	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		res.Metrics = metrics.Values(e.metrics...)
	}()

	for k := 1; k <= outputs; k++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		target := t0 + (tmax-t0)*float64(k)/float64(outputs)
		status, err := e.sim.Integrate(target, opts)
		if err != nil {
			return res, err
		}
		res.Snapshots = append(res.Snapshots, storage.Capture(e.sim))
		res.Status = status
		if status != sim.StatusOK {
			break
		}
	}
	return res, nil
}

// Metadata describes the finished run for storage.
func (e *Experiment) Metadata(res *Result) storage.RunMetadata {
	return storage.RunMetadata{
		Problem:    e.cfg.Name,
		Timestamp:  time.Now(),
		Seed:       e.cfg.Seed,
		Integrator: e.sim.Integrator().String(),
		Dt:         e.sim.Dt(),
		TMax:       e.cfg.Run.TMax,
		G:          e.sim.G(),
		N:          e.sim.N(),
		Status:     res.Status.String(),
		Elapsed:    res.Elapsed.Seconds(),
		Metrics:    res.Metrics,
	}
}
