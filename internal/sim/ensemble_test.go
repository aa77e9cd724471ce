package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/particle"
)

func TestEnsemble_Run(t *testing.T) {
	build := func(idx int) (*Simulation, error) {
		s := New(WithSeed(int64(idx)), WithIntegrator(integrators.WHFast), WithDt(0.05))
		s.Add(particle.Particle{M: 1})
		s.Add(particle.Orbit2D(1, s.Particle(0), 1e-3, 1+0.1*float64(idx), 0.1, 0, 0))
		s.InitMegno(1e-6)
		return s, nil
	}

	e := NewEnsemble(build, 4)
	e.Workers = 2
	e.Segments = 3

	results, err := e.Run(context.Background(), 20, IntegrateOptions{ExactFinish: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.Status != StatusOK {
			t.Errorf("result %d status %v", i, r.Status)
		}
		if math.Abs(r.Time-20) > 1e-9 {
			t.Errorf("result %d time %v", i, r.Time)
		}
		if r.Megno <= 0 {
			t.Errorf("result %d megno %v", i, r.Megno)
		}
	}
}

func TestEnsemble_BuildError(t *testing.T) {
	errBoom := errors.New("boom")
	build := func(idx int) (*Simulation, error) {
		if idx == 2 {
			return nil, errBoom
		}
		s := New()
		s.Add(particle.Particle{M: 1})
		return s, nil
	}

	_, err := NewEnsemble(build, 4).Run(context.Background(), 1, IntegrateOptions{})
	if !errors.Is(err, errBoom) {
		t.Errorf("expected build error, got %v", err)
	}
}

func TestEnsemble_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	build := func(idx int) (*Simulation, error) {
		s := New()
		s.Add(particle.Particle{M: 1})
		return s, nil
	}

	_, err := NewEnsemble(build, 2).Run(ctx, 1, IntegrateOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
