package sim

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// BuildFunc constructs the simulation for one member of an ensemble.
type BuildFunc func(idx int) (*Simulation, error)

// Result summarises one finished ensemble member.
type Result struct {
	Index    int
	Status   Status
	Time     float64
	Energy   float64
	Megno    float64
	Lyapunov float64
	Elapsed  time.Duration
}

// Ensemble integrates independent simulations concurrently. Each member is
// built, integrated and summarised on its own goroutine.
type Ensemble struct {
	build   BuildFunc
	numRuns int

	// Workers bounds concurrency; zero means GOMAXPROCS.
	Workers int
	// Segments splits each integration so cancellation is noticed between
	// segments. Zero means a single segment.
	Segments int
}

func NewEnsemble(build BuildFunc, numRuns int) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns}
}

func (e *Ensemble) Run(ctx context.Context, tmax float64, opts IntegrateOptions) ([]Result, error) {
	results := make([]Result, e.numRuns)

	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	segments := max(e.Segments, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			s, err := e.build(i)
			if err != nil {
				return fmt.Errorf("build run %d: %w", i, err)
			}

			start := time.Now()
			t0 := s.Time()
			status := StatusOK
			for k := 1; k <= segments && status == StatusOK; k++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				target := t0 + (tmax-t0)*float64(k)/float64(segments)
				status, err = s.Integrate(target, opts)
				if err != nil {
					return fmt.Errorf("run %d: %w", i, err)
				}
			}

			results[i] = Result{
				Index:    i,
				Status:   status,
				Time:     s.Time(),
				Energy:   s.Energy(),
				Megno:    s.Megno(),
				Lyapunov: s.Lyapunov(),
				Elapsed:  time.Since(start),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
