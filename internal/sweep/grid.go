package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/nbody/internal/config"
	"github.com/san-kum/nbody/internal/sim"
)

var (
	ErrEmptyAxis = errors.New("sweep: axis has no values")
	ErrNoOrbit   = errors.New("sweep: body has no orbit elements")
)

// Param is one axis of a grid.
type Param struct {
	Name   string
	Values []float64
}

// BuildFunc constructs the simulation for grid point (x, y).
type BuildFunc func(x, y float64) (*sim.Simulation, error)

// Grid integrates one independent simulation per (x, y) point.
type Grid struct {
	X, Y  Param
	build BuildFunc

	Workers  int
	Segments int
}

func NewGrid(x, y Param, build BuildFunc) *Grid {
	return &Grid{X: x, Y: y, build: build}
}

type Cell struct {
	X, Y float64
	sim.Result
}

// Result holds cells row-major: Cells[iy][ix].
type Result struct {
	X, Y  Param
	Cells [][]Cell
}

func (g *Grid) Run(ctx context.Context, tmax float64, opts sim.IntegrateOptions) (*Result, error) {
	nx, ny := len(g.X.Values), len(g.Y.Values)
	if nx == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyAxis, g.X.Name)
	}
	if ny == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyAxis, g.Y.Name)
	}

	ens := sim.NewEnsemble(func(idx int) (*sim.Simulation, error) {
		x, y := g.X.Values[idx%nx], g.Y.Values[idx/nx]
		s, err := g.build(x, y)
		if err != nil {
			return nil, fmt.Errorf("%s=%g %s=%g: %w", g.X.Name, x, g.Y.Name, y, err)
		}
		return s, nil
	}, nx*ny)
	ens.Workers = g.Workers
	ens.Segments = g.Segments

	results, err := ens.Run(ctx, tmax, opts)
	if err != nil {
		return nil, err
	}

	res := &Result{X: g.X, Y: g.Y, Cells: make([][]Cell, ny)}
	for iy := range res.Cells {
		res.Cells[iy] = make([]Cell, nx)
		for ix := range res.Cells[iy] {
			res.Cells[iy][ix] = Cell{
				X:      g.X.Values[ix],
				Y:      g.Y.Values[iy],
				Result: results[iy*nx+ix],
			}
		}
	}
	return res, nil
}

// Best returns the cell minimising metric. Cells whose metric is NaN are
// skipped.
func (r *Result) Best(metric func(Cell) float64) (Cell, bool) {
	best := math.Inf(1)
	var bestCell Cell
	found := false
	for _, row := range r.Cells {
		for _, c := range row {
			v := metric(c)
			if math.IsNaN(v) || v >= best {
				continue
			}
			best, bestCell, found = v, c, true
		}
	}
	return bestCell, found
}

// Megno returns the MEGNO value of every cell, row-major.
func (r *Result) Megno() [][]float64 {
	out := make([][]float64, len(r.Cells))
	for iy, row := range r.Cells {
		out[iy] = make([]float64, len(row))
		for ix, c := range row {
			out[iy][ix] = c.Megno
		}
	}
	return out
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// OrbitBuilder varies the semi-major axis (x) and eccentricity (y) of one
// body of cfg. Each call works on its own copy of cfg.
func OrbitBuilder(cfg *config.Config, body int, opts ...sim.Option) (BuildFunc, error) {
	if body < 0 || body >= len(cfg.Bodies) || cfg.Bodies[body].Orbit == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoOrbit, body)
	}
	return func(a, e float64) (*sim.Simulation, error) {
		c := cfg.Clone()
		c.Bodies[body].Orbit.A = a
		c.Bodies[body].Orbit.E = e
		return c.Build(opts...)
	}, nil
}
