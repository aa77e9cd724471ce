// Package script runs extra force laws written in Lua.
//
// A script defines a global function
//
//	function forces(p, t)
//	    p:add_accel(2, 0.02, 0, 0)
//	end
//
// that is called after every gravity evaluation. p exposes the real particles
// with 1-based indices: count, mass, pos, vel, acc, add_accel, and G.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Shopify/go-lua"

	"github.com/san-kum/nbody/internal/sim"
)

const (
	particlesTypeName = "nbody.particles"
	forcesFuncName    = "forces"
)

// ErrNoForcesFunc is returned when a script does not define forces.
var ErrNoForcesFunc = errors.New("script: no global forces function")

type particlesView struct {
	s *sim.Simulation
}

// Forces is a loaded Lua force law. It is bound to a single goroutine, like
// the Simulation it drives.
type Forces struct {
	name  string
	state *lua.State
	view  *particlesView
	err   error
	log   *slog.Logger
}

// Load compiles src and runs its top level. name labels error messages.
func Load(name, src string) (*Forces, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerParticlesType(state)

	if err := lua.LoadBuffer(state, src, name, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	state.Global(forcesFuncName)
	ok := state.IsFunction(-1)
	state.Pop(1)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNoForcesFunc)
	}

	return &Forces{
		name:  name,
		state: state,
		view:  &particlesView{},
		log:   slog.Default(),
	}, nil
}

func LoadFile(path string) (*Forces, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(filepath.Base(path), string(data))
}

func (f *Forces) Name() string { return f.name }

// Err returns the first runtime error raised by the script. Once a script
// fails it is no longer called.
func (f *Forces) Err() error { return f.err }

// Apply calls forces(p, t) against s. It has the sim.ForceFunc signature.
func (f *Forces) Apply(s *sim.Simulation) {
	if f.err != nil {
		return
	}
	f.view.s = s
	defer func() { f.view.s = nil }()

	f.state.Global(forcesFuncName)
	f.state.PushUserData(f.view)
	lua.SetMetaTableNamed(f.state, particlesTypeName)
	f.state.PushNumber(s.Time())
	if err := f.state.ProtectedCall(2, 0, 0); err != nil {
		f.err = fmt.Errorf("%s: %w", f.name, err)
		f.log.Error("force script failed, disabling", "script", f.name, "t", s.Time(), "err", err)
	}
}

func registerParticlesType(state *lua.State) {
	lua.NewMetaTable(state, particlesTypeName)
	state.NewTable()
	lua.SetFunctions(state, particlesMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

var particlesMethods = []lua.RegistryFunction{
	{Name: "count", Function: particlesCount},
	{Name: "mass", Function: particlesMass},
	{Name: "pos", Function: particlesPos},
	{Name: "vel", Function: particlesVel},
	{Name: "acc", Function: particlesAcc},
	{Name: "add_accel", Function: particlesAddAccel},
	{Name: "G", Function: particlesG},
}

func checkView(state *lua.State) *sim.Simulation {
	ud := lua.CheckUserData(state, 1, particlesTypeName)
	if v, ok := ud.(*particlesView); ok && v.s != nil {
		return v.s
	}
	lua.ArgumentError(state, 1, "particles expected")
	return nil
}

// checkIndex converts a 1-based Lua index at position 2.
func checkIndex(state *lua.State, s *sim.Simulation) int {
	i := lua.CheckInteger(state, 2)
	if i < 1 || i > s.N() {
		lua.ArgumentError(state, 2, fmt.Sprintf("particle index %d out of range [1, %d]", i, s.N()))
	}
	return i - 1
}

func pushVec(state *lua.State, x, y, z float64) int {
	state.PushNumber(x)
	state.PushNumber(y)
	state.PushNumber(z)
	return 3
}

func particlesCount(state *lua.State) int {
	s := checkView(state)
	state.PushInteger(s.N())
	return 1
}

func particlesMass(state *lua.State) int {
	s := checkView(state)
	state.PushNumber(s.Particles()[checkIndex(state, s)].M)
	return 1
}

func particlesPos(state *lua.State) int {
	s := checkView(state)
	p := s.Particles()[checkIndex(state, s)].Pos
	return pushVec(state, p.X, p.Y, p.Z)
}

func particlesVel(state *lua.State) int {
	s := checkView(state)
	v := s.Particles()[checkIndex(state, s)].Vel
	return pushVec(state, v.X, v.Y, v.Z)
}

func particlesAcc(state *lua.State) int {
	s := checkView(state)
	a := s.Particles()[checkIndex(state, s)].A
	return pushVec(state, a.X, a.Y, a.Z)
}

func particlesAddAccel(state *lua.State) int {
	s := checkView(state)
	i := checkIndex(state, s)
	ps := s.Particles()
	ps[i].A.X += lua.OptNumber(state, 3, 0)
	ps[i].A.Y += lua.OptNumber(state, 4, 0)
	ps[i].A.Z += lua.OptNumber(state, 5, 0)
	return 0
}

func particlesG(state *lua.State) int {
	s := checkView(state)
	state.PushNumber(s.G())
	return 1
}
