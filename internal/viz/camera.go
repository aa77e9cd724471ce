package viz

import (
	"math"

	"github.com/san-kum/nbody/internal/particle"
)

// Camera looks down the z axis at the origin. Extent is the world radius
// mapped to half the shorter canvas side at Zoom 1.
type Camera struct {
	RotX, RotZ float64
	Zoom       float64
	Extent     float64
	Center     particle.Vec3
}

func NewCamera(extent float64) *Camera {
	if extent <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		extent = 1
	}
	return &Camera{Zoom: 1, Extent: extent}
}

// FitCamera frames every particle in ps with some margin.
func FitCamera(ps []particle.Particle) *Camera {
	extent := 0.0
	for _, p := range ps {
		extent = math.Max(extent, p.Pos.Norm())
	}
	return NewCamera(1.2 * extent)
}

func (c *Camera) Tilt(a float64) { c.RotX += a }
func (c *Camera) Spin(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()        { c.Zoom = math.Min(100, c.Zoom*1.25) }
func (c *Camera) ZoomOut()       { c.Zoom = math.Max(0.01, c.Zoom/1.25) }

func (c *Camera) rotate(p particle.Vec3) particle.Vec3 {
	p = p.Sub(c.Center)
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	return p
}

// Project maps a world position to canvas dots. ok is false when the point
// falls outside the canvas or is not finite.
func (c *Camera) Project(p particle.Vec3, cv *Canvas) (x, y int, ok bool) {
	if !p.IsValid() {
		return 0, 0, false
	}
	w, h := cv.Pixels()
	r := c.rotate(p)
	scale := float64(min(w, h)) / 2 / c.Extent * c.Zoom
	fx := float64(w)/2 + r.X*scale
	fy := float64(h)/2 - r.Y*scale
	if fx < 0 || fy < 0 || fx >= float64(w) || fy >= float64(h) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}
