package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/nbody/internal/sim"
)

const barWidth = 24

// Progress is a step observer that redraws a one-line status on w at most
// frameRate times per second.
type Progress struct {
	w         io.Writer
	frameRate int
	lastFrame time.Time
	energy0   float64
	started   bool
	now       func() time.Time
}

func NewProgress(w io.Writer, frameRate int) *Progress {
	if frameRate <= 0 {
		frameRate = 10
	}
	return &Progress{w: w, frameRate: frameRate, now: time.Now}
}

func (p *Progress) OnStep(s *sim.Simulation) {
	if !p.started {
		p.energy0 = s.Energy()
		p.started = true
	}
	now := p.now()
	if now.Sub(p.lastFrame) < time.Second/time.Duration(p.frameRate) {
		return
	}
	p.lastFrame = now
	fmt.Fprint(p.w, "\r"+p.line(s))
}

// Done prints the final state and ends the line.
func (p *Progress) Done(s *sim.Simulation) {
	fmt.Fprintln(p.w, "\r"+p.line(s))
}

func (p *Progress) line(s *sim.Simulation) string {
	var b strings.Builder
	if tmax := s.TMax(); tmax > 0 {
		frac := math.Max(0, math.Min(1, s.Time()/tmax))
		filled := int(frac * barWidth)
		b.WriteString("[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "] ")
		fmt.Fprintf(&b, "%5.1f%% ", 100*frac)
	}
	fmt.Fprintf(&b, "t=%-12.6g", s.Time())
	if p.energy0 != 0 {
		fmt.Fprintf(&b, " dE/E=%-10.3e", (s.Energy()-p.energy0)/p.energy0)
	}
	if s.NVar() > 0 {
		fmt.Fprintf(&b, " megno=%-8.4f", s.Megno())
	}
	return b.String()
}
