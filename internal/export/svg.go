package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/nbody/internal/particle"
	"github.com/san-kum/nbody/internal/storage"
)

var palette = []string{"#ffcc00", "#00ccff", "#ff66cc", "#00ff88", "#ff8844", "#aa88ff", "#ffffff"}

// SVGOptions sets the size and look of an orbit plot.
type SVGOptions struct {
	Width, Height int
	Background    string
	StrokeWidth   float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 800, Background: "#0a0a0a", StrokeWidth: 1.2}
}

type bounds struct{ minX, maxX, minY, maxY float64 }

func fit(tracks [][]particle.Vec3) bounds {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, tr := range tracks {
		for _, p := range tr {
			if !p.IsValid() {
				continue
			}
			b.minX, b.maxX = math.Min(b.minX, p.X), math.Max(b.maxX, p.X)
			b.minY, b.maxY = math.Min(b.minY, p.Y), math.Max(b.maxY, p.Y)
		}
	}
	if math.IsInf(b.minX, 1) {
		return bounds{-1, 1, -1, 1}
	}

	// square, padded by 10%
	cx, cy := (b.minX+b.maxX)/2, (b.minY+b.maxY)/2
	half := math.Max(b.maxX-b.minX, b.maxY-b.minY) / 2
	if half == 0 {
		half = 1
	}
	half *= 1.1
	return bounds{cx - half, cx + half, cy - half, cy + half}
}

func (b bounds) toScreen(p particle.Vec3, w, h int) (float64, float64) {
	x := (p.X - b.minX) / (b.maxX - b.minX) * float64(w)
	y := float64(h) - (p.Y-b.minY)/(b.maxY-b.minY)*float64(h)
	return x, y
}

// OrbitsSVG writes the x-y tracks of every particle in snaps, one coloured
// path per particle, with a dot at the last position.
func OrbitsSVG(w io.Writer, snaps []storage.Snapshot, opts SVGOptions) error {
	n := 0
	if len(snaps) > 0 {
		n = len(snaps[len(snaps)-1].Particles)
	}
	tracks := make([][]particle.Vec3, n)
	for i := range tracks {
		tracks[i] = storage.Track(snaps, i)
	}
	b := fit(tracks)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background)

	for i, tr := range tracks {
		color := palette[i%len(palette)]
		if len(tr) >= 2 {
			fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="%.2f" d="`, color, opts.StrokeWidth)
			pen := "M"
			for _, p := range tr {
				if !p.IsValid() {
					pen = "M"
					continue
				}
				x, y := b.toScreen(p, opts.Width, opts.Height)
				fmt.Fprintf(&sb, "%s%.2f,%.2f ", pen, x, y)
				pen = "L"
			}
			sb.WriteString("\"/>\n")
		}
		if len(tr) > 0 && tr[len(tr)-1].IsValid() {
			x, y := b.toScreen(tr[len(tr)-1], opts.Width, opts.Height)
			fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.1f" fill="%s"/>`+"\n", x, y, 2*opts.StrokeWidth+1, color)
		}
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
