package render

import (
	"math"

	"github.com/pointshade/server/pkg/colormap"
)

// Range is the scalar interval mapped onto [0, 1].
type Range struct {
	Min float64
	Max float64
}

// AutoRange returns the extent of the finite values. ok is false when there
// are none.
func AutoRange(values []float64) (r Range, ok bool) {
	r = Range{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < r.Min {
			r.Min = v
		}
		if v > r.Max {
			r.Max = v
		}
		ok = true
	}
	if !ok {
		return Range{}, false
	}
	return r, true
}

// Normalize maps v into the range's unit interval. A zero-width range maps
// everything to 0.
func (r Range) Normalize(v float64) float64 {
	span := r.Max - r.Min
	if span == 0 {
		return 0
	}
	return (v - r.Min) / span
}

// Colorize maps every value through p and returns packed RGB triples, three
// float32 per point. NaN inputs become black. Label palettes receive the
// normalized value clamped to [0, 1].
func Colorize(values []float64, p colormap.Palette, r Range) []float32 {
	_, categorical := p.(*colormap.Labels)

	out := make([]float32, len(values)*3)
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		t := r.Normalize(v)
		if math.IsNaN(t) {
			continue
		}
		if categorical {
			t = math.Max(0, math.Min(1, t))
		}
		c := p.Color(t)
		out[i*3] = float32(c.R)
		out[i*3+1] = float32(c.G)
		out[i*3+2] = float32(c.B)
	}
	return out
}

// ColorizeLabels colors integer labels by table row.
func ColorizeLabels(labels []uint32, l *colormap.Labels) []float32 {
	out := make([]float32, len(labels)*3)
	for i, id := range labels {
		c := l.ColorIndex(id)
		out[i*3] = float32(c.R)
		out[i*3+1] = float32(c.G)
		out[i*3+2] = float32(c.B)
	}
	return out
}
