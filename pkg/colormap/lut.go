package colormap

import "math"

// LUT is a palette sampled at evenly spaced points over [0, 1]. Lookups
// clamp their input and return the nearest sample.
type LUT struct {
	entries []RGB
}

// NewLUT samples p at n points (at least 2).
func NewLUT(p Palette, n int) *LUT {
	if n < 2 {
		n = 2
	}
	entries := make([]RGB, n)
	last := float64(n - 1)
	for i := range entries {
		entries[i] = p.Color(float64(i) / last)
	}
	return &LUT{entries: entries}
}

// Len returns the number of samples.
func (t *LUT) Len() int {
	return len(t.entries)
}

// At returns sample i.
func (t *LUT) At(i int) RGB {
	return t.entries[i]
}

// Color implements Palette. NaN maps to the first sample.
func (t *LUT) Color(v float64) RGB {
	if math.IsNaN(v) || v <= 0 {
		return t.entries[0]
	}
	if v >= 1 {
		return t.entries[len(t.entries)-1]
	}
	return t.entries[int(v*float64(len(t.entries)-1)+0.5)]
}
