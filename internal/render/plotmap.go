package render

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/pointshade/server/pkg/colormap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// minScaleSide keeps room for the tick labels of a scale image.
const minScaleSide = 64

// ErrInvalidRange is returned for a scale whose range is empty or not finite.
var ErrInvalidRange = errors.New("render: scale range must be finite with min < max")

var _ palette.ColorMap = (*PlotColorMap)(nil)

// PlotColorMap exposes a palette as a gonum plot ColorMap, so heat maps and
// color bars from gonum.org/v1/plot can use it directly.
type PlotColorMap struct {
	palette  colormap.Palette
	min, max float64
	alpha    float64
}

// NewPlotColorMap wraps p over the default [0, 1] range, fully opaque.
func NewPlotColorMap(p colormap.Palette) *PlotColorMap {
	return &PlotColorMap{palette: p, min: 0, max: 1, alpha: 1}
}

// At returns the color for v, which must lie in [Min, Max].
func (m *PlotColorMap) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case v < m.min:
		return nil, palette.ErrUnderflow
	case v > m.max:
		return nil, palette.ErrOverflow
	}
	return m.color(Range{Min: m.min, Max: m.max}.Normalize(v)), nil
}

func (m *PlotColorMap) color(t float64) color.Color {
	c := m.palette.Color(t).RGBA()
	c.A = uint8(m.alpha*255 + 0.5)
	return color.NRGBA(c)
}

// Max returns the upper end of the value range.
func (m *PlotColorMap) Max() float64 { return m.max }

// SetMax sets the upper end of the value range.
func (m *PlotColorMap) SetMax(v float64) { m.max = v }

// Min returns the lower end of the value range.
func (m *PlotColorMap) Min() float64 { return m.min }

// SetMin sets the lower end of the value range.
func (m *PlotColorMap) SetMin(v float64) { m.min = v }

// Alpha returns the opacity.
func (m *PlotColorMap) Alpha() float64 { return m.alpha }

// SetAlpha sets the opacity. It panics outside [0, 1].
func (m *PlotColorMap) SetAlpha(a float64) {
	if a < 0 || a > 1 {
		panic("render: alpha out of range")
	}
	m.alpha = a
}

// Palette samples n evenly spaced colors across the range.
func (m *PlotColorMap) Palette(n int) palette.Palette {
	colors := make(plotPalette, n)
	for i := range colors {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		colors[i] = m.color(t)
	}
	return colors
}

type plotPalette []color.Color

func (p plotPalette) Colors() []color.Color { return p }

// RenderScale draws p as a gonum plot color bar with a value axis labelled
// over rng. Images taller than wide are vertical. Non-positive sizes fall
// back to the configured colorbar size, and sides are at least 64 pixels.
func (r *Renderer) RenderScale(p colormap.Palette, rng Range, width, height int) ([]byte, error) {
	if math.IsNaN(rng.Min) || math.IsInf(rng.Min, 0) || math.IsNaN(rng.Max) || math.IsInf(rng.Max, 0) || rng.Min >= rng.Max {
		return nil, ErrInvalidRange
	}
	if width <= 0 {
		width = r.config.ColorbarWidth
	}
	if height <= 0 {
		height = r.config.ColorbarHeight
	}
	width = max(width, minScaleSide)
	height = max(height, minScaleSide)
	vertical := height > width

	cm := NewPlotColorMap(p)
	cm.SetMin(rng.Min)
	cm.SetMax(rng.Max)

	steps := width
	if vertical {
		steps = height
	}
	plt := plot.New()
	plt.Add(&plotter.ColorBar{ColorMap: cm, Vertical: vertical, Colors: steps})
	if vertical {
		plt.HideX()
	} else {
		plt.HideY()
	}

	c := vgimg.NewWith(vgimg.UseImage(image.NewRGBA(image.Rect(0, 0, width, height))))
	plt.Draw(draw.New(c))
	return r.encodeImage(c.Image())
}
