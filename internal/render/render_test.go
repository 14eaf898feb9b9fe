package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/pointshade/server/pkg/colormap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/palette"
)

func TestAutoRange(t *testing.T) {
	r, ok := AutoRange([]float64{3, math.NaN(), -1, math.Inf(1), 7})
	require.True(t, ok)
	assert.Equal(t, Range{Min: -1, Max: 7}, r)

	_, ok = AutoRange([]float64{math.NaN()})
	assert.False(t, ok)
	_, ok = AutoRange(nil)
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 0.5, Range{Min: 10, Max: 20}.Normalize(15))
	assert.Equal(t, 0.0, Range{Min: 4, Max: 4}.Normalize(100))
	assert.Equal(t, 2.0, Range{Min: 0, Max: 1}.Normalize(2))
}

func TestColorize(t *testing.T) {
	values := []float64{0, 5, 10, math.NaN()}
	got := Colorize(values, colormap.Hot{}, Range{Min: 0, Max: 10})
	require.Len(t, got, 12)

	assert.Equal(t, []float32{1, 1, 1}, got[0:3])
	want := colormap.Hot{}.Color(0.5)
	assert.InDelta(t, want.R, float64(got[3]), 1e-6)
	assert.InDelta(t, want.G, float64(got[4]), 1e-6)
	assert.InDelta(t, want.B, float64(got[5]), 1e-6)
	assert.Equal(t, []float32{0, 0, 0}, got[6:9])
	assert.Equal(t, []float32{0, 0, 0}, got[9:12])
}

func TestColorizeGrayKeepsOutOfRange(t *testing.T) {
	got := Colorize([]float64{20}, colormap.Gray{}, Range{Min: 0, Max: 10})
	assert.Equal(t, []float32{2, 2, 2}, got)
}

func TestColorizeLabelPaletteClamps(t *testing.T) {
	l := colormap.NewLabels()
	got := Colorize([]float64{-5, 50}, l, Range{Min: 0, Max: 10})

	first := l.ColorIndex(0)
	assert.Equal(t, []float32{float32(first.R), float32(first.G), float32(first.B)}, got[0:3])
	// clamped to 1.0, which wraps to row 0
	assert.Equal(t, got[0:3], got[3:6])
}

func TestColorizeLabels(t *testing.T) {
	l := colormap.NewLabels()
	got := ColorizeLabels([]uint32{3, 67}, l)
	assert.Equal(t, []float32{1, 0, 0, 1, 0, 0}, got)
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestRenderColorbarHorizontal(t *testing.T) {
	r := NewRenderer(Config{})
	data, err := r.RenderColorbar(colormap.Hot{}, 64, 8)
	require.NoError(t, err)

	img := decodePNG(t, data)
	assert.Equal(t, image.Rect(0, 0, 64, 8), img.Bounds())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(img, 0, 4))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgbaAt(img, 63, 4))
}

func TestRenderColorbarVertical(t *testing.T) {
	r := NewRenderer(Config{})
	data, err := r.RenderColorbar(colormap.Gray{}, 4, 32)
	require.NoError(t, err)

	img := decodePNG(t, data)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, rgbaAt(img, 2, 31))
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, rgbaAt(img, 2, 0))
}

func TestRenderColorbarDefaults(t *testing.T) {
	r := NewRenderer(Config{ColorbarWidth: 100, ColorbarHeight: 10})
	data, err := r.RenderColorbar(colormap.Jet{}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 10), decodePNG(t, data).Bounds())
}

func TestRenderLegend(t *testing.T) {
	r := NewRenderer(Config{})
	l := colormap.NewLabels()
	data, err := r.RenderLegend(l, 8, 10)
	require.NoError(t, err)

	img := decodePNG(t, data)
	assert.Equal(t, image.Rect(0, 0, 80, 80), img.Bounds())
	// row 3 is pure red, row 9 is the first cell of the second grid row
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, rgbaAt(img, 35, 5))
	assert.Equal(t, l.ColorIndex(9).RGBA(), rgbaAt(img, 15, 15))
}

func TestPlotColorMap(t *testing.T) {
	m := NewPlotColorMap(colormap.Gray{})
	m.SetMin(10)
	m.SetMax(20)

	c, err := m.At(15)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, c)

	_, err = m.At(9)
	assert.True(t, errors.Is(err, palette.ErrUnderflow))
	_, err = m.At(21)
	assert.True(t, errors.Is(err, palette.ErrOverflow))
	_, err = m.At(math.NaN())
	assert.True(t, errors.Is(err, palette.ErrNaN))

	m.SetAlpha(0.5)
	assert.Equal(t, 0.5, m.Alpha())
	colors := m.Palette(3).Colors()
	require.Len(t, colors, 3)
	assert.Equal(t, color.NRGBA{0, 0, 0, 128}, colors[0])
	assert.Equal(t, color.NRGBA{255, 255, 255, 128}, colors[2])

	assert.Panics(t, func() { m.SetAlpha(2) })
}

func hasPixel(img image.Image, match func(color.RGBA) bool) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if match(rgbaAt(img, x, y)) {
				return true
			}
		}
	}
	return false
}

func TestRenderScale(t *testing.T) {
	r := NewRenderer(Config{})
	data, err := r.RenderScale(colormap.Hot{}, Range{Min: -5, Max: 5}, 240, 80)
	require.NoError(t, err)

	img := decodePNG(t, data)
	assert.Equal(t, image.Rect(0, 0, 240, 80), img.Bounds())
	// the hot ramp passes through red
	assert.True(t, hasPixel(img, func(c color.RGBA) bool { return c.R > 200 && c.G < 60 && c.B < 60 }))

	data, err = r.RenderScale(colormap.Winter{}, Range{Min: 0, Max: 100}, 80, 300)
	require.NoError(t, err)
	img = decodePNG(t, data)
	assert.Equal(t, image.Rect(0, 0, 80, 300), img.Bounds())
	assert.True(t, hasPixel(img, func(c color.RGBA) bool { return c.R < 20 && c.G > 100 && c.B > 100 }))
}

func TestRenderScaleSizes(t *testing.T) {
	r := NewRenderer(Config{ColorbarWidth: 300, ColorbarHeight: 10})
	data, err := r.RenderScale(colormap.Jet{}, Range{Min: 0, Max: 1}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 300, 64), decodePNG(t, data).Bounds())
}

func TestRenderScaleInvalidRange(t *testing.T) {
	r := NewRenderer(Config{})
	for _, rng := range []Range{
		{Min: 1, Max: 1},
		{Min: 2, Max: 1},
		{Min: math.NaN(), Max: 1},
		{Min: 0, Max: math.Inf(1)},
	} {
		_, err := r.RenderScale(colormap.Gray{}, rng, 100, 100)
		assert.ErrorIs(t, err, ErrInvalidRange, "%+v", rng)
	}
}
