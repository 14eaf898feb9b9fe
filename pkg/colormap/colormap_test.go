package colormap

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-12

func assertRGB(t *testing.T, want, got RGB) {
	t.Helper()
	assert.InDelta(t, want.R, got.R, eps, "red")
	assert.InDelta(t, want.G, got.G, eps, "green")
	assert.InDelta(t, want.B, got.B, eps, "blue")
}

func TestJetBase(t *testing.T) {
	t.Parallel()

	cases := []struct {
		x, want float64
	}{
		{-2, 0},
		{-0.75, 0},
		{-0.5, 0.5},
		{-0.25, 1},
		{0, 1},
		{0.25, 1},
		{0.5, 0.5},
		{0.75, 0},
		{3, 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, JetBase(tc.x), eps, "JetBase(%v)", tc.x)
	}
}

func TestJet(t *testing.T) {
	t.Parallel()

	mid := Jet{}.Color(0.5)
	assertRGB(t, RGB{JetBase(-0.5), JetBase(0), JetBase(0.5)}, mid)
	assertRGB(t, RGB{0.5, 1, 0.5}, mid)

	assertRGB(t, RGB{0, 0, 0.5}, Jet{}.Color(0))
	assertRGB(t, RGB{0.5, 0, 0}, Jet{}.Color(1))
	assertRGB(t, RGB{0, 0.5, 1}, Jet{}.Color(0.25))
	assertRGB(t, RGB{1, 0.5, 0}, Jet{}.Color(0.75))
}

func TestGrayPassesThrough(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{-1, 0, 0.3, 1, 2} {
		assert.Equal(t, RGB{v, v, v}, Gray{}.Color(v))
	}
}

func TestHot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		v    float64
		want RGB
	}{
		{"white", 0, RGB{1, 1, 1}},
		{"yellow", 1.0 / 3.0, RGB{1, 1, 0}},
		{"red", 2.0 / 3.0, RGB{1, 0, 0}},
		{"black", 1, RGB{0, 0, 0}},
		{"belowClamp", -1, RGB{1, 1, 1}},
		{"aboveClamp", 2, RGB{0, 0, 0}},
		{"firstSegment", 1.0 / 6.0, RGB{1, 1, 0.5}},
		{"lastSegment", 5.0 / 6.0, RGB{0.5, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertRGB(t, tc.want, Hot{}.Color(tc.v))
		})
	}
}

func TestSummer(t *testing.T) {
	t.Parallel()

	assertRGB(t, RGB{0, 0, 0.4}, Summer{}.Color(0))
	assertRGB(t, RGB{0.25, 0, 0.4}, Summer{}.Color(0.25))
	assertRGB(t, RGB{0.5, 0, 0.4}, Summer{}.Color(0.5))
	assertRGB(t, RGB{0.75, 0.5, 0.4}, Summer{}.Color(0.75))
	assertRGB(t, RGB{1, 1, 0.4}, Summer{}.Color(1))
	// saturates outside the domain
	assertRGB(t, RGB{1, 1, 0.4}, Summer{}.Color(3))
	assertRGB(t, RGB{0, 0, 0.4}, Summer{}.Color(-3))
}

func TestWinter(t *testing.T) {
	t.Parallel()

	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		assertRGB(t, RGB{0, v, 1 - 0.5*v}, Winter{}.Color(v))
	}
	assertRGB(t, RGB{0, 0.25, 0.875}, Winter{}.Color(0.25))
	assertRGB(t, RGB{0, 1, 0.5}, Winter{}.Color(1))
	// saturates outside the domain
	assertRGB(t, RGB{0, 1, 0.5}, Winter{}.Color(1.5))
	assertRGB(t, RGB{0, 0, 1}, Winter{}.Color(-1))
}

func TestInterpolate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 5.0, Interpolate(0.5, 0, 0, 1, 10), eps)
	// no clamping
	assert.InDelta(t, 20.0, Interpolate(2, 0, 0, 1, 10), eps)

	got := InterpolateRGB(0.25, RGB{0, 0, 0}, 0, RGB{1, 0.5, 0.2}, 1)
	assertRGB(t, RGB{0.25, 0.125, 0.05}, got)
}

func TestNewFallsBackToJet(t *testing.T) {
	t.Parallel()

	assert.IsType(t, Jet{}, New(Kind(42)))
	assert.IsType(t, Jet{}, New(Kind(-1)))
	assert.IsType(t, Hot{}, New(KindHot))
	assert.IsType(t, &Labels{}, New(KindLabel))
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := ParseKind(" Labels ")
	require.NoError(t, err)
	assert.Equal(t, KindLabel, got)

	_, err = ParseKind("viridis")
	assert.True(t, errors.Is(err, ErrUnknownKind))
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestRGBConversions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, color.RGBA{R: 255, G: 128, B: 0, A: 255}, RGB{1, 0.5, 0}.RGBA())
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 255}, RGB{2, -1, math.NaN()}.RGBA())
	assert.Equal(t, "#ffffff", RGB{1, 1, 1}.Hex())
	assert.Equal(t, "#ff0000", RGB{1.5, -0.2, 0}.Hex())
}
