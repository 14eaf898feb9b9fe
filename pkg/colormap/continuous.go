package colormap

// Interpolate evaluates the line through (x0, y0) and (x1, y1) at x.
// No clamping is applied.
func Interpolate(x, x0, y0, x1, y1 float64) float64 {
	return y0 + (y1-y0)*(x-x0)/(x1-x0)
}

// InterpolateRGB interpolates every channel between c0 at x0 and c1 at x1
// using a shared fraction.
func InterpolateRGB(x float64, c0 RGB, x0 float64, c1 RGB, x1 float64) RGB {
	t := (x - x0) / (x1 - x0)
	return RGB{
		R: c0.R + (c1.R-c0.R)*t,
		G: c0.G + (c1.G-c0.G)*t,
		B: c0.B + (c1.B-c0.B)*t,
	}
}

// ramp is Interpolate with x saturated to the segment's x-interval.
func ramp(x, x0, y0, x1, y1 float64) float64 {
	lo, hi := x0, x1
	if lo > hi {
		lo, hi = hi, lo
	}
	if x < lo {
		x = lo
	} else if x > hi {
		x = hi
	}
	if x0 == x1 {
		return y0
	}
	return Interpolate(x, x0, y0, x1, y1)
}

// JetBase is the triangular wave shared by the three Jet channels: zero
// outside (-0.75, 0.75), one on [-0.25, 0.25], linear in between.
func JetBase(x float64) float64 {
	switch {
	case x <= -0.75:
		return 0
	case x <= -0.25:
		return Interpolate(x, -0.75, 0, -0.25, 1)
	case x <= 0.25:
		return 1
	case x <= 0.75:
		return Interpolate(x, 0.25, 1, 0.75, 0)
	default:
		return 0
	}
}

// Gray is the identity grayscale ramp. Out-of-range input passes through.
type Gray struct{}

func (Gray) Color(v float64) RGB {
	return RGB{v, v, v}
}

// Jet runs blue, cyan, yellow, red to dark red.
type Jet struct{}

func (Jet) Color(v float64) RGB {
	return RGB{
		R: JetBase(v*2 - 1.5),
		G: JetBase(v*2 - 1),
		B: JetBase(v*2 - 0.5),
	}
}

// Summer ramps red over the whole domain and green over the upper half,
// with blue fixed at 0.4.
type Summer struct{}

func (Summer) Color(v float64) RGB {
	return RGB{
		R: ramp(v, 0, 0, 1, 1),
		G: ramp(v, 0.5, 0, 1, 1),
		B: 0.4,
	}
}

// Winter ramps green up and blue down from 1 to 0.5, with red off.
type Winter struct{}

func (Winter) Color(v float64) RGB {
	return RGB{
		R: 0,
		G: ramp(v, 0, 0, 1, 1),
		B: ramp(v, 0, 1, 1, 0.5),
	}
}

type stop struct {
	pos float64
	c   RGB
}

// white, yellow, red, black
var hotStops = [...]stop{
	{0, RGB{1, 1, 1}},
	{1.0 / 3.0, RGB{1, 1, 0}},
	{2.0 / 3.0, RGB{1, 0, 0}},
	{1, RGB{0, 0, 0}},
}

// Hot interpolates white, yellow, red, black at 0, 1/3, 2/3 and 1 and
// clamps outside [0, 1).
type Hot struct{}

func (Hot) Color(v float64) RGB {
	if v < 0 {
		return hotStops[0].c
	}
	for i := 1; i < len(hotStops); i++ {
		if v < hotStops[i].pos {
			lo, hi := hotStops[i-1], hotStops[i]
			return InterpolateRGB(v, lo.c, lo.pos, hi.c, hi.pos)
		}
	}
	return hotStops[len(hotStops)-1].c
}
