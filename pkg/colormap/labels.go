package colormap

import (
	"errors"
	"fmt"
	"math"
)

// LabelCount is the number of rows in the categorical table.
const LabelCount = 64

// ErrValueOutOfRange is returned when a label scalar lies outside [0, 1].
var ErrValueOutOfRange = errors.New("label value out of range [0, 1]")

// Hand-picked for pairwise distinctness, partly after
// http://godsnotwheregodsnot.blogspot.com/2012/09/color-distribution-methodology.html
// Existing renders depend on these exact rows.
var labelTable = [LabelCount][3]uint8{
	{0, 0, 0},
	{0, 255, 0},
	{0, 0, 255},
	{255, 0, 0},
	{0, 255, 255},
	{255, 166, 255},
	{255, 219, 102},
	{0, 100, 0},
	{0, 0, 103},
	{149, 0, 58},
	{0, 125, 181},
	{255, 0, 246},
	{255, 238, 232},
	{119, 77, 0},
	{144, 251, 146},
	{0, 118, 255},
	{213, 255, 0},
	{255, 147, 126},
	{106, 130, 108},
	{255, 2, 157},
	{254, 137, 0},
	{122, 71, 130},
	{126, 45, 210},
	{133, 169, 0},
	{255, 0, 86},
	{164, 36, 0},
	{0, 174, 126},
	{104, 61, 59},
	{189, 198, 255},
	{38, 52, 0},
	{189, 211, 147},
	{0, 185, 23},
	{158, 0, 142},
	{0, 21, 68},
	{194, 140, 159},
	{255, 116, 163},
	{0, 208, 255},
	{0, 71, 84},
	{229, 111, 254},
	{120, 130, 49},
	{14, 76, 161},
	{145, 208, 203},
	{190, 153, 112},
	{150, 138, 232},
	{187, 136, 0},
	{67, 0, 44},
	{222, 255, 116},
	{0, 255, 210},
	{255, 229, 0},
	{98, 14, 0},
	{0, 143, 156},
	{152, 255, 82},
	{117, 68, 177},
	{181, 0, 255},
	{0, 255, 120},
	{255, 110, 65},
	{0, 95, 57},
	{107, 104, 130},
	{95, 173, 78},
	{167, 87, 64},
	{165, 255, 210},
	{255, 177, 103},
	{0, 155, 255},
	{232, 94, 190},
}

// Labels is the categorical palette: 64 fixed colors indexed modulo 64.
type Labels struct {
	colors [LabelCount]RGB
}

// NewLabels builds the label palette table.
func NewLabels() *Labels {
	l := &Labels{}
	for i, row := range labelTable {
		l.colors[i] = RGB{
			R: float64(row[0]) / 255,
			G: float64(row[1]) / 255,
			B: float64(row[2]) / 255,
		}
	}
	return l
}

// ColorIndex returns row i mod 64. It never fails.
func (l *Labels) ColorIndex(i uint32) RGB {
	return l.colors[i%LabelCount]
}

// ColorValue buckets v into floor(v*64) and returns that row. v must lie in
// [0, 1]; v == 1 wraps to row 0.
func (l *Labels) ColorValue(v float64) (RGB, error) {
	if !(v >= 0 && v <= 1) {
		return RGB{}, fmt.Errorf("%w: %v", ErrValueOutOfRange, v)
	}
	return l.ColorIndex(uint32(math.Floor(v * LabelCount))), nil
}

// Color implements Palette. Out-of-range input is a caller bug and panics;
// use ColorValue to get an error instead.
func (l *Labels) Color(v float64) RGB {
	c, err := l.ColorValue(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Table returns a copy of all rows.
func (l *Labels) Table() [LabelCount]RGB {
	return l.colors
}
