// Package colormap maps normalized scalars and integer labels to RGB colors.
package colormap

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette maps a scalar, nominally in [0, 1], to a color.
type Palette interface {
	Color(v float64) RGB
}

// RGB is a color with channels nominally in [0, 1].
type RGB struct {
	R, G, B float64
}

// RGBA converts to an opaque 8-bit color, saturating out-of-range channels.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: channel8(c.R), G: channel8(c.G), B: channel8(c.B), A: 255}
}

// Colorful returns the clamped color as a go-colorful value.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
}

// Hex returns the clamped color as #rrggbb.
func (c RGB) Hex() string {
	return c.Colorful().Hex()
}

func channel8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Kind selects one of the built-in palettes.
type Kind int

const (
	KindGray Kind = iota
	KindJet
	KindSummer
	KindWinter
	KindHot
	KindLabel
)

// ErrUnknownKind is returned by ParseKind for names that match no palette.
var ErrUnknownKind = errors.New("unknown palette kind")

var kindNames = [...]string{
	KindGray:   "gray",
	KindJet:    "jet",
	KindSummer: "summer",
	KindWinter: "winter",
	KindHot:    "hot",
	KindLabel:  "label",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every built-in kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindGray, KindJet, KindSummer, KindWinter, KindHot, KindLabel}
}

// ParseKind resolves a case-insensitive palette name. "labels" is accepted
// as an alias for "label".
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "labels" {
		return KindLabel, nil
	}
	for i, s := range kindNames {
		if s == n {
			return Kind(i), nil
		}
	}
	return KindJet, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// New builds a fresh palette of the given kind. Unrecognized kinds yield Jet.
func New(kind Kind) Palette {
	switch kind {
	case KindGray:
		return Gray{}
	case KindSummer:
		return Summer{}
	case KindWinter:
		return Winter{}
	case KindHot:
		return Hot{}
	case KindLabel:
		return NewLabels()
	default:
		return Jet{}
	}
}
