// Package render turns palettes into color buffers and preview images.
package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"sync"

	"github.com/fogleman/gg"
	"github.com/pointshade/server/pkg/colormap"
)

// Config contains renderer configuration.
type Config struct {
	ColorbarWidth  int
	ColorbarHeight int
	LegendColumns  int
	LegendSwatch   int
}

// Renderer draws colorbars and label legends as PNG.
type Renderer struct {
	config     Config
	bufferPool sync.Pool
}

// NewRenderer creates a new renderer.
func NewRenderer(cfg Config) *Renderer {
	if cfg.ColorbarWidth <= 0 {
		cfg.ColorbarWidth = 256
	}
	if cfg.ColorbarHeight <= 0 {
		cfg.ColorbarHeight = 24
	}
	if cfg.LegendColumns <= 0 {
		cfg.LegendColumns = 8
	}
	if cfg.LegendSwatch <= 0 {
		cfg.LegendSwatch = 24
	}
	return &Renderer{
		config: cfg,
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 16*1024))
			},
		},
	}
}

// Config returns the effective configuration.
func (r *Renderer) Config() Config {
	return r.config
}

// RenderColorbar draws p over [0, 1]. Bars taller than wide run bottom to
// top; otherwise left to right. Non-positive sizes use the configured ones.
func (r *Renderer) RenderColorbar(p colormap.Palette, width, height int) ([]byte, error) {
	if width <= 0 {
		width = r.config.ColorbarWidth
	}
	if height <= 0 {
		height = r.config.ColorbarHeight
	}

	dc := gg.NewContext(width, height)
	vertical := height > width
	steps := width
	if vertical {
		steps = height
	}
	last := float64(steps - 1)
	if last == 0 {
		last = 1
	}

	for i := 0; i < steps; i++ {
		dc.SetColor(p.Color(float64(i) / last).RGBA())
		if vertical {
			dc.DrawRectangle(0, float64(height-1-i), float64(width), 1)
		} else {
			dc.DrawRectangle(float64(i), 0, 1, float64(height))
		}
		dc.Fill()
	}

	return r.encodeContext(dc)
}

// RenderLegend draws every label row as a numbered swatch grid.
func (r *Renderer) RenderLegend(l *colormap.Labels, columns, swatch int) ([]byte, error) {
	if columns <= 0 {
		columns = r.config.LegendColumns
	}
	if swatch <= 0 {
		swatch = r.config.LegendSwatch
	}
	rows := (colormap.LabelCount + columns - 1) / columns

	dc := gg.NewContext(columns*swatch, rows*swatch)
	dc.SetColor(color.White)
	dc.Clear()

	s := float64(swatch)
	for i := 0; i < colormap.LabelCount; i++ {
		c := l.ColorIndex(uint32(i))
		x := float64(i%columns) * s
		y := float64(i/columns) * s

		dc.SetColor(c.RGBA())
		dc.DrawRectangle(x, y, s, s)
		dc.Fill()

		if swatch >= 16 {
			dc.SetColor(textColor(c))
			dc.DrawStringAnchored(strconv.Itoa(i), x+s/2, y+s/2, 0.5, 0.5)
		}
	}

	return r.encodeContext(dc)
}

// textColor picks black or white for legibility on c.
func textColor(c colormap.RGB) color.Color {
	if 0.299*c.R+0.587*c.G+0.114*c.B > 0.5 {
		return color.Black
	}
	return color.White
}

func (r *Renderer) encodeContext(dc *gg.Context) ([]byte, error) {
	return r.encodeImage(dc.Image())
}

func (r *Renderer) encodeImage(img image.Image) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, img); err != nil {
		return nil, err
	}

	// Copy buffer contents (buffer will be reused)
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}
