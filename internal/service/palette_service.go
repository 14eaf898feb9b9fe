// Package service provides the palette operations behind the HTTP API and CLI.
package service

import (
	"fmt"

	"github.com/pointshade/server/internal/cache"
	"github.com/pointshade/server/internal/render"
	"github.com/pointshade/server/internal/viewer"
	"github.com/pointshade/server/pkg/colormap"
	"github.com/rs/zerolog/log"
)

// PaletteServiceConfig contains palette service configuration.
type PaletteServiceConfig struct {
	Viewer   *viewer.Viewer
	Cache    *cache.Manager
	Renderer *render.Renderer
	Fields   *FieldRegistry
	LUTSize  int
	UseLUT   bool
}

// PaletteService answers color queries against the viewer's palettes and
// caches rendered images and lookup tables.
type PaletteService struct {
	viewer   *viewer.Viewer
	cache    *cache.Manager
	renderer *render.Renderer
	fields   *FieldRegistry
	lutSize  int
	useLUT   bool
}

// NewPaletteService creates a new palette service.
func NewPaletteService(cfg PaletteServiceConfig) *PaletteService {
	v := cfg.Viewer
	if v == nil {
		v = viewer.New(nil, nil)
	}
	fields := cfg.Fields
	if fields == nil {
		fields = NewFieldRegistry()
	}
	lutSize := cfg.LUTSize
	if lutSize < 2 {
		lutSize = 256
	}
	return &PaletteService{
		viewer:   v,
		cache:    cfg.Cache,
		renderer: cfg.Renderer,
		fields:   fields,
		lutSize:  lutSize,
		useLUT:   cfg.UseLUT,
	}
}

// CacheStats reports image and lookup table cache occupancy. It is empty
// when the service runs without a cache.
func (s *PaletteService) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return map[string]interface{}{}
	}
	return s.cache.Stats()
}

// Fields returns the field registry.
func (s *PaletteService) Fields() *FieldRegistry {
	return s.fields
}

// ActiveKind returns the kind of the active palette.
func (s *PaletteService) ActiveKind() colormap.Kind {
	return s.viewer.Palettes().Kind()
}

// SetActive installs kind as the active palette (Jet for unknown kinds) and
// triggers a viewer redraw.
func (s *PaletteService) SetActive(kind colormap.Kind) colormap.Kind {
	return s.viewer.SetPalette(kind)
}

// palette returns the palette for kind; nil selects the active one. Label
// requests use the registry's label palette.
func (s *PaletteService) palette(kind *colormap.Kind) (colormap.Kind, colormap.Palette) {
	reg := s.viewer.Palettes()
	if kind == nil {
		return reg.Kind(), reg.Palette()
	}
	if *kind == colormap.KindLabel {
		return colormap.KindLabel, reg.Labels()
	}
	return *kind, colormap.New(*kind)
}

// Color maps v through the palette for kind. Label palettes reject values
// outside [0, 1].
func (s *PaletteService) Color(kind *colormap.Kind, v float64) (colormap.RGB, error) {
	_, p := s.palette(kind)
	if l, ok := p.(*colormap.Labels); ok {
		return l.ColorValue(v)
	}
	return p.Color(v), nil
}

// LabelColor returns label row i mod 64.
func (s *PaletteService) LabelColor(i uint32) colormap.RGB {
	return s.viewer.Palettes().Labels().ColorIndex(i)
}

// LabelColorValue buckets v into a label row.
func (s *PaletteService) LabelColorValue(v float64) (colormap.RGB, error) {
	return s.viewer.Palettes().Labels().ColorValue(v)
}

// Colorbar returns a PNG colorbar for kind (nil selects the active palette).
func (s *PaletteService) Colorbar(kind *colormap.Kind, width, height int) ([]byte, error) {
	k, p := s.palette(kind)
	rc := s.renderer.Config()
	if width <= 0 {
		width = rc.ColorbarWidth
	}
	if height <= 0 {
		height = rc.ColorbarHeight
	}

	cacheKey := cache.ColorbarKey(k, width, height)
	if data, ok := s.cache.GetImage(cacheKey); ok {
		return data, nil
	}

	data, err := s.renderer.RenderColorbar(p, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to render colorbar: %w", err)
	}

	if err := s.cache.SetImage(cacheKey, data); err != nil {
		log.Warn().Str("context", "service").Str("key", cacheKey).Err(err).Msg("image_cache_set_failed")
	}
	return data, nil
}

// Scale returns a PNG colorbar for kind with a value axis over rng.
func (s *PaletteService) Scale(kind *colormap.Kind, rng render.Range, width, height int) ([]byte, error) {
	k, p := s.palette(kind)

	cacheKey := cache.ScaleKey(k, rng.Min, rng.Max, width, height)
	if data, ok := s.cache.GetImage(cacheKey); ok {
		return data, nil
	}

	data, err := s.renderer.RenderScale(p, rng, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to render scale: %w", err)
	}

	if err := s.cache.SetImage(cacheKey, data); err != nil {
		log.Warn().Str("context", "service").Str("key", cacheKey).Err(err).Msg("image_cache_set_failed")
	}
	return data, nil
}

// Legend returns the PNG label legend.
func (s *PaletteService) Legend(columns, swatch int) ([]byte, error) {
	rc := s.renderer.Config()
	if columns <= 0 {
		columns = rc.LegendColumns
	}
	if swatch <= 0 {
		swatch = rc.LegendSwatch
	}

	cacheKey := cache.LegendKey(columns, swatch)
	if data, ok := s.cache.GetImage(cacheKey); ok {
		return data, nil
	}

	data, err := s.renderer.RenderLegend(s.viewer.Palettes().Labels(), columns, swatch)
	if err != nil {
		return nil, fmt.Errorf("failed to render legend: %w", err)
	}

	if err := s.cache.SetImage(cacheKey, data); err != nil {
		log.Warn().Str("context", "service").Str("key", cacheKey).Err(err).Msg("image_cache_set_failed")
	}
	return data, nil
}

// Swatches samples n colors evenly over [0, 1] and returns them as hex.
func (s *PaletteService) Swatches(kind *colormap.Kind, n int) []string {
	_, p := s.palette(kind)
	colors := render.NewPlotColorMap(p).Palette(n).Colors()
	out := make([]string, len(colors))
	for i, c := range colors {
		r, g, b, _ := c.RGBA()
		out[i] = fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
	}
	return out
}

// lut returns the cached lookup table for kind, building it on a miss.
func (s *PaletteService) lut(kind colormap.Kind, p colormap.Palette) *colormap.LUT {
	key := cache.LUTKey(kind, s.lutSize)
	if lut, ok := s.cache.GetLUT(key); ok {
		return lut
	}
	lut := colormap.NewLUT(p, s.lutSize)
	s.cache.SetLUT(key, lut)
	return lut
}

// Colorize maps values to packed RGB. A nil rng uses the finite extent of
// the values.
func (s *PaletteService) Colorize(values []float64, kind *colormap.Kind, rng *render.Range) []float32 {
	k, p := s.palette(kind)

	r := render.Range{Min: 0, Max: 1}
	if rng != nil {
		r = *rng
	} else if auto, ok := render.AutoRange(values); ok {
		r = auto
	}

	if s.useLUT && k != colormap.KindLabel {
		p = s.lut(k, p)
	}
	return render.Colorize(values, p, r)
}

// FieldColors colorizes a stored field. Categorical fields use label rows
// unless a continuous kind is requested. min and max override the stored or
// computed range.
func (s *PaletteService) FieldColors(fieldID string, kind *colormap.Kind, min, max *float64) ([]float32, error) {
	reader, err := s.fields.Get(fieldID)
	if err != nil {
		return nil, err
	}
	md := reader.Metadata()

	if md.Categorical && (kind == nil || *kind == colormap.KindLabel) {
		labels, err := reader.Labels()
		if err != nil {
			log.Error().Str("context", "service").Str("field", fieldID).Str("path", reader.Path()).Err(err).Msg("field_read_failed")
			return nil, fmt.Errorf("failed to read labels: %w", err)
		}
		return render.ColorizeLabels(labels, s.viewer.Palettes().Labels()), nil
	}

	values, err := reader.Values()
	if err != nil {
		log.Error().Str("context", "service").Str("field", fieldID).Str("path", reader.Path()).Err(err).Msg("field_read_failed")
		return nil, fmt.Errorf("failed to read values: %w", err)
	}

	r, ok := render.AutoRange(values)
	if !ok {
		r = render.Range{Min: 0, Max: 1}
	}
	if md.Min != nil {
		r.Min = *md.Min
	}
	if md.Max != nil {
		r.Max = *md.Max
	}
	if min != nil {
		r.Min = *min
	}
	if max != nil {
		r.Max = *max
	}
	return s.Colorize(values, kind, &r), nil
}
