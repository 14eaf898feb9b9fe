// Package api provides HTTP handlers for the pointshade server.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pointshade/server/internal/data/field"
	"github.com/pointshade/server/internal/render"
	"github.com/pointshade/server/internal/service"
	"github.com/pointshade/server/pkg/colormap"
	"github.com/rs/zerolog/log"
)

const (
	maxSwatches     = 1024
	maxImageSide    = 4096
	maxColorizeBody = 64 << 20
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Service     *service.PaletteService
	Hub         *Hub
	CORSOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	svc := cfg.Service

	r.Route("/api", func(r chi.Router) {
		r.Get("/palettes", palettesHandler(svc))
		r.Get("/palette", activePaletteHandler(svc))
		r.Put("/palette", setPaletteHandler(svc))

		r.Route("/palettes/{kind}", func(r chi.Router) {
			r.Get("/color", colorHandler(svc))
			r.Get("/colorbar.png", colorbarHandler(svc))
			r.Get("/scale.png", scaleHandler(svc))
			r.Get("/swatches", swatchesHandler(svc))
		})

		r.Get("/labels/legend.png", legendHandler(svc))
		r.Get("/labels/value", labelValueHandler(svc))
		r.Get("/labels/{index}", labelIndexHandler(svc))

		r.Post("/colorize", colorizeHandler(svc))
		r.Get("/fields", fieldsHandler(svc))
		r.Get("/stats", statsHandler(svc, cfg.Hub))
	})

	r.Get("/d/{field}/colors.bin", fieldColorsHandler(svc))

	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.ServeHTTP)
	}

	return r
}

type colorResponse struct {
	Value float64    `json:"value"`
	RGB   [3]float64 `json:"rgb"`
	Hex   string     `json:"hex"`
}

func newColorResponse(v float64, c colormap.RGB) colorResponse {
	return colorResponse{Value: v, RGB: [3]float64{c.R, c.G, c.B}, Hex: c.Hex()}
}

// writeJSON encodes v before writing the header so an unencodable value
// (NaN or Inf) becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Error().Str("context", "api").Err(err).Msg("json_encode_failed")
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(buf.Bytes())
}

// parseValue reads the required finite "value" query parameter.
func parseValue(r *http.Request) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get("value")), 64)
	if err != nil {
		return 0, errInvalidValue
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errInvalidValue
	}
	return v, nil
}

var errInvalidValue = errors.New("invalid value: expected a finite number")

func finite32(rgb []float32) bool {
	for _, c := range rgb {
		if math.IsInf(float64(c), 0) || math.IsNaN(float64(c)) {
			return false
		}
	}
	return true
}

// parseKind reads a palette kind. "" and "active" select the active
// palette and yield nil.
func parseKind(name string) (*colormap.Kind, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "active" {
		return nil, nil
	}
	kind, err := colormap.ParseKind(name)
	if err != nil {
		return nil, err
	}
	return &kind, nil
}

// parseFloatParam returns nil for a missing or non-finite parameter.
func parseFloatParam(r *http.Request, key string) *float64 {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseIntParam returns def for a missing or malformed parameter and clamps
// the rest to [0, max].
func parseIntParam(r *http.Request, key string, def, max int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func palettesHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kinds := colormap.Kinds()
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		writeJSON(w, map[string]interface{}{
			"palettes": names,
			"active":   svc.ActiveKind().String(),
		})
	}
}

func activePaletteHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"kind": svc.ActiveKind().String()})
	}
}

func setPaletteHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Kind string `json:"kind"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}

		// Unknown names fall back to jet.
		kind, _ := colormap.ParseKind(req.Kind)
		got := svc.SetActive(kind)
		writeJSON(w, map[string]string{"kind": got.String()})
	}
}

func colorHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKind(chi.URLParam(r, "kind"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		v, err := parseValue(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		c, err := svc.Color(kind, v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, newColorResponse(v, c))
	}
}

func colorbarHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKind(chi.URLParam(r, "kind"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		width := parseIntParam(r, "w", 0, maxImageSide)
		height := parseIntParam(r, "h", 0, maxImageSide)

		data, err := svc.Colorbar(kind, width, height)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		if kind == nil {
			w.Header().Set("Cache-Control", "no-cache")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		w.Write(data)
	}
}

func scaleHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKind(chi.URLParam(r, "kind"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rng := render.Range{Min: 0, Max: 1}
		if v := parseFloatParam(r, "min"); v != nil {
			rng.Min = *v
		}
		if v := parseFloatParam(r, "max"); v != nil {
			rng.Max = *v
		}
		width := parseIntParam(r, "w", 0, maxImageSide)
		height := parseIntParam(r, "h", 0, maxImageSide)

		data, err := svc.Scale(kind, rng, width, height)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, render.ErrInvalidRange) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		if kind == nil {
			w.Header().Set("Cache-Control", "no-cache")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		w.Write(data)
	}
}

func swatchesHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKind(chi.URLParam(r, "kind"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n := parseIntParam(r, "n", 8, maxSwatches)
		writeJSON(w, map[string]interface{}{"colors": svc.Swatches(kind, n)})
	}
}

func legendHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		columns := parseIntParam(r, "columns", 0, colormap.LabelCount)
		swatch := parseIntParam(r, "swatch", 0, 256)

		data, err := svc.Legend(columns, swatch)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Write(data)
	}
}

func labelIndexHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idx, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 32)
		if err != nil {
			http.Error(w, "invalid label index", http.StatusBadRequest)
			return
		}
		c := svc.LabelColor(uint32(idx))
		writeJSON(w, map[string]interface{}{
			"index": idx,
			"row":   idx % colormap.LabelCount,
			"rgb":   [3]float64{c.R, c.G, c.B},
			"hex":   c.Hex(),
		})
	}
}

func labelValueHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := parseValue(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		c, err := svc.LabelColorValue(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, newColorResponse(v, c))
	}
}

type colorizeRequest struct {
	Values []float64 `json:"values"`
	Kind   string    `json:"kind"`
	Min    *float64  `json:"min"`
	Max    *float64  `json:"max"`
}

func colorizeHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req colorizeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxColorizeBody)).Decode(&req); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		kind, err := parseKind(req.Kind)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var rng *render.Range
		if req.Min != nil || req.Max != nil {
			auto, ok := render.AutoRange(req.Values)
			if !ok {
				auto = render.Range{Min: 0, Max: 1}
			}
			if req.Min != nil {
				auto.Min = *req.Min
			}
			if req.Max != nil {
				auto.Max = *req.Max
			}
			rng = &auto
		}

		rgb := svc.Colorize(req.Values, kind, rng)
		if !finite32(rgb) {
			http.Error(w, "values overflow the color range; pass min and max", http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]interface{}{
			"count": len(req.Values),
			"rgb":   rgb,
		})
	}
}

func fieldsHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields := svc.Fields()
		writeJSON(w, map[string]interface{}{
			"default": fields.DefaultFieldID(),
			"fields":  fields.Fields(),
		})
	}
}

func statsHandler(svc *service.PaletteService, hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clients := 0
		if hub != nil {
			clients = hub.Count()
		}
		writeJSON(w, map[string]interface{}{
			"active":  svc.ActiveKind().String(),
			"fields":  len(svc.Fields().Fields()),
			"clients": clients,
			"cache":   svc.CacheStats(),
		})
	}
}

func fieldColorsHandler(svc *service.PaletteService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := parseKind(r.URL.Query().Get("kind"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rgb, err := svc.FieldColors(chi.URLParam(r, "field"), kind, parseFloatParam(r, "min"), parseFloatParam(r, "max"))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, service.ErrUnknownField) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("X-Point-Count", strconv.Itoa(len(rgb)/3))
		w.Write(field.EncodeColors(rgb))
	}
}
