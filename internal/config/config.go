// Package config handles configuration loading for the pointshade server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the YAML file.
const (
	EnvPort     = "POINTSHADE_PORT"
	EnvPalette  = "POINTSHADE_PALETTE"
	EnvLogLevel = "POINTSHADE_LOG_LEVEL"
)

// Config represents the server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Palette PaletteConfig `yaml:"palette"`
	Data    DataConfig    `yaml:"data"`
	Cache   CacheConfig   `yaml:"cache"`
	Render  RenderConfig  `yaml:"render"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// PaletteConfig selects the startup palette and the lookup-table resolution
// used when colorizing large fields.
type PaletteConfig struct {
	Default string `yaml:"default"`
	LUTSize int    `yaml:"lut_size"`
	UseLUT  bool   `yaml:"use_lut"`
}

// FieldConfig points at one scalar field directory.
type FieldConfig struct {
	Path string `yaml:"path"`
}

// DataConfig lists scalar fields in file order. The first one is the default.
type DataConfig struct {
	Fields       map[string]FieldConfig
	DefaultField string
	order        []string
}

// UnmarshalYAML decodes the `data` mapping while keeping key order.
func (d *DataConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("data: expected mapping, got node kind %d", node.Kind)
	}
	d.Fields = make(map[string]FieldConfig, len(node.Content)/2)
	d.order = d.order[:0]
	for i := 0; i+1 < len(node.Content); i += 2 {
		id := node.Content[i].Value
		var fc FieldConfig
		if err := node.Content[i+1].Decode(&fc); err != nil {
			return fmt.Errorf("data.%s: %w", id, err)
		}
		if _, dup := d.Fields[id]; !dup {
			d.order = append(d.order, id)
		}
		d.Fields[id] = fc
	}
	if len(d.order) > 0 {
		d.DefaultField = d.order[0]
	}
	return nil
}

// FieldIDs returns field IDs in config order.
func (d DataConfig) FieldIDs() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	ImageSizeMB     int `yaml:"image_size_mb"`
	ImageTTLMinutes int `yaml:"image_ttl_minutes"`
	LUTEntries      int `yaml:"lut_entries"`
}

// RenderConfig contains image rendering settings.
type RenderConfig struct {
	ColorbarWidth  int `yaml:"colorbar_width"`
	ColorbarHeight int `yaml:"colorbar_height"`
	LegendColumns  int `yaml:"legend_columns"`
	LegendSwatch   int `yaml:"legend_swatch"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	Quiet bool   `yaml:"quiet"`
}

// Load reads configuration from a YAML file, then applies a sibling .env
// file and POINTSHADE_* environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		cfg := DefaultConfig()
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Palette: PaletteConfig{
			Default: "jet",
			LUTSize: 256,
		},
		Data: DataConfig{
			Fields: map[string]FieldConfig{},
		},
		Cache: CacheConfig{
			ImageSizeMB:     64,
			ImageTTLMinutes: 10,
			LUTEntries:      64,
		},
		Render: RenderConfig{
			ColorbarWidth:  256,
			ColorbarHeight: 24,
			LegendColumns:  8,
			LegendSwatch:   24,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Palette.Default == "" {
		cfg.Palette.Default = defaults.Palette.Default
	}
	if cfg.Palette.LUTSize < 2 {
		cfg.Palette.LUTSize = defaults.Palette.LUTSize
	}
	if cfg.Data.Fields == nil {
		cfg.Data.Fields = map[string]FieldConfig{}
	}
	if cfg.Cache.ImageSizeMB == 0 {
		cfg.Cache.ImageSizeMB = defaults.Cache.ImageSizeMB
	}
	if cfg.Cache.ImageTTLMinutes == 0 {
		cfg.Cache.ImageTTLMinutes = defaults.Cache.ImageTTLMinutes
	}
	if cfg.Cache.LUTEntries == 0 {
		cfg.Cache.LUTEntries = defaults.Cache.LUTEntries
	}
	if cfg.Render.ColorbarWidth == 0 {
		cfg.Render.ColorbarWidth = defaults.Render.ColorbarWidth
	}
	if cfg.Render.ColorbarHeight == 0 {
		cfg.Render.ColorbarHeight = defaults.Render.ColorbarHeight
	}
	if cfg.Render.LegendColumns == 0 {
		cfg.Render.LegendColumns = defaults.Render.LegendColumns
	}
	if cfg.Render.LegendSwatch == 0 {
		cfg.Render.LegendSwatch = defaults.Render.LegendSwatch
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvPalette); v != "" {
		cfg.Palette.Default = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	return nil
}
