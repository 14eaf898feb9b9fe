// Package main is the entry point for the pointshade server and tools.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pointshade/server/internal/cache"
	"github.com/pointshade/server/internal/config"
	"github.com/pointshade/server/internal/logger"
	"github.com/pointshade/server/internal/render"
	"github.com/pointshade/server/pkg/colormap"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "pointshade",
		Short:        "Scalar-to-color palettes for point cloud viewers",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/server.yaml", "Path to configuration file")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newColorizeCmd(&configPath))
	rootCmd.AddCommand(newColorbarCmd(&configPath))
	rootCmd.AddCommand(newPreviewCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the global logger. quiet
// forces console logging off.
func loadConfig(path string, quiet bool) (*config.Config, func() error, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	closeLog, err := logger.Configure(logger.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		Quiet: cfg.Log.Quiet || quiet,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, closeLog, nil
}

// startupPalette creates a registry with the configured default palette.
func startupPalette(cfg *config.Config) *colormap.Registry {
	reg := colormap.NewRegistry()
	kind, err := colormap.ParseKind(cfg.Palette.Default)
	if err != nil {
		log.Warn().Str("context", "main").Err(err).Msg("default_palette_unknown")
	}
	reg.SetPalette(kind)
	return reg
}

func newCacheManager(cfg *config.Config) (*cache.Manager, error) {
	return cache.NewManager(cache.Config{
		ImageCacheSizeMB: cfg.Cache.ImageSizeMB,
		ImageTTL:         time.Duration(cfg.Cache.ImageTTLMinutes) * time.Minute,
		LUTCacheSize:     cfg.Cache.LUTEntries,
	})
}

func newRenderer(cfg *config.Config) *render.Renderer {
	return render.NewRenderer(render.Config{
		ColorbarWidth:  cfg.Render.ColorbarWidth,
		ColorbarHeight: cfg.Render.ColorbarHeight,
		LegendColumns:  cfg.Render.LegendColumns,
		LegendSwatch:   cfg.Render.LegendSwatch,
	})
}
