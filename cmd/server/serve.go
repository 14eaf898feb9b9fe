package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pointshade/server/internal/api"
	"github.com/pointshade/server/internal/data/field"
	"github.com/pointshade/server/internal/service"
	"github.com/pointshade/server/internal/viewer"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the palette HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath, port)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	return cmd
}

func runServe(configPath string, port int) error {
	cfg, closeLog, err := loadConfig(configPath, false)
	if err != nil {
		return err
	}
	defer closeLog()

	if port > 0 {
		cfg.Server.Port = port
	}

	log.Info().Str("context", "main").Int("port", cfg.Server.Port).Msg("server_starting")

	cacheManager, err := newCacheManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer cacheManager.Close()

	palettes := startupPalette(cfg)
	hub := api.NewHub(palettes, cfg.Server.CORSOrigins)
	v := viewer.New(palettes, hub)

	fields := service.NewFieldRegistry()
	defer fields.Close()
	for _, id := range cfg.Data.FieldIDs() {
		fc := cfg.Data.Fields[id]
		reader, err := field.NewReader(fc.Path)
		if err != nil {
			return fmt.Errorf("failed to open field %q: %w", id, err)
		}
		fields.Register(id, reader)
		md := reader.Metadata()
		log.Info().Str("context", "main").Str("field", id).Str("path", reader.Path()).
			Int("count", md.Count).Bool("categorical", md.Categorical).Msg("field_loaded")
	}

	svc := service.NewPaletteService(service.PaletteServiceConfig{
		Viewer:   v,
		Cache:    cacheManager,
		Renderer: newRenderer(cfg),
		Fields:   fields,
		LUTSize:  cfg.Palette.LUTSize,
		UseLUT:   cfg.Palette.UseLUT,
	})

	router := api.NewRouter(api.RouterConfig{
		Service:     svc,
		Hub:         hub,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("context", "main").Msgf("listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info().Str("context", "main").Msg("server_shutting_down")
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Str("context", "main").Err(err).Msg("server_forced_shutdown")
	}

	log.Info().Str("context", "main").Msg("server_stopped")
	return nil
}
