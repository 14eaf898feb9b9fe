// Package cache provides caching for rendered images and palette lookup tables.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pointshade/server/pkg/colormap"
)

// Config contains cache configuration.
type Config struct {
	ImageCacheSizeMB int
	ImageTTL         time.Duration
	LUTCacheSize     int
}

// Manager manages the image and LUT caches.
type Manager struct {
	imageCache *bigcache.BigCache
	lutCache   *lru.Cache[string, *colormap.LUT]
}

// NewManager creates a new cache manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.ImageTTL <= 0 {
		cfg.ImageTTL = 10 * time.Minute
	}
	if cfg.LUTCacheSize <= 0 {
		cfg.LUTCacheSize = 64
	}

	imageCacheConfig := bigcache.Config{
		Shards:             16,
		LifeWindow:         cfg.ImageTTL,
		CleanWindow:        cfg.ImageTTL / 2,
		MaxEntriesInWindow: 1024,
		MaxEntrySize:       64 * 1024, // colorbars and legends are small PNGs
		HardMaxCacheSize:   cfg.ImageCacheSizeMB,
		Verbose:            false,
	}

	imageCache, err := bigcache.New(context.Background(), imageCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create image cache: %w", err)
	}

	lutCache, err := lru.New[string, *colormap.LUT](cfg.LUTCacheSize)
	if err != nil {
		imageCache.Close()
		return nil, fmt.Errorf("failed to create lut cache: %w", err)
	}

	return &Manager{
		imageCache: imageCache,
		lutCache:   lutCache,
	}, nil
}

// GetImage retrieves an encoded image from cache.
func (m *Manager) GetImage(key string) ([]byte, bool) {
	data, err := m.imageCache.Get(key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetImage stores an encoded image in cache.
func (m *Manager) SetImage(key string, data []byte) error {
	return m.imageCache.Set(key, data)
}

// GetLUT retrieves a lookup table from cache.
func (m *Manager) GetLUT(key string) (*colormap.LUT, bool) {
	return m.lutCache.Get(key)
}

// SetLUT stores a lookup table in cache.
func (m *Manager) SetLUT(key string, lut *colormap.LUT) {
	m.lutCache.Add(key, lut)
}

// ColorbarKey generates a cache key for a colorbar image.
func ColorbarKey(kind colormap.Kind, width, height int) string {
	return fmt.Sprintf("colorbar:%s:%dx%d", kind, width, height)
}

// ScaleKey generates a cache key for a colorbar with a labelled value axis.
func ScaleKey(kind colormap.Kind, min, max float64, width, height int) string {
	return fmt.Sprintf("scale:%s:%g:%g:%dx%d", kind, min, max, width, height)
}

// LegendKey generates a cache key for the label legend image.
func LegendKey(columns, swatch int) string {
	return fmt.Sprintf("legend:%d:%d", columns, swatch)
}

// LUTKey generates a cache key for a sampled palette.
func LUTKey(kind colormap.Kind, size int) string {
	return fmt.Sprintf("lut:%s:%d", kind, size)
}

// Stats returns cache statistics.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"image_cache_len": m.imageCache.Len(),
		"image_cache_cap": m.imageCache.Capacity(),
		"lut_cache_len":   m.lutCache.Len(),
	}
}

// Close closes the cache manager.
func (m *Manager) Close() error {
	return m.imageCache.Close()
}
