package main

import (
	"context"
	"fmt"
	"image/color"
	"image/png"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/asset"
	"github.com/gogpu/compose/internal/config"
	"github.com/gogpu/compose/internal/logging"
	"github.com/gogpu/compose/store"
)

// app holds what every command builds from the configuration.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

// loadApp reads the configuration named by the persistent flags and
// installs the logger. An absent default config file is not an error.
func loadApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := cmd.Flags().Changed("config")
	cfg, err := config.Load(path, !explicit)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level)
	compose.SetLogger(logger)
	return &app{cfg: cfg, logger: logger}, nil
}

// fonts builds the registry with the configured directories.
func (a *app) fonts() (*compose.FontRegistry, error) {
	reg := compose.NewFontRegistry()
	for _, dir := range a.cfg.Fonts.Dirs {
		n, err := reg.RegisterDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to register fonts from %s: %w", dir, err)
		}
		a.logger.Info("fonts registered", "dir", dir, "count", n)
	}
	if a.cfg.Fonts.Default != "" {
		if err := reg.SetDefault(a.cfg.Fonts.Default); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// loader builds the asset loader.
func (a *app) loader() *asset.Loader {
	return asset.NewLoader(
		asset.WithRoot(a.cfg.AssetsRoot),
		asset.WithTimeout(a.cfg.HTTP.Timeout),
		asset.WithMaxBytes(a.cfg.HTTP.MaxBytes),
		asset.WithMaxPixels(a.cfg.HTTP.MaxPixels),
		asset.WithCache(a.cfg.HTTP.CacheCapacity),
	)
}

// renderer builds the compositor around acquirer.
func (a *app) renderer(acquirer compose.Acquirer) (*compose.Renderer, error) {
	fonts, err := a.fonts()
	if err != nil {
		return nil, err
	}
	blank, err := compose.ParseColor(a.cfg.Render.BlankColor)
	if err != nil {
		return nil, fmt.Errorf("config: render.blank_color: %w", err)
	}
	return compose.NewRenderer(
		compose.WithAcquirer(acquirer),
		compose.WithFonts(fonts),
		compose.WithFallbackBackground(a.cfg.Render.FallbackBackground),
		compose.WithDefaultSize(a.cfg.Render.Width, a.cfg.Render.Height),
		compose.WithBlankColor(color.Color(blank)),
		compose.WithPrefetchLimit(a.cfg.Render.PrefetchLimit),
		compose.WithCompressionLevel(compressionLevel(a.cfg.Render.Compression)),
	), nil
}

// store opens the configured template backend and loads the persisted
// template. The returned func releases the backend.
func (a *app) store(ctx context.Context) (*store.Store, func() error, error) {
	var (
		backend store.Backend
		release = func() error { return nil }
	)
	switch t := a.cfg.Template; t.Backend {
	case config.BackendRedis:
		var opts []store.RedisOption
		if t.Redis.Key != "" {
			opts = append(opts, store.WithKey(t.Redis.Key))
		}
		rb := store.NewRedisBackend(t.Redis.Addr, t.Redis.Password, t.Redis.DB, opts...)
		backend, release = rb, rb.Close
	case config.BackendMemory:
		backend = store.NewMemoryBackend(nil)
	default:
		backend = store.NewFileBackend(t.Path)
	}

	st := store.New(backend)
	if err := st.Load(ctx); err != nil {
		_ = release()
		return nil, nil, err
	}
	return st, release, nil
}

func compressionLevel(name string) png.CompressionLevel {
	switch name {
	case "none":
		return png.NoCompression
	case "fast":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}
