// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Template backend kinds.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config is the complete service configuration.
type Config struct {
	Listen     string   `yaml:"listen"`
	AssetsRoot string   `yaml:"assets_root"`
	LogLevel   string   `yaml:"log_level"`
	Template   Template `yaml:"template"`
	Fonts      Fonts    `yaml:"fonts"`
	Render     Render   `yaml:"render"`
	Output     Output   `yaml:"output"`
	HTTP       HTTP     `yaml:"http"`
}

// Template selects where the template is persisted.
type Template struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Redis   Redis  `yaml:"redis"`
}

// Redis holds the connection settings of the redis backend.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// Fonts lists font directories to register and the brand family.
type Fonts struct {
	Dirs    []string `yaml:"dirs"`
	Default string   `yaml:"default"`
}

// Render configures the compositor.
type Render struct {
	Timeout            time.Duration `yaml:"timeout"`
	PrefetchLimit      int           `yaml:"prefetch_limit"`
	Width              int           `yaml:"width"`
	Height             int           `yaml:"height"`
	BlankColor         string        `yaml:"blank_color"`
	FallbackBackground string        `yaml:"fallback_background"`
	Compression        string        `yaml:"compression"`
}

// Output configures persisted renders.
type Output struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

// HTTP configures remote asset fetching.
type HTTP struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxBytes      int64         `yaml:"max_bytes"`
	MaxPixels     int64         `yaml:"max_pixels"`
	CacheCapacity int           `yaml:"cache_capacity"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:     ":8080",
		AssetsRoot: ".",
		LogLevel:   "info",
		Template: Template{
			Backend: BackendFile,
			Path:    "template.json",
			Redis:   Redis{Addr: "localhost:6379", Key: "compose:template"},
		},
		Render: Render{
			Timeout:            30 * time.Second,
			PrefetchLimit:      8,
			Width:              1080,
			Height:             1080,
			BlankColor:         "#FFFFFF",
			FallbackBackground: "assets/background.png",
			Compression:        "default",
		},
		Output: Output{
			Dir:     "outputs",
			BaseURL: "/outputs/",
		},
		HTTP: HTTP{
			Timeout:   10 * time.Second,
			MaxBytes:  32 << 20,
			MaxPixels: 8192 * 8192,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error when optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && optional {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Template.Backend {
	case BackendFile:
		if c.Template.Path == "" {
			return errors.New("config: template.path is required for the file backend")
		}
	case BackendRedis:
		if c.Template.Redis.Addr == "" {
			return errors.New("config: template.redis.addr is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown template backend %q", c.Template.Backend)
	}
	switch c.Render.Compression {
	case "", "default", "none", "fast", "best":
	default:
		return fmt.Errorf("config: unknown compression %q", c.Render.Compression)
	}
	if c.Render.Timeout < 0 {
		return errors.New("config: render.timeout must not be negative")
	}
	return nil
}
