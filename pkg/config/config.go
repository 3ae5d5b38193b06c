// Package config holds reftree's persistent settings, stored as TOML at
// $XDG_CONFIG_HOME/reftree/config.toml. Command-line flags override values
// loaded from the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/reftree/pkg/cache"
	"github.com/matzehuels/reftree/pkg/connector"
	"github.com/matzehuels/reftree/pkg/errors"
	"github.com/matzehuels/reftree/pkg/grid"
	"github.com/matzehuels/reftree/pkg/measure"
	"github.com/matzehuels/reftree/pkg/render/sink"
	"github.com/matzehuels/reftree/pkg/viewport"
)

// Config is the root of config.toml.
type Config struct {
	Layout   LayoutConfig    `toml:"layout"`
	Metrics  measure.Metrics `toml:"metrics"`
	Style    StyleConfig     `toml:"style"`
	Viewport ViewportConfig  `toml:"viewport"`
	Cache    CacheConfig     `toml:"cache"`
	Serve    ServeConfig     `toml:"serve"`
	Mongo    MongoConfig     `toml:"mongo"`
}

// LayoutConfig controls grid computation and connector geometry.
type LayoutConfig struct {
	MinColumns      int     `toml:"min_columns"`
	ConnectorOffset float64 `toml:"connector_offset"`
}

// StyleConfig controls colors and strokes.
type StyleConfig struct {
	Stroke      string     `toml:"stroke"`
	StrokeWidth float64    `toml:"stroke_width"`
	LineCap     string     `toml:"line_cap"`
	Theme       sink.Theme `toml:"theme"`
}

// ViewportConfig sizes the pan window of the HTML page and the terminal viewer.
type ViewportConfig struct {
	Width         float64 `toml:"width"`
	Height        float64 `toml:"height"`
	OverlayMargin float64 `toml:"overlay_margin"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "file", "redis", "none"
	Dir           string `toml:"dir"`
	TTL           string `toml:"ttl"`
	Prefix        string `toml:"prefix"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// MongoConfig is the default collection for the mongo source.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	SortField  string `toml:"sort_field"`
}

// Default returns the built-in configuration.
func Default() *Config {
	st := connector.DefaultStyle()
	return &Config{
		Layout: LayoutConfig{
			MinColumns:      grid.DefaultMinColumns,
			ConnectorOffset: connector.DefaultOffset,
		},
		Metrics: measure.DefaultMetrics(),
		Style: StyleConfig{
			Stroke:      st.Color,
			StrokeWidth: st.Width,
			LineCap:     st.Cap,
			Theme:       sink.DefaultTheme(),
		},
		Viewport: ViewportConfig{
			Width:         sink.DefaultViewportWidth,
			Height:        sink.DefaultViewportHeight,
			OverlayMargin: viewport.DefaultOverlayMargin,
		},
		Cache: CacheConfig{
			Backend:   cache.BackendFile,
			TTL:       cache.TTLArtifact.String(),
			RedisAddr: "localhost:6379",
		},
		Serve: ServeConfig{Addr: "localhost:8080"},
	}
}

// Dir returns the reftree config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "reftree")
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults. An empty path means [DefaultPath]. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories. An empty path means
// [DefaultPath].
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Layout.MinColumns < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "layout.min_columns must be at least 1")
	}
	m := c.Metrics
	if m.CardWidth <= 0 || m.CardHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "metrics.card_width and card_height must be positive")
	}
	if m.ColGap < 0 || m.RowGap < 0 || m.Padding < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "metrics gaps and padding cannot be negative")
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend %q is not one of file, redis, none", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	return nil
}

// ConnectorStyle returns the configured stroke.
func (c *Config) ConnectorStyle() connector.Style {
	return connector.Style{Color: c.Style.Stroke, Width: c.Style.StrokeWidth, Cap: c.Style.LineCap}
}

// CacheTTL parses cache.ttl. An empty value means no expiry.
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "cache.ttl")
	}
	return d, nil
}
