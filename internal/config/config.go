// Package config handles configuration loading and validation for hovertype.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/hovertype/internal/detector"
	"github.com/ayusman/hovertype/internal/multitap"
	"github.com/ayusman/hovertype/internal/zone"
)

// Config holds the complete application configuration.
type Config struct {
	// Server configuration for the HTTP API.
	Server ServerConfig `toml:"server" yaml:"server"`

	// Storage configuration for persistence.
	Storage StorageConfig `toml:"storage" yaml:"storage"`

	// Input configuration for the multi-tap machine and frame loop.
	Input InputConfig `toml:"input" yaml:"input"`

	// Tracker configuration for projecting hands into layout space.
	Tracker TrackerConfig `toml:"tracker" yaml:"tracker"`

	// Plugin configuration for the keystroke sink.
	Plugin PluginConfig `toml:"plugin" yaml:"plugin"`

	// Tray enables the system tray menu.
	Tray bool `toml:"tray" yaml:"tray"`

	// Zones is the layout seeded into the store on first run.
	Zones []zone.Config `toml:"zones" yaml:"zones"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr      string `toml:"addr" yaml:"addr"`
	StaticDir string `toml:"static_dir" yaml:"static_dir"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Path is the SQLite database file.
	Path string `toml:"path" yaml:"path"`
}

// InputConfig holds frame loop and multi-tap configuration.
type InputConfig struct {
	// TimeoutMs is the commit timeout in milliseconds.
	TimeoutMs int `toml:"timeout_ms" yaml:"timeout_ms"`

	// FPS is the frame loop rate.
	FPS int `toml:"fps" yaml:"fps"`

	// Layout names the stored layout to load.
	Layout string `toml:"layout" yaml:"layout"`
}

// TrackerConfig holds hand projection configuration.
type TrackerConfig struct {
	Landmark int     `toml:"landmark" yaml:"landmark"`
	Width    float64 `toml:"width" yaml:"width"`
	Height   float64 `toml:"height" yaml:"height"`
	Mirror   bool    `toml:"mirror" yaml:"mirror"`
	MinScore float64 `toml:"min_score" yaml:"min_score"`

	// MaxAgeMs is how long a pushed snapshot stays valid.
	MaxAgeMs int `toml:"max_age_ms" yaml:"max_age_ms"`
}

// PluginConfig holds keystroke plugin configuration.
type PluginConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled"`
	Dir       string `toml:"dir" yaml:"dir"`
	Name      string `toml:"name" yaml:"name"`
	TimeoutMs int    `toml:"timeout_ms" yaml:"timeout_ms"`
}

// Timeout returns the commit timeout as a duration.
func (c InputConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// MaxAge returns the snapshot max age as a duration.
func (c TrackerConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeMs) * time.Millisecond
}

// Detector converts the tracker section to a detector configuration.
func (c TrackerConfig) Detector() detector.Config {
	return detector.Config{
		Landmark: c.Landmark,
		Width:    c.Width,
		Height:   c.Height,
		Mirror:   c.Mirror,
		MinScore: c.MinScore,
	}
}

// DataDir returns the default data directory (~/.hovertype).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hovertype"
	}
	return filepath.Join(home, ".hovertype")
}

// Default returns a Config with sensible default values and a
// phone-keypad layout laid out in two rows over a 640x480 frame.
func Default() *Config {
	det := detector.DefaultConfig()
	dataDir := DataDir()

	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Storage: StorageConfig{
			Path: filepath.Join(dataDir, "hovertype.db"),
		},
		Input: InputConfig{
			TimeoutMs: int(multitap.DefaultTimeout / time.Millisecond),
			FPS:       30,
			Layout:    "keypad",
		},
		Tracker: TrackerConfig{
			Landmark: det.Landmark,
			Width:    det.Width,
			Height:   det.Height,
			Mirror:   det.Mirror,
			MinScore: det.MinScore,
			MaxAgeMs: int(detector.DefaultMaxAge / time.Millisecond),
		},
		Plugin: PluginConfig{
			Dir:       filepath.Join(dataDir, "plugins"),
			Name:      "keyboard",
			TimeoutMs: 5000,
		},
		Zones: KeypadLayout(),
	}
}

// KeypadLayout returns the default zones: eight letter clusters, space and delete.
func KeypadLayout() []zone.Config {
	sets := []string{"ABC", "DEF", "GHI", "JKL", "MNO", "PQRS", "TUV", "WXYZ", " ", ""}

	zones := make([]zone.Config, len(sets))
	for i, chars := range sets {
		zones[i] = zone.Config{
			Chars:       chars,
			Center:      zone.Point{X: 64 + float64(i%5)*128, Y: 80 + float64(i/5)*120},
			OuterRadius: 45,
			InnerRadius: 60,
		}
	}
	return zones
}

// Load reads the configuration file at path on top of the defaults.
// A missing file yields the defaults. The format is chosen by extension;
// anything other than .yaml/.yml is parsed as TOML.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// A zones key in the file replaces the default layout outright.
	cfg.Zones = nil

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}

	if cfg.Zones == nil {
		cfg.Zones = KeypadLayout()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return cfg, nil
}
