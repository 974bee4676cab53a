// Package config handles loading and saving hubgraph configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/hubgraph/config.yaml
//   - State:  ~/.local/state/hubgraph/ (analytics event store)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const appName = "hubgraph"

// Reduced-motion modes.
const (
	MotionAuto = "auto"
	MotionOn   = "on"
	MotionOff  = "off"
)

// Analytics sink names.
const (
	SinkLog    = "log"
	SinkJSONL  = "jsonl"
	SinkSQLite = "sqlite"
	SinkHTTP   = "http"
)

// NarrowWidth is the terminal width below which auto mode reduces motion.
const NarrowWidth = 80

// Viewport is the layout area in simulation units.
type Viewport struct {
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

// UIConfig holds terminal viewer settings.
type UIConfig struct {
	TickMS int  `yaml:"tick_ms,omitempty"` // Frame interval in milliseconds
	Glyphs bool `yaml:"glyphs"`            // Background glyph clusters
}

// AnalyticsConfig selects and configures event sinks.
type AnalyticsConfig struct {
	Sinks      []string `yaml:"sinks,omitempty"` // log, jsonl, sqlite, http
	JSONLPath  string   `yaml:"jsonl_path,omitempty"`
	SQLitePath string   `yaml:"sqlite_path,omitempty"`
	Endpoint   string   `yaml:"endpoint,omitempty"`
	Domain     string   `yaml:"domain,omitempty"`
}

// Config is the top-level configuration for hubgraph.
type Config struct {
	DataURL       string          `yaml:"data_url,omitempty"`
	BaseURL       string          `yaml:"base_url,omitempty"`
	ReducedMotion string          `yaml:"reduced_motion,omitempty"` // auto, on, off
	Viewport      Viewport        `yaml:"viewport,omitempty"`
	UI            UIConfig        `yaml:"ui,omitempty"`
	Analytics     AnalyticsConfig `yaml:"analytics,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataURL:       "/data/graph.json",
		ReducedMotion: MotionAuto,
		Viewport: Viewport{
			Width:  960,
			Height: 560,
		},
		UI: UIConfig{
			TickMS: 16,
			Glyphs: true,
		},
		Analytics: AnalyticsConfig{
			Sinks:      []string{SinkLog},
			JSONLPath:  filepath.Join(StateDir(), "events.jsonl"),
			SQLitePath: filepath.Join(StateDir(), "events.db"),
			Endpoint:   "https://plausible.io/api/event",
		},
	}
}

// ConfigDir returns the XDG config directory for hubgraph.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for hubgraph.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path and applies env overrides.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HG_DATA_URL"); v != "" {
		c.DataURL = v
	}
	if v := os.Getenv("HG_REDUCED_MOTION"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", MotionOn:
			c.ReducedMotion = MotionOn
		case "0", "false", "no", MotionOff:
			c.ReducedMotion = MotionOff
		default:
			c.ReducedMotion = MotionAuto
		}
	}
}

func (c *Config) normalize() {
	def := DefaultConfig()
	c.ReducedMotion = strings.ToLower(strings.TrimSpace(c.ReducedMotion))
	if c.ReducedMotion == "" {
		c.ReducedMotion = MotionAuto
	}
	if c.Viewport.Width <= 0 {
		c.Viewport.Width = def.Viewport.Width
	}
	if c.Viewport.Height <= 0 {
		c.Viewport.Height = def.Viewport.Height
	}
	if c.UI.TickMS <= 0 {
		c.UI.TickMS = def.UI.TickMS
	}
	for i, s := range c.Analytics.Sinks {
		c.Analytics.Sinks[i] = strings.ToLower(strings.TrimSpace(s))
	}
	c.DataURL = expandHome(c.DataURL)
	c.Analytics.JSONLPath = expandHome(c.Analytics.JSONLPath)
	c.Analytics.SQLitePath = expandHome(c.Analytics.SQLitePath)
}

// Validate rejects unknown modes and sinks.
func (c Config) Validate() error {
	switch c.ReducedMotion {
	case MotionAuto, MotionOn, MotionOff:
	default:
		return fmt.Errorf("reduced_motion: unknown mode %q (want auto, on or off)", c.ReducedMotion)
	}
	for _, s := range c.Analytics.Sinks {
		switch s {
		case SinkLog, SinkJSONL, SinkSQLite, SinkHTTP:
		default:
			return fmt.Errorf("analytics.sinks: unknown sink %q", s)
		}
	}
	if c.HasSink(SinkHTTP) && c.Analytics.Domain == "" {
		return fmt.Errorf("analytics.domain is required for the http sink")
	}
	return nil
}

// HasSink reports whether the named analytics sink is enabled.
func (c Config) HasSink(name string) bool {
	for _, s := range c.Analytics.Sinks {
		if s == name {
			return true
		}
	}
	return false
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Env reads environment state for reduced-motion detection.
type Env struct {
	Getenv func(string) string
	NumCPU func() int
}

// SystemEnv is the process environment.
var SystemEnv = Env{Getenv: os.Getenv, NumCPU: runtime.NumCPU}

// ReducedMotionFor resolves the configured mode for a terminal of the given
// width. In auto mode motion is reduced when HG_SAVE_DATA or NO_MOTION is
// set, the terminal is narrower than NarrowWidth, or four or fewer CPUs are
// available. A width of zero means unknown and is not considered narrow.
func (c Config) ReducedMotionFor(width int, env Env) bool {
	switch c.ReducedMotion {
	case MotionOn:
		return true
	case MotionOff:
		return false
	}
	if env.Getenv == nil {
		env.Getenv = os.Getenv
	}
	if env.NumCPU == nil {
		env.NumCPU = runtime.NumCPU
	}
	if env.Getenv("HG_SAVE_DATA") != "" || env.Getenv("NO_MOTION") != "" {
		return true
	}
	if width > 0 && width < NarrowWidth {
		return true
	}
	return env.NumCPU() <= 4
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
