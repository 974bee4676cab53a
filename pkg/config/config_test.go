package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HG_DATA_URL", "")
	t.Setenv("HG_REDUCED_MOTION", "")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DataURL != "/data/graph.json" {
		t.Errorf("expected default data_url, got %q", cfg.DataURL)
	}
	if cfg.ReducedMotion != MotionAuto {
		t.Errorf("expected reduced_motion auto, got %q", cfg.ReducedMotion)
	}
	if cfg.Viewport.Width != 960 || cfg.Viewport.Height != 560 {
		t.Errorf("expected 960x560 viewport, got %vx%v", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.UI.TickMS != 16 {
		t.Errorf("expected tick 16ms, got %d", cfg.UI.TickMS)
	}
	if !cfg.UI.Glyphs {
		t.Error("expected glyphs enabled by default")
	}
	if !cfg.HasSink(SinkLog) || len(cfg.Analytics.Sinks) != 1 {
		t.Errorf("expected only the log sink, got %v", cfg.Analytics.Sinks)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.DataURL != "/data/graph.json" {
		t.Errorf("expected default config, got data_url %q", cfg.DataURL)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
data_url: ~/graphs/hub.json
base_url: https://example.com/
reduced_motion: ON
viewport:
  width: 1200
ui:
  tick_ms: 33
  glyphs: false
analytics:
  sinks: [jsonl, " SQLite "]
  jsonl_path: ~/events.jsonl
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "graphs/hub.json"); cfg.DataURL != want {
		t.Errorf("expected expanded data_url %q, got %q", want, cfg.DataURL)
	}
	if cfg.BaseURL != "https://example.com/" {
		t.Errorf("unexpected base_url %q", cfg.BaseURL)
	}
	if cfg.ReducedMotion != MotionOn {
		t.Errorf("expected normalized mode 'on', got %q", cfg.ReducedMotion)
	}
	if cfg.Viewport.Width != 1200 || cfg.Viewport.Height != 560 {
		t.Errorf("expected 1200x560, got %vx%v", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if cfg.UI.TickMS != 33 {
		t.Errorf("expected tick 33, got %d", cfg.UI.TickMS)
	}
	if cfg.UI.Glyphs {
		t.Error("expected glyphs disabled")
	}
	if cfg.HasSink(SinkLog) || !cfg.HasSink(SinkJSONL) || !cfg.HasSink(SinkSQLite) {
		t.Errorf("unexpected sinks %v", cfg.Analytics.Sinks)
	}
	if want := filepath.Join(home, "events.jsonl"); cfg.Analytics.JSONLPath != want {
		t.Errorf("expected expanded jsonl_path %q, got %q", want, cfg.Analytics.JSONLPath)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFrom_Rejects(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"mode", "reduced_motion: sometimes\n", "reduced_motion"},
		{"sink", "analytics:\n  sinks: [kafka]\n", "kafka"},
		{"http without domain", "analytics:\n  sinks: [http]\n", "domain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFrom(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HG_DATA_URL", "https://cdn.example.com/graph.json")
	t.Setenv("HG_REDUCED_MOTION", "1")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataURL != "https://cdn.example.com/graph.json" {
		t.Errorf("HG_DATA_URL not applied, got %q", cfg.DataURL)
	}
	if cfg.ReducedMotion != MotionOn {
		t.Errorf("HG_REDUCED_MOTION=1 should force on, got %q", cfg.ReducedMotion)
	}

	t.Setenv("HG_REDUCED_MOTION", "off")
	cfg, _ = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.ReducedMotion != MotionOff {
		t.Errorf("HG_REDUCED_MOTION=off should force off, got %q", cfg.ReducedMotion)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.DataURL = "https://example.com/graph.json"
	cfg.ReducedMotion = MotionOff
	cfg.Analytics.Sinks = []string{SinkHTTP}
	cfg.Analytics.Domain = "example.com"

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}
	if loaded.DataURL != cfg.DataURL || loaded.ReducedMotion != MotionOff {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if !loaded.HasSink(SinkHTTP) || loaded.Analytics.Domain != "example.com" {
		t.Errorf("round trip lost analytics: %+v", loaded.Analytics)
	}
}

func TestReducedMotionFor(t *testing.T) {
	env := func(vars map[string]string, cpus int) Env {
		return Env{
			Getenv: func(k string) string { return vars[k] },
			NumCPU: func() int { return cpus },
		}
	}
	tests := []struct {
		name  string
		mode  string
		width int
		env   Env
		want  bool
	}{
		{"forced on", MotionOn, 200, env(nil, 16), true},
		{"forced off beats narrow", MotionOff, 40, env(nil, 1), false},
		{"auto wide fast", MotionAuto, 120, env(nil, 8), false},
		{"auto narrow", MotionAuto, 79, env(nil, 8), true},
		{"auto width unknown", MotionAuto, 0, env(nil, 8), false},
		{"auto low cpu", MotionAuto, 120, env(nil, 4), true},
		{"auto save data", MotionAuto, 120, env(map[string]string{"HG_SAVE_DATA": "1"}, 8), true},
		{"auto no motion", MotionAuto, 120, env(map[string]string{"NO_MOTION": "1"}, 8), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{ReducedMotion: tt.mode}
			if got := cfg.ReducedMotionFor(tt.width, tt.env); got != tt.want {
				t.Errorf("ReducedMotionFor(%d) = %v, want %v", tt.width, got, tt.want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
		{"https://example.com/~user", "https://example.com/~user"},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	if got, want := ConfigDir(), filepath.Join(dir, "hubgraph"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got, want := ConfigPath(), filepath.Join(dir, "hubgraph", "config.yaml"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStateDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	if got, want := StateDir(), filepath.Join(dir, "hubgraph"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if got := DefaultConfig().Analytics.SQLitePath; got != filepath.Join(dir, "hubgraph", "events.db") {
		t.Errorf("sqlite path should live under state dir, got %q", got)
	}
}
