// Package config handles loading and saving lineweave configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/lineweave/config.yaml
//   - State:   ~/.local/state/lineweave/ (recent repositories)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Repository represents a registered repository in the config.
type Repository struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	Theme        string  `yaml:"theme,omitempty"`          // dark, light
	ZoomStep     float64 `yaml:"zoom_step,omitempty"`      // Multiplier per wheel notch
	MinZoom      float64 `yaml:"min_zoom,omitempty"`       // Lower zoom clamp
	MaxZoom      float64 `yaml:"max_zoom,omitempty"`       // Upper zoom clamp
	ShowStats    bool    `yaml:"show_stats,omitempty"`     // Stats panel visible at start
	PreviewWidth int     `yaml:"preview_width,omitempty"`  // Hover preview pane columns
}

// LayoutConfig controls node placement on the canvas.
type LayoutConfig struct {
	SpacingX   float64 `yaml:"spacing_x,omitempty"`
	SpacingY   float64 `yaml:"spacing_y,omitempty"`
	WidthBound float64 `yaml:"width_bound,omitempty"` // Row wrap threshold for auto-placement
}

// PersistConfig controls graph save debouncing.
type PersistConfig struct {
	DebounceMillis int `yaml:"debounce_millis,omitempty"`
}

// Config is the top-level configuration for lineweave.
type Config struct {
	Repositories []Repository  `yaml:"repositories,omitempty"`
	UI           UIConfig      `yaml:"ui,omitempty"`
	Layout       LayoutConfig  `yaml:"layout,omitempty"`
	Persist      PersistConfig `yaml:"persist,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			Theme:        "dark",
			ZoomStep:     1.1,
			MinZoom:      0.25,
			MaxZoom:      4.0,
			PreviewWidth: 48,
		},
		Layout: LayoutConfig{
			SpacingX:   220,
			SpacingY:   150,
			WidthBound: 1400,
		},
		Persist: PersistConfig{
			DebounceMillis: 1000,
		},
	}
}

// ConfigDir returns the XDG config directory for lineweave.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "lineweave")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "lineweave")
}

// StateDir returns the XDG state directory for lineweave.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "lineweave")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "lineweave")
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
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Expand ~ in repository paths
	for i := range cfg.Repositories {
		cfg.Repositories[i].Path = expandHome(cfg.Repositories[i].Path)
	}

	return cfg, nil
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

// FindRepository returns the repository with the given name, or nil.
func (c Config) FindRepository(name string) *Repository {
	for i := range c.Repositories {
		if strings.EqualFold(c.Repositories[i].Name, name) {
			return &c.Repositories[i]
		}
	}
	return nil
}

// ResolvedPath returns the repository path with ~ expanded.
func (r Repository) ResolvedPath() string {
	return expandHome(r.Path)
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
