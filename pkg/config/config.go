// Package config handles loading and saving bomview configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/bomview/config.yaml
//   - State:   ~/.local/state/bomview/ (recent models, view state cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Library is a registered models root directory.
type Library struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	SplitRatio float64 `yaml:"split_ratio,omitempty"` // tree/detail split (0.2-0.8)
	ShowPath   bool    `yaml:"show_path,omitempty"`   // path-to-root line in detail pane
	Theme      string  `yaml:"theme,omitempty"`       // auto, dark, light
}

// ViewerConfig tunes selection, highlight, and camera behavior.
type ViewerConfig struct {
	FOVDegrees         float64 `yaml:"fov_degrees,omitempty"`
	AnimationMillis    int     `yaml:"animation_millis,omitempty"`
	ClickWindowMillis  int     `yaml:"click_window_millis,omitempty"`
	HighlightColor     string  `yaml:"highlight_color,omitempty"`     // #rrggbb, selection tint
	HighlightIntensity float64 `yaml:"highlight_intensity,omitempty"` // emissive strength (0-1)
}

// DiscoveryConfig controls model discovery.
type DiscoveryConfig struct {
	ScanPaths []string `yaml:"scan_paths,omitempty"` // extra roots to scan for bom_data.json
	Watch     bool     `yaml:"watch,omitempty"`      // reload when BOM files change
}

// Config is the top-level configuration for bomview.
type Config struct {
	Libraries []Library       `yaml:"libraries,omitempty"`
	Favorites map[int]string  `yaml:"favorites,omitempty"` // number key (1-9) -> library name
	UI        UIConfig        `yaml:"ui,omitempty"`
	Viewer    ViewerConfig    `yaml:"viewer,omitempty"`
	Discovery DiscoveryConfig `yaml:"discovery,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Favorites: make(map[int]string),
		UI: UIConfig{
			SplitRatio: 0.4,
			ShowPath:   true,
			Theme:      "auto",
		},
		Viewer: ViewerConfig{
			FOVDegrees:         60,
			AnimationMillis:    1000,
			ClickWindowMillis:  350,
			HighlightColor:     "#ff6600",
			HighlightIntensity: 0.3,
		},
		Discovery: DiscoveryConfig{
			Watch: true,
		},
	}
}

// ConfigDir returns the XDG config directory for bomview.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "bomview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bomview")
}

// StateDir returns the XDG state directory for bomview.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "bomview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "bomview")
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

	if cfg.Favorites == nil {
		cfg.Favorites = make(map[int]string)
	}

	// Expand ~ in library paths
	for i := range cfg.Libraries {
		cfg.Libraries[i].Path = expandHome(cfg.Libraries[i].Path)
	}
	for i := range cfg.Discovery.ScanPaths {
		cfg.Discovery.ScanPaths[i] = expandHome(cfg.Discovery.ScanPaths[i])
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

// FindLibrary returns the library with the given name, or nil.
func (c Config) FindLibrary(name string) *Library {
	for i := range c.Libraries {
		if strings.EqualFold(c.Libraries[i].Name, name) {
			return &c.Libraries[i]
		}
	}
	return nil
}

// FavoriteLibrary returns the library assigned to number key n (1-9), or nil.
func (c Config) FavoriteLibrary(n int) *Library {
	name, ok := c.Favorites[n]
	if !ok {
		return nil
	}
	return c.FindLibrary(name)
}

// SetFavorite assigns a library name to a number key (1-9).
func (c *Config) SetFavorite(n int, libraryName string) {
	if c.Favorites == nil {
		c.Favorites = make(map[int]string)
	}
	if libraryName == "" {
		delete(c.Favorites, n)
	} else {
		c.Favorites[n] = libraryName
	}
}

// ResolvedPath returns the library path with ~ expanded.
func (l Library) ResolvedPath() string {
	return expandHome(l.Path)
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
