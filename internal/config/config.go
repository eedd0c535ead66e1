// Package config handles loading and managing lazyredis connection
// profiles.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
)

// Profile is one named connection: where to connect, which logical
// database to start in, whether destructive bulk operations are allowed,
// and the accent color the UI uses for it.
type Profile struct {
	Name  string `toml:"name"`
	URL   string `toml:"url"`
	DB    *int   `toml:"db,omitempty"`
	Dev   *bool  `toml:"dev,omitempty"`
	Color string `toml:"color,omitempty"`
}

// Database returns the profile's default logical database index.
func (p Profile) Database() int {
	if p.DB != nil {
		return *p.DB
	}
	return 0
}

// Trusted reports whether destructive bulk operations (purge, seed) are
// allowed against this profile. Absent means no.
func (p Profile) Trusted() bool {
	return p.Dev != nil && *p.Dev
}

// AccentColor parses the profile's color ("green", "#00FF88", ...) into a
// terminal color, defaulting to green.
func (p Profile) AccentColor() lipgloss.Color {
	return ParseColor(p.Color)
}

// Config is the persisted profile list.
type Config struct {
	Connections []Profile `toml:"connections"`

	// Path the config was loaded from (not serialized).
	Path string `toml:"-"`
}

// DefaultProfile is the local profile synthesized on first run.
func DefaultProfile() Profile {
	db := 0
	dev := true
	return Profile{
		Name:  "Default",
		URL:   "redis://127.0.0.1:6379",
		DB:    &db,
		Dev:   &dev,
		Color: "green",
	}
}

// DefaultPath returns the default config file location,
// <user config dir>/lazyredis/lazyredis.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "lazyredis", "lazyredis.toml"), nil
}

// Load reads the configuration from path, or from the default location
// when path is empty. A missing file is not an error: a single default
// local profile is synthesized and written back so the user has a file to
// edit.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{Path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg.Connections = []Profile{DefaultProfile()}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("write default config: %w", err)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	// A present but profile-less file still gets the default, so the tool
	// always has somewhere to connect.
	if len(cfg.Connections) == 0 {
		cfg.Connections = []Profile{DefaultProfile()}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("write default profile: %w", err)
		}
	}

	return cfg, nil
}

// Save writes the config back to its path, creating parent directories.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(c.Path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// ProfileNamed finds a profile by name.
func (c *Config) ProfileNamed(name string) (Profile, bool) {
	for _, p := range c.Connections {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// namedColors maps the recognized color names to ANSI palette indexes.
var namedColors = map[string]lipgloss.Color{
	"black":   lipgloss.Color("0"),
	"red":     lipgloss.Color("1"),
	"green":   lipgloss.Color("2"),
	"yellow":  lipgloss.Color("3"),
	"blue":    lipgloss.Color("4"),
	"magenta": lipgloss.Color("5"),
	"cyan":    lipgloss.Color("6"),
	"white":   lipgloss.Color("7"),
	"gray":    lipgloss.Color("8"),
	"grey":    lipgloss.Color("8"),
}

// ParseColor converts a named color or "#RRGGBB" value to a terminal
// color. Unrecognized values fall back to green.
func ParseColor(v string) lipgloss.Color {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := namedColors[v]; ok {
		return c
	}
	if len(v) == 7 && v[0] == '#' && isHex(v[1:]) {
		return lipgloss.Color(v)
	}
	return namedColors["green"]
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
