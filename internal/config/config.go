// Package config loads the optional lansync configuration file. Ports
// and the discovery token are shared constants between peers: any values
// work as long as both ends of a pairing agree.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the optional lansync configuration file.
type Config struct {
	// Root is the data directory treated as the unit of synchronization.
	Root      string          `toml:"root"`
	Ports     PortsConfig     `toml:"ports"`
	Discovery DiscoveryConfig `toml:"discovery"`
	Timeouts  TimeoutsConfig  `toml:"timeouts"`
	// BWLimit caps send throughput, e.g. "10M". Empty means unlimited.
	BWLimit string `toml:"bwlimit"`
}

// PortsConfig holds the fixed ports both peers must agree on.
type PortsConfig struct {
	Sync      int `toml:"sync"`
	Compare   int `toml:"compare"`
	Discovery int `toml:"discovery"`
}

// DiscoveryConfig holds the discovery token and reply tag.
type DiscoveryConfig struct {
	Token  string `toml:"token"`
	AppTag string `toml:"app_tag"`
}

// TimeoutsConfig holds client-side timeouts in seconds.
type TimeoutsConfig struct {
	ConnectSeconds  int `toml:"connect_seconds"`
	DiscoverSeconds int `toml:"discover_seconds"`
}

// ConnectTimeout returns the TCP connect timeout as a duration.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Timeouts.ConnectSeconds) * time.Second
}

// DiscoverTimeout returns the discovery reply-collection window.
func (c Config) DiscoverTimeout() time.Duration {
	return time.Duration(c.Timeouts.DiscoverSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Ports: PortsConfig{
			Sync:      5555,
			Compare:   5556,
			Discovery: 5557,
		},
		Discovery: DiscoveryConfig{
			Token:  "DISCOVER_AL_SWAIFE",
			AppTag: "ALSWAIFE",
		},
		Timeouts: TimeoutsConfig{
			ConnectSeconds:  30,
			DiscoverSeconds: 2,
		},
	}
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "lansync", "config.toml")
}

// Load reads the config file from the XDG path, merged over the defaults.
// Returns the defaults (no error) if the file does not exist. Config is
// always optional.
func Load() (Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), err
	}
	return cfg, nil
}
