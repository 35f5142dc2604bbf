package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	MusicDir string `koanf:"music_dir"` // empty means use cwd

	Volume        float64 `koanf:"volume"`         // initial linear volume, 0.0-1.0 (default: 1.0)
	ProgressEvery int     `koanf:"progress_every"` // fire progress every n device callbacks (default: 2)
	SeekFraction  float64 `koanf:"seek_fraction"`  // seek step as fraction of track length (default: 0.05)
	BufferMs      int     `koanf:"buffer_ms"`      // device buffer length in milliseconds (default: 100)
	Verbose       bool    `koanf:"verbose"`        // debug logging
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Volume:        1.0,
		ProgressEvery: 2,
		SeekFraction:  0.05,
		BufferMs:      100,
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in music_dir
	if cfg.MusicDir != "" {
		cfg.MusicDir = expandPath(cfg.MusicDir)
	}

	// Reset out-of-range values to their defaults
	if cfg.Volume < 0 || cfg.Volume > 1 {
		cfg.Volume = 1.0
	}
	if cfg.ProgressEvery < 1 {
		cfg.ProgressEvery = 2
	}
	if cfg.SeekFraction <= 0 || cfg.SeekFraction > 1 {
		cfg.SeekFraction = 0.05
	}
	if cfg.BufferMs < 10 {
		cfg.BufferMs = 100
	}

	return cfg, nil
}

// Buffer returns the device buffer length as a duration.
func (c *Config) Buffer() time.Duration {
	return time.Duration(c.BufferMs) * time.Millisecond
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/cadence/config.toml
		filepath.Join(xdg.ConfigHome, "cadence", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
