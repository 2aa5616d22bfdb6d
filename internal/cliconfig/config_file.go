package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig is the TOML layout of the config file.
type FileConfig struct {
	OutDir       string   `toml:"out_dir"`
	Previewer    string   `toml:"previewer"`
	Scale        float64  `toml:"scale"`
	Clip         float64  `toml:"clip"`
	Lightness    *float64 `toml:"lightness"`
	TevScale     float64  `toml:"tev_scale"`
	TevClip      float64  `toml:"tev_clip"`
	Workers      int      `toml:"workers"`
	DialAttempts int      `toml:"dial_attempts"`
	LogLevel     string   `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.ptflview/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".ptflview", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("out-dir", fc.OutDir, &cfg.OutDir)
	s.setString("previewer", fc.Previewer, &cfg.Previewer)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setFloat("scale", fc.Scale, &cfg.Scale)
	s.setFloat("clip", fc.Clip, &cfg.Clip)
	s.setFloatPtr("lightness", fc.Lightness, &cfg.Lightness)
	s.setFloat("tev-scale", fc.TevScale, &cfg.TevScale)
	s.setFloat("tev-clip", fc.TevClip, &cfg.TevClip)

	s.setInt("workers", fc.Workers, &cfg.Workers)
	s.setInt("dial-attempts", fc.DialAttempts, &cfg.DialAttempts)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
