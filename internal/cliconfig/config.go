package cliconfig

import (
	"fmt"
	"runtime"
	"strconv"
)

// DefaultPreviewer is the viewer executable launched by the tev command.
const DefaultPreviewer = "tev"

// Config holds CLI configuration for ptflview.
type Config struct {
	ConfigPath string
	OutDir     string
	Previewer  string

	// Output rendering defaults.
	Scale     float64
	Clip      float64
	Lightness float64

	// Rendering used for images sent to the previewer.
	TevScale float64
	TevClip  float64

	Workers      int
	DialAttempts int
	LogLevel     string
	NoPrompt     bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutDir:       ".",
		Previewer:    DefaultPreviewer,
		Scale:        1000,
		Clip:         2,
		Lightness:    50,
		TevScale:     1000,
		TevClip:      2,
		Workers:      runtime.NumCPU(),
		DialAttempts: 3,
		LogLevel:     "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.OutDir == "" {
		c.OutDir = "."
	}
	if c.Previewer == "" {
		c.Previewer = DefaultPreviewer
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.DialAttempts <= 0 {
		c.DialAttempts = 1
	}

	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive")
	}
	if c.Clip <= 0 {
		return fmt.Errorf("clip must be positive")
	}
	if c.TevScale <= 0 || c.TevClip <= 0 {
		return fmt.Errorf("tev scale and clip must be positive")
	}
	if c.Lightness < 0 || c.Lightness > 100 {
		return fmt.Errorf("lightness must be within 0..100")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloatPtr sets a float64 value if present and flag not changed. Zero
// and negative values are applied; Validate checks their range.
func (s *configSetter) setFloatPtr(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses an environment value and sets dst if positive.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses an environment value and sets dst if positive.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setAnyFloatFromString parses an environment value and sets dst whatever
// its sign; Validate checks the range.
func (s *configSetter) setAnyFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}
