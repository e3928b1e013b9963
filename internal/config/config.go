// Package config loads .sitecpm.yaml, the per-site settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/sitecpm/internal/cpm"
	"github.com/joshharrison/sitecpm/internal/schedule"
)

// DefaultPath is where the CLI looks for a config file when --config is unset.
const DefaultPath = ".sitecpm.yaml"

// SourceConfig selects where the schedule comes from. Command wins over Path.
type SourceConfig struct {
	Path    string   `yaml:"path,omitempty"`
	Query   string   `yaml:"query,omitempty"`
	Command []string `yaml:"command,omitempty"`
}

// Config models .sitecpm.yaml.
type Config struct {
	Project           schedule.Project `yaml:"project"`
	Source            SourceConfig     `yaml:"source"`
	CriticalTolerance *float64         `yaml:"critical_tolerance,omitempty"`
}

// Load reads path. A missing file yields an empty config, so flags alone are
// enough to run.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks values the engine would otherwise reject late.
func (c *Config) Validate() error {
	if tol := c.CriticalTolerance; tol != nil {
		if math.IsNaN(*tol) || math.IsInf(*tol, 0) || *tol < 0 {
			return fmt.Errorf("%w: %v", cpm.ErrInvalidTolerance, *tol)
		}
	}
	return nil
}

// Tolerance returns the configured critical tolerance or the engine default.
func (c *Config) Tolerance() float64 {
	if c.CriticalTolerance == nil {
		return cpm.DefaultCriticalTolerance
	}
	return *c.CriticalTolerance
}

// NewSource builds the schedule source described by the config.
func (c *Config) NewSource() (schedule.Source, error) {
	switch {
	case len(c.Source.Command) > 0:
		return schedule.CommandSource{
			Bin:   c.Source.Command[0],
			Args:  c.Source.Command[1:],
			Query: c.Source.Query,
		}, nil
	case c.Source.Path != "":
		return schedule.FileSource{Path: c.Source.Path, Query: c.Source.Query}, nil
	default:
		return nil, errors.New("config: no schedule source (set source.path or source.command)")
	}
}
