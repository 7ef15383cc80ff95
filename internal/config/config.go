package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEntries is the canonical virtual-environment skeleton pruned when
// the config names a base_dir but no explicit entries.
var DefaultEntries = []string{"Include", "Lib", "Scripts", "pyvenv.cfg"}

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"`
}

type LoggingCfg struct {
	RotationDays int `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type Config struct {
	BaseDir         string        `yaml:"base_dir" json:"base_dir"`                 // Directory the relative entries live under
	Entries         []string      `yaml:"entries" json:"entries"`                   // Entry names resolved against base_dir
	Targets         []string      `yaml:"targets" json:"targets"`                   // Additional absolute paths to prune
	IntervalMinutes int           `yaml:"interval_minutes" json:"interval_minutes"` // Re-run interval for watch mode
	Prometheus      PrometheusCfg `yaml:"prometheus" json:"prometheus"`
	Logging         LoggingCfg    `yaml:"logging" json:"logging"`
	DatabasePath    string        `yaml:"database_path" json:"database_path"`     // SQLite database for prune history
	ProtectedPaths  []string      `yaml:"protected_paths" json:"protected_paths"` // Extra paths the validator must never touch
}

var (
	errNoTargets       = errors.New("configuration must specify base_dir or targets")
	errInvalidPath     = errors.New("path must be absolute")
	errInvalidEntry    = errors.New("entry must be a bare name without separators")
	errInvalidInterval = errors.New("interval_minutes cannot be negative")
)

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.BaseDir == "" && len(c.Targets) == 0 {
		return errNoTargets
	}

	if c.IntervalMinutes < 0 {
		return errInvalidInterval
	}
	if c.IntervalMinutes == 0 {
		c.IntervalMinutes = 15
	}

	if c.Prometheus.Port == 0 {
		c.Prometheus.Port = 9090
	}

	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.DatabasePath == "" {
		c.DatabasePath = "/var/lib/pathprune/history.db"
	}

	if c.BaseDir != "" {
		cp, err := cleanAbsolute(c.BaseDir)
		if err != nil {
			return err
		}
		c.BaseDir = cp

		if len(c.Entries) == 0 {
			c.Entries = append([]string(nil), DefaultEntries...)
		}
		for _, e := range c.Entries {
			if err := validateEntry(e); err != nil {
				return err
			}
		}
	} else if len(c.Entries) > 0 {
		return fmt.Errorf("entries require base_dir: %w", errNoTargets)
	}

	cleaned := make([]string, 0, len(c.Targets))
	for _, t := range c.Targets {
		cp, err := cleanAbsolute(t)
		if err != nil {
			return err
		}
		cleaned = append(cleaned, cp)
	}
	c.Targets = cleaned

	return nil
}

func validateEntry(e string) error {
	if strings.TrimSpace(e) == "" || e == "." || e == ".." {
		return fmt.Errorf("%w: %q", errInvalidEntry, e)
	}
	if strings.ContainsRune(e, '/') || strings.ContainsRune(e, os.PathSeparator) {
		return fmt.Errorf("%w: %q", errInvalidEntry, e)
	}
	return nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

// PrunePaths resolves the ordered list of absolute paths one run attempts:
// base_dir entries first, then explicit targets. Order is stable per run.
func (c *Config) PrunePaths() []string {
	paths := make([]string, 0, len(c.Entries)+len(c.Targets))
	if c.BaseDir != "" {
		for _, e := range c.Entries {
			paths = append(paths, filepath.Join(c.BaseDir, e))
		}
	}
	paths = append(paths, c.Targets...)
	return paths
}

// AllowedRoots returns the roots the safety validator may delete under.
func (c *Config) AllowedRoots() []string {
	roots := make([]string, 0, len(c.Targets)+1)
	if c.BaseDir != "" {
		roots = append(roots, c.BaseDir)
	}
	roots = append(roots, c.Targets...)
	return roots
}

func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
