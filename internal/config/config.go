package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/archivewatch/internal/pathgate"
)

// Config is the top-level archivewatch configuration.
type Config struct {
	WatchPaths []string `mapstructure:"watch_paths"`
	ArchiveDir string   `mapstructure:"-"`
	Extensions []string `mapstructure:"extensions"`
	Interval   string   `mapstructure:"interval"`
	Output     Output   `mapstructure:"output"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// provisionOnly expands and resolves without requiring the path to exist.
var provisionOnly = pathgate.Options{SkipExistenceCheck: true}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Path-valued keys are
// provisioned through the path gate.
func Load(cfgFile string) (*Config, error) {
	gate := pathgate.New()

	v := viper.New()

	v.SetDefault("watch_paths", DefaultWatchPaths)
	v.SetDefault("archive_dir", DefaultArchiveDir)
	v.SetDefault("extensions", DefaultExtensions)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		p, err := gate.Provision(pathgate.Raw(cfgFile), provisionOnly)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(p.String())
	} else {
		v.SetConfigFile(filepath.Join(ConfigDir(), DefaultConfigFile))
	}

	// Missing config file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// archive_dir is read raw so a non-string value is caught at the boundary.
	in, err := pathgate.FromAny(v.Get("archive_dir"))
	if err != nil {
		return nil, fmt.Errorf("archive_dir: %w", err)
	}
	archiveDir, err := gate.Provision(in, provisionOnly)
	if err != nil {
		return nil, fmt.Errorf("archive_dir: %w", err)
	}
	cfg.ArchiveDir = archiveDir.String()

	watchPaths := make([]string, 0, len(cfg.WatchPaths))
	for i, p := range cfg.WatchPaths {
		wp, err := gate.Provision(pathgate.Raw(p), provisionOnly)
		if err != nil {
			return nil, fmt.Errorf("watch_paths[%d]: %w", i, err)
		}
		watchPaths = append(watchPaths, wp.String())
	}
	cfg.WatchPaths = watchPaths

	cfg.Extensions = NormalizeExtensions(cfg.Extensions)

	if _, err := cfg.IntervalDuration(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IntervalDuration parses the configured scan interval.
func (c *Config) IntervalDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}
	return d, nil
}

// NormalizeExtensions lower-cases entries, drops a leading dot and removes
// blanks and duplicates, preserving order.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e == "" || seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

// Gate returns a path gate using the configured extension allow-list.
func (c *Config) Gate() *pathgate.Gate {
	return pathgate.New(pathgate.WithExtensions(c.Extensions))
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	p, err := pathgate.New().Provision(pathgate.Raw(DefaultConfigDir), pathgate.Options{
		SkipResolve:        true,
		SkipExistenceCheck: true,
	})
	if err != nil {
		return DefaultConfigDir
	}
	return p.String()
}
