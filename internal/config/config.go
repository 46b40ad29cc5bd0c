// Package config loads the optional TOML configuration file. Command-line
// flags are applied on top of it by the commands package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/penwyp/go-health-dashboard/internal/util"
)

// Source kinds
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
)

type Config struct {
	Source  SourceConfig  `toml:"source"`
	Display DisplayConfig `toml:"display"`
	Watch   WatchConfig   `toml:"watch"`
	Session SessionConfig `toml:"session"`
	Log     LogConfig     `toml:"log"`
}

type SourceConfig struct {
	Kind        string `toml:"kind"`
	Dir         string `toml:"dir"`
	DBPath      string `toml:"db_path"`
	Concurrency int    `toml:"concurrency"`
}

type DisplayConfig struct {
	Timezone string `toml:"timezone"`
	Format   string `toml:"format"`
	Color    bool   `toml:"color"`
}

type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

type SessionConfig struct {
	DoctorID string `toml:"doctor_id"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
	JSON  bool   `toml:"json"`
}

// Debounce returns the watch debounce as a duration.
func (c WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

type LoadResult struct {
	Config   Config
	Warnings []string
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() Config {
	return Config{
		Source: SourceConfig{
			Kind:        SourceFile,
			Dir:         defaultDataDir(),
			DBPath:      defaultDBPath(),
			Concurrency: 8,
		},
		Display: DisplayConfig{
			Timezone: "Local",
			Format:   "table",
			Color:    true,
		},
		Watch: WatchConfig{
			DebounceMS: 300,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "go-health-dashboard")
}

// DefaultPath is where Load looks for the config file.
func DefaultPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

func defaultDataDir() string {
	dir := configDir()
	if dir == "" {
		return "data"
	}
	return filepath.Join(dir, "data")
}

func defaultDBPath() string {
	dir := configDir()
	if dir == "" {
		return "health.db"
	}
	return filepath.Join(dir, "health.db")
}

func Load() (*LoadResult, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads path over the defaults. A missing file is not an error.
// Keys the file sets but this version does not know are returned as
// warnings.
func LoadFrom(path string) (*LoadResult, error) {
	result := &LoadResult{Config: DefaultConfig()}
	if path == "" {
		return result, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	md, err := toml.Decode(string(data), &result.Config)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	for _, key := range md.Undecoded() {
		result.Warnings = append(result.Warnings, fmt.Sprintf("unknown config key: %q", key.String()))
	}

	result.Config.Source.Dir = expandHome(result.Config.Source.Dir)
	result.Config.Source.DBPath = expandHome(result.Config.Source.DBPath)

	if err := result.Config.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// Validate checks the merged settings. It is run again after flags are
// applied.
func (c *Config) Validate() error {
	var errs []string

	switch c.Source.Kind {
	case SourceFile:
		if c.Source.Dir == "" {
			errs = append(errs, "source dir must be set for the file source")
		}
	case SourceSQLite:
		if c.Source.DBPath == "" {
			errs = append(errs, "source db_path must be set for the sqlite source")
		}
	default:
		errs = append(errs, fmt.Sprintf("source kind must be %q or %q, got %q", SourceFile, SourceSQLite, c.Source.Kind))
	}
	if c.Source.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("source concurrency must be positive, got %d", c.Source.Concurrency))
	}

	switch strings.ToLower(c.Display.Format) {
	case "table", "csv", "json":
	default:
		errs = append(errs, fmt.Sprintf("display format must be table, csv or json, got %q", c.Display.Format))
	}
	if _, err := util.LoadLocation(c.Display.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("display timezone %q is not a known zone", c.Display.Timezone))
	}

	if c.Watch.DebounceMS < 0 {
		errs = append(errs, fmt.Sprintf("watch debounce_ms must not be negative, got %d", c.Watch.DebounceMS))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		errs = append(errs, fmt.Sprintf("log level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
