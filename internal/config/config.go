// Package config loads checklist settings from an optional TOML file and
// environment variables.
//
// Sources, lowest to highest priority:
//  1. Defaults
//  2. Config file ($CHECKLIST_CONFIG or <UserConfigDir>/checklist/config.toml)
//  3. Environment variables
//  4. CLI flags (applied by the caller after Load)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const appName = "checklist"

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds every user-tunable setting.
type Config struct {
	// DataDir is where the item store lives. The file name inside it is fixed.
	DataDir string `toml:"data_dir"`

	// Backend selects the durable store: "sqlite" (default) or "json".
	Backend string `toml:"backend"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFormat is one of text, json, logfmt.
	LogFormat string `toml:"log_format"`

	// Theme is one of classic, neon, mono.
	Theme string `toml:"theme"`

	// AutosaveSeconds flushes pending changes periodically while the TUI
	// runs. Zero disables the timer; focus loss and quit still save.
	AutosaveSeconds int `toml:"autosave_seconds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:   defaultDataDir(),
		Backend:   BackendSQLite,
		LogLevel:  "info",
		LogFormat: "text",
		Theme:     "classic",
	}
}

// Load builds a Config from defaults, the config file at path (or the
// default location when path is empty) and the environment.
// A missing file at the default location is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = getEnv("CHECKLIST_CONFIG", defaultConfigPath())
		explicit = os.Getenv("CHECKLIST_CONFIG") != ""
	}
	if path != "" {
		if err := loadFile(&cfg, path, explicit); err != nil {
			return Config{}, err
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir is empty"))
	}
	switch c.Backend {
	case BackendSQLite, BackendJSON:
	default:
		errs = append(errs, fmt.Errorf("backend %q: must be %s or %s", c.Backend, BackendSQLite, BackendJSON))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: must be debug, info, warn or error", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json", "logfmt":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: must be text, json or logfmt", c.LogFormat))
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		errs = append(errs, fmt.Errorf("theme %q: must be classic, neon or mono", c.Theme))
	}
	if c.AutosaveSeconds < 0 {
		errs = append(errs, fmt.Errorf("autosave_seconds %d: must not be negative", c.AutosaveSeconds))
	}
	return errors.Join(errs...)
}

func loadFile(cfg *Config, path string, required bool) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("loading config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func loadEnv(cfg *Config) error {
	cfg.DataDir = getEnv("CHECKLIST_DATA_DIR", cfg.DataDir)
	cfg.Backend = getEnv("CHECKLIST_BACKEND", cfg.Backend)
	cfg.LogLevel = getEnv("CHECKLIST_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("CHECKLIST_LOG_FORMAT", cfg.LogFormat)
	cfg.Theme = getEnv("CHECKLIST_THEME", cfg.Theme)
	if v := os.Getenv("CHECKLIST_AUTOSAVE_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CHECKLIST_AUTOSAVE_SECONDS: %w", err)
		}
		cfg.AutosaveSeconds = n
	}
	return nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appName, "config.toml")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "."+appName)
	}
	return "."
}
