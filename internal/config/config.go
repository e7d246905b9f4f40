// Package config handles loading application configuration from a YAML file
// with environment variable overrides.
//
// Config file format (nxt-albums.yaml):
//
//	listen_addr: ":8080"
//	albums_dir: "/srv/comics"
//	resize_width: 800
//	log_level: "info"
//	listing_workers: 8
//	read_timeout: "30s"
//	write_timeout: "2m"
//
// Configuration sources, in increasing priority order:
//  1. Built-in defaults
//  2. YAML config file (located by FindConfigFile or explicit path)
//  3. Environment variables (LISTEN_ADDR, ALBUMS_DIR, RESIZE_WIDTH,
//     LOG_LEVEL, LISTING_WORKERS, READ_TIMEOUT, WRITE_TIMEOUT)
//  4. Command-line flags, applied by the cli package
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// ListenAddr is the TCP address for the HTTP server (e.g. ":8080").
	ListenAddr string `yaml:"listen_addr" validate:"required"`

	// AlbumsDir is the root of the album tree. Every request path is
	// resolved below it.
	AlbumsDir string `yaml:"albums_dir" validate:"required,dir"`

	// ResizeWidth is the width in pixels of pages served with resize=1.
	ResizeWidth int `yaml:"resize_width" validate:"min=16,max=10000"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// ListingWorkers bounds concurrent classification in browse listings.
	ListingWorkers int `yaml:"listing_workers" validate:"min=1,max=256"`

	// ReadTimeoutStr and WriteTimeoutStr are duration strings ("30s", "2m").
	// Parsed into ReadTimeout / WriteTimeout by Load(); "0" disables.
	ReadTimeoutStr  string `yaml:"read_timeout"`
	WriteTimeoutStr string `yaml:"write_timeout"`

	// ReadTimeout and WriteTimeout are the parsed HTTP server timeouts.
	ReadTimeout  time.Duration `yaml:"-"`
	WriteTimeout time.Duration `yaml:"-"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		AlbumsDir:       ".",
		ResizeWidth:     800,
		LogLevel:        "info",
		ListingWorkers:  8,
		ReadTimeoutStr:  "30s",
		WriteTimeoutStr: "2m",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    2 * time.Minute,
	}
}

// Load reads configuration from the YAML file at path (if non-empty), then
// applies environment variable overrides on top. Returns the merged Config.
// If path is empty, only defaults and environment variables are applied.
// Load does not validate; call Validate once all overrides are in.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	// Environment variables always override file values so that Docker /
	// systemd overrides still work even when a config file is present.
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ALBUMS_DIR"); v != "" {
		cfg.AlbumsDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("RESIZE_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse RESIZE_WIDTH %q: %w", v, err)
		}
		cfg.ResizeWidth = n
	}
	if v := os.Getenv("LISTING_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse LISTING_WORKERS %q: %w", v, err)
		}
		cfg.ListingWorkers = n
	}
	if v := os.Getenv("READ_TIMEOUT"); v != "" {
		cfg.ReadTimeoutStr = v
	}
	if v := os.Getenv("WRITE_TIMEOUT"); v != "" {
		cfg.WriteTimeoutStr = v
	}

	var err error
	if cfg.ReadTimeout, err = parseTimeout(cfg.ReadTimeoutStr); err != nil {
		return cfg, fmt.Errorf("read_timeout: %w", err)
	}
	if cfg.WriteTimeout, err = parseTimeout(cfg.WriteTimeoutStr); err != nil {
		return cfg, fmt.Errorf("write_timeout: %w", err)
	}

	return cfg, nil
}

// parseTimeout parses a duration string. An empty string or "0" disables
// the timeout.
func parseTimeout(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct constraints and reports every
// violated field in one error.
func (cfg Config) Validate() error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// FindConfigFile returns the path to the first config file found in the
// standard search order, or "" if none is found.
//
// Search order:
//  1. NXT_ALBUMS_CONFIG environment variable (explicit override)
//  2. ./nxt-albums.yaml (current working directory)
//  3. ~/.config/nxt-albums/config.yaml (XDG user config)
func FindConfigFile() string {
	if p := os.Getenv("NXT_ALBUMS_CONFIG"); p != "" {
		return p
	}

	if _, err := os.Stat("nxt-albums.yaml"); err == nil {
		return "nxt-albums.yaml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "nxt-albums", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
