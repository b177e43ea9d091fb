// Package config provides functionality for managing configuration options
// for the application using a JSON config file and environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// BaseURL is the backend server address.
	BaseURL string `json:"base_url"`

	// Timeout bounds ordinary backend requests. Translation carries its own
	// longer deadline inside the gateway.
	Timeout time.Duration `json:"-"`

	// TimeoutSeconds is the file representation of Timeout.
	TimeoutSeconds int `json:"timeout_seconds"`

	// Language is the default display language code.
	Language string `json:"language"`

	// ConfigDir holds the session store and local history cache.
	ConfigDir string `json:"-"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose"`
}

// Load builds the configuration: defaults, then the JSON config file under
// the config dir, then LEAFLENS_* environment variables. A .env file in the
// working directory is folded into the environment first. Later sources win.
func Load() (*Options, error) {
	// Optional .env in the working directory, the backend repo ships one.
	_ = godotenv.Load()

	dir := os.Getenv("LEAFLENS_CONFIG_DIR")
	if dir == "" {
		var err error
		if dir, err = defaultConfigDir(); err != nil {
			return nil, err
		}
	}

	opts := &Options{
		BaseURL:        "http://localhost:5000",
		TimeoutSeconds: 5,
		Language:       "en",
		ConfigDir:      dir,
	}

	path := filepath.Join(dir, "config.json")
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, opts); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if v := os.Getenv("LEAFLENS_BASE_URL"); v != "" {
		opts.BaseURL = v
	}
	if v := os.Getenv("LEAFLENS_LANGUAGE"); v != "" {
		opts.Language = v
	}
	if os.Getenv("LEAFLENS_VERBOSE") != "" {
		opts.Verbose = true
	}

	if opts.TimeoutSeconds <= 0 {
		opts.TimeoutSeconds = 5
	}
	opts.Timeout = time.Duration(opts.TimeoutSeconds) * time.Second

	if err := os.MkdirAll(opts.ConfigDir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	return opts, nil
}

func defaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "leaflens"), nil
}
