// Package config loads harness settings from CAPTIVE_ environment
// variables, with the command line overriding on top. Only non-secret
// settings live here; key material goes to the key store.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v11"
)

// Config holds the harness settings.
type Config struct {
	// Port the content server listens on.
	Port int `env:"PORT" envDefault:"8001"`
	// Directories of web content, in resolution order. The built-in
	// library is always appended after them.
	Directories []string `env:"DIRECTORIES" envSeparator:":"`
	// Storage is the sandboxed directory for the write command and the
	// file-backed key store. Defaults under the XDG data home.
	Storage string `env:"STORAGE"`
	// KeyringService namespaces the key store entries.
	KeyringService string `env:"KEYRING_SERVICE" envDefault:"captive-web-view"`
	// LoadVisibilityTimeout is the page-side load timer, in seconds.
	LoadVisibilityTimeout int `env:"LOAD_VISIBILITY_TIMEOUT" envDefault:"10"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads the environment and fills in defaults.
func Load() (Config, error) {
	var loaded Config
	if err := env.ParseWithOptions(&loaded, env.Options{Prefix: "CAPTIVE_"}); err != nil {
		return loaded, fmt.Errorf("configuration didn't parse: %w", err)
	}
	if loaded.Storage == "" {
		loaded.Storage = filepath.Join(xdg.DataHome, "captive-web-view")
	}
	return loaded, nil
}
