// Package config loads the settings of the controlpath command.
//
// Values are layered: defaults, then an optional TOML file, then
// CONTROLPATH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/pedia/controlpath"
)

// Config holds the command settings.
type Config struct {
	// Root is the directory holding the handler modules.
	Root string `toml:"root" env:"CONTROLPATH_ROOT"`

	// Namespace prefixes handler type names.
	Namespace string `toml:"namespace" env:"CONTROLPATH_NAMESPACE"`

	// Addr is the HTTP listen address.
	Addr string `toml:"addr" env:"CONTROLPATH_ADDR"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level" env:"CONTROLPATH_LOG_LEVEL"`

	// Inject holds default string injections, "key:value,key:value" in the
	// environment.
	Inject map[string]string `toml:"inject" env:"CONTROLPATH_INJECT"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Root:      ".",
		Namespace: controlpath.DefaultNamespace,
		Addr:      ":8080",
		LogLevel:  "info",
	}
}

// Load returns the defaults overlaid with the TOML file at path, if any,
// and with the environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Level maps LogLevel to a slog level. Unknown values mean info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Injections converts Inject for controlpath.Options.
func (c Config) Injections() controlpath.Injections {
	if len(c.Inject) == 0 {
		return nil
	}

	inj := make(controlpath.Injections, len(c.Inject))
	for k, v := range c.Inject {
		inj[k] = v
	}
	return inj
}
