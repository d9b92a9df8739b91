// Package config loads the lispc driver configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/arc-language/lisp-compiler/compiler"
)

// Config is the on-disk driver configuration.
type Config struct {
	Module       string   `toml:"module"`
	Output       string   `toml:"output"`
	LogLevel     string   `toml:"log_level"`
	Preludes     []string `toml:"preludes"`
	TraceSymbols []string `toml:"trace_symbols"`
	Locals       []Local  `toml:"locals"`

	// Dir is the directory of the loaded file; relative paths resolve against it.
	Dir string `toml:"-"`
}

// Local declares a storage slot of the driver's synthetic main function.
type Local struct {
	Name     string `toml:"name"`
	Category string `toml:"category"`
}

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, defaults and validates a TOML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	cfg.Dir = filepath.Dir(abs)

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Module) == "" {
		cfg.Module = "main"
	}
	if strings.TrimSpace(cfg.Output) == "" {
		cfg.Output = cfg.Module + ".ir"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
}

// Validate checks field values after defaults are applied.
func Validate(cfg *Config) error {
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("config: unknown log_level %q", cfg.LogLevel)
	}

	seen := make(map[string]bool, len(cfg.Locals))
	for i, l := range cfg.Locals {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("config: locals[%d]: name is required", i)
		}
		if seen[l.Name] {
			return fmt.Errorf("config: locals[%d]: duplicate name %q", i, l.Name)
		}
		seen[l.Name] = true
		if _, err := compiler.ParseCategory(l.Category); err != nil {
			return fmt.Errorf("config: locals[%d] %q: %w", i, l.Name, err)
		}
	}

	for i, p := range cfg.TraceSymbols {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("config: trace_symbols[%d] is empty", i)
		}
	}
	return nil
}

// Resolve returns p relative to the config file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}
