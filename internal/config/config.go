// Package config loads build-time and runtime settings — contract
// verification mode, worker-pool size, module search paths — from a YAML
// file, the format the teacher already reaches for outside its TOML
// package manifest.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the conventional project config file searched for in the
// current directory when no explicit --config path is given.
const FileName = "ariac.yaml"

// Config holds settings that apply across ariac subcommands.
type Config struct {
	// Verify is the default contract verification mode: off, debug,
	// release, or force-all. A --verify flag on the command line wins
	// over this when both are present.
	Verify string `yaml:"verify"`

	// WorkerPoolSize bounds the structured-concurrency thread pool used
	// to run spawned tasks. Zero means use the runtime default
	// (GOMAXPROCS).
	WorkerPoolSize int `yaml:"worker_pool_size"`

	// SearchPaths are extra module search roots, appended after the
	// project root and stdlib path when resolving imports.
	SearchPaths []string `yaml:"search_paths"`
}

// Default returns the configuration used when no config file is found.
func Default() *Config {
	return &Config{
		Verify:         "off",
		WorkerPoolSize: 0,
		SearchPaths:    nil,
	}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromDir looks for FileName in dir and loads it, returning Default()
// unmodified (with no error) when the file does not exist.
func LoadFromDir(dir string) (*Config, error) {
	path := dir + string(os.PathSeparator) + FileName
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
