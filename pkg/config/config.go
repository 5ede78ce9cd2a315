// Package config handles configuration for applications embedding the graph
// library.
//
// Configuration is loaded from an optional YAML file and then overridden by
// RGR_* environment variables, so deployments can ship a base file and adjust
// per-environment without editing it.
//
// Example:
//
//	cfg, err := config.Load("rgr.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	g, err := graph.Open(graph.Options{
//		DataDir:    cfg.Store.DataDir,
//		Namespace:  cfg.Store.Namespace,
//		SyncWrites: cfg.Store.SyncWrites,
//	})
//
// Environment variables:
//   - RGR_DATA_DIR: store data directory
//   - RGR_NAMESPACE: graph namespace (key prefix)
//   - RGR_IN_MEMORY: "true" runs the store in memory-only mode
//   - RGR_SYNC_WRITES: "true" forces fsync after each commit
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for an embedding application.
type Config struct {
	Store StoreConfig `yaml:"store"`
}

// StoreConfig configures the underlying key-value store and namespace.
type StoreConfig struct {
	// DataDir is the directory for store data files.
	DataDir string `yaml:"data_dir"`

	// Namespace is the key prefix isolating this graph's data.
	Namespace string `yaml:"namespace"`

	// InMemory runs the store without persistence. Testing only.
	InMemory bool `yaml:"in_memory"`

	// SyncWrites forces fsync after each commit.
	SyncWrites bool `yaml:"sync_writes"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Store: StoreConfig{
			DataDir:   "./data",
			Namespace: "rgr",
		},
	}
}

// Load reads a YAML config file, applies environment overrides and validates
// the result. An empty path skips the file and uses defaults plus
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from RGR_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("RGR_DATA_DIR"); v != "" {
		c.Store.DataDir = v
	}
	if v := os.Getenv("RGR_NAMESPACE"); v != "" {
		c.Store.Namespace = v
	}
	if v := os.Getenv("RGR_IN_MEMORY"); v != "" {
		c.Store.InMemory = parseBool(v, c.Store.InMemory)
	}
	if v := os.Getenv("RGR_SYNC_WRITES"); v != "" {
		c.Store.SyncWrites = parseBool(v, c.Store.SyncWrites)
	}
}

// Validate reports configurations that cannot be opened.
func (c Config) Validate() error {
	if c.Store.DataDir == "" && !c.Store.InMemory {
		return fmt.Errorf("store.data_dir is required unless store.in_memory is set")
	}
	if c.Store.Namespace == "" {
		return fmt.Errorf("store.namespace must not be empty")
	}
	return nil
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return b
}
