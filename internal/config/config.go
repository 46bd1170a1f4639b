// Package config provides configuration loading and structs for the searchhi server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/searchhi/internal/highlight"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Content   ContentConfig   `yaml:"content"`
	Highlight HighlightConfig `yaml:"highlight"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ContentConfig holds the served page directory and its watch settings.
type ContentConfig struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
	Watch      *bool    `yaml:"watch"`
	Recursive  *bool    `yaml:"recursive"`
}

// WatchOrDefault returns whether to watch the content root; defaults to true when unset.
func (c *ContentConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (c *ContentConfig) RecursiveOrDefault() bool {
	if c.Recursive != nil {
		return *c.Recursive
	}
	return true
}

// HighlightConfig holds term extraction and marker settings.
type HighlightConfig struct {
	SearchableClass string   `yaml:"searchable_class"`
	ClassPrefix     string   `yaml:"class_prefix"`
	ClassCycle      int      `yaml:"class_cycle"`
	ExcludedTags    []string `yaml:"excluded_tags"`
	QueryParams     []string `yaml:"query_params"`
	MinTermLength   int      `yaml:"min_term_length"`
	MaxTerms        int      `yaml:"max_terms"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if _, err := highlight.CompileExclusions(cfg.Highlight.ExcludedTags); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Content.Root = expandPath(cfg.Content.Root, filepath.Dir(path))

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
