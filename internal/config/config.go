package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file looked up from the working directory.
const FileName = "dbsweep.toml"

// Defaults holds run parameter defaults applied when a flag is not given.
type Defaults struct {
	RevisionDays int `toml:"revision_days"`
}

// EnvironmentConfig describes a single named environment from dbsweep.toml.
type EnvironmentConfig struct {
	Description string `toml:"description"`
	DatabaseURL string `toml:"database_url"`
	TablePrefix string `toml:"table_prefix"`
	Schema      string `toml:"schema"`
}

type Config struct {
	DefaultEnvironment string                       `toml:"default_environment"`
	Defaults           Defaults                     `toml:"defaults"`
	Environments       map[string]EnvironmentConfig `toml:"environments"`
	ConfigFilePath     string                       `toml:"-"`

	configDir  string
	projectDir string
}

// ErrNotFound is returned by Load when no dbsweep.toml exists between the
// start directory and the project root.
var ErrNotFound = errors.New(FileName + " not found")

// LoadConfig loads dbsweep.toml starting from the working directory. A
// missing file yields an empty Config.
func LoadConfig() (*Config, error) {
	startDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := Load(startDir)
	if errors.Is(err, ErrNotFound) {
		return &Config{projectDir: findProjectRoot(startDir)}, nil
	}
	return cfg, err
}

// Load walks up from startDir looking for dbsweep.toml, stopping at the
// first project root marker. The file is decoded and validated.
func Load(startDir string) (*Config, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, FileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			cfg, err := ReadFile(configPath)
			if err != nil {
				return nil, err
			}
			cfg.projectDir = findProjectRoot(dir)
			return cfg, nil
		}

		// Check if we've reached a project boundary
		if isProjectRoot(dir) {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return nil, ErrNotFound
}

// ReadFile decodes and validates one configuration file.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.ConfigFilePath = path
	cfg.configDir = filepath.Dir(path)
	return &cfg, nil
}

// ConfigDir is the directory holding the loaded file, or "" when none was
// loaded.
func (c *Config) ConfigDir() string {
	if c == nil {
		return ""
	}
	return c.configDir
}

// ProjectDir is the nearest project root at or above the config directory.
func (c *Config) ProjectDir() string {
	if c == nil {
		return ""
	}
	return c.projectDir
}

// RevisionDays returns the configured default retention window, or fallback
// when none is configured.
func (c *Config) RevisionDays(fallback int) int {
	if c == nil || c.Defaults.RevisionDays <= 0 {
		return fallback
	}
	return c.Defaults.RevisionDays
}

func findProjectRoot(dir string) string {
	for {
		if isProjectRoot(dir) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// isProjectRoot checks if the directory is a project root based on common markers
func isProjectRoot(dir string) bool {
	for _, marker := range []string{".git", "go.mod", "package.json"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
