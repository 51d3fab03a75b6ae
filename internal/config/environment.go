package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dbsweep/dbsweep/internal/database"
)

const defaultEnvironmentName = "local"

// ResolvedEnvironment represents a fully-resolved environment with concrete values.
type ResolvedEnvironment struct {
	Name        string
	DatabaseURL string
	TablePrefix string
	Schema      string
	DotenvPath  string
	FromConfig  bool
	FromDotenv  bool
}

// ConnectionConfig converts the environment into driver connection settings.
func (r *ResolvedEnvironment) ConnectionConfig() (database.ConnectionConfig, error) {
	return database.NewConnectionConfig(r.DatabaseURL, r.Schema, r.TablePrefix)
}

// ResolveEnvironment resolves a named environment into concrete connection
// settings. Values from .env.<name> take precedence over dbsweep.toml. An
// empty name selects default_environment, then "local".
func ResolveEnvironment(config *Config, name string) (*ResolvedEnvironment, error) {
	return resolve(config, name, "")
}

// ResolveEnvironmentWithURL resolves like ResolveEnvironment, but a non-empty
// databaseURL replaces whatever the environment configures and the
// environment need not be defined.
func ResolveEnvironmentWithURL(config *Config, name, databaseURL string) (*ResolvedEnvironment, error) {
	return resolve(config, name, strings.TrimSpace(databaseURL))
}

func resolve(config *Config, name, databaseURL string) (*ResolvedEnvironment, error) {
	envName := strings.TrimSpace(name)
	if envName == "" {
		if config != nil && config.DefaultEnvironment != "" {
			envName = config.DefaultEnvironment
		} else {
			envName = defaultEnvironmentName
		}
	}

	var (
		envConfig EnvironmentConfig
		envExists bool
	)
	if config != nil && config.Environments != nil {
		envConfig, envExists = config.Environments[envName]
	}

	resolved := &ResolvedEnvironment{
		Name:        envName,
		DatabaseURL: envConfig.DatabaseURL,
		TablePrefix: envConfig.TablePrefix,
		Schema:      envConfig.Schema,
		FromConfig:  envExists,
	}

	dotenvPath, err := findDotenv(config, envName)
	if err != nil {
		return nil, err
	}
	resolved.DotenvPath = dotenvPath

	if info, err := os.Stat(dotenvPath); err == nil && !info.IsDir() {
		values, err := godotenv.Read(dotenvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
		}
		resolved.FromDotenv = true
		applyDotenv(resolved, values)
	}

	if databaseURL != "" {
		resolved.DatabaseURL = databaseURL
	} else if config != nil && len(config.Environments) > 0 && !envExists && !resolved.FromDotenv {
		return nil, fmt.Errorf("environment %q not defined in %s and %s not found", envName, FileName, dotenvPath)
	}
	if resolved.DatabaseURL == "" {
		return nil, fmt.Errorf("no database configured for environment %q: set database_url in %s, DATABASE_URL in %s, or pass --database-url",
			envName, FileName, filepath.Base(dotenvPath))
	}

	// The schema rejects an empty table_prefix, so "" here always means unset.
	if resolved.TablePrefix == "" {
		resolved.TablePrefix = database.DefaultTablePrefix
	}
	if resolved.Schema == "" {
		resolved.Schema = database.DefaultSchema
	}
	return resolved, nil
}

// findDotenv returns the .env.<name> path next to the config file, falling
// back to the project root when only that one exists.
func findDotenv(config *Config, envName string) (string, error) {
	fileName := ".env." + envName

	baseDir := config.ConfigDir()
	projectDir := config.ProjectDir()
	if baseDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fileName, nil
		}
		baseDir = cwd
	}

	path := filepath.Join(baseDir, fileName)
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to access %s: %w", path, err)
		}
		if projectDir != "" && projectDir != baseDir {
			alt := filepath.Join(projectDir, fileName)
			if info, err := os.Stat(alt); err == nil && !info.IsDir() {
				return alt, nil
			}
		}
	}
	return path, nil
}

func applyDotenv(resolved *ResolvedEnvironment, values map[string]string) {
	// Check for generic DATABASE_URL first, then database-specific variables
	switch {
	case values["DATABASE_URL"] != "":
		resolved.DatabaseURL = values["DATABASE_URL"]
	case values["POSTGRES_URL"] != "":
		resolved.DatabaseURL = values["POSTGRES_URL"]
	case values["SQLITE_DB_PATH"] != "":
		resolved.DatabaseURL = values["SQLITE_DB_PATH"]
	case values["LIBSQL_URL"] != "":
		resolved.DatabaseURL = values["LIBSQL_URL"]
		// Construct libSQL connection string with auth token if available
		if token := values["LIBSQL_AUTH_TOKEN"]; token != "" {
			resolved.DatabaseURL = fmt.Sprintf("%s?authToken=%s", values["LIBSQL_URL"], token)
		}
	}

	if value := values["TABLE_PREFIX"]; value != "" {
		resolved.TablePrefix = value
	}
	if value := values["DATABASE_SCHEMA"]; value != "" {
		resolved.Schema = value
	}
}
