// Package config loads the YAML configuration file, applies environment
// overrides, and validates the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/shareplan/internal/constants"
)

// Config is the top-level application configuration.
type Config struct {
	// Storage is a SQLite path, a .json path, or a PostgreSQL connection
	// string without a password.
	Storage string `yaml:"storage" validate:"required"`

	Debug bool `yaml:"debug"`

	// LogDir defaults to <config dir>/logs.
	LogDir string `yaml:"log_dir,omitempty"`

	// Friends lists each user's friends. Friendship is symmetric; listing it
	// on either side is enough.
	Friends map[string][]string `yaml:"friends" validate:"dive,keys,required,endkeys,dive,required"`

	// Frozen users can read but not change anything.
	Frozen []string `yaml:"frozen" validate:"dive,required"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Storage: constants.DefaultStoragePath,
		Friends: map[string][]string{},
		Frozen:  []string{},
	}
}

// DefaultPath is ~/.config/shareplan/config.yaml, expanded.
func DefaultPath() string {
	return ExpandPath(filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFile))
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// LoadEnv reads a .env file from the working directory if there is one.
func LoadEnv() {
	_ = godotenv.Load()
}

// Load reads the config at path. A missing file is created with the
// defaults and mode 0600. Environment overrides are applied before
// validation.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.Normalize()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML with 0600 permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Normalize fills zero values left by partial config files.
func (c *Config) Normalize() {
	if c.Storage == "" {
		c.Storage = constants.DefaultStoragePath
	}
	if c.Friends == nil {
		c.Friends = map[string][]string{}
	}
	if c.Frozen == nil {
		c.Frozen = []string{}
	}
}

// ApplyEnv overrides fields from SHAREPLAN_* variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(constants.EnvStorage); v != "" {
		c.Storage = v
	}
	if v := os.Getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, v, err)
		}
		c.Debug = debug
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for user, friends := range c.Friends {
		for _, f := range friends {
			if f == user {
				return fmt.Errorf("invalid config: %s is listed as their own friend", user)
			}
		}
	}
	return nil
}

// StoragePath returns Storage with "~" expanded; connection strings are
// returned unchanged.
func (c *Config) StoragePath() string {
	if IsPostgres(c.Storage) {
		return c.Storage
	}
	return ExpandPath(c.Storage)
}

func IsPostgres(storage string) bool {
	return strings.HasPrefix(storage, "postgres://") || strings.HasPrefix(storage, "postgresql://")
}
