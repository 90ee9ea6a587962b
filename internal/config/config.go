package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/utils"
)

// FileName is the config file looked up inside the config directory.
const FileName = "config.yaml"

// Config holds the settings shared by every command.
type Config struct {
	// DB is a SQLite file path, a postgres:// URL, or "keyring".
	DB              string        `yaml:"db"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
	UpcomingDays    int           `yaml:"upcoming_days"`
	UserID          int64         `yaml:"user_id"`
	NeuralSignature string        `yaml:"neural_signature"`
	Timezone        string        `yaml:"timezone"`
	Debug           bool          `yaml:"debug"`
}

// Default returns the built-in settings for a config directory.
func Default(configDir string) *Config {
	return &Config{
		DB:              filepath.Join(configDir, constants.DefaultDBFile),
		CacheTTL:        constants.DefaultCacheTTL,
		UpcomingDays:    constants.DefaultUpcomingDays,
		UserID:          constants.DefaultUserID,
		NeuralSignature: constants.DefaultNeuralSignature,
		Timezone:        "Local",
	}
}

// Load layers defaults, <configDir>/config.yaml, a .env file in the working
// directory, and STUDYLOG_* environment variables, in that order.
func Load(configDir string) (*Config, error) {
	dir, err := utils.ExpandPath(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}

	cfg := Default(dir)

	path := filepath.Join(dir, FileName)
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.DB, err = utils.ExpandPath(cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v, ok := lookup("DB"); ok {
		c.DB = v
	}
	if v, ok := lookup("TIMEZONE"); ok {
		c.Timezone = v
	}
	if v, ok := lookup("NEURAL_SIGNATURE"); ok {
		c.NeuralSignature = v
	}
	if v, ok := lookup("CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sCACHE_TTL: %w", constants.EnvPrefix, err)
		}
		c.CacheTTL = d
	}
	if v, ok := lookup("UPCOMING_DAYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sUPCOMING_DAYS: %w", constants.EnvPrefix, err)
		}
		c.UpcomingDays = n
	}
	if v, ok := lookup("USER_ID"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %sUSER_ID: %w", constants.EnvPrefix, err)
		}
		c.UserID = n
	}
	if v, ok := lookup("DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sDEBUG: %w", constants.EnvPrefix, err)
		}
		c.Debug = b
	}
	return nil
}

// Validate rejects settings the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("db must not be empty")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL)
	}
	if c.UpcomingDays < 0 {
		return fmt.Errorf("upcoming_days must not be negative, got %d", c.UpcomingDays)
	}
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone %q", c.Timezone)
	}
	return nil
}

// Save writes c to <configDir>/config.yaml.
func (c *Config) Save(configDir string) error {
	dir, err := utils.ExpandPath(configDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0600)
}

func lookup(key string) (string, bool) {
	return os.LookupEnv(constants.EnvPrefix + key)
}
