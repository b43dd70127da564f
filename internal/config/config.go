package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/franckalain/fitplan/internal/logger"
	"github.com/joho/godotenv"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultStaticDir      = "./static"
	DefaultDSN            = "fitplan.db"
	DefaultModelType      = "google"
	DefaultTimeoutSeconds = 60
)

// Config holds all application configuration
type Config struct {
	Server struct {
		Port           string   `json:"port"`
		StaticDir      string   `json:"static_dir"`
		Debug          bool     `json:"debug"`
		LogDir         string   `json:"log_dir"`
		AllowedOrigins []string `json:"allowed_origins"`
	} `json:"server"`

	Database struct {
		// DSN is a SQLite file path or a postgres:// URL without a password
		DSN string `json:"dsn"`
	} `json:"database"`

	ML struct {
		Type           string `json:"type"` // "local" or "google"
		ConfigPath     string `json:"config_path"`
		TimeoutSeconds int    `json:"timeout_seconds"`
	} `json:"ml"`

	History struct {
		// MaxRecords caps the stored history; 0 keeps everything
		MaxRecords int `json:"max_records"`
	} `json:"history"`

	Admin struct {
		PassphraseHash string `json:"passphrase_hash"`
		// Passphrase is only ever read from the environment
		Passphrase string `json:"-"`
	} `json:"admin"`
}

// LoadConfig reads .env, then the JSON file at configPath (skipped when
// empty), then applies FITPLAN_* environment overrides and defaults.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", err)
	}

	var config Config
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	// Handle missing values
	if config.Server.StaticDir == "" {
		config.Server.StaticDir = DefaultStaticDir
	}
	if config.Database.DSN == "" {
		config.Database.DSN = DefaultDSN
	}
	if config.ML.Type == "" {
		config.ML.Type = DefaultModelType
	}
	if config.ML.TimeoutSeconds <= 0 {
		config.ML.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if config.History.MaxRecords < 0 {
		return nil, fmt.Errorf("history max_records must not be negative")
	}

	return &config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FITPLAN_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("FITPLAN_STATIC_DIR"); v != "" {
		c.Server.StaticDir = v
	}
	if v := os.Getenv("FITPLAN_LOG_DIR"); v != "" {
		c.Server.LogDir = v
	}
	if v := os.Getenv("FITPLAN_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid FITPLAN_DEBUG %q: %w", v, err)
		}
		c.Server.Debug = debug
	}
	if v := os.Getenv("FITPLAN_DB"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("FITPLAN_ML_TYPE"); v != "" {
		c.ML.Type = v
	}
	if v := os.Getenv("FITPLAN_ML_TIMEOUT"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FITPLAN_ML_TIMEOUT %q: %w", v, err)
		}
		c.ML.TimeoutSeconds = secs
	}
	if v := os.Getenv("FITPLAN_ADMIN_PASSPHRASE"); v != "" {
		c.Admin.Passphrase = v
	}
	return nil
}

// CheckServe reports settings the HTTP server cannot start without.
func (c *Config) CheckServe() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is not set in config file or FITPLAN_PORT")
	}
	return nil
}

// GenerationTimeout bounds a single plan request.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.ML.TimeoutSeconds) * time.Second
}

// GetConfigPath returns the path to the configuration file, or "" when
// there is none and everything comes from the environment.
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("FITPLAN_CONFIG"); path != "" {
		return path
	}

	for _, path := range []string{filepath.Join("config", "config.json"), "config.json"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
