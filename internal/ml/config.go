package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/franckalain/fitplan/internal/logger"
)

// BaseConfig provides common configuration functionality
type BaseConfig struct {
	ConfigPath string
}

// LoadConfig loads configuration from a file, falling back to environment variables
func (c *BaseConfig) LoadConfig(configPath string, envPrefix string, config interface{}) error {
	// An explicit path must exist and parse
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read %s config: %w", envPrefix, err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse %s config: %w", envPrefix, err)
		}
		logger.Debug("loaded model configuration", "path", configPath)
		return nil
	}

	// Try default config file in config directory
	defaultPath := filepath.Join("config", fmt.Sprintf("%s.json", envPrefix))
	if data, err := os.ReadFile(defaultPath); err == nil {
		if err := json.Unmarshal(data, config); err == nil {
			logger.Debug("loaded model configuration", "path", defaultPath)
			return nil
		}
		logger.Warn("ignoring unparsable model configuration", "path", defaultPath)
	}

	// Fall back to environment variables
	logger.Debug("using environment for model configuration", "model", envPrefix)
	return nil
}
