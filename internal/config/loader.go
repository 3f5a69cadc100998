package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fleetdeck/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/fleetdeck"
	configFileName = "config.yaml"
)

// osUserHomeDir is a variable so tests can point the default directory elsewhere.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/fleetdeck.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// ConfigFilePath returns the settings file inside configPath.
func ConfigFilePath(configPath string) string {
	return filepath.Join(configPath, configFileName)
}

// LoadSettings reads config.yaml from configPath on top of the defaults.
// A missing file is not an error.
func LoadSettings(configPath string) (Settings, error) {
	configFilePath := ConfigFilePath(configPath)
	settings := GetDefaultSettings()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return settings, nil
		}
		return Settings{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, &ParseError{Path: configFilePath, Err: err}
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid config %s: %w", configFilePath, err)
	}

	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return settings, nil
}

// SaveSettings writes settings to config.yaml in configPath, creating the
// directory if needed. The file is written to a temporary name first and
// renamed so concurrent readers never see a partial file.
func SaveSettings(configPath string, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configPath, err)
	}

	data, err := yaml.Marshal(&settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	target := ConfigFilePath(configPath)
	tmp := target + ".tmp"
	// 0600: the file may hold clientSecret.
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace %s: %w", target, err)
	}

	logging.Info("ConfigLoader", "Saved configuration to %s", target)
	return nil
}

// Validate checks values that cannot be expressed by the YAML types alone.
func (s Settings) Validate() error {
	switch s.SchemaMatch {
	case "", SchemaMatchStrict, SchemaMatchBroad:
		return nil
	default:
		return &InvalidValueError{Key: "schemaMatch", Value: string(s.SchemaMatch), Reason: "must be strict or broad"}
	}
}
