// Package config provides configuration management for the rsecc CLI tool
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Davincible/rsecc/pkg/reedsolomon"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure
type Config struct {
	Version  string          `json:"version" yaml:"version"`
	Defaults DefaultSettings `json:"defaults" yaml:"defaults"`
	UI       UIConfig        `json:"ui" yaml:"ui"`
	Storage  StorageConfig   `json:"storage" yaml:"storage"`
}

// DefaultSettings contains default values for common operations
type DefaultSettings struct {
	Symbols      int    `json:"symbols" yaml:"symbols"`             // Default: 10
	Workers      int    `json:"workers" yaml:"workers"`             // Default: 0 (sequential)
	InputFormat  string `json:"input_format" yaml:"input_format"`   // raw, hex, base64
	OutputFormat string `json:"output_format" yaml:"output_format"` // raw, hex, base64
}

// UIConfig contains user interface settings
type UIConfig struct {
	UseColor  bool   `json:"use_color" yaml:"use_color"` // Enable colored output
	Verbosity string `json:"verbosity" yaml:"verbosity"` // quiet, normal, verbose
}

// StorageConfig contains storage-related settings
type StorageConfig struct {
	DefaultPath     string `json:"default_path" yaml:"default_path"`         // Default output directory
	FilePermissions string `json:"file_permissions" yaml:"file_permissions"` // Default file permissions
	WriteManifest   bool   `json:"write_manifest" yaml:"write_manifest"`     // Write sidecar manifests
}

// Profile is a named set of codec parameters for quick access
type Profile struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Codec       reedsolomon.Config `json:"codec"`
	Tags        []string           `json:"tags"`
}

// ConfigManager manages configuration loading and saving
type ConfigManager struct {
	config     *Config
	configPath string
	profiles   map[string]*Profile
}

// NewConfigManager creates a configuration manager for the default path
func NewConfigManager() (*ConfigManager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(configPath)
}

// NewConfigManagerAt creates a configuration manager backed by configPath.
// A default configuration is written there if none can be loaded.
func NewConfigManagerAt(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{
		configPath: configPath,
		profiles:   make(map[string]*Profile),
	}

	if err := cm.LoadConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cm.config = DefaultConfig()
		if err := cm.SaveConfig(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	// Profiles are optional, so we don't fail here
	if err := cm.LoadProfiles(); err != nil {
		cm.profiles = make(map[string]*Profile)
	}

	return cm, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Defaults: DefaultSettings{
			Symbols:      10,
			Workers:      0,
			InputFormat:  "raw",
			OutputFormat: "raw",
		},
		UI: UIConfig{
			UseColor:  true,
			Verbosity: "normal",
		},
		Storage: StorageConfig{
			DefaultPath:     "",
			FilePermissions: "0644",
			WriteManifest:   false,
		},
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig loads the configuration from disk
func (cm *ConfigManager) LoadConfig() error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if isYAML(cm.configPath) {
		err = yaml.Unmarshal(data, config)
	} else {
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	cm.config = config
	return nil
}

// SaveConfig saves the configuration to disk
func (cm *ConfigManager) SaveConfig() error {
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(cm.configPath) {
		data, err = yaml.Marshal(cm.config)
	} else {
		data, err = json.MarshalIndent(cm.config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// SetConfig updates the configuration
func (cm *ConfigManager) SetConfig(config *Config) {
	cm.config = config
}

// Path returns the file the configuration is read from
func (cm *ConfigManager) Path() string {
	return cm.configPath
}

func (cm *ConfigManager) profilesPath() string {
	return filepath.Join(filepath.Dir(cm.configPath), "profiles.json")
}

// LoadProfiles loads saved codec profiles
func (cm *ConfigManager) LoadProfiles() error {
	data, err := os.ReadFile(cm.profilesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	profiles := make(map[string]*Profile)
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to parse profiles: %w", err)
	}

	cm.profiles = profiles
	return nil
}

// SaveProfiles saves codec profiles to disk
func (cm *ConfigManager) SaveProfiles() error {
	data, err := json.MarshalIndent(cm.profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	if err := os.WriteFile(cm.profilesPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}

	return nil
}

// AddProfile validates and stores a new profile
func (cm *ConfigManager) AddProfile(profile *Profile) error {
	if profile.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := profile.Codec.Validate(); err != nil {
		return fmt.Errorf("profile '%s': %w", profile.Name, err)
	}

	cm.profiles[profile.Name] = profile
	return cm.SaveProfiles()
}

// GetProfile retrieves a profile by name
func (cm *ConfigManager) GetProfile(name string) (*Profile, error) {
	profile, exists := cm.profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}
	return profile, nil
}

// ListProfiles returns all available profiles sorted by name
func (cm *ConfigManager) ListProfiles() []*Profile {
	profiles := make([]*Profile, 0, len(cm.profiles))
	for _, profile := range cm.profiles {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles
}

// DeleteProfile removes a profile
func (cm *ConfigManager) DeleteProfile(name string) error {
	if _, exists := cm.profiles[name]; !exists {
		return fmt.Errorf("profile '%s' not found", name)
	}

	delete(cm.profiles, name)
	return cm.SaveProfiles()
}

// getConfigPath returns the configuration file path
func getConfigPath() (string, error) {
	if customPath := os.Getenv("RSECC_CONFIG"); customPath != "" {
		return customPath, nil
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "rsecc", "config.json"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "rsecc", "config.json"), nil
}

// ApplyDefaults fills codec parameters whose flags were not set on the
// command line. A nil flag set applies every default.
func (cm *ConfigManager) ApplyDefaults(codec *reedsolomon.Config, flags *pflag.FlagSet) {
	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	if !changed("symbols") {
		codec.Symbols = cm.config.Defaults.Symbols
	}
	if !changed("workers") {
		codec.Workers = cm.config.Defaults.Workers
	}
}

// ValidateConfig validates codec parameters against the configuration
func (cm *ConfigManager) ValidateConfig(codec *reedsolomon.Config) error {
	if err := codec.Validate(); err != nil {
		return err
	}
	if _, err := cm.FileMode(); err != nil {
		return err
	}
	return nil
}

// FileMode parses the configured permissions for written files
func (cm *ConfigManager) FileMode() (os.FileMode, error) {
	perm := cm.config.Storage.FilePermissions
	if perm == "" {
		return 0644, nil
	}
	mode, err := strconv.ParseUint(perm, 8, 32)
	if err != nil || mode > 0777 {
		return 0, fmt.Errorf("invalid file permissions '%s'", perm)
	}
	return os.FileMode(mode), nil
}
