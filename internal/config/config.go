package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// AppName names the per-user configuration directory
	AppName = "svnbatch"

	configFileName = "config.toml"
	pathsFileName  = "paths.json"
	logFileName    = "svnbatch.log"
)

// Config represents the application configuration
type Config struct {
	Version        int        `toml:"version"`
	SVNBinary      string     `toml:"svn_binary"`
	PathsFile      string     `toml:"paths_file"`
	LogFile        string     `toml:"log_file"`
	CommandTimeout string     `toml:"command_timeout"` // Go duration, empty means no timeout
	UISettings     UISettings `toml:"ui"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ConfirmBatch bool `toml:"confirm_batch"`
	LogHeight    int  `toml:"log_height"`
}

// Timeout parses CommandTimeout. An empty value means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.CommandTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.CommandTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid command_timeout %q: %w", c.CommandTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid command_timeout %q: must not be negative", c.CommandTimeout)
	}
	return d, nil
}

// Encode renders the configuration as TOML
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return buf.Bytes(), nil
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a config service using the per-user config file
func NewConfigService() ConfigService {
	return &configService{
		filePath: filepath.Join(DefaultDir(), configFileName),
	}
}

// NewConfigServiceAt creates a config service bound to a specific file
func NewConfigServiceAt(path string) ConfigService {
	return &configService{filePath: path}
}

// DefaultDir returns the per-user svnbatch directory
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, AppName)
}

// Path returns the config file location
func (cs *configService) Path() string { return cs.filePath }

// Load loads the configuration from file, falling back to defaults when absent
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so omitted keys keep sensible values
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyDefaults(cfg)

	if _, err := cfg.Timeout(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := config.Encode()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		Version:   1,
		SVNBinary: "svn",
		PathsFile: filepath.Join(dir, pathsFileName),
		LogFile:   filepath.Join(dir, logFileName),
		UISettings: UISettings{
			ConfirmBatch: true,
			LogHeight:    10,
		},
	}
}

// applyDefaults fills fields that were present but empty
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = def.Version
	}
	if cfg.SVNBinary == "" {
		cfg.SVNBinary = def.SVNBinary
	}
	if cfg.PathsFile == "" {
		cfg.PathsFile = def.PathsFile
	}
	if cfg.LogFile == "" {
		cfg.LogFile = def.LogFile
	}
	if cfg.UISettings.LogHeight <= 0 {
		cfg.UISettings.LogHeight = def.UISettings.LogHeight
	}
}
