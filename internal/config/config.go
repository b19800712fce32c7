// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/xtablet/tabmap/internal/logger"
)

// Config represents the application configuration
type Config struct {
	// Output is the RANDR output tablets are mapped to when no -o flag is
	// given. Empty means no default target.
	Output string `mapstructure:"output"`

	// Display is the X display to connect to. Empty means $DISPLAY.
	Display string `mapstructure:"display"`

	Watch   WatchConfig   `mapstructure:"watch"`
	Devices DevicesConfig `mapstructure:"devices"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// WatchConfig controls what the watch loop reacts to
type WatchConfig struct {
	// Devices additionally remaps on input-device hotplug, not just on
	// display reconfiguration.
	Devices bool `mapstructure:"devices"`
}

// DevicesConfig controls tablet device detection
type DevicesConfig struct {
	// NamePrefixes are vendor name prefixes that mark a pointer device as
	// tablet hardware when its name carries no recognizable type token.
	NamePrefixes []string `mapstructure:"name_prefixes"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Output:  "",
		Display: "",
		Watch: WatchConfig{
			Devices: true,
		},
		Devices: DevicesConfig{
			NamePrefixes: []string{"Wacom"},
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance, guarded by cfgMu: the live-reload callback
	// replaces it from viper's watch goroutine while commands read it.
	cfgMu sync.RWMutex
	cfg   *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("tabmap")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "tabmap"))
		}
		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("output", DefaultConfig.Output)
	viper.SetDefault("display", DefaultConfig.Display)
	viper.SetDefault("watch.devices", DefaultConfig.Watch.Devices)
	viper.SetDefault("devices.name_prefixes", DefaultConfig.Devices.NamePrefixes)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	Set(c)

	return nil
}

// Get returns the current configuration
func Get() *Config {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration
func Set(c *Config) {
	cfgMu.Lock()
	defer cfgMu.Unlock()
	cfg = c
}

// Watch re-reads the config file whenever it changes on disk and hands the
// fresh configuration to onChange. A config file that turns unreadable or
// unparsable mid-flight is logged and skipped; the previous configuration
// stays in effect.
func Watch(onChange func(*Config)) {
	if viper.ConfigFileUsed() == "" {
		// Nothing on disk to watch.
		return
	}
	viper.OnConfigChange(func(fsnotify.Event) {
		c := &Config{}
		if err := viper.Unmarshal(c); err != nil {
			logger.Warnf("Ignoring config reload: %v", err)
			return
		}
		Set(c)
		onChange(c)
	})
	viper.WatchConfig()
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// If override is set, use that
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "tabmap.toml"
	}

	return filepath.Join(home, ".config", "tabmap", "tabmap.toml")
}

// SetOutput records a new default target output and persists it
func SetOutput(name string) error {
	viper.Set("output", name)
	cfgMu.Lock()
	if cfg != nil {
		cfg.Output = name
	}
	cfgMu.Unlock()
	return Save()
}

// SetWatchDevices records whether watch mode reacts to device hotplug
func SetWatchDevices(enabled bool) error {
	viper.Set("watch.devices", enabled)
	cfgMu.Lock()
	if cfg != nil {
		cfg.Watch.Devices = enabled
	}
	cfgMu.Unlock()
	return Save()
}
