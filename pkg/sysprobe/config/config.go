package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/watch"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// TextConfig configures decoding of native text fields.
type TextConfig struct {
	Charset string `mapstructure:"charset"`
}

// OutputConfig configures CLI output.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// MountsConfig holds default mount table filters.
type MountsConfig struct {
	Exclude []string `mapstructure:"exclude"`
	FSTypes []string `mapstructure:"fstypes"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Paths    []string      `mapstructure:"paths"`
	Debounce time.Duration `mapstructure:"debounce"`
	Interval time.Duration `mapstructure:"interval"`
}

// Config represents the application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Text    TextConfig    `mapstructure:"text"`
	Output  OutputConfig  `mapstructure:"output"`
	Mounts  MountsConfig  `mapstructure:"mounts"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // Empty means console only
	v.SetDefault("logging.components", DefaultComponentLevels)
	v.SetDefault("text.charset", DefaultCharset)
	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("mounts.exclude", []string{})
	v.SetDefault("mounts.fstypes", []string{})
	v.SetDefault("watch.paths", watch.DefaultPaths())
	v.SetDefault("watch.debounce", DefaultWatchDebounce)
	v.SetDefault("watch.interval", DefaultWatchInterval)
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/sysprobe/config.yaml
//   - $HOME/.config/sysprobe/config.yaml
//
// Environment variables are prefixed with SYSPROBE_ (e.g., SYSPROBE_TEXT_CHARSET).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", appName))

	return load(v)
}

// LoadFile loads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

// FromViper decodes an already-populated viper instance, such as the
// CLI's global one with bound flags.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := expandPaths(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	return FromViper(v)
}

func expandPaths(cfg *Config) error {
	var err error
	if cfg.Logging.Path, err = ExpandPath(cfg.Logging.Path); err != nil {
		return err
	}
	for i, p := range cfg.Watch.Paths {
		if cfg.Watch.Paths[i], err = ExpandPath(p); err != nil {
			return err
		}
	}
	return nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", appName), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes a default config file if none exists and returns
// its path. An existing file is left untouched.
func WriteDefault() (string, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	paths := watch.DefaultPaths()
	var watchPaths strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&watchPaths, "    - %s\n", p)
	}
	if len(paths) == 0 {
		watchPaths.WriteString("    []\n")
	}

	defaultConfig := fmt.Sprintf(`# sysprobe configuration

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty logs to the console only)
  path: ""
  # Per-component log levels, overriding level (native, mounts, watch)
  components: {}

# Native text decoding
text:
  # Charset of mount table text fields (IANA name)
  charset: %s

# Output format: table, plain, json, yaml, tsv, csv
output:
  format: %s

# Mount table filters
mounts:
  # Mount point globs to hide (e.g. "/System/Volumes/**")
  exclude: []
  # Filesystem type globs to show (empty shows all)
  fstypes: []

# Watch mode
watch:
  paths:
%s  debounce: %s
  # Periodic re-query for mounts that raise no directory event (0 disables)
  interval: %s
`, DefaultLogLevel, DefaultCharset, DefaultOutputFormat, watchPaths.String(), DefaultWatchDebounce, DefaultWatchInterval)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// StateDir returns $XDG_STATE_HOME/sysprobe/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, appName)
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), appName+".log")
}
