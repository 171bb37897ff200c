// Package config provides configuration management for sysprobe.
package config

import "time"

// Default configuration values.
const (
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultCharset is the charset of native text fields.
	DefaultCharset = "utf-8"

	// DefaultOutputFormat is the default CLI output format.
	DefaultOutputFormat = "table"

	// DefaultWatchDebounce is how long watch mode waits for events to settle.
	DefaultWatchDebounce = 500 * time.Millisecond

	// DefaultWatchInterval is how often watch mode re-queries without events.
	DefaultWatchInterval = 5 * time.Second

	// envPrefix prefixes environment overrides (SYSPROBE_TEXT_CHARSET).
	envPrefix = "SYSPROBE"

	appName = "sysprobe"
)

// DefaultComponentLevels is empty so every component follows logging.level.
var DefaultComponentLevels = map[string]string{}
