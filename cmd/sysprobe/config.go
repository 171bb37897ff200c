package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage sysprobe configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/sysprobe/config.yaml (if set)
  2. ~/.config/sysprobe/config.yaml

Environment variables can override config file settings using the SYSPROBE_ prefix:
  SYSPROBE_TEXT_CHARSET=ISO-8859-1
  SYSPROBE_OUTPUT_FORMAT=json
  SYSPROBE_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(w, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprintln(w, "Config file: (using defaults, no file found)")
		fmt.Fprintln(w)
	}

	showConfig(w, cfg)
	return nil
}

// showConfig writes the settings of c and any SYSPROBE_ overrides.
func showConfig(w io.Writer, c *config.Config) {
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "----------------------")
	fmt.Fprintf(w, "logging.level:        %s\n", c.Logging.Level)
	fmt.Fprintf(w, "logging.path:         %s\n", c.Logging.Path)
	components := make([]string, 0, len(c.Logging.Components))
	for name := range c.Logging.Components {
		components = append(components, name)
	}
	sort.Strings(components)
	for _, name := range components {
		fmt.Fprintf(w, "logging.components.%s: %s\n", name, c.Logging.Components[name])
	}
	fmt.Fprintf(w, "text.charset:         %s\n", c.Text.Charset)
	fmt.Fprintf(w, "output.format:        %s\n", c.Output.Format)
	fmt.Fprintf(w, "mounts.exclude:       %v\n", c.Mounts.Exclude)
	fmt.Fprintf(w, "mounts.fstypes:       %v\n", c.Mounts.FSTypes)
	fmt.Fprintf(w, "watch.paths:          %v\n", c.Watch.Paths)
	fmt.Fprintf(w, "watch.debounce:       %s\n", c.Watch.Debounce)
	fmt.Fprintf(w, "watch.interval:       %s\n", c.Watch.Interval)

	fmt.Fprintln(w, "\nEnvironment Overrides:")
	fmt.Fprintln(w, "----------------------")
	var overrides []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "SYSPROBE_") {
			overrides = append(overrides, kv)
		}
	}
	sort.Strings(overrides)
	if len(overrides) == 0 {
		fmt.Fprintln(w, "(none)")
	}
	for _, kv := range overrides {
		fmt.Fprintln(w, kv)
	}
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		printInfo(cmd, "Config file already exists: %s", configPath)
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo(cmd, "Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return nil
}
