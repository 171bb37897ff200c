package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sysprobe/pkg/sysprobe/config"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/logging"
	"github.com/jamesainslie/sysprobe/pkg/sysprobe/output"
)

var (
	cfgFile string
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "sysprobe",
		Short: "Inspect platform identity, mount tables and native libraries",
		Long: `Sysprobe queries low-level OS facilities through direct native calls.

Examples:
  sysprobe platform              # Identify the running platform
  sysprobe platform --all        # List every known platform ordinal
  sysprobe mounts --map          # Device to mount point map
  sysprobe mounts -o json        # Full mount records as JSON
  sysprobe mounts --watch        # Report mounts as volumes come and go
  sysprobe bind perfstat         # Try to bind the perfstat library`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/sysprobe/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format ("+strings.Join(output.Available(), ", ")+")")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if dir, err := config.ConfigDir(); err == nil {
			viper.AddConfigPath(dir)
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "sysprobe"))
		}
	}

	viper.SetEnvPrefix("SYSPROBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// setup decodes the effective configuration and starts logging.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	logCfg := logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		Components:   cfg.Logging.Components,
		ConsoleLevel: "warn",
		Console:      cmd.ErrOrStderr(),
	}
	switch {
	case getVerbose():
		// Debug everywhere, including components pinned in the config.
		logCfg.Level = "debug"
		logCfg.Components = nil
		logCfg.ConsoleLevel = "debug"
	case getQuiet():
		logCfg.ConsoleLevel = "error"
	}

	return logging.Init(logCfg)
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message to stderr if quiet mode is not enabled.
func printInfo(cmd *cobra.Command, format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}

// render writes r to the command's output in the configured format.
func render(cmd *cobra.Command, r *output.Report) error {
	format := config.DefaultOutputFormat
	if cfg != nil && cfg.Output.Format != "" {
		format = cfg.Output.Format
	}

	formatter, err := output.Get(format)
	if err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(output.Available(), ", "))
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, r); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
