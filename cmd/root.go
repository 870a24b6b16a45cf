// Package cmd provides the command-line interface for Quill with
// configuration management supporting multiple configuration sources.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --port, etc.) - highest priority
//	2. QUILL_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (QUILL_SERVER_PORT, etc.)
//	4. Configuration files (.quill.yml) - lowest priority
//
// Environment Variables:
//
//	QUILL_CONFIG_FILE: Path to custom configuration file
//	QUILL_SERVER_PORT: Override server port
//	QUILL_SITE_TITLE: Override site title
//	And more following the QUILL_<SECTION>_<OPTION> pattern
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "A content engine for Markdown blog repositories",
	Long: `Quill discovers Markdown posts with YAML front matter, checks their
hygiene, and builds them into a static site.

Key Features:
  • Post discovery with front-matter parsing (title, date, draft)
  • Content linting: titles, dates, fence balance, link resolution
  • Static site builds with index, RSS feed, and sitemap
  • Development server with live reload
  • Mermaid diagram fences rendered as flowcharts

Quick Start:
  quill init                      Initialize a new site
  quill new "Post Title"          Scaffold a post
  quill serve                     Start the development server
  quill lint                      Check content hygiene
  quill build                     Build the static site

Command Aliases (for faster typing):
  serve (s), build (b), lint (l), list (ls), new (n)`,
	// main prints the returned error once; keep cobra quiet about it
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept underscore spellings (--log_level) alongside the hyphenated forms
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .quill.yml, can also use QUILL_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("log-dir", "", "also write logs to a dated file in this directory")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("log-dir", rootCmd.PersistentFlags().Lookup("log-dir"))
}

// initConfig initializes the configuration system with support for multiple
// config sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. QUILL_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .quill.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("QUILL_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".quill")
	}

	// Enable automatic environment variable binding with QUILL_ prefix
	// Examples: QUILL_SERVER_PORT, QUILL_SITE_TITLE, QUILL_BUILD_OUTPUT_DIR
	viper.SetEnvPrefix("QUILL")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing or malformed config files fall back to defaults without failing
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
