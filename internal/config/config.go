// Package config provides configuration management for Quill using Viper for
// flexible loading from files, environment variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with a QUILL_ prefix, and validation. It manages site metadata,
// content scanning paths, build output settings, and development-server
// options like live reload.
package config

import (
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

type Config struct {
	Site        SiteConfig        `yaml:"site"`
	Server      ServerConfig      `yaml:"server"`
	Content     ContentConfig     `yaml:"content"`
	Build       BuildConfig       `yaml:"build"`
	Development DevelopmentConfig `yaml:"development"`
}

type SiteConfig struct {
	Title   string `yaml:"title"`
	BaseURL string `yaml:"base_url"`
	Author  string `yaml:"author"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Environment    string   `yaml:"environment"`
}

type ContentConfig struct {
	Dirs            []string `yaml:"dirs"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

type BuildConfig struct {
	OutputDir     string `yaml:"output_dir"`
	Drafts        bool   `yaml:"drafts"`
	Workers       int    `yaml:"workers"`
	PostTemplate  string `yaml:"post_template"`
	IndexTemplate string `yaml:"index_template"`
}

type DevelopmentConfig struct {
	LiveReload   bool `yaml:"live_reload"`
	DebounceMs   int  `yaml:"debounce_ms"`
	ShowDrafts   bool `yaml:"show_drafts"`
	LintOnReload bool `yaml:"lint_on_reload"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Apply defaults for content dirs only if not explicitly set
	if !viper.IsSet("content.dirs") && len(config.Content.Dirs) == 0 {
		config.Content.Dirs = []string{"./content"}
	}

	// Handle content dirs set via viper (workaround for viper slice handling)
	if viper.IsSet("content.dirs") && len(config.Content.Dirs) == 0 {
		dirs := viper.GetStringSlice("content.dirs")
		if len(dirs) > 0 {
			config.Content.Dirs = dirs
		}
	}
	if viper.IsSet("content.exclude_patterns") && len(config.Content.ExcludePatterns) == 0 {
		patterns := viper.GetStringSlice("content.exclude_patterns")
		if len(patterns) > 0 {
			config.Content.ExcludePatterns = patterns
		}
	}

	// Handle development settings set via viper (workaround for viper bool handling)
	if viper.IsSet("development.live_reload") {
		config.Development.LiveReload = viper.GetBool("development.live_reload")
	}
	if viper.IsSet("development.show_drafts") {
		config.Development.ShowDrafts = viper.GetBool("development.show_drafts")
	}
	if viper.IsSet("development.lint_on_reload") {
		config.Development.LintOnReload = viper.GetBool("development.lint_on_reload")
	}

	// Apply default values for SiteConfig if not set
	if config.Site.Title == "" {
		config.Site.Title = "Quill Site"
	}
	if config.Site.BaseURL == "" {
		config.Site.BaseURL = "http://localhost:8080"
	}

	// Apply default values for ServerConfig if not set
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	// Apply default values for BuildConfig if not set
	if config.Build.OutputDir == "" {
		config.Build.OutputDir = "public"
	}
	if config.Build.Workers == 0 {
		config.Build.Workers = runtime.NumCPU()
	}

	// Apply default values for ContentConfig if not set
	if len(config.Content.ExcludePatterns) == 0 {
		config.Content.ExcludePatterns = []string{"*.bak", "_*"}
	}

	// Apply default values for DevelopmentConfig if not set
	if !viper.IsSet("development.live_reload") {
		config.Development.LiveReload = true
	}
	if !viper.IsSet("development.show_drafts") {
		config.Development.ShowDrafts = true
	}
	if !viper.IsSet("development.lint_on_reload") {
		config.Development.LintOnReload = true
	}
	if config.Development.DebounceMs == 0 {
		config.Development.DebounceMs = 300
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
