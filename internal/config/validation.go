package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateContentConfig(&config.Content); err != nil {
		return fmt.Errorf("content config: %w", err)
	}
	if err := validateBuildConfig(&config.Build); err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	if err := validateSiteConfig(&config.Site); err != nil {
		return fmt.Errorf("site config: %w", err)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d out of range [0, 65535]", config.Port)
	}

	switch config.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("unknown environment %q", config.Environment)
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if _, err := url.Parse(origin); err != nil {
			return fmt.Errorf("allowed origin %q: %w", origin, err)
		}
	}
	return nil
}

// validateContentConfig rejects content paths that escape the project root.
func validateContentConfig(config *ContentConfig) error {
	if len(config.Dirs) == 0 {
		return fmt.Errorf("no content dirs configured")
	}
	for _, dir := range config.Dirs {
		if err := validateLocalPath(dir); err != nil {
			return fmt.Errorf("content dir %q: %w", dir, err)
		}
	}
	return nil
}

// validateBuildConfig validates build output settings.
func validateBuildConfig(config *BuildConfig) error {
	if err := validateLocalPath(config.OutputDir); err != nil {
		return fmt.Errorf("output dir %q: %w", config.OutputDir, err)
	}
	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", config.Workers)
	}
	if config.Workers > 64 {
		return fmt.Errorf("workers %d unreasonably high", config.Workers)
	}
	return nil
}

// validateSiteConfig validates site metadata.
func validateSiteConfig(config *SiteConfig) error {
	if config.BaseURL != "" {
		u, err := url.Parse(config.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base_url must be http or https, got %q", config.BaseURL)
		}
	}
	return nil
}

// validateLocalPath rejects absolute paths and directory traversal so config
// files cannot point tooling outside the project.
func validateLocalPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if filepath.IsAbs(path) {
		return fmt.Errorf("absolute paths not allowed")
	}
	clean := filepath.Clean(path)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path escapes project root")
	}
	return nil
}
