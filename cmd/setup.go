package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/quillmark/quill/internal/config"
	"github.com/quillmark/quill/internal/lint"
	"github.com/quillmark/quill/internal/logging"
	"github.com/quillmark/quill/internal/registry"
	"github.com/quillmark/quill/internal/renderer"
	"github.com/quillmark/quill/internal/scanner"
)

// environment bundles the objects most commands need.
type environment struct {
	config   *config.Config
	logger   *logging.QuillLogger
	logFile  *logging.FileLogger
	registry *registry.PostRegistry
	scanner  *scanner.PostScanner
	renderer *renderer.Renderer
}

// setup loads configuration and wires the scanner and renderer.
func setup() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logConfig := &logging.Config{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: viper.GetString("log-format"),
	}

	var logFile *logging.FileLogger
	logger := logging.NewLogger(logConfig)
	if logDir := viper.GetString("log-dir"); logDir != "" {
		logFile, err = logging.NewFileLogger(logConfig, logDir)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		logger = logFile.QuillLogger
	}

	reg := registry.NewPostRegistry()
	scan := scanner.NewPostScanner(reg, cfg.Content.ExcludePatterns)

	rend, err := renderer.New(renderer.Options{
		SiteTitle:     cfg.Site.Title,
		BaseURL:       cfg.Site.BaseURL,
		PostTemplate:  readTemplate(cfg.Build.PostTemplate),
		IndexTemplate: readTemplate(cfg.Build.IndexTemplate),
	})
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	return &environment{
		config:   cfg,
		logger:   logger,
		logFile:  logFile,
		registry: reg,
		scanner:  scan,
		renderer: rend,
	}, nil
}

// Close releases the environment's scanner workers and log file.
func (e *environment) Close() {
	e.scanner.Close()
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

// scanContent scans all configured content roots.
func (e *environment) scanContent() error {
	for _, dir := range e.config.Content.Dirs {
		if err := e.scanner.ScanDirectory(dir); err != nil {
			return err
		}
	}
	return nil
}

// lintRunner builds a lint runner wired to this environment's renderer and
// registry.
func (e *environment) lintRunner() *lint.Runner {
	resolver := lint.NewLinkResolver(
		func(body string) ([]byte, error) { return e.renderer.RenderMarkdown(body) },
		func(slug string) bool { _, ok := e.registry.Get(slug); return ok },
	)
	return lint.NewRunner(e.registry, resolver, e.logger.WithComponent("lint"))
}

// readTemplate loads a template override from disk, empty string when unset
// or unreadable (the built-in layout is used instead).
func readTemplate(path string) string {
	if path == "" {
		return ""
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(content)
}
