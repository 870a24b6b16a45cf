// Package internal contains the core implementation packages for quill.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the quill CLI tool.
//
// The internal packages are organized by functional domain:
//
//   - build: Build pipeline with worker pools, caching, and site output
//   - config: Configuration management with validation
//   - errors: Diagnostics and thread-safe collection
//   - frontmatter: YAML front matter parsing for post files
//   - lint: Content hygiene rules and the lint runner
//   - logging: Structured logging shared across components
//   - registry: Post registry and event broadcasting
//   - renderer: Markdown-to-HTML rendering and page layouts
//   - scanner: File system scanning and metadata extraction
//   - server: Development server with WebSocket live reload
//   - types: Shared post and event types
//   - version: Build version information
//   - watcher: File system monitoring with debouncing
package internal
