// Package errors provides file-addressed diagnostics for content checks and
// build failures, plus a thread-safe collector used by the lint runner and
// the build pipeline.
package errors

import (
	"fmt"
	"sync"
	"time"
)

// Diagnostic represents a problem found in a post file
type Diagnostic struct {
	Rule      string
	Slug      string
	File      string
	Line      int
	Column    int
	Message   string
	Severity  Severity
	Timestamp time.Time
}

// Severity represents the severity of a diagnostic
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// String returns the string representation of the severity
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %s (%s)", d.File, d.Line, d.Column, d.Severity, d.Message, d.Rule)
	}
	return fmt.Sprintf("%s: %s: %s (%s)", d.File, d.Severity, d.Message, d.Rule)
}

// Collector collects diagnostics and general errors across concurrent checks
type Collector struct {
	diagnostics []Diagnostic
	errors      []error
	mutex       sync.RWMutex
}

// NewCollector creates a new diagnostic collector
func NewCollector() *Collector {
	return &Collector{
		diagnostics: make([]Diagnostic, 0),
		errors:      make([]error, 0),
	}
}

// Add adds a diagnostic to the collector
func (c *Collector) Add(d Diagnostic) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	d.Timestamp = time.Now()
	c.diagnostics = append(c.diagnostics, d)
}

// AddError adds a general error to the collector
func (c *Collector) AddError(err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.errors = append(c.errors, err)
}

// Diagnostics returns a copy of all collected diagnostics
func (c *Collector) Diagnostics() []Diagnostic {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	result := make([]Diagnostic, len(c.diagnostics))
	copy(result, c.diagnostics)
	return result
}

// Errors returns all collected errors, diagnostics included
func (c *Collector) Errors() []error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	all := make([]error, 0, len(c.diagnostics)+len(c.errors))
	for i := range c.diagnostics {
		d := c.diagnostics[i]
		all = append(all, &d)
	}
	all = append(all, c.errors...)
	return all
}

// HasErrors returns true if any diagnostic of error severity or worse was
// collected, or any general error was added
func (c *Collector) HasErrors() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if len(c.errors) > 0 {
		return true
	}
	for _, d := range c.diagnostics {
		if d.Severity >= SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any warning-severity diagnostic was collected
func (c *Collector) HasWarnings() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	for _, d := range c.diagnostics {
		if d.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Clear clears all collected diagnostics and errors
func (c *Collector) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.diagnostics = c.diagnostics[:0]
	c.errors = c.errors[:0]
}

// ByFile returns diagnostics for a specific file
func (c *Collector) ByFile(file string) []Diagnostic {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var out []Diagnostic
	for _, d := range c.diagnostics {
		if d.File == file {
			out = append(out, d)
		}
	}
	return out
}

// BySeverity returns diagnostics of exactly the given severity
func (c *Collector) BySeverity(severity Severity) []Diagnostic {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var out []Diagnostic
	for _, d := range c.diagnostics {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of collected diagnostics
func (c *Collector) Count() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.diagnostics)
}
